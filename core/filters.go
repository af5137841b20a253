package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
)

// Family 小波族名称 (与 pywt 的命名一致，如 "haar", "db2", "sym4")
type Family string

const (
	Haar  Family = "haar"
	DB1   Family = "db1"
	DB2   Family = "db2"
	DB3   Family = "db3"
	DB4   Family = "db4"
	Sym2  Family = "sym2"
	Sym3  Family = "sym3"
	Sym4  Family = "sym4"
	Coif1 Family = "coif1"
)

// FilterBank 一个正交小波族的四组滤波器系数
// DecLo/DecHi 用于分解，RecLo/RecHi 用于重构
type FilterBank struct {
	Family Family
	DecLo  []float64
	DecHi  []float64
	RecLo  []float64
	RecHi  []float64
}

// Len 滤波器长度 (四组等长)
func (b *FilterBank) Len() int {
	return len(b.DecLo)
}

// MaxLevel 该滤波器在长度 n 上的有效最大分解层数 (pywt.dwt_max_level)
func (b *FilterBank) MaxLevel(n int) int {
	if b.Len() < 2 || n < b.Len()-1 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n) / float64(b.Len()-1))))
}

// 分解低通系数表，其余三组由正交镜像关系推出
var decLoTable = map[Family][]float64{
	Haar: {0.7071067811865476, 0.7071067811865476},
	DB1:  {0.7071067811865476, 0.7071067811865476},
	DB2: {
		-0.12940952255126037, 0.2241438680420134, 0.8365163037378079, 0.48296291314453416,
	},
	DB3: {
		0.03522629188570953, -0.08544127388202666, -0.13501102001025458,
		0.45987750211849154, 0.8068915093110925, 0.33267055295008263,
	},
	DB4: {
		-0.010597401785069032, 0.0328830116668852, 0.030841381835560764, -0.18703481171909309,
		-0.027983769416859854, 0.6308807679298589, 0.7148465705529157, 0.2303778133088965,
	},
	Sym2: {
		-0.12940952255126037, 0.2241438680420134, 0.8365163037378079, 0.48296291314453416,
	},
	Sym3: {
		0.03522629188570953, -0.08544127388202666, -0.13501102001025458,
		0.45987750211849154, 0.8068915093110925, 0.33267055295008263,
	},
	Sym4: {
		-0.07576571478927333, -0.02963552764599851, 0.49761866763201545, 0.8037387518059161,
		0.29785779560527736, -0.09921954357684722, -0.012603967262037833, 0.0322231006040427,
	},
	Coif1: {
		-0.01565572813546454, -0.0727326195128539, 0.38486484686420286,
		0.8525720202122554, 0.3378976624578092, -0.0727326195128539,
	},
}

// orthoTolerance sym4/coif1 的公开系数只精确到 1e-12 左右
const orthoTolerance = 1e-9

// NewFilterBank 由分解低通滤波器构造完整的正交滤波器组
//
//	RecLo = reverse(DecLo)
//	RecHi[k] = (-1)^k * DecLo[k]
//	DecHi = reverse(RecHi)
func NewFilterBank(family Family, decLo []float64) (*FilterBank, error) {
	n := len(decLo)
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("wavelet %q: filter length %d must be even and >= 2", family, n)
	}
	if d := floats.Sum(decLo) - math.Sqrt2; math.Abs(d) > orthoTolerance {
		return nil, fmt.Errorf("wavelet %q: low-pass taps sum to %v, want sqrt(2)", family, floats.Sum(decLo))
	}
	if d := floats.Dot(decLo, decLo) - 1; math.Abs(d) > orthoTolerance {
		return nil, fmt.Errorf("wavelet %q: low-pass taps are not unit norm (%v)", family, floats.Dot(decLo, decLo))
	}

	b := &FilterBank{
		Family: family,
		DecLo:  slices.Clone(decLo),
		RecLo:  slices.Clone(decLo),
		RecHi:  make([]float64, n),
	}
	slices.Reverse(b.RecLo)
	for k, v := range decLo {
		if k%2 == 0 {
			b.RecHi[k] = v
		} else {
			b.RecHi[k] = -v
		}
	}
	b.DecHi = slices.Clone(b.RecHi)
	slices.Reverse(b.DecHi)
	return b, nil
}

// Registry 只读的小波族查找表，构造一次后按指针传递
type Registry struct {
	banks map[Family]*FilterBank
}

// NewRegistry 用给定的分解低通系数表构造注册表
func NewRegistry(table map[Family][]float64) (*Registry, error) {
	r := &Registry{banks: make(map[Family]*FilterBank, len(table))}
	for family, decLo := range table {
		b, err := NewFilterBank(family, decLo)
		if err != nil {
			return nil, err
		}
		r.banks[family] = b
	}
	return r, nil
}

var defaultRegistry = mustRegistry(decLoTable)

func mustRegistry(table map[Family][]float64) *Registry {
	r, err := NewRegistry(table)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry 内置小波族: haar, db1-db4, sym2-sym4, coif1
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Lookup 查找小波族，未知名称返回 *UnknownFamilyError
func (r *Registry) Lookup(family Family) (*FilterBank, error) {
	if r == nil {
		return nil, &UnknownFamilyError{Family: family}
	}
	b, ok := r.banks[family]
	if !ok {
		return nil, &UnknownFamilyError{Family: family}
	}
	return b, nil
}

// Has 是否已注册
func (r *Registry) Has(family Family) bool {
	_, err := r.Lookup(family)
	return err == nil
}

// Names 按字母序返回所有已注册名称
func (r *Registry) Names() []Family {
	names := lo.Keys(r.banks)
	slices.Sort(names)
	return names
}
