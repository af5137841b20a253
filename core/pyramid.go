package core

import (
	"fmt"

	"github.com/samber/lo"
)

// maxLevelBits 防止 1<<level 溢出
const maxLevelBits = 30

// Detail 同一层的三个细节子带
type Detail struct {
	H [][]float64 // 水平细节
	V [][]float64 // 垂直细节
	D [][]float64 // 对角细节
}

// Pyramid 多层分解的系数金字塔
// Details 按从粗到细排列，Details[len-1] 是最细一层
// Rows/Cols 记录原图尺寸，重构时据此裁剪
type Pyramid struct {
	Approx  [][]float64
	Details []Detail
	Rows    int
	Cols    int
}

// Level 分解层数
func (p *Pyramid) Level() int {
	return len(p.Details)
}

// Finest 最细一层的细节子带
func (p *Pyramid) Finest() (Detail, bool) {
	if len(p.Details) == 0 {
		return Detail{}, false
	}
	return p.Details[len(p.Details)-1], true
}

// Shapes 各层子带尺寸 (从粗到细)，用于日志
func (p *Pyramid) Shapes() []string {
	return lo.Map(p.Details, func(d Detail, _ int) string {
		return dims(d.H)
	})
}

// CheckLevel 检查分解层数是否适合图像尺寸：level >= 1 且 2^level <= min(rows, cols)
func CheckLevel(rows, cols, level int) error {
	if level < 1 {
		return &SizingError{Level: level, Rows: rows, Cols: cols, Reason: "level must be >= 1"}
	}
	side := min(rows, cols)
	if level > maxLevelBits || 1<<level > side {
		return &SizingError{
			Level:  level,
			Rows:   rows,
			Cols:   cols,
			Reason: fmt.Sprintf("2^level exceeds the smaller side %d", side),
		}
	}
	return nil
}

// Decompose 多层二维小波分解
// 先校验 (小波族、矩阵形状、层数、滤波器支撑)，校验失败时不做任何变换
func Decompose(img [][]float64, reg *Registry, family Family, level int, opts ...Option) (*Pyramid, error) {
	bank, err := reg.Lookup(family)
	if err != nil {
		return nil, err
	}
	rows, cols, err := checkMatrix("image", img)
	if err != nil {
		return nil, err
	}
	if err := CheckLevel(rows, cols, level); err != nil {
		return nil, err
	}

	// 最粗一层仍需不短于滤波器支撑长度 (pywt.dwt_max_level)
	if maxLevel := bank.MaxLevel(min(rows, cols)); level > maxLevel {
		return nil, &SizingError{
			Level:  level,
			Rows:   rows,
			Cols:   cols,
			Reason: fmt.Sprintf("%s (%d taps) supports at most %d levels here", family, bank.Len(), maxLevel),
		}
	}

	cfg := newConfig(opts)

	p := &Pyramid{
		Rows:    rows,
		Cols:    cols,
		Details: make([]Detail, level),
	}

	// 从最细一层开始，每次在近似子带上继续分解
	approx := img
	for l := level - 1; l >= 0; l-- {
		cA, cH, cV, cD := DWT2D(approx, bank, cfg.pool)
		p.Details[l] = Detail{H: cH, V: cV, D: cD}
		approx = cA
	}
	p.Approx = approx

	cfg.logger.Debug("wavelet decomposition", "wavelet", family, "level", level,
		"rows", rows, "cols", cols, "subbands", p.Shapes())
	return p, nil
}

// Reconstruct 多层二维小波重构，输出尺寸等于 p.Rows x p.Cols
// 子带形状不一致时返回 *ShapeMismatchError，不做截断或补齐
func Reconstruct(p *Pyramid, reg *Registry, family Family, opts ...Option) ([][]float64, error) {
	bank, err := reg.Lookup(family)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg := newConfig(opts)
	approx := p.Approx
	for l, d := range p.Details {
		rows, cols := p.Rows, p.Cols
		if l+1 < len(p.Details) {
			rows, cols = len(p.Details[l+1].H), len(p.Details[l+1].H[0])
		}
		approx = IDWT2D(approx, d.H, d.V, d.D, rows, cols, bank, cfg.pool)
	}
	return approx, nil
}

// Validate 检查金字塔各层尺寸是否相互一致
func (p *Pyramid) Validate() error {
	if p == nil {
		return &ShapeMismatchError{What: "pyramid", Got: "nil"}
	}
	if len(p.Details) == 0 {
		return &ShapeMismatchError{What: "pyramid", Want: ">= 1 detail level", Got: "0 levels"}
	}
	if p.Rows < 1 || p.Cols < 1 {
		return &ShapeMismatchError{What: "pyramid original shape", Got: fmt.Sprintf("%dx%d", p.Rows, p.Cols)}
	}

	r, c, err := checkMatrix("approximation", p.Approx)
	if err != nil {
		return err
	}

	for l, d := range p.Details {
		for _, sub := range []struct {
			name string
			m    [][]float64
		}{{"H", d.H}, {"V", d.V}, {"D", d.D}} {
			what := fmt.Sprintf("level %d %s detail", l, sub.name)
			sr, sc, err := checkMatrix(what, sub.m)
			if err != nil {
				return err
			}
			if sr != r || sc != c {
				return &ShapeMismatchError{What: what, Want: fmt.Sprintf("%dx%d", r, c), Got: dims(sub.m)}
			}
		}

		// 本层重构结果 (2r x 2c) 需要裁剪到下一层 (或原图) 的尺寸
		nr, nc, what := p.Rows, p.Cols, "original shape"
		if l+1 < len(p.Details) {
			nr, nc = len(p.Details[l+1].H), lenRow(p.Details[l+1].H)
			what = fmt.Sprintf("level %d detail", l+1)
		}
		if !halves(r, nr) || !halves(c, nc) {
			return &ShapeMismatchError{
				What: what,
				Want: fmt.Sprintf("%dx%d or one less per side", 2*r, 2*c),
				Got:  fmt.Sprintf("%dx%d", nr, nc),
			}
		}
		r, c = nr, nc
	}
	return nil
}

// halves 尺寸为 sub 的子带能否重构出尺寸 full
func halves(sub, full int) bool {
	return full == 2*sub || full == 2*sub-1
}

func lenRow(m [][]float64) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// checkMatrix 非空且每行等长
func checkMatrix(what string, m [][]float64) (rows, cols int, err error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return 0, 0, &ShapeMismatchError{What: what, Want: "non-empty matrix", Got: dims(m)}
	}
	rows, cols = len(m), len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, &ShapeMismatchError{
				What: fmt.Sprintf("%s row %d", what, i),
				Want: fmt.Sprintf("%d columns", cols),
				Got:  fmt.Sprintf("%d columns", len(row)),
			}
		}
	}
	return rows, cols, nil
}
