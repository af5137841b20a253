package core

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// MADScale 零均值高斯噪声的 median(|x|) 与标准差之比
const MADScale = 0.6745

// Mode 阈值函数类型
type Mode int

const (
	Soft Mode = iota // sign(x) * max(|x|-t, 0)
	Hard             // |x| > t ? x : 0
)

func (m Mode) String() string {
	switch m {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode 解析 "soft" / "hard"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soft", "":
		return Soft, nil
	case "hard":
		return Hard, nil
	default:
		return Soft, fmt.Errorf("unknown threshold mode %q (want soft or hard)", s)
	}
}

// EstimateSigma 从最细一层的对角细节子带估计噪声标准差
// sigma = median(|cD|) / 0.6745
func EstimateSigma(p *Pyramid) (float64, error) {
	if p == nil {
		return 0, &DegenerateInputError{Reason: "nil pyramid"}
	}
	finest, ok := p.Finest()
	if !ok {
		return 0, &DegenerateInputError{Reason: "pyramid has no detail subbands (level 0)"}
	}

	abs := make([]float64, 0, len(finest.D)*lenRow(finest.D))
	for _, row := range finest.D {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, &DegenerateInputError{Reason: "finest diagonal detail contains non-finite coefficients"}
			}
			abs = append(abs, math.Abs(v))
		}
	}
	if len(abs) == 0 {
		return 0, &DegenerateInputError{Reason: "finest diagonal detail subband is empty"}
	}

	return median(abs) / MADScale, nil
}

// UniversalThreshold 通用阈值 tau = sigma * sqrt(2 ln N)
func UniversalThreshold(sigma float64, n int) (float64, error) {
	if n < 2 {
		return 0, &DegenerateInputError{Reason: fmt.Sprintf("pixel count %d < 2, ln(N) is not positive", n)}
	}
	if sigma < 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return 0, &DegenerateInputError{Reason: fmt.Sprintf("invalid noise estimate %v", sigma)}
	}
	return sigma * math.Sqrt(2*math.Log(float64(n))), nil
}

// SoftThreshold 逐元素软阈值，返回新矩阵；tau=0 时为恒等映射
func SoftThreshold(sub [][]float64, tau float64) [][]float64 {
	return mapMatrix(sub, func(x float64) float64 {
		return softValue(x, tau)
	})
}

// HardThreshold 逐元素硬阈值，返回新矩阵
func HardThreshold(sub [][]float64, tau float64) [][]float64 {
	return mapMatrix(sub, func(x float64) float64 {
		if math.Abs(x) > tau {
			return x
		}
		return 0
	})
}

func softValue(x, tau float64) float64 {
	mag := math.Abs(x) - tau
	if mag <= 0 {
		return 0
	}
	return math.Copysign(mag, x)
}

// ThresholdPyramid 对所有细节子带应用同一个阈值，近似子带原样保留 (共享引用)
// 返回新的金字塔，p 不会被修改
func ThresholdPyramid(p *Pyramid, tau float64, mode Mode) *Pyramid {
	apply := SoftThreshold
	if mode == Hard {
		apply = HardThreshold
	}

	out := &Pyramid{
		Approx:  p.Approx,
		Details: make([]Detail, len(p.Details)),
		Rows:    p.Rows,
		Cols:    p.Cols,
	}
	for l, d := range p.Details {
		out.Details[l] = Detail{
			H: apply(d.H, tau),
			V: apply(d.V, tau),
			D: apply(d.D, tau),
		}
	}
	return out
}

// CountZeros 细节子带中为零的系数个数与总数
func (p *Pyramid) CountZeros() (zeros, total int) {
	for _, d := range p.Details {
		for _, sub := range [][][]float64{d.H, d.V, d.D} {
			for _, row := range sub {
				for _, v := range row {
					if v == 0 {
						zeros++
					}
				}
				total += len(row)
			}
		}
	}
	return zeros, total
}

func mapMatrix(m [][]float64, fn func(float64) float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = fn(v)
		}
	}
	return out
}

// median 与 numpy 一致：偶数个元素时取中间两个的平均；会重排 values
func median(values []float64) float64 {
	slices.Sort(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}
