// Package noise 为归一化灰度矩阵叠加高斯噪声 (与 skimage random_noise 的 gaussian 模式一致)
package noise

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gaussian 加性高斯噪声 N(Mean, Variance)
type Gaussian struct {
	Mean     float64
	Variance float64
	Seed     uint64
	Clip     bool // 结果裁剪到 [0,1]
}

// Validate 方差必须非负且有限
func (g Gaussian) Validate() error {
	if g.Variance < 0 || math.IsNaN(g.Variance) || math.IsInf(g.Variance, 0) {
		return fmt.Errorf("noise variance must be a finite value >= 0, got %v", g.Variance)
	}
	if math.IsNaN(g.Mean) || math.IsInf(g.Mean, 0) {
		return fmt.Errorf("noise mean must be finite, got %v", g.Mean)
	}
	return nil
}

// Apply 返回加噪后的新矩阵；同一个 Seed 得到相同结果
// 按行优先顺序逐像素采样
func (g Gaussian) Apply(plane [][]float64) ([][]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	dist := distuv.Normal{
		Mu:    g.Mean,
		Sigma: math.Sqrt(g.Variance),
		Src:   rand.NewSource(g.Seed),
	}

	out := make([][]float64, len(plane))
	for y, row := range plane {
		out[y] = make([]float64, len(row))
		for x, v := range row {
			n := v + dist.Rand()
			if g.Clip {
				n = min(max(n, 0), 1)
			}
			out[y][x] = n
		}
	}
	return out, nil
}
