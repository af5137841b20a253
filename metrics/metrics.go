// Package metrics 以干净图为参考计算图像质量指标
// 矩阵均为归一化强度，PSNR 的峰值取 1
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// SSIM 稳定常数 (动态范围为 1)
const (
	ssimC1 = 0.01 * 0.01
	ssimC2 = 0.03 * 0.03
)

// Summary 每张图旁显示的质量指标
type Summary struct {
	MSE  float64
	PSNR float64 // dB，完全相同时为 +Inf
	SSIM float64 // 全局单窗口
}

func (s Summary) String() string {
	return fmt.Sprintf("MSE=%.6f PSNR=%.2fdB SSIM=%.4f", s.MSE, s.PSNR, s.SSIM)
}

// Compare 计算 Summary 中的全部指标
func Compare(clean, test [][]float64) (Summary, error) {
	a, b, err := flatten(clean, test)
	if err != nil {
		return Summary{}, err
	}
	mse := mseOf(a, b)
	return Summary{
		MSE:  mse,
		PSNR: psnrOf(mse),
		SSIM: ssimOf(a, b),
	}, nil
}

// MSE 同尺寸矩阵的均方误差
func MSE(clean, test [][]float64) (float64, error) {
	a, b, err := flatten(clean, test)
	if err != nil {
		return 0, err
	}
	return mseOf(a, b), nil
}

// PSNR 峰值信噪比 (dB)，峰值为 1
func PSNR(clean, test [][]float64) (float64, error) {
	mse, err := MSE(clean, test)
	if err != nil {
		return 0, err
	}
	return psnrOf(mse), nil
}

// SSIM 整幅图作为单个窗口计算的结构相似度
func SSIM(clean, test [][]float64) (float64, error) {
	a, b, err := flatten(clean, test)
	if err != nil {
		return 0, err
	}
	return ssimOf(a, b), nil
}

func mseOf(a, b []float64) float64 {
	diff := mat.NewVecDense(len(a), nil)
	diff.SubVec(mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b))
	norm := mat.Norm(diff, 2)
	return norm * norm / float64(len(a))
}

func psnrOf(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(1/mse)
}

func ssimOf(a, b []float64) float64 {
	muA := stat.Mean(a, nil)
	muB := stat.Mean(b, nil)
	if len(a) < 2 {
		return (2*muA*muB + ssimC1) / (muA*muA + muB*muB + ssimC1)
	}
	varA := stat.Variance(a, nil)
	varB := stat.Variance(b, nil)
	cov := stat.Covariance(a, b, nil)

	num := (2*muA*muB + ssimC1) * (2*cov + ssimC2)
	den := (muA*muA + muB*muB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}

// flatten 校验两个矩阵形状相同且非空，按行展开为向量
func flatten(clean, test [][]float64) ([]float64, []float64, error) {
	if len(clean) == 0 || len(clean[0]) == 0 {
		return nil, nil, fmt.Errorf("metrics: empty reference plane")
	}
	if len(clean) != len(test) {
		return nil, nil, fmt.Errorf("metrics: row count mismatch: %d vs %d", len(clean), len(test))
	}
	cols := len(clean[0])
	a := make([]float64, 0, len(clean)*cols)
	b := make([]float64, 0, len(clean)*cols)
	for y := range clean {
		if len(clean[y]) != cols || len(test[y]) != cols {
			return nil, nil, fmt.Errorf("metrics: row %d: want %d columns, got %d and %d", y, cols, len(clean[y]), len(test[y]))
		}
		a = append(a, clean[y]...)
		b = append(b, test[y]...)
	}
	return a, b, nil
}
