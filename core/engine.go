package core

import (
	"log/slog"
)

// Engine 负责具体的小波去噪流程
// 分解 -> 估计 sigma -> 通用阈值 -> 细节子带阈值处理 -> 重构
type Engine struct {
	Registry *Registry // nil 时使用 DefaultRegistry()
	Family   Family
	Level    int
	Mode     Mode
	Workers  int // 行/列变换并发数，<= 1 串行
	Logger   *slog.Logger
}

// Report 一次去噪的中间量
type Report struct {
	Family    Family
	Level     int
	Mode      Mode
	Pixels    int
	Sigma     float64
	Threshold float64

	ZeroedCoefficients      int
	TotalDetailCoefficients int
}

// Denoise 对灰度矩阵去噪，输出与输入同尺寸，取值可能超出 [0,1]
func (e *Engine) Denoise(img [][]float64) ([][]float64, error) {
	out, _, err := e.DenoiseWithReport(img)
	return out, err
}

// DenoiseWithReport 同 Denoise，并返回 sigma / 阈值等统计
func (e *Engine) DenoiseWithReport(img [][]float64) ([][]float64, *Report, error) {
	reg := e.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := []Option{WithWorkers(e.Workers), WithLogger(logger)}

	// 1. 分解
	pyr, err := Decompose(img, reg, e.Family, e.Level, opts...)
	if err != nil {
		return nil, nil, err
	}

	// 2. 噪声估计与阈值
	sigma, err := EstimateSigma(pyr)
	if err != nil {
		return nil, nil, err
	}
	n := pyr.Rows * pyr.Cols
	tau, err := UniversalThreshold(sigma, n)
	if err != nil {
		return nil, nil, err
	}

	// 3. 细节子带阈值处理，近似子带不变
	thresholded := ThresholdPyramid(pyr, tau, e.Mode)
	zeros, total := thresholded.CountZeros()

	logger.Debug("wavelet threshold",
		"wavelet", e.Family, "level", e.Level, "mode", e.Mode,
		"subbands", thresholded.Shapes(), "sigma", sigma, "threshold", tau,
		"zeroed", zeros, "total", total)

	// 4. 重构
	out, err := Reconstruct(thresholded, reg, e.Family, opts...)
	if err != nil {
		return nil, nil, err
	}

	return out, &Report{
		Family:                  e.Family,
		Level:                   e.Level,
		Mode:                    e.Mode,
		Pixels:                  n,
		Sigma:                   sigma,
		Threshold:               tau,
		ZeroedCoefficients:      zeros,
		TotalDetailCoefficients: total,
	}, nil
}
