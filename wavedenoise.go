// Package wavedenoise 基于小波阈值的灰度图去噪
//
// 流程: 读图 -> 灰度归一化 -> (可选) 加高斯噪声 -> 小波分解 -> 通用阈值软阈值 -> 重构 -> 裁剪 -> 指标
package wavedenoise

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wajihh/wavedenoise/converter"
	"github.com/wajihh/wavedenoise/core"
	"github.com/wajihh/wavedenoise/metrics"
	"github.com/wajihh/wavedenoise/noise"
)

// Options 去噪配置
type Options struct {
	Wavelet       core.Family
	Level         int
	Mode          core.Mode
	NoiseVariance float64 // 0 表示不加噪声，直接对输入去噪
	Seed          uint64
	Workers       int
	MaxDim        int // > 0 时先把大图缩小到该尺寸以内
	Logger        *slog.Logger
}

// DefaultOptions 与原界面默认值一致: haar (下拉框第一项), 2 层, 噪声方差 0.01
func DefaultOptions() Options {
	return Options{
		Wavelet:       core.Haar,
		Level:         2,
		Mode:          core.Soft,
		NoiseVariance: 0.01,
		Seed:          1,
	}
}

// Validate 检查配置；与图像尺寸相关的层数检查在去噪时进行
func (o Options) Validate() error {
	var errs []error
	if !core.DefaultRegistry().Has(o.Wavelet) {
		errs = append(errs, &core.UnknownFamilyError{Family: o.Wavelet})
	}
	if o.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", o.Level))
	}
	if o.NoiseVariance < 0 || o.NoiseVariance > 1 || math.IsNaN(o.NoiseVariance) {
		errs = append(errs, fmt.Errorf("noise variance must be in [0, 1], got %v", o.NoiseVariance))
	}
	if o.Mode != core.Soft && o.Mode != core.Hard {
		errs = append(errs, fmt.Errorf("unknown threshold mode %v", o.Mode))
	}
	return errors.Join(errs...)
}

// Denoiser 对外入口
type Denoiser struct {
	opts   Options
	engine *core.Engine
	logger *slog.Logger
}

// NewDenoiser 校验配置并创建 Denoiser
func NewDenoiser(opts Options) (*Denoiser, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Denoiser{
		opts: opts,
		engine: &core.Engine{
			Registry: core.DefaultRegistry(),
			Family:   opts.Wavelet,
			Level:    opts.Level,
			Mode:     opts.Mode,
			Workers:  opts.Workers,
			Logger:   logger,
		},
		logger: logger,
	}, nil
}

// Result 去噪结果
// Denoised 已裁剪到 [0,1]；Raw 为未裁剪的重构结果
type Result struct {
	Original [][]float64
	Noisy    [][]float64
	Raw      [][]float64
	Denoised [][]float64
	Report   *core.Report

	NoisyMetrics    metrics.Summary
	DenoisedMetrics metrics.Summary
}

// Process 处理任意图片 (彩色图先转灰度)
func (d *Denoiser) Process(src image.Image) (*Result, error) {
	if src == nil {
		return nil, errors.New("nil source image")
	}
	src = converter.Fit(src, d.opts.MaxDim)
	return d.ProcessPlane(converter.ToPlane(src))
}

// ProcessPlane 处理归一化灰度矩阵
func (d *Denoiser) ProcessPlane(clean [][]float64) (*Result, error) {
	noisy := clean
	if d.opts.NoiseVariance > 0 {
		var err error
		noisy, err = noise.Gaussian{Variance: d.opts.NoiseVariance, Seed: d.opts.Seed, Clip: true}.Apply(clean)
		if err != nil {
			return nil, err
		}
	}

	raw, report, err := d.engine.DenoiseWithReport(noisy)
	if err != nil {
		return nil, fmt.Errorf("denoise: %w", err)
	}

	res := &Result{
		Original: clean,
		Noisy:    noisy,
		Raw:      raw,
		Denoised: converter.Clip(raw, 0, 1),
		Report:   report,
	}
	if res.NoisyMetrics, err = metrics.Compare(clean, noisy); err != nil {
		return nil, err
	}
	if res.DenoisedMetrics, err = metrics.Compare(clean, res.Denoised); err != nil {
		return nil, err
	}

	d.logger.Info("denoised image",
		"size", fmt.Sprintf("%dx%d", len(clean[0]), len(clean)),
		"wavelet", report.Family, "level", report.Level,
		"sigma", report.Sigma, "threshold", report.Threshold,
		"noisy_psnr", res.NoisyMetrics.PSNR, "denoised_psnr", res.DenoisedMetrics.PSNR)
	return res, nil
}

// LoadImage 读取图片文件 (格式由已注册的解码器决定)
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SaveImgFile 将归一化矩阵保存为 8 位灰度图
// 扩展名 .jpg/.jpeg 使用 JPEG (质量 100)，其余使用 PNG
func SaveImgFile(path string, plane [][]float64) (err error) {
	// 先转换再创建文件，形状错误时不留下空文件
	img, err := converter.FromPlane(plane)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	default:
		return png.Encode(f, img)
	}
}
