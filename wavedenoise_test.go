package wavedenoise

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wajihh/wavedenoise/core"
	"github.com/wajihh/wavedenoise/testimage"
)

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, core.Haar, opts.Wavelet)
	assert.Equal(t, 2, opts.Level)
	assert.Equal(t, core.Soft, opts.Mode)
	assert.Equal(t, 0.01, opts.NoiseVariance)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	opts := Options{Wavelet: "db99", Level: 0, NoiseVariance: -1, Mode: core.Mode(7)}
	err := opts.Validate()
	require.Error(t, err)

	var unknown *core.UnknownFamilyError
	assert.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "level must be >= 1")
	assert.Contains(t, err.Error(), "noise variance")
	assert.Contains(t, err.Error(), "threshold mode")

	_, err = NewDenoiser(opts)
	assert.ErrorContains(t, err, "invalid options")
}

func TestProcessPlaneImprovesQuality(t *testing.T) {
	opts := quietOptions()
	opts.Wavelet = core.Haar
	opts.Level = 2
	d, err := NewDenoiser(opts)
	require.NoError(t, err)

	clean := testimage.Ramp(64, 64)
	res, err := d.ProcessPlane(clean)
	require.NoError(t, err)

	assert.Equal(t, clean, res.Original)
	assert.NotEqual(t, clean, res.Noisy)
	assert.Less(t, res.DenoisedMetrics.MSE, res.NoisyMetrics.MSE)
	assert.Greater(t, res.DenoisedMetrics.PSNR, res.NoisyMetrics.PSNR)
	assert.Greater(t, res.Report.Sigma, 0.0)

	for _, row := range res.Denoised {
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestProcessPlaneSeedIsDeterministic(t *testing.T) {
	d, err := NewDenoiser(quietOptions())
	require.NoError(t, err)

	clean := testimage.Ramp(32, 32)
	a, err := d.ProcessPlane(clean)
	require.NoError(t, err)
	b, err := d.ProcessPlane(clean)
	require.NoError(t, err)
	assert.Equal(t, a.Noisy, b.Noisy)
	assert.Equal(t, a.Denoised, b.Denoised)
}

func TestProcessPlaneWithoutNoise(t *testing.T) {
	opts := quietOptions()
	opts.NoiseVariance = 0
	d, err := NewDenoiser(opts)
	require.NoError(t, err)

	clean := testimage.Ramp(16, 16)
	res, err := d.ProcessPlane(clean)
	require.NoError(t, err)
	assert.Equal(t, clean, res.Noisy)
	assert.Equal(t, 0.0, res.NoisyMetrics.MSE)
}

func TestProcessPlaneLevelTooDeep(t *testing.T) {
	opts := quietOptions()
	opts.Level = 5
	d, err := NewDenoiser(opts)
	require.NoError(t, err)

	_, err = d.ProcessPlane(testimage.Ramp(16, 16))
	var sizing *core.SizingError
	assert.ErrorAs(t, err, &sizing)
	assert.ErrorContains(t, err, "denoise")
}

func TestProcessColourImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 8), B: 100, A: 255})
		}
	}

	opts := quietOptions()
	opts.MaxDim = 32
	d, err := NewDenoiser(opts)
	require.NoError(t, err)

	res, err := d.Process(src)
	require.NoError(t, err)
	require.Len(t, res.Denoised, 16)
	assert.Len(t, res.Denoised[0], 32)
	assert.Equal(t, 16*32, res.Report.Pixels)

	_, err = d.Process(nil)
	assert.Error(t, err)
}

func TestSaveAndLoadImage(t *testing.T) {
	dir := t.TempDir()
	plane := testimage.Ramp(8, 12)

	pngPath := filepath.Join(dir, "ramp.png")
	require.NoError(t, SaveImgFile(pngPath, plane))
	img, err := LoadImage(pngPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), img.Bounds())
	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(255), gray.GrayAt(11, 3).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 3).Y)

	jpgPath := filepath.Join(dir, "ramp.JPG")
	require.NoError(t, SaveImgFile(jpgPath, plane))
	img, err = LoadImage(jpgPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 12, 8), img.Bounds())

	assert.Error(t, SaveImgFile(filepath.Join(dir, "empty.png"), nil))

	ragged := filepath.Join(dir, "ragged.png")
	assert.Error(t, SaveImgFile(ragged, [][]float64{{0.1, 0.2}, {0.3, 0.4, 0.5}}))
	_, err = os.Stat(ragged)
	assert.True(t, os.IsNotExist(err))
	_, err = LoadImage(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}
