package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wajihh/wavedenoise"
	"github.com/wajihh/wavedenoise/testimage"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestWaveletsCommand(t *testing.T) {
	out, _, err := execute(t, "wavelets")
	require.NoError(t, err)
	assert.Contains(t, out, "haar   taps=2\n")
	assert.Contains(t, out, "db4    taps=8\n")
	assert.Contains(t, out, "coif1  taps=6\n")
}

func TestDenoiseCommandBuiltinImage(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.png")
	noisy := filepath.Join(dir, "noisy.jpg")

	out, logs, err := execute(t, "denoise", "-o", output, "--noisy-output", noisy, "-w", "haar", "-l", "3", "--workers", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "wavelet=haar level=3 mode=soft pixels=65,536")
	assert.Contains(t, out, "noisy")
	assert.Contains(t, out, "denoised")
	assert.Contains(t, logs, "built-in test image")

	for _, p := range []string{output, noisy} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestDenoiseCommandInputFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	require.NoError(t, wavedenoise.SaveImgFile(input, testimage.Ramp(40, 48)))
	output := filepath.Join(dir, "out.png")

	out, logs, err := execute(t, "denoise", "-i", input, "-o", output, "--mode", "hard", "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, out, "mode=hard pixels=1,920")
	assert.Contains(t, logs, "wavelet threshold")

	img, err := wavedenoise.LoadImage(output)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	// 只写出图片，不落盘中间系数
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"in.png", "out.png"}, names)
}

func TestDenoiseCommandErrors(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.png")

	tests := []struct {
		name string
		args []string
	}{
		{"unknown wavelet", []string{"denoise", "-o", output, "-w", "db99"}},
		{"bad mode", []string{"denoise", "-o", output, "--mode", "garrote"}},
		{"bad log level", []string{"denoise", "-o", output, "--log-level", "loud"}},
		{"level too deep", []string{"denoise", "-o", output, "-l", "9"}},
		{"missing input", []string{"denoise", "-o", output, "-i", filepath.Join(dir, "nope.png")}},
		{"unexpected argument", []string{"denoise", "extra"}},
		{"unknown flag", []string{"denoise", "-o", output, "--coeffs-output", filepath.Join(dir, "c.bin")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
	_, err := os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}
