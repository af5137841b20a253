// Package converter 在 image.Image 与归一化灰度矩阵 ([][]float64, 取值 [0,1]) 之间转换
package converter

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

const (
	max8  = 255.0
	max16 = 65535.0
)

// ToPlane 将任意图片转换为归一化灰度矩阵 plane[y][x]
// 16 位源图按 65535 归一化，其余按 255 归一化
func ToPlane(src image.Image) [][]float64 {
	if is16Bit(src) {
		gray := ConvertToGray16(src)
		return planeFrom(gray.Bounds(), func(x, y int) float64 {
			return float64(gray.Gray16At(x, y).Y) / max16
		})
	}
	gray := ConvertToGray(src)
	return planeFrom(gray.Bounds(), func(x, y int) float64 {
		return float64(gray.GrayAt(x, y).Y) / max8
	})
}

func planeFrom(b image.Rectangle, at func(x, y int) float64) [][]float64 {
	plane := make([][]float64, b.Dy())
	for y := range plane {
		row := make([]float64, b.Dx())
		for x := range row {
			row[x] = at(b.Min.X+x, b.Min.Y+y)
		}
		plane[y] = row
	}
	return plane
}

// FromPlane 裁剪到 [0,1] 后量化为 8 位灰度图
// 空矩阵或各行长度不一致时返回错误
func FromPlane(plane [][]float64) (*image.Gray, error) {
	rect, err := planeRect(plane)
	if err != nil {
		return nil, err
	}
	img := image.NewGray(rect)
	for y, row := range plane {
		for x, v := range row {
			img.Pix[y*img.Stride+x] = uint8(math.Round(clamp01(v) * max8))
		}
	}
	return img, nil
}

// FromPlane16 裁剪到 [0,1] 后量化为 16 位灰度图
func FromPlane16(plane [][]float64) (*image.Gray16, error) {
	rect, err := planeRect(plane)
	if err != nil {
		return nil, err
	}
	img := image.NewGray16(rect)
	for y, row := range plane {
		for x, v := range row {
			q := uint16(math.Round(clamp01(v) * max16))
			i := y*img.Stride + 2*x
			img.Pix[i] = uint8(q >> 8)
			img.Pix[i+1] = uint8(q)
		}
	}
	return img, nil
}

// Clip 返回新矩阵，所有值限制在 [lo, hi]
func Clip(plane [][]float64, lo, hi float64) [][]float64 {
	out := make([][]float64, len(plane))
	for y, row := range plane {
		out[y] = make([]float64, len(row))
		for x, v := range row {
			out[y][x] = min(max(v, lo), hi)
		}
	}
	return out
}

// ConvertToGray 将任意图片转换为 8位灰度图
func ConvertToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	bounds := src.Bounds()
	grayImg := image.NewGray(bounds)
	// draw 包会自动处理颜色模型转换 (RGB -> Gray)
	draw.Draw(grayImg, bounds, src, bounds.Min, draw.Src)
	return grayImg
}

// ConvertToGray16 将任意图片转换为 16位灰度图
func ConvertToGray16(src image.Image) *image.Gray16 {
	if g, ok := src.(*image.Gray16); ok {
		return g
	}
	bounds := src.Bounds()
	grayImg := image.NewGray16(bounds)
	draw.Draw(grayImg, bounds, src, bounds.Min, draw.Src)
	return grayImg
}

// Fit 当宽或高超过 maxDim 时按比例缩小 (CatmullRom)，maxDim <= 0 不处理
func Fit(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return src
	}

	ratio := float64(maxDim) / float64(max(w, h))
	newW := max(1, int(math.Round(float64(w)*ratio)))
	newH := max(1, int(math.Round(float64(h)*ratio)))

	var dst draw.Image
	if is16Bit(src) {
		dst = image.NewGray16(image.Rect(0, 0, newW, newH))
	} else {
		dst = image.NewGray(image.Rect(0, 0, newW, newH))
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func is16Bit(src image.Image) bool {
	switch src.(type) {
	case *image.Gray16, *image.RGBA64, *image.NRGBA64:
		return true
	}
	return false
}

// planeRect 校验矩阵为非空矩形
func planeRect(plane [][]float64) (image.Rectangle, error) {
	if len(plane) == 0 || len(plane[0]) == 0 {
		return image.Rectangle{}, errors.New("converter: empty plane")
	}
	cols := len(plane[0])
	for y, row := range plane {
		if len(row) != cols {
			return image.Rectangle{}, fmt.Errorf("converter: row %d has %d columns, want %d", y, len(row), cols)
		}
	}
	return image.Rect(0, 0, cols, len(plane)), nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return min(max(v, 0), 1)
}
