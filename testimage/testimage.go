// Package testimage 生成用于演示和测试的合成灰度图 (归一化矩阵)
package testimage

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/wajihh/wavedenoise/converter"
)

// DefaultSize 默认测试图边长
const DefaultSize = 256

// DefaultContent 默认测试图中二维码的内容
const DefaultContent = "https://github.com/wajihh/wavedenoise"

// Ramp 水平方向从 0 到 1 的线性渐变
func Ramp(rows, cols int) [][]float64 {
	plane := make([][]float64, rows)
	for y := range plane {
		plane[y] = make([]float64, cols)
		for x := range plane[y] {
			if cols > 1 {
				plane[y][x] = float64(x) / float64(cols-1)
			}
		}
	}
	return plane
}

// QRCode 二维码叠加对角渐变：既有锐利边缘也有平滑区域
// 取值范围 [0.15, 1]
func QRCode(content string, size int) ([][]float64, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	qr := converter.ToPlane(q.Image(size))

	rows := len(qr)
	if rows == 0 {
		return nil, fmt.Errorf("render qr code: empty image at size %d", size)
	}
	cols := len(qr[0])
	span := float64(max(rows+cols-2, 1))

	plane := make([][]float64, rows)
	for y := range plane {
		plane[y] = make([]float64, cols)
		for x := range plane[y] {
			gradient := float64(x+y) / span
			plane[y][x] = 0.15 + 0.55*qr[y][x] + 0.3*gradient
		}
	}
	return plane, nil
}

// Default 默认测试图 (256x256 二维码 + 渐变)
func Default() ([][]float64, error) {
	return QRCode(DefaultContent, DefaultSize)
}
