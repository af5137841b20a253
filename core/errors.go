package core

import "fmt"

// SizingError 分解层数与图像尺寸不匹配 (层数非正、过高或超出滤波器支撑)
type SizingError struct {
	Level      int
	Rows, Cols int
	Reason     string
}

func (e *SizingError) Error() string {
	return fmt.Sprintf("sizing error: level %d on %dx%d image: %s", e.Level, e.Rows, e.Cols, e.Reason)
}

// ShapeMismatchError 系数金字塔或输入矩阵形状不一致
type ShapeMismatchError struct {
	What string
	Want string
	Got  string
}

func (e *ShapeMismatchError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("shape mismatch: %s: got %s", e.What, e.Got)
	}
	return fmt.Sprintf("shape mismatch: %s: want %s, got %s", e.What, e.Want, e.Got)
}

// DegenerateInputError 输入退化，无法得到有意义的 sigma / 阈值
type DegenerateInputError struct {
	Reason string
}

func (e *DegenerateInputError) Error() string {
	return "degenerate input: " + e.Reason
}

// UnknownFamilyError 注册表中没有该小波族
type UnknownFamilyError struct {
	Family Family
}

func (e *UnknownFamilyError) Error() string {
	return fmt.Sprintf("unknown wavelet family %q", string(e.Family))
}

func dims(m [][]float64) string {
	if len(m) == 0 {
		return "0x0"
	}
	return fmt.Sprintf("%dx%d", len(m), len(m[0]))
}
