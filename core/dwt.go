package core

import (
	"github.com/wajihh/wavedenoise/internal/workerpool"
)

// DWT2D 对矩阵进行一次二维小波分解 (周期化边界)
// 先对每一行做一维变换，再对每一列做一维变换，返回四个子带：
//
//	cA: 行低通 + 列低通 (近似)
//	cH: 行低通 + 列高通 (水平细节)
//	cV: 行高通 + 列低通 (垂直细节)
//	cD: 行高通 + 列高通 (对角细节)
//
// 子带尺寸为 ceil(rows/2) x ceil(cols/2)。输入不会被修改。
func DWT2D(matrix [][]float64, bank *FilterBank, pool *workerpool.Pool) (cA, cH, cV, cD [][]float64) {
	h := len(matrix)
	w := len(matrix[0])
	halfH := (h + 1) / 2
	halfW := (w + 1) / 2

	// 1. 行变换
	rowLo := newMatrix(h, halfW)
	rowHi := newMatrix(h, halfW)
	pool.ParallelFor(h, func(start, end int) {
		for i := start; i < end; i++ {
			rowLo[i], rowHi[i] = dwt1D(matrix[i], bank)
		}
	})

	// 2. 列变换，每个 worker 只写自己负责的列
	cA = newMatrix(halfH, halfW)
	cH = newMatrix(halfH, halfW)
	cV = newMatrix(halfH, halfW)
	cD = newMatrix(halfH, halfW)
	pool.ParallelFor(halfW, func(start, end int) {
		col := make([]float64, h)
		for j := start; j < end; j++ {
			for i := 0; i < h; i++ {
				col[i] = rowLo[i][j]
			}
			lo, hi := dwt1D(col, bank)
			for i := 0; i < halfH; i++ {
				cA[i][j] = lo[i]
				cH[i][j] = hi[i]
			}

			for i := 0; i < h; i++ {
				col[i] = rowHi[i][j]
			}
			lo, hi = dwt1D(col, bank)
			for i := 0; i < halfH; i++ {
				cV[i][j] = lo[i]
				cD[i][j] = hi[i]
			}
		}
	})

	return cA, cH, cV, cD
}

// IDWT2D 二维小波逆变换，DWT2D 的精确逆
// rows/cols 为目标尺寸，必须等于 2*子带尺寸 或 2*子带尺寸-1；调用方负责校验
func IDWT2D(cA, cH, cV, cD [][]float64, rows, cols int, bank *FilterBank, pool *workerpool.Pool) [][]float64 {
	halfW := len(cA[0])

	// 1. 列逆变换
	rowLo := newMatrix(rows, halfW)
	rowHi := newMatrix(rows, halfW)
	pool.ParallelFor(halfW, func(start, end int) {
		half := len(cA)
		lo := make([]float64, half)
		hi := make([]float64, half)
		for j := start; j < end; j++ {
			for i := 0; i < half; i++ {
				lo[i] = cA[i][j]
				hi[i] = cH[i][j]
			}
			col := idwt1D(lo, hi, bank, rows)
			for i := 0; i < rows; i++ {
				rowLo[i][j] = col[i]
			}

			for i := 0; i < half; i++ {
				lo[i] = cV[i][j]
				hi[i] = cD[i][j]
			}
			col = idwt1D(lo, hi, bank, rows)
			for i := 0; i < rows; i++ {
				rowHi[i][j] = col[i]
			}
		}
	})

	// 2. 行逆变换
	output := make([][]float64, rows)
	pool.ParallelFor(rows, func(start, end int) {
		for i := start; i < end; i++ {
			output[i] = idwt1D(rowLo[i], rowHi[i], bank, cols)
		}
	})

	return output
}

// dwt1D 一维周期化分解：与分解滤波器卷积后二倍下采样
// 奇数长度先复制最后一个样本补齐为偶数长度
//
//	lo[i] = Σ DecLo[k] * x[(2i + L-1 - k) mod n]
func dwt1D(data []float64, bank *FilterBank) (lo, hi []float64) {
	x := data
	if len(x)%2 != 0 {
		x = make([]float64, len(data)+1)
		copy(x, data)
		x[len(data)] = data[len(data)-1]
	}

	n := len(x)
	half := n / 2
	taps := bank.Len()
	lo = make([]float64, half)
	hi = make([]float64, half)

	for i := 0; i < half; i++ {
		var sl, sh float64
		for k := 0; k < taps; k++ {
			v := x[(2*i+taps-1-k)%n]
			sl += bank.DecLo[k] * v
			sh += bank.DecHi[k] * v
		}
		lo[i] = sl
		hi[i] = sh
	}
	return lo, hi
}

// idwt1D 一维周期化重构：零插值上采样后与重构滤波器卷积，再裁剪到 n
//
//	x[(2i + k) mod m] += RecLo[k]*lo[i] + RecHi[k]*hi[i]
func idwt1D(lo, hi []float64, bank *FilterBank, n int) []float64 {
	half := len(lo)
	m := 2 * half
	taps := bank.Len()
	output := make([]float64, m)

	for i := 0; i < half; i++ {
		L := lo[i]
		H := hi[i]
		for k := 0; k < taps; k++ {
			output[(2*i+k)%m] += bank.RecLo[k]*L + bank.RecHi[k]*H
		}
	}
	return output[:n]
}

// newMatrix 分配 rows x cols 矩阵，底层共用一块连续内存
func newMatrix(rows, cols int) [][]float64 {
	data := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = data[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}
