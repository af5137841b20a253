// Package workerpool 将下标区间切分给有限个 goroutine 执行
// 小波变换的行变换、列变换互不依赖，用它并行
//
// 用法:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	pool.ParallelFor(rows, func(start, end int) {
//	    for i := start; i < end; i++ {
//	        processRow(i)
//	    }
//	})
package workerpool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk 每个分块的最少行数，太小的循环直接串行
const minChunk = 8

// Pool 最多 numWorkers 个分块同时执行
// nil *Pool 可以直接使用，在调用方 goroutine 上串行执行
type Pool struct {
	numWorkers int
}

// New 创建 Pool，numWorkers <= 0 时使用 GOMAXPROCS
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Pool{numWorkers: numWorkers}
}

// NumWorkers 并发数，nil 时为 1
func (p *Pool) NumWorkers() int {
	if p == nil {
		return 1
	}
	return p.numWorkers
}

// ParallelFor 把 [0, n) 切成连续分块交给 fn(start, end)，全部完成后返回
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := min(p.NumWorkers(), (n+minChunk-1)/minChunk)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		start := start
		end := min(start+chunkSize, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
