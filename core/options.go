package core

import (
	"log/slog"

	"github.com/wajihh/wavedenoise/internal/workerpool"
)

// Option 配置 Decompose / Reconstruct
type Option func(*config)

type config struct {
	pool   *workerpool.Pool
	logger *slog.Logger
}

// WithWorkers 行/列变换的并发数，n <= 1 时串行执行
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 1 {
			c.pool = workerpool.New(n)
		} else {
			c.pool = nil
		}
	}
}

// WithLogger 指定日志输出，默认 slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts []Option) *config {
	c := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
