package statemachine

import "github.com/junbin-yang/go-breakout/pkg/logger"

// Option 状态机配置选项
type Option func(*options)

type options struct {
	name         string
	log          logger.Logger
	historyLimit int
}

// WithName 设置状态机名称（用于日志）
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger 设置日志实现，未设置时使用 logger.Default()
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithHistory 记录最近 limit 条已提交的转换，limit <= 0 时不记录
func WithHistory(limit int) Option {
	return func(o *options) {
		o.historyLimit = limit
	}
}
