package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config 可从配置文件加载的日志配置
type Config struct {
	Level        string        `json:"level" yaml:"level" ini:"level"`
	Output       string        `json:"output" yaml:"output" ini:"output"` // stdout / stderr / 文件路径
	Format       string        `json:"format" yaml:"format" ini:"format"` // console / json
	Rotate       string        `json:"rotate" yaml:"rotate" ini:"rotate"` // size / time / none
	MaxSize      int           `json:"max_size" yaml:"max_size" ini:"max_size"`
	MaxBackups   int           `json:"max_backups" yaml:"max_backups" ini:"max_backups"`
	MaxAge       int           `json:"max_age" yaml:"max_age" ini:"max_age"`
	Compress     bool          `json:"compress" yaml:"compress" ini:"compress"`
	RotationTime time.Duration `json:"rotation_time" yaml:"rotation_time" ini:"rotation_time"`
	Caller       bool          `json:"caller" yaml:"caller" ini:"caller"`
}

// NewFromConfig 根据配置创建日志实例
func NewFromConfig(cfg Config, opts ...Option) (*ZapLogger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Caller {
		opts = append([]Option{AddCaller()}, opts...)
	}
	enc := NewConsoleEncoder()
	switch strings.ToLower(cfg.Format) {
	case "", "console":
	case "json":
		enc = NewJSONEncoder()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return NewWithEncoder(cfg.writer(), level, enc, opts...), nil
}

func (cfg Config) writer() io.Writer {
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	}

	rc := &RotateConfig{
		Filename:     cfg.Output,
		MaxSize:      cfg.MaxSize,
		MaxBackups:   cfg.MaxBackups,
		MaxAge:       cfg.MaxAge,
		Compress:     cfg.Compress,
		RotationTime: cfg.RotationTime,
		LocalTime:    true,
	}
	switch strings.ToLower(cfg.Rotate) {
	case "time":
		return NewRotateByTime(rc)
	case "none":
		if dir := filepath.Dir(cfg.Output); dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			Warn("打开日志文件失败，输出到 stderr", String("file", cfg.Output), Err(err))
			return os.Stderr
		}
		return f
	}
	if rc.MaxSize <= 0 {
		rc.MaxSize = 100
	}
	return NewRotateBySize(rc)
}
