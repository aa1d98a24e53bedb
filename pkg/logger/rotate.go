package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RotateConfig 日志轮转配置
type RotateConfig struct {
	Filename     string        // 日志文件路径
	MaxSize      int           // 单个文件最大尺寸（MB），按大小轮转时使用
	MaxBackups   int           // 保留的旧文件数量
	MaxAge       int           // 旧文件保留天数
	Compress     bool          // 是否压缩旧文件
	RotationTime time.Duration // 轮转周期，按时间轮转时使用
	LocalTime    bool          // 文件名使用本地时间
}

// NewProductionRotateBySize 按大小轮转的默认配置：100MB，保留30天
func NewProductionRotateBySize(filename string) io.Writer {
	return NewRotateBySize(&RotateConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		LocalTime:  true,
	})
}

// NewRotateBySize 按文件大小轮转
func NewRotateBySize(cfg *RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
}

// NewRotateByTime 按时间轮转，文件名形如 app.log.2006010215
// 创建失败时退回到按大小轮转
func NewRotateByTime(cfg *RotateConfig) io.Writer {
	rotation := cfg.RotationTime
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := time.Duration(cfg.MaxAge) * 24 * time.Hour
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}

	opts := []rotatelogs.Option{
		rotatelogs.WithLinkName(cfg.Filename),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	}
	if !cfg.LocalTime {
		opts = append(opts, rotatelogs.WithClock(rotatelogs.UTC))
	}

	if dir := filepath.Dir(cfg.Filename); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	w, err := rotatelogs.New(cfg.Filename+".%Y%m%d%H", opts...)
	if err != nil {
		Warn("按时间轮转初始化失败，改为按大小轮转", String("file", cfg.Filename), Err(err))
		return NewRotateBySize(cfg)
	}
	return w
}
