package logger

import (
	"time"

	"go.uber.org/zap"
)

type Option = zap.Option

// AddCaller 输出调用位置
func AddCaller() Option { return zap.AddCaller() }

// AddCallerSkip 调用位置向上跳过 skip 层
func AddCallerSkip(skip int) Option { return zap.AddCallerSkip(skip) }

// AddStacktrace 指定级别及以上输出堆栈
func AddStacktrace(level Level) Option { return zap.AddStacktrace(toZapLevel(level)) }

// WithFields 附加固定字段
func WithFields(fields ...Field) Option { return zap.Fields(fields...) }

type Field = zap.Field

func String(key, val string) Field                 { return zap.String(key, val) }
func Strings(key string, val []string) Field       { return zap.Strings(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Uint32(key string, val uint32) Field          { return zap.Uint32(key, val) }
func Uint64(key string, val uint64) Field          { return zap.Uint64(key, val) }
func Float64(key string, val float64) Field        { return zap.Float64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Any(key string, val interface{}) Field        { return zap.Any(key, val) }
func Err(err error) Field                          { return zap.Error(err) }

func GetError(e error) Field {
	return zap.Error(e)
}
