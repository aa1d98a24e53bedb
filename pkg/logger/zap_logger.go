package logger

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger 基于 zap 的日志实现；派生的子日志共享同一个级别
type ZapLogger struct {
	l  *zap.Logger
	s  *zap.SugaredLogger
	al *zap.AtomicLevel
}

// New 创建控制台格式的日志
func New(out io.Writer, level Level, opts ...Option) *ZapLogger {
	return NewWithEncoder(out, level, NewConsoleEncoder(), opts...)
}

// NewWithEncoder 使用指定 encoder 创建日志，调用位置指向调用日志方法的代码
func NewWithEncoder(out io.Writer, level Level, enc zapcore.Encoder, opts ...Option) *ZapLogger {
	if out == nil {
		out = os.Stderr
	}
	al := zap.NewAtomicLevelAt(toZapLevel(level))
	core := zapcore.NewCore(enc, zapcore.AddSync(out), al)
	opts = append([]Option{zap.AddCallerSkip(1)}, opts...)
	return wrap(zap.New(core, opts...), &al)
}

// NewNop 丢弃所有输出的日志实现
func NewNop() *ZapLogger {
	al := zap.NewAtomicLevelAt(zapcore.FatalLevel)
	return wrap(zap.NewNop(), &al)
}

func wrap(l *zap.Logger, al *zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{l: l, s: l.Sugar(), al: al}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller_line",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// NewConsoleEncoder 形如 [INFO] [2006-01-02 15:04:05] [pkg/file.go:12] msg 的文本格式
func NewConsoleEncoder() zapcore.Encoder {
	cfg := encoderConfig()
	cfg.EncodeLevel = bracketLevel
	cfg.EncodeTime = bracketTime
	cfg.EncodeCaller = bracketCaller
	return zapcore.NewConsoleEncoder(cfg)
}

// NewJSONEncoder 每行一个 JSON 对象，适合写入文件后再采集
func NewJSONEncoder() zapcore.Encoder {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewJSONEncoder(cfg)
}

const defaultTimeFormat = "2006-01-02 15:04:05"

func bracketLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + level.CapitalString() + "]")
}

func bracketTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + t.Format(defaultTimeFormat) + "]")
}

func bracketCaller(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + caller.TrimmedPath() + "]")
}

// Named 返回带名称的子日志，名称以 . 连接
func (l *ZapLogger) Named(name string) *ZapLogger {
	return wrap(l.l.Named(name), l.al)
}

// With 返回附带固定字段的子日志
func (l *ZapLogger) With(fields ...Field) *ZapLogger {
	return wrap(l.l.With(fields...), l.al)
}

func (l *ZapLogger) SetLevel(level Level) {
	l.al.SetLevel(toZapLevel(level))
}

// Enabled 该级别的日志是否会输出，用于跳过高频路径上的字段构造
func (l *ZapLogger) Enabled(level Level) bool {
	return l.al.Enabled(toZapLevel(level))
}

func (l *ZapLogger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *ZapLogger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *ZapLogger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *ZapLogger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *ZapLogger) Panic(msg string, fields ...Field) { l.l.Panic(msg, fields...) }
func (l *ZapLogger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *ZapLogger) Debugf(format string, v ...interface{}) { l.s.Debugf(format, v...) }
func (l *ZapLogger) Infof(format string, v ...interface{})  { l.s.Infof(format, v...) }
func (l *ZapLogger) Warnf(format string, v ...interface{})  { l.s.Warnf(format, v...) }
func (l *ZapLogger) Errorf(format string, v ...interface{}) { l.s.Errorf(format, v...) }
func (l *ZapLogger) Panicf(format string, v ...interface{}) { l.s.Panicf(format, v...) }
func (l *ZapLogger) Fatalf(format string, v ...interface{}) { l.s.Fatalf(format, v...) }

func (l *ZapLogger) Sync() error {
	return l.l.Sync()
}
