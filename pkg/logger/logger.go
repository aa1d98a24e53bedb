package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap/zapcore"
)

// Level 日志级别
type Level int8

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	PanicLevel
	FatalLevel
)

// ParseLevel 解析日志级别名称（不区分大小写）
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "panic":
		return PanicLevel, nil
	case "fatal":
		return FatalLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// toZapLevel 映射到 zap 级别（跳过 DPanic）
func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case PanicLevel:
		return zapcore.PanicLevel
	case FatalLevel:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// Logger 日志接口，可通过 ReplaceDefault 替换默认实现
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Panic(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Panicf(format string, v ...interface{})
	Fatalf(format string, v ...interface{})
	SetLevel(level Level)
	Sync() error
}

type holder struct{ l Logger }

var std atomic.Pointer[holder]

func init() {
	std.Store(&holder{l: New(os.Stderr, InfoLevel, AddCaller(), AddCallerSkip(1))})
}

func Default() Logger         { return std.Load().l }
func ReplaceDefault(l Logger) { std.Store(&holder{l: l}) }

func SetLevel(level Level) { Default().SetLevel(level) }

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }
func Panic(msg string, fields ...Field) { Default().Panic(msg, fields...) }
func Fatal(msg string, fields ...Field) { Default().Fatal(msg, fields...) }

func Debugf(format string, v ...interface{}) { Default().Debugf(format, v...) }
func Infof(format string, v ...interface{})  { Default().Infof(format, v...) }
func Warnf(format string, v ...interface{})  { Default().Warnf(format, v...) }
func Errorf(format string, v ...interface{}) { Default().Errorf(format, v...) }
func Panicf(format string, v ...interface{}) { Default().Panicf(format, v...) }
func Fatalf(format string, v ...interface{}) { Default().Fatalf(format, v...) }

func Sync() error { return Default().Sync() }
