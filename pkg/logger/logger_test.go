package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func Test_LOG(t *testing.T) {
	defer func() { _ = Sync() }()
	Info("Info msg")
	Warn("Warn msg")
	Error("Error msg")
	Debug("Debug msg", Int("age", 3))
}

// CustomLogger 自定义日志实现示例
type CustomLogger struct{}

func (c *CustomLogger) Debug(msg string, fields ...Field)      {}
func (c *CustomLogger) Info(msg string, fields ...Field)       {}
func (c *CustomLogger) Warn(msg string, fields ...Field)       {}
func (c *CustomLogger) Error(msg string, fields ...Field)      {}
func (c *CustomLogger) Panic(msg string, fields ...Field)      {}
func (c *CustomLogger) Fatal(msg string, fields ...Field)      {}
func (c *CustomLogger) Debugf(format string, v ...interface{}) {}
func (c *CustomLogger) Infof(format string, v ...interface{})  {}
func (c *CustomLogger) Warnf(format string, v ...interface{})  {}
func (c *CustomLogger) Errorf(format string, v ...interface{}) {}
func (c *CustomLogger) Panicf(format string, v ...interface{}) {}
func (c *CustomLogger) Fatalf(format string, v ...interface{}) {}
func (c *CustomLogger) SetLevel(level Level)                   {}
func (c *CustomLogger) Sync() error                            { return nil }

func Test_CustomLogger(t *testing.T) {
	// 替换为自定义日志实现
	custom := &CustomLogger{}
	ReplaceDefault(custom)

	// 验证可以正常调用
	Info("test custom logger")
	Debugf("test %s", "custom logger")

	// 恢复默认实现
	ReplaceDefault(New(nil, InfoLevel, AddCaller(), AddCallerSkip(1)))
}

func Test_LevelMapping(t *testing.T) {
	// 验证级别映射正确
	if toZapLevel(DebugLevel) != -1 {
		t.Errorf("DebugLevel mapping failed: got %d, want -1", toZapLevel(DebugLevel))
	}
	if toZapLevel(InfoLevel) != 0 {
		t.Errorf("InfoLevel mapping failed: got %d, want 0", toZapLevel(InfoLevel))
	}
	if toZapLevel(WarnLevel) != 1 {
		t.Errorf("WarnLevel mapping failed: got %d, want 1", toZapLevel(WarnLevel))
	}
	if toZapLevel(ErrorLevel) != 2 {
		t.Errorf("ErrorLevel mapping failed: got %d, want 2", toZapLevel(ErrorLevel))
	}
	if toZapLevel(PanicLevel) != 4 {
		t.Errorf("PanicLevel mapping failed: got %d, want 4 (skip DPanic=3)", toZapLevel(PanicLevel))
	}
	if toZapLevel(FatalLevel) != 5 {
		t.Errorf("FatalLevel mapping failed: got %d, want 5", toZapLevel(FatalLevel))
	}
}

func Test_ParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		" warn ":  WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("未知级别应返回错误")
	}
}

func Test_SetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel)

	l.Debug("hidden")
	l.Info("shown", String("state", "Playing"))
	if strings.Contains(buf.String(), "hidden") {
		t.Error("Debug 日志不应输出")
	}
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "Playing") {
		t.Errorf("Info 日志缺失: %q", buf.String())
	}

	buf.Reset()
	l.SetLevel(DebugLevel)
	l.Debugf("tick %d", 3)
	if !strings.Contains(buf.String(), "tick 3") {
		t.Errorf("调整级别后 Debug 应输出: %q", buf.String())
	}

	buf.Reset()
	l.Named("scene").With(Int("miss", 2)).Warn("miss")
	if !strings.Contains(buf.String(), "scene") || !strings.Contains(buf.String(), "[WARN]") {
		t.Errorf("子日志输出错误: %q", buf.String())
	}
}

func Test_NewFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakout.log")
	l, err := NewFromConfig(Config{Level: "debug", Output: path, Rotate: "size", MaxSize: 1})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	l.Debug("written to file")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("日志文件内容错误: %q", data)
	}

	if _, err := NewFromConfig(Config{Level: "loud"}); err == nil {
		t.Error("非法级别应返回错误")
	}
}

func Test_NewNop(t *testing.T) {
	l := NewNop()
	l.Error("dropped")
	l.SetLevel(DebugLevel)
	if err := l.Sync(); err != nil {
		t.Errorf("Sync failed: %v", err)
	}
}

func Test_JSONFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakout.json.log")
	l, err := NewFromConfig(Config{Level: "info", Output: path, Rotate: "none", Format: "json"})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	l.Named("scene").Info("transition", String("to", "Playing"), Duration("hold", 3*time.Second))
	_ = l.Sync()

	data, _ := os.ReadFile(path)
	line := string(data)
	for _, want := range []string{`"level":"info"`, `"logger":"scene"`, `"msg":"transition"`, `"to":"Playing"`, `"hold":"3s"`} {
		if !strings.Contains(line, want) {
			t.Errorf("JSON 日志缺少 %s: %s", want, line)
		}
	}

	if _, err := NewFromConfig(Config{Format: "xml"}); err == nil {
		t.Error("未知格式应返回错误")
	}
}

func Test_EnabledAndCaller(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel, AddCaller())
	if l.Enabled(InfoLevel) || !l.Enabled(ErrorLevel) {
		t.Error("Enabled 与级别不一致")
	}

	l.Warnf("hold %d ticks", 90)
	out := buf.String()
	if !strings.Contains(out, "hold 90 ticks") {
		t.Errorf("格式化日志错误: %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("调用位置应指向调用方: %q", out)
	}
}

func Test_NewFromConfig_PlainFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "plain.log")
	l, err := NewFromConfig(Config{Level: "info", Output: path, Rotate: "none"})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	l.Info("写入文件")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("日志文件未创建: %v", err)
	}
	if !strings.Contains(string(data), "写入文件") {
		t.Errorf("日志内容错误: %q", data)
	}
}
