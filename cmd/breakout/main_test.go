package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/junbin-yang/go-breakout/internal/breakout"
	"github.com/junbin-yang/go-breakout/internal/sound"
	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

func TestMapKey(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		key  breakout.Key
		quit bool
	}{
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), breakout.KeyLeft, false},
		{tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), breakout.KeyRight, false},
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), breakout.KeyLeft, false},
		{tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), breakout.KeyRight, false},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), breakout.KeyPlay, false},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), breakout.KeyPlay, false},
		{tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), breakout.KeyNone, false},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), breakout.KeyNone, true},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), breakout.KeyNone, true},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), breakout.KeyNone, true},
	}
	for _, c := range cases {
		key, quit := mapKey(c.ev)
		if key != c.key || quit != c.quit {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", c.ev.Name(), key, quit, c.key, c.quit)
		}
	}
}

func TestCell_FlipsYAxis(t *testing.T) {
	cfg := breakout.DefaultConfig()

	x, y := cell(cfg, 0, 23.5)
	if x != 1 || y != 1 {
		t.Errorf("左上角应映射到 (1, 1): (%d, %d)", x, y)
	}
	x, y = cell(cfg, 39.9, 0.2)
	if x != 80 || y != 24 {
		t.Errorf("右下角应映射到 (80, 24): (%d, %d)", x, y)
	}
	if _, y = cell(cfg, 1, -3); y != 24 {
		t.Errorf("场地外的点应夹到底行: %d", y)
	}
}

// screenText 读出模拟屏幕上的全部文字
func screenText(s tcell.SimulationScreen) string {
	cells, w, _ := s.GetContents()
	var sb strings.Builder
	for i, c := range cells {
		if len(c.Runes) > 0 {
			sb.WriteRune(c.Runes[0])
		} else {
			sb.WriteRune(' ')
		}
		if (i+1)%w == 0 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

func TestRenderer_Draw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(90, 30)

	kb := breakout.NewKeyboard(breakout.DefaultHoldTicks)
	g, err := breakout.NewGame(breakout.DefaultConfig(), kb, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}

	r := newRenderer(screen)
	r.Draw(g)
	text := screenText(screen)
	if !strings.Contains(text, "PRESS SPACE") {
		t.Error("待机画面应提示开始")
	}
	if !strings.Contains(text, "Standby") || !strings.Contains(text, "blocks 32/32") {
		t.Errorf("状态栏错误:\n%s", text)
	}
	if got := strings.Count(text, "█"); got != 32*(2*5-1) {
		t.Errorf("砖块格数错误: %d", got)
	}

	g.Blocks()[0].Hit()
	kb.Press(breakout.KeyPlay)
	g.Tick()
	r.Draw(g)
	text = screenText(screen)
	if strings.Contains(text, "PRESS SPACE") {
		t.Error("游戏中不应显示提示")
	}
	if !strings.Contains(text, "blocks 31/32") || !strings.Contains(text, "●") {
		t.Errorf("游戏画面错误:\n%s", text)
	}
}

type recordCues []sound.Cue

func (r *recordCues) Play(c sound.Cue) { *r = append(*r, c) }

func TestBindSounds(t *testing.T) {
	kb := breakout.NewKeyboard(breakout.DefaultHoldTicks)
	cfg := breakout.DefaultConfig()
	cfg.AvailablePlayCount = 1
	cfg.ResultHoldTicks = 0
	g, _ := breakout.NewGame(cfg, kb, logger.NewNop())

	var cues recordCues
	bindSounds(g, &cues)
	if err := g.Init(); err != nil {
		t.Fatal(err)
	}

	kb.Press(breakout.KeyPlay)
	g.Tick()
	g.Blocks()[3].Hit()
	g.Scene().MissSignal()

	want := []sound.Cue{sound.CueStart, sound.CueBlock, sound.CueMiss, sound.CueGameOver}
	if len(cues) != len(want) {
		t.Fatalf("音效序列错误: %v", cues)
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("第 %d 个音效: got %v, want %v", i, cues[i], want[i])
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("BREAKOUT_TICK_RATE", "")

	path := filepath.Join(t.TempDir(), "breakout.yml")
	data := "tick_rate: 60\nsound: false\ngame:\n  block_rows: 2\n  seed: 42\nlog:\n  level: debug\n  output: stderr\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, mgr, err := loadConfig(path, logger.NewNop())
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	defer mgr.Close()
	if cfg.TickRate != 60 || cfg.Sound || cfg.Game.BlockRows != 2 || cfg.Game.Seed != 42 {
		t.Errorf("配置值错误: %+v", cfg)
	}
	if cfg.Game.BlockCols != 8 || cfg.ShutdownTimeout == 0 {
		t.Errorf("缺省字段应使用默认值: %+v", cfg)
	}
	if cfg.terminalLog().Output != defaultLogFile {
		t.Errorf("终端模式下日志不能写到 stderr: %s", cfg.terminalLog().Output)
	}
	if cfg.tickInterval().Milliseconds() != 16 {
		t.Errorf("帧间隔错误: %v", cfg.tickInterval())
	}

	bad := filepath.Join(t.TempDir(), "bad.yml")
	_ = os.WriteFile(bad, []byte("tick_rate: 0\n"), 0o644)
	if _, _, err := loadConfig(bad, logger.NewNop()); err == nil {
		t.Error("非法 tick_rate 应加载失败")
	}

	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yml"), logger.NewNop()); err == nil {
		t.Error("指定的配置文件不存在时应报错")
	}
}

func TestLoadConfig_FallbackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, mgr, err := loadConfig("", logger.NewNop())
	if err != nil {
		t.Fatalf("找不到默认配置时应使用内置默认值: %v", err)
	}
	if mgr != nil {
		t.Error("使用内置默认值时不应返回配置管理器")
	}
	if cfg.TickRate != 30 || !cfg.Sound || cfg.Game.AvailablePlayCount != 3 {
		t.Errorf("默认配置错误: %+v", cfg)
	}
}

func TestWatchTunables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakout.yml")
	_ = os.WriteFile(path, []byte("game:\n  ball_speed: 0.5\n"), 0o644)

	cfg, mgr, err := loadConfig(path, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()

	log := logger.NewNop()
	box := statemachine.NewMailbox[breakout.Tunables](4)
	watchTunables(mgr, box, log, "")

	_ = os.WriteFile(path, []byte("game:\n  ball_speed: 0.8\n  result_hold_ticks: 5\n"), 0o644)
	if err := mgr.ReloadConfig(); err != nil {
		t.Fatalf("重载失败: %v", err)
	}

	var got []breakout.Tunables
	box.Drain(func(tu breakout.Tunables) { got = append(got, tu) })
	if len(got) != 1 || got[0].BallSpeed != 0.8 || got[0].ResultHoldTicks != 5 {
		t.Errorf("参数更新错误: %+v", got)
	}
	if cfg.Game.BallSpeed != 0.5 {
		t.Error("旧配置实例不应被修改")
	}
}

func TestWatchTunables_KeepsFlagLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breakout.yml")
	_ = os.WriteFile(path, []byte("log:\n  level: info\ngame:\n  ball_speed: 0.5\n"), 0o644)

	cfg, mgr, err := loadConfig(path, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close()
	cfg.Log.Level = "debug"
	cfg.levelFlag = "debug"

	log := logger.New(io.Discard, logger.DebugLevel)
	box := statemachine.NewMailbox[breakout.Tunables](4)
	watchTunables(mgr, box, log, cfg.levelFlag)

	_ = os.WriteFile(path, []byte("log:\n  level: info\ngame:\n  ball_speed: 0.8\n"), 0o644)
	if err := mgr.ReloadConfig(); err != nil {
		t.Fatalf("重载失败: %v", err)
	}
	if !log.Enabled(logger.DebugLevel) {
		t.Error("命令行指定的日志级别不应被配置重载覆盖")
	}
	if n := box.Len(); n != 1 {
		t.Errorf("期望 1 次参数更新，实际 %d", n)
	}

	// 未指定命令行级别时跟随文件
	log2 := logger.New(io.Discard, logger.DebugLevel)
	watchTunables(mgr, statemachine.NewMailbox[breakout.Tunables](4), log2, "")
	if err := mgr.ReloadConfig(); err != nil {
		t.Fatalf("重载失败: %v", err)
	}
	if log2.Enabled(logger.DebugLevel) {
		t.Error("未指定命令行级别时应使用文件中的级别")
	}
}
