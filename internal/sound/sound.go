package sound

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/junbin-yang/go-breakout/pkg/logger"
)

const sampleRate = beep.SampleRate(44100)

// Cue 游戏音效
type Cue int

const (
	CueBlock Cue = iota
	CueStart
	CueMiss
	CueClear
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueBlock:
		return "block"
	case CueStart:
		return "start"
	case CueMiss:
		return "miss"
	case CueClear:
		return "clear"
	case CueGameOver:
		return "game_over"
	}
	return "unknown"
}

type note struct {
	freq float64
	dur  time.Duration
}

var cues = map[Cue][]note{
	CueBlock:    {{880, 40 * time.Millisecond}},
	CueStart:    {{660, 60 * time.Millisecond}, {990, 60 * time.Millisecond}},
	CueMiss:     {{330, 120 * time.Millisecond}, {220, 180 * time.Millisecond}},
	CueClear:    {{523, 100 * time.Millisecond}, {659, 100 * time.Millisecond}, {784, 100 * time.Millisecond}, {1047, 200 * time.Millisecond}},
	CueGameOver: {{392, 180 * time.Millisecond}, {330, 180 * time.Millisecond}, {262, 360 * time.Millisecond}},
}

// Streamer 生成音效的有限长度音频流
func Streamer(rate beep.SampleRate, cue Cue) (beep.Streamer, error) {
	notes, ok := cues[cue]
	if !ok {
		return nil, fmt.Errorf("unknown cue %d", cue)
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		sine, err := generators.SineTone(rate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("cue %s: %w", cue, err)
		}
		parts = append(parts, beep.Take(rate.N(n.dur), sine))
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: -2}, nil
}

// Player 音效播放器；未初始化或初始化失败时 Play 为空操作
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	log         logger.Logger
}

func NewPlayer(log logger.Logger) *Player {
	if log == nil {
		log = logger.Default()
	}
	return &Player{mixer: &beep.Mixer{}, log: log}
}

// Init 打开音频设备
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

func (p *Player) Play(cue Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	s, err := Streamer(sampleRate, cue)
	if err != nil {
		p.log.Warn("sound cue failed", logger.String("cue", cue.String()), logger.Err(err))
		return
	}
	// mixer 由 speaker 协程读取
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close 停止播放并关闭音频设备
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}
