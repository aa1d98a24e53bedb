package breakout

import (
	"errors"
	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

// PlayerState 挡板状态
type PlayerState int

const (
	PlayerDisabled PlayerState = iota
	PlayerEnabled
)

func (s PlayerState) String() string {
	if s == PlayerEnabled {
		return "Enable"
	}
	return "Disable"
}

// PlayerEvent 挡板事件
type PlayerEvent int

const (
	PlayerEnable PlayerEvent = iota
	PlayerDisable
)

func (e PlayerEvent) String() string {
	if e == PlayerEnable {
		return "Enable"
	}
	return "Disable"
}

// wallGap 挡板与墙壁之间保留的间隙
const wallGap = 0.05

// Player 挡板；仅在 Enable 状态下响应方向输入
type Player struct {
	m     *statemachine.Machine[PlayerState, PlayerEvent, *Player]
	input Input

	X, Y      float64
	HalfWidth float64
	speed     float64
	startX    float64
	minX      float64
	maxX      float64
}

func NewPlayer(cfg Config, input Input, log logger.Logger) (*Player, error) {
	half := cfg.PlayerWidth / 2
	p := &Player{
		input:     input,
		Y:         1,
		HalfWidth: half,
		speed:     cfg.PlayerSpeed,
		startX:    cfg.FieldWidth / 2,
		minX:      half + wallGap,
		maxX:      cfg.FieldWidth - half - wallGap,
	}
	p.X = p.startX

	p.m = statemachine.NewMachine[PlayerState, PlayerEvent](p,
		statemachine.WithName("player"),
		statemachine.WithLogger(log),
	)
	err := errors.Join(
		p.m.AddState(PlayerDisabled, &statemachine.Base[PlayerState, PlayerEvent, *Player]{}),
		p.m.AddState(PlayerEnabled, &playerEnabled{}),
		p.m.AddTransition(PlayerDisabled, PlayerEnable, PlayerEnabled),
		p.m.AddTransition(PlayerEnabled, PlayerDisable, PlayerDisabled),
		p.m.SetStartState(PlayerDisabled),
	)
	return p, err
}

func (p *Player) Init() error { return p.m.Init() }
func (p *Player) Tick()       { p.m.Tick() }

func (p *Player) EnableMove()  { p.m.Trigger(PlayerEnable) }
func (p *Player) DisableMove() { p.m.Trigger(PlayerDisable) }

// ResetPosition 回到场地中央
func (p *Player) ResetPosition() { p.X = p.startX }

func (p *Player) Enabled() bool { return p.m.IsCurrentState(PlayerEnabled) }

// Bounds 挡板的碰撞区域
func (p *Player) Bounds() Rect {
	return Rect{X: p.X - p.HalfWidth, Y: p.Y - 0.5, W: p.HalfWidth * 2, H: 0.5}
}

func (p *Player) SetSpeed(speed float64) { p.speed = speed }

func (p *Player) Machine() *statemachine.Machine[PlayerState, PlayerEvent, *Player] { return p.m }

type playerEnabled struct {
	statemachine.Base[PlayerState, PlayerEvent, *Player]
}

func (s *playerEnabled) Tick() {
	p := s.Context()
	axis := clamp(p.input.Axis(), -1, 1)
	if axis == 0 {
		return
	}
	p.X = clamp(p.X+axis*p.speed, p.minX, p.maxX)
}
