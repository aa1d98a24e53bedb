package breakout

import (
	"fmt"
	"math/rand/v2"

	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

// Game 组装场地、挡板、砖块、球与流程状态机
//
// 所有方法都应在同一个游戏协程上调用
type Game struct {
	cfg    Config
	log    logger.Logger
	rng    *rand.Rand
	input  Input
	player *Player
	blocks []*Block
	scene  *Scene
	sensor MissSensor
	group  *statemachine.Group
	ball   Ball
	ticks  uint64
}

// NewGame 按配置创建游戏，Init 之前不会运行任何状态
func NewGame(cfg Config, input Input, log logger.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}

	g := &Game{
		cfg:   cfg,
		log:   log,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		input: input,
		group: statemachine.NewGroup(),
	}

	var err error
	if g.player, err = NewPlayer(cfg, input, log); err != nil {
		return nil, err
	}
	if g.blocks, err = buildBlocks(cfg, log); err != nil {
		return nil, err
	}
	if g.scene, err = newScene(g, log); err != nil {
		return nil, err
	}
	g.sensor = MissSensor{Y: 0, Target: g.scene}

	// Reset.Enter 会操作挡板与砖块，它们必须先于流程状态机初始化
	if err := g.group.Add("player", g.player); err != nil {
		return nil, err
	}
	for _, b := range g.blocks {
		if err := g.group.Add(fmt.Sprintf("block-%d-%d", b.Row, b.Col), b); err != nil {
			return nil, err
		}
	}
	if err := g.group.Add("scene", g.scene); err != nil {
		return nil, err
	}
	return g, nil
}

// buildBlocks 在场地顶部留出两行后自上而下排列砖块
func buildBlocks(cfg Config, log logger.Logger) ([]*Block, error) {
	w := cfg.FieldWidth / float64(cfg.BlockCols)
	blocks := make([]*Block, 0, cfg.BlockRows*cfg.BlockCols)
	for r := 0; r < cfg.BlockRows; r++ {
		y := cfg.FieldHeight - 2 - float64(r+1)
		for c := 0; c < cfg.BlockCols; c++ {
			bounds := Rect{X: float64(c) * w, Y: y, W: w, H: 1}
			b, err := NewBlock(r, c, bounds, log)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)
		}
	}
	return blocks, nil
}

func (g *Game) Init() error {
	if err := g.group.InitAll(); err != nil {
		return err
	}
	g.log.Info("game initialized",
		logger.Int("blocks", len(g.blocks)),
		logger.Int("available_play_count", g.cfg.AvailablePlayCount),
		logger.Any("state", g.scene.State()),
	)
	return nil
}

// Tick 推进一帧：状态机 → 物理 → 输入
func (g *Game) Tick() {
	g.group.TickAll()
	g.step()
	g.input.EndFrame()
	g.ticks++
}

// ApplyTunables 应用热更新参数，运动中的球保持方向只调整速度
func (g *Game) ApplyTunables(t Tunables) error {
	if err := t.Validate(); err != nil {
		return err
	}
	g.cfg.BallSpeed = t.BallSpeed
	g.cfg.PlayerSpeed = t.PlayerSpeed
	g.cfg.ResultHoldTicks = t.ResultHoldTicks

	g.player.SetSpeed(t.PlayerSpeed)
	g.scene.holdTicks = t.ResultHoldTicks
	if !g.ball.Vel.IsZero() {
		g.ball.Vel = g.ball.Vel.WithLen(t.BallSpeed)
	}
	g.log.Info("tunables applied",
		logger.Float64("ball_speed", t.BallSpeed),
		logger.Float64("player_speed", t.PlayerSpeed),
		logger.Int("result_hold_ticks", t.ResultHoldTicks),
	)
	return nil
}

func (g *Game) Config() Config   { return g.cfg }
func (g *Game) Scene() *Scene    { return g.scene }
func (g *Game) Player() *Player  { return g.player }
func (g *Game) Blocks() []*Block { return g.blocks }
func (g *Game) Ball() Ball       { return g.ball }
func (g *Game) Ticks() uint64    { return g.ticks }

// Group 按初始化顺序返回挡板、砖块与流程状态机
func (g *Game) Group() *statemachine.Group { return g.group }

// AliveBlocks 返回剩余砖块数
func (g *Game) AliveBlocks() int {
	n := 0
	for _, b := range g.blocks {
		if b.IsAlive() {
			n++
		}
	}
	return n
}

// resetBall 将球放回挡板上方并停止
func (g *Game) resetBall() {
	g.ball = Ball{Pos: Vec{X: g.cfg.FieldWidth / 2, Y: g.player.Y + 1.5}}
}

// launchBall 随机方向发球：x ∈ [-1, 1]，向上分量 ∈ [0.5, 1]
func (g *Game) launchBall() {
	dir := Vec{X: g.rng.Float64()*2 - 1, Y: 0.5 + g.rng.Float64()*0.5}
	g.ball.Vel = dir.WithLen(g.cfg.BallSpeed)
}
