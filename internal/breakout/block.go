package breakout

import (
	"errors"
	"fmt"

	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

// BlockState 砖块状态
type BlockState int

const (
	BlockAlive BlockState = iota
	BlockDead
)

func (s BlockState) String() string {
	if s == BlockDead {
		return "Dead"
	}
	return "Alive"
}

// BlockEvent 砖块事件
type BlockEvent int

const (
	BlockKill BlockEvent = iota
	BlockRevive
)

func (e BlockEvent) String() string {
	if e == BlockRevive {
		return "Revive"
	}
	return "Dead"
}

// Block 砖块；Alive 时可见且参与碰撞
type Block struct {
	m *statemachine.Machine[BlockState, BlockEvent, *Block]

	Row, Col   int
	Bounds     Rect
	visible    bool
	collidable bool
}

func NewBlock(row, col int, bounds Rect, log logger.Logger) (*Block, error) {
	b := &Block{Row: row, Col: col, Bounds: bounds}

	b.m = statemachine.NewMachine[BlockState, BlockEvent](b,
		statemachine.WithName(fmt.Sprintf("block-%d-%d", row, col)),
		statemachine.WithLogger(log),
	)
	err := errors.Join(
		b.m.AddState(BlockAlive, statemachine.StateFuncs{
			OnEnter: func() { b.visible, b.collidable = true, true },
		}),
		b.m.AddState(BlockDead, statemachine.StateFuncs{
			OnEnter: func() { b.visible, b.collidable = false, false },
		}),
		b.m.AddTransition(BlockAlive, BlockKill, BlockDead),
		b.m.AddTransition(BlockDead, BlockRevive, BlockAlive),
		b.m.SetStartState(BlockAlive),
	)
	return b, err
}

func (b *Block) Init() error { return b.m.Init() }
func (b *Block) Tick()       { b.m.Tick() }

func (b *Block) IsAlive() bool    { return b.m.IsCurrentState(BlockAlive) }
func (b *Block) Visible() bool    { return b.visible }
func (b *Block) Collidable() bool { return b.collidable }

// Hit 被球击中
func (b *Block) Hit() { b.m.Trigger(BlockKill) }

func (b *Block) Revive() { b.m.Trigger(BlockRevive) }

// OnBroken 注册砖块被击碎的回调
func (b *Block) OnBroken(fn func(*Block)) {
	b.m.OnTransition(func(from, to BlockState, event BlockEvent) {
		if to == BlockDead {
			fn(b)
		}
	})
}
