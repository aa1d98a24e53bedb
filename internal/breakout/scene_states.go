package breakout

import (
	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

type sceneBase = statemachine.Base[SceneState, SceneEvent, *Scene]

// resetState 复位场地后立即进入待机
type resetState struct{ sceneBase }

func (st *resetState) Enter() {
	s := st.Context()
	g := s.game
	for _, b := range g.blocks {
		b.Revive()
	}
	g.player.ResetPosition()
	g.player.DisableMove()
	g.resetBall()
	s.missCount = 0
	st.Trigger(EventFinish)
}

// standbyState 等待开始键
type standbyState struct{ sceneBase }

func (st *standbyState) Tick() {
	if st.Context().game.input.PlayPressed() {
		st.Trigger(EventPlay)
	}
}

// playingState 发球并等待所有砖块被击碎
type playingState struct{ sceneBase }

func (st *playingState) Enter() {
	g := st.Context().game
	g.launchBall()
	g.player.EnableMove()
}

func (st *playingState) Tick() {
	if st.Context().game.AliveBlocks() == 0 {
		st.Trigger(EventAllBlockBroken)
	}
}

// missState 扣除一次机会，决定重试或结束
type missState struct{ sceneBase }

func (st *missState) Enter() {
	s := st.Context()
	g := s.game
	g.player.DisableMove()
	g.resetBall()

	s.missCount++
	s.log.Info("miss",
		logger.Int("count", s.missCount),
		logger.Int("available", g.cfg.AvailablePlayCount),
	)
	if s.missCount >= g.cfg.AvailablePlayCount {
		st.Trigger(EventExit)
	} else {
		st.Trigger(EventRetry)
	}
}

// resultState 通关或游戏结束
//
// 进入后立即请求 Finish，但退出需等待 holdTicks 帧以展示结果，
// 期间按下开始键可跳过等待
type resultState struct {
	sceneBase
	cleared   bool
	remaining int
}

func (st *resultState) Enter() {
	s := st.Context()
	st.remaining = s.holdTicks
	s.game.player.DisableMove()
	s.game.resetBall()

	if st.cleared {
		s.log.Info("game clear", logger.Int("miss", s.missCount))
	} else {
		s.log.Info("game over", logger.Int("miss", s.missCount))
	}
	st.Trigger(EventFinish)
}

func (st *resultState) Tick() {
	if st.remaining > 0 {
		st.remaining--
	}
	if st.Context().game.input.PlayPressed() {
		st.remaining = 0
	}
}

func (st *resultState) NeedsExitTime() bool { return st.Context().holdTicks > 0 }
func (st *resultState) CanExit() bool       { return st.remaining <= 0 }
