package breakout

import (
	"errors"
	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

// SceneState 游戏流程状态
type SceneState int

const (
	SceneReset SceneState = iota
	SceneStandby
	ScenePlaying
	SceneMiss
	SceneGameClear
	SceneGameOver
)

var sceneStateNames = [...]string{"Reset", "Standby", "Playing", "Miss", "GameClear", "GameOver"}

func (s SceneState) String() string {
	if int(s) < len(sceneStateNames) {
		return sceneStateNames[s]
	}
	return "Unknown"
}

// SceneEvent 游戏流程事件
type SceneEvent int

const (
	EventFinish SceneEvent = iota
	EventPlay
	EventMiss
	EventAllBlockBroken
	EventRetry
	EventExit
)

var sceneEventNames = [...]string{"Finish", "Play", "Miss", "AllBlockBroken", "Retry", "Exit"}

func (e SceneEvent) String() string {
	if int(e) < len(sceneEventNames) {
		return sceneEventNames[e]
	}
	return "Unknown"
}

// SceneMachine 游戏流程状态机
type SceneMachine = statemachine.Machine[SceneState, SceneEvent, *Scene]

// Scene 游戏流程：重置 → 待机 → 游戏中 → 失误/通关/结束
type Scene struct {
	m         *SceneMachine
	game      *Game
	log       logger.Logger
	missCount int
	holdTicks int
}

// newScene 创建流程状态机，返回注册过程中的配置错误
func newScene(g *Game, log logger.Logger) (*Scene, error) {
	s := &Scene{game: g, log: log, holdTicks: g.cfg.ResultHoldTicks}

	s.m = statemachine.NewMachine[SceneState, SceneEvent](s,
		statemachine.WithName("scene"),
		statemachine.WithLogger(log),
		statemachine.WithHistory(64),
	)
	err := errors.Join(
		s.m.AddState(SceneReset, &resetState{}),
		s.m.AddState(SceneStandby, &standbyState{}),
		s.m.AddState(ScenePlaying, &playingState{}),
		s.m.AddState(SceneMiss, &missState{}),
		s.m.AddState(SceneGameClear, &resultState{cleared: true}),
		s.m.AddState(SceneGameOver, &resultState{}),
		s.m.AddTransition(SceneReset, EventFinish, SceneStandby),
		s.m.AddTransition(SceneStandby, EventPlay, ScenePlaying),
		s.m.AddTransition(ScenePlaying, EventMiss, SceneMiss),
		s.m.AddTransition(ScenePlaying, EventAllBlockBroken, SceneGameClear),
		s.m.AddTransition(SceneMiss, EventRetry, SceneStandby),
		s.m.AddTransition(SceneMiss, EventExit, SceneGameOver),
		s.m.AddTransition(SceneGameClear, EventFinish, SceneReset),
		s.m.AddTransition(SceneGameOver, EventFinish, SceneReset),
		s.m.SetStartState(SceneReset),
	)
	return s, err
}

func (s *Scene) Init() error { return s.m.Init() }
func (s *Scene) Tick()       { s.m.Tick() }

// MissSignal 球落出底部时由传感器调用
func (s *Scene) MissSignal() { s.m.Trigger(EventMiss) }

func (s *Scene) State() SceneState { return s.m.ActiveState() }
func (s *Scene) MissCount() int    { return s.missCount }

// OnTransition 注册流程转换回调
func (s *Scene) OnTransition(fn func(from, to SceneState, event SceneEvent)) {
	s.m.OnTransition(fn)
}

func (s *Scene) Machine() *SceneMachine { return s.m }
