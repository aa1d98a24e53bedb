package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/junbin-yang/go-breakout/internal/breakout"
	"github.com/junbin-yang/go-breakout/internal/sound"
	pkgConfig "github.com/junbin-yang/go-breakout/pkg/config"
	"github.com/junbin-yang/go-breakout/pkg/lifecycle"
	"github.com/junbin-yang/go-breakout/pkg/logger"
	"github.com/junbin-yang/go-breakout/pkg/statemachine"
)

// sceneCues 场景转换对应的音效
var sceneCues = map[breakout.SceneState]sound.Cue{
	breakout.ScenePlaying:   sound.CueStart,
	breakout.SceneMiss:      sound.CueMiss,
	breakout.SceneGameClear: sound.CueClear,
	breakout.SceneGameOver:  sound.CueGameOver,
}

type cuePlayer interface {
	Play(sound.Cue)
}

// bindSounds 把场景与砖块事件连接到音效
func bindSounds(g *breakout.Game, p cuePlayer) {
	g.Scene().OnTransition(func(_, to breakout.SceneState, _ breakout.SceneEvent) {
		if cue, ok := sceneCues[to]; ok {
			p.Play(cue)
		}
	})
	for _, b := range g.Blocks() {
		b.OnBroken(func(*breakout.Block) { p.Play(sound.CueBlock) })
	}
}

// watchTunables 配置文件变更时把可热更新的参数投递给游戏循环
//
// pinnedLevel 为命令行指定的日志级别，非空时忽略文件中的级别
func watchTunables(mgr *pkgConfig.ConfigManager, box *statemachine.Mailbox[breakout.Tunables], log logger.Logger, pinnedLevel string) {
	mgr.OnChange(func(_, next interface{}) {
		cfg, ok := next.(*appConfig)
		if !ok {
			return
		}
		if pinnedLevel == "" {
			if lvl, err := logger.ParseLevel(cfg.Log.Level); err == nil {
				log.SetLevel(lvl)
			}
		}
		if !box.TryPost(cfg.Game.Tunables()) {
			log.Warn("参数更新队列已满，丢弃本次更新")
		}
	})
}

// runGame 在终端中运行游戏，直到用户退出或收到信号
func runGame(cfg *appConfig, mgr *pkgConfig.ConfigManager, log logger.Logger) error {
	keyboard := breakout.NewKeyboard(breakout.DefaultHoldTicks)
	game, err := breakout.NewGame(cfg.Game, keyboard, log)
	if err != nil {
		return err
	}

	player := sound.NewPlayer(log)
	if cfg.Sound {
		if err := player.Init(); err != nil {
			log.Warn("音频设备不可用，关闭音效", logger.Err(err))
		}
	}
	bindSounds(game, player)

	if err := game.Init(); err != nil {
		return fmt.Errorf("init game: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	// 超时退出时退出钩子不会执行，终端仍需恢复
	defer screen.Fini()
	screen.HideCursor()
	view := newRenderer(screen)

	keys := statemachine.NewMailbox[breakout.Key](64)
	tunables := statemachine.NewMailbox[breakout.Tunables](4)
	if mgr != nil {
		watchTunables(mgr, tunables, log, cfg.levelFlag)
		if err := mgr.EnableWatch(true); err != nil {
			log.Warn("配置监听启动失败", logger.Err(err))
		}
	}

	lm := lifecycle.NewManager(
		lifecycle.WithShutdownTimeout(cfg.ShutdownTimeout),
		lifecycle.WithLogger(log),
	)

	lm.AddWorker("game-loop", lifecycle.Every(cfg.tickInterval(), func(ctx context.Context) error {
		tunables.Drain(func(t breakout.Tunables) {
			if err := game.ApplyTunables(t); err != nil {
				log.Warn("忽略非法参数更新", logger.Err(err))
				return
			}
			log.Info("参数已更新",
				logger.Float64("ball_speed", t.BallSpeed),
				logger.Float64("player_speed", t.PlayerSpeed),
				logger.Int("result_hold_ticks", t.ResultHoldTicks))
		})
		keys.Deliver(keyboard)
		game.Tick()
		view.Draw(game)
		return nil
	}))

	lm.AddWorker("input",
		func(ctx context.Context) error {
			for {
				switch ev := screen.PollEvent().(type) {
				case nil:
					return nil
				case *tcell.EventInterrupt:
					if ctx.Err() != nil {
						return nil
					}
				case *tcell.EventResize:
					screen.Sync()
				case *tcell.EventKey:
					key, quit := mapKey(ev)
					if quit {
						log.Info("用户退出")
						lm.Stop()
						return nil
					}
					if key != breakout.KeyNone && !keys.TryPost(key) {
						log.Debug("按键队列已满", logger.String("key", key.String()))
					}
				}
			}
		},
		lifecycle.WithStopFunc(func(ctx context.Context) error {
			return screen.PostEvent(tcell.NewEventInterrupt(nil))
		}),
	)

	lm.OnStartup(func(ctx context.Context) error {
		log.Info("游戏启动",
			logger.Int("tick_rate", cfg.TickRate),
			logger.Uint64("seed", cfg.Game.Seed),
			logger.Int("blocks", len(game.Blocks())))
		return nil
	})

	lm.OnWorkerExit(func(name string, err error) {
		if err != nil {
			log.Error("协程异常退出", logger.String("worker", name), logger.Err(err))
			return
		}
		log.Debug("协程退出", logger.String("worker", name))
	})

	lm.OnShutdown(func(ctx context.Context) error {
		screen.Fini()
		player.Close()
		if mgr != nil {
			mgr.Close()
		}
		log.Info("游戏结束", logger.Uint64("ticks", game.Ticks()))
		_ = log.Sync()
		return nil
	})

	return lm.Run()
}
