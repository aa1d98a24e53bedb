package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/junbin-yang/go-breakout/pkg/logger"
)

// Version 构建时通过 ldflags 注入
var Version = "dev"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "breakout",
		Version: Version,
		Usage:   "终端打砖块",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径，缺省时依次查找 ./breakout、./configs/breakout 等",
			},
			&cli.Uint64Flag{
				Name:  "seed",
				Usage: "发球随机种子，覆盖配置文件",
			},
			&cli.BoolFlag{
				Name:  "mute",
				Usage: "关闭音效",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别，覆盖配置文件",
			},
		},
		Action: playAction,
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "校验配置文件并打印生效的参数",
				Action: validateAction,
			},
			{
				Name:  "version",
				Usage: "打印版本信息",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("breakout version %s\n", cmd.Root().Version)
					return nil
				},
			},
		},
	}
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	cfg, mgr, err := loadConfig(cmd.String("config"), logger.NewNop())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(cfg.terminalLog())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log = log.Named("breakout")
	logger.ReplaceDefault(log)

	if mgr != nil {
		log.Info("配置已加载", logger.String("path", mgr.ConfigPath()))
	}
	return runGame(cfg, mgr, log)
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	cfg, mgr, err := loadConfig(cmd.String("config"), logger.NewNop())
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	source := "built-in defaults"
	if mgr != nil {
		source = mgr.ConfigPath()
	}
	fmt.Printf("Configuration %s is valid\n\n", source)

	g := cfg.Game
	fmt.Printf("field        %vx%v\n", g.FieldWidth, g.FieldHeight)
	fmt.Printf("blocks       %dx%d\n", g.BlockRows, g.BlockCols)
	fmt.Printf("player       width %v speed %v\n", g.PlayerWidth, g.PlayerSpeed)
	fmt.Printf("ball speed   %v\n", g.BallSpeed)
	fmt.Printf("play count   %d\n", g.AvailablePlayCount)
	fmt.Printf("result hold  %d ticks\n", g.ResultHoldTicks)
	fmt.Printf("tick rate    %d/s\n", cfg.TickRate)
	fmt.Printf("log          %s -> %s\n", cfg.Log.Level, cfg.terminalLog().Output)
	return nil
}

// applyFlags 命令行参数优先于配置文件
func applyFlags(cmd *cli.Command, cfg *appConfig) {
	if cmd.IsSet("seed") {
		cfg.Game.Seed = cmd.Uint64("seed")
	}
	if cmd.Bool("mute") {
		cfg.Sound = false
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.Log.Level = lvl
		cfg.levelFlag = lvl
	}
}
