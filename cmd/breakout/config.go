package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/junbin-yang/go-breakout/internal/breakout"
	pkgConfig "github.com/junbin-yang/go-breakout/pkg/config"
	"github.com/junbin-yang/go-breakout/pkg/logger"
)

const defaultLogFile = "logs/breakout.log"

// appConfig 程序配置文件结构
type appConfig struct {
	Game            breakout.Config `yaml:"game" json:"game" ini:"game"`
	Log             logger.Config   `yaml:"log" json:"log" ini:"log"`
	TickRate        int             `yaml:"tick_rate" json:"tick_rate" ini:"tick_rate" env:"BREAKOUT_TICK_RATE"`
	Sound           bool            `yaml:"sound" json:"sound" ini:"sound" env:"BREAKOUT_SOUND"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" json:"shutdown_timeout" ini:"shutdown_timeout"`

	// levelFlag 命令行指定的日志级别，非空时配置重载不再修改级别
	levelFlag string
}

func (c *appConfig) SetDefaults() {
	c.Game.SetDefaults()
	c.Log = logger.Config{
		Level:      "info",
		Output:     defaultLogFile,
		Rotate:     "size",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     7,
	}
	c.TickRate = 30
	c.Sound = true
	c.ShutdownTimeout = 3 * time.Second
}

func (c *appConfig) Validate() error {
	if c.TickRate <= 0 || c.TickRate > 240 {
		return fmt.Errorf("tick_rate %d out of (0, 240]", c.TickRate)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return c.Game.Validate()
}

func (c *appConfig) tickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// terminalLog 终端被游戏画面占用，日志不能写到标准输出
func (c *appConfig) terminalLog() logger.Config {
	lc := c.Log
	switch strings.ToLower(lc.Output) {
	case "", "stdout", "stderr":
		lc.Output = defaultLogFile
	}
	return lc
}

// loadConfig 加载配置；未指定路径且找不到默认配置时使用内置默认值
func loadConfig(path string, log logger.Logger) (*appConfig, *pkgConfig.ConfigManager, error) {
	cfg := &appConfig{}
	mgr := pkgConfig.NewConfigManager(cfg,
		pkgConfig.WithAppName("breakout"),
		pkgConfig.WithLogger(log),
	)

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if err := mgr.LoadConfig(path); err != nil {
		if path != "" || !errors.Is(err, pkgConfig.ErrConfigNotFound) {
			return nil, nil, err
		}
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
		log.Info("未找到配置文件，使用默认配置")
		return cfg, nil, nil
	}
	return cfg, mgr, nil
}
