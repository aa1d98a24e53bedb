package breakout

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig 配置校验失败
var ErrInvalidConfig = errors.New("invalid breakout config")

// Config 游戏参数
type Config struct {
	FieldWidth         float64 `yaml:"field_width" json:"field_width" ini:"field_width" env:"BREAKOUT_FIELD_WIDTH"`
	FieldHeight        float64 `yaml:"field_height" json:"field_height" ini:"field_height" env:"BREAKOUT_FIELD_HEIGHT"`
	BlockRows          int     `yaml:"block_rows" json:"block_rows" ini:"block_rows" env:"BREAKOUT_BLOCK_ROWS"`
	BlockCols          int     `yaml:"block_cols" json:"block_cols" ini:"block_cols" env:"BREAKOUT_BLOCK_COLS"`
	PlayerWidth        float64 `yaml:"player_width" json:"player_width" ini:"player_width" env:"BREAKOUT_PLAYER_WIDTH"`
	AvailablePlayCount int     `yaml:"available_play_count" json:"available_play_count" ini:"available_play_count" env:"BREAKOUT_PLAY_COUNT"`
	BallSpeed          float64 `yaml:"ball_speed" json:"ball_speed" ini:"ball_speed" env:"BREAKOUT_BALL_SPEED"`
	PlayerSpeed        float64 `yaml:"player_speed" json:"player_speed" ini:"player_speed" env:"BREAKOUT_PLAYER_SPEED"`
	ResultHoldTicks    int     `yaml:"result_hold_ticks" json:"result_hold_ticks" ini:"result_hold_ticks" env:"BREAKOUT_RESULT_HOLD_TICKS"`
	Seed               uint64  `yaml:"seed" json:"seed" ini:"seed" env:"BREAKOUT_SEED"`
}

// Tunables 运行中可热更新的参数
type Tunables struct {
	BallSpeed       float64
	PlayerSpeed     float64
	ResultHoldTicks int
}

// DefaultConfig 默认参数：40x24 场地，4x8 砖块，3 条命
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

func (c *Config) SetDefaults() {
	c.FieldWidth = 40
	c.FieldHeight = 24
	c.BlockRows = 4
	c.BlockCols = 8
	c.PlayerWidth = 7
	c.AvailablePlayCount = 3
	c.BallSpeed = 0.5
	c.PlayerSpeed = 1
	c.ResultHoldTicks = 90
	c.Seed = 0
}

// Validate 校验参数；球速不超过 1 格/帧，避免穿过单行砖块
func (c *Config) Validate() error {
	switch {
	case c.FieldWidth < 10 || c.FieldHeight < 10:
		return fmt.Errorf("%w: field %vx%v is smaller than 10x10", ErrInvalidConfig, c.FieldWidth, c.FieldHeight)
	case c.BlockRows <= 0 || c.BlockCols <= 0:
		return fmt.Errorf("%w: block grid %dx%d", ErrInvalidConfig, c.BlockRows, c.BlockCols)
	case float64(c.BlockRows)+6 > c.FieldHeight:
		return fmt.Errorf("%w: %d block rows do not fit a field of height %v", ErrInvalidConfig, c.BlockRows, c.FieldHeight)
	case c.PlayerWidth <= 0 || c.PlayerWidth >= c.FieldWidth:
		return fmt.Errorf("%w: player_width %v", ErrInvalidConfig, c.PlayerWidth)
	case c.AvailablePlayCount <= 0:
		return fmt.Errorf("%w: available_play_count must be positive", ErrInvalidConfig)
	case c.ResultHoldTicks < 0:
		return fmt.Errorf("%w: result_hold_ticks must not be negative", ErrInvalidConfig)
	}
	return c.Tunables().Validate()
}

func (c *Config) Tunables() Tunables {
	return Tunables{
		BallSpeed:       c.BallSpeed,
		PlayerSpeed:     c.PlayerSpeed,
		ResultHoldTicks: c.ResultHoldTicks,
	}
}

func (t Tunables) Validate() error {
	if t.BallSpeed <= 0 || t.BallSpeed > 1 {
		return fmt.Errorf("%w: ball_speed %v out of (0, 1]", ErrInvalidConfig, t.BallSpeed)
	}
	if t.PlayerSpeed <= 0 {
		return fmt.Errorf("%w: player_speed must be positive", ErrInvalidConfig)
	}
	if t.ResultHoldTicks < 0 {
		return fmt.Errorf("%w: result_hold_ticks must not be negative", ErrInvalidConfig)
	}
	return nil
}
