package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/junbin-yang/go-breakout/internal/breakout"
)

// 终端字符高约为宽的两倍，场地横向每单位占两列
const cellsPerUnit = 2

var (
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleBall   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBanner = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)

	rowColors = []tcell.Color{tcell.ColorRed, tcell.ColorOrange, tcell.ColorYellow, tcell.ColorGreen, tcell.ColorBlue, tcell.ColorPurple}
)

type renderer struct {
	screen tcell.Screen
}

func newRenderer(screen tcell.Screen) *renderer {
	return &renderer{screen: screen}
}

// cell 场地坐标（y 轴向上）转换为屏幕坐标，边框占去第 0 行/列
func cell(cfg breakout.Config, x, y float64) (int, int) {
	h := int(cfg.FieldHeight)
	row := h - 1 - int(math.Floor(y))
	if row < 0 {
		row = 0
	}
	if row > h-1 {
		row = h - 1
	}
	return 1 + int(math.Floor(x*cellsPerUnit)), 1 + row
}

func (r *renderer) Draw(g *breakout.Game) {
	cfg := g.Config()
	r.screen.Clear()

	r.drawBorder(cfg)
	r.drawBlocks(cfg, g.Blocks())
	r.drawPlayer(cfg, g.Player())

	ball := g.Ball()
	if bx, by := cell(cfg, ball.Pos.X, ball.Pos.Y); ball.Pos.Y >= 0 {
		r.screen.SetContent(bx, by, '●', nil, styleBall)
	}

	r.drawStatus(cfg, g)
	r.screen.Show()
}

func (r *renderer) drawBorder(cfg breakout.Config) {
	w := int(cfg.FieldWidth) * cellsPerUnit
	h := int(cfg.FieldHeight)

	for x := 1; x <= w; x++ {
		r.screen.SetContent(x, 0, '─', nil, styleBorder)
	}
	for y := 1; y <= h; y++ {
		r.screen.SetContent(0, y, '│', nil, styleBorder)
		r.screen.SetContent(w+1, y, '│', nil, styleBorder)
	}
	r.screen.SetContent(0, 0, '┌', nil, styleBorder)
	r.screen.SetContent(w+1, 0, '┐', nil, styleBorder)
}

func (r *renderer) drawBlocks(cfg breakout.Config, blocks []*breakout.Block) {
	for _, b := range blocks {
		if !b.Visible() {
			continue
		}
		style := tcell.StyleDefault.Foreground(rowColors[b.Row%len(rowColors)])
		x0, y := cell(cfg, b.Bounds.X, b.Bounds.Y)
		x1, _ := cell(cfg, b.Bounds.X+b.Bounds.W, b.Bounds.Y)
		// 相邻砖块之间留一列空隙
		for x := x0; x < x1-1; x++ {
			r.screen.SetContent(x, y, '█', nil, style)
		}
	}
}

func (r *renderer) drawPlayer(cfg breakout.Config, p *breakout.Player) {
	b := p.Bounds()
	x0, y := cell(cfg, b.X, p.Y)
	x1, _ := cell(cfg, b.X+b.W, p.Y)
	for x := x0; x < x1; x++ {
		r.screen.SetContent(x, y, ' ', nil, stylePlayer)
	}
}

func (r *renderer) drawStatus(cfg breakout.Config, g *breakout.Game) {
	y := int(cfg.FieldHeight) + 2
	scene := g.Scene()
	lives := cfg.AvailablePlayCount - scene.MissCount()
	r.text(0, y, styleStatus, fmt.Sprintf("%-9s lives %d  blocks %d/%d",
		scene.State(), lives, g.AliveBlocks(), len(g.Blocks())))
	r.text(0, y+1, styleBorder, "left/right a/d move  space start  q quit")

	var banner string
	switch scene.State() {
	case breakout.SceneStandby:
		banner = "PRESS SPACE"
	case breakout.SceneGameClear:
		banner = "GAME CLEAR"
	case breakout.SceneGameOver:
		banner = "GAME OVER"
	default:
		return
	}
	x := 1 + (int(cfg.FieldWidth)*cellsPerUnit-len(banner))/2
	r.text(x, int(cfg.FieldHeight)/2, styleBanner, banner)
}

// text 只用于 ASCII 文本，每个字符占一列
func (r *renderer) text(x, y int, style tcell.Style, s string) {
	for _, ch := range s {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// mapKey 终端按键映射为游戏输入；quit 表示退出程序
func mapKey(ev *tcell.EventKey) (key breakout.Key, quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return breakout.KeyNone, true
	case tcell.KeyLeft:
		return breakout.KeyLeft, false
	case tcell.KeyRight:
		return breakout.KeyRight, false
	case tcell.KeyEnter:
		return breakout.KeyPlay, false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return breakout.KeyNone, true
		case 'a', 'A', 'h':
			return breakout.KeyLeft, false
		case 'd', 'D', 'l':
			return breakout.KeyRight, false
		case ' ':
			return breakout.KeyPlay, false
		}
	}
	return breakout.KeyNone, false
}
