package breakout

import "math"

// MissSignaler 接收失误信号
type MissSignaler interface {
	MissSignal()
}

// MissSensor 位于场地底部的失误传感器
type MissSensor struct {
	Y      float64
	Target MissSignaler
}

// Check 球低于传感器时发送失误信号
func (s MissSensor) Check(pos Vec) bool {
	if pos.Y >= s.Y {
		return false
	}
	if s.Target != nil {
		s.Target.MissSignal()
	}
	return true
}

// maxDeflect 击中挡板边缘时水平方向的最大偏转
const maxDeflect = 0.8

// step 推进球一帧：墙壁 → 挡板 → 砖块 → 底部传感器
func (g *Game) step() {
	b := &g.ball
	if b.Vel.IsZero() {
		return
	}

	prev := b.Pos
	next := prev.Add(b.Vel)
	w, h := g.cfg.FieldWidth, g.cfg.FieldHeight

	if next.X < 0 {
		next.X, b.Vel.X = -next.X, -b.Vel.X
	} else if next.X > w {
		next.X, b.Vel.X = 2*w-next.X, -b.Vel.X
	}
	if next.Y > h {
		next.Y, b.Vel.Y = 2*h-next.Y, -b.Vel.Y
	}

	if g.bouncePaddle(prev, &next) || g.bounceBlock(prev, &next) {
		b.Pos = next
		return
	}

	b.Pos = next
	if g.sensor.Check(next) {
		g.resetBall()
	}
}

// bouncePaddle 下落的球穿过挡板上沿时反弹，水平分量随击中位置偏转
func (g *Game) bouncePaddle(prev Vec, next *Vec) bool {
	b := &g.ball
	p := g.player
	top := p.Y
	if b.Vel.Y >= 0 || prev.Y < top || next.Y > top {
		return false
	}

	// 与挡板上沿的交点
	t := (prev.Y - top) / (prev.Y - next.Y)
	hitX := prev.X + (next.X-prev.X)*t
	offset := (hitX - p.X) / p.HalfWidth
	if math.Abs(offset) > 1 {
		return false
	}

	speed := b.Vel.Len()
	dir := Vec{X: b.Vel.X/speed + offset*maxDeflect, Y: -b.Vel.Y / speed}
	if dir.Y < 0.3 {
		dir.Y = 0.3
	}
	b.Vel = dir.WithLen(speed)
	next.Y = 2*top - next.Y
	return true
}

// bounceBlock 击中第一个可碰撞的砖块：击碎并按进入方向反弹
func (g *Game) bounceBlock(prev Vec, next *Vec) bool {
	b := &g.ball
	for _, blk := range g.blocks {
		if !blk.Collidable() || !blk.Bounds.Contains(*next) {
			continue
		}
		blk.Hit()

		r := blk.Bounds
		if prev.X < r.X || prev.X >= r.X+r.W {
			b.Vel.X = -b.Vel.X
		} else {
			b.Vel.Y = -b.Vel.Y
		}
		*next = prev
		return true
	}
	return false
}
