package breakout

import "math"

// Vec 二维向量，y 轴向上
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) IsZero() bool        { return v.X == 0 && v.Y == 0 }

func (v Vec) WithLen(l float64) Vec {
	n := v.Len()
	if n == 0 {
		return Vec{}
	}
	return v.Scale(l / n)
}

// Rect 轴对齐矩形，(X, Y) 为左下角
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Ball 球的位置与每帧位移
type Ball struct {
	Pos Vec
	Vel Vec
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
