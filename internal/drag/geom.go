package drag

import "math"

// Point is a pointer position in view coordinates (pixels, or terminal cells
// for the TUI frontend).
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box. Right and Bottom are exclusive for hit tests
// and inclusive for the resolver's span checks, matching client rects.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64    { return r.X }
func (r Rect) Top() float64     { return r.Y }
func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Contains is a half-open hit test.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.Right() && p.Y >= r.Y && p.Y < r.Bottom()
}

func (r Rect) withinY(y float64) bool { return y >= r.Top() && y <= r.Bottom() }
func (r Rect) withinX(x float64) bool { return x >= r.Left() && x <= r.Right() }

// Inset shrinks r by d on every side.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out
}

func dist(a, b float64) float64 { return math.Abs(a - b) }
