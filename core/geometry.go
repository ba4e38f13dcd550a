package core

import "math"

// Point is a position in logical units.
type Point struct {
	X, Y float32
}

// Origin is the zero point.
var Origin = Point{}

// Add offsets the point by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector {
	return Vector{X: p.X - q.X, Y: p.Y - q.Y}
}

// Vector is a displacement in logical units.
type Vector struct {
	X, Y float32
}

// Size is a logical size.
type Size struct {
	Width, Height float32
}

// Infinite is a size without bounds, used for unconstrained text layout.
var Infinite = Size{Width: float32(math.Inf(1)), Height: float32(math.Inf(1))}

// PhysicalSize is a size in device pixels.
type PhysicalSize struct {
	Width, Height uint32
}

// IsEmpty reports whether either dimension is zero.
func (s PhysicalSize) IsEmpty() bool {
	return s.Width == 0 || s.Height == 0
}

// Rectangle is an axis-aligned box in logical units.
type Rectangle struct {
	X, Y, Width, Height float32
}

// NewRectangle builds a rectangle from its top-left corner and size.
func NewRectangle(p Point, s Size) Rectangle {
	return Rectangle{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Position returns the top-left corner.
func (r Rectangle) Position() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rectangle size.
func (r Rectangle) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside r.
func (r Rectangle) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Translate moves the rectangle by v.
func (r Rectangle) Translate(v Vector) Rectangle {
	r.X += v.X
	r.Y += v.Y
	return r
}

// Shrink removes padding from every side.
func (r Rectangle) Shrink(p Padding) Rectangle {
	return Rectangle{
		X:      r.X + p.Left,
		Y:      r.Y + p.Top,
		Width:  max(r.Width-p.Left-p.Right, 0),
		Height: max(r.Height-p.Top-p.Bottom, 0),
	}
}

// Padding is spacing around a box.
type Padding struct {
	Top, Right, Bottom, Left float32
}

// Uniform returns the same padding on every side.
func Uniform(v float32) Padding {
	return Padding{Top: v, Right: v, Bottom: v, Left: v}
}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	Black       = Color{A: 1}
	White       = Color{R: 1, G: 1, B: 1, A: 1}
	Transparent = Color{}
)

// RGB8 builds an opaque color from 8-bit components.
func RGB8(r, g, b uint8) Color {
	return Color{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// RGBA8 returns the color as 8-bit components.
func (c Color) RGBA8() (r, g, b, a uint8) {
	conv := func(v float32) uint8 {
		return uint8(math.Round(float64(min(max(v, 0), 1) * 255)))
	}
	return conv(c.R), conv(c.G), conv(c.B), conv(c.A)
}
