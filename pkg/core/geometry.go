package core

import "fmt"

// Vector3 is a position or a set of per-axis rotations (degrees).
type Vector3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// String formats the vector as "x,y,z".
func (v Vector3) String() string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}

// Color is an RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float32
}

// RGB builds an opaque color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Slice returns the color as a 4-element array, the layout light parameters use.
func (c Color) Slice() []float32 {
	return []float32{c.R, c.G, c.B, c.A}
}
