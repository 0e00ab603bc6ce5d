package scenery

import "github.com/interborough/transit/pkg/core"

// Scene palette.
var (
	Black       = core.RGB(0, 0, 0)
	White       = core.RGB(1, 1, 1)
	DarkBrown   = core.RGB(0.35, 0.16, 0.14)
	BlueishGray = core.RGB(0.7, 0.7, 0.73)
	LightGray   = core.RGB(0.9, 0.9, 0.9)
	DarkGray    = core.RGB(0.3, 0.3, 0.3)
	Yellow      = core.RGB(1, 1, 0)
	Blue        = core.RGB(0.2, 0.2, 0.6)
	CarBody     = core.RGB(0.7, 0.7, 0.71)
)

// Alternator flips between two colors. The zero value has no current color,
// so the first Next returns the first color.
type Alternator struct {
	first, second core.Color
	current       *core.Color
}

// NewAlternator creates an alternator over first and second.
func NewAlternator(first, second core.Color) *Alternator {
	return &Alternator{first: first, second: second}
}

// Next toggles and returns the new current color.
func (a *Alternator) Next() core.Color {
	if a.current == &a.first {
		a.current = &a.second
	} else {
		a.current = &a.first
	}
	return *a.current
}
