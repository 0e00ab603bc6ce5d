package raster

import "fmt"

// LightUnit is one of the eight fixed-function light units.
// The values match GL_LIGHT0..GL_LIGHT7 so that a raw unit constant can be
// passed where a unit index is expected.
type LightUnit uint32

const (
	Light0 LightUnit = 0x4000 + iota
	Light1
	Light2
	Light3
	Light4
	Light5
	Light6
	Light7
)

// LightUnits lists the available units in order.
var LightUnits = [8]LightUnit{Light0, Light1, Light2, Light3, Light4, Light5, Light6, Light7}

// Index returns the position of the unit in LightUnits.
func (u LightUnit) Index() int {
	return int(u - Light0)
}

// Valid reports whether u is one of the eight units.
func (u LightUnit) Valid() bool {
	return u >= Light0 && u <= Light7
}

func (u LightUnit) String() string {
	if !u.Valid() {
		return fmt.Sprintf("light(%#x)", uint32(u))
	}
	return fmt.Sprintf("light%d", u.Index())
}
