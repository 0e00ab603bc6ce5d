// Package raster describes the immediate-mode rasterization API the scene is
// drawn against. Implementations live in internal/glraster (OpenGL) and
// internal/capture (in-memory recording).
package raster

import (
	"fmt"

	"github.com/interborough/transit/pkg/core"
)

// Primitive is the kind of geometry between Begin and End.
type Primitive int

const (
	Quads Primitive = iota
	QuadStrip
)

// Capability is a server-side toggle.
type Capability int

const (
	Lighting Capability = iota
	Normalize
	Texture2D
	DepthTest
	ColorMaterial
)

func (c Capability) String() string {
	switch c {
	case Lighting:
		return "lighting"
	case Normalize:
		return "normalize"
	case Texture2D:
		return "texture2d"
	case DepthTest:
		return "depth_test"
	case ColorMaterial:
		return "color_material"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// LightParam selects which light property a Light call sets.
type LightParam int

const (
	Position LightParam = iota
	SpotDirection
	Ambient
	Diffuse
	Specular
	SpotCutoff
	SpotExponent
	LinearAttenuation
)

// Rasterizer is the immediate-mode drawing surface. Calls are only valid on
// the thread that owns the rendering context.
type Rasterizer interface {
	PushMatrix()
	PopMatrix()
	Translate(x, y, z float32)
	// Rotate rotates by angle degrees about the axis (x, y, z).
	Rotate(angle, x, y, z float32)

	Color(c core.Color)
	Begin(p Primitive)
	End()
	Normal(x, y, z float32)
	Vertex(x, y, z float32)
	TexCoord(s, t float32)

	Enable(c Capability)
	Disable(c Capability)
	BindTexture(id uint32)

	Light(unit LightUnit, p LightParam, values ...float32)
	EnableLight(unit LightUnit)
}

// Scope runs fn inside a saved transform: PushMatrix before, PopMatrix after.
func Scope(r Rasterizer, fn func()) {
	r.PushMatrix()
	defer r.PopMatrix()
	fn()
}
