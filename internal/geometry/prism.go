// Package geometry emits the primitive shapes every scene part is built from.
package geometry

import (
	"fmt"
	"strings"

	"github.com/interborough/transit/pkg/core"
	"github.com/interborough/transit/pkg/raster"
)

// NormalMode selects how prism normals are emitted.
type NormalMode int

const (
	// CornerNormals emits four normals per face equal to corner offset
	// vectors. Lighting ends up using the last one for the whole face, which
	// gives the scene its faceted look.
	CornerNormals NormalMode = iota
	// FaceNormals emits one unit normal per face.
	FaceNormals
)

// ParseNormalMode converts "corner" or "face" to a NormalMode.
func ParseNormalMode(s string) (NormalMode, error) {
	switch strings.ToLower(s) {
	case "", "corner":
		return CornerNormals, nil
	case "face":
		return FaceNormals, nil
	default:
		return CornerNormals, fmt.Errorf("unknown normal mode: %q", s)
	}
}

// Material is the per-call appearance of a prism. A zero Texture means the
// prism is untextured.
type Material struct {
	Color   core.Color
	Texture uint32
}

// Solid returns an untextured material.
func Solid(c core.Color) Material {
	return Material{Color: c}
}

type sign [3]float32

type face struct {
	name    string
	normals [4]sign
	unit    sign
	verts   [4]sign
}

var (
	sideNormals = [4]sign{{1, 1, -1}, {-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}}
	capNormals  = [4]sign{{1, 1, 1}, {1, -1, 1}, {-1, -1, 1}, {-1, 1, 1}}
)

// Faces in emission order: back, front, top, bottom, left, right.
var prismFaces = [6]face{
	{"back", sideNormals, sign{0, 0, -1}, [4]sign{{1, 1, -1}, {1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}}},
	{"front", sideNormals, sign{0, 0, 1}, [4]sign{{1, 1, 1}, {1, -1, 1}, {-1, -1, 1}, {-1, 1, 1}}},
	{"top", capNormals, sign{0, 1, 0}, [4]sign{{1, 1, -1}, {-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}}},
	{"bottom", capNormals, sign{0, -1, 0}, [4]sign{{1, -1, -1}, {-1, -1, -1}, {-1, -1, 1}, {1, -1, 1}}},
	{"left", sideNormals, sign{-1, 0, 0}, [4]sign{{-1, 1, -1}, {-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}}},
	{"right", sideNormals, sign{1, 0, 0}, [4]sign{{1, 1, -1}, {1, -1, -1}, {1, -1, 1}, {1, 1, 1}}},
}

const frontFace = 1

// Unit-square texture coordinates matching the front face vertex order.
var frontTexCoords = [4][2]float32{{1, 1}, {1, 0}, {0, 0}, {0, 1}}

// Prisms emits axis-aligned boxes centred on the local origin.
type Prisms struct {
	Normals NormalMode
}

// EmitPrism emits the six quads of a width x height x length box using
// corner normals.
func EmitPrism(r raster.Rasterizer, width, height, length float32, m Material) {
	Prisms{}.Emit(r, width, height, length, m)
}

// Emit emits the six quads of a width x height x length box. With a textured
// material the front face is emitted in its own Begin/End with texturing
// enabled only for that face.
func (p Prisms) Emit(r raster.Rasterizer, width, height, length float32, m Material) {
	half := sign{width / 2, height / 2, length / 2}

	r.Enable(raster.Normalize)
	r.Color(m.Color)
	r.Begin(raster.Quads)
	for i, f := range prismFaces {
		if i == frontFace && m.Texture != 0 {
			r.End()
			r.Enable(raster.Texture2D)
			r.BindTexture(m.Texture)
			r.Begin(raster.Quads)
			p.face(r, f, half, true)
			r.End()
			r.Disable(raster.Texture2D)
			r.Begin(raster.Quads)
			continue
		}
		p.face(r, f, half, false)
	}
	r.End()
	r.Disable(raster.Normalize)
}

func (p Prisms) face(r raster.Rasterizer, f face, half sign, textured bool) {
	if p.Normals == FaceNormals {
		r.Normal(f.unit[0], f.unit[1], f.unit[2])
	} else {
		for _, n := range f.normals {
			r.Normal(n[0]*half[0], n[1]*half[1], n[2]*half[2])
		}
	}
	for i, v := range f.verts {
		if textured {
			r.TexCoord(frontTexCoords[i][0], frontTexCoords[i][1])
		}
		r.Vertex(v[0]*half[0], v[1]*half[1], v[2]*half[2])
	}
}
