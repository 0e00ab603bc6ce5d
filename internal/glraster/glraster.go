// Package glraster draws through the OpenGL 2.1 fixed-function pipeline.
// Every method must be called on the thread that owns the GL context.
package glraster

import (
	"fmt"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/interborough/transit/internal/texture"
	"github.com/interborough/transit/pkg/core"
	"github.com/interborough/transit/pkg/raster"
)

// FieldOfView is the vertical field of view in degrees.
const FieldOfView = 45

// NearPlane is the distance to the near clipping plane.
const NearPlane = 1

// GL implements raster.Rasterizer on the current GL context.
type GL struct {
	textures []uint32
}

var _ raster.Rasterizer = (*GL)(nil)

// New loads the GL function pointers. A context must be current.
func New() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing gl: %w", err)
	}
	return &GL{}, nil
}

// Version returns the driver's GL version string.
func (g *GL) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Setup puts the pipeline into the state the scene expects: black clear
// color, depth test, colored materials, lighting and smooth shading.
// Blending stays off: with POLYGON_SMOOTH it leaves seams between triangles.
func (g *GL) Setup() {
	gl.ClearColor(0, 0, 0, 1)
	g.Enable(raster.DepthTest)
	g.Enable(raster.ColorMaterial)
	g.Enable(raster.Lighting)
	gl.ShadeModel(gl.SMOOTH)
	gl.Enable(gl.POLYGON_SMOOTH)
}

// Reshape sets the viewport and a perspective projection reaching depth.
func (g *GL) Reshape(width, height int, depth float32) {
	if height == 0 {
		height = 1
	}
	gl.Viewport(0, 0, int32(width), int32(height))

	proj := Projection(width, height, depth)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&proj[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
}

// Projection is the perspective matrix used for a width x height viewport.
func Projection(width, height int, depth float32) mgl32.Mat4 {
	if height == 0 {
		height = 1
	}
	ratio := float32(width) / float32(height)
	return mgl32.Perspective(mgl32.DegToRad(FieldOfView), ratio, NearPlane, depth)
}

// BeginFrame clears the buffers and resets the modelview matrix.
func (g *GL) BeginFrame() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
}

// EndFrame flushes queued commands; the host swaps buffers.
func (g *GL) EndFrame() {
	gl.Flush()
}

// UploadTexture creates a linear-filtered RGB texture and returns its name.
func (g *GL) UploadTexture(img *texture.Image) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexEnvf(gl.TEXTURE_ENV, gl.TEXTURE_ENV_MODE, gl.MODULATE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, int32(img.Width), int32(img.Height), 0,
		gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	g.textures = append(g.textures, id)
	return id
}

// Release deletes every uploaded texture.
func (g *GL) Release() {
	if len(g.textures) > 0 {
		gl.DeleteTextures(int32(len(g.textures)), &g.textures[0])
		g.textures = nil
	}
}

func (g *GL) PushMatrix()                   { gl.PushMatrix() }
func (g *GL) PopMatrix()                    { gl.PopMatrix() }
func (g *GL) Translate(x, y, z float32)     { gl.Translatef(x, y, z) }
func (g *GL) Rotate(angle, x, y, z float32) { gl.Rotatef(angle, x, y, z) }
func (g *GL) Color(c core.Color)            { gl.Color4f(c.R, c.G, c.B, c.A) }
func (g *GL) Begin(p raster.Primitive)      { gl.Begin(primitive(p)) }
func (g *GL) End()                          { gl.End() }
func (g *GL) Normal(x, y, z float32)        { gl.Normal3f(x, y, z) }
func (g *GL) Vertex(x, y, z float32)        { gl.Vertex3f(x, y, z) }
func (g *GL) TexCoord(s, t float32)         { gl.TexCoord2f(s, t) }
func (g *GL) Enable(c raster.Capability)    { gl.Enable(capability(c)) }
func (g *GL) Disable(c raster.Capability)   { gl.Disable(capability(c)) }
func (g *GL) BindTexture(id uint32)         { gl.BindTexture(gl.TEXTURE_2D, id) }

func (g *GL) Light(unit raster.LightUnit, p raster.LightParam, values ...float32) {
	if len(values) == 0 {
		return
	}
	name, vector := lightParam(p)
	if vector {
		gl.Lightfv(uint32(unit), name, &values[0])
		return
	}
	gl.Lightf(uint32(unit), name, values[0])
}

func (g *GL) EnableLight(unit raster.LightUnit) { gl.Enable(uint32(unit)) }

func primitive(p raster.Primitive) uint32 {
	switch p {
	case raster.QuadStrip:
		return gl.QUAD_STRIP
	default:
		return gl.QUADS
	}
}

func capability(c raster.Capability) uint32 {
	switch c {
	case raster.Lighting:
		return gl.LIGHTING
	case raster.Normalize:
		return gl.NORMALIZE
	case raster.Texture2D:
		return gl.TEXTURE_2D
	case raster.DepthTest:
		return gl.DEPTH_TEST
	case raster.ColorMaterial:
		return gl.COLOR_MATERIAL
	default:
		panic(fmt.Sprintf("glraster: unknown capability %v", c))
	}
}

// lightParam returns the GL parameter name and whether it takes a vector.
func lightParam(p raster.LightParam) (uint32, bool) {
	switch p {
	case raster.Position:
		return gl.POSITION, true
	case raster.SpotDirection:
		return gl.SPOT_DIRECTION, true
	case raster.Ambient:
		return gl.AMBIENT, true
	case raster.Diffuse:
		return gl.DIFFUSE, true
	case raster.Specular:
		return gl.SPECULAR, true
	case raster.SpotCutoff:
		return gl.SPOT_CUTOFF, false
	case raster.SpotExponent:
		return gl.SPOT_EXPONENT, false
	default:
		return gl.LINEAR_ATTENUATION, false
	}
}
