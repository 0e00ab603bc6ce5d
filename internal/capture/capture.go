// Package capture implements raster.Rasterizer in memory. Every vertex is
// transformed through a mathgl matrix stack so callers can inspect the
// world-space geometry of a frame without a GPU.
package capture

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/interborough/transit/pkg/core"
	"github.com/interborough/transit/pkg/raster"
)

var (
	// ErrStackUnderflow is recorded when PopMatrix is called on the base matrix.
	ErrStackUnderflow = errors.New("matrix stack underflow")
	// ErrOutsideBegin is recorded when a vertex is emitted outside Begin/End.
	ErrOutsideBegin = errors.New("vertex outside begin/end")
	// ErrNestedBegin is recorded when Begin is called twice without End.
	ErrNestedBegin = errors.New("nested begin")
)

// Vertex is one emitted vertex with the state that was current when it was emitted.
type Vertex struct {
	Local    mgl32.Vec3
	World    mgl32.Vec3
	Normal   mgl32.Vec3
	Color    core.Color
	TexCoord mgl32.Vec2
	Texture  uint32 // bound texture when texturing was enabled, else 0
}

// Primitive is the geometry emitted between one Begin/End pair.
type Primitive struct {
	Mode     raster.Primitive
	Vertices []Vertex
}

// Light is the accumulated state of one light unit.
type Light struct {
	Enabled bool
	Params  map[raster.LightParam][]float32
	// World is the light position transformed by the modelview matrix current
	// at the time Position was set.
	World mgl32.Vec3
}

// Recorder captures a frame of immediate-mode drawing.
type Recorder struct {
	stack   []mgl32.Mat4
	color   core.Color
	normal  mgl32.Vec3
	tex     mgl32.Vec2
	texture uint32
	enabled map[raster.Capability]bool
	lights  map[raster.LightUnit]*Light

	current    *Primitive
	primitives []Primitive
	maxDepth   int
	err        error
}

// New creates a recorder with an identity modelview matrix and every capability disabled.
func New() *Recorder {
	return &Recorder{
		stack:   []mgl32.Mat4{mgl32.Ident4()},
		color:   core.RGB(1, 1, 1),
		enabled: make(map[raster.Capability]bool),
		lights:  make(map[raster.LightUnit]*Light),
	}
}

// Reset discards captured geometry and errors. Capability and light state
// survive, as they would on a real context between frames.
func (r *Recorder) Reset() {
	r.stack = r.stack[:1]
	r.stack[0] = mgl32.Ident4()
	r.current = nil
	r.primitives = nil
	r.maxDepth = 0
	r.err = nil
}

func (r *Recorder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Recorder) top() mgl32.Mat4 {
	return r.stack[len(r.stack)-1]
}

// Err returns the first misuse recorded since the last Reset, or an error if
// the matrix stack is not back at its base.
func (r *Recorder) Err() error {
	if r.err != nil {
		return r.err
	}
	if d := len(r.stack) - 1; d != 0 {
		return fmt.Errorf("matrix stack not balanced: depth %d", d)
	}
	if r.current != nil {
		return errors.New("begin without end")
	}
	return nil
}

// Depth returns the current transform nesting depth.
func (r *Recorder) Depth() int {
	return len(r.stack) - 1
}

// MaxDepth returns the deepest nesting seen since the last Reset.
func (r *Recorder) MaxDepth() int {
	return r.maxDepth
}

// Matrix returns the current modelview matrix.
func (r *Recorder) Matrix() mgl32.Mat4 {
	return r.top()
}

func (r *Recorder) PushMatrix() {
	r.stack = append(r.stack, r.top())
	if d := r.Depth(); d > r.maxDepth {
		r.maxDepth = d
	}
}

func (r *Recorder) PopMatrix() {
	if len(r.stack) == 1 {
		r.fail(ErrStackUnderflow)
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) Translate(x, y, z float32) {
	r.stack[len(r.stack)-1] = r.top().Mul4(mgl32.Translate3D(x, y, z))
}

func (r *Recorder) Rotate(angle, x, y, z float32) {
	axis := mgl32.Vec3{x, y, z}
	if axis.Len() == 0 {
		return
	}
	rot := mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis.Normalize())
	r.stack[len(r.stack)-1] = r.top().Mul4(rot)
}

func (r *Recorder) Color(c core.Color) {
	r.color = c
}

func (r *Recorder) Begin(p raster.Primitive) {
	if r.current != nil {
		r.fail(ErrNestedBegin)
		return
	}
	r.current = &Primitive{Mode: p}
}

func (r *Recorder) End() {
	if r.current == nil {
		return
	}
	r.primitives = append(r.primitives, *r.current)
	r.current = nil
}

func (r *Recorder) Normal(x, y, z float32) {
	r.normal = mgl32.Vec3{x, y, z}
}

func (r *Recorder) TexCoord(s, t float32) {
	r.tex = mgl32.Vec2{s, t}
}

func (r *Recorder) Vertex(x, y, z float32) {
	if r.current == nil {
		r.fail(ErrOutsideBegin)
		return
	}
	local := mgl32.Vec3{x, y, z}
	v := Vertex{
		Local:    local,
		World:    r.top().Mul4x1(local.Vec4(1)).Vec3(),
		Normal:   r.normal,
		Color:    r.color,
		TexCoord: r.tex,
	}
	if r.enabled[raster.Texture2D] {
		v.Texture = r.texture
	}
	r.current.Vertices = append(r.current.Vertices, v)
}

func (r *Recorder) Enable(c raster.Capability) {
	r.enabled[c] = true
}

func (r *Recorder) Disable(c raster.Capability) {
	r.enabled[c] = false
}

// IsEnabled reports whether c is currently on.
func (r *Recorder) IsEnabled(c raster.Capability) bool {
	return r.enabled[c]
}

func (r *Recorder) BindTexture(id uint32) {
	r.texture = id
}

func (r *Recorder) light(unit raster.LightUnit) *Light {
	l, ok := r.lights[unit]
	if !ok {
		l = &Light{Params: make(map[raster.LightParam][]float32)}
		r.lights[unit] = l
	}
	return l
}

func (r *Recorder) Light(unit raster.LightUnit, p raster.LightParam, values ...float32) {
	l := r.light(unit)
	l.Params[p] = append([]float32(nil), values...)
	if p == raster.Position && len(values) >= 3 {
		l.World = r.top().Mul4x1(mgl32.Vec4{values[0], values[1], values[2], 1}).Vec3()
	}
}

func (r *Recorder) EnableLight(unit raster.LightUnit) {
	r.light(unit).Enabled = true
}

var _ raster.Rasterizer = (*Recorder)(nil)
