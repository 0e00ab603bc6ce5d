// Package planview renders a captured frame seen from above (the X/Z plane)
// to a PNG with cairo.
package planview

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ungerik/go-cairo"

	"github.com/interborough/transit/internal/capture"
)

// ErrEmptyView is returned when the view window has no area.
var ErrEmptyView = errors.New("plan view window is empty")

// Options controls the output image and which part of the X/Z plane it shows.
type Options struct {
	Width, Height int
	MinX, MaxX    float32
	MinZ, MaxZ    float32
	// LightRadius is the marker radius in pixels; zero hides lights.
	LightRadius float64
}

// DefaultOptions frames the station: 20 units across, 200 units deep.
func DefaultOptions() Options {
	return Options{
		Width: 400, Height: 800,
		MinX: -10, MaxX: 10,
		MinZ: -100, MaxZ: 100,
		LightRadius: 4,
	}
}

// Project maps a world X/Z pair to pixel coordinates. -Z (away from the
// viewer) is at the top of the image.
func (o Options) Project(x, z float32) (float64, float64) {
	px := float64(x-o.MinX) / float64(o.MaxX-o.MinX) * float64(o.Width)
	py := float64(z-o.MinZ) / float64(o.MaxZ-o.MinZ) * float64(o.Height)
	return px, py
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 || o.MaxX <= o.MinX || o.MaxZ <= o.MinZ {
		return fmt.Errorf("%w: %dx%d x[%g,%g] z[%g,%g]", ErrEmptyView,
			o.Width, o.Height, o.MinX, o.MaxX, o.MinZ, o.MaxZ)
	}
	return nil
}

// Order returns the quads sorted lowest first so that higher geometry is
// painted over what is beneath it.
func Order(quads [][4]capture.Vertex) [][4]capture.Vertex {
	out := append([][4]capture.Vertex(nil), quads...)
	sort.SliceStable(out, func(i, j int) bool {
		return top(out[i]) < top(out[j])
	})
	return out
}

func top(q [4]capture.Vertex) float32 {
	y := float32(math.Inf(-1))
	for _, v := range q {
		y = max(y, v.World.Y())
	}
	return y
}

// Render draws every captured quad, then the enabled lights, and writes the
// result to path.
func Render(rec *capture.Recorder, path string, o Options) error {
	if err := o.validate(); err != nil {
		return err
	}

	surface := cairo.NewSurface(cairo.FORMAT_ARGB32, o.Width, o.Height)
	defer surface.Destroy()

	surface.SetSourceRGB(0, 0, 0)
	surface.Paint()

	for _, q := range Order(rec.Quads()) {
		c := q[0].Color
		surface.SetSourceRGBA(float64(c.R), float64(c.G), float64(c.B), float64(c.A))
		for i, v := range q {
			x, y := o.Project(v.World.X(), v.World.Z())
			if i == 0 {
				surface.MoveTo(x, y)
			} else {
				surface.LineTo(x, y)
			}
		}
		surface.ClosePath()
		surface.Fill()
	}

	if o.LightRadius > 0 {
		surface.SetSourceRGBA(1, 1, 0.6, 0.8)
		for _, l := range rec.Lights() {
			if !l.Enabled || l.World == (mgl32.Vec3{}) {
				continue
			}
			x, y := o.Project(l.World.X(), l.World.Z())
			surface.Arc(x, y, o.LightRadius, 0, 2*math.Pi)
			surface.Fill()
		}
	}

	if status := surface.WriteToPNG(path); status != cairo.STATUS_SUCCESS {
		return fmt.Errorf("writing plan view %s: %s", path, status.String())
	}
	return nil
}
