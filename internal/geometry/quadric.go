package geometry

import (
	"errors"
	"math"

	"github.com/interborough/transit/pkg/raster"
)

// ErrQuadricReleased is returned when a released quadric is used or released again.
var ErrQuadricReleased = errors.New("quadric already released")

// Quadric tessellates cylinders. It is acquired once at start-up and must be
// released exactly once on the cleanup path.
type Quadric struct {
	slices, stacks int
	sin, cos       []float32
	released       bool
}

// NewQuadric precomputes the angle tables for the given subdivision.
func NewQuadric(slices, stacks int) *Quadric {
	if slices < 3 {
		slices = 3
	}
	if stacks < 1 {
		stacks = 1
	}
	q := &Quadric{
		slices: slices,
		stacks: stacks,
		sin:    make([]float32, slices+1),
		cos:    make([]float32, slices+1),
	}
	for i := 0; i <= slices; i++ {
		a := 2 * math.Pi * float64(i) / float64(slices)
		q.sin[i] = float32(math.Sin(a))
		q.cos[i] = float32(math.Cos(a))
	}
	// close the seam exactly
	q.sin[slices], q.cos[slices] = q.sin[0], q.cos[0]
	return q
}

// Slices returns the number of subdivisions around the axis.
func (q *Quadric) Slices() int { return q.slices }

// Stacks returns the number of subdivisions along the axis.
func (q *Quadric) Stacks() int { return q.stacks }

// Released reports whether Release has been called.
func (q *Quadric) Released() bool { return q.released }

// Cylinder emits a cylinder along +Z from radius base at z=0 to radius top at
// z=height, one quad strip per stack.
func (q *Quadric) Cylinder(r raster.Rasterizer, base, top, height float32) error {
	if q.released {
		return ErrQuadricReleased
	}
	if height == 0 {
		return nil
	}

	nz := (base - top) / height
	scale := float32(1 / math.Sqrt(float64(1+nz*nz)))

	for j := 0; j < q.stacks; j++ {
		z0 := height * float32(j) / float32(q.stacks)
		z1 := height * float32(j+1) / float32(q.stacks)
		r0 := base + (top-base)*float32(j)/float32(q.stacks)
		r1 := base + (top-base)*float32(j+1)/float32(q.stacks)

		r.Begin(raster.QuadStrip)
		for i := 0; i <= q.slices; i++ {
			s, c := q.sin[i], q.cos[i]
			r.Normal(s*scale, c*scale, nz*scale)
			r.Vertex(r0*s, r0*c, z0)
			r.Vertex(r1*s, r1*c, z1)
		}
		r.End()
	}
	return nil
}

// Release frees the angle tables.
func (q *Quadric) Release() error {
	if q.released {
		return ErrQuadricReleased
	}
	q.released = true
	q.sin, q.cos = nil, nil
	return nil
}
