package scenery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/capture"
	"github.com/interborough/transit/internal/geometry"
	"github.com/interborough/transit/pkg/raster"
)

func newStock(t *testing.T) *RollingStock {
	t.Helper()
	q := geometry.NewQuadric(WheelSlices, WheelStacks)
	t.Cleanup(func() { _ = q.Release() })
	return NewRollingStock(q)
}

func wheelStrips(rec *capture.Recorder) int {
	n := 0
	for _, p := range rec.Primitives() {
		if p.Mode == raster.QuadStrip {
			n++
		}
	}
	return n
}

func TestEmitCar_BodyAndFourWheels(t *testing.T) {
	rec := capture.New()
	s := newStock(t)

	require.NoError(t, s.EmitCar(rec, 0, 0))
	require.NoError(t, rec.Err())

	assert.Len(t, rec.Quads(), quadsPerPrism)
	assert.Equal(t, 4*WheelStacks, wheelStrips(rec))

	for _, q := range rec.Quads() {
		assert.Equal(t, CarBody, q[0].Color)
	}
}

func TestEmitCar_WheelPositions(t *testing.T) {
	rec := capture.New()
	s := newStock(t)
	require.NoError(t, s.EmitCar(rec, 0, 0))

	// the first vertex of each wheel lies on the base circle around its hub
	var hubs [][3]float32
	for i, p := range rec.Primitives() {
		if p.Mode != raster.QuadStrip || (i-1)%WheelStacks != 0 {
			continue
		}
		v := p.Vertices[0]
		hubs = append(hubs, [3]float32{v.World.X(), v.World.Y(), v.World.Z()})
	}
	require.Len(t, hubs, 4)

	want := [][3]float32{{-0.5, -0.5, 1}, {0.5, -0.5, 1}, {-0.5, -0.5, -1}, {0.5, -0.5, -1}}
	for i, w := range want {
		assert.InDelta(t, w[0], hubs[i][0], 0.001, "wheel %d x", i)
		assert.InDelta(t, w[1], hubs[i][1], WheelBaseRadius+1e-5, "wheel %d y", i)
		assert.InDelta(t, w[2], hubs[i][2], WheelBaseRadius+1e-5, "wheel %d z", i)
	}
}

func TestEmitWheel_ColorAndOrientation(t *testing.T) {
	rec := capture.New()
	s := newStock(t)
	require.NoError(t, s.EmitWheel(rec))

	prims := rec.Primitives()
	require.Len(t, prims, WheelStacks)
	for _, v := range prims[0].Vertices {
		assert.Equal(t, DarkGray, v.Color)
	}
	// the cylinder axis (local +Z) is turned onto world +X
	last := prims[WheelStacks-1].Vertices[1]
	assert.InDelta(t, WheelLength, last.World.X(), 1e-5)
}

func TestEmitTrain_Spacing(t *testing.T) {
	rec := capture.New()
	s := newStock(t)

	require.NoError(t, s.EmitTrain(rec, 0))
	require.NoError(t, rec.Err())

	quads := rec.Quads()
	require.Len(t, quads, CarsPerTrain*quadsPerPrism)

	for car := 0; car < CarsPerTrain; car++ {
		front := quads[car*quadsPerPrism+1] // front face
		wantZ := float32(-CarSpacing*float64(car) + CarLength/2)
		assert.InDelta(t, wantZ, front[0].World.Z(), 1e-4, "car %d", car)
	}

	// gap between the back of one car and the front of the next
	back0 := quads[0][0].World.Z()
	front1 := quads[quadsPerPrism+1][0].World.Z()
	assert.InDelta(t, 0.2*CarLength, back0-front1, 1e-4)
}

func TestEmitTrain_ReleasedQuadric(t *testing.T) {
	q := geometry.NewQuadric(8, 1)
	require.NoError(t, q.Release())

	err := NewRollingStock(q).EmitTrain(capture.New(), 0)
	assert.ErrorIs(t, err, geometry.ErrQuadricReleased)
}

func TestRollingStock_TexturedBody(t *testing.T) {
	rec := capture.New()
	s := newStock(t)
	s.Body = geometry.Material{Color: CarBody, Texture: 3}

	require.NoError(t, s.EmitCar(rec, 0, 0))
	textured := 0
	for _, q := range rec.Quads() {
		if q[0].Texture == 3 {
			textured++
		}
	}
	assert.Equal(t, 1, textured)
}
