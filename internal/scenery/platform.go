package scenery

import (
	"math"

	"github.com/interborough/transit/internal/geometry"
	"github.com/interborough/transit/pkg/raster"
)

// Platform dimensions.
const (
	PlatformLength = 30.0
	PlatformHeight = 0.4
	PlatformWidth  = 1.6
	StripWidth     = 0.04
	StripHeight    = 0.02
	TileSide       = StripWidth * 4
	PillarHeight   = TileSide * 6
)

// Tile grid size. Partial tiles at the far edge are still drawn.
var (
	TileRows    = int(math.Ceil((PlatformWidth - StripWidth) / TileSide))
	TileColumns = int(math.Ceil(PlatformLength / TileSide))
)

// PlatformLight is the spotlight fixed above every platform.
var PlatformLight = Spotlight{
	Position:  [4]float32{0, -PlatformHeight/2 + PillarHeight*2, 0, 1},
	Direction: [3]float32{0, 0, 0},
	Cutoff:    90,
	Exponent:  2,
	Ambient:   [4]float32{0.7, 0.7, 0.7, 0.1},
	Specular:  [4]float32{0.7, 0.7, 0.7, 0.1},
	Diffuse:   [4]float32{0.7, 0.7, 0.7, 0.01},
}

// PlatformBuilder emits station platforms.
type PlatformBuilder struct {
	Prisms geometry.Prisms
}

// EmitPlatform emits the slab, safety strips, tile grid, pillars and the
// platform light keyed by platformID.
func (b *PlatformBuilder) EmitPlatform(r raster.Rasterizer, platformID int) error {
	var err error
	raster.Scope(r, func() {
		b.Prisms.Emit(r, PlatformWidth, PlatformHeight, PlatformLength, geometry.Solid(DarkGray))

		for _, x := range []float32{-PlatformWidth/2 - StripWidth, PlatformWidth/2 + StripWidth} {
			raster.Scope(r, func() {
				r.Translate(x, PlatformHeight/2+StripHeight, 0)
				b.Prisms.Emit(r, StripWidth, StripHeight, PlatformLength, geometry.Solid(Yellow))
			})
		}

		b.emitTiles(r)
		b.emitPillars(r)

		var unit raster.LightUnit
		if unit, err = LightUnitFor(platformID); err != nil {
			return
		}
		PlatformLight.Apply(r, unit)
	})
	return err
}

func (b *PlatformBuilder) emitTiles(r raster.Rasterizer) {
	colors := NewAlternator(LightGray, DarkGray)
	raster.Scope(r, func() {
		for i := 0; i < TileRows; i++ {
			colors.Next()
			for j := 0; j < TileColumns; j++ {
				c := colors.Next()
				raster.Scope(r, func() {
					r.Translate(-PlatformWidth/2+TileSide/2+TileSide*float32(i), PlatformHeight/2+StripHeight, -PlatformLength/2+TileSide*float32(j))
					b.Prisms.Emit(r, TileSide, StripHeight, TileSide, geometry.Solid(c))
				})
			}
		}
	})
}

// Pillar positions: front, middle and back on both sides.
var pillarSpots = [6][2]float32{
	{-PlatformWidth/2 + TileSide, PlatformLength/2 - TileSide},
	{PlatformWidth/2 - TileSide, PlatformLength/2 - TileSide},
	{PlatformWidth/2 - TileSide, 0},
	{-PlatformWidth/2 + TileSide, 0},
	{PlatformWidth/2 - TileSide, -PlatformLength/2 + TileSide},
	{-PlatformWidth/2 + TileSide, -PlatformLength/2 + TileSide},
}

func (b *PlatformBuilder) emitPillars(r raster.Rasterizer) {
	for _, p := range pillarSpots {
		raster.Scope(r, func() {
			r.Translate(p[0], PlatformHeight/2+PillarHeight/2, p[1])
			b.Prisms.Emit(r, TileSide, PillarHeight, TileSide, geometry.Solid(Blue))
		})
	}
}
