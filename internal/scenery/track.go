// Package scenery builds the parts of the subway scene: track, rolling stock
// and platforms. Every builder emits relative to the current local origin
// and leaves the transform stack as it found it.
package scenery

import (
	"fmt"
	"strings"

	"github.com/interborough/transit/internal/geometry"
	"github.com/interborough/transit/pkg/raster"
)

// Track dimensions.
const (
	TieWidth           = 1.2
	TieHeight          = 0.02
	TieDepth           = 0.04
	TiePitch           = TieDepth*2 + TieDepth*5
	TrackSegmentLength = 4.0
	RailWidth          = 0.06
	RailHeight         = 0.04
)

// RailOffsets are the lateral positions of the left running rail, the right
// running rail and the third rail.
var RailOffsets = [3]float32{-0.45, 0.5, 0.2}

// TrackStrategy selects how a track covers the visible depth.
type TrackStrategy int

const (
	// SegmentTiled repeats fixed-length segments from -depth to +depth.
	SegmentTiled TrackStrategy = iota
	// FullDepth lays ties across the whole range and emits each rail once.
	FullDepth
)

// ParseTrackStrategy converts "segmented" or "full" to a TrackStrategy.
func ParseTrackStrategy(s string) (TrackStrategy, error) {
	switch strings.ToLower(s) {
	case "", "segmented", "segment":
		return SegmentTiled, nil
	case "full", "fulldepth":
		return FullDepth, nil
	default:
		return SegmentTiled, fmt.Errorf("unknown track strategy: %q", s)
	}
}

// TrackBuilder emits ties and rails.
type TrackBuilder struct {
	Strategy TrackStrategy
	Depth    float32
	Prisms   geometry.Prisms
}

// NewTrackBuilder creates a builder that covers [-depth, depth] on Z.
func NewTrackBuilder(strategy TrackStrategy, depth float32) *TrackBuilder {
	return &TrackBuilder{Strategy: strategy, Depth: depth}
}

// EmitTrack covers the rendered depth range with track.
func (b *TrackBuilder) EmitTrack(r raster.Rasterizer) {
	if b.Strategy == FullDepth {
		b.emitFullDepth(r)
		return
	}
	for back := -b.Depth; back < b.Depth; back += TrackSegmentLength {
		raster.Scope(r, func() {
			r.Translate(0, 0, back)
			b.EmitTrackSegment(r, TrackSegmentLength)
		})
	}
}

// EmitTrackSegment lays ties from the local origin toward +Z until length is
// reached, then the three rails spanning the segment.
func (b *TrackBuilder) EmitTrackSegment(r raster.Rasterizer, length float32) {
	b.emitTies(r, 0, length)
	b.emitRails(r, length)
}

func (b *TrackBuilder) emitFullDepth(r raster.Rasterizer) {
	raster.Scope(r, func() {
		r.Translate(0, 0, -b.Depth)
		b.emitTies(r, 0, 2*b.Depth)
	})
	b.emitRails(r, 2*b.Depth)
}

func (b *TrackBuilder) emitTies(r raster.Rasterizer, from, length float32) {
	for z := from; z < length; z += TiePitch {
		raster.Scope(r, func() {
			r.Translate(0, 0, z)
			b.Prisms.Emit(r, TieWidth, TieHeight, TieDepth, geometry.Solid(DarkBrown))
		})
	}
}

func (b *TrackBuilder) emitRails(r raster.Rasterizer, length float32) {
	for _, x := range RailOffsets {
		raster.Scope(r, func() {
			r.Translate(x, 0, 0)
			b.Prisms.Emit(r, RailWidth, RailHeight, length, geometry.Solid(DarkGray))
		})
	}
}
