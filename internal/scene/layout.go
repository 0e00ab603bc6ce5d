package scene

import (
	"github.com/interborough/transit/internal/scenery"
	"github.com/interborough/transit/pkg/core"
)

// PlatformPlacement puts platform ID at Offset in world space.
type PlatformPlacement struct {
	ID     int          `json:"id" mapstructure:"id"`
	Offset core.Vector3 `json:"offset" mapstructure:"offset"`
}

// TrackPlacement configures one track slot.
type TrackPlacement struct {
	Offset    float32        `json:"offset" mapstructure:"offset"`
	ShowTrain bool           `json:"showTrain" mapstructure:"showTrain"`
	Direction core.Direction `json:"direction" mapstructure:"direction"`
}

// Layout is the fixed arrangement of platforms and tracks.
type Layout struct {
	Platforms []PlatformPlacement
	Tracks    []TrackPlacement
}

// DefaultLayout is the station: four platforms and two tracks running in
// opposite directions.
func DefaultLayout() Layout {
	const y = -0.4
	return Layout{
		Platforms: []PlatformPlacement{
			{ID: 0, Offset: core.Vector3{Y: y, Z: -scenery.PlatformLength * 3}},
			{ID: 1, Offset: core.Vector3{Y: y, Z: -scenery.PlatformLength / 2}},
			{ID: 2, Offset: core.Vector3{Y: y, Z: scenery.PlatformLength * 3}},
			{ID: 3, Offset: core.Vector3{Y: y, Z: scenery.PlatformLength * 3}},
		},
		Tracks: []TrackPlacement{
			{Offset: 1.5, ShowTrain: true, Direction: core.North},
			{Offset: -1.5, ShowTrain: true, Direction: core.South},
		},
	}
}
