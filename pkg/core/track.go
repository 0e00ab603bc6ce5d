// pkg/core/track.go
package core

import (
	"fmt"
	"strings"
)

// Direction is the heading of the trains on a track.
type Direction int

const (
	// North trains advance toward +Z on an unrotated track.
	North Direction = iota
	// South trains advance toward -Z on an unrotated track.
	South
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Sign is +1 for North and -1 for South.
func (d Direction) Sign() float32 {
	if d == South {
		return -1
	}
	return 1
}

// ParseDirection converts "north"/"south" (any case) to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "n":
		return North, nil
	case "south", "s":
		return South, nil
	default:
		return North, fmt.Errorf("unknown direction: %q", s)
	}
}

// TrackSlot is one installed lane. It always hosts track geometry and may host a train.
type TrackSlot struct {
	Index     int
	Offset    float32 // lateral X offset from the scene origin
	ShowTrain bool
	Direction Direction
}
