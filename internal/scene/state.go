// Package scene holds the mutable scene state and composes the per-frame
// draw traversal from it.
package scene

import (
	"errors"
	"fmt"

	"github.com/interborough/transit/pkg/core"
)

// ErrNoSlot is returned when a track slot index is out of range.
var ErrNoSlot = errors.New("no such track slot")

// Mode is the animation state.
type Mode int

const (
	Running Mode = iota
	Paused
)

func (m Mode) String() string {
	if m == Paused {
		return "paused"
	}
	return "running"
}

// Camera defaults restored by Reset.
var DefaultTranslate = core.Vector3{X: 0, Y: -1.1, Z: -5}

// Train positions.
var (
	InstallPosition = core.Vector3{X: 0, Y: 0, Z: 3}
	ResetPosition   = core.Vector3{X: 0, Y: 0, Z: -3}
)

// State is everything the input controller and the animation loop change
// and the composer reads. It is owned by the render thread.
type State struct {
	Translate     core.Vector3
	TrackRotation core.Vector3 // pitch (X), yaw (Y), roll (Z) in degrees
	WorldRotation core.Vector3
	Mode          Mode
	Lighting      bool

	slots      []core.TrackSlot
	positions  []core.Vector3
	controlled int
}

// NewState installs the layout's track slots once. The slot count never
// changes afterwards.
func NewState(layout Layout) *State {
	s := &State{
		Translate: DefaultTranslate,
		Lighting:  true,
		slots:     make([]core.TrackSlot, len(layout.Tracks)),
		positions: make([]core.Vector3, len(layout.Tracks)),
	}
	for i, t := range layout.Tracks {
		s.slots[i] = core.TrackSlot{
			Index:     i,
			Offset:    t.Offset,
			ShowTrain: t.ShowTrain,
			Direction: t.Direction,
		}
		s.positions[i] = InstallPosition
	}
	return s
}

// TrackCount returns the number of installed slots.
func (s *State) TrackCount() int {
	return len(s.slots)
}

// Slot returns the configuration of slot i.
func (s *State) Slot(i int) (core.TrackSlot, error) {
	if i < 0 || i >= len(s.slots) {
		return core.TrackSlot{}, fmt.Errorf("%w: %d", ErrNoSlot, i)
	}
	return s.slots[i], nil
}

// Slots returns a copy of the installed slots.
func (s *State) Slots() []core.TrackSlot {
	return append([]core.TrackSlot(nil), s.slots...)
}

// Position returns the train position on slot i.
func (s *State) Position(i int) (core.Vector3, error) {
	if i < 0 || i >= len(s.positions) {
		return core.Vector3{}, fmt.Errorf("%w: %d", ErrNoSlot, i)
	}
	return s.positions[i], nil
}

// SetPosition moves the train on slot i.
func (s *State) SetPosition(i int, p core.Vector3) error {
	if i < 0 || i >= len(s.positions) {
		return fmt.Errorf("%w: %d", ErrNoSlot, i)
	}
	s.positions[i] = p
	return nil
}

// MoveTrains replaces every train position with move's result for its slot.
func (s *State) MoveTrains(move func(slot core.TrackSlot, p core.Vector3) core.Vector3) {
	for i, slot := range s.slots {
		s.positions[i] = move(slot, s.positions[i])
	}
}

// Positions returns a copy of every train position.
func (s *State) Positions() []core.Vector3 {
	return append([]core.Vector3(nil), s.positions...)
}

// Controlled returns the index of the user-controlled track.
func (s *State) Controlled() int {
	return s.controlled
}

// CycleControlled moves control to the next slot, wrapping to 0 after the last.
func (s *State) CycleControlled() int {
	if s.controlled < len(s.slots)-1 {
		s.controlled++
	} else {
		s.controlled = 0
	}
	return s.controlled
}

// TogglePause switches between Running and Paused.
func (s *State) TogglePause() Mode {
	if s.Mode == Running {
		s.Mode = Paused
	} else {
		s.Mode = Running
	}
	return s.Mode
}

// Reset zeroes every rotation, puts every train at ResetPosition and restores
// the default camera translation. It is idempotent.
func (s *State) Reset() {
	s.TrackRotation = core.Vector3{}
	s.WorldRotation = core.Vector3{}
	for i := range s.positions {
		s.positions[i] = ResetPosition
	}
	s.Translate = DefaultTranslate
}
