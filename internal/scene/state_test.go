package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/pkg/core"
)

func TestNewState_InstallsSlotsOnce(t *testing.T) {
	s := NewState(DefaultLayout())

	require.Equal(t, 2, s.TrackCount())
	slot, err := s.Slot(1)
	require.NoError(t, err)
	assert.Equal(t, core.TrackSlot{Index: 1, Offset: -1.5, ShowTrain: true, Direction: core.South}, slot)

	for _, p := range s.Positions() {
		assert.Equal(t, InstallPosition, p)
	}
	assert.Equal(t, DefaultTranslate, s.Translate)
	assert.Equal(t, Running, s.Mode)
	assert.True(t, s.Lighting)
}

func TestState_SlotBounds(t *testing.T) {
	s := NewState(DefaultLayout())

	_, err := s.Slot(2)
	assert.ErrorIs(t, err, ErrNoSlot)
	_, err = s.Position(-1)
	assert.ErrorIs(t, err, ErrNoSlot)
	assert.ErrorIs(t, s.SetPosition(5, core.Vector3{}), ErrNoSlot)
}

func TestState_MoveTrains(t *testing.T) {
	s := NewState(DefaultLayout())
	s.MoveTrains(func(slot core.TrackSlot, p core.Vector3) core.Vector3 {
		p.Z += float32(slot.Index + 1)
		return p
	})

	pos := s.Positions()
	assert.Equal(t, InstallPosition.Z+1, pos[0].Z)
	assert.Equal(t, InstallPosition.Z+2, pos[1].Z)
	assert.Equal(t, InstallPosition.X, pos[1].X)
}

func TestState_ResetIsIdempotent(t *testing.T) {
	s := NewState(DefaultLayout())
	s.Translate = core.Vector3{X: 4, Y: 5, Z: 6}
	s.TrackRotation = core.Vector3{X: 10, Y: 20, Z: 30}
	s.WorldRotation.Y = -720
	require.NoError(t, s.SetPosition(0, core.Vector3{X: 1, Y: 2, Z: 999}))

	s.Reset()
	first := *s
	firstPositions := s.Positions()
	s.Reset()

	assert.Equal(t, core.Vector3{}, s.TrackRotation)
	assert.Equal(t, core.Vector3{}, s.WorldRotation)
	assert.Equal(t, DefaultTranslate, s.Translate)
	for _, p := range s.Positions() {
		assert.Equal(t, ResetPosition, p)
	}
	assert.Equal(t, first.Translate, s.Translate)
	assert.Equal(t, firstPositions, s.Positions())
}

func TestState_CycleControlledVisitsEverySlot(t *testing.T) {
	layout := DefaultLayout()
	layout.Tracks = append(layout.Tracks, TrackPlacement{Offset: 4.5})
	s := NewState(layout)

	seen := map[int]int{s.Controlled(): 1}
	for i := 1; i < s.TrackCount(); i++ {
		seen[s.CycleControlled()]++
	}
	assert.Len(t, seen, 3)
	for idx, n := range seen {
		assert.Equal(t, 1, n, "index %d", idx)
	}
	assert.Equal(t, 0, s.CycleControlled(), "wraps after the last slot")
}

func TestState_CycleControlledSingleSlot(t *testing.T) {
	s := NewState(Layout{Tracks: []TrackPlacement{{Offset: 0}}})
	assert.Equal(t, 0, s.CycleControlled())
	assert.Equal(t, 0, s.CycleControlled())
}

func TestState_TogglePause(t *testing.T) {
	s := NewState(DefaultLayout())
	assert.Equal(t, Paused, s.TogglePause())
	assert.Equal(t, Running, s.TogglePause())
}
