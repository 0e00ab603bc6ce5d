package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/session"
	"github.com/interborough/transit/pkg/core"
)

func TestGetStatus(t *testing.T) {
	var ticks atomic.Uint64
	sess := session.NewContext()
	sess.Open(core.Session{Name: "demo"})
	sess.SetID(3)

	s := NewService(Dependencies{
		Session: sess,
		Counters: Counters{
			Ticks:   ticks.Load,
			Frames:  func() uint64 { return 7 },
			Pending: func() int { return 2 },
		},
	})

	t0 := time.Unix(100, 0)
	ticks.Store(30)
	st := s.GetStatus(t0)
	assert.Equal(t, "demo", st.Session)
	assert.Equal(t, uint(3), st.SessionID)
	assert.Equal(t, uint64(30), st.Ticks)
	assert.Equal(t, uint64(7), st.Frames)
	assert.Equal(t, 2, st.Pending)
	assert.Zero(t, st.Dropped)
	assert.Zero(t, st.TicksPerSecond)

	ticks.Store(90)
	st = s.GetStatus(t0.Add(2 * time.Second))
	assert.InDelta(t, 30, st.TicksPerSecond, 1e-9)
}

func TestGetStatus_NoSession(t *testing.T) {
	s := NewService(Dependencies{})
	st := s.GetStatus(time.Now())
	assert.Empty(t, st.Session)
	assert.Zero(t, st.Ticks)
}

func TestReport_WritesStatusFile(t *testing.T) {
	dir := t.TempDir()
	s := NewService(Dependencies{StatusDir: dir})

	require.NoError(t, s.Report(Status{Session: "demo", Ticks: 5}))

	data, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "demo", st.Session)
	assert.Equal(t, uint64(5), st.Ticks)
}

func TestStartStop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "status")
	s := NewService(Dependencies{
		StatusDir: dir,
		Interval:  5 * time.Millisecond,
		Counters:  Counters{Ticks: func() uint64 { return 1 }},
	})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	// second start is a no-op
	require.NoError(t, s.Start())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, StatusFileName))
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestStop_WritesFinalStatus(t *testing.T) {
	dir := t.TempDir()
	s := NewService(Dependencies{
		StatusDir: dir,
		Interval:  time.Hour,
		Counters:  Counters{Frames: func() uint64 { return 42 }},
	})
	require.NoError(t, s.Start())
	s.Stop()

	data, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, uint64(42), st.Frames)
}
