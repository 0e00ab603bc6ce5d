package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/pkg/core"
)

func testSession() *core.Session {
	return &core.Session{
		Name:       "rush hour",
		StartTime:  time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC),
		TickPeriod: 33 * time.Millisecond,
		Tag:        "Demo",
		Tracks: []core.TrackSlot{
			{Index: 1, Offset: -1.5, ShowTrain: true, Direction: core.South},
			{Index: 0, Offset: 1.5, ShowTrain: true, Direction: core.North},
		},
	}
}

func TestStartSession_AssignsIDs(t *testing.T) {
	b := New(config.MemoryConfig{}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	s1 := testSession()
	require.NoError(t, b.StartSession(s1))
	assert.Equal(t, uint(1), s1.ID)

	s2 := testSession()
	require.NoError(t, b.StartSession(s2))
	assert.Equal(t, uint(2), s2.ID)
}

func TestStartSession_Nil(t *testing.T) {
	b := New(config.MemoryConfig{}, nil)
	assert.Error(t, b.StartSession(nil))
}

func TestRecord_WithoutSession(t *testing.T) {
	b := New(config.MemoryConfig{}, nil)

	assert.ErrorIs(t, b.RecordTrainState(&core.TrainState{}), ErrNoSession)
	assert.ErrorIs(t, b.RecordKeyEvent(&core.KeyEvent{}), ErrNoSession)
	assert.ErrorIs(t, b.EndSession(), ErrNoSession)
}

func TestRecordTrainState(t *testing.T) {
	b := New(config.MemoryConfig{}, nil)
	require.NoError(t, b.StartSession(testSession()))

	s := &core.TrainState{Track: 0, Tick: 30, Position: core.Vector3{X: 1.5, Z: 6}}
	require.NoError(t, b.RecordTrainState(s))
	assert.Equal(t, uint(1), s.SessionID)

	rec, ok := b.Train(0)
	require.True(t, ok)
	require.Len(t, rec.States, 1)
	assert.Equal(t, float32(6), rec.States[0].Position.Z)

	assert.Error(t, b.RecordTrainState(&core.TrainState{Track: 5}))
}

func TestRecordKeyEvent(t *testing.T) {
	b := New(config.MemoryConfig{}, nil)
	require.NoError(t, b.StartSession(testSession()))

	require.NoError(t, b.RecordKeyEvent(&core.KeyEvent{Key: "t", Handled: true, Tick: 3, Controlled: 1}))
	events := b.KeyEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "t", events[0].Key)
	assert.Equal(t, uint(1), events[0].SessionID)
}

func TestEndSession_WritesPlainJSON(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir}, nil)
	require.NoError(t, b.StartSession(testSession()))

	require.NoError(t, b.RecordTrainState(&core.TrainState{Track: 1, Tick: 60, Position: core.Vector3{X: -1.5, Z: 1}}))
	require.NoError(t, b.RecordTrainState(&core.TrainState{Track: 0, Tick: 60, Position: core.Vector3{X: 1.5, Z: 5}, Paused: true}))
	require.NoError(t, b.RecordKeyEvent(&core.KeyEvent{Key: "p", Handled: true, Tick: 61}))
	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "rush_hour_20260304_083000.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export SessionExport
	require.NoError(t, json.Unmarshal(data, &export))

	assert.Equal(t, "rush hour", export.SessionName)
	assert.Equal(t, uint64(61), export.EndTick)
	assert.Equal(t, int64(33), export.TickPeriodMs)
	require.Len(t, export.Tracks, 2)
	assert.Equal(t, 0, export.Tracks[0].Index)
	assert.Equal(t, "south", export.Tracks[1].Direction)
	require.Len(t, export.Tracks[0].Positions, 1)
	assert.Len(t, export.Tracks[0].Positions[0], 5)
	assert.Equal(t, float64(1), export.Tracks[0].Positions[0][4])
	require.Len(t, export.Keys, 1)
	assert.Equal(t, "p", export.Keys[0][1])

	meta := b.GetExportMetadata()
	assert.Equal(t, "rush hour", meta.SessionName)
	assert.Equal(t, "Demo", meta.Tag)
	assert.InDelta(t, 61*0.033, meta.Duration, 1e-9)
}

func TestEndSession_GzipWithProjection(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	proj, err := geo.NewProjector(core.GeoOrigin{Longitude: -73.9866, Latitude: 40.7559}, 1)
	require.NoError(t, err)

	b := New(config.MemoryConfig{OutputDir: dir, CompressOutput: true}, proj)
	require.NoError(t, b.StartSession(testSession()))
	require.NoError(t, b.RecordTrainState(&core.TrainState{Track: 0, Tick: 1}))
	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	assert.True(t, strings.HasSuffix(path, ".json.gz"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)

	var export SessionExport
	require.NoError(t, json.NewDecoder(gz).Decode(&export))
	row := export.Tracks[0].Positions[0]
	require.Len(t, row, 7)
	assert.InDelta(t, -73.9866, row[5], 1e-6)
	assert.InDelta(t, 40.7559, row[6], 1e-6)
}

func TestEndSession_ClearsSession(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()}, nil)
	require.NoError(t, b.StartSession(testSession()))
	require.NoError(t, b.EndSession())

	assert.ErrorIs(t, b.RecordKeyEvent(&core.KeyEvent{}), ErrNoSession)
}
