package sqlitestorage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/database"
	"github.com/interborough/transit/internal/model"
	"github.com/interborough/transit/internal/model/convert"
	"github.com/interborough/transit/pkg/core"
)

func newTestBackend(t *testing.T, dump time.Duration) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := New(Config{
		Path:         filepath.Join(dir, "live.db"),
		OutputDir:    filepath.Join(dir, "out"),
		DumpInterval: dump,
	}, convert.New(nil, 100), nil)
	require.NoError(t, err)
	return b, dir
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.SQLiteConfig{OutputDir: "rec", DumpInterval: time.Minute}, 50)
	assert.Equal(t, Config{OutputDir: "rec", DumpInterval: time.Minute, QueueLimit: 50}, cfg)
}

func TestEndSession_DumpsToOutputDir(t *testing.T) {
	b, dir := newTestBackend(t, 0)
	require.NoError(t, b.Init())
	defer b.Close()

	s := &core.Session{
		Name:      "demo",
		StartTime: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
		Tag:       "Demo",
		Tracks:    []core.TrackSlot{{Index: 0, Offset: 1.5, ShowTrain: true}},
	}
	require.NoError(t, b.StartSession(s))
	require.NoError(t, b.RecordTrainState(&core.TrainState{Track: 0, Tick: 30}))
	require.NoError(t, b.EndSession())

	path := b.GetExportedFilePath()
	assert.Equal(t, filepath.Join(dir, "out", "demo_20260506_070809.db"), path)
	_, err := os.Stat(path)
	require.NoError(t, err)

	dump, err := database.OpenSQLite(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, dump.Model(&model.TrainState{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	meta := b.GetExportMetadata()
	assert.Equal(t, "demo", meta.SessionName)
	assert.Equal(t, "Demo", meta.Tag)
}

func TestDumpLoop(t *testing.T) {
	b, _ := newTestBackend(t, 10*time.Millisecond)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSession(&core.Session{Name: "loop", StartTime: time.Now()}))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(b.GetExportedFilePath())
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDump_NoSession(t *testing.T) {
	b, _ := newTestBackend(t, 0)
	require.NoError(t, b.Init())
	defer b.Close()

	assert.NoError(t, b.Dump())
	assert.Empty(t, b.GetExportedFilePath())
}
