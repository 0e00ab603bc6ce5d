package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/dispatcher"
	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/scene"
	"github.com/interborough/transit/internal/session"
	"github.com/interborough/transit/internal/storage/memory"
	"github.com/interborough/transit/pkg/core"
)

type fakeUploader struct {
	path string
	meta core.UploadMetadata
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, path string, meta core.UploadMetadata) error {
	f.path = path
	f.meta = meta
	return f.err
}

type fixture struct {
	rec     *Recorder
	backend *memory.Backend
	state   *scene.State
	sess    *session.Context
	up      *fakeUploader
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)

	f := &fixture{
		backend: memory.New(config.MemoryConfig{OutputDir: t.TempDir()}, nil),
		state:   scene.NewState(scene.DefaultLayout()),
		sess:    session.NewContext(),
		up:      &fakeUploader{},
	}
	f.rec = New(cfg, f.backend, d, f.sess, f.state, f.up, nil)
	f.rec.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestStart_OpensSession(t *testing.T) {
	f := newFixture(t, Config{Name: "demo", Tag: "Demo"})
	require.NoError(t, f.rec.Start(33*time.Millisecond))

	s, open := f.sess.Get()
	require.True(t, open)
	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, uint(1), s.ID)
	assert.Len(t, s.Tracks, 2)
}

// refusingBackend accepts Init but never opens a session.
type refusingBackend struct {
	inited, closed bool
}

func (b *refusingBackend) Init() error                             { b.inited = true; return nil }
func (b *refusingBackend) Close() error                            { b.closed = true; return nil }
func (b *refusingBackend) StartSession(*core.Session) error        { return errors.New("database is locked") }
func (b *refusingBackend) EndSession() error                       { return nil }
func (b *refusingBackend) RecordTrainState(*core.TrainState) error { return nil }
func (b *refusingBackend) RecordKeyEvent(*core.KeyEvent) error     { return nil }

func TestStart_SessionFailureClosesBackend(t *testing.T) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	backend := &refusingBackend{}
	sess := session.NewContext()
	rec := New(Config{Name: "demo"}, backend, d, sess, scene.NewState(scene.DefaultLayout()), nil, nil)

	err = rec.Start(time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.True(t, backend.inited)
	assert.True(t, backend.closed)

	_, open := sess.Get()
	assert.False(t, open)
	assert.NoError(t, rec.Stop(context.Background()))
}

func TestOnTick_SamplesEveryN(t *testing.T) {
	f := newFixture(t, Config{Name: "demo", SampleEvery: 10})
	require.NoError(t, f.rec.Start(33*time.Millisecond))

	for tick := uint64(1); tick <= 25; tick++ {
		f.rec.OnTick(tick)
	}
	require.NoError(t, f.rec.Stop(context.Background()))

	north, ok := f.backend.Train(0)
	require.True(t, ok)
	require.Len(t, north.States, 2)
	assert.Equal(t, uint64(10), north.States[0].Tick)
	assert.Equal(t, uint64(20), north.States[1].Tick)
	assert.Equal(t, scene.InstallPosition, north.States[0].Position)

	south, ok := f.backend.Train(1)
	require.True(t, ok)
	require.Len(t, south.States, 2)
	assert.Equal(t, core.South, south.States[0].Direction)

	assert.Equal(t, uint64(4), f.rec.Written())
	assert.Zero(t, f.rec.Dropped())
}

func TestOnTick_RecordsPause(t *testing.T) {
	f := newFixture(t, Config{Name: "demo", SampleEvery: 1})
	require.NoError(t, f.rec.Start(time.Millisecond))

	f.state.TogglePause()
	f.rec.OnTick(1)
	require.NoError(t, f.rec.Stop(context.Background()))

	rec, _ := f.backend.Train(0)
	require.Len(t, rec.States, 1)
	assert.True(t, rec.States[0].Paused)
}

func TestOnTick_SkipsHiddenTrains(t *testing.T) {
	d, err := dispatcher.New(logging.NewDispatcherLogger(zerolog.Nop()))
	require.NoError(t, err)
	layout := scene.DefaultLayout()
	layout.Tracks[1].ShowTrain = false
	state := scene.NewState(layout)
	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()}, nil)

	rec := New(Config{SampleEvery: 1}, backend, d, session.NewContext(), state, nil, nil)
	require.NoError(t, rec.Start(time.Millisecond))
	rec.OnTick(1)
	require.NoError(t, rec.Stop(context.Background()))

	hidden, ok := backend.Train(1)
	require.True(t, ok)
	assert.Empty(t, hidden.States)
}

func TestBeforeStart_Ignored(t *testing.T) {
	f := newFixture(t, Config{SampleEvery: 1})
	f.rec.OnTick(1)
	f.rec.OnKey(core.KeyEvent{Key: "a"})

	assert.Zero(t, f.rec.Pending())
	assert.Zero(t, f.rec.Dropped())
	assert.NoError(t, f.rec.Stop(context.Background()))
}

func TestOnKey_RecordedAndUploaded(t *testing.T) {
	f := newFixture(t, Config{Name: "keys", Tag: "Demo"})
	require.NoError(t, f.rec.Start(33*time.Millisecond))

	f.rec.OnKey(core.KeyEvent{Key: "t", Handled: true, Tick: 3, Controlled: 1})
	require.NoError(t, f.rec.Stop(context.Background()))

	keys := f.backend.KeyEvents()
	require.Len(t, keys, 1)
	assert.Equal(t, "t", keys[0].Key)

	_, open := f.sess.Get()
	assert.False(t, open)

	assert.Equal(t, f.backend.GetExportedFilePath(), f.up.path)
	assert.NotEmpty(t, f.up.path)
	assert.Equal(t, "keys", f.up.meta.SessionName)
}

func TestStop_UploadError(t *testing.T) {
	f := newFixture(t, Config{Name: "demo"})
	f.up.err = errors.New("forbidden")
	require.NoError(t, f.rec.Start(time.Millisecond))

	err := f.rec.Stop(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")

	// stopping twice is a no-op
	assert.NoError(t, f.rec.Stop(context.Background()))
}

func TestDispatch_AfterStopDropped(t *testing.T) {
	f := newFixture(t, Config{Name: "demo", SampleEvery: 1})
	require.NoError(t, f.rec.Start(time.Millisecond))
	require.NoError(t, f.rec.Stop(context.Background()))

	f.rec.started.Store(true)
	f.rec.OnKey(core.KeyEvent{Key: "a"})
	assert.Equal(t, uint64(1), f.rec.Dropped())
}
