// Package recorder samples train positions and key presses into a
// storage backend. Samples are taken on the render thread and written
// from the dispatcher's buffered workers.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/interborough/transit/internal/dispatcher"
	"github.com/interborough/transit/internal/scene"
	"github.com/interborough/transit/internal/session"
	"github.com/interborough/transit/internal/storage"
	"github.com/interborough/transit/pkg/core"
)

// Dispatcher commands.
const (
	CommandTrain = "record:train"
	CommandKey   = "record:key"
)

// Defaults.
const (
	DefaultSampleEvery = 30
	DefaultBufferSize  = 10000
)

// Uploader sends a finished recording somewhere.
type Uploader interface {
	Upload(ctx context.Context, path string, meta core.UploadMetadata) error
}

// Config controls what is recorded.
type Config struct {
	Name        string
	Tag         string
	AppVersion  string
	Origin      core.GeoOrigin
	Settings    map[string]any
	SampleEvery int
	BufferSize  int
}

// Recorder owns one session on a backend.
type Recorder struct {
	cfg      Config
	backend  storage.Backend
	d        *dispatcher.Dispatcher
	sess     *session.Context
	state    *scene.State
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time

	started atomic.Bool
	dropped atomic.Uint64
	written atomic.Uint64
}

// New registers the record commands on d. uploader may be nil.
func New(cfg Config, backend storage.Backend, d *dispatcher.Dispatcher, sess *session.Context,
	state *scene.State, uploader Uploader, logger *slog.Logger) *Recorder {
	if cfg.SampleEvery <= 0 {
		cfg.SampleEvery = DefaultSampleEvery
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		cfg:      cfg,
		backend:  backend,
		d:        d,
		sess:     sess,
		state:    state,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
	}

	d.Register(CommandTrain, func(e dispatcher.Event) (any, error) {
		s, ok := e.Payload.(core.TrainState)
		if !ok {
			return nil, fmt.Errorf("unexpected payload %T", e.Payload)
		}
		return nil, r.write(r.backend.RecordTrainState(&s))
	}, dispatcher.Buffered(cfg.BufferSize))

	d.Register(CommandKey, func(e dispatcher.Event) (any, error) {
		k, ok := e.Payload.(core.KeyEvent)
		if !ok {
			return nil, fmt.Errorf("unexpected payload %T", e.Payload)
		}
		return nil, r.write(r.backend.RecordKeyEvent(&k))
	}, dispatcher.Buffered(cfg.BufferSize))

	return r
}

func (r *Recorder) write(err error) error {
	if err == nil {
		r.written.Add(1)
	}
	return err
}

// Start initializes the backend and opens the session. The backend is
// closed again when the session cannot be opened.
func (r *Recorder) Start(period time.Duration) error {
	if err := r.backend.Init(); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	s := core.Session{
		Name:       r.cfg.Name,
		StartTime:  r.now(),
		TickPeriod: period,
		Tracks:     r.state.Slots(),
		Origin:     r.cfg.Origin,
		AppVersion: r.cfg.AppVersion,
		Tag:        r.cfg.Tag,
		Settings:   r.cfg.Settings,
	}
	if err := r.backend.StartSession(&s); err != nil {
		err = fmt.Errorf("start session: %w", err)
		if cerr := r.backend.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close storage: %w", cerr))
		}
		return err
	}
	r.sess.Open(s)
	r.started.Store(true)
	r.logger.Info("Recording started", "session", s.Name, "sessionId", s.ID, "tracks", len(s.Tracks))
	return nil
}

// OnTick samples every train shown on the scene once per SampleEvery
// ticks. It is meant for animation.Loop.Observe.
func (r *Recorder) OnTick(tick uint64) {
	if !r.started.Load() || tick%uint64(r.cfg.SampleEvery) != 0 {
		return
	}
	now := r.now()
	paused := r.state.Mode == scene.Paused
	positions := r.state.Positions()

	for i, slot := range r.state.Slots() {
		if !slot.ShowTrain {
			continue
		}
		r.dispatch(CommandTrain, core.TrainState{
			Track:     slot.Index,
			Direction: slot.Direction,
			Tick:      tick,
			Time:      now,
			Position:  positions[i],
			Paused:    paused,
		}, now)
	}
}

// OnKey queues a key press.
func (r *Recorder) OnKey(e core.KeyEvent) {
	if !r.started.Load() {
		return
	}
	r.dispatch(CommandKey, e, e.Time)
}

func (r *Recorder) dispatch(cmd string, payload any, ts time.Time) {
	if _, err := r.d.Dispatch(dispatcher.Event{Command: cmd, Payload: payload, Timestamp: ts}); err != nil {
		r.dropped.Add(1)
	}
}

// Pending is the number of queued records. Safe from any goroutine.
func (r *Recorder) Pending() int {
	return r.d.QueueLen(CommandTrain) + r.d.QueueLen(CommandKey)
}

// Dropped counts records that could not be queued.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Written counts records the backend accepted.
func (r *Recorder) Written() uint64 {
	return r.written.Load()
}

// Stop closes the dispatcher so every queued record is written, ends the
// session, uploads it when the backend produced a file and closes the
// backend.
func (r *Recorder) Stop(ctx context.Context) error {
	if !r.started.Swap(false) {
		return nil
	}
	r.d.Close()

	var errs []error
	if err := r.backend.EndSession(); err != nil {
		errs = append(errs, fmt.Errorf("end session: %w", err))
	}
	duration := r.sess.Close(r.now())
	r.logger.Info("Recording stopped", "duration", duration, "written", r.Written(), "dropped", r.Dropped())

	if err := r.upload(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := r.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}

func (r *Recorder) upload(ctx context.Context) error {
	if r.uploader == nil {
		return nil
	}
	up, ok := r.backend.(storage.Uploadable)
	if !ok {
		r.logger.Debug("Storage backend does not produce uploadable files")
		return nil
	}
	path := up.GetExportedFilePath()
	if path == "" {
		return nil
	}
	if err := r.uploader.Upload(ctx, path, up.GetExportMetadata()); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	r.logger.Info("Recording uploaded", "path", path)
	return nil
}
