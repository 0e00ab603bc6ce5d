// Package memory implements the storage.Backend interface by keeping the
// session in memory and exporting it as JSON when the session ends.
package memory

import (
	"errors"
	"sort"
	"sync"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/pkg/core"
)

// ErrNoSession is returned when recording outside a session.
var ErrNoSession = errors.New("no session started")

// TrainRecord groups a track slot with its sampled positions.
type TrainRecord struct {
	Slot   core.TrackSlot
	States []core.TrainState
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	proj    *geo.Projector
	session *core.Session

	trains    map[int]*TrainRecord // keyed by track index
	keyEvents []core.KeyEvent
	endTick   uint64

	idCounter      uint
	lastExportPath string
	lastExportMeta core.UploadMetadata
	mu             sync.RWMutex
}

// New creates a new memory backend. proj may be nil, in which case the
// export carries scene coordinates only.
func New(cfg config.MemoryConfig, proj *geo.Projector) *Backend {
	return &Backend{
		cfg:    cfg,
		proj:   proj,
		trains: make(map[int]*TrainRecord),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session and assigns its ID.
func (b *Backend) StartSession(s *core.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	s.ID = b.idCounter
	b.session = s

	b.trains = make(map[int]*TrainRecord, len(s.Tracks))
	for _, slot := range s.Tracks {
		b.trains[slot.Index] = &TrainRecord{Slot: slot}
	}
	b.keyEvents = nil
	b.endTick = 0
	return nil
}

// EndSession exports the session and forgets it.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	err := b.exportJSON()
	b.session = nil
	return err
}

// RecordTrainState appends a sample to its track. Samples for tracks
// that were not installed when the session started are rejected.
func (b *Backend) RecordTrainState(s *core.TrainState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	rec, ok := b.trains[s.Track]
	if !ok {
		return errors.New("unknown track")
	}
	s.SessionID = b.session.ID
	rec.States = append(rec.States, *s)
	if s.Tick > b.endTick {
		b.endTick = s.Tick
	}
	return nil
}

// RecordKeyEvent appends a key press.
func (b *Backend) RecordKeyEvent(e *core.KeyEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	e.SessionID = b.session.ID
	b.keyEvents = append(b.keyEvents, *e)
	if e.Tick > b.endTick {
		b.endTick = e.Tick
	}
	return nil
}

// Train returns a copy of the record for a track.
func (b *Backend) Train(track int) (TrainRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.trains[track]
	if !ok {
		return TrainRecord{}, false
	}
	out := TrainRecord{Slot: rec.Slot, States: make([]core.TrainState, len(rec.States))}
	copy(out.States, rec.States)
	return out, true
}

// KeyEvents returns the recorded key presses.
func (b *Backend) KeyEvents() []core.KeyEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.KeyEvent, len(b.keyEvents))
	copy(out, b.keyEvents)
	return out
}

// GetExportedFilePath returns the path of the last export.
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}

// GetExportMetadata describes the last export.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportMeta
}

func (b *Backend) sortedTracks() []*TrainRecord {
	out := make([]*TrainRecord, 0, len(b.trains))
	for _, rec := range b.trains {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot.Index < out[j].Slot.Index })
	return out
}
