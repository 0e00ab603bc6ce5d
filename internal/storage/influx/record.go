package influxstorage

import (
	"errors"

	"github.com/interborough/transit/internal/influx"
	"github.com/interborough/transit/pkg/core"
)

// StartSession assigns an ID and tags subsequent points with the session name.
func (b *Backend) StartSession(s *core.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	s.ID = uint(b.ids.Add(1))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = s.Name
	b.id = s.ID
	return nil
}

// EndSession stops tagging points with the session.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = ""
	b.id = 0
	return nil
}

func (b *Backend) current() (string, uint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.id == 0 {
		return "", 0, errNoSession
	}
	return b.session, b.id, nil
}

// RecordTrainState writes a train_state point.
func (b *Backend) RecordTrainState(s *core.TrainState) error {
	name, id, err := b.current()
	if err != nil {
		return err
	}
	s.SessionID = id

	var lon, lat float64
	if b.proj != nil {
		lon, lat = b.proj.LonLat(s.Position)
	}
	return b.manager.WritePoint(influx.TrainStatePoint(name, *s, lon, lat, b.proj != nil))
}

// RecordKeyEvent writes a key_event point.
func (b *Backend) RecordKeyEvent(e *core.KeyEvent) error {
	name, id, err := b.current()
	if err != nil {
		return err
	}
	e.SessionID = id
	return b.manager.WritePoint(influx.KeyEventPoint(name, *e))
}
