// Package websocket implements the storage.Backend interface by streaming
// the session live to a web server. It does not implement
// storage.Uploadable.
package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/pkg/core"
	"github.com/interborough/transit/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL       string
	AuthToken string
}

// Backend streams session data over WebSocket.
type Backend struct {
	conn *connection
	cfg  Config
	proj *geo.Projector
	ids  atomic.Uint64
}

// New creates a new WebSocket storage backend. proj may be nil; logger
// defaults to slog.Default.
func New(cfg Config, proj *geo.Projector, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
		proj: proj,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.AuthToken)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	data, err := json.Marshal(streaming.Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartSession assigns an ID, announces the session and waits for the
// server's ack.
func (b *Backend) StartSession(s *core.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	s.ID = uint(b.ids.Add(1))

	data, err := marshalEnvelope(streaming.TypeStartSession, streaming.NewStartSession(s))
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.cachedStartMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartSession, ackTimeout)
}

// EndSession sends end_session and waits for the ack.
func (b *Backend) EndSession() error {
	data, err := marshalEnvelope(streaming.TypeEndSession, nil)
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeEndSession, ackTimeout)

	b.conn.mu.Lock()
	b.conn.cachedStartMsg = nil
	b.conn.mu.Unlock()
	return err
}

// RecordTrainState streams a train sample.
func (b *Backend) RecordTrainState(s *core.TrainState) error {
	p := streaming.NewTrainState(s)
	if b.proj != nil {
		p.Lon, p.Lat = b.proj.LonLat(s.Position)
	}
	return b.sendEnvelope(streaming.TypeTrainState, p)
}

// RecordKeyEvent streams a key press.
func (b *Backend) RecordKeyEvent(e *core.KeyEvent) error {
	return b.sendEnvelope(streaming.TypeKeyEvent, streaming.NewKeyEvent(e))
}
