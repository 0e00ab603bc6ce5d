// Package streaming defines the JSON envelopes a live session is
// streamed in over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/interborough/transit/pkg/core"
)

// Message types.
const (
	TypeStartSession = "start_session"
	TypeEndSession   = "end_session"
	TypeTrainState   = "train_state"
	TypeKeyEvent     = "key_event"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSessionPayload announces a session and its tracks.
type StartSessionPayload struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	Tag          string           `json:"tag,omitempty"`
	StartTime    int64            `json:"startTime"` // unix milliseconds
	TickPeriodMs int64            `json:"tickPeriodMs"`
	Origin       [2]float64       `json:"origin"`
	Tracks       []core.TrackSlot `json:"tracks"`
}

// TrainStatePayload is one train sample.
type TrainStatePayload struct {
	Track     int        `json:"track"`
	Direction string     `json:"direction"`
	Tick      uint64     `json:"tick"`
	Position  [3]float32 `json:"position"`
	Paused    bool       `json:"paused"`
	Lon       float64    `json:"lon,omitempty"`
	Lat       float64    `json:"lat,omitempty"`
}

// KeyEventPayload is one key press.
type KeyEventPayload struct {
	Key        string `json:"key"`
	Handled    bool   `json:"handled"`
	Tick       uint64 `json:"tick"`
	Controlled int    `json:"controlled"`
}

// NewStartSession builds the start payload for s.
func NewStartSession(s *core.Session) StartSessionPayload {
	return StartSessionPayload{
		ID:           s.ID,
		Name:         s.Name,
		Tag:          s.Tag,
		StartTime:    s.StartTime.UnixMilli(),
		TickPeriodMs: s.TickPeriod.Milliseconds(),
		Origin:       [2]float64{s.Origin.Longitude, s.Origin.Latitude},
		Tracks:       s.Tracks,
	}
}

// NewTrainState builds the payload for a train sample.
func NewTrainState(s *core.TrainState) TrainStatePayload {
	return TrainStatePayload{
		Track:     s.Track,
		Direction: s.Direction.String(),
		Tick:      s.Tick,
		Position:  [3]float32{s.Position.X, s.Position.Y, s.Position.Z},
		Paused:    s.Paused,
	}
}

// NewKeyEvent builds the payload for a key press.
func NewKeyEvent(e *core.KeyEvent) KeyEventPayload {
	return KeyEventPayload{Key: e.Key, Handled: e.Handled, Tick: e.Tick, Controlled: e.Controlled}
}
