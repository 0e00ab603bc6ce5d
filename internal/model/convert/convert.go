// Package convert moves values between the core types and the gorm schema.
package convert

import (
	"encoding/json"
	"time"

	"github.com/interborough/transit/internal/model"
	"github.com/interborough/transit/pkg/core"
)

func parseDirection(s string) core.Direction {
	d, _ := core.ParseDirection(s)
	return d
}

// SessionToCore converts a gorm Session, tracks included.
func SessionToCore(s model.Session) core.Session {
	var settings map[string]any
	if len(s.Settings) > 0 {
		_ = json.Unmarshal(s.Settings, &settings)
	}
	if len(settings) == 0 {
		settings = nil
	}

	out := core.Session{
		ID:         s.ID,
		Name:       s.Name,
		StartTime:  s.StartTime,
		TickPeriod: time.Duration(s.TickPeriodMs) * time.Millisecond,
		Origin:     core.GeoOrigin{Longitude: s.Longitude, Latitude: s.Latitude},
		AppVersion: s.AppVersion,
		Tag:        s.Tag,
		Settings:   settings,
	}
	for _, t := range s.Tracks {
		out.Tracks = append(out.Tracks, TrackToCore(t))
	}
	return out
}

// TrackToCore converts a gorm Track.
func TrackToCore(t model.Track) core.TrackSlot {
	return core.TrackSlot{
		Index:     t.TrackIndex,
		Offset:    t.Offset,
		ShowTrain: t.ShowTrain,
		Direction: parseDirection(t.Direction),
	}
}

// TrainStateToCore converts a gorm TrainState. The scene position comes
// from the X/Y/Z columns, not the projected point.
func TrainStateToCore(s model.TrainState) core.TrainState {
	return core.TrainState{
		SessionID: s.SessionID,
		Track:     s.TrackIndex,
		Direction: parseDirection(s.Direction),
		Tick:      s.Tick,
		Time:      s.Time,
		Position:  core.Vector3{X: s.X, Y: s.Y, Z: s.Z},
		Paused:    s.Paused,
	}
}

// KeyEventToCore converts a gorm KeyEvent.
func KeyEventToCore(e model.KeyEvent) core.KeyEvent {
	return core.KeyEvent{
		SessionID:  e.SessionID,
		Key:        e.Key,
		Handled:    e.Handled,
		Tick:       e.Tick,
		Time:       e.Time,
		Controlled: e.Controlled,
	}
}
