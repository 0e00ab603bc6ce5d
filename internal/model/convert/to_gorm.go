package convert

import (
	"encoding/json"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/internal/model"
	"github.com/interborough/transit/pkg/core"
)

// Converter turns core values into gorm rows. The projector is optional;
// without one, geometry columns are left empty.
type Converter struct {
	proj  *geo.Projector
	depth float32
}

// New returns a converter projecting through proj. depth is the half
// length of the stored track lines.
func New(proj *geo.Projector, depth float32) *Converter {
	return &Converter{proj: proj, depth: depth}
}

func (c *Converter) point(v core.Vector3) geom.Point {
	if c == nil || c.proj == nil {
		return geom.NewEmptyPoint(geom.DimXYZ)
	}
	return c.proj.Point(v)
}

// SessionToGorm converts a core.Session. The returned Tracks carry no
// SessionID until the session row is created.
func (c *Converter) SessionToGorm(s core.Session) model.Session {
	settings := datatypes.JSON("{}")
	if len(s.Settings) > 0 {
		if b, err := json.Marshal(s.Settings); err == nil {
			settings = b
		}
	}

	out := model.Session{
		Name:         s.Name,
		StartTime:    s.StartTime,
		TickPeriodMs: s.TickPeriod.Milliseconds(),
		AppVersion:   s.AppVersion,
		Tag:          s.Tag,
		Longitude:    s.Origin.Longitude,
		Latitude:     s.Origin.Latitude,
		Origin:       geom.NewEmptyPoint(geom.DimXY),
		Settings:     settings,
	}
	out.ID = s.ID
	if pt, err := geo.Coords3857From4326(s.Origin.Longitude, s.Origin.Latitude); err == nil {
		out.Origin = pt
	}
	for _, slot := range s.Tracks {
		out.Tracks = append(out.Tracks, c.TrackToGorm(s.ID, slot))
	}
	return out
}

// TrackToGorm converts one track slot.
func (c *Converter) TrackToGorm(sessionID uint, slot core.TrackSlot) model.Track {
	t := model.Track{
		SessionID:  sessionID,
		TrackIndex: slot.Index,
		Offset:     slot.Offset,
		ShowTrain:  slot.ShowTrain,
		Direction:  slot.Direction.String(),
	}
	if c != nil && c.proj != nil {
		t.Line = c.proj.TrackLine(slot, c.depth)
	}
	return t
}

// TrainStateToGorm converts a sampled train position.
func (c *Converter) TrainStateToGorm(s core.TrainState) model.TrainState {
	return model.TrainState{
		Time:       s.Time,
		SessionID:  s.SessionID,
		TrackIndex: s.Track,
		Tick:       s.Tick,
		Direction:  s.Direction.String(),
		X:          s.Position.X,
		Y:          s.Position.Y,
		Z:          s.Position.Z,
		Position:   c.point(s.Position),
		Paused:     s.Paused,
	}
}

// KeyEventToGorm converts a key press.
func KeyEventToGorm(e core.KeyEvent) model.KeyEvent {
	return model.KeyEvent{
		Time:       e.Time,
		SessionID:  e.SessionID,
		Tick:       e.Tick,
		Key:        e.Key,
		Handled:    e.Handled,
		Controlled: e.Controlled,
	}
}
