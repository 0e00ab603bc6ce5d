// Package model holds the gorm schema shared by the SQL storage backends.
package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels lists every table, in migration order.
var DatabaseModels = []interface{}{
	&Session{},
	&Track{},
	&TrainState{},
	&KeyEvent{},
}

// Session is one recorded run.
type Session struct {
	gorm.Model
	Name         string     `json:"name" gorm:"size:127"`
	StartTime    time.Time  `json:"startTime" gorm:"index:idx_session_start"`
	EndTime      *time.Time `json:"endTime"`
	TickPeriodMs int64      `json:"tickPeriodMs"`
	AppVersion   string     `json:"appVersion" gorm:"size:64"`
	Tag          string     `json:"tag" gorm:"size:127"`
	// Origin is the scene origin in EPSG:3857.
	Origin    geom.Point     `json:"origin"`
	Longitude float64        `json:"longitude"`
	Latitude  float64        `json:"latitude"`
	Settings  datatypes.JSON `json:"settings"`
	Tracks    []Track        `json:"tracks"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Track is one installed slot of a session.
// Uses composite primary key (SessionID, TrackIndex).
type Track struct {
	SessionID  uint            `json:"sessionId" gorm:"primaryKey;autoIncrement:false"`
	Session    Session         `json:"-" gorm:"foreignkey:SessionID;constraint:OnDelete:CASCADE"`
	TrackIndex int             `json:"trackIndex" gorm:"primaryKey;autoIncrement:false"`
	Offset     float32         `json:"offset"`
	ShowTrain  bool            `json:"showTrain"`
	Direction  string          `json:"direction" gorm:"size:8"`
	Line       geom.LineString `json:"line"`
}

func (*Track) TableName() string {
	return "tracks"
}

// TrainState is one sampled train position.
type TrainState struct {
	ID         uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time  `json:"time" gorm:"index:idx_trainstate_time"`
	SessionID  uint       `json:"sessionId" gorm:"index:idx_trainstate_session_id"`
	Session    Session    `json:"-" gorm:"foreignkey:SessionID;constraint:OnDelete:CASCADE"`
	TrackIndex int        `json:"trackIndex" gorm:"index:idx_trainstate_track"`
	Tick       uint64     `json:"tick" gorm:"index:idx_trainstate_tick"`
	Direction  string     `json:"direction" gorm:"size:8"`
	X          float32    `json:"x"`
	Y          float32    `json:"y"`
	Z          float32    `json:"z"`
	Position   geom.Point `json:"position"`
	Paused     bool       `json:"paused"`
}

func (*TrainState) TableName() string {
	return "train_states"
}

// KeyEvent is one key press.
type KeyEvent struct {
	ID         uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time       time.Time `json:"time" gorm:"index:idx_keyevent_time"`
	SessionID  uint      `json:"sessionId" gorm:"index:idx_keyevent_session_id"`
	Session    Session   `json:"-" gorm:"foreignkey:SessionID;constraint:OnDelete:CASCADE"`
	Tick       uint64    `json:"tick"`
	Key        string    `json:"key" gorm:"size:8"`
	Handled    bool      `json:"handled"`
	Controlled int       `json:"controlled"`
}

func (*KeyEvent) TableName() string {
	return "key_events"
}
