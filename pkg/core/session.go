// pkg/core/session.go
package core

import "time"

// Session is one run of the program that is being recorded.
type Session struct {
	ID         uint
	Name       string
	StartTime  time.Time
	TickPeriod time.Duration
	Tracks     []TrackSlot
	Origin     GeoOrigin
	AppVersion string
	Tag        string
	// Settings is a free-form snapshot of the run configuration.
	Settings map[string]any
}

// GeoOrigin anchors scene coordinates to a place on the globe.
type GeoOrigin struct {
	Longitude float64
	Latitude  float64
}

// TrainState is a sampled train position.
type TrainState struct {
	SessionID uint
	Track     int
	Direction Direction
	Tick      uint64
	Time      time.Time
	Position  Vector3
	Paused    bool
}

// KeyEvent is a key press as seen by the input controller.
type KeyEvent struct {
	SessionID uint
	Key       string
	Handled   bool
	Tick      uint64
	Time      time.Time
	// Controlled is the controlled track after the key was applied.
	Controlled int
}

// FrameStats summarizes the geometry emitted for one frame.
type FrameStats struct {
	Frame    uint64
	Vertices int
	Quads    int
	Lights   int
	Duration time.Duration
}

// UploadMetadata describes a finished recording for the web frontend.
type UploadMetadata struct {
	SessionName string
	Duration    float64
	Tag         string
}
