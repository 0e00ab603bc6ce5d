// Package storage defines the recording backends a session is written to.
package storage

import "github.com/interborough/transit/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Record calls may come from several goroutines.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management (StartSession assigns s.ID)
	StartSession(s *core.Session) error
	EndSession() error

	// Recording
	RecordTrainState(s *core.TrainState) error
	RecordKeyEvent(e *core.KeyEvent) error
}

// Uploadable is an optional interface for storage backends that produce
// files suitable for upload to the web frontend.
type Uploadable interface {
	GetExportedFilePath() string
	GetExportMetadata() core.UploadMetadata
}
