// Package influxstorage implements the storage.Backend interface by
// writing every sample as an InfluxDB point.
package influxstorage

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/internal/influx"
)

// Backend writes train samples and key presses to InfluxDB.
type Backend struct {
	manager *influx.Manager
	proj    *geo.Projector

	ids     atomic.Uint64
	mu      sync.RWMutex
	session string
	id      uint
}

// New wraps manager. proj may be nil.
func New(manager *influx.Manager, proj *geo.Projector) *Backend {
	return &Backend{manager: manager, proj: proj}
}

// Init connects to the server, or opens the backup file.
func (b *Backend) Init() error {
	return b.manager.Connect(context.Background())
}

// Close flushes and releases the manager.
func (b *Backend) Close() error {
	return b.manager.Close()
}

var errNoSession = errors.New("no session started")
