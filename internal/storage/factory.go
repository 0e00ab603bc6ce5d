package storage

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/geo"
	"github.com/interborough/transit/internal/influx"
	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/model/convert"
	influxstorage "github.com/interborough/transit/internal/storage/influx"
	"github.com/interborough/transit/internal/storage/memory"
	"github.com/interborough/transit/internal/storage/postgres"
	sqlitestorage "github.com/interborough/transit/internal/storage/sqlite"
	"github.com/interborough/transit/internal/storage/websocket"
)

// Dependencies are shared by every backend the factory can build.
type Dependencies struct {
	// Projector anchors positions on the globe; nil disables geometry.
	Projector  *geo.Projector
	LogManager *logging.SlogManager
	Zerolog    zerolog.Logger
	QueueLimit int
	// Depth is the half length of the track lines stored with a session.
	Depth float32
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	conv := convert.New(deps.Projector, deps.Depth)

	switch cfg.Type {
	case "", "memory":
		return memory.New(cfg.Memory, deps.Projector), nil
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.FromConfig(cfg.SQLite, deps.QueueLimit), conv, deps.LogManager)
	case "postgres":
		return postgres.New(cfg.Postgres, conv, deps.LogManager, deps.QueueLimit), nil
	case "websocket":
		return websocket.New(websocket.Config{
			URL:       cfg.WebSocket.URL,
			AuthToken: cfg.WebSocket.AuthToken,
		}, deps.Projector, deps.LogManager.Logger()), nil
	case "influx":
		backup := filepath.Join(cfg.Memory.OutputDir, "influx_backup.log.gz")
		m := influx.NewManager(cfg.Influx, deps.Zerolog, backup)
		return influxstorage.New(m, deps.Projector), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
