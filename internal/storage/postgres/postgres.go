// Package postgres implements the storage.Backend interface on a
// PostgreSQL server through the GORM backend.
package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/database"
	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/model/convert"
	gormstorage "github.com/interborough/transit/internal/storage/gorm"
)

// Opener connects to the server. Tests swap it out.
type Opener func(config.PostgresConfig) (*gorm.DB, error)

// Backend is the GORM backend bound to a Postgres connection made on Init.
type Backend struct {
	*gormstorage.Backend
	cfg        config.PostgresConfig
	open       Opener
	conv       *convert.Converter
	log        *logging.SlogManager
	queueLimit int
}

// New creates a Postgres backend; nothing connects until Init.
func New(cfg config.PostgresConfig, conv *convert.Converter, logManager *logging.SlogManager, queueLimit int) *Backend {
	return &Backend{
		cfg:        cfg,
		open:       database.OpenPostgres,
		conv:       conv,
		log:        logManager,
		queueLimit: queueLimit,
	}
}

// WithOpener replaces the connection function.
func (b *Backend) WithOpener(open Opener) *Backend {
	b.open = open
	return b
}

// Init connects, then initializes the embedded GORM backend.
func (b *Backend) Init() error {
	db, err := b.open(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         db,
		LogManager: b.log,
		Converter:  b.conv,
		QueueLimit: b.queueLimit,
	})
	return b.Backend.Init()
}

// Close closes the embedded backend if Init succeeded.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	return b.Backend.Close()
}
