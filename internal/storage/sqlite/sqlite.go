// Package sqlitestorage implements the storage.Backend interface using an
// in-memory SQLite database with periodic disk dumps via VACUUM INTO. It
// wraps the GORM backend; the only SQLite-specific concerns are creating
// the database and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/database"
	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/model/convert"
	gormstorage "github.com/interborough/transit/internal/storage/gorm"
	"github.com/interborough/transit/pkg/core"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	// Path of the live database; empty means in memory.
	Path         string
	DumpInterval time.Duration
	OutputDir    string
	QueueLimit   int
}

// FromConfig maps the storage.sqlite section.
func FromConfig(cfg config.SQLiteConfig, queueLimit int) Config {
	return Config{DumpInterval: cfg.DumpInterval, OutputDir: cfg.OutputDir, QueueLimit: queueLimit}
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	dumpPath string
	session  core.Session
}

// New creates a new SQLite storage backend.
func New(cfg Config, conv *convert.Converter, logManager *logging.SlogManager) (*Backend, error) {
	db, err := database.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			LogManager: logManager,
			Converter:  conv,
			QueueLimit: cfg.QueueLimit,
		}),
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.OutputDir != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}
	return nil
}

// Close stops the dump goroutine and closes the embedded GORM backend.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stopChan) })
	b.wg.Wait()
	return b.Backend.Close()
}

// StartSession records the session and picks its dump file.
func (b *Backend) StartSession(s *core.Session) error {
	if err := b.Backend.StartSession(s); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = *s
	if b.cfg.OutputDir != "" {
		name := fmt.Sprintf("%s_%s.db", s.Name, s.StartTime.Format("20060102_150405"))
		b.dumpPath = filepath.Join(b.cfg.OutputDir, name)
	}
	return nil
}

// EndSession flushes the session and writes a final dump.
func (b *Backend) EndSession() error {
	if err := b.Backend.EndSession(); err != nil {
		return err
	}
	return b.Dump()
}

// Dump snapshots the database to the session's dump file.
func (b *Backend) Dump() error {
	b.mu.Lock()
	path := b.dumpPath
	b.mu.Unlock()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return database.DumpMemoryToDisk(b.db, path)
}

// GetExportedFilePath returns the last dump path.
func (b *Backend) GetExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dumpPath
}

// GetExportMetadata describes the dumped session.
func (b *Backend) GetExportMetadata() core.UploadMetadata {
	b.mu.Lock()
	defer b.mu.Unlock()
	return core.UploadMetadata{
		SessionName: b.session.Name,
		Tag:         b.session.Tag,
		Duration:    time.Since(b.session.StartTime).Seconds(),
	}
}

// dumpLoop periodically dumps the database to disk. VACUUM INTO creates
// a point-in-time snapshot, so writes keep going during a dump.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Dump(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
