// Package gormstorage implements the storage.Backend interface on top of
// gorm, with internal queues drained by a background writer goroutine.
// The SQLite and Postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/interborough/transit/internal/database"
	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/model"
	"github.com/interborough/transit/internal/model/convert"
	"github.com/interborough/transit/internal/queue"
	"github.com/interborough/transit/pkg/core"
)

// DefaultFlushInterval is how often the writer drains the queues.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	// DB may be nil, in which case records are only queued.
	DB            *gorm.DB
	LogManager    *logging.SlogManager
	Converter     *convert.Converter
	FlushInterval time.Duration
	// QueueLimit bounds each queue; zero means unbounded.
	QueueLimit int
}

type queues struct {
	TrainStates *queue.Queue[model.TrainState]
	KeyEvents   *queue.Queue[model.KeyEvent]
}

func newQueues(limit int) *queues {
	return &queues{
		TrainStates: queue.NewBounded[model.TrainState](limit),
		KeyEvents:   queue.NewBounded[model.KeyEvent](limit),
	}
}

// Backend implements storage.Backend with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64
	stopChan  chan struct{}
	done      sync.WaitGroup
	writeMu   sync.Mutex
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates the queues, migrates the schema and starts the writer.
func (b *Backend) Init() error {
	b.queues = newQueues(b.deps.QueueLimit)
	b.stopChan = make(chan struct{})

	if b.deps.DB != nil {
		b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
		if err := database.Migrate(b.deps.DB); err != nil {
			return fmt.Errorf("failed to setup DB: %w", err)
		}
		b.deps.LogManager.WriteLog("setupDB", "Database setup complete", "INFO")
	}

	b.done.Add(1)
	go b.writerLoop()
	return nil
}

// Close stops the writer after a final flush.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	select {
	case <-b.stopChan:
		return nil
	default:
	}
	close(b.stopChan)
	b.done.Wait()
	return nil
}

// StartSession inserts the session row and its tracks.
func (b *Backend) StartSession(s *core.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	if b.deps.DB == nil {
		return nil
	}

	row := b.deps.Converter.SessionToGorm(*s)
	row.ID = 0
	if err := b.deps.DB.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert new session: %w", err)
	}

	s.ID = row.ID
	b.sessionID.Store(uint64(row.ID))
	b.deps.LogManager.WriteLog("StartSession", fmt.Sprintf("Session %d created", row.ID), "INFO")
	return nil
}

// EndSession flushes pending rows and stamps the end time.
func (b *Backend) EndSession() error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return nil
	}
	b.Flush()

	if b.deps.DB == nil {
		return nil
	}
	now := time.Now()
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Update("end_time", now).Error
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	b.sessionID.Store(0)
	return nil
}

// RecordTrainState converts and queues a train sample.
func (b *Backend) RecordTrainState(s *core.TrainState) error {
	row := b.deps.Converter.TrainStateToGorm(*s)
	if b.queues.TrainStates.Push(row) == 0 {
		return errors.New("train state queue full")
	}
	return nil
}

// RecordKeyEvent converts and queues a key press.
func (b *Backend) RecordKeyEvent(e *core.KeyEvent) error {
	row := convert.KeyEventToGorm(*e)
	if b.queues.KeyEvents.Push(row) == 0 {
		return errors.New("key event queue full")
	}
	return nil
}

// Pending returns the number of queued rows.
func (b *Backend) Pending() int {
	return b.queues.TrainStates.Len() + b.queues.KeyEvents.Len()
}

// Flush writes everything queued so far.
func (b *Backend) Flush() {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if b.deps.DB == nil {
		return
	}
	log := b.deps.LogManager.WriteLog
	sessionID := uint(b.sessionID.Load())

	writeQueue(b.deps.DB, b.queues.TrainStates, "train states", log, func(items []model.TrainState) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})
	writeQueue(b.deps.DB, b.queues.KeyEvents, "key events", log, func(items []model.KeyEvent) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	})
}

// writeQueue writes all items from a queue in a transaction. Failed
// batches are pushed back for the next cycle.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string), prepare func([]T)) {
	if q.Empty() {
		return
	}

	items := q.GetAndEmpty()
	if prepare != nil {
		prepare(items)
	}
	tx := db.Begin()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Push(items...)
		return
	}
	// the outcome of a failed commit is unknown, so the batch is not retried
	if err := tx.Commit().Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error committing %d %s: %v", len(items), name, err), "ERROR")
	}
}

func (b *Backend) writerLoop() {
	defer b.done.Done()
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			b.Flush()
			return
		case <-ticker.C:
			if b.sessionID.Load() == 0 {
				continue
			}
			b.Flush()
		}
	}
}
