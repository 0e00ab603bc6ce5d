// Package monitor periodically reports the recorder's progress to the log
// and to a status file.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/session"
)

// StatusFileName is written into Dependencies.StatusDir.
const StatusFileName = "status.json"

// Counters are read from the monitor goroutine, so every func must be
// safe to call concurrently with the render thread.
type Counters struct {
	Ticks   func() uint64
	Frames  func() uint64
	Pending func() int
	Dropped func() uint64
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager *logging.SlogManager
	Session    *session.Context
	Counters   Counters
	StatusDir  string
	Interval   time.Duration
}

// Status is one snapshot.
type Status struct {
	Time      time.Time `json:"time"`
	Session   string    `json:"session"`
	SessionID uint      `json:"sessionId"`
	Ticks     uint64    `json:"ticks"`
	Frames    uint64    `json:"frames"`
	Pending   int       `json:"pending"`
	Dropped   uint64    `json:"dropped"`
	// TicksPerSecond is measured over the last interval.
	TicksPerSecond float64 `json:"ticksPerSecond"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}

	lastTicks uint64
	lastTime  time.Time
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 10 * time.Second
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func read[T any](fn func() T) T {
	var zero T
	if fn == nil {
		return zero
	}
	return fn()
}

// GetStatus takes a snapshot. Only the monitor goroutine should call it
// while the service runs, since it tracks the tick rate.
func (s *Service) GetStatus(now time.Time) Status {
	c := s.deps.Counters
	st := Status{
		Time:    now,
		Ticks:   read(c.Ticks),
		Frames:  read(c.Frames),
		Pending: read(c.Pending),
		Dropped: read(c.Dropped),
	}
	if s.deps.Session != nil {
		if sess, ok := s.deps.Session.Get(); ok {
			st.Session = sess.Name
			st.SessionID = sess.ID
		}
	}

	if !s.lastTime.IsZero() && now.After(s.lastTime) && st.Ticks >= s.lastTicks {
		st.TicksPerSecond = float64(st.Ticks-s.lastTicks) / now.Sub(s.lastTime).Seconds()
	}
	s.lastTicks = st.Ticks
	s.lastTime = now
	return st
}

// Report logs st and rewrites the status file.
func (s *Service) Report(st Status) error {
	s.deps.LogManager.Logger().Info("status",
		"session", st.Session,
		"ticks", st.Ticks,
		"frames", st.Frames,
		"pending", st.Pending,
		"dropped", st.Dropped,
		"ticksPerSecond", st.TicksPerSecond,
	)

	if s.deps.StatusDir == "" {
		return nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	path := filepath.Join(s.deps.StatusDir, StatusFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.deps.StatusDir != "" {
		if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("create status dir: %w", err)
		}
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "interval", s.deps.Interval)

		for {
			select {
			case <-s.stopChan:
				if err := s.Report(s.GetStatus(time.Now())); err != nil {
					logger.Error("Error writing final status", "error", err)
				}
				return
			case now := <-ticker.C:
				if err := s.Report(s.GetStatus(now)); err != nil {
					logger.Error("Error writing status", "error", err)
				}
			}
		}
	}()
	return nil
}

// Stop reports one last status, then stops the monitor and waits for it
// to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
