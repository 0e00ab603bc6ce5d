// Package session tracks the recording session that is currently open.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/interborough/transit/pkg/core"
)

// Context holds the current session. Readers on any goroutine see a
// consistent copy.
type Context struct {
	mu      sync.RWMutex
	session core.Session
	open    bool
	ended   time.Time
}

// NewContext creates a context with no open session.
func NewContext() *Context {
	return &Context{session: core.Session{Name: "No session"}}
}

// Get returns the current session and whether one is open.
func (c *Context) Get() (core.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.open
}

// Open makes s the current session.
func (c *Context) Open(s core.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
	c.open = true
	c.ended = time.Time{}
}

// SetID records the id a backend assigned to the current session.
func (c *Context) SetID(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.ID = id
}

// Close marks the session finished at end and returns its duration.
func (c *Context) Close(end time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.ended = end
	return end.Sub(c.session.StartTime)
}

// Attrs is a logging.ContextProvider: it tags records with the open session.
func (c *Context) Attrs() []slog.Attr {
	s, open := c.Get()
	if !open {
		return nil
	}
	return []slog.Attr{slog.String("session", s.Name), slog.Uint64("sessionId", uint64(s.ID))}
}
