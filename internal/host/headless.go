package host

import (
	"context"
	"sync"
	"time"
)

// VirtualClock is a manually advanced clock.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock starts the clock at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// HeadlessHost runs the callbacks without a window. Instead of sleeping it
// advances Clock to the next timer deadline, so Frames frames are produced as
// fast as they can be composed. Give the animation loop Clock.Now.
type HeadlessHost struct {
	cfg    Config
	Frames int
	Clock  *VirtualClock
	// Keys are delivered one per frame, in order, before the frame is displayed.
	Keys []rune

	dirty     bool
	displayed int
}

// NewHeadless creates a host that displays frames frames and returns.
func NewHeadless(cfg Config, frames int) *HeadlessHost {
	return &HeadlessHost{
		cfg:    cfg,
		Frames: frames,
		Clock:  NewVirtualClock(time.Unix(0, 0).UTC()),
	}
}

func (h *HeadlessHost) Redraw() {
	h.dirty = true
}

// Displayed returns how many frames were displayed.
func (h *HeadlessHost) Displayed() int {
	return h.displayed
}

func (h *HeadlessHost) Run(ctx context.Context, cb Callbacks) error {
	if err := cb.Start(); err != nil {
		return err
	}
	defer cb.Stop()

	cb.Reshape(h.cfg.Width, h.cfg.Height)
	keys := h.Keys

	for h.displayed < h.Frames {
		if ctx.Err() != nil {
			return nil
		}
		wait := cb.Timer()
		if len(keys) > 0 {
			cb.Key(keys[0])
			keys = keys[1:]
		}
		if h.dirty {
			h.dirty = false
			cb.Display()
			h.displayed++
			continue
		}
		if wait <= 0 {
			wait = time.Millisecond
		}
		h.Clock.Advance(wait)
	}
	return nil
}
