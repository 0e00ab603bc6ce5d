// Package host runs the window and event system. A host delivers reshape,
// display, key and timer callbacks strictly one after another on the thread
// that called Run, which must be locked to its OS thread.
package host

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultTitle is the window title.
const DefaultTitle = "Interborough Rapid Transit"

// Callbacks receives window events.
type Callbacks interface {
	// Start runs once the rendering context is current.
	Start() error
	Reshape(width, height int)
	Display()
	Key(key rune)
	// Timer fires the animation timer if it is due and returns how long the
	// host may wait for events before calling it again.
	Timer() time.Duration
	// Stop runs once on the way out, after the last Display.
	Stop()
}

// Host is a window/event system.
type Host interface {
	Run(ctx context.Context, cb Callbacks) error
	// Redraw asks for a Display before the host next waits for events.
	Redraw()
}

// Config sizes the window.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig is a 480x320 window.
func DefaultConfig() Config {
	return Config{Width: 480, Height: 320, Title: DefaultTitle}
}

// Kind selects a host implementation.
type Kind string

const (
	GLFW     Kind = "glfw"
	SDL      Kind = "sdl"
	Headless Kind = "headless"
)

// ParseKind validates a host name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return GLFW, nil
	case GLFW, SDL, Headless:
		return k, nil
	default:
		return "", fmt.Errorf("unknown host: %q", s)
	}
}

// maxWait bounds event waits so cancellation is noticed.
const maxWait = 250 * time.Millisecond

func clampWait(d time.Duration) time.Duration {
	if d > maxWait {
		return maxWait
	}
	if d < 0 {
		return 0
	}
	return d
}
