// Package animation advances trains on a fixed timer. The loop is polled by
// the host's event loop, so ticks run on the render thread and never overlap
// with drawing or input.
package animation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/interborough/transit/internal/scene"
	"github.com/interborough/transit/pkg/core"
)

// Defaults.
const (
	DefaultFPS          = 30
	DefaultStep         = 0.1
	DefaultFrustumDepth = 1000.0
)

const deg2rad = 0.0174532925

// WrapMode decides what happens to a train that leaves the visible depth.
type WrapMode int

const (
	// WrapSymmetric sends trains leaving either end to the opposite end.
	WrapSymmetric WrapMode = iota
	// WrapForward only wraps trains leaving through +depth.
	WrapForward
)

// ParseWrapMode converts "symmetric" or "forward" to a WrapMode.
func ParseWrapMode(s string) (WrapMode, error) {
	switch strings.ToLower(s) {
	case "", "symmetric":
		return WrapSymmetric, nil
	case "forward":
		return WrapForward, nil
	default:
		return WrapSymmetric, fmt.Errorf("unknown wrap mode: %q", s)
	}
}

// Config holds loop settings.
type Config struct {
	FPS   float64
	Step  float32
	Depth float32
	Wrap  WrapMode
}

// DefaultConfig returns the compiled-in loop settings.
func DefaultConfig() Config {
	return Config{FPS: DefaultFPS, Step: DefaultStep, Depth: DefaultFrustumDepth}
}

// Period returns the tick interval, 1000/FPS milliseconds.
func (c Config) Period() time.Duration {
	fps := c.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(1000/fps) * time.Millisecond
}

// Advance moves p one step along a track yawed by yaw degrees. North trains
// move toward +Z when yaw is zero.
func Advance(p core.Vector3, dir core.Direction, yaw, step float32) core.Vector3 {
	delta := float64(step * dir.Sign())
	theta := deg2rad * float64(yaw)
	p.X -= float32(math.Sin(theta) * delta)
	p.Z += float32(math.Cos(theta) * delta)
	return p
}

// Wrap applies the wrap rule to a Z coordinate.
func Wrap(z, depth float32, mode WrapMode) float32 {
	switch {
	case z > depth:
		return -depth
	case z < -depth && mode == WrapSymmetric:
		return depth
	default:
		return z
	}
}

// Loop is the Running/Paused update loop.
type Loop struct {
	state  *scene.State
	cfg    Config
	period time.Duration
	redraw func()
	now    func() time.Time

	next      time.Time
	armed     bool
	ticks     uint64
	observers []func(tick uint64)

	tickCounter   metric.Int64Counter
	pausedCounter metric.Int64Counter
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) {
		l.now = now
	}
}

// New creates a loop over state. redraw is called after every tick.
func New(state *scene.State, cfg Config, redraw func(), opts ...Option) (*Loop, error) {
	if redraw == nil {
		redraw = func() {}
	}
	l := &Loop{
		state:  state,
		cfg:    cfg,
		period: cfg.Period(),
		redraw: redraw,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	m := meter()
	var err error
	l.tickCounter, err = m.Int64Counter(
		"animation.ticks",
		metric.WithDescription("Total timer ticks"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}
	l.pausedCounter, err = m.Int64Counter(
		"animation.ticks.paused",
		metric.WithDescription("Ticks that fired while paused"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating paused tick counter: %w", err)
	}
	return l, nil
}

// Period returns the tick interval.
func (l *Loop) Period() time.Duration {
	return l.period
}

// Ticks returns how many ticks have fired.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Observe registers fn to run after every tick, before the redraw request.
func (l *Loop) Observe(fn func(tick uint64)) {
	l.observers = append(l.observers, fn)
}

// Tick advances every train unless paused, then requests a redraw.
func (l *Loop) Tick() {
	l.ticks++
	l.tickCounter.Add(context.Background(), 1)

	if l.state.Mode == scene.Paused {
		l.pausedCounter.Add(context.Background(), 1)
	} else {
		yaw := l.state.TrackRotation.Y
		l.state.MoveTrains(func(slot core.TrackSlot, p core.Vector3) core.Vector3 {
			p = Advance(p, slot.Direction, yaw, l.cfg.Step)
			p.Z = Wrap(p.Z, l.cfg.Depth, l.cfg.Wrap)
			return p
		})
	}

	for _, fn := range l.observers {
		fn(l.ticks)
	}
	l.redraw()
}

// Start arms the timer one period from now.
func (l *Loop) Start() {
	l.next = l.now().Add(l.period)
	l.armed = true
}

// Next returns when the armed timer fires.
func (l *Loop) Next() time.Time {
	return l.next
}

// Until returns how long until the timer fires, never negative.
func (l *Loop) Until() time.Duration {
	d := l.next.Sub(l.now())
	if d < 0 {
		return 0
	}
	return d
}

// Poll fires the timer if it is due and re-arms it one period after the tick
// finished. It reports whether a tick ran.
func (l *Loop) Poll() bool {
	if !l.armed || l.now().Before(l.next) {
		return false
	}
	l.Tick()
	l.next = l.now().Add(l.period)
	return true
}
