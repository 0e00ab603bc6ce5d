// Package input maps key presses onto scene state. Each key is a dispatcher
// command so that every press is logged the same way.
package input

import (
	"fmt"
	"time"

	"github.com/interborough/transit/internal/animation"
	"github.com/interborough/transit/internal/dispatcher"
	"github.com/interborough/transit/internal/scene"
	"github.com/interborough/transit/pkg/core"
)

// NudgeStep is how far z/x move the controlled train.
const NudgeStep = 0.1

// Keys lists every bound key.
const Keys = "adfewszxltrjkp"

// Controller applies the key table to a scene.State.
type Controller struct {
	state  *scene.State
	d      *dispatcher.Dispatcher
	redraw func()
	now    func() time.Time

	// Tick reports the current animation tick for key events. Optional.
	Tick func() uint64
}

// New registers a logged handler for every bound key on d.
func New(state *scene.State, d *dispatcher.Dispatcher, redraw func()) *Controller {
	if redraw == nil {
		redraw = func() {}
	}
	c := &Controller{state: state, d: d, redraw: redraw, now: time.Now}

	for _, k := range Keys {
		key := k
		d.Register(Command(key), func(e dispatcher.Event) (any, error) {
			return nil, c.apply(key)
		}, dispatcher.Logged())
	}
	return c
}

// Command is the dispatcher command name of a key.
func Command(key rune) string {
	return "key:" + string(key)
}

// Key handles one key press and requests a redraw whatever the key was. The
// returned event says whether the key was bound.
func (c *Controller) Key(key rune) core.KeyEvent {
	defer c.redraw()

	ev := core.KeyEvent{
		Key:  string(key),
		Time: c.now(),
	}
	if c.Tick != nil {
		ev.Tick = c.Tick()
	}

	cmd := Command(key)
	if c.d.HasHandler(cmd) {
		if _, err := c.d.Dispatch(dispatcher.Event{Command: cmd, Timestamp: ev.Time}); err == nil {
			ev.Handled = true
		}
	}
	ev.Controlled = c.state.Controlled()
	return ev
}

func (c *Controller) apply(key rune) error {
	s := c.state
	switch key {
	case 'a':
		s.Translate.X++
	case 'd':
		s.Translate.X--
	case 'f':
		s.Translate.Y++
	case 'e':
		s.Translate.Y--
	case 'w':
		s.Translate.Z++
	case 's':
		s.Translate.Z--
	case 'z':
		return c.nudge(-NudgeStep)
	case 'x':
		return c.nudge(NudgeStep)
	case 'l':
		s.Lighting = !s.Lighting
	case 't':
		s.CycleControlled()
	case 'r':
		s.Reset()
	case 'j':
		s.WorldRotation.Y++
	case 'k':
		s.WorldRotation.Y--
	case 'p':
		s.TogglePause()
	default:
		return fmt.Errorf("unbound key %q", key)
	}
	return nil
}

// nudge moves the controlled train along its heading; a negative step moves
// it backward.
func (c *Controller) nudge(step float32) error {
	i := c.state.Controlled()
	slot, err := c.state.Slot(i)
	if err != nil {
		return err
	}
	p, err := c.state.Position(i)
	if err != nil {
		return err
	}
	return c.state.SetPosition(i, animation.Advance(p, slot.Direction, c.state.TrackRotation.Y, step))
}
