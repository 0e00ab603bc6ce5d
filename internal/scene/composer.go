package scene

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/interborough/transit/internal/geometry"
	"github.com/interborough/transit/internal/scenery"
	"github.com/interborough/transit/pkg/raster"
)

// View selects what the composer draws.
type View int

const (
	// StationView draws the platforms and every track slot.
	StationView View = iota
	// CarView draws a single car on a ground slab, for inspecting rolling stock.
	CarView
)

func (v View) String() string {
	if v == CarView {
		return "car"
	}
	return "station"
}

// ParseView converts "station" or "car" to a View.
func ParseView(s string) (View, error) {
	switch strings.ToLower(s) {
	case "", "station", "scene":
		return StationView, nil
	case "car":
		return CarView, nil
	default:
		return StationView, fmt.Errorf("unknown view: %q", s)
	}
}

// Track lowering applied beneath every train.
const trackDrop = -0.6

// Composer walks the scene once per frame.
type Composer struct {
	state     *State
	layout    Layout
	track     *scenery.TrackBuilder
	stock     *scenery.RollingStock
	platforms *scenery.PlatformBuilder
	prisms    geometry.Prisms
	view      View

	frames metric.Int64Counter
}

// Builders groups the part builders the composer delegates to.
type Builders struct {
	Track     *scenery.TrackBuilder
	Stock     *scenery.RollingStock
	Platforms *scenery.PlatformBuilder
	Prisms    geometry.Prisms
}

// NewComposer creates a composer over state. The layout supplies platform
// placements; track slots come from state.
func NewComposer(state *State, layout Layout, b Builders, view View) (*Composer, error) {
	c := &Composer{
		state:     state,
		layout:    layout,
		track:     b.Track,
		stock:     b.Stock,
		platforms: b.Platforms,
		prisms:    b.Prisms,
		view:      view,
	}

	var err error
	c.frames, err = meter().Int64Counter(
		"scene.frames",
		metric.WithDescription("Total frames composed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame counter: %w", err)
	}
	return c, nil
}

// View returns the active view.
func (c *Composer) View() View {
	return c.view
}

// BuildScene emits one frame: world rotation, camera transform, platforms,
// then each track with its train. It never changes train positions.
func (c *Composer) BuildScene(r raster.Rasterizer) error {
	if c.state.Lighting {
		r.Enable(raster.Lighting)
	} else {
		r.Disable(raster.Lighting)
	}

	var err error
	raster.Scope(r, func() {
		r.Rotate(c.state.WorldRotation.Y, 0, 1, 0)
		if c.view == CarView {
			err = c.buildCar(r)
		} else {
			err = c.buildStation(r)
		}
	})

	c.frames.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("lighting", c.state.Lighting)))
	return err
}

func (c *Composer) buildStation(r raster.Rasterizer) error {
	var err error
	raster.Scope(r, func() {
		t := c.state.Translate
		r.Translate(t.X, t.Y, t.Z)
		r.Rotate(c.state.TrackRotation.Y, 0, 1, 0)
		r.Rotate(c.state.TrackRotation.X, 1, 0, 0)

		for _, p := range c.layout.Platforms {
			raster.Scope(r, func() {
				r.Translate(p.Offset.X, p.Offset.Y, p.Offset.Z)
				if perr := c.platforms.EmitPlatform(r, p.ID); perr != nil && err == nil {
					err = fmt.Errorf("platform %d: %w", p.ID, perr)
				}
			})
		}

		for i, slot := range c.state.slots {
			raster.Scope(r, func() {
				r.Translate(slot.Offset, 0, 0)
				if terr := c.installTrack(r, i); terr != nil && err == nil {
					err = fmt.Errorf("track %d: %w", i, terr)
				}
			})
		}
	})
	return err
}

// installTrack draws the train on slot i, if shown, then the track beneath it.
func (c *Composer) installTrack(r raster.Rasterizer, i int) error {
	slot := c.state.slots[i]

	var err error
	if slot.ShowTrain {
		raster.Scope(r, func() {
			p := c.state.positions[i]
			r.Translate(p.X, p.Y, p.Z)
			err = c.stock.EmitTrain(r, i)
		})
	}

	raster.Scope(r, func() {
		r.Translate(0, trackDrop, 0)
		c.track.EmitTrack(r)
	})
	return err
}

func (c *Composer) buildCar(r raster.Rasterizer) error {
	var err error
	raster.Scope(r, func() {
		t := c.state.Translate
		r.Translate(t.X, t.Y, t.Z)

		raster.Scope(r, func() {
			r.Translate(0, -scenery.CarHeight, 0)
			c.prisms.Emit(r, 100, 1, 100, geometry.Solid(scenery.Yellow))
			r.Translate(0, scenery.CarHeight, 0)
			err = c.stock.EmitCar(r, 0, 0)
		})
	})
	return err
}
