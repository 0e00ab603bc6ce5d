package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spf13/viper"

	"github.com/interborough/transit/internal/animation"
	"github.com/interborough/transit/internal/capture"
	"github.com/interborough/transit/internal/config"
	"github.com/interborough/transit/internal/dispatcher"
	"github.com/interborough/transit/internal/geometry"
	"github.com/interborough/transit/internal/glraster"
	"github.com/interborough/transit/internal/host"
	"github.com/interborough/transit/internal/input"
	"github.com/interborough/transit/internal/logging"
	"github.com/interborough/transit/internal/monitor"
	"github.com/interborough/transit/internal/planview"
	"github.com/interborough/transit/internal/recorder"
	"github.com/interborough/transit/internal/scene"
	"github.com/interborough/transit/internal/scenery"
	"github.com/interborough/transit/internal/texture"
	"github.com/interborough/transit/pkg/raster"
)

// app implements host.Callbacks. Every method runs on the render thread.
type app struct {
	opts   options
	logger *slog.Logger
	host   host.Host
	now    func() time.Time

	render config.RenderConfig
	anim   animation.Config

	state    *scene.State
	layout   scene.Layout
	d        *dispatcher.Dispatcher
	input    *input.Controller
	loop     *animation.Loop
	composer *scene.Composer
	quadric  *geometry.Quadric

	// exactly one of gl and capture is set once Start has run
	gl      *glraster.GL
	capture *capture.Recorder
	width   int
	height  int

	rec     *recorder.Recorder
	monitor *monitor.Service

	frames atomic.Uint64
	ticks  atomic.Uint64
	errs   []error
}

func newApp(opts options, logger *slog.Logger) (*app, error) {
	a := &app{
		opts:   opts,
		logger: logger,
		render: config.GetRenderConfig(),
		layout: scene.DefaultLayout(),
		now:    time.Now,
	}

	var err error
	a.anim, err = animationConfig(config.GetAnimationConfig())
	if err != nil {
		return nil, err
	}

	win := config.GetWindowConfig()
	hostCfg := host.Config{Width: win.Width, Height: win.Height, Title: win.Title}
	if opts.Headless {
		h := host.NewHeadless(hostCfg, opts.Ticks)
		h.Keys = []rune(opts.Keys)
		a.host = h
		a.now = h.Clock.Now
	} else {
		kind, err := host.ParseKind(win.Host)
		if err != nil {
			return nil, err
		}
		switch kind {
		case host.SDL:
			a.host = host.NewSDL(hostCfg)
		case host.Headless:
			return nil, fmt.Errorf("use --headless to run without a window")
		default:
			a.host = host.NewGLFW(hostCfg)
		}
	}

	a.state = scene.NewState(a.layout)
	a.d, err = dispatcher.New(logging.NewDispatcherLogger(Zerolog))
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	a.input = input.New(a.state, a.d, a.host.Redraw)
	return a, nil
}

func animationConfig(c config.AnimationConfig) (animation.Config, error) {
	wrap, err := animation.ParseWrapMode(c.Wrap)
	if err != nil {
		return animation.Config{}, err
	}
	return animation.Config{
		FPS:   float64(c.FPS),
		Step:  c.Step,
		Depth: c.FrustumDepth,
		Wrap:  wrap,
	}, nil
}

// rasterizer is where frames are drawn.
func (a *app) rasterizer() raster.Rasterizer {
	if a.capture != nil {
		return a.capture
	}
	return a.gl
}

// Start builds the scene once a context exists. A bad texture or option
// aborts start-up; recording and monitoring problems are only logged. The
// host does not call Stop after a failed Start, so whatever Start acquired
// is released here.
func (a *app) Start() (err error) {
	defer func() {
		if err != nil {
			a.release()
		}
	}()

	if a.opts.Headless {
		a.capture = capture.New()
	} else {
		gl, err := glraster.New()
		if err != nil {
			return err
		}
		gl.Setup()
		a.gl = gl
		a.logger.Info("OpenGL ready", "version", gl.Version())
	}

	normals, err := geometry.ParseNormalMode(a.render.Normals)
	if err != nil {
		return err
	}
	strategy, err := scenery.ParseTrackStrategy(a.render.TrackStrategy)
	if err != nil {
		return err
	}
	view, err := scene.ParseView(a.render.View)
	if err != nil {
		return err
	}
	prisms := geometry.Prisms{Normals: normals}

	a.quadric = geometry.NewQuadric(scenery.WheelSlices, scenery.WheelStacks)
	stock := scenery.NewRollingStock(a.quadric)
	stock.Prisms = prisms
	stock.Body.Texture, err = a.loadTexture()
	if err != nil {
		return err
	}
	track := scenery.NewTrackBuilder(strategy, a.anim.Depth)
	track.Prisms = prisms

	a.composer, err = scene.NewComposer(a.state, a.layout, scene.Builders{
		Track:     track,
		Stock:     stock,
		Platforms: &scenery.PlatformBuilder{Prisms: prisms},
		Prisms:    prisms,
	}, view)
	if err != nil {
		return err
	}

	a.loop, err = animation.New(a.state, a.anim, a.host.Redraw, animation.WithClock(a.now))
	if err != nil {
		return err
	}
	a.loop.Observe(func(tick uint64) { a.ticks.Store(tick) })
	a.input.Tick = a.loop.Ticks

	if viper.GetBool("recorder.enabled") {
		if err := a.startRecorder(); err != nil {
			a.logger.Error("Recording disabled", "error", err)
			a.rec = nil
		}
	}
	a.startMonitor()

	a.loop.Start()
	a.logger.Info("Scene ready", "view", view, "tracks", a.state.TrackCount(), "period", a.loop.Period())
	return nil
}

// loadTexture uploads the front texture and returns its name, 0 when none
// is configured.
func (a *app) loadTexture() (uint32, error) {
	if a.render.Texture == "" {
		return 0, nil
	}
	img, err := texture.Load(a.render.Texture)
	if err != nil {
		return 0, err
	}
	a.logger.Info("Loaded texture", "path", a.render.Texture, "width", img.Width, "height", img.Height)
	if a.gl != nil {
		return a.gl.UploadTexture(img), nil
	}
	// the capture rasterizer only records the name
	return 1, nil
}

func (a *app) startMonitor() {
	counters := monitor.Counters{
		Ticks:  a.ticks.Load,
		Frames: a.frames.Load,
	}
	if a.rec != nil {
		counters.Pending = a.rec.Pending
		counters.Dropped = a.rec.Dropped
	}
	a.monitor = monitor.NewService(monitor.Dependencies{
		LogManager: SlogManager,
		Session:    SessionContext,
		Counters:   counters,
		StatusDir:  viper.GetString("logsDir"),
		Interval:   viper.GetDuration("monitor.interval"),
	})
	if err := a.monitor.Start(); err != nil {
		a.logger.Error("Failed to start status monitor", "error", err)
	}
}

func (a *app) Reshape(width, height int) {
	a.width, a.height = width, height
	if a.gl != nil {
		a.gl.Reshape(width, height, a.anim.Depth)
	}
	a.host.Redraw()
}

func (a *app) Display() {
	start := time.Now()
	if a.gl != nil {
		a.gl.BeginFrame()
	} else {
		a.capture.Reset()
	}

	if err := a.composer.BuildScene(a.rasterizer()); err != nil {
		a.logger.Error("Frame incomplete", "error", err)
	}

	if a.gl != nil {
		a.gl.EndFrame()
	}
	n := a.frames.Add(1)

	if a.capture != nil && a.logger.Enabled(context.Background(), slog.LevelDebug) {
		st := a.capture.Stats()
		st.Frame = n
		st.Duration = time.Since(start)
		a.logger.Debug("frame", "frame", st.Frame, "vertices", st.Vertices, "quads", st.Quads,
			"lights", st.Lights, "duration", st.Duration)
	}
}

func (a *app) Key(key rune) {
	ev := a.input.Key(key)
	if !ev.Handled {
		a.logger.Debug("Ignored key", "key", ev.Key)
	}
	if a.rec != nil {
		a.rec.OnKey(ev)
	}
}

func (a *app) Timer() time.Duration {
	a.loop.Poll()
	return a.loop.Until()
}

// Stop drains the recorder and releases the scene's resources. It runs
// exactly once.
func (a *app) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if a.rec != nil {
		if err := a.rec.Stop(ctx); err != nil {
			a.errs = append(a.errs, fmt.Errorf("stopping recorder: %w", err))
		}
	} else {
		a.d.Close()
	}
	if a.monitor != nil {
		a.monitor.Stop()
	}

	if a.capture != nil {
		st := a.capture.Stats()
		st.Frame = a.frames.Load()
		a.logger.Info("Headless run finished", "frames", st.Frame, "ticks", a.ticks.Load(),
			"vertices", st.Vertices, "quads", st.Quads, "lights", st.Lights)
		if a.opts.Planview != "" {
			if err := planview.Render(a.capture, a.opts.Planview, planview.DefaultOptions()); err != nil {
				a.errs = append(a.errs, fmt.Errorf("writing plan view: %w", err))
			} else {
				a.logger.Info("Wrote plan view", "path", a.opts.Planview)
			}
		}
	}
	a.release()
}

// release frees the quadric and the GL objects. It is safe to call twice.
func (a *app) release() {
	if a.quadric != nil && !a.quadric.Released() {
		if err := a.quadric.Release(); err != nil {
			a.errs = append(a.errs, err)
		}
	}
	if a.gl != nil {
		a.gl.Release()
	}
}

// Err reports what went wrong during Stop.
func (a *app) Err() error {
	return errors.Join(a.errs...)
}
