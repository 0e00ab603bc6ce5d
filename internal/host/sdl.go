package host

import (
	"context"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLHost opens an OpenGL 2.1 window with SDL2. Key presses arrive as text
// input so that case is preserved.
type SDLHost struct {
	cfg   Config
	dirty bool
}

// NewSDL creates an SDL host; nothing is opened until Run.
func NewSDL(cfg Config) *SDLHost {
	return &SDLHost{cfg: cfg}
}

func (h *SDLHost) Redraw() {
	h.dirty = true
}

func (h *SDLHost) Run(ctx context.Context, cb Callbacks) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("initializing sdl: %w", err)
	}
	defer sdl.Quit()

	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 2)
	_ = sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 1)
	_ = sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	_ = sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)

	window, err := sdl.CreateWindow(h.cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(h.cfg.Width), int32(h.cfg.Height), sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE|sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()

	glctx, err := window.GLCreateContext()
	if err != nil {
		return fmt.Errorf("creating gl context: %w", err)
	}
	defer sdl.GLDeleteContext(glctx)

	if err := cb.Start(); err != nil {
		return err
	}
	defer cb.Stop()

	sdl.StartTextInput()
	defer sdl.StopTextInput()

	w, hgt := window.GLGetDrawableSize()
	cb.Reshape(int(w), int(hgt))
	h.dirty = true

	for {
		if ctx.Err() != nil {
			return nil
		}
		wait := cb.Timer()
		if h.dirty {
			h.dirty = false
			cb.Display()
			window.GLSwap()
		}

		ev := sdl.WaitEventTimeout(int(clampWait(wait).Milliseconds()))
		for ; ev != nil; ev = sdl.PollEvent() {
			switch e := ev.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.TextInputEvent:
				for _, r := range e.GetText() {
					cb.Key(r)
				}
			case *sdl.WindowEvent:
				switch e.Event {
				case sdl.WINDOWEVENT_SIZE_CHANGED:
					w, hgt := window.GLGetDrawableSize()
					cb.Reshape(int(w), int(hgt))
					h.dirty = true
				case sdl.WINDOWEVENT_EXPOSED:
					h.dirty = true
				}
			}
		}
	}
}
