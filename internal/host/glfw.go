package host

import (
	"context"
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// GLFWHost opens an OpenGL 2.1 window with GLFW.
type GLFWHost struct {
	cfg   Config
	dirty bool
}

// NewGLFW creates a GLFW host; nothing is opened until Run.
func NewGLFW(cfg Config) *GLFWHost {
	return &GLFWHost{cfg: cfg}
}

func (h *GLFWHost) Redraw() {
	h.dirty = true
}

// Run opens the window and dispatches events until the window is closed or
// ctx is cancelled.
func (h *GLFWHost) Run(ctx context.Context, cb Callbacks) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initializing glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.DoubleBuffer, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err := glfw.CreateWindow(h.cfg.Width, h.cfg.Height, h.cfg.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := cb.Start(); err != nil {
		return err
	}
	defer cb.Stop()

	window.SetCharCallback(func(_ *glfw.Window, char rune) {
		cb.Key(char)
	})
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		cb.Reshape(width, height)
		h.dirty = true
	})
	window.SetRefreshCallback(func(_ *glfw.Window) {
		h.dirty = true
	})

	fw, fh := window.GetFramebufferSize()
	cb.Reshape(fw, fh)
	h.dirty = true

	for !window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		wait := cb.Timer()
		if h.dirty {
			h.dirty = false
			cb.Display()
			window.SwapBuffers()
		}
		glfw.WaitEventsTimeout(clampWait(wait).Seconds())
	}
	return nil
}
