package sdlhost

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
)

// Window wraps the SDL window and renderer the host draws into.
type Window struct {
	Window   *sdl.Window
	Renderer *sdl.Renderer
	Width    int32 // Logical size layers are rendered at
	Height   int32

	frameInterval   time.Duration
	hasVSync        bool
	lastPresentTime uint64
}

func openWindow(opts Options, logger *slog.Logger) (*Window, error) {
	x, y := int32(sdl.WINDOWPOS_CENTERED), int32(sdl.WINDOWPOS_CENTERED)
	winOpts := opts.Window
	if constants.IsDevMode() {
		winOpts.Borderless = false
		x, y = 50, 50
	}

	logger.Debug("Initializing SDL Window", "width", opts.Width, "height", opts.Height)

	window, err := sdl.CreateWindow(opts.Title, x, y, opts.Width, opts.Height, winOpts.ToSDLFlags())
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC|sdl.RENDERER_TARGETTEXTURE)
	if err != nil {
		_ = window.Destroy()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	if err := renderer.SetLogicalSize(opts.Width, opts.Height); err != nil {
		logger.Warn("Failed to set logical size", "error", err)
	}

	info, err := renderer.GetInfo()
	vsync := err == nil && info.Flags&sdl.RENDERER_PRESENTVSYNC != 0

	return &Window{
		Window:        window,
		Renderer:      renderer,
		Width:         opts.Width,
		Height:        opts.Height,
		frameInterval: opts.FrameInterval,
		hasVSync:      vsync,
	}, nil
}

// Present swaps the render buffer and holds the frame interval when VSync
// is not available.
func (w *Window) Present() {
	w.Renderer.Present()
	if w.hasVSync {
		return
	}
	interval := uint64(w.frameInterval.Milliseconds())
	now := sdl.GetTicks64()
	if elapsed := now - w.lastPresentTime; elapsed < interval {
		sdl.Delay(uint32(interval - elapsed))
	}
	w.lastPresentTime = sdl.GetTicks64()
}

func (w *Window) close() {
	_ = w.Renderer.Destroy()
	_ = w.Window.Destroy()
}
