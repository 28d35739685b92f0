// Package sdlhost runs a router in an SDL window.
//
// Each frame the loop polls input, advances the router's transitions and
// draws every layer into its own render target before compositing the
// targets with the layer's transition visual. Escape and the controller B
// button pop the backstack; popping the last entry ends the loop.
//
//	r := router.New(opts, ScreenList)
//	defer r.Close()
//
//	err := sdlhost.Run(ctx, r, func(renderer *sdl.Renderer, scope *router.Scope[Screen]) {
//	    switch scope.Destination() {
//	    case ScreenList:
//	        drawList(renderer, scope)
//	    }
//	}, sdlhost.OptionsFromConfig(cfg))
//
// SDL wants the main thread. Call Run from main.
package sdlhost

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/atomic"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/config"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/internal"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/router"
)

// DrawFunc draws one destination into the current render target, which is
// sized to the window's logical size.
type DrawFunc[T any] func(renderer *sdl.Renderer, scope *router.Scope[T])

// Options configures the window and the frame loop.
type Options struct {
	Title            string
	Width            int32
	Height           int32
	Window           WindowOptions
	FrameInterval    time.Duration        // Pacing used without VSync
	TextureCacheSize int                  // Render targets kept alive
	Background       sdl.Color            // Cleared behind every layer
	OnEvent          func(sdl.Event) bool // Sees events first; true consumes them
	Logger           *slog.Logger
}

// OptionsFromConfig takes the window section of cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Window: WindowOptions{Borderless: cfg.Window.Borderless},
	}
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "gabanav"
	}
	if o.Width <= 0 {
		o.Width = constants.DefaultWindowWidth
	}
	if o.Height <= 0 {
		o.Height = constants.DefaultWindowHeight
	}
	if o.Window.IsZero() {
		if constants.IsDevMode() {
			o.Window = WindowOptions{Borderless: true, Resizable: true}
		} else {
			o.Window = WindowOptions{Resizable: true}
		}
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = constants.DefaultFrameInterval
	}
	if o.TextureCacheSize <= 0 {
		o.TextureCacheSize = constants.DefaultTextureCacheSize
	}
	if o.Background.A == 0 {
		o.Background = sdl.Color{A: 255}
	}
	if o.Logger == nil {
		o.Logger = internal.GetInternalLogger()
	}
	return o
}

// Loop draws a router until it is stopped, the window is closed or the
// backstack cannot pop any further.
type Loop[T any] struct {
	router *router.Router[T]
	draw   DrawFunc[T]
	opts   Options
	logger *slog.Logger

	window      *Window
	targets     *TextureCache
	controllers map[sdl.JoystickID]*sdl.GameController
	stopped     atomic.Bool
}

func New[T any](r *router.Router[T], draw DrawFunc[T], opts Options) *Loop[T] {
	opts = opts.withDefaults()
	return &Loop[T]{
		router:      r,
		draw:        draw,
		opts:        opts,
		logger:      opts.Logger.With("component", "sdlhost"),
		controllers: make(map[sdl.JoystickID]*sdl.GameController),
	}
}

// Run opens a window and loops until stopped. See Loop.Run.
func Run[T any](ctx context.Context, r *router.Router[T], draw DrawFunc[T], opts Options) error {
	return New(r, draw, opts).Run(ctx)
}

// Stop ends the loop after the current frame. Safe from any goroutine.
func (l *Loop[T]) Stop() {
	l.stopped.Store(true)
}

// Stopped reports whether Stop was called or the loop ended on its own.
func (l *Loop[T]) Stopped() bool {
	return l.stopped.Load()
}

// Run initializes SDL, opens the window and draws frames until Stop, a
// quit event, a back press with nothing to pop, or ctx is done. It returns
// ctx.Err() in the last case and nil otherwise.
func (l *Loop[T]) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_GAMECONTROLLER | sdl.INIT_JOYSTICK); err != nil {
		return fmt.Errorf("init sdl: %w", err)
	}
	defer sdl.Quit()

	window, err := openWindow(l.opts, l.logger)
	if err != nil {
		return err
	}
	l.window = window
	l.targets = NewTextureCache(l.opts.TextureCacheSize)
	defer l.cleanup()

	for i := 0; i < sdl.NumJoysticks(); i++ {
		l.openController(i)
	}

	l.logger.Debug("Frame loop started", "router", l.router.String())
	for !l.stopped.Load() {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.pollEvents()
		if l.stopped.Load() {
			break
		}
		if err := l.frame(time.Now()); err != nil {
			return err
		}
	}
	l.logger.Debug("Frame loop stopped", "router", l.router.String())
	return nil
}

func (l *Loop[T]) cleanup() {
	l.targets.Destroy()
	for id, c := range l.controllers {
		c.Close()
		delete(l.controllers, id)
	}
	l.window.close()
}

func (l *Loop[T]) openController(index int) {
	if !sdl.IsGameController(index) {
		return
	}
	c := sdl.GameControllerOpen(index)
	if c == nil {
		l.logger.Warn("Failed to open controller", "index", index, "error", sdl.GetError())
		return
	}
	l.controllers[c.Joystick().InstanceID()] = c
}

func (l *Loop[T]) pollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if l.opts.OnEvent != nil && l.opts.OnEvent(event) {
			continue
		}
		switch e := event.(type) {
		case *sdl.QuitEvent:
			l.Stop()
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 && e.Keysym.Sym == sdl.K_ESCAPE {
				l.back()
			}
		case *sdl.ControllerButtonEvent:
			if e.Type == sdl.CONTROLLERBUTTONDOWN && sdl.GameControllerButton(e.Button) == sdl.CONTROLLER_BUTTON_B {
				l.back()
			}
		case *sdl.ControllerDeviceEvent:
			switch e.Type {
			case sdl.CONTROLLERDEVICEADDED:
				l.openController(int(e.Which))
			case sdl.CONTROLLERDEVICEREMOVED:
				if c, ok := l.controllers[e.Which]; ok {
					c.Close()
					delete(l.controllers, e.Which)
				}
			}
		}
	}
}

func (l *Loop[T]) back() {
	if !l.router.Back() {
		l.logger.Debug("Nothing to pop, exiting")
		l.Stop()
	}
}

// frame advances the router to now, composites its layers and presents.
func (l *Loop[T]) frame(now time.Time) error {
	l.router.Frame(now)

	renderer := l.window.Renderer
	w, h := l.window.Width, l.window.Height
	bg := l.opts.Background

	if err := renderer.SetRenderTarget(nil); err != nil {
		return fmt.Errorf("reset render target: %w", err)
	}
	_ = renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A)
	_ = renderer.Clear()

	for _, layer := range l.router.Layers() {
		if !Visible(layer.Visual, w, h) {
			continue
		}
		target, err := l.target(layer.Scope.Entry().ID().String(), w, h)
		if err != nil {
			return err
		}

		if err := renderer.SetRenderTarget(target); err != nil {
			return fmt.Errorf("set render target: %w", err)
		}
		_ = renderer.SetDrawColor(0, 0, 0, 0)
		_ = renderer.Clear()
		l.draw(renderer, layer.Scope)
		if err := renderer.SetRenderTarget(nil); err != nil {
			return fmt.Errorf("reset render target: %w", err)
		}

		_ = target.SetAlphaMod(AlphaMod(layer.Visual))
		dst := Destination(layer.Visual, w, h)
		if err := renderer.Copy(target, nil, &dst); err != nil {
			l.logger.Warn("Failed to composite layer", "entry", layer.Scope.Entry().ID(), "error", err)
		}
	}

	l.window.Present()
	l.pruneTargets()
	return nil
}

// target returns the entry's render target, creating it on first use or
// when the logical size changed.
func (l *Loop[T]) target(key string, w, h int32) (*sdl.Texture, error) {
	if t, ok := l.targets.Get(key); ok {
		if _, _, tw, th, err := t.Query(); err == nil && tw == w && th == h {
			return t, nil
		}
	}
	t, err := l.window.Renderer.CreateTexture(uint32(sdl.PIXELFORMAT_RGBA8888), int(sdl.TEXTUREACCESS_TARGET), w, h)
	if err != nil {
		return nil, fmt.Errorf("create render target: %w", err)
	}
	_ = t.SetBlendMode(sdl.BLENDMODE_BLEND)
	l.targets.Set(key, t)
	return t, nil
}

// pruneTargets drops the targets of entries the router has destroyed.
func (l *Loop[T]) pruneTargets() {
	live := make(map[string]bool)
	for _, e := range l.router.State().Entries() {
		live[e.ID().String()] = true
	}
	l.targets.Prune(func(key string) bool { return live[key] })
}
