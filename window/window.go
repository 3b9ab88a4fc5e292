// Package window runs g3d frame loops in a native window provided by gogpu.
//
// gogpu owns the event loop, so a Window implements g3d.Driver: FrameLoop.Run
// hands its tick to the window and each gogpu draw callback renders one
// frame into the current surface texture.
//
//	platform := window.New(window.WithOnReady(func(dev *gpu.Device) error {
//	    // create drawables on dev
//	    return nil
//	}))
//	loop := g3d.NewFrameLoop(g3d.WithPlatform(platform))
package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/gpu"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	g3d.RegisterLoggerHook(func(l *slog.Logger) { loggerPtr.Store(l) })
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// Option configures a Platform.
type Option func(*Platform)

// WithConfig sets the gogpu configuration windows start from. Title and
// size are always taken from g3d.WindowConfig.
func WithConfig(c gogpu.Config) Option {
	return func(p *Platform) { p.config = c }
}

// WithOnReady registers fn to run once the GPU device exists, before the
// first frame. Drawables that need the device are created here. An error
// closes the window and is returned from FrameLoop.Run.
func WithOnReady(fn func(dev *gpu.Device) error) Option {
	return func(p *Platform) { p.onReady = fn }
}

// WithOnClose registers fn to run when the window closes, after the loop's
// drawables are destroyed and while the GPU device is still alive. Use it
// for resources the registry does not own, such as shared textures.
func WithOnClose(fn func()) Option {
	return func(p *Platform) { p.onClose = fn }
}

// Platform implements g3d.Platform with gogpu.
type Platform struct {
	config  gogpu.Config
	onReady func(*gpu.Device) error
	onClose func()
	window  *Window
}

// New creates a platform.
func New(opts ...Option) *Platform {
	p := &Platform{config: gogpu.DefaultConfig()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init implements g3d.Platform. gogpu starts lazily in Run, so there is
// nothing to do.
func (p *Platform) Init() error { return nil }

// CreateWindow implements g3d.Platform. Only one window is supported.
func (p *Platform) CreateWindow(cfg g3d.WindowConfig) (g3d.Window, error) {
	if p.window != nil {
		return nil, errors.New("window: only one window per platform")
	}
	app := gogpu.NewApp(p.config.
		WithTitle(cfg.Title).
		WithSize(cfg.Width, cfg.Height))
	w := &Window{
		app:     app,
		onReady: p.onReady,
		onClose: p.onClose,
		width:   cfg.Width,
		height:  cfg.Height,
	}
	w.subscribe()
	p.window = w
	return w, nil
}

// Terminate implements g3d.Platform.
func (p *Platform) Terminate() {
	if p.window != nil {
		p.window.Destroy()
		p.window = nil
	}
}

// Window is a gogpu window. It implements g3d.Window and g3d.Driver.
type Window struct {
	app     *gogpu.App
	onReady func(*gpu.Device) error
	onClose func()
	// teardown destroys the loop's drawables.
	teardown func()

	events eventQueue

	dev     *gpu.Device
	surface *gpu.SurfaceTarget
	anim    *gogpu.AnimationToken
	width   int
	height  int

	closed   bool
	released bool
}

// Device returns the GPU device, or nil before the first frame.
func (w *Window) Device() *gpu.Device { return w.dev }

// ShouldClose implements g3d.Window.
func (w *Window) ShouldClose() bool { return w.closed }

// Close asks the window to close after the current frame.
func (w *Window) Close() {
	w.closed = true
	w.app.Quit()
}

// PollEvents implements g3d.Window by draining events queued since the
// previous frame.
func (w *Window) PollEvents(in *g3d.Input) { w.events.drain(in) }

// Surface implements g3d.Window.
func (w *Window) Surface() g3d.Surface { return w.surface }

// Drive implements g3d.Driver. It blocks in gogpu's event loop until the
// window closes, ctx is cancelled or tick returns an error. teardown runs
// on close before the device is released.
func (w *Window) Drive(ctx context.Context, tick func() error, teardown func()) error {
	w.teardown = teardown
	var runErr error
	stop := func(err error) {
		if runErr == nil {
			runErr = err
		}
		w.Close()
	}

	w.app.OnDraw(func(dc *gogpu.Context) {
		if w.closed {
			return
		}
		if ctx.Err() != nil {
			stop(ctx.Err())
			return
		}
		if w.dev == nil {
			if err := w.ready(); err != nil {
				stop(err)
				return
			}
		}

		view, ok := any(dc.SurfaceView()).(hal.TextureView)
		if !ok || view == nil {
			slogger().Warn("window: frame skipped", "error", gpu.ErrNoSurfaceView)
			return
		}
		sw, sh := dc.SurfaceSize()
		w.width, w.height = int(sw), int(sh)
		w.surface.SetView(view, w.width, w.height)

		if err := tick(); err != nil {
			stop(err)
		}
	})
	w.app.OnClose(func() {
		w.closed = true
		w.release()
	})

	if err := w.app.Run(); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return runErr
}

// ready opens the shared device on the first frame.
func (w *Window) ready() error {
	dev, err := gpu.FromProvider(w.app.GPUContextProvider())
	if err != nil {
		return fmt.Errorf("%w: %w", g3d.ErrInitialization, err)
	}
	w.dev = dev
	w.surface = gpu.NewSurfaceTarget(dev)
	slogger().Info("window: device ready", "format", dev.SurfaceFormat())

	if w.onReady != nil {
		if err := w.onReady(dev); err != nil {
			return err
		}
	}
	w.anim = w.app.StartAnimation()
	return nil
}

// release frees GPU resources while the device is alive.
func (w *Window) release() {
	if w.released {
		return
	}
	w.released = true
	if w.anim != nil {
		w.anim.Stop()
		w.anim = nil
	}
	if w.teardown != nil {
		w.teardown()
	}
	if w.onClose != nil {
		w.onClose()
	}
	if w.surface != nil {
		w.surface.Destroy()
	}
	if w.dev != nil {
		w.dev.Close()
	}
}

// Destroy implements g3d.Window.
func (w *Window) Destroy() {
	w.closed = true
	w.release()
}

// subscribe forwards gogpu input events into the queue.
func (w *Window) subscribe() {
	src := w.app.EventSource()
	src.OnKeyPress(func(k gpucontext.Key, _ gpucontext.Modifiers) {
		w.events.push(event{kind: eventKey, key: MapKey(k), down: true})
	})
	src.OnKeyRelease(func(k gpucontext.Key, _ gpucontext.Modifiers) {
		w.events.push(event{kind: eventKey, key: MapKey(k), down: false})
	})
	src.OnMouseMove(func(x, y float64) {
		w.events.push(event{kind: eventMouseMove, x: x, y: y})
	})
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
		w.events.push(event{kind: eventMouseButton, button: MapButton(b), down: true, x: x, y: y})
	})
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
		w.events.push(event{kind: eventMouseButton, button: MapButton(b), down: false, x: x, y: y})
	})
}

type eventKind uint8

const (
	eventKey eventKind = iota
	eventMouseMove
	eventMouseButton
)

type event struct {
	kind   eventKind
	key    g3d.Key
	button g3d.MouseButton
	down   bool
	x, y   float64
}

// eventQueue buffers events between frames. gogpu may deliver them from
// its platform thread.
type eventQueue struct {
	mu     sync.Mutex
	events []event
}

func (q *eventQueue) push(e event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

func (q *eventQueue) drain(in *g3d.Input) {
	q.mu.Lock()
	events := q.events
	q.events = nil
	q.mu.Unlock()

	for _, e := range events {
		switch e.kind {
		case eventKey:
			if e.key == g3d.KeyUnknown {
				continue
			}
			in.SetKey(e.key, e.down)
		case eventMouseMove:
			in.SetMousePosition(e.x, e.y)
		case eventMouseButton:
			in.SetMousePosition(e.x, e.y)
			in.SetMouseButton(e.button, e.down)
		}
	}
}
