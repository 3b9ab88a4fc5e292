package g3d

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrStopped is returned by a tick function handed to a Driver once the
// frame loop has finished. Drivers treat it as a normal shutdown request.
var ErrStopped = errors.New("g3d: frame loop stopped")

// WindowConfig describes a window to create.
type WindowConfig struct {
	Width, Height int
	Title         string
}

// Platform is the windowing library: it starts once, opens windows and
// releases global resources on Terminate.
type Platform interface {
	Init() error
	CreateWindow(cfg WindowConfig) (Window, error)
	Terminate()
}

// Window is an open window with a drawable surface.
type Window interface {
	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool
	// PollEvents pumps pending events into in.
	PollEvents(in *Input)
	Surface() Surface
	Destroy()
}

// Surface is the per-frame render target of a window.
type Surface interface {
	Size() (width, height int)
	// BeginFrame clears colour and depth and opens a render pass.
	BeginFrame(clear Color) (RenderPass, error)
	// EndFrame closes the pass, submits it and presents.
	EndFrame() error
}

// Driver is implemented by windows whose event loop must own the calling
// goroutine. Drive calls tick once per displayed frame until the window
// closes, ctx is cancelled or tick returns ErrStopped. A window that
// releases its GPU device when it closes calls teardown first, so
// drawables free their resources on a live device.
type Driver interface {
	Drive(ctx context.Context, tick func() error, teardown func()) error
}

// LoopState is the lifecycle state of a FrameLoop.
type LoopState uint8

// Frame loop states.
const (
	StateNotInitialized LoopState = iota
	StateInitialized
	StateWindowCreated
	StateRunning
	StateTerminated
)

// String returns the state name.
func (s LoopState) String() string {
	switch s {
	case StateNotInitialized:
		return "not-initialized"
	case StateInitialized:
		return "initialized"
	case StateWindowCreated:
		return "window-created"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// FrameLoop drives the engine: once per tick it polls input, runs the
// update hook, clears the surface, renders every drawable in registry order
// and presents.
//
// FrameLoop is single-threaded. All methods must be called from the
// goroutine that created the window.
type FrameLoop struct {
	opts loopOptions

	state    LoopState
	window   Window
	registry *Registry
	input    *Input
	camera   *Camera

	wireframe bool
	frame     uint64
	failures  uint64
}

// NewFrameLoop creates a frame loop. The active camera defaults to
// NewCamera at (0, 0, 2) looking down -Z.
func NewFrameLoop(opts ...LoopOption) *FrameLoop {
	o := defaultLoopOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cam := NewCamera(mgl32.Vec3{0, 0, 2}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	return &FrameLoop{
		opts:     o,
		registry: NewRegistry(),
		input:    NewInput(),
		camera:   &cam,
	}
}

// State returns the current lifecycle state.
func (l *FrameLoop) State() LoopState { return l.state }

// Registry returns the drawables rendered each tick.
func (l *FrameLoop) Registry() *Registry { return l.registry }

// Input returns the accumulator window adapters write events into.
func (l *FrameLoop) Input() *Input { return l.input }

// Window returns the window opened by CreateWindow, or nil.
func (l *FrameLoop) Window() Window { return l.window }

// Camera returns the active camera. Mutations take effect next tick.
func (l *FrameLoop) Camera() *Camera { return l.camera }

// SetCamera makes c the active camera. Nil is ignored.
func (l *FrameLoop) SetCamera(c *Camera) {
	if c != nil {
		l.camera = c
	}
}

// SetWireframe switches edge-only rendering for drawables that support it.
func (l *FrameLoop) SetWireframe(on bool) { l.wireframe = on }

// Wireframe reports whether wireframe rendering is on.
func (l *FrameLoop) Wireframe() bool { return l.wireframe }

// Frames returns the number of completed ticks.
func (l *FrameLoop) Frames() uint64 { return l.frame }

// Initialize starts the windowing platform.
func (l *FrameLoop) Initialize() error {
	if l.state != StateNotInitialized {
		return fmt.Errorf("%w: Initialize in state %s", ErrInvalidState, l.state)
	}
	if l.opts.platform == nil {
		return fmt.Errorf("%w: no platform configured", ErrInitialization)
	}
	if err := l.opts.platform.Init(); err != nil {
		return fmt.Errorf("%w: %w", ErrInitialization, err)
	}
	l.state = StateInitialized
	Logger().Info("g3d: platform initialized")
	return nil
}

// CreateWindow opens the window the loop renders into.
func (l *FrameLoop) CreateWindow(width, height int, title string) error {
	if l.state != StateInitialized {
		return fmt.Errorf("%w: CreateWindow in state %s", ErrInvalidState, l.state)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrWindowCreation, width, height)
	}
	w, err := l.opts.platform.CreateWindow(WindowConfig{Width: width, Height: height, Title: title})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWindowCreation, err)
	}
	if w == nil {
		return fmt.Errorf("%w: platform returned no window", ErrWindowCreation)
	}
	l.window = w
	l.state = StateWindowCreated
	Logger().Info("g3d: window created", "width", width, "height", height, "title", title)
	return nil
}

// ShouldClose reports whether the loop should stop: the window asked to
// close or the frame limit was reached.
func (l *FrameLoop) ShouldClose() bool {
	if l.window == nil || l.state == StateTerminated {
		return true
	}
	if l.opts.maxFrames > 0 && l.frame >= l.opts.maxFrames {
		return true
	}
	return l.window.ShouldClose()
}

// Refresh runs one tick. Drawable render errors are logged and skipped; the
// returned error reports only failures that prevented the frame as a whole.
func (l *FrameLoop) Refresh() error {
	if l.state != StateWindowCreated && l.state != StateRunning {
		return fmt.Errorf("%w: Refresh in state %s", ErrInvalidState, l.state)
	}
	l.state = StateRunning

	l.window.PollEvents(l.input)
	in := l.input.Advance()

	if l.opts.update != nil {
		l.opts.update(in, in.Delta(), l.camera)
	}

	surface := l.window.Surface()
	width, height := surface.Size()
	if l.opts.autoAspect && width > 0 && height > 0 {
		l.camera.Aspect = float32(width) / float32(height)
	}

	cam := *l.camera
	view, err := cam.View()
	if err != nil {
		return fmt.Errorf("frame %d: %w", l.frame, err)
	}
	proj, err := cam.Projection()
	if err != nil {
		return fmt.Errorf("frame %d: %w", l.frame, err)
	}

	pass, err := surface.BeginFrame(l.opts.clear)
	if err != nil {
		return fmt.Errorf("frame %d: begin: %w", l.frame, err)
	}

	fc := &FrameContext{
		Camera:     cam,
		View:       view,
		Projection: proj,
		Input:      in,
		Pass:       pass,
		Width:      width,
		Height:     height,
		Frame:      l.frame,
		Delta:      in.Delta(),
		Wireframe:  l.wireframe,
	}
	fc.Overlay = OverlayProjection(fc.Aspect())

	_ = l.registry.Each(func(h Handle, d Drawable) error {
		if err := d.Render(fc); err != nil {
			l.failures++
			Logger().Warn("g3d: drawable render failed", "handle", h.String(), "kind", d.Kind().String(), "error", err)
		}
		return nil
	})

	if err := surface.EndFrame(); err != nil {
		return fmt.Errorf("frame %d: end: %w", l.frame, err)
	}
	l.frame++
	return nil
}

// Run ticks until the window closes, the frame limit is reached or ctx is
// cancelled. Per-frame errors are logged and the loop continues.
// Run returns nil on a normal close.
func (l *FrameLoop) Run(ctx context.Context) error {
	if l.state != StateWindowCreated && l.state != StateRunning {
		return fmt.Errorf("%w: Run in state %s", ErrInvalidState, l.state)
	}

	if d, ok := l.window.(Driver); ok {
		err := d.Drive(ctx, l.tick, l.registry.Destroy)
		if errors.Is(err, ErrStopped) || errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	for !l.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		if err := l.Refresh(); err != nil {
			Logger().Warn("g3d: frame failed", "error", err)
		}
	}
	return nil
}

// tick is the Driver callback: one Refresh, ErrStopped once done.
func (l *FrameLoop) tick() error {
	if l.ShouldClose() {
		return ErrStopped
	}
	if err := l.Refresh(); err != nil {
		Logger().Warn("g3d: frame failed", "error", err)
	}
	if l.ShouldClose() {
		return ErrStopped
	}
	return nil
}

// Terminate destroys every drawable, the window and the platform, in that
// order. It is safe to call more than once.
func (l *FrameLoop) Terminate() {
	if l.state == StateTerminated {
		return
	}
	l.registry.Destroy()
	if l.window != nil {
		l.window.Destroy()
		l.window = nil
	}
	if l.state != StateNotInitialized && l.opts.platform != nil {
		l.opts.platform.Terminate()
	}
	l.state = StateTerminated
	Logger().Info("g3d: terminated", "frames", l.frame, "render_failures", l.failures)
}
