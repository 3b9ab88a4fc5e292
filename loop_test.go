package g3d

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// nopPass satisfies RenderPass without recording anything.
type nopPass struct{}

func (nopPass) SetPipeline(hal.RenderPipeline)                          {}
func (nopPass) SetBindGroup(uint32, hal.BindGroup, []uint32)            {}
func (nopPass) SetVertexBuffer(uint32, hal.Buffer, uint64)              {}
func (nopPass) SetIndexBuffer(hal.Buffer, gputypes.IndexFormat, uint64) {}
func (nopPass) Draw(uint32, uint32, uint32, uint32)                     {}
func (nopPass) DrawIndexed(uint32, uint32, uint32, int32, uint32)       {}

type fakeSurface struct {
	journal *[]string
	w, h    int
	clear   Color
	failEnd bool
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }

func (s *fakeSurface) BeginFrame(c Color) (RenderPass, error) {
	s.clear = c
	*s.journal = append(*s.journal, "begin")
	return nopPass{}, nil
}

func (s *fakeSurface) EndFrame() error {
	*s.journal = append(*s.journal, "end")
	if s.failEnd {
		return errors.New("present failed")
	}
	return nil
}

type fakeWindow struct {
	journal    *[]string
	surface    *fakeSurface
	closeAfter int
	polls      int
	destroyed  int
	onPoll     func(in *Input)
}

func (w *fakeWindow) ShouldClose() bool { return w.closeAfter > 0 && w.polls >= w.closeAfter }

func (w *fakeWindow) PollEvents(in *Input) {
	w.polls++
	*w.journal = append(*w.journal, "poll")
	if w.onPoll != nil {
		w.onPoll(in)
	}
}

func (w *fakeWindow) Surface() Surface { return w.surface }
func (w *fakeWindow) Destroy()         { w.destroyed++ }

type fakePlatform struct {
	journal    *[]string
	initErr    error
	window     *fakeWindow
	createErr  error
	terminated int
}

func (p *fakePlatform) Init() error { return p.initErr }

func (p *fakePlatform) CreateWindow(cfg WindowConfig) (Window, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.window.surface.w, p.window.surface.h = cfg.Width, cfg.Height
	return p.window, nil
}

func (p *fakePlatform) Terminate() { p.terminated++ }

func newFakePlatform(journal *[]string) *fakePlatform {
	return &fakePlatform{
		journal: journal,
		window: &fakeWindow{
			journal: journal,
			surface: &fakeSurface{journal: journal},
		},
	}
}

func newReadyLoop(t *testing.T, p *fakePlatform, opts ...LoopOption) *FrameLoop {
	t.Helper()
	loop := NewFrameLoop(append([]LoopOption{WithPlatform(p)}, opts...)...)
	if err := loop.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := loop.CreateWindow(1600, 900, "test"); err != nil {
		t.Fatalf("CreateWindow() error = %v", err)
	}
	return loop
}

func TestFrameLoopTickRendersEachDrawableOnceInOrder(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	loop := newReadyLoop(t, p)

	const n = 5
	drawables := make([]*recordingDrawable, n)
	for i := range drawables {
		drawables[i] = &recordingDrawable{name: string(rune('a' + i)), journal: &journal}
		loop.Registry().MustAdd(drawables[i])
	}

	journal = nil
	if err := loop.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	want := []string{"poll", "begin", "render:a", "render:b", "render:c", "render:d", "render:e", "end"}
	if !equalStrings(journal, want) {
		t.Errorf("tick = %v, want %v", journal, want)
	}
	for _, d := range drawables {
		if d.renders != 1 {
			t.Errorf("drawable %s rendered %d times, want 1", d.name, d.renders)
		}
	}
	if loop.State() != StateRunning {
		t.Errorf("State() = %v, want running", loop.State())
	}
}

func TestFrameLoopRenderErrorDoesNotStopFrame(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	loop := newReadyLoop(t, p)

	loop.Registry().MustAdd(&recordingDrawable{name: "bad", journal: &journal, err: errors.New("boom")})
	good := &recordingDrawable{name: "good", journal: &journal}
	loop.Registry().MustAdd(good)

	if err := loop.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if good.renders != 1 {
		t.Errorf("drawable after failing one rendered %d times", good.renders)
	}
}

func TestFrameLoopStateMachine(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	loop := NewFrameLoop(WithPlatform(p))

	if err := loop.Refresh(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Refresh before init = %v, want ErrInvalidState", err)
	}
	if err := loop.CreateWindow(10, 10, "x"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("CreateWindow before init = %v, want ErrInvalidState", err)
	}
	if err := loop.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := loop.Initialize(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double Initialize = %v, want ErrInvalidState", err)
	}
	if err := loop.CreateWindow(10, 10, "x"); err != nil {
		t.Fatal(err)
	}
	if loop.State() != StateWindowCreated {
		t.Errorf("State() = %v, want window-created", loop.State())
	}

	d := &recordingDrawable{name: "a", journal: &journal}
	loop.Registry().MustAdd(d)

	loop.Terminate()
	loop.Terminate()
	if loop.State() != StateTerminated {
		t.Errorf("State() = %v, want terminated", loop.State())
	}
	if d.destroyed != 1 || p.window.destroyed != 1 || p.terminated != 1 {
		t.Errorf("destroyed=%d window=%d platform=%d, want 1 each", d.destroyed, p.window.destroyed, p.terminated)
	}
	if err := loop.Refresh(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Refresh after Terminate = %v, want ErrInvalidState", err)
	}
}

func TestFrameLoopInitFailures(t *testing.T) {
	var journal []string

	if err := NewFrameLoop().Initialize(); !errors.Is(err, ErrInitialization) {
		t.Errorf("no platform: %v, want ErrInitialization", err)
	}

	p := newFakePlatform(&journal)
	p.initErr = errors.New("no display")
	if err := NewFrameLoop(WithPlatform(p)).Initialize(); !errors.Is(err, ErrInitialization) {
		t.Errorf("init failure: %v, want ErrInitialization", err)
	}

	p = newFakePlatform(&journal)
	p.createErr = errors.New("no visual")
	loop := NewFrameLoop(WithPlatform(p))
	if err := loop.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := loop.CreateWindow(10, 10, "x"); !errors.Is(err, ErrWindowCreation) {
		t.Errorf("create failure: %v, want ErrWindowCreation", err)
	}
	if err := loop.CreateWindow(0, 10, "x"); !errors.Is(err, ErrWindowCreation) {
		t.Errorf("zero width: %v, want ErrWindowCreation", err)
	}
}

func TestFrameLoopRunUntilClose(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	p.window.closeAfter = 3
	loop := newReadyLoop(t, p)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if loop.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", loop.Frames())
	}
}

func TestFrameLoopRunMaxFramesAndCancel(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	loop := newReadyLoop(t, p, WithMaxFrames(4))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if loop.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", loop.Frames())
	}

	p = newFakePlatform(&journal)
	loop = newReadyLoop(t, p)
	ctx, cancel := context.WithCancel(context.Background())
	p.window.onPoll = func(*Input) {
		if p.window.polls == 2 {
			cancel()
		}
	}
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if loop.Frames() != 2 {
		t.Errorf("Frames() after cancel = %d, want 2", loop.Frames())
	}
}

func TestFrameLoopInvalidCameraSkipsFrame(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	loop := newReadyLoop(t, p)
	d := &recordingDrawable{name: "a", journal: &journal}
	loop.Registry().MustAdd(d)

	loop.Camera().Look = mgl32.Vec3{}
	if err := loop.Refresh(); !errors.Is(err, ErrInvalidCamera) {
		t.Errorf("Refresh() = %v, want ErrInvalidCamera", err)
	}
	if d.renders != 0 {
		t.Errorf("drawable rendered with invalid camera")
	}
}

func TestFrameLoopUpdateAndFrameContext(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	p.window.onPoll = func(in *Input) { in.SetKey(KeyW, true) }

	var seenPressed bool
	loop := newReadyLoop(t, p,
		WithAutoAspect(true),
		WithClearColor(Red),
		WithUpdate(func(in InputState, _ time.Duration, cam *Camera) {
			seenPressed = in.KeyPressed(KeyW)
			cam.Position = mgl32.Vec3{0, 0, 5}
		}),
	)

	var fc FrameContext
	loop.Registry().MustAdd(&contextCapture{out: &fc})
	loop.SetWireframe(true)

	if err := loop.Refresh(); err != nil {
		t.Fatal(err)
	}
	if !seenPressed {
		t.Error("update hook did not see key press")
	}
	if fc.Camera.Position != (mgl32.Vec3{0, 0, 5}) {
		t.Errorf("frame camera = %v, want update applied before draw", fc.Camera.Position)
	}
	if fc.Camera.Aspect != 1600.0/900.0 {
		t.Errorf("aspect = %g, want surface aspect", fc.Camera.Aspect)
	}
	if fc.Width != 1600 || fc.Height != 900 || !fc.Wireframe {
		t.Errorf("fc size=%dx%d wireframe=%v", fc.Width, fc.Height, fc.Wireframe)
	}
	if p.window.surface.clear != Red {
		t.Errorf("clear = %v, want Red", p.window.surface.clear)
	}
}

func TestFrameLoopEndFrameError(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	p.window.surface.failEnd = true
	loop := newReadyLoop(t, p)
	if err := loop.Refresh(); err == nil {
		t.Error("Refresh() = nil, want present error")
	}
}

type contextCapture struct{ out *FrameContext }

func (c *contextCapture) Kind() Kind { return KindPrimitive3D }
func (c *contextCapture) Render(fc *FrameContext) error {
	*c.out = *fc
	return nil
}
func (c *contextCapture) Destroy() {}

// drivingWindow owns its event loop and closes a device after teardown.
type drivingWindow struct {
	*fakeWindow
	teardowns int
}

func (w *drivingWindow) Drive(ctx context.Context, tick func() error, teardown func()) error {
	defer func() {
		if teardown != nil {
			w.teardowns++
			teardown()
		}
		*w.journal = append(*w.journal, "device-closed")
	}()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := tick(); err != nil {
			return err
		}
	}
}

func TestFrameLoopDriverTeardownBeforeDeviceClose(t *testing.T) {
	var journal []string
	p := newFakePlatform(&journal)
	p.window.closeAfter = 2
	dw := &drivingWindow{fakeWindow: p.window}

	loop := NewFrameLoop(WithPlatform(&drivingPlatform{fakePlatform: p, window: dw}))
	if err := loop.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := loop.CreateWindow(640, 480, "drive"); err != nil {
		t.Fatal(err)
	}
	d := &recordingDrawable{name: "mesh", journal: &journal}
	loop.Registry().MustAdd(d)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if dw.teardowns != 1 || d.destroyed != 1 {
		t.Fatalf("teardowns = %d, destroyed = %d, want 1, 1", dw.teardowns, d.destroyed)
	}
	n := len(journal)
	if n < 2 || journal[n-2] != "destroy:mesh" || journal[n-1] != "device-closed" {
		t.Errorf("journal tail = %v, want [destroy:mesh device-closed]", journal[max(0, n-2):])
	}
	if loop.Registry().Len() != 0 {
		t.Errorf("Registry().Len() = %d after teardown", loop.Registry().Len())
	}

	loop.Terminate()
	if d.destroyed != 1 {
		t.Errorf("destroyed = %d after Terminate, want 1", d.destroyed)
	}
}

type drivingPlatform struct {
	*fakePlatform
	window *drivingWindow
}

func (p *drivingPlatform) CreateWindow(cfg WindowConfig) (Window, error) {
	if _, err := p.fakePlatform.CreateWindow(cfg); err != nil {
		return nil, err
	}
	return p.window, nil
}
