package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	intImage "github.com/gogpu/g3d/internal/image"
)

// copyPitchAlignment is the BytesPerRow alignment texture-to-buffer copies
// require.
const copyPitchAlignment = 256

// OffscreenTarget renders into its own color texture and reads every
// finished frame back to memory.
type OffscreenTarget struct {
	target frameTarget

	colorTex  hal.Texture
	colorView hal.TextureView
	width     int
	height    int

	last *intImage.ImageBuf
}

// NewOffscreenTarget creates a width x height target in the device's
// surface format, which must be RGBA8Unorm or BGRA8Unorm.
func NewOffscreenTarget(dev *Device, width, height int) (*OffscreenTarget, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrDeviceClosed
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("gpu: invalid offscreen size %dx%d", width, height)
	}
	if _, err := readbackFormat(dev.format); err != nil {
		return nil, err
	}

	o := &OffscreenTarget{
		target: frameTarget{dev: dev, label: "offscreen"},
		width:  width,
		height: height,
	}
	tex, err := dev.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_color",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        dev.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create offscreen texture: %w", err)
	}
	o.colorTex = tex

	view, err := dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "offscreen_color_view",
	})
	if err != nil {
		o.Destroy()
		return nil, fmt.Errorf("create offscreen texture view: %w", err)
	}
	o.colorView = view
	return o, nil
}

func readbackFormat(f gputypes.TextureFormat) (intImage.Format, error) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return intImage.FormatRGBA8, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return intImage.FormatBGRA8, nil
	default:
		return 0, fmt.Errorf("gpu: offscreen readback does not support format %v", f)
	}
}

// Size implements g3d.Surface.
func (o *OffscreenTarget) Size() (int, int) { return o.width, o.height }

// BeginFrame implements g3d.Surface.
func (o *OffscreenTarget) BeginFrame(clear g3d.Color) (g3d.RenderPass, error) {
	if o.colorView == nil {
		return nil, ErrNoSurfaceView
	}
	return o.target.begin(o.colorView, uint32(o.width), uint32(o.height), clear)
}

// EndFrame implements g3d.Surface: it submits the frame and copies the
// color texture back into memory.
func (o *OffscreenTarget) EndFrame() error {
	if o.target.pass == nil {
		return errNoFrame
	}
	dev := o.target.dev
	w, h := uint32(o.width), uint32(o.height)
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := dev.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "offscreen_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		// Still close the pass so the next frame can begin.
		_ = o.target.end(nil)
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer dev.device.DestroyBuffer(staging)

	err = o.target.end(func(encoder hal.CommandEncoder) error {
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: o.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageRenderAttachment,
				NewUsage: gputypes.TextureUsageCopySrc,
			},
		}})
		encoder.CopyTextureToBuffer(o.colorTex, staging, []hal.BufferTextureCopy{{
			BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
			TextureBase:  hal.ImageCopyTexture{Texture: o.colorTex, MipLevel: 0},
			Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		}})
		encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: o.colorTex,
			Usage: hal.TextureUsageTransition{
				OldUsage: gputypes.TextureUsageCopySrc,
				NewUsage: gputypes.TextureUsageRenderAttachment,
			},
		}})
		return nil
	})
	if err != nil {
		return err
	}

	readback := make([]byte, size)
	if err := dev.queue.ReadBuffer(staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	format, _ := readbackFormat(dev.format)
	img, err := intImage.FromRows(readback, o.width, o.height, format, int(alignedBytesPerRow))
	if err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	o.last = img
	return nil
}

// Snapshot returns the last finished frame, or nil before the first one.
func (o *OffscreenTarget) Snapshot() *image.NRGBA {
	if o.last == nil {
		return nil
	}
	return o.last.ToStdImage()
}

// SavePNG writes the last finished frame to path.
func (o *OffscreenTarget) SavePNG(path string) error {
	if o.last == nil {
		return errors.New("gpu: no frame rendered yet")
	}
	return o.last.SavePNG(path)
}

// Destroy releases the color and depth textures.
func (o *OffscreenTarget) Destroy() {
	o.target.destroyDepth()
	dev := o.target.dev
	if dev == nil || dev.device == nil {
		return
	}
	if o.colorView != nil {
		dev.device.DestroyTextureView(o.colorView)
		o.colorView = nil
	}
	if o.colorTex != nil {
		dev.device.DestroyTexture(o.colorTex)
		o.colorTex = nil
	}
}

// OffscreenPlatform is a g3d.Platform without a display. Windows render to
// OffscreenTargets and never ask to close; bound the loop with
// g3d.WithMaxFrames.
type OffscreenPlatform struct {
	dev     *Device
	ownsDev bool
	opts    []DeviceOption
	script  func(frame uint64, in *g3d.Input)
}

// OffscreenOption configures an OffscreenPlatform.
type OffscreenOption func(*OffscreenPlatform)

// WithOffscreenDevice renders with an existing device instead of opening
// one in Init.
func WithOffscreenDevice(dev *Device) OffscreenOption {
	return func(p *OffscreenPlatform) { p.dev = dev }
}

// WithDeviceOptions passes options to Open when Init opens a device.
func WithDeviceOptions(opts ...DeviceOption) OffscreenOption {
	return func(p *OffscreenPlatform) { p.opts = opts }
}

// WithInputScript calls fn on every PollEvents so tests and headless runs
// can feed input.
func WithInputScript(fn func(frame uint64, in *g3d.Input)) OffscreenOption {
	return func(p *OffscreenPlatform) { p.script = fn }
}

// NewOffscreenPlatform creates a headless platform.
func NewOffscreenPlatform(opts ...OffscreenOption) *OffscreenPlatform {
	p := &OffscreenPlatform{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init opens a device unless one was supplied.
func (p *OffscreenPlatform) Init() error {
	if p.dev != nil {
		return nil
	}
	dev, err := Open(p.opts...)
	if err != nil {
		return err
	}
	p.dev, p.ownsDev = dev, true
	return nil
}

// Device returns the device windows render with. Nil before Init.
func (p *OffscreenPlatform) Device() *Device { return p.dev }

// CreateWindow implements g3d.Platform.
func (p *OffscreenPlatform) CreateWindow(cfg g3d.WindowConfig) (g3d.Window, error) {
	if p.dev == nil {
		return nil, errors.New("gpu: offscreen platform not initialized")
	}
	target, err := NewOffscreenTarget(p.dev, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	slogger().Info("gpu: offscreen window created", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	return &OffscreenWindow{target: target, script: p.script}, nil
}

// Terminate closes the device if Init opened it.
func (p *OffscreenPlatform) Terminate() {
	if p.ownsDev && p.dev != nil {
		p.dev.Close()
		p.dev = nil
	}
}

// OffscreenWindow is a window backed by an OffscreenTarget.
type OffscreenWindow struct {
	target *OffscreenTarget
	script func(frame uint64, in *g3d.Input)
	polls  uint64
	closed bool
}

// Target returns the window's render target.
func (w *OffscreenWindow) Target() *OffscreenTarget { return w.target }

// Close makes ShouldClose report true.
func (w *OffscreenWindow) Close() { w.closed = true }

// ShouldClose implements g3d.Window.
func (w *OffscreenWindow) ShouldClose() bool { return w.closed }

// PollEvents implements g3d.Window.
func (w *OffscreenWindow) PollEvents(in *g3d.Input) {
	if w.script != nil {
		w.script(w.polls, in)
	}
	w.polls++
}

// Surface implements g3d.Window.
func (w *OffscreenWindow) Surface() g3d.Surface { return w.target }

// Destroy implements g3d.Window.
func (w *OffscreenWindow) Destroy() { w.target.Destroy() }
