package gpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
)

// submitTimeout bounds every fence wait.
const submitTimeout = 5 * time.Second

// errNoFrame is returned by EndFrame without a matching BeginFrame.
var errNoFrame = errors.New("gpu: EndFrame without BeginFrame")

// frameTarget records one render pass per frame into a color view, with a
// depth/stencil buffer sized to match. The depth buffer is recreated when
// the size changes.
type frameTarget struct {
	dev   *Device
	label string

	depthTex  hal.Texture
	depthView hal.TextureView
	width     uint32
	height    uint32

	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder
}

func (t *frameTarget) ensureDepth(w, h uint32) error {
	if t.depthTex != nil && t.width == w && t.height == h {
		return nil
	}
	t.destroyDepth()

	tex, err := t.dev.device.CreateTexture(&hal.TextureDescriptor{
		Label:         t.label + "_depth",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	view, err := t.dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: t.label + "_depth_view",
	})
	if err != nil {
		t.dev.device.DestroyTexture(tex)
		return fmt.Errorf("create depth texture view: %w", err)
	}
	t.depthTex, t.depthView = tex, view
	t.width, t.height = w, h
	slogger().Debug("gpu: depth buffer resized", "target", t.label, "width", w, "height", h)
	return nil
}

// begin clears color and depth and opens the frame's render pass.
func (t *frameTarget) begin(color hal.TextureView, w, h uint32, clear g3d.Color) (hal.RenderPassEncoder, error) {
	if t.dev == nil || t.dev.device == nil {
		return nil, ErrDeviceClosed
	}
	if t.pass != nil {
		return nil, errors.New("gpu: BeginFrame called twice")
	}
	if err := t.ensureDepth(w, h); err != nil {
		return nil, err
	}

	encoder, err := t.dev.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: t.label + "_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(t.label + "_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	pass := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: t.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    color,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(clear.R), G: float64(clear.G), B: float64(clear.B), A: float64(clear.A),
			},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              t.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	t.encoder, t.pass = encoder, pass
	return pass, nil
}

// end closes the pass, lets after record extra commands (copies) and
// submits, waiting for the GPU.
func (t *frameTarget) end(after func(hal.CommandEncoder) error) error {
	if t.pass == nil {
		return errNoFrame
	}
	t.pass.End()
	encoder := t.encoder
	t.encoder, t.pass = nil, nil

	if after != nil {
		if err := after(encoder); err != nil {
			encoder.DiscardEncoding()
			return err
		}
	}
	return t.dev.submit(encoder)
}

func (t *frameTarget) destroyDepth() {
	if t.dev == nil || t.dev.device == nil {
		return
	}
	if t.depthView != nil {
		t.dev.device.DestroyTextureView(t.depthView)
		t.depthView = nil
	}
	if t.depthTex != nil {
		t.dev.device.DestroyTexture(t.depthTex)
		t.depthTex = nil
	}
	t.width, t.height = 0, 0
}

// SurfaceTarget renders into a texture view owned by someone else, such as
// the current swapchain image of a window. Call SetView before each frame.
type SurfaceTarget struct {
	target frameTarget
	view   hal.TextureView
	width  int
	height int
}

// NewSurfaceTarget creates a target drawing with dev.
func NewSurfaceTarget(dev *Device) *SurfaceTarget {
	return &SurfaceTarget{target: frameTarget{dev: dev, label: "surface"}}
}

// SetView sets the color view and its size for the next frame.
func (s *SurfaceTarget) SetView(view hal.TextureView, width, height int) {
	s.view, s.width, s.height = view, width, height
}

// Size implements g3d.Surface.
func (s *SurfaceTarget) Size() (int, int) { return s.width, s.height }

// BeginFrame implements g3d.Surface.
func (s *SurfaceTarget) BeginFrame(clear g3d.Color) (g3d.RenderPass, error) {
	if s.view == nil || s.width <= 0 || s.height <= 0 {
		return nil, ErrNoSurfaceView
	}
	return s.target.begin(s.view, uint32(s.width), uint32(s.height), clear)
}

// EndFrame implements g3d.Surface. Presentation is left to the view's owner.
func (s *SurfaceTarget) EndFrame() error {
	err := s.target.end(nil)
	s.view = nil
	return err
}

// Destroy releases the depth buffer.
func (s *SurfaceTarget) Destroy() { s.target.destroyDepth() }
