package g3d

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// RenderPass is the subset of hal.RenderPassEncoder drawables record into.
type RenderPass interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

// FrameContext is everything a drawable may read while rendering one frame.
// The loop builds a fresh value per tick; drawables must not retain it.
type FrameContext struct {
	// Camera is a snapshot of the active camera for this frame.
	Camera Camera

	// View and Projection are derived once per frame from Camera.
	View       mgl32.Mat4
	Projection mgl32.Mat4

	// Overlay is the aspect-corrected orthographic projection for 2D
	// primitives: x in [-aspect, aspect], y in [-1, 1].
	Overlay mgl32.Mat4

	Input InputState
	Pass  RenderPass

	Width, Height int
	Frame         uint64
	Delta         time.Duration

	// Wireframe asks drawables that support it to draw edges only.
	Wireframe bool
}

// Aspect returns the surface aspect ratio, or 1 for an empty surface.
func (fc *FrameContext) Aspect() float32 {
	if fc.Width <= 0 || fc.Height <= 0 {
		return 1
	}
	return float32(fc.Width) / float32(fc.Height)
}

// ViewProjection returns Projection * View.
func (fc *FrameContext) ViewProjection() mgl32.Mat4 {
	return fc.Projection.Mul4(fc.View)
}

// OverlayProjection returns the 2D projection for a surface aspect ratio.
func OverlayProjection(aspect float32) mgl32.Mat4 {
	return mgl32.Ortho(-aspect, aspect, -1, 1, -1, 1)
}
