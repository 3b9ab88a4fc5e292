package gpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
)

// errDestroyed is returned when a destroyed drawable is rendered.
var errDestroyed = errors.New("gpu: drawable destroyed")

// depthRemap maps OpenGL clip depth [-w, w] to WebGPU [0, w]. It is applied
// to every projection on upload; g3d cameras keep OpenGL conventions.
var depthRemap = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Mesh is a drawable: geometry drawn by a program with a transform, a
// color and optional textures. It owns its per-draw uniform buffer and
// bind group.
//
// Matrices are chosen by the program's convention. Combined programs get
// mvp = Overlay * model for KindPrimitive2D and Projection * View * model
// otherwise. Separate programs get the three matrices individually.
type Mesh struct {
	Transform g3d.Transform
	Color     g3d.Color

	kind     g3d.Kind
	dev      *Device
	program  *Program
	geometry *GeometryBuffer
	textures []*Texture

	ownGeometry bool
	ownTextures bool

	draw  *uniformBlock
	buf   hal.Buffer
	group hal.BindGroup

	warnedScale bool
	destroyed   bool
}

// MeshOption configures a Mesh.
type MeshOption func(*Mesh)

// WithColor sets the initial color. Default: white.
func WithColor(c g3d.Color) MeshOption {
	return func(m *Mesh) { m.Color = c }
}

// WithTransform sets the initial transform. Default: identity.
func WithTransform(t g3d.Transform) MeshOption {
	return func(m *Mesh) { m.Transform = t }
}

// WithTextures binds textures positionally to the program's slots.
func WithTextures(ts ...*Texture) MeshOption {
	return func(m *Mesh) { m.textures = ts }
}

// OwnGeometry makes Destroy release the geometry buffer too.
func OwnGeometry() MeshOption {
	return func(m *Mesh) { m.ownGeometry = true }
}

// OwnTextures makes Destroy release the bound textures too.
func OwnTextures() MeshOption {
	return func(m *Mesh) { m.ownTextures = true }
}

// NewMesh creates a drawable. The geometry layout must match the program
// and the number of textures must not exceed its slot count.
func NewMesh(dev *Device, kind g3d.Kind, program *Program, geometry *GeometryBuffer, opts ...MeshOption) (*Mesh, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrDeviceClosed
	}
	if program == nil || geometry == nil {
		return nil, errors.New("gpu: mesh needs a program and geometry")
	}
	if geometry.Layout() != program.Layout() {
		return nil, fmt.Errorf("%w: geometry %v, program %q wants %v",
			ErrLayoutMismatch, geometry.Layout(), program.desc.Label, program.Layout())
	}

	m := &Mesh{
		Transform: g3d.NewTransform(),
		Color:     g3d.White,
		kind:      kind,
		dev:       dev,
		program:   program,
		geometry:  geometry,
	}
	for _, opt := range opts {
		opt(m)
	}
	if len(m.textures) > program.TextureSlots() {
		return nil, fmt.Errorf("%w: %d textures, program %q has %d slots",
			ErrTooManyTextures, len(m.textures), program.desc.Label, program.TextureSlots())
	}

	m.draw = program.drawBlock.clone()
	var err error
	if m.buf, err = dev.createBuffer("mesh_draw_uniforms", m.draw.data, gputypes.BufferUsageUniform); err != nil {
		return nil, err
	}
	if err := m.rebuildGroup(); err != nil {
		m.release()
		return nil, err
	}
	return m, nil
}

// Kind reports the drawable kind given at construction.
func (m *Mesh) Kind() g3d.Kind { return m.kind }

// Program returns the program the mesh draws with.
func (m *Mesh) Program() *Program { return m.program }

// Geometry returns the mesh's geometry buffer.
func (m *Mesh) Geometry() *GeometryBuffer { return m.geometry }

// Textures returns the bound textures in slot order.
func (m *Mesh) Textures() []*Texture { return m.textures }

// SetTextures rebinds textures positionally. Unused slots sample white.
func (m *Mesh) SetTextures(ts ...*Texture) error {
	if len(ts) > m.program.TextureSlots() {
		return fmt.Errorf("%w: %d textures, program %q has %d slots",
			ErrTooManyTextures, len(ts), m.program.desc.Label, m.program.TextureSlots())
	}
	m.textures = ts
	return m.rebuildGroup()
}

func (m *Mesh) rebuildGroup() error {
	entries := []gputypes.BindGroupEntry{{
		Binding: 0,
		Resource: gputypes.BufferBinding{
			Buffer: m.buf.NativeHandle(), Offset: 0, Size: m.draw.Size(),
		},
	}}
	for i := range m.program.TextureSlots() {
		t := m.dev.white
		if i < len(m.textures) && m.textures[i] != nil {
			t = m.textures[i]
		}
		entries = append(entries, t.bindings(i)...)
	}

	group, err := m.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   m.program.desc.Label + "_draw_group",
		Layout:  m.program.drawLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create draw bind group: %w", err)
	}
	if m.group != nil {
		m.dev.device.DestroyBindGroup(m.group)
	}
	m.group = group
	return nil
}

// Render binds the program, uploads this frame's matrices and color and
// draws the whole geometry.
func (m *Mesh) Render(fc *g3d.FrameContext) error {
	if m.destroyed {
		return errDestroyed
	}
	return m.renderWith(fc, m.Transform.Matrix())
}

func (m *Mesh) renderWith(fc *g3d.FrameContext, model mgl32.Mat4) error {
	if err := m.Transform.Validate(); err != nil && !m.warnedScale {
		m.warnedScale = true
		slogger().Warn("gpu: drawable has degenerate scale", "kind", m.kind, "scale", m.Transform.Scale)
	}

	wire := fc.Wireframe && m.program.wire != nil
	if err := m.program.Bind(fc.Pass, wire); err != nil {
		return err
	}
	m.writeMatrices(fc, model)
	m.dev.queue.WriteBuffer(m.buf, 0, m.draw.data)

	fc.Pass.SetBindGroup(0, m.group, nil)
	m.geometry.draw(fc.Pass, wire)
	return nil
}

func (m *Mesh) writeMatrices(fc *g3d.FrameContext, model mgl32.Mat4) {
	b := m.draw
	if m.program.desc.Matrices == MatricesSeparate {
		u, _ := b.lookup("model")
		b.setMat4(u, model)
		u, _ = b.lookup("view")
		b.setMat4(u, fc.View)
		u, _ = b.lookup("projection")
		b.setMat4(u, depthRemap.Mul4(fc.Projection))
	} else {
		proj := fc.ViewProjection()
		if m.kind == g3d.KindPrimitive2D {
			proj = fc.Overlay
		}
		u, _ := b.lookup("mvp")
		b.setMat4(u, depthRemap.Mul4(proj).Mul4(model))
	}
	u, _ := b.lookup("color")
	b.setVec4(u, m.Color.Vec4())
}

// Destroy releases the uniform buffer and bind group, plus geometry and
// textures when owned. Safe to call more than once.
func (m *Mesh) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	m.release()
	if m.ownGeometry {
		m.geometry.Destroy()
	}
	if m.ownTextures {
		for _, t := range m.textures {
			t.Destroy()
		}
	}
}

func (m *Mesh) release() {
	if m.dev == nil {
		return
	}
	if m.dev.device == nil {
		if m.group != nil || m.buf != nil {
			warnClosed("mesh")
			m.group, m.buf = nil, nil
		}
		return
	}
	if m.group != nil {
		m.dev.device.DestroyBindGroup(m.group)
		m.group = nil
	}
	if m.buf != nil {
		m.dev.device.DestroyBuffer(m.buf)
		m.buf = nil
	}
}
