package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/geom"
)

// GeometryBuffer is mesh data uploaded once to GPU memory. Besides the
// vertex and optional triangle index buffer it carries a line-list index
// buffer for wireframe drawing.
type GeometryBuffer struct {
	dev    *Device
	layout geom.Layout

	vertex hal.Buffer
	index  hal.Buffer
	lines  hal.Buffer

	vertexCount uint32
	indexCount  uint32
	lineCount   uint32
}

// NewGeometryBuffer validates and uploads m.
func NewGeometryBuffer(dev *Device, m geom.Mesh) (*GeometryBuffer, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrDeviceClosed
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	g := &GeometryBuffer{
		dev:         dev,
		layout:      m.Layout,
		vertexCount: uint32(m.VertexCount()),
		indexCount:  uint32(len(m.Indices)),
	}

	var err error
	g.vertex, err = dev.createBuffer("geometry_vertices", m.VertexBytes(), gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	if m.Indexed() {
		g.index, err = dev.createBuffer("geometry_indices", m.IndexBytes(), gputypes.BufferUsageIndex)
		if err != nil {
			g.Destroy()
			return nil, err
		}
	}

	lines := geom.Mesh{Layout: m.Layout, Indices: m.LineIndices()}
	g.lineCount = uint32(len(lines.Indices))
	if g.lineCount > 0 {
		g.lines, err = dev.createBuffer("geometry_lines", lines.IndexBytes(), gputypes.BufferUsageIndex)
		if err != nil {
			g.Destroy()
			return nil, fmt.Errorf("wireframe indices: %w", err)
		}
	}

	slogger().Debug("gpu: geometry uploaded",
		"layout", m.Layout, "vertices", g.vertexCount, "indices", g.indexCount)
	return g, nil
}

// Layout returns the vertex layout tag.
func (g *GeometryBuffer) Layout() geom.Layout { return g.layout }

// VertexCount returns the number of vertices.
func (g *GeometryBuffer) VertexCount() int { return int(g.vertexCount) }

// IndexCount returns the number of triangle indices, 0 if not indexed.
func (g *GeometryBuffer) IndexCount() int { return int(g.indexCount) }

// Indexed reports whether the geometry has an index buffer.
func (g *GeometryBuffer) Indexed() bool { return g.index != nil }

// draw records the draw call covering the whole geometry.
func (g *GeometryBuffer) draw(pass g3d.RenderPass, wireframe bool) {
	pass.SetVertexBuffer(0, g.vertex, 0)
	switch {
	case wireframe && g.lines != nil:
		pass.SetIndexBuffer(g.lines, gputypes.IndexFormatUint32, 0)
		pass.DrawIndexed(g.lineCount, 1, 0, 0, 0)
	case g.index != nil:
		pass.SetIndexBuffer(g.index, gputypes.IndexFormatUint32, 0)
		pass.DrawIndexed(g.indexCount, 1, 0, 0, 0)
	default:
		pass.Draw(g.vertexCount, 1, 0, 0)
	}
}

// Destroy releases the buffers. Safe to call more than once.
func (g *GeometryBuffer) Destroy() {
	if g == nil || g.dev == nil {
		return
	}
	if g.dev.device == nil {
		if g.vertex != nil || g.index != nil || g.lines != nil {
			warnClosed("geometry")
			g.vertex, g.index, g.lines = nil, nil, nil
		}
		return
	}
	for _, b := range []*hal.Buffer{&g.vertex, &g.index, &g.lines} {
		if *b != nil {
			g.dev.device.DestroyBuffer(*b)
			*b = nil
		}
	}
}

// vertexLayout maps a layout tag to the pipeline's vertex buffer
// description.
func vertexLayout(l geom.Layout) []gputypes.VertexBufferLayout {
	attrs := l.Attributes()
	out := make([]gputypes.VertexAttribute, len(attrs))
	for i, a := range attrs {
		f := gputypes.VertexFormatFloat32x3
		switch a.Components {
		case 2:
			f = gputypes.VertexFormatFloat32x2
		case 4:
			f = gputypes.VertexFormatFloat32x4
		}
		out[i] = gputypes.VertexAttribute{Format: f, Offset: a.Offset, ShaderLocation: a.Location}
	}
	return []gputypes.VertexBufferLayout{{
		ArrayStride: l.Stride(),
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes:  out,
	}}
}
