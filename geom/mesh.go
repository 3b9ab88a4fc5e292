package geom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh errors.
var (
	// ErrEmptyGeometry is returned for a mesh with no vertices.
	ErrEmptyGeometry = errors.New("geom: empty geometry")

	// ErrInvalidLayout is returned for an undefined layout tag.
	ErrInvalidLayout = errors.New("geom: invalid layout")

	// ErrVertexData is returned when the vertex slice is not a whole number
	// of vertices.
	ErrVertexData = errors.New("geom: vertex data does not match layout")

	// ErrIndexRange is returned when an index points past the last vertex.
	ErrIndexRange = errors.New("geom: index out of range")
)

// Mesh is interleaved triangle-list vertex data with optional indices.
type Mesh struct {
	Layout   Layout
	Vertices []float32
	Indices  []uint32 // nil for non-indexed drawing
}

// Validate checks that the mesh can be uploaded.
func (m *Mesh) Validate() error {
	if !m.Layout.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidLayout, m.Layout)
	}
	if len(m.Vertices) == 0 {
		return ErrEmptyGeometry
	}
	comps := m.Layout.Components()
	if len(m.Vertices)%comps != 0 {
		return fmt.Errorf("%w: %d floats for %s", ErrVertexData, len(m.Vertices), m.Layout)
	}
	n := uint32(len(m.Vertices) / comps)
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d]=%d, vertices=%d", ErrIndexRange, i, idx, n)
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	c := m.Layout.Components()
	if c == 0 {
		return 0
	}
	return len(m.Vertices) / c
}

// Indexed reports whether the mesh draws through an index buffer.
func (m *Mesh) Indexed() bool { return len(m.Indices) > 0 }

// DrawCount is the number of vertices or indices a draw call covers.
func (m *Mesh) DrawCount() int {
	if m.Indexed() {
		return len(m.Indices)
	}
	return m.VertexCount()
}

// TriangleCount returns the number of triangles drawn.
func (m *Mesh) TriangleCount() int {
	return m.DrawCount() / 3
}

// Position returns the position of vertex i (z = 0 for 2D layouts).
func (m *Mesh) Position(i int) mgl32.Vec3 {
	c := m.Layout.Components()
	v := m.Vertices[i*c:]
	if m.Layout == LayoutPosition2 {
		return mgl32.Vec3{v[0], v[1], 0}
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

// Bounds returns the axis-aligned bounding box of all positions.
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return lo, hi
	}
	lo = m.Position(0)
	hi = lo
	for i := 1; i < n; i++ {
		p := m.Position(i)
		for k := range 3 {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// VertexBytes packs the vertices as little-endian float32.
func (m *Mesh) VertexBytes() []byte {
	buf := make([]byte, len(m.Vertices)*4)
	for i, f := range m.Vertices {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// IndexBytes packs the indices as little-endian uint32.
func (m *Mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// LineIndices returns a line-list index buffer covering every unique
// triangle edge, for wireframe rendering.
func (m *Mesh) LineIndices() []uint32 {
	tri := m.Indices
	if !m.Indexed() {
		tri = make([]uint32, m.VertexCount())
		for i := range tri {
			tri[i] = uint32(i)
		}
	}

	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(tri))
	lines := make([]uint32, 0, len(tri)*2)
	add := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		lines = append(lines, a, b)
	}
	for i := 0; i+2 < len(tri); i += 3 {
		add(tri[i], tri[i+1])
		add(tri[i+1], tri[i+2])
		add(tri[i+2], tri[i])
	}
	return lines
}
