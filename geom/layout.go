// Package geom builds CPU-side vertex data for g3d drawables.
//
// Vertex data is interleaved float32. A Layout tag names which channels are
// present; the set of layouts is closed and the gpu package maps each one to
// a fixed vertex buffer description.
package geom

import "fmt"

// Layout identifies an interleaved vertex format.
type Layout uint8

// Vertex layouts. Channel order within a vertex is always
// position, normal, texcoord.
const (
	// LayoutPosition2 is a 2D position (x, y), for overlay primitives.
	LayoutPosition2 Layout = iota + 1
	// LayoutPosition3 is a 3D position.
	LayoutPosition3
	// LayoutPosition3Normal is position + normal.
	LayoutPosition3Normal
	// LayoutPosition3TexCoord is position + texcoord.
	LayoutPosition3TexCoord
	// LayoutPosition3NormalTexCoord is position + normal + texcoord.
	LayoutPosition3NormalTexCoord
)

// Attribute is one channel within a vertex.
type Attribute struct {
	Location   uint32
	Components int    // float32 count
	Offset     uint64 // bytes from the start of the vertex
}

// String returns the layout name.
func (l Layout) String() string {
	switch l {
	case LayoutPosition2:
		return "pos2"
	case LayoutPosition3:
		return "pos3"
	case LayoutPosition3Normal:
		return "pos3+normal"
	case LayoutPosition3TexCoord:
		return "pos3+uv"
	case LayoutPosition3NormalTexCoord:
		return "pos3+normal+uv"
	default:
		return fmt.Sprintf("Layout(%d)", uint8(l))
	}
}

// Valid reports whether l is one of the defined layouts.
func (l Layout) Valid() bool {
	return l >= LayoutPosition2 && l <= LayoutPosition3NormalTexCoord
}

// Components returns the number of float32 values per vertex.
func (l Layout) Components() int {
	n := 0
	for _, a := range l.Attributes() {
		n += a.Components
	}
	return n
}

// Stride returns the byte size of one vertex.
func (l Layout) Stride() uint64 {
	return uint64(l.Components()) * 4
}

// HasNormal reports whether the layout carries normals.
func (l Layout) HasNormal() bool {
	return l == LayoutPosition3Normal || l == LayoutPosition3NormalTexCoord
}

// HasTexCoord reports whether the layout carries texture coordinates.
func (l Layout) HasTexCoord() bool {
	return l == LayoutPosition3TexCoord || l == LayoutPosition3NormalTexCoord
}

// Attributes returns the channels of the layout. Shader locations are
// fixed: position 0, normal 1, texcoord 2.
func (l Layout) Attributes() []Attribute {
	switch l {
	case LayoutPosition2:
		return []Attribute{{Location: 0, Components: 2, Offset: 0}}
	case LayoutPosition3:
		return []Attribute{{Location: 0, Components: 3, Offset: 0}}
	case LayoutPosition3Normal:
		return []Attribute{
			{Location: 0, Components: 3, Offset: 0},
			{Location: 1, Components: 3, Offset: 12},
		}
	case LayoutPosition3TexCoord:
		return []Attribute{
			{Location: 0, Components: 3, Offset: 0},
			{Location: 2, Components: 2, Offset: 12},
		}
	case LayoutPosition3NormalTexCoord:
		return []Attribute{
			{Location: 0, Components: 3, Offset: 0},
			{Location: 1, Components: 3, Offset: 12},
			{Location: 2, Components: 2, Offset: 24},
		}
	default:
		return nil
	}
}
