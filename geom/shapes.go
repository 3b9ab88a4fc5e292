package geom

import (
	"errors"
	"math"
)

// ErrShapeParams is returned for non-positive sizes or too few segments.
var ErrShapeParams = errors.New("geom: invalid shape parameters")

// Triangle2D returns a non-indexed 2D triangle from three (x, y) points.
func Triangle2D(p0, p1, p2 [2]float32) Mesh {
	return Mesh{
		Layout:   LayoutPosition2,
		Vertices: []float32{p0[0], p0[1], p1[0], p1[1], p2[0], p2[1]},
	}
}

// Quad2D splits the quad p0 p1 p2 p3 into the triangles (p0, p1, p2) and
// (p0, p2, p3). Points must be given in winding order.
func Quad2D(p0, p1, p2, p3 [2]float32) Mesh {
	return Mesh{
		Layout: LayoutPosition2,
		Vertices: []float32{
			p0[0], p0[1], p1[0], p1[1], p2[0], p2[1],
			p0[0], p0[1], p2[0], p2[1], p3[0], p3[1],
		},
	}
}

// Rect2D returns an axis-aligned rectangle of size w x h centred on the origin.
func Rect2D(w, h float32) Mesh {
	x, y := w/2, h/2
	return Quad2D([2]float32{-x, -y}, [2]float32{x, -y}, [2]float32{x, y}, [2]float32{-x, y})
}

// Circle2D returns a triangle fan approximation of a circle centred on the
// origin, flattened into a triangle list of faces*3 vertices.
func Circle2D(faces int, radius float32) (Mesh, error) {
	if faces < 3 || radius <= 0 {
		return Mesh{}, ErrShapeParams
	}
	step := 2 * math.Pi / float64(faces)
	v := make([]float32, 0, faces*6)
	for i := range faces {
		a0 := float64(i) * step
		a1 := float64(i+1) * step
		v = append(v,
			0, 0,
			float32(math.Cos(a0))*radius, float32(math.Sin(a0))*radius,
			float32(math.Cos(a1))*radius, float32(math.Sin(a1))*radius,
		)
	}
	return Mesh{Layout: LayoutPosition2, Vertices: v}, nil
}

// Triangle3D returns a unit triangle in the XY plane facing +Z, with
// normals and texture coordinates.
func Triangle3D() Mesh {
	return Mesh{
		Layout: LayoutPosition3NormalTexCoord,
		Vertices: []float32{
			-0.5, -0.5, 0, 0, 0, 1, 0, 0,
			0.5, -0.5, 0, 0, 0, 1, 1, 0,
			0, 0.5, 0, 0, 0, 1, 0.5, 1,
		},
	}
}

// Cube returns a unit cube centred on the origin: 24 vertices (4 per face,
// so each face has its own normal and UVs) and 36 indices.
func Cube() Mesh {
	return Mesh{
		Layout: LayoutPosition3NormalTexCoord,
		Vertices: []float32{
			// back (-Z)
			-0.5, -0.5, -0.5, 0, 0, -1, 0, 0,
			0.5, -0.5, -0.5, 0, 0, -1, 1, 0,
			0.5, 0.5, -0.5, 0, 0, -1, 1, 1,
			-0.5, 0.5, -0.5, 0, 0, -1, 0, 1,
			// front (+Z)
			-0.5, -0.5, 0.5, 0, 0, 1, 0, 0,
			0.5, -0.5, 0.5, 0, 0, 1, 1, 0,
			0.5, 0.5, 0.5, 0, 0, 1, 1, 1,
			-0.5, 0.5, 0.5, 0, 0, 1, 0, 1,
			// left (-X)
			-0.5, -0.5, -0.5, -1, 0, 0, 0, 1,
			-0.5, -0.5, 0.5, -1, 0, 0, 0, 0,
			-0.5, 0.5, 0.5, -1, 0, 0, 1, 0,
			-0.5, 0.5, -0.5, -1, 0, 0, 1, 1,
			// right (+X)
			0.5, -0.5, 0.5, 1, 0, 0, 0, 0,
			0.5, -0.5, -0.5, 1, 0, 0, 0, 1,
			0.5, 0.5, -0.5, 1, 0, 0, 1, 1,
			0.5, 0.5, 0.5, 1, 0, 0, 1, 0,
			// bottom (-Y)
			-0.5, -0.5, -0.5, 0, -1, 0, 0, 1,
			0.5, -0.5, -0.5, 0, -1, 0, 1, 1,
			0.5, -0.5, 0.5, 0, -1, 0, 1, 0,
			-0.5, -0.5, 0.5, 0, -1, 0, 0, 0,
			// top (+Y)
			-0.5, 0.5, -0.5, 0, 1, 0, 0, 1,
			0.5, 0.5, -0.5, 0, 1, 0, 1, 1,
			0.5, 0.5, 0.5, 0, 1, 0, 1, 0,
			-0.5, 0.5, 0.5, 0, 1, 0, 0, 0,
		},
		Indices: []uint32{
			0, 1, 2, 2, 3, 0,
			4, 5, 6, 6, 7, 4,
			8, 9, 10, 10, 11, 8,
			12, 13, 14, 14, 15, 12,
			16, 17, 18, 18, 19, 16,
			20, 21, 22, 22, 23, 20,
		},
	}
}

// Plane returns a single-quad plane of size w x d in the XZ plane facing +Y.
func Plane(w, d float32) (Mesh, error) {
	return SubdividedPlane(1, w, d)
}

// SubdividedPlane returns an n x n grid in the XZ plane centred on the
// origin, (n+1)^2 vertices of (x, 0, z, u, v) and two triangles per cell.
func SubdividedPlane(n int, w, d float32) (Mesh, error) {
	if n < 1 || w <= 0 || d <= 0 {
		return Mesh{}, ErrShapeParams
	}
	row := uint32(n + 1)
	v := make([]float32, 0, int(row*row)*5)
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			u := float32(i) / float32(n)
			t := float32(j) / float32(n)
			v = append(v, -w/2+w*u, 0, -d/2+d*t, u, t)
		}
	}

	idx := make([]uint32, 0, n*n*6)
	for i := range uint32(n) {
		for j := range uint32(n) {
			base := i*row + j
			idx = append(idx,
				base, base+1, base+row,
				base+1, base+row+1, base+row,
			)
		}
	}
	return Mesh{Layout: LayoutPosition3TexCoord, Vertices: v, Indices: idx}, nil
}
