package gpu

import (
	"fmt"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/geom"
	intImage "github.com/gogpu/g3d/internal/image"
)

// NewShape uploads m and wraps it in a Mesh drawn by a built-in program.
// The mesh owns the geometry.
func NewShape(dev *Device, kind g3d.Kind, b BuiltinProgram, m geom.Mesh, opts ...MeshOption) (*Mesh, error) {
	p, err := dev.Program(b)
	if err != nil {
		return nil, err
	}
	return NewOwnedMesh(dev, kind, p, m, opts...)
}

// NewOwnedMesh uploads m and wraps it in a Mesh that owns the geometry.
func NewOwnedMesh(dev *Device, kind g3d.Kind, p *Program, m geom.Mesh, opts ...MeshOption) (*Mesh, error) {
	g, err := NewGeometryBuffer(dev, m)
	if err != nil {
		return nil, err
	}
	mesh, err := NewMesh(dev, kind, p, g, append(opts, OwnGeometry())...)
	if err != nil {
		g.Destroy()
		return nil, err
	}
	return mesh, nil
}

// NewTriangle2D creates an overlay triangle from three points.
func NewTriangle2D(dev *Device, p0, p1, p2 [2]float32, opts ...MeshOption) (*Mesh, error) {
	return NewShape(dev, g3d.KindPrimitive2D, ProgramFlat2D, geom.Triangle2D(p0, p1, p2), opts...)
}

// NewQuad2D creates an overlay quad from four points in winding order.
func NewQuad2D(dev *Device, p0, p1, p2, p3 [2]float32, opts ...MeshOption) (*Mesh, error) {
	return NewShape(dev, g3d.KindPrimitive2D, ProgramFlat2D, geom.Quad2D(p0, p1, p2, p3), opts...)
}

// NewRect2D creates a w x h overlay rectangle centred on the origin; move
// it with the Transform.
func NewRect2D(dev *Device, w, h float32, opts ...MeshOption) (*Mesh, error) {
	return NewShape(dev, g3d.KindPrimitive2D, ProgramFlat2D, geom.Rect2D(w, h), opts...)
}

// NewCircle2D creates an overlay circle with the given number of fan
// triangles.
func NewCircle2D(dev *Device, faces int, radius float32, opts ...MeshOption) (*Mesh, error) {
	m, err := geom.Circle2D(faces, radius)
	if err != nil {
		return nil, err
	}
	return NewShape(dev, g3d.KindPrimitive2D, ProgramFlat2D, m, opts...)
}

// NewTriangle3D creates a solid-color triangle in the XY plane.
func NewTriangle3D(dev *Device, opts ...MeshOption) (*Mesh, error) {
	return NewShape(dev, g3d.KindPrimitive3D, ProgramFlat3D, geom.Triangle3D(), opts...)
}

// NewCube creates a solid-color unit cube.
func NewCube(dev *Device, opts ...MeshOption) (*Mesh, error) {
	return NewShape(dev, g3d.KindPrimitive3D, ProgramFlat3D, geom.Cube(), opts...)
}

// NewLitCube creates a unit cube lit by ProgramPhong. Either map may be
// nil, in which case that slot samples white.
func NewLitCube(dev *Device, diffuse, specular *Texture, opts ...MeshOption) (*Mesh, error) {
	opts = append([]MeshOption{WithTextures(diffuse, specular)}, opts...)
	return NewShape(dev, g3d.KindTexturedMesh, ProgramPhong, geom.Cube(), opts...)
}

// NewPlane creates a textured subdivided plane in the XZ plane.
func NewPlane(dev *Device, subdivisions int, w, d float32, tex *Texture, opts ...MeshOption) (*Mesh, error) {
	m, err := geom.SubdividedPlane(subdivisions, w, d)
	if err != nil {
		return nil, err
	}
	opts = append([]MeshOption{WithTextures(tex)}, opts...)
	return NewShape(dev, g3d.KindTexturedMesh, ProgramTextured, m, opts...)
}

// NewLabel renders text into a texture and places it on an overlay quad
// whose lower-left corner is at the transform's position. screenHeight
// converts the font's pixel size to overlay units (the overlay spans 2
// units vertically) so the label is drawn at its native size.
func NewLabel(dev *Device, text string, pxSize float64, col g3d.Color, screenHeight int, opts ...MeshOption) (*Mesh, error) {
	if screenHeight <= 0 {
		return nil, fmt.Errorf("gpu: label needs a positive screen height, got %d", screenHeight)
	}
	img, err := intImage.RenderLabel(text, pxSize, col.NRGBA())
	if err != nil {
		return nil, fmt.Errorf("gpu: render label: %w", err)
	}
	tex, err := NewTexture(dev, img, WithTextureLabel("label"), WithMipmaps(false), WithRepeat(false))
	if err != nil {
		return nil, err
	}

	unit := 2 / float32(screenHeight)
	w, h := float32(img.Width())*unit, float32(img.Height())*unit
	quad := geom.Mesh{
		Layout: geom.LayoutPosition3TexCoord,
		Vertices: []float32{
			0, 0, 0, 0, 0,
			w, 0, 0, 1, 0,
			w, h, 0, 1, 1,
			0, h, 0, 0, 1,
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
	}
	opts = append([]MeshOption{WithTextures(tex), OwnTextures()}, opts...)
	m, err := NewShape(dev, g3d.KindPrimitive2D, ProgramSprite, quad, opts...)
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	return m, nil
}
