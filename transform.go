package g3d

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a drawable in world space.
//
// Rotation holds Euler angles in degrees. The model matrix is composed as
//
//	T(Position) * Rx(Rotation.X) * Ry(Rotation.Y) * Rz(Rotation.Z) * S(Scale)
//
// and the X, Y, Z order is fixed.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// NewTransform returns the identity transform: origin, no rotation, unit scale.
func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}}
}

// At returns an unrotated unit-scale transform at position p.
func At(p mgl32.Vec3) Transform {
	t := NewTransform()
	t.Position = p
	return t
}

// Matrix returns the model matrix.
func (t Transform) Matrix() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rx := mgl32.HomogRotate3DX(mgl32.DegToRad(t.Rotation.X()))
	ry := mgl32.HomogRotate3DY(mgl32.DegToRad(t.Rotation.Y()))
	rz := mgl32.HomogRotate3DZ(mgl32.DegToRad(t.Rotation.Z()))
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rx).Mul4(ry).Mul4(rz).Mul4(scale)
}

// Validate reports ErrDegenerateScale when a scale component is zero.
// Nothing stops a caller from animating scale through zero, so drawables
// check this on demand rather than on every mutation.
func (t Transform) Validate() error {
	for i := range 3 {
		if t.Scale[i] == 0 {
			return fmt.Errorf("%w: scale=%v", ErrDegenerateScale, t.Scale)
		}
	}
	return nil
}

// Translate moves the transform by d.
func (t *Transform) Translate(d mgl32.Vec3) {
	t.Position = t.Position.Add(d)
}

// Rotate adds Euler angles (degrees) to the current rotation.
func (t *Transform) Rotate(deg mgl32.Vec3) {
	t.Rotation = t.Rotation.Add(deg)
}

// ScaleComponents extracts the per-axis scale of a model matrix built from
// positive scale factors: the length of each basis column.
func ScaleComponents(m mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}
