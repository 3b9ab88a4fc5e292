package g3d

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// approxSlice compares element-wise with an absolute tolerance, so values
// near zero are not held to a relative bound.
func approxSlice(a, b []float32, eps float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

func approxVec3(a, b mgl32.Vec3, eps float64) bool { return approxSlice(a[:], b[:], eps) }
func approxVec4(a, b mgl32.Vec4, eps float64) bool { return approxSlice(a[:], b[:], eps) }
func approxMat4(a, b mgl32.Mat4, eps float64) bool { return approxSlice(a[:], b[:], eps) }

func TestTransformIdentity(t *testing.T) {
	got := NewTransform().Matrix()
	if !approxMat4(got, mgl32.Ident4(), 1e-6) {
		t.Errorf("identity transform Matrix() = %v, want Ident4", got)
	}
}

func TestTransformScaleRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
	}{
		{"unit", NewTransform()},
		{"uniform", Transform{Scale: mgl32.Vec3{2, 2, 2}}},
		{"non-uniform", Transform{Scale: mgl32.Vec3{0.5, 3, 7}}},
		{"rotated", Transform{Rotation: mgl32.Vec3{30, 45, 60}, Scale: mgl32.Vec3{1.5, 0.25, 4}}},
		{"translated", Transform{Position: mgl32.Vec3{10, -3, 2}, Rotation: mgl32.Vec3{90, 0, 180}, Scale: mgl32.Vec3{2, 3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleComponents(tt.tr.Matrix())
			if !approxVec3(got, tt.tr.Scale, 1e-4) {
				t.Errorf("ScaleComponents = %v, want %v", got, tt.tr.Scale)
			}
		})
	}
}

func TestTransformCompositionOrder(t *testing.T) {
	tr := Transform{
		Position: mgl32.Vec3{1, 2, 3},
		Rotation: mgl32.Vec3{10, 20, 30},
		Scale:    mgl32.Vec3{2, 2, 2},
	}
	want := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(10))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(20))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(30))).
		Mul4(mgl32.Scale3D(2, 2, 2))

	if got := tr.Matrix(); !approxMat4(got, want, 1e-5) {
		t.Errorf("Matrix() = %v, want %v", got, want)
	}

	// Z rotation of 90 degrees maps +X to +Y.
	rz := Transform{Rotation: mgl32.Vec3{0, 0, 90}, Scale: mgl32.Vec3{1, 1, 1}}
	p := rz.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if !approxVec4(p, mgl32.Vec4{0, 1, 0, 1}, 1e-5) {
		t.Errorf("RotZ(90) * X = %v, want (0,1,0,1)", p)
	}
}

func TestTransformValidate(t *testing.T) {
	if err := NewTransform().Validate(); err != nil {
		t.Errorf("identity Validate() = %v", err)
	}
	bad := Transform{Scale: mgl32.Vec3{1, 0, 1}}
	if err := bad.Validate(); !errors.Is(err, ErrDegenerateScale) {
		t.Errorf("zero scale Validate() = %v, want ErrDegenerateScale", err)
	}
}

func TestTransformMutators(t *testing.T) {
	tr := At(mgl32.Vec3{1, 0, 0})
	tr.Translate(mgl32.Vec3{0, 2, 0})
	tr.Rotate(mgl32.Vec3{0, 45, 0})
	tr.Rotate(mgl32.Vec3{0, 45, 0})

	if tr.Position != (mgl32.Vec3{1, 2, 0}) {
		t.Errorf("Position = %v", tr.Position)
	}
	if tr.Rotation != (mgl32.Vec3{0, 90, 0}) {
		t.Errorf("Rotation = %v", tr.Rotation)
	}
	if tr.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("Scale = %v", tr.Scale)
	}
}
