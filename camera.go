package g3d

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Default perspective parameters.
const (
	DefaultFovY   = 70 * math.Pi / 180
	DefaultAspect = 16.0 / 9.0
	DefaultNear   = 0.025
	DefaultFar    = 100
)

// Camera derives view and projection matrices.
// It is a plain value: copying it yields an independent snapshot.
type Camera struct {
	Position mgl32.Vec3
	Look     mgl32.Vec3 // direction, normalized on use
	Up       mgl32.Vec3

	FovY   float32 // radians
	Aspect float32
	Near   float32
	Far    float32
}

// NewCamera returns a camera with the default perspective parameters.
func NewCamera(position, look, up mgl32.Vec3) Camera {
	return Camera{
		Position: position,
		Look:     look,
		Up:       up,
		FovY:     DefaultFovY,
		Aspect:   DefaultAspect,
		Near:     DefaultNear,
		Far:      DefaultFar,
	}
}

// Direction returns the normalized look vector.
func (c Camera) Direction() (mgl32.Vec3, error) {
	l := c.Look.Len()
	if l == 0 || isBad(l) {
		return mgl32.Vec3{}, fmt.Errorf("%w: zero-length look vector", ErrInvalidCamera)
	}
	return c.Look.Mul(1 / l), nil
}

// View returns the look-at matrix from Position toward Position+normalize(Look).
func (c Camera) View() (mgl32.Mat4, error) {
	dir, err := c.Direction()
	if err != nil {
		return mgl32.Mat4{}, err
	}
	if c.Up.Len() == 0 {
		return mgl32.Mat4{}, fmt.Errorf("%w: zero-length up vector", ErrInvalidCamera)
	}
	if dir.Cross(c.Up).Len() < 1e-6 {
		return mgl32.Mat4{}, fmt.Errorf("%w: up vector parallel to look", ErrInvalidCamera)
	}
	return mgl32.LookAtV(c.Position, c.Position.Add(dir), c.Up), nil
}

// Projection returns the perspective matrix (OpenGL clip space, z in [-1, 1]).
func (c Camera) Projection() (mgl32.Mat4, error) {
	switch {
	case isBad(c.FovY) || isBad(c.Aspect) || isBad(c.Near) || isBad(c.Far):
		return mgl32.Mat4{}, fmt.Errorf("%w: non-finite parameter", ErrInvalidCamera)
	case c.Near <= 0:
		return mgl32.Mat4{}, fmt.Errorf("%w: near=%g must be positive", ErrInvalidCamera, c.Near)
	case c.Far <= c.Near:
		return mgl32.Mat4{}, fmt.Errorf("%w: far=%g must exceed near=%g", ErrInvalidCamera, c.Far, c.Near)
	case c.FovY <= 0 || c.FovY >= math.Pi:
		return mgl32.Mat4{}, fmt.Errorf("%w: fov=%g outside (0, pi)", ErrInvalidCamera, c.FovY)
	case c.Aspect <= 0:
		return mgl32.Mat4{}, fmt.Errorf("%w: aspect=%g must be positive", ErrInvalidCamera, c.Aspect)
	}
	return mgl32.Perspective(c.FovY, c.Aspect, c.Near, c.Far), nil
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection() (mgl32.Mat4, error) {
	v, err := c.View()
	if err != nil {
		return mgl32.Mat4{}, err
	}
	p, err := c.Projection()
	if err != nil {
		return mgl32.Mat4{}, err
	}
	return p.Mul4(v), nil
}

func isBad(f float32) bool {
	return math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)
}
