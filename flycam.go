package g3d

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// FlyBindings maps movement directions to keys.
type FlyBindings struct {
	Forward, Back, Left, Right, Up, Down Key
}

// DefaultFlyBindings is WASD plus space to rise and left shift to sink.
var DefaultFlyBindings = FlyBindings{
	Forward: KeyW,
	Back:    KeyS,
	Left:    KeyA,
	Right:   KeyD,
	Up:      KeySpace,
	Down:    KeyLeftShift,
}

// FlyCamera steers a Camera with mouse look and keyboard movement.
// Yaw and pitch are in degrees; yaw -90 looks down -Z.
type FlyCamera struct {
	Yaw, Pitch  float64
	Sensitivity float64 // degrees per pixel
	Speed       float64 // units per second
	MaxPitch    float64
	Bindings    FlyBindings
}

// NewFlyCamera returns a controller looking down -Z.
func NewFlyCamera() *FlyCamera {
	return &FlyCamera{
		Yaw:         -90,
		Sensitivity: 0.15,
		Speed:       7,
		MaxPitch:    89,
		Bindings:    DefaultFlyBindings,
	}
}

// Update applies one frame of input to cam. Mouse movement turns the view,
// held keys move the camera on the horizontal plane and along world Y.
func (f *FlyCamera) Update(in InputState, cam *Camera) {
	dx, dy := in.MouseDelta()
	f.Yaw += dx * f.Sensitivity
	f.Pitch -= dy * f.Sensitivity
	f.Pitch = max(-f.MaxPitch, min(f.MaxPitch, f.Pitch))

	cam.Look = f.Front()

	step := float32(f.Speed * in.Delta().Seconds())
	if step == 0 {
		return
	}
	yaw := float64(mgl32.DegToRad(float32(f.Yaw)))
	forward := mgl32.Vec3{float32(math.Cos(yaw)), 0, float32(math.Sin(yaw))}
	right := mgl32.Vec3{-float32(math.Sin(yaw)), 0, float32(math.Cos(yaw))}

	b := f.Bindings
	if in.KeyDown(b.Forward) {
		cam.Position = cam.Position.Add(forward.Mul(step))
	}
	if in.KeyDown(b.Back) {
		cam.Position = cam.Position.Sub(forward.Mul(step))
	}
	if in.KeyDown(b.Right) {
		cam.Position = cam.Position.Add(right.Mul(step))
	}
	if in.KeyDown(b.Left) {
		cam.Position = cam.Position.Sub(right.Mul(step))
	}
	if in.KeyDown(b.Up) {
		cam.Position[1] += step
	}
	if in.KeyDown(b.Down) {
		cam.Position[1] -= step
	}
}

// Front returns the unit look vector for the current yaw and pitch.
func (f *FlyCamera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(float32(f.Yaw)))
	pitch := float64(mgl32.DegToRad(float32(f.Pitch)))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// UpdateFunc adapts the controller to a FrameLoop update hook.
func (f *FlyCamera) UpdateFunc() UpdateFunc {
	return func(in InputState, _ time.Duration, cam *Camera) {
		f.Update(in, cam)
	}
}
