package g3d

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// steppedInput returns an Input whose clock advances by step per Advance.
func steppedInput(step time.Duration) *Input {
	clock := time.Unix(0, 0)
	return &Input{now: func() time.Time {
		clock = clock.Add(step)
		return clock
	}}
}

func TestFlyCameraDefaultLook(t *testing.T) {
	f := NewFlyCamera()
	got := f.Front()
	if !approxVec3(got, mgl32.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("Front() = %v, want (0,0,-1)", got)
	}
}

func TestFlyCameraPitchClamp(t *testing.T) {
	f := NewFlyCamera()
	in := steppedInput(time.Millisecond)
	cam := NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})

	in.SetMousePosition(0, 0)
	f.Update(in.Advance(), &cam)
	// Moving the mouse up by a lot pitches up, never past the limit.
	in.SetMousePosition(0, -10000)
	f.Update(in.Advance(), &cam)

	if f.Pitch != 89 {
		t.Errorf("Pitch = %g, want 89", f.Pitch)
	}
	if _, err := cam.View(); err != nil {
		t.Errorf("clamped pitch produced invalid view: %v", err)
	}
	if l := cam.Look.Len(); l < 0.999 || l > 1.001 {
		t.Errorf("look length = %g, want 1", l)
	}
}

func TestFlyCameraMovement(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want mgl32.Vec3
	}{
		{"forward", KeyW, mgl32.Vec3{0, 0, -7}},
		{"back", KeyS, mgl32.Vec3{0, 0, 7}},
		{"left", KeyA, mgl32.Vec3{-7, 0, 0}},
		{"right", KeyD, mgl32.Vec3{7, 0, 0}},
		{"up", KeySpace, mgl32.Vec3{0, 7, 0}},
		{"down", KeyLeftShift, mgl32.Vec3{0, -7, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFlyCamera()
			in := steppedInput(time.Second)
			cam := NewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})

			in.Advance() // establishes the clock
			in.SetKey(tt.key, true)
			f.Update(in.Advance(), &cam)

			if !approxVec3(cam.Position, tt.want, 1e-4) {
				t.Errorf("Position = %v, want %v", cam.Position, tt.want)
			}
		})
	}
}
