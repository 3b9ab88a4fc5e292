package g3d

import "time"

// Key identifies a keyboard key. Values are engine-defined; window adapters
// translate native key codes into them.
type Key uint16

// Keys used by the engine and its demos.
const (
	KeyUnknown Key = iota
	KeySpace
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyLeftShift
	KeyRightShift
	KeyLeftControl
	KeyRightControl
	KeyLeftAlt
	KeyRightAlt
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeyCount is the size of the key tables.
	KeyCount
)

// MouseButton identifies a mouse button.
type MouseButton uint8

// Mouse buttons.
const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseButton4
	MouseButton5

	// MouseButtonCount is the size of the button tables.
	MouseButtonCount
)

// Input accumulates raw window events between frames.
//
// Window adapters write the live tables with SetKey, SetMouseButton and
// SetMousePosition as events arrive. Once per tick the frame loop calls
// Advance, which replaces the current tables wholesale and returns an
// immutable InputState for the frame.
type Input struct {
	keys    [KeyCount]bool
	buttons [MouseButtonCount]bool
	x, y    float64

	state    InputState
	lastTick time.Time
	now      func() time.Time
}

// NewInput returns an empty input accumulator.
func NewInput() *Input {
	return &Input{now: time.Now}
}

// SetKey records a key transition. Unknown or out-of-range keys are ignored.
func (in *Input) SetKey(k Key, down bool) {
	if k == KeyUnknown || k >= KeyCount {
		return
	}
	in.keys[k] = down
}

// SetMouseButton records a mouse button transition.
func (in *Input) SetMouseButton(b MouseButton, down bool) {
	if b >= MouseButtonCount {
		return
	}
	in.buttons[b] = down
}

// SetMousePosition records the absolute cursor position in window pixels.
func (in *Input) SetMousePosition(x, y float64) {
	in.x, in.y = x, y
}

// Advance rolls current into previous, copies the live tables into current
// and measures the time since the previous Advance.
func (in *Input) Advance() InputState {
	now := in.clock()
	var dt time.Duration
	if !in.lastTick.IsZero() {
		dt = now.Sub(in.lastTick)
	}
	in.lastTick = now

	prev := in.state
	in.state = InputState{
		keys:        in.keys,
		prevKeys:    prev.keys,
		buttons:     in.buttons,
		prevButtons: prev.buttons,
		x:           in.x,
		y:           in.y,
		prevX:       prev.x,
		prevY:       prev.y,
		dt:          dt,
		first:       !prev.started,
		frame:       prev.frame + 1,
		started:     true,
	}
	return in.state
}

// State returns the state produced by the last Advance.
func (in *Input) State() InputState {
	return in.state
}

func (in *Input) clock() time.Time {
	if in.now == nil {
		return time.Now()
	}
	return in.now()
}

// InputState is an immutable per-frame snapshot of the input tables.
// Edge queries compare the current and previous tables.
type InputState struct {
	keys, prevKeys       [KeyCount]bool
	buttons, prevButtons [MouseButtonCount]bool
	x, y, prevX, prevY   float64
	dt                   time.Duration
	frame                uint64
	first, started       bool
}

// KeyDown reports whether k is held this frame.
func (s InputState) KeyDown(k Key) bool {
	return k < KeyCount && s.keys[k]
}

// KeyPressed reports whether k went down this frame.
func (s InputState) KeyPressed(k Key) bool {
	return k < KeyCount && s.keys[k] && !s.prevKeys[k]
}

// KeyReleased reports whether k went up this frame.
func (s InputState) KeyReleased(k Key) bool {
	return k < KeyCount && !s.keys[k] && s.prevKeys[k]
}

// MouseDown reports whether b is held this frame.
func (s InputState) MouseDown(b MouseButton) bool {
	return b < MouseButtonCount && s.buttons[b]
}

// MousePressed reports whether b went down this frame.
func (s InputState) MousePressed(b MouseButton) bool {
	return b < MouseButtonCount && s.buttons[b] && !s.prevButtons[b]
}

// MouseReleased reports whether b went up this frame.
func (s InputState) MouseReleased(b MouseButton) bool {
	return b < MouseButtonCount && !s.buttons[b] && s.prevButtons[b]
}

// MousePosition returns the absolute cursor position.
func (s InputState) MousePosition() (x, y float64) {
	return s.x, s.y
}

// MouseDelta returns the cursor movement since the previous frame.
// The first frame reports zero so an initial cursor jump is not applied.
func (s InputState) MouseDelta() (dx, dy float64) {
	if s.first {
		return 0, 0
	}
	return s.x - s.prevX, s.y - s.prevY
}

// Delta returns the time elapsed since the previous frame.
func (s InputState) Delta() time.Duration {
	return s.dt
}

// Frame returns the 1-based tick number that produced this state.
func (s InputState) Frame() uint64 {
	return s.frame
}
