package window

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/g3d"
)

// keyMap translates gogpu key codes to engine keys.
var keyMap = map[gpucontext.Key]g3d.Key{
	gpucontext.KeySpace:        g3d.KeySpace,
	gpucontext.KeyEscape:       g3d.KeyEscape,
	gpucontext.KeyEnter:        g3d.KeyEnter,
	gpucontext.KeyTab:          g3d.KeyTab,
	gpucontext.KeyBackspace:    g3d.KeyBackspace,
	gpucontext.KeyLeft:         g3d.KeyLeft,
	gpucontext.KeyRight:        g3d.KeyRight,
	gpucontext.KeyUp:           g3d.KeyUp,
	gpucontext.KeyDown:         g3d.KeyDown,
	gpucontext.KeyLeftShift:    g3d.KeyLeftShift,
	gpucontext.KeyRightShift:   g3d.KeyRightShift,
	gpucontext.KeyLeftControl:  g3d.KeyLeftControl,
	gpucontext.KeyRightControl: g3d.KeyRightControl,
	gpucontext.KeyLeftAlt:      g3d.KeyLeftAlt,
	gpucontext.KeyRightAlt:     g3d.KeyRightAlt,

	gpucontext.Key0: g3d.Key0, gpucontext.Key1: g3d.Key1, gpucontext.Key2: g3d.Key2,
	gpucontext.Key3: g3d.Key3, gpucontext.Key4: g3d.Key4, gpucontext.Key5: g3d.Key5,
	gpucontext.Key6: g3d.Key6, gpucontext.Key7: g3d.Key7, gpucontext.Key8: g3d.Key8,
	gpucontext.Key9: g3d.Key9,

	gpucontext.KeyA: g3d.KeyA, gpucontext.KeyB: g3d.KeyB, gpucontext.KeyC: g3d.KeyC,
	gpucontext.KeyD: g3d.KeyD, gpucontext.KeyE: g3d.KeyE, gpucontext.KeyF: g3d.KeyF,
	gpucontext.KeyG: g3d.KeyG, gpucontext.KeyH: g3d.KeyH, gpucontext.KeyI: g3d.KeyI,
	gpucontext.KeyJ: g3d.KeyJ, gpucontext.KeyK: g3d.KeyK, gpucontext.KeyL: g3d.KeyL,
	gpucontext.KeyM: g3d.KeyM, gpucontext.KeyN: g3d.KeyN, gpucontext.KeyO: g3d.KeyO,
	gpucontext.KeyP: g3d.KeyP, gpucontext.KeyQ: g3d.KeyQ, gpucontext.KeyR: g3d.KeyR,
	gpucontext.KeyS: g3d.KeyS, gpucontext.KeyT: g3d.KeyT, gpucontext.KeyU: g3d.KeyU,
	gpucontext.KeyV: g3d.KeyV, gpucontext.KeyW: g3d.KeyW, gpucontext.KeyX: g3d.KeyX,
	gpucontext.KeyY: g3d.KeyY, gpucontext.KeyZ: g3d.KeyZ,

	gpucontext.KeyF1: g3d.KeyF1, gpucontext.KeyF2: g3d.KeyF2, gpucontext.KeyF3: g3d.KeyF3,
	gpucontext.KeyF4: g3d.KeyF4, gpucontext.KeyF5: g3d.KeyF5, gpucontext.KeyF6: g3d.KeyF6,
	gpucontext.KeyF7: g3d.KeyF7, gpucontext.KeyF8: g3d.KeyF8, gpucontext.KeyF9: g3d.KeyF9,
	gpucontext.KeyF10: g3d.KeyF10, gpucontext.KeyF11: g3d.KeyF11, gpucontext.KeyF12: g3d.KeyF12,
}

// MapKey returns the engine key for a gogpu key, KeyUnknown if unmapped.
func MapKey(k gpucontext.Key) g3d.Key {
	if gk, ok := keyMap[k]; ok {
		return gk
	}
	return g3d.KeyUnknown
}

// MapButton returns the engine mouse button for a gogpu button. Unknown
// buttons map to MouseButtonCount, which Input ignores.
func MapButton(b gpucontext.MouseButton) g3d.MouseButton {
	switch b {
	case gpucontext.MouseButtonLeft:
		return g3d.MouseLeft
	case gpucontext.MouseButtonRight:
		return g3d.MouseRight
	case gpucontext.MouseButtonMiddle:
		return g3d.MouseMiddle
	case gpucontext.MouseButton4:
		return g3d.MouseButton4
	case gpucontext.MouseButton5:
		return g3d.MouseButton5
	}
	return g3d.MouseButtonCount
}
