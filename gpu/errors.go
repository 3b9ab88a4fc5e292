package gpu

import (
	"errors"
	"fmt"
)

// Errors returned by the gpu package.
var (
	// ErrNoAdapter is returned when no GPU adapter can be opened.
	ErrNoAdapter = errors.New("gpu: no usable adapter")

	// ErrDeviceClosed is returned when a closed Device is used.
	ErrDeviceClosed = errors.New("gpu: device closed")

	// ErrTextureLoad is returned when an image file cannot be turned into a
	// texture.
	ErrTextureLoad = errors.New("gpu: texture load failed")

	// ErrTooManyTextures is returned when a drawable is given more textures
	// than its program has slots for.
	ErrTooManyTextures = errors.New("gpu: too many textures for program")

	// ErrLayoutMismatch is returned when geometry and program disagree on
	// the vertex layout.
	ErrLayoutMismatch = errors.New("gpu: vertex layout mismatch")

	// ErrNoSurfaceView is returned when a frame is started without a color
	// target.
	ErrNoSurfaceView = errors.New("gpu: no surface view")
)

// ShaderCompileError reports a shader that failed to compile.
type ShaderCompileError struct {
	Stage Stage
	Label string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("gpu: %s shader %q: %s", e.Stage, e.Label, e.Log)
	}
	return fmt.Sprintf("gpu: %s shader: %s", e.Stage, e.Log)
}

// ShaderLinkError reports a program that could not be linked into a
// render pipeline.
type ShaderLinkError struct {
	Label string
	Log   string
	Err   error
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("gpu: link %q: %s", e.Label, e.Log)
}

func (e *ShaderLinkError) Unwrap() error { return e.Err }
