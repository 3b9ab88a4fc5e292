package g3d

import "errors"

// Package errors for the engine core.
var (
	// ErrInitialization is returned when the windowing platform cannot start.
	ErrInitialization = errors.New("g3d: platform initialization failed")

	// ErrWindowCreation is returned when the platform fails to open a window.
	ErrWindowCreation = errors.New("g3d: window creation failed")

	// ErrInvalidCamera is returned when camera parameters cannot produce a
	// view or projection matrix (zero look vector, near <= 0, far <= near,
	// fov outside (0, pi), non-positive aspect).
	ErrInvalidCamera = errors.New("g3d: invalid camera parameters")

	// ErrDegenerateScale is returned when a transform has a zero scale
	// component and its model matrix is not invertible.
	ErrDegenerateScale = errors.New("g3d: degenerate transform scale")

	// ErrInvalidState is returned when a FrameLoop method is called in a
	// state that does not allow it.
	ErrInvalidState = errors.New("g3d: invalid frame loop state")

	// ErrStaleHandle is returned when a registry handle refers to a
	// drawable that was removed.
	ErrStaleHandle = errors.New("g3d: stale drawable handle")

	// ErrNilDrawable is returned when a nil drawable is added to a registry.
	ErrNilDrawable = errors.New("g3d: nil drawable")
)
