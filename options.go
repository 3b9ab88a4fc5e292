package g3d

import "time"

// UpdateFunc runs once per tick after input is polled and before anything
// is drawn. It may move the active camera through cam.
type UpdateFunc func(in InputState, dt time.Duration, cam *Camera)

// LoopOption configures a FrameLoop during creation.
//
// Example:
//
//	loop := g3d.NewFrameLoop(
//	    g3d.WithPlatform(window.New()),
//	    g3d.WithClearColor(g3d.Hex("#1e1e2e")),
//	    g3d.WithUpdate(fly.UpdateFunc()),
//	)
type LoopOption func(*loopOptions)

// loopOptions holds optional configuration for FrameLoop creation.
type loopOptions struct {
	platform   Platform
	clear      Color
	autoAspect bool
	update     UpdateFunc
	maxFrames  uint64
}

// defaultLoopOptions returns the default loop options.
func defaultLoopOptions() loopOptions {
	return loopOptions{
		clear: RGBA(0.1, 0.1, 0.12, 1),
	}
}

// WithPlatform sets the windowing platform. A FrameLoop without a platform
// fails Initialize with ErrInitialization.
func WithPlatform(p Platform) LoopOption {
	return func(o *loopOptions) {
		o.platform = p
	}
}

// WithClearColor sets the colour the surface is cleared to each frame.
func WithClearColor(c Color) LoopOption {
	return func(o *loopOptions) {
		o.clear = c
	}
}

// WithAutoAspect keeps the active camera's aspect ratio equal to the
// surface aspect ratio.
func WithAutoAspect(enabled bool) LoopOption {
	return func(o *loopOptions) {
		o.autoAspect = enabled
	}
}

// WithUpdate installs a per-tick update hook.
func WithUpdate(fn UpdateFunc) LoopOption {
	return func(o *loopOptions) {
		o.update = fn
	}
}

// WithMaxFrames stops Run after n ticks. Zero means no limit.
func WithMaxFrames(n uint64) LoopOption {
	return func(o *loopOptions) {
		o.maxFrames = n
	}
}
