// Package image holds CPU-side pixel buffers for g3d textures and readback.
//
// Buffers are tightly packed 8-bit, 4-channel images. Textures are uploaded
// as RGBA8; surface readback arrives as BGRA8 and is swizzled on export.
package image

// Format represents a pixel storage format.
type Format uint8

const (
	// FormatRGBA8 is 32-bit RGBA, non-premultiplied.
	FormatRGBA8 Format = iota

	// FormatBGRA8 is 32-bit BGRA, the usual swapchain layout.
	FormatBGRA8

	formatCount
)

// BytesPerPixel returns the number of bytes per pixel.
func (f Format) BytesPerPixel() int {
	if !f.IsValid() {
		return 0
	}
	return 4
}

// RowBytes returns the minimum row length in bytes for width pixels.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	default:
		return "Unknown"
	}
}
