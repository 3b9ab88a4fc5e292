package image

import "errors"

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrInvalidStride is returned when stride is less than minimum required.
	ErrInvalidStride = errors.New("image: stride too small for width")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// ImageBuf is a tightly packed 4-channel image buffer.
//
// Row 0 is the top of the image, as decoded from files. Textures are flipped
// with FlipVertical before upload so that v = 0 samples the bottom row.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	format Format
}

// NewImageBuf creates a zeroed image buffer.
func NewImageBuf(width, height int, format Format) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	return &ImageBuf{
		data:   make([]byte, format.RowBytes(width)*height),
		width:  width,
		height: height,
		format: format,
	}, nil
}

// FromRows copies pixel data laid out with an arbitrary row stride, as
// returned by GPU readback where rows are padded for copy alignment.
func FromRows(data []byte, width, height int, format Format, stride int) (*ImageBuf, error) {
	b, err := NewImageBuf(width, height, format)
	if err != nil {
		return nil, err
	}
	row := format.RowBytes(width)
	if stride < row {
		return nil, ErrInvalidStride
	}
	if len(data) < stride*(height-1)+row {
		return nil, ErrDataTooSmall
	}
	for y := range height {
		copy(b.data[y*row:(y+1)*row], data[y*stride:])
	}
	return b, nil
}

// Clone creates a deep copy of the image buffer.
func (b *ImageBuf) Clone() *ImageBuf {
	c := *b
	c.data = append([]byte(nil), b.data...)
	return &c
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int { return b.height }

// Stride returns the number of bytes per row.
func (b *ImageBuf) Stride() int { return b.format.RowBytes(b.width) }

// Format returns the pixel format.
func (b *ImageBuf) Format() Format { return b.format }

// Bounds returns the image dimensions as (width, height).
func (b *ImageBuf) Bounds() (int, int) { return b.width, b.height }

// Data returns the raw pixel data slice.
func (b *ImageBuf) Data() []byte { return b.data }

// IsEmpty reports whether the buffer holds no pixels.
func (b *ImageBuf) IsEmpty() bool { return b == nil || len(b.data) == 0 }

// RowBytes returns a slice of the pixel data for row y.
// Returns nil if y is out of bounds.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	s := b.Stride()
	return b.data[y*s : (y+1)*s]
}

// GetRGBA returns the color at (x, y) as (r, g, b, a) in 0-255 range.
// Returns (0,0,0,0) if coordinates are out of bounds.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0, 0, 0, 0
	}
	p := b.data[(y*b.width+x)*4:]
	if b.format == FormatBGRA8 {
		return p[2], p[1], p[0], p[3]
	}
	return p[0], p[1], p[2], p[3]
}

// SetRGBA sets the color at (x, y).
// Returns ErrOutOfBounds if coordinates are outside image bounds.
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return ErrOutOfBounds
	}
	p := b.data[(y*b.width+x)*4:]
	if b.format == FormatBGRA8 {
		r, bl = bl, r
	}
	p[0], p[1], p[2], p[3] = r, g, bl, a
	return nil
}

// Clear sets all pixels to zero.
func (b *ImageBuf) Clear() {
	clear(b.data)
}

// Fill sets all pixels to the given RGBA color.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	if b.format == FormatBGRA8 {
		r, bl = bl, r
	}
	for i := 0; i < len(b.data); i += 4 {
		b.data[i], b.data[i+1], b.data[i+2], b.data[i+3] = r, g, bl, a
	}
}

// FlipVertical swaps rows in place so the bottom row comes first.
func (b *ImageBuf) FlipVertical() {
	s := b.Stride()
	tmp := make([]byte, s)
	for top, bot := 0, b.height-1; top < bot; top, bot = top+1, bot-1 {
		rt := b.data[top*s : (top+1)*s]
		rb := b.data[bot*s : (bot+1)*s]
		copy(tmp, rt)
		copy(rt, rb)
		copy(rb, tmp)
	}
}

// ToRGBA returns a copy converted to FormatRGBA8. RGBA8 input is still
// copied so the result never aliases b.
func (b *ImageBuf) ToRGBA() *ImageBuf {
	c := b.Clone()
	if c.format == FormatBGRA8 {
		for i := 0; i < len(c.data); i += 4 {
			c.data[i], c.data[i+2] = c.data[i+2], c.data[i]
		}
		c.format = FormatRGBA8
	}
	return c
}
