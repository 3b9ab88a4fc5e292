package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	// Decoders for texture files.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// ErrEmptyData is returned when image data is empty.
var ErrEmptyData = errors.New("image: empty data")

// Load decodes the image file at path, detecting the format from content.
// PNG, JPEG, BMP, TIFF and WebP are supported.
func Load(path string) (*ImageBuf, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("image: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadFromBytes decodes an in-memory image, such as one embedded in a
// model file.
func LoadFromBytes(data []byte) (*ImageBuf, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes an image from r into an RGBA8 buffer.
func Decode(r io.Reader) (*ImageBuf, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image: decode: %w", err)
	}
	return FromStdImage(img), nil
}

// FromStdImage converts any image.Image to an RGBA8 buffer.
func FromStdImage(img image.Image) *ImageBuf {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
	}
	return &ImageBuf{
		data:   append([]byte(nil), nrgba.Pix[:bounds.Dx()*bounds.Dy()*4]...),
		width:  bounds.Dx(),
		height: bounds.Dy(),
		format: FormatRGBA8,
	}
}

// ToStdImage returns the buffer as a non-premultiplied *image.NRGBA.
func (b *ImageBuf) ToStdImage() *image.NRGBA {
	c := b.ToRGBA()
	return &image.NRGBA{
		Pix:    c.data,
		Stride: c.Stride(),
		Rect:   image.Rect(0, 0, c.width, c.height),
	}
}

// Resize returns a copy scaled to width x height with bilinear filtering.
func (b *ImageBuf) Resize(width, height int) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), b.ToStdImage(), image.Rect(0, 0, b.width, b.height), xdraw.Src, nil)
	return &ImageBuf{data: dst.Pix, width: width, height: height, format: FormatRGBA8}, nil
}

// EncodePNG encodes the image as PNG to w.
func (b *ImageBuf) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.ToStdImage()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the image as a PNG file.
func (b *ImageBuf) SavePNG(path string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("image: create file: %w", err)
	}
	if err := b.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
