package image

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error
)

func defaultFont() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	return regularFont, regularErr
}

// RenderLabel rasterises a single line of text in the Go Regular face.
// The result is transparent everywhere except the glyphs, which are drawn
// in col, and is sized to the text's ink bounds plus one pixel of padding.
func RenderLabel(text string, size float64, col color.NRGBA) (*ImageBuf, error) {
	if text == "" || size <= 0 {
		return nil, ErrInvalidDimensions
	}
	f, err := defaultFont()
	if err != nil {
		return nil, fmt.Errorf("image: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("image: font face: %w", err)
	}
	defer func() { _ = face.Close() }()

	m := face.Metrics()
	adv := font.MeasureString(face, text)
	w := adv.Ceil() + 2
	h := (m.Ascent + m.Descent).Ceil() + 2

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(1), Y: m.Ascent + fixed.I(1)},
	}
	d.DrawString(text)

	return &ImageBuf{data: dst.Pix, width: w, height: h, format: FormatRGBA8}, nil
}
