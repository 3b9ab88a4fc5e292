package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
)

func TestNewImageBuf(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		format Format
		want   error
	}{
		{"ok", 4, 2, FormatRGBA8, nil},
		{"zero width", 0, 2, FormatRGBA8, ErrInvalidDimensions},
		{"negative height", 4, -1, FormatBGRA8, ErrInvalidDimensions},
		{"bad format", 4, 2, formatCount, ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewImageBuf(tt.w, tt.h, tt.format)
			if !errors.Is(err, tt.want) {
				t.Fatalf("NewImageBuf() error = %v, want %v", err, tt.want)
			}
			if err == nil && len(b.Data()) != tt.w*tt.h*4 {
				t.Errorf("len(Data()) = %d", len(b.Data()))
			}
		})
	}
}

func TestSetGetRGBASwizzle(t *testing.T) {
	for _, f := range []Format{FormatRGBA8, FormatBGRA8} {
		b, _ := NewImageBuf(2, 2, f)
		if err := b.SetRGBA(1, 1, 10, 20, 30, 40); err != nil {
			t.Fatal(err)
		}
		r, g, bl, a := b.GetRGBA(1, 1)
		if r != 10 || g != 20 || bl != 30 || a != 40 {
			t.Errorf("%s: GetRGBA = %d %d %d %d", f, r, g, bl, a)
		}
		if err := b.SetRGBA(2, 0, 0, 0, 0, 0); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("%s: out of bounds SetRGBA = %v", f, err)
		}
	}

	bgra, _ := NewImageBuf(1, 1, FormatBGRA8)
	bgra.Fill(1, 2, 3, 4)
	if d := bgra.Data(); d[0] != 3 || d[2] != 1 {
		t.Errorf("BGRA storage = %v, want blue first", d)
	}
	if d := bgra.ToRGBA().Data(); d[0] != 1 || d[2] != 3 {
		t.Errorf("ToRGBA() = %v", d)
	}
}

func TestFromRowsDropsPadding(t *testing.T) {
	// 2x2 RGBA with rows padded to 12 bytes.
	data := []byte{
		1, 1, 1, 1, 2, 2, 2, 2, 0xEE, 0xEE, 0xEE, 0xEE,
		3, 3, 3, 3, 4, 4, 4, 4,
	}
	b, err := FromRows(data, 2, 2, FormatRGBA8, 12)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}
	if !bytes.Equal(b.Data(), want) {
		t.Errorf("Data() = %v", b.Data())
	}
	if _, err := FromRows(data, 2, 2, FormatRGBA8, 4); !errors.Is(err, ErrInvalidStride) {
		t.Errorf("short stride error = %v", err)
	}
	if _, err := FromRows(data[:10], 2, 2, FormatRGBA8, 12); !errors.Is(err, ErrDataTooSmall) {
		t.Errorf("short data error = %v", err)
	}
}

func TestFlipVertical(t *testing.T) {
	b, _ := NewImageBuf(1, 3, FormatRGBA8)
	for y := range 3 {
		_ = b.SetRGBA(0, y, uint8(y), 0, 0, 255)
	}
	b.FlipVertical()
	for y := range 3 {
		if r, _, _, _ := b.GetRGBA(0, y); int(r) != 2-y {
			t.Errorf("row %d = %d, want %d", y, r, 2-y)
		}
	}
}

func TestGenerateMipmaps(t *testing.T) {
	src, _ := NewImageBuf(8, 2, FormatRGBA8)
	src.Fill(200, 100, 50, 255)
	chain := GenerateMipmaps(src)
	defer chain.Release()

	if chain.NumLevels() != 4 || MipLevelCount(8, 2) != 4 {
		t.Fatalf("NumLevels() = %d, want 4", chain.NumLevels())
	}
	if chain.Level(0) != src {
		t.Error("level 0 is not the source")
	}
	sizes := [][2]int{{8, 2}, {4, 1}, {2, 1}, {1, 1}}
	for i, s := range sizes {
		w, h := chain.Level(i).Bounds()
		if w != s[0] || h != s[1] {
			t.Errorf("level %d = %dx%d, want %dx%d", i, w, h, s[0], s[1])
		}
		if r, g, b, a := chain.Level(i).GetRGBA(0, 0); r != 200 || g != 100 || b != 50 || a != 255 {
			t.Errorf("level %d colour = %d %d %d %d", i, r, g, b, a)
		}
	}
	if chain.Level(4) != nil || GenerateMipmaps(nil) != nil {
		t.Error("out of range level or nil source produced a value")
	}
}

func TestPoolReuse(t *testing.T) {
	p := NewPool(1)
	a := p.Get(4, 4, FormatRGBA8)
	a.Fill(9, 9, 9, 9)
	p.Put(a)
	p.Put(p.Get(4, 4, FormatRGBA8)) // second put of same shape is dropped at limit 1
	b := p.Get(4, 4, FormatRGBA8)
	if b != a {
		t.Error("pool did not reuse buffer")
	}
	if r, _, _, _ := b.GetRGBA(0, 0); r != 0 {
		t.Error("reused buffer not cleared")
	}
	if p.Get(0, 4, FormatRGBA8) != nil {
		t.Error("invalid dimensions returned a buffer")
	}
}

func TestDecodeAndSavePNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(2, 1, color.RGBA{R: 255, A: 255})
	var enc bytes.Buffer
	if err := png.Encode(&enc, src); err != nil {
		t.Fatal(err)
	}

	b, err := LoadFromBytes(enc.Bytes())
	if err != nil {
		t.Fatalf("LoadFromBytes() error = %v", err)
	}
	if b.Width() != 3 || b.Height() != 2 {
		t.Fatalf("size = %dx%d", b.Width(), b.Height())
	}
	if r, _, _, a := b.GetRGBA(2, 1); r != 255 || a != 255 {
		t.Errorf("pixel (2,1) = %d,%d", r, a)
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := b.SavePNG(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back.Data(), b.Data()) {
		t.Error("PNG round trip changed pixels")
	}

	if _, err := LoadFromBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("LoadFromBytes(nil) = %v", err)
	}
	if _, err := LoadFromBytes([]byte("not an image")); err == nil {
		t.Error("garbage decoded without error")
	}
}

func TestResize(t *testing.T) {
	b, _ := NewImageBuf(4, 4, FormatRGBA8)
	b.Fill(50, 60, 70, 255)
	r, err := b.Resize(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if r.Width() != 2 || r.Height() != 1 {
		t.Errorf("size = %dx%d", r.Width(), r.Height())
	}
	if cr, cg, cb, _ := r.GetRGBA(0, 0); cr != 50 || cg != 60 || cb != 70 {
		t.Errorf("uniform colour changed: %d %d %d", cr, cg, cb)
	}
}

func TestRenderLabel(t *testing.T) {
	b, err := RenderLabel("FPS 60", 16, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err != nil {
		t.Fatal(err)
	}
	if b.Width() <= 2 || b.Height() <= 2 {
		t.Fatalf("label size = %dx%d", b.Width(), b.Height())
	}
	var ink bool
	for i := 3; i < len(b.Data()); i += 4 {
		if b.Data()[i] != 0 {
			ink = true
			break
		}
	}
	if !ink {
		t.Error("label has no visible glyphs")
	}
	if _, err := RenderLabel("", 16, color.NRGBA{}); err == nil {
		t.Error("empty label rendered")
	}
}
