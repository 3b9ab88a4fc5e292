package gpu

import (
	"errors"
	"path/filepath"
	"testing"

	intImage "github.com/gogpu/g3d/internal/image"
)

func TestNewTexture(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	img, err := intImage.NewImageBuf(8, 4, intImage.FormatBGRA8)
	if err != nil {
		t.Fatal(err)
	}
	img.Fill(10, 20, 30, 255)

	tests := []struct {
		name   string
		opts   []TextureOption
		w, h   int
		levels int
	}{
		{"mipmapped", nil, 8, 4, 4},
		{"single level", []TextureOption{WithMipmaps(false)}, 8, 4, 1},
		{"downsized", []TextureOption{WithMaxSize(4), WithMipmaps(false)}, 4, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := NewTexture(dev, img, tt.opts...)
			if err != nil {
				t.Fatalf("NewTexture() error = %v", err)
			}
			defer tex.Destroy()
			if w, h := tex.Size(); w != tt.w || h != tt.h {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
			if tex.MipLevels() != tt.levels {
				t.Errorf("MipLevels() = %d, want %d", tex.MipLevels(), tt.levels)
			}
		})
	}

	// The source buffer is left untouched.
	if r, g, b, _ := img.GetRGBA(0, 0); r != 10 || g != 20 || b != 30 || img.Format() != intImage.FormatBGRA8 {
		t.Errorf("source modified: %d %d %d %s", r, g, b, img.Format())
	}
}

func TestTextureErrors(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := LoadTexture(dev, filepath.Join(t.TempDir(), "missing.png")); !errors.Is(err, ErrTextureLoad) {
		t.Errorf("LoadTexture(missing) = %v, want ErrTextureLoad", err)
	}
	if _, err := NewTexture(dev, &intImage.ImageBuf{}); !errors.Is(err, ErrTextureLoad) {
		t.Errorf("NewTexture(empty) = %v, want ErrTextureLoad", err)
	}

	tex, err := NewTexture(dev, whitePixel(t))
	if err != nil {
		t.Fatal(err)
	}
	tex.Destroy()
	tex.Destroy()
}

func whitePixel(t *testing.T) *intImage.ImageBuf {
	t.Helper()
	img, err := intImage.NewImageBuf(1, 1, intImage.FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	img.Fill(255, 255, 255, 255)
	return img
}

func TestDestroyAfterDeviceCloseWarns(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	warnings := captureWarnings(t)

	img, err := intImage.NewImageBuf(2, 2, intImage.FormatBGRA8)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := NewTexture(dev, img)
	if err != nil {
		t.Fatal(err)
	}
	cube, err := NewCube(dev)
	if err != nil {
		t.Fatal(err)
	}

	dev.Close()
	tex.Destroy()
	cube.Destroy()

	count := func() int {
		n := 0
		for _, m := range *warnings {
			if m == "gpu: destroy after device close" {
				n++
			}
		}
		return n
	}
	// One for the texture, at least one for the cube's geometry.
	if n := count(); n < 2 {
		t.Fatalf("late destroy warnings = %d (%v), want at least 2", n, *warnings)
	}

	// Handles are dropped, so a second Destroy is silent.
	before := count()
	tex.Destroy()
	cube.Destroy()
	if after := count(); after != before {
		t.Errorf("repeated Destroy warned again: %d -> %d", before, after)
	}
}
