package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	intImage "github.com/gogpu/g3d/internal/image"
)

// Texture is a sampled 2D RGBA8 texture with its view and sampler.
type Texture struct {
	dev     *Device
	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler

	width, height int
	levels        uint32
	label         string
}

// TextureOption configures texture creation.
type TextureOption func(*textureOptions)

type textureOptions struct {
	label   string
	mipmaps bool
	repeat  bool
	flip    bool
	maxSize int
}

func defaultTextureOptions() textureOptions {
	return textureOptions{mipmaps: true, repeat: true, flip: true, maxSize: 4096}
}

// WithTextureLabel sets the debug label.
func WithTextureLabel(l string) TextureOption {
	return func(o *textureOptions) { o.label = l }
}

// WithMipmaps enables or disables mip chain generation. Default: on.
func WithMipmaps(on bool) TextureOption {
	return func(o *textureOptions) { o.mipmaps = on }
}

// WithRepeat selects repeat (true, default) or clamp-to-edge addressing.
func WithRepeat(on bool) TextureOption {
	return func(o *textureOptions) { o.repeat = on }
}

// WithFlip controls whether rows are flipped so texture coordinate v = 0
// samples the bottom of the image file. Default: on.
func WithFlip(on bool) TextureOption {
	return func(o *textureOptions) { o.flip = on }
}

// WithMaxSize downsizes images whose larger side exceeds n pixels.
func WithMaxSize(n int) TextureOption {
	return func(o *textureOptions) { o.maxSize = n }
}

// LoadTexture decodes an image file and uploads it. Decoding failures wrap
// ErrTextureLoad.
func LoadTexture(dev *Device, path string, opts ...TextureOption) (*Texture, error) {
	img, err := intImage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTextureLoad, path, err)
	}
	opts = append([]TextureOption{WithTextureLabel(path)}, opts...)
	return NewTexture(dev, img, opts...)
}

// NewTexture uploads img. The buffer is not modified.
func NewTexture(dev *Device, img *intImage.ImageBuf, opts ...TextureOption) (*Texture, error) {
	if dev == nil || dev.device == nil {
		return nil, ErrDeviceClosed
	}
	if img.IsEmpty() {
		return nil, fmt.Errorf("%w: empty image", ErrTextureLoad)
	}
	o := defaultTextureOptions()
	for _, opt := range opts {
		opt(&o)
	}

	src := img.ToRGBA()
	if w, h := src.Bounds(); o.maxSize > 0 && max(w, h) > o.maxSize {
		scale := float64(o.maxSize) / float64(max(w, h))
		resized, err := src.Resize(max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTextureLoad, err)
		}
		slogger().Debug("gpu: texture downsized", "label", o.label, "from", [2]int{w, h}, "to", [2]int{resized.Width(), resized.Height()})
		src = resized
	}
	if o.flip {
		src.FlipVertical()
	}

	levels := []*intImage.ImageBuf{src}
	if o.mipmaps {
		chain := intImage.GenerateMipmaps(src)
		defer chain.Release()
		levels = levels[:0]
		for i := range chain.NumLevels() {
			levels = append(levels, chain.Level(i))
		}
	}
	return newTextureLevels(dev, o, levels)
}

func newSolidTexture(dev *Device, label string, r, g, b, a uint8) (*Texture, error) {
	img, err := intImage.NewImageBuf(1, 1, intImage.FormatRGBA8)
	if err != nil {
		return nil, err
	}
	img.Fill(r, g, b, a)
	o := defaultTextureOptions()
	o.label = label
	return newTextureLevels(dev, o, []*intImage.ImageBuf{img})
}

func newTextureLevels(dev *Device, o textureOptions, levels []*intImage.ImageBuf) (*Texture, error) {
	w, h := levels[0].Bounds()
	t := &Texture{dev: dev, width: w, height: h, levels: uint32(len(levels)), label: o.label}

	tex, err := dev.device.CreateTexture(&hal.TextureDescriptor{
		Label:         o.label,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: t.levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", o.label, err)
	}
	t.tex = tex

	for i, lvl := range levels {
		lw, lh := lvl.Bounds()
		dev.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: uint32(i)},
			lvl.Data(),
			&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(lvl.Stride()), RowsPerImage: uint32(lh)},
			&hal.Extent3D{Width: uint32(lw), Height: uint32(lh), DepthOrArrayLayers: 1},
		)
	}

	view, err := dev.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         o.label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: t.levels,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("create texture view %q: %w", o.label, err)
	}
	t.view = view

	mode := gputypes.AddressModeRepeat
	if !o.repeat {
		mode = gputypes.AddressModeClampToEdge
	}
	sampler, err := dev.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        o.label + "_sampler",
		AddressModeU: mode,
		AddressModeV: mode,
		AddressModeW: mode,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("create sampler %q: %w", o.label, err)
	}
	t.sampler = sampler

	slogger().Debug("gpu: texture created", "label", o.label, "width", w, "height", h, "levels", t.levels)
	return t, nil
}

// Size returns the level 0 dimensions.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// MipLevels returns the number of uploaded mip levels.
func (t *Texture) MipLevels() int { return int(t.levels) }

// Destroy releases the texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if t == nil || t.dev == nil {
		return
	}
	if t.dev.device == nil {
		if t.tex != nil || t.view != nil || t.sampler != nil {
			warnClosed("texture")
			t.tex, t.view, t.sampler = nil, nil, nil
		}
		return
	}
	d := t.dev.device
	if t.sampler != nil {
		d.DestroySampler(t.sampler)
		t.sampler = nil
	}
	if t.view != nil {
		d.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		d.DestroyTexture(t.tex)
		t.tex = nil
	}
}

func (t *Texture) bindings(slot int) []gputypes.BindGroupEntry {
	return []gputypes.BindGroupEntry{
		{
			Binding:  textureBinding(slot),
			Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()},
		},
		{
			Binding:  samplerBinding(slot),
			Resource: gputypes.SamplerBinding{Sampler: t.sampler.NativeHandle()},
		},
	}
}

// Texture slot i binds its view at 1+2i and its sampler at 2+2i in group 0.
func textureBinding(slot int) uint32 { return uint32(1 + 2*slot) }
func samplerBinding(slot int) uint32 { return uint32(2 + 2*slot) }
