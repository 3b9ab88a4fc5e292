package image

import "math/bits"

// MipmapChain holds successively halved copies of an image, down to 1x1.
// Level 0 is the source image.
type MipmapChain struct {
	levels []*ImageBuf
}

// MipLevelCount returns the number of levels a full chain for a
// width x height image has.
func MipLevelCount(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return bits.Len(uint(max(width, height)))
}

// GenerateMipmaps builds a chain with a 2x2 box filter. The source becomes
// level 0 and is not copied. Returns nil for an empty source.
func GenerateMipmaps(src *ImageBuf) *MipmapChain {
	if src.IsEmpty() {
		return nil
	}
	n := MipLevelCount(src.width, src.height)
	chain := &MipmapChain{levels: make([]*ImageBuf, n)}
	chain.levels[0] = src
	for i := 1; i < n; i++ {
		chain.levels[i] = downsample(chain.levels[i-1])
	}
	return chain
}

func downsample(src *ImageBuf) *ImageBuf {
	sw, sh := src.Bounds()
	dw, dh := max(1, sw/2), max(1, sh/2)
	dst := GetFromDefault(dw, dh, src.format)
	if dst == nil {
		return nil
	}

	for dy := range dh {
		for dx := range dw {
			x0, y0 := dx*2, dy*2
			x1, y1 := min(x0+1, sw-1), min(y0+1, sh-1)

			var sum [4]uint16
			for _, p := range [4][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
				o := (p[1]*sw + p[0]) * 4
				for c := range 4 {
					sum[c] += uint16(src.data[o+c])
				}
			}
			o := (dy*dw + dx) * 4
			for c := range 4 {
				dst.data[o+c] = byte(sum[c] / 4)
			}
		}
	}
	return dst
}

// Level returns level n, or nil if out of range.
func (m *MipmapChain) Level(n int) *ImageBuf {
	if m == nil || n < 0 || n >= len(m.levels) {
		return nil
	}
	return m.levels[n]
}

// NumLevels returns the number of levels, 0 for a nil chain.
func (m *MipmapChain) NumLevels() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// Release returns levels 1..n to the pool. Level 0 belongs to the caller.
// The chain must not be used afterwards.
func (m *MipmapChain) Release() {
	if m == nil {
		return
	}
	for i := 1; i < len(m.levels); i++ {
		PutToDefault(m.levels[i])
		m.levels[i] = nil
	}
}
