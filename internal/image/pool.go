package image

import "sync"

// Pool recycles ImageBuf values by size and format. Mip chains and
// per-frame readback allocate the same shapes repeatedly.
//
// All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*ImageBuf
	limit   int
}

type poolKey struct {
	w, h   int
	format Format
}

// NewPool creates a pool keeping at most limit buffers per shape.
// A limit of 0 keeps every returned buffer.
func NewPool(limit int) *Pool {
	return &Pool{buckets: make(map[poolKey][]*ImageBuf), limit: limit}
}

// Get returns a zeroed buffer, reusing a pooled one when available.
// Returns nil for invalid dimensions or format.
func (p *Pool) Get(width, height int, format Format) *ImageBuf {
	k := poolKey{width, height, format}

	p.mu.Lock()
	if n := len(p.buckets[k]); n > 0 {
		b := p.buckets[k][n-1]
		p.buckets[k] = p.buckets[k][:n-1]
		p.mu.Unlock()
		b.Clear()
		return b
	}
	p.mu.Unlock()

	b, err := NewImageBuf(width, height, format)
	if err != nil {
		return nil
	}
	return b
}

// Put hands a buffer back. Nil buffers and overflow are dropped.
func (p *Pool) Put(b *ImageBuf) {
	if b == nil {
		return
	}
	k := poolKey{b.width, b.height, b.format}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit > 0 && len(p.buckets[k]) >= p.limit {
		return
	}
	p.buckets[k] = append(p.buckets[k], b)
}

var defaultPool = NewPool(8)

// GetFromDefault retrieves a buffer from the package pool.
func GetFromDefault(width, height int, format Format) *ImageBuf {
	return defaultPool.Get(width, height, format)
}

// PutToDefault returns a buffer to the package pool.
func PutToDefault(b *ImageBuf) {
	defaultPool.Put(b)
}
