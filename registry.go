package g3d

import (
	"fmt"
	"slices"
)

// Handle identifies a drawable in a Registry. The zero Handle is never
// issued. A handle becomes stale once its drawable is removed, even if the
// slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("drawable#%d.%d", h.index, h.gen)
}

type slot struct {
	d    Drawable
	gen  uint32
	live bool
}

// Registry is the sole owner of the drawables rendered by a FrameLoop.
//
// Iteration follows insertion order, which is also draw order. Remove and
// Destroy release GPU resources immediately. Registry is not safe for
// concurrent use; like the frame loop it belongs to one goroutine.
type Registry struct {
	slots []slot
	free  []uint32
	order []uint32 // live slot indices in insertion order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add takes ownership of d and appends it to the draw order.
func (r *Registry) Add(d Drawable) (Handle, error) {
	if d == nil {
		return Handle{}, ErrNilDrawable
	}

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot{})
		idx = uint32(len(r.slots) - 1)
	}

	s := &r.slots[idx]
	s.gen++
	s.d = d
	s.live = true
	r.order = append(r.order, idx)

	Logger().Debug("g3d: drawable added", "handle", Handle{idx, s.gen}.String(), "kind", d.Kind().String())
	return Handle{index: idx, gen: s.gen}, nil
}

// MustAdd is Add for callers that construct drawables they know are non-nil.
func (r *Registry) MustAdd(d Drawable) Handle {
	h, err := r.Add(d)
	if err != nil {
		panic(err)
	}
	return h
}

// Get returns the drawable for h.
func (r *Registry) Get(h Handle) (Drawable, error) {
	s, err := r.lookup(h)
	if err != nil {
		return nil, err
	}
	return s.d, nil
}

// Remove destroys the drawable for h and invalidates the handle.
func (r *Registry) Remove(h Handle) error {
	s, err := r.lookup(h)
	if err != nil {
		return err
	}
	d := s.d
	s.d = nil
	s.live = false
	r.free = append(r.free, h.index)
	r.order = slices.DeleteFunc(r.order, func(i uint32) bool { return i == h.index })

	d.Destroy()
	Logger().Debug("g3d: drawable removed", "handle", h.String())
	return nil
}

// Len returns the number of live drawables.
func (r *Registry) Len() int {
	return len(r.slots) - len(r.free)
}

// Each calls fn for every live drawable in insertion order. Iteration stops
// at the first non-nil error, which is returned. fn must not add or remove
// drawables.
func (r *Registry) Each(fn func(Handle, Drawable) error) error {
	for _, idx := range r.order {
		s := &r.slots[idx]
		if err := fn(Handle{index: idx, gen: s.gen}, s.d); err != nil {
			return err
		}
	}
	return nil
}

// ByKind returns the handles of drawables of kind k in insertion order.
func (r *Registry) ByKind(k Kind) []Handle {
	var out []Handle
	for _, idx := range r.order {
		s := &r.slots[idx]
		if s.d.Kind() == k {
			out = append(out, Handle{index: idx, gen: s.gen})
		}
	}
	return out
}

// Destroy removes and destroys every drawable, in reverse insertion order.
// The registry is empty and reusable afterwards.
func (r *Registry) Destroy() {
	for i := len(r.order) - 1; i >= 0; i-- {
		s := &r.slots[r.order[i]]
		s.d.Destroy()
		s.d = nil
		s.live = false
		r.free = append(r.free, r.order[i])
	}
	r.order = r.order[:0]
}

func (r *Registry) lookup(h Handle) (*slot, error) {
	if h.gen == 0 || int(h.index) >= len(r.slots) {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	s := &r.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s, nil
}
