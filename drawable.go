package g3d

// Kind classifies drawables for grouping in the registry.
type Kind uint8

// Drawable kinds.
const (
	KindPrimitive2D Kind = iota
	KindPrimitive3D
	KindTexturedMesh
	KindModel
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPrimitive2D:
		return "primitive2d"
	case KindPrimitive3D:
		return "primitive3d"
	case KindTexturedMesh:
		return "textured-mesh"
	case KindModel:
		return "model"
	default:
		return "unknown"
	}
}

// Drawable is anything the frame loop can render.
//
// Render records draw calls into fc.Pass. Destroy releases GPU resources
// and is called exactly once by the registry that owns the drawable.
type Drawable interface {
	Kind() Kind
	Render(fc *FrameContext) error
	Destroy()
}
