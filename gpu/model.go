package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/importer"
	intImage "github.com/gogpu/g3d/internal/image"
)

// Model is a drawable made of imported meshes that share one transform.
// It owns every mesh and texture it loaded.
type Model struct {
	Transform g3d.Transform

	meshes      []*Mesh
	textures    []*Texture
	warnedScale bool
	destroyed   bool
}

// LoadModel imports a glTF file and uploads it for program, which must
// take LayoutPosition3NormalTexCoord vertices (ProgramPhong does).
func LoadModel(dev *Device, program *Program, path string) (*Model, error) {
	imported, err := importer.Import(path)
	if err != nil {
		return nil, err
	}
	return NewModel(dev, program, imported)
}

// NewModel uploads imported meshes. Textures are loaded once per image and
// bound positionally up to the program's slot count. A texture that fails
// to load is replaced by white with a warning.
func NewModel(dev *Device, program *Program, imported []importer.ImportedMesh) (*Model, error) {
	if len(imported) == 0 {
		return nil, fmt.Errorf("%w: no meshes", importer.ErrModelImport)
	}
	m := &Model{Transform: g3d.NewTransform()}
	cache := make(map[string]*Texture)

	for i, im := range imported {
		var texs []*Texture
		for _, ref := range im.Textures {
			if len(texs) == program.TextureSlots() {
				slogger().Debug("gpu: model texture dropped, no free slot", "mesh", im.Name, "texture", ref.Name)
				break
			}
			texs = append(texs, m.texture(dev, cache, ref))
		}

		mesh, err := NewOwnedMesh(dev, g3d.KindModel, program, im.Mesh, WithTextures(texs...))
		if err != nil {
			m.Destroy()
			return nil, fmt.Errorf("model mesh %d (%s): %w", i, im.Name, err)
		}
		m.meshes = append(m.meshes, mesh)
	}
	slogger().Debug("gpu: model created", "meshes", len(m.meshes), "textures", len(m.textures))
	return m, nil
}

func (m *Model) texture(dev *Device, cache map[string]*Texture, ref importer.TextureRef) *Texture {
	key := ref.Key()
	if t, ok := cache[key]; ok {
		return t
	}

	var (
		t   *Texture
		err error
	)
	if ref.Path != "" {
		t, err = LoadTexture(dev, ref.Path)
	} else {
		var img *intImage.ImageBuf
		if img, err = intImage.LoadFromBytes(ref.Data); err == nil {
			t, err = NewTexture(dev, img, WithTextureLabel(ref.Name))
		} else {
			err = fmt.Errorf("%w: %s: %w", ErrTextureLoad, ref.Name, err)
		}
	}
	if err != nil {
		slogger().Warn("gpu: model texture unavailable, using white", "texture", ref.Name, "error", err)
		cache[key] = nil
		return nil
	}
	cache[key] = t
	m.textures = append(m.textures, t)
	return t
}

// Kind implements g3d.Drawable.
func (m *Model) Kind() g3d.Kind { return g3d.KindModel }

// Meshes returns the model's meshes. Their transforms are relative to the
// model's.
func (m *Model) Meshes() []*Mesh { return m.meshes }

// SetColor tints every mesh.
func (m *Model) SetColor(c g3d.Color) {
	for _, mesh := range m.meshes {
		mesh.Color = c
	}
}

// Render draws every mesh with the model transform applied on top of its
// own. A failing mesh does not stop the others.
func (m *Model) Render(fc *g3d.FrameContext) error {
	if m.destroyed {
		return errDestroyed
	}
	if err := m.Transform.Validate(); err != nil && !m.warnedScale {
		m.warnedScale = true
		slogger().Warn("gpu: model has degenerate scale", "scale", m.Transform.Scale)
	}
	parent := m.Transform.Matrix()
	var errs []error
	for _, mesh := range m.meshes {
		if err := mesh.renderWith(fc, parent.Mul4(mesh.Transform.Matrix())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Destroy releases all meshes and textures. Safe to call more than once.
func (m *Model) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	for _, mesh := range m.meshes {
		mesh.Destroy()
	}
	for _, t := range m.textures {
		t.Destroy()
	}
	m.meshes, m.textures = nil, nil
}
