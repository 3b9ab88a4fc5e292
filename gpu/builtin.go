package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/g3d/geom"
)

//go:embed shaders/flat2d.wgsl
var flat2DShaderSource string

//go:embed shaders/flat3d.wgsl
var flat3DShaderSource string

//go:embed shaders/textured.wgsl
var texturedShaderSource string

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

//go:embed shaders/phong.wgsl
var phongShaderSource string

// BuiltinProgram names one of the programs shipped with the package.
type BuiltinProgram uint8

// Built-in programs.
const (
	// ProgramFlat2D draws LayoutPosition2 overlay shapes in a solid color.
	ProgramFlat2D BuiltinProgram = iota
	// ProgramFlat3D draws LayoutPosition3NormalTexCoord shapes in a solid
	// color with a fixed key light.
	ProgramFlat3D
	// ProgramTextured draws LayoutPosition3TexCoord meshes with one texture.
	ProgramTextured
	// ProgramSprite draws textured, alpha-blended overlay quads.
	ProgramSprite
	// ProgramPhong lights LayoutPosition3NormalTexCoord meshes with a
	// directional light, up to MaxPointLights point lights, a diffuse map
	// (slot 0) and a specular map (slot 1).
	ProgramPhong
)

func (b BuiltinProgram) String() string {
	switch b {
	case ProgramFlat2D:
		return "flat2d"
	case ProgramFlat3D:
		return "flat3d"
	case ProgramTextured:
		return "textured"
	case ProgramSprite:
		return "sprite"
	case ProgramPhong:
		return "phong"
	default:
		return fmt.Sprintf("BuiltinProgram(%d)", uint8(b))
	}
}

func (b BuiltinProgram) source() (string, ProgramDescriptor, bool) {
	desc := ProgramDescriptor{Label: b.String(), Wireframe: true}
	switch b {
	case ProgramFlat2D:
		desc.Layout = geom.LayoutPosition2
		desc.Matrices = MatricesCombined
		return flat2DShaderSource, desc, true
	case ProgramFlat3D:
		desc.Layout = geom.LayoutPosition3NormalTexCoord
		desc.Matrices = MatricesSeparate
		desc.DepthTest = true
		return flat3DShaderSource, desc, true
	case ProgramTextured:
		desc.Layout = geom.LayoutPosition3TexCoord
		desc.Matrices = MatricesSeparate
		desc.TextureSlots = 1
		desc.DepthTest = true
		return texturedShaderSource, desc, true
	case ProgramSprite:
		desc.Layout = geom.LayoutPosition3TexCoord
		desc.Matrices = MatricesCombined
		desc.TextureSlots = 1
		desc.Blend = true
		desc.Wireframe = false
		return spriteShaderSource, desc, true
	case ProgramPhong:
		desc.Layout = geom.LayoutPosition3NormalTexCoord
		desc.Matrices = MatricesSeparate
		desc.TextureSlots = 2
		desc.DepthTest = true
		desc.Block = PhongBlock()
		return phongShaderSource, desc, true
	default:
		return "", desc, false
	}
}

// Program returns a built-in program, linking it on first use. Built-in
// programs are owned by the device and destroyed by Close.
func (d *Device) Program(b BuiltinProgram) (*Program, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	if p, ok := d.programs[b]; ok {
		return p, nil
	}

	src, desc, ok := b.source()
	if !ok {
		return nil, fmt.Errorf("gpu: unknown built-in program %d", uint8(b))
	}
	p, err := CompileAndLink(d, src, src, desc)
	if err != nil {
		return nil, err
	}
	d.programs[b] = p
	return p, nil
}

// CompileAndLink compiles the vertex and fragment sources and links them.
// The two sources may be the same string when one file holds both entry
// points.
func CompileAndLink(dev *Device, vertexSrc, fragmentSrc string, desc ProgramDescriptor) (*Program, error) {
	vs, err := Compile(StageVertex, desc.Label, vertexSrc)
	if err != nil {
		return nil, err
	}
	fs, err := Compile(StageFragment, desc.Label, fragmentSrc)
	if err != nil {
		return nil, err
	}
	return Link(dev, vs, fs, desc)
}
