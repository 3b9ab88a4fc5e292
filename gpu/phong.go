package gpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
)

// MaxPointLights is the number of point light slots in ProgramPhong.
const MaxPointLights = 4

// PhongBlock returns the program block layout of ProgramPhong. Custom
// shaders that want to reuse SetLights declare the same struct.
func PhongBlock() []UniformField {
	return []UniformField{
		{Name: "view_pos", Type: UniformVec3},
		{Name: "shininess", Type: UniformFloat},
		{Name: "dir_direction", Type: UniformVec3},
		{Name: "point_count", Type: UniformInt},
		{Name: "dir_ambient", Type: UniformVec3},
		{Name: "dir_diffuse", Type: UniformVec3},
		{Name: "dir_specular", Type: UniformVec3},
		{Name: "point_position", Type: UniformVec4, Count: MaxPointLights},
		{Name: "point_ambient", Type: UniformVec4, Count: MaxPointLights},
		{Name: "point_diffuse", Type: UniformVec4, Count: MaxPointLights},
		{Name: "point_specular", Type: UniformVec4, Count: MaxPointLights},
		{Name: "point_attenuation", Type: UniformVec4, Count: MaxPointLights},
	}
}

// DirLight is a directional light.
type DirLight struct {
	Direction mgl32.Vec3
	Ambient   g3d.Color
	Diffuse   g3d.Color
	Specular  g3d.Color
}

// PointLight is a point light with constant/linear/quadratic attenuation.
type PointLight struct {
	Position  mgl32.Vec3
	Ambient   g3d.Color
	Diffuse   g3d.Color
	Specular  g3d.Color
	Constant  float32
	Linear    float32
	Quadratic float32
}

// NewPointLight returns a light at pos with the attenuation curve
// (1, 0.09, 0.032), which reaches roughly 50 units.
func NewPointLight(pos mgl32.Vec3, ambient, diffuse, specular g3d.Color) PointLight {
	return PointLight{
		Position:  pos,
		Ambient:   ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Constant:  1,
		Linear:    0.09,
		Quadratic: 0.032,
	}
}

// Lights is the complete lighting state of a Phong program.
type Lights struct {
	ViewPos   mgl32.Vec3
	Shininess float32
	Dir       DirLight
	Points    []PointLight
}

// SetLights writes l into a program linked with PhongBlock. More than
// MaxPointLights point lights is an error.
func SetLights(p *Program, l Lights) error {
	if len(l.Points) > MaxPointLights {
		return fmt.Errorf("gpu: %d point lights, at most %d", len(l.Points), MaxPointLights)
	}
	if p.block == nil {
		return fmt.Errorf("gpu: program %q has no uniform block", p.desc.Label)
	}

	get := func(name string) Uniform {
		u, _ := p.Uniform(name)
		return u
	}
	p.SetVec3(get("view_pos"), l.ViewPos)
	p.SetFloat(get("shininess"), l.Shininess)
	p.SetVec3(get("dir_direction"), l.Dir.Direction)
	p.SetVec3(get("dir_ambient"), l.Dir.Ambient.Vec3())
	p.SetVec3(get("dir_diffuse"), l.Dir.Diffuse.Vec3())
	p.SetVec3(get("dir_specular"), l.Dir.Specular.Vec3())
	p.SetInt(get("point_count"), int32(len(l.Points)))

	pos, amb, dif, spec, att := get("point_position"), get("point_ambient"),
		get("point_diffuse"), get("point_specular"), get("point_attenuation")
	for i, pl := range l.Points {
		p.SetVec4(pos.Index(i), pl.Position.Vec4(1))
		p.SetVec4(amb.Index(i), pl.Ambient.Vec3().Vec4(0))
		p.SetVec4(dif.Index(i), pl.Diffuse.Vec3().Vec4(0))
		p.SetVec4(spec.Index(i), pl.Specular.Vec3().Vec4(0))
		p.SetVec4(att.Index(i), mgl32.Vec4{pl.Constant, pl.Linear, pl.Quadratic, 0})
	}
	return nil
}

// SetViewPos updates only the eye position, typically once per frame.
func SetViewPos(p *Program, pos mgl32.Vec3) {
	if u, ok := p.Uniform("view_pos"); ok {
		p.SetVec3(u, pos)
	}
}
