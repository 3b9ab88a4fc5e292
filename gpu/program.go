// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/geom"
)

// MaxTextureSlots is the largest texture slot count a program may declare.
const MaxTextureSlots = 8

// Matrices selects how a program receives its transform.
type Matrices uint8

const (
	// MatricesCombined uploads a single premultiplied `mvp` matrix.
	// Group 0, binding 0: struct { mvp: mat4x4<f32>, color: vec4<f32> }.
	MatricesCombined Matrices = iota

	// MatricesSeparate uploads model, view and projection individually.
	// Group 0, binding 0: struct { model, view, projection: mat4x4<f32>,
	// color: vec4<f32> }.
	MatricesSeparate
)

func (m Matrices) String() string {
	if m == MatricesSeparate {
		return "separate"
	}
	return "combined"
}

func (m Matrices) drawFields() []UniformField {
	if m == MatricesSeparate {
		return []UniformField{
			{Name: "model", Type: UniformMat4},
			{Name: "view", Type: UniformMat4},
			{Name: "projection", Type: UniformMat4},
			{Name: "color", Type: UniformVec4},
		}
	}
	return []UniformField{
		{Name: "mvp", Type: UniformMat4},
		{Name: "color", Type: UniformVec4},
	}
}

// ProgramDescriptor describes everything Link needs besides the shaders.
//
// Bindings:
//   - group 0, binding 0: per-draw block (see Matrices)
//   - group 0, binding 1+2i / 2+2i: texture i and its sampler
//   - group 1, binding 0: the program block declared by Block, if any
type ProgramDescriptor struct {
	Label        string
	Layout       geom.Layout
	Matrices     Matrices
	TextureSlots int
	Block        []UniformField

	// DepthTest enables depth testing and writing. Overlay programs leave
	// it off so they draw over the scene in registry order.
	DepthTest bool

	// Blend enables premultiplied alpha blending.
	Blend bool

	// Wireframe also builds a line-list pipeline used when the frame asks
	// for wireframe rendering.
	Wireframe bool
}

// Program is a linked render pipeline plus its uniform metadata.
//
// Program block setters write a CPU staging copy; the copy is uploaded the
// next time the program is bound, so setters may be called at any time.
type Program struct {
	dev  *Device
	desc ProgramDescriptor

	vs, fs hal.ShaderModule

	drawLayout  hal.BindGroupLayout
	blockLayout hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	pipeline    hal.RenderPipeline
	wire        hal.RenderPipeline

	drawBlock *uniformBlock // template, copied per drawable
	block     *uniformBlock
	blockBuf  hal.Buffer
	blockBG   hal.BindGroup

	warnMu sync.Mutex
	warned map[string]bool
}

// Link builds a program from a vertex and a fragment module. All failures
// are reported as *ShaderLinkError.
func Link(dev *Device, vertex, fragment *ShaderModule, desc ProgramDescriptor) (*Program, error) {
	linkErr := func(msg string, err error) error {
		if err != nil {
			msg = fmt.Sprintf("%s: %v", msg, err)
		}
		return &ShaderLinkError{Label: desc.Label, Log: msg, Err: err}
	}

	switch {
	case dev == nil || dev.device == nil:
		return nil, linkErr("device closed", ErrDeviceClosed)
	case vertex == nil || fragment == nil:
		return nil, linkErr("missing shader module", nil)
	case vertex.Stage != StageVertex:
		return nil, linkErr(fmt.Sprintf("vertex slot holds a %s shader", vertex.Stage), nil)
	case fragment.Stage != StageFragment:
		return nil, linkErr(fmt.Sprintf("fragment slot holds a %s shader", fragment.Stage), nil)
	case !desc.Layout.Valid():
		return nil, linkErr(fmt.Sprintf("invalid vertex layout %v", desc.Layout), geom.ErrInvalidLayout)
	case desc.TextureSlots < 0 || desc.TextureSlots > MaxTextureSlots:
		return nil, linkErr(fmt.Sprintf("texture slots %d outside [0, %d]", desc.TextureSlots, MaxTextureSlots), nil)
	}

	p := &Program{dev: dev, desc: desc, warned: make(map[string]bool)}
	if err := p.link(vertex, fragment); err != nil {
		p.Destroy()
		return nil, linkErr("create pipeline", err)
	}
	slogger().Debug("gpu: program linked",
		"label", desc.Label, "layout", desc.Layout, "matrices", desc.Matrices,
		"textures", desc.TextureSlots, "block_bytes", p.BlockSize())
	return p, nil
}

func (p *Program) link(vertex, fragment *ShaderModule) error { //nolint:funlen // pipeline descriptors are verbose
	device := p.dev.device
	var err error

	if p.drawBlock, err = newUniformBlock(p.desc.Matrices.drawFields()); err != nil {
		return err
	}
	if len(p.desc.Block) > 0 {
		if p.block, err = newUniformBlock(p.desc.Block); err != nil {
			return err
		}
	}

	if p.vs, err = vertex.create(device); err != nil {
		return fmt.Errorf("vertex module: %w", err)
	}
	if p.fs, err = fragment.create(device); err != nil {
		return fmt.Errorf("fragment module: %w", err)
	}

	stages := gputypes.ShaderStageVertex | gputypes.ShaderStageFragment
	entries := []gputypes.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: stages,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}
	for i := range p.desc.TextureSlots {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    textureBinding(i),
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    samplerBinding(i),
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	if p.drawLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   p.desc.Label + "_draw_layout",
		Entries: entries,
	}); err != nil {
		return fmt.Errorf("draw bind group layout: %w", err)
	}

	layouts := []hal.BindGroupLayout{p.drawLayout}
	if p.block != nil {
		if p.blockLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label: p.desc.Label + "_block_layout",
			Entries: []gputypes.BindGroupLayoutEntry{{
				Binding:    0,
				Visibility: stages,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			}},
		}); err != nil {
			return fmt.Errorf("block bind group layout: %w", err)
		}
		layouts = append(layouts, p.blockLayout)

		if p.blockBuf, err = p.dev.createBuffer(p.desc.Label+"_block", p.block.data, gputypes.BufferUsageUniform); err != nil {
			return err
		}
		if p.blockBG, err = device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  p.desc.Label + "_block_group",
			Layout: p.blockLayout,
			Entries: []gputypes.BindGroupEntry{{
				Binding: 0,
				Resource: gputypes.BufferBinding{
					Buffer: p.blockBuf.NativeHandle(), Offset: 0, Size: p.block.Size(),
				},
			}},
		}); err != nil {
			return fmt.Errorf("block bind group: %w", err)
		}
	}

	if p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.desc.Label + "_pipeline_layout",
		BindGroupLayouts: layouts,
	}); err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}

	if p.pipeline, err = p.createPipeline(gputypes.PrimitiveTopologyTriangleList); err != nil {
		return err
	}
	if p.desc.Wireframe {
		if p.wire, err = p.createPipeline(gputypes.PrimitiveTopologyLineList); err != nil {
			return fmt.Errorf("wireframe: %w", err)
		}
	}
	return nil
}

func (p *Program) createPipeline(topology gputypes.PrimitiveTopology) (hal.RenderPipeline, error) {
	target := gputypes.ColorTargetState{
		Format:    p.dev.format,
		WriteMask: gputypes.ColorWriteMaskAll,
	}
	if p.desc.Blend {
		blend := gputypes.BlendStatePremultiplied()
		target.Blend = &blend
	}

	depthCompare := gputypes.CompareFunctionAlways
	if p.desc.DepthTest {
		depthCompare = gputypes.CompareFunctionLess
	}
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}

	pipeline, err := p.dev.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.desc.Label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.vs,
			EntryPoint: VertexEntryPoint,
			Buffers:    vertexLayout(p.desc.Layout),
		},
		Fragment: &hal.FragmentState{
			Module:     p.fs,
			EntryPoint: FragmentEntryPoint,
			Targets:    []gputypes.ColorTargetState{target},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: p.desc.DepthTest,
			DepthCompare:      depthCompare,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0x00,
			StencilWriteMask:  0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("render pipeline: %w", err)
	}
	return pipeline, nil
}

// Descriptor returns the descriptor the program was linked with.
func (p *Program) Descriptor() ProgramDescriptor { return p.desc }

// Layout returns the vertex layout the pipeline expects.
func (p *Program) Layout() geom.Layout { return p.desc.Layout }

// TextureSlots returns the number of texture slots.
func (p *Program) TextureSlots() int { return p.desc.TextureSlots }

// BlockSize returns the program block size in bytes, 0 if there is none.
func (p *Program) BlockSize() uint64 {
	if p.block == nil {
		return 0
	}
	return p.block.Size()
}

// Uniform resolves a program block field. ok is false for unknown names.
func (p *Program) Uniform(name string) (u Uniform, ok bool) {
	if p.block == nil {
		return Uniform{}, false
	}
	return p.block.lookup(name)
}

// SetFloat sets an f32 field.
func (p *Program) SetFloat(u Uniform, v float32) {
	if p.block != nil {
		p.block.setFloat(u, v)
	}
}

// SetInt sets an i32 field.
func (p *Program) SetInt(u Uniform, v int32) {
	if p.block != nil {
		p.block.setInt(u, v)
	}
}

// SetVec2 sets a vec2<f32> field.
func (p *Program) SetVec2(u Uniform, v mgl32.Vec2) {
	if p.block != nil {
		p.block.setVec2(u, v)
	}
}

// SetVec3 sets a vec3<f32> field.
func (p *Program) SetVec3(u Uniform, v mgl32.Vec3) {
	if p.block != nil {
		p.block.setVec3(u, v)
	}
}

// SetVec4 sets a vec4<f32> field.
func (p *Program) SetVec4(u Uniform, v mgl32.Vec4) {
	if p.block != nil {
		p.block.setVec4(u, v)
	}
}

// SetMat4 sets a mat4x4<f32> field.
func (p *Program) SetMat4(u Uniform, m mgl32.Mat4) {
	if p.block != nil {
		p.block.setMat4(u, m)
	}
}

// SetUniform sets a program block field by name. Values may be float32,
// float64, int, int32, bool, mgl32.Vec2/Vec3/Vec4/Mat4 or g3d.Color.
// Names may index arrays ("point_position[2]"). Unknown names are ignored
// with a warning logged once per name.
func (p *Program) SetUniform(name string, v any) {
	u, ok := p.resolve(name)
	if !ok {
		p.warnOnce(name, "gpu: unknown uniform", "program", p.desc.Label, "uniform", name)
		return
	}
	if c, isColor := v.(g3d.Color); isColor {
		if u.typ == UniformVec3 {
			v = c.Vec3()
		} else {
			v = c.Vec4()
		}
	}
	if err := p.block.set(u, v); err != nil {
		p.warnOnce(name, "gpu: uniform not set", "program", p.desc.Label, "uniform", name, "error", err)
	}
}

func (p *Program) resolve(name string) (Uniform, bool) {
	if p.block == nil {
		return Uniform{}, false
	}
	base, idx, indexed := splitIndex(name)
	u, ok := p.block.lookup(base)
	if !ok {
		return Uniform{}, false
	}
	if !indexed {
		return u, true
	}
	e := u.Index(idx)
	return e, e.Valid()
}

// splitIndex parses "name[i]".
func splitIndex(s string) (base string, idx int, ok bool) {
	n := len(s)
	if n < 4 || s[n-1] != ']' {
		return s, 0, false
	}
	open := -1
	for i := n - 2; i >= 0; i-- {
		if s[i] == '[' {
			open = i
			break
		}
	}
	if open <= 0 || open == n-2 {
		return s, 0, false
	}
	for _, c := range s[open+1 : n-1] {
		if c < '0' || c > '9' {
			return s, 0, false
		}
		idx = idx*10 + int(c-'0')
	}
	return s[:open], idx, true
}

func (p *Program) warnOnce(key, msg string, args ...any) {
	p.warnMu.Lock()
	seen := p.warned[key]
	p.warned[key] = true
	p.warnMu.Unlock()
	if !seen {
		slogger().Warn(msg, args...)
	}
}

// Bind uploads a dirty program block and sets the pipeline and group 1.
func (p *Program) Bind(pass g3d.RenderPass, wireframe bool) error {
	if p.pipeline == nil {
		return errors.New("gpu: program destroyed")
	}
	if p.block != nil && p.block.dirty {
		p.dev.queue.WriteBuffer(p.blockBuf, 0, p.block.data)
		p.block.dirty = false
	}
	if wireframe && p.wire != nil {
		pass.SetPipeline(p.wire)
	} else {
		pass.SetPipeline(p.pipeline)
	}
	if p.blockBG != nil {
		pass.SetBindGroup(1, p.blockBG, nil)
	}
	return nil
}

// Destroy releases every GPU object the program owns. Safe to call more
// than once.
func (p *Program) Destroy() {
	if p.dev == nil || p.dev.device == nil {
		return
	}
	d := p.dev.device
	if p.wire != nil {
		d.DestroyRenderPipeline(p.wire)
		p.wire = nil
	}
	if p.pipeline != nil {
		d.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		d.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.blockBG != nil {
		d.DestroyBindGroup(p.blockBG)
		p.blockBG = nil
	}
	if p.blockBuf != nil {
		d.DestroyBuffer(p.blockBuf)
		p.blockBuf = nil
	}
	if p.blockLayout != nil {
		d.DestroyBindGroupLayout(p.blockLayout)
		p.blockLayout = nil
	}
	if p.drawLayout != nil {
		d.DestroyBindGroupLayout(p.drawLayout)
		p.drawLayout = nil
	}
	if p.fs != nil {
		d.DestroyShaderModule(p.fs)
		p.fs = nil
	}
	if p.vs != nil {
		d.DestroyShaderModule(p.vs)
		p.vs = nil
	}
}
