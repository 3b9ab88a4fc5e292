// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformType is the WGSL type of a uniform block field.
type UniformType uint8

// Uniform field types.
const (
	UniformFloat UniformType = iota // f32
	UniformInt                      // i32
	UniformVec2                     // vec2<f32>
	UniformVec3                     // vec3<f32>
	UniformVec4                     // vec4<f32>
	UniformMat4                     // mat4x4<f32>
)

func (t UniformType) String() string {
	switch t {
	case UniformFloat:
		return "f32"
	case UniformInt:
		return "i32"
	case UniformVec2:
		return "vec2<f32>"
	case UniformVec3:
		return "vec3<f32>"
	case UniformVec4:
		return "vec4<f32>"
	case UniformMat4:
		return "mat4x4<f32>"
	default:
		return fmt.Sprintf("UniformType(%d)", uint8(t))
	}
}

// alignSize returns the WGSL uniform address space alignment and size.
func (t UniformType) alignSize() (align, size uint32) {
	switch t {
	case UniformFloat, UniformInt:
		return 4, 4
	case UniformVec2:
		return 8, 8
	case UniformVec3:
		return 16, 12
	case UniformVec4:
		return 16, 16
	case UniformMat4:
		return 16, 64
	default:
		return 0, 0
	}
}

// UniformField declares one member of a program's uniform block, in the
// same order as the WGSL struct. Count > 0 declares an array.
type UniformField struct {
	Name  string
	Type  UniformType
	Count int
}

// Uniform is a resolved location inside a uniform block. The zero value is
// invalid and setters ignore it.
type Uniform struct {
	name   string
	typ    UniformType
	offset uint32
	stride uint32
	count  uint32
	valid  bool
}

// Valid reports whether u refers to a field.
func (u Uniform) Valid() bool { return u.valid }

// Offset returns the byte offset of the field (or element) in the block.
func (u Uniform) Offset() uint32 { return u.offset }

// Index returns the location of element i of an array field. It returns an
// invalid Uniform when u is not an array or i is out of range.
func (u Uniform) Index(i int) Uniform {
	if !u.valid || u.count == 0 || i < 0 || uint32(i) >= u.count {
		return Uniform{}
	}
	e := u
	e.offset += uint32(i) * u.stride
	e.count = 0
	e.name = fmt.Sprintf("%s[%d]", u.name, i)
	return e
}

func roundUp(n, align uint32) uint32 {
	return (n + align - 1) / align * align
}

// uniformBlock is the CPU staging copy of a uniform buffer with offsets
// resolved from its field list.
type uniformBlock struct {
	fields map[string]Uniform
	order  []string
	data   []byte
	dirty  bool
}

func newUniformBlock(fields []UniformField) (*uniformBlock, error) {
	b := &uniformBlock{fields: make(map[string]Uniform, len(fields))}
	var off uint32
	for _, f := range fields {
		align, size := f.Type.alignSize()
		if size == 0 {
			return nil, fmt.Errorf("uniform %q: unknown type %v", f.Name, f.Type)
		}
		if f.Name == "" {
			return nil, fmt.Errorf("uniform field without name")
		}
		if _, dup := b.fields[f.Name]; dup {
			return nil, fmt.Errorf("uniform %q declared twice", f.Name)
		}
		u := Uniform{name: f.Name, typ: f.Type, valid: true}
		if f.Count > 0 {
			// Array elements in the uniform address space are 16-byte aligned.
			align = max(align, 16)
			u.stride = roundUp(size, 16)
			u.count = uint32(f.Count)
			size = u.stride * u.count
		}
		off = roundUp(off, align)
		u.offset = off
		off += size
		b.fields[f.Name] = u
		b.order = append(b.order, f.Name)
	}
	b.data = make([]byte, roundUp(off, 16))
	return b, nil
}

// clone returns a block with the same layout and its own copy of the data.
func (b *uniformBlock) clone() *uniformBlock {
	return &uniformBlock{
		fields: b.fields,
		order:  b.order,
		data:   bytes.Clone(b.data),
		dirty:  b.dirty,
	}
}

// Size returns the block size in bytes.
func (b *uniformBlock) Size() uint64 { return uint64(len(b.data)) }

func (b *uniformBlock) lookup(name string) (Uniform, bool) {
	u, ok := b.fields[name]
	return u, ok
}

func (b *uniformBlock) check(u Uniform, want UniformType) bool {
	if !u.valid {
		return false
	}
	if u.typ != want || u.count != 0 {
		slogger().Warn("gpu: uniform type mismatch", "uniform", u.name, "have", u.typ, "set", want)
		return false
	}
	return true
}

func (b *uniformBlock) putFloats(off uint32, v ...float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(b.data[off+uint32(i)*4:], math.Float32bits(f))
	}
	b.dirty = true
}

func (b *uniformBlock) setFloat(u Uniform, v float32) {
	if b.check(u, UniformFloat) {
		b.putFloats(u.offset, v)
	}
}

func (b *uniformBlock) setInt(u Uniform, v int32) {
	if b.check(u, UniformInt) {
		binary.LittleEndian.PutUint32(b.data[u.offset:], uint32(v))
		b.dirty = true
	}
}

func (b *uniformBlock) setVec2(u Uniform, v mgl32.Vec2) {
	if b.check(u, UniformVec2) {
		b.putFloats(u.offset, v[:]...)
	}
}

func (b *uniformBlock) setVec3(u Uniform, v mgl32.Vec3) {
	if b.check(u, UniformVec3) {
		b.putFloats(u.offset, v[:]...)
	}
}

func (b *uniformBlock) setVec4(u Uniform, v mgl32.Vec4) {
	if b.check(u, UniformVec4) {
		b.putFloats(u.offset, v[:]...)
	}
}

// setMat4 writes m column-major, which is both mgl32's storage order and
// WGSL's.
func (b *uniformBlock) setMat4(u Uniform, m mgl32.Mat4) {
	if b.check(u, UniformMat4) {
		b.putFloats(u.offset, m[:]...)
	}
}

// set dispatches a dynamically typed value to the typed setter.
func (b *uniformBlock) set(u Uniform, v any) error {
	switch x := v.(type) {
	case float32:
		b.setFloat(u, x)
	case float64:
		b.setFloat(u, float32(x))
	case int:
		b.setInt(u, int32(x))
	case int32:
		b.setInt(u, x)
	case bool:
		var i int32
		if x {
			i = 1
		}
		b.setInt(u, i)
	case mgl32.Vec2:
		b.setVec2(u, x)
	case mgl32.Vec3:
		b.setVec3(u, x)
	case mgl32.Vec4:
		b.setVec4(u, x)
	case mgl32.Mat4:
		b.setMat4(u, x)
	default:
		return fmt.Errorf("gpu: unsupported uniform value %T", v)
	}
	return nil
}
