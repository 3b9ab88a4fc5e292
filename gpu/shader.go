package gpu

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Stage is a programmable pipeline stage.
type Stage uint8

// Shader stages.
const (
	StageVertex Stage = iota
	StageFragment
)

// Entry points every shader stage must define.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

var (
	vertexEntry   = regexp.MustCompile(`@vertex\s+fn\s+` + VertexEntryPoint + `\b`)
	fragmentEntry = regexp.MustCompile(`@fragment\s+fn\s+` + FragmentEntryPoint + `\b`)
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

func (s Stage) entryPoint() string {
	if s == StageFragment {
		return FragmentEntryPoint
	}
	return VertexEntryPoint
}

// ShaderModule is WGSL compiled to SPIR-V for one stage. It holds no GPU
// resources; Link creates them.
type ShaderModule struct {
	Stage Stage
	Label string
	spirv []uint32
}

// Compile compiles WGSL source for a stage. The source must define the
// stage's entry point (@vertex fn vs_main or @fragment fn fs_main).
// Failures return a *ShaderCompileError and a nil module.
func Compile(stage Stage, label, source string) (*ShaderModule, error) {
	if stage != StageVertex && stage != StageFragment {
		return nil, &ShaderCompileError{Stage: stage, Label: label, Log: "unknown stage"}
	}
	entry := vertexEntry
	if stage == StageFragment {
		entry = fragmentEntry
	}
	if !entry.MatchString(source) {
		return nil, &ShaderCompileError{
			Stage: stage,
			Label: label,
			Log:   fmt.Sprintf("missing entry point %s", stage.entryPoint()),
		}
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Label: label, Log: err.Error()}
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	slogger().Debug("gpu: shader compiled", "label", label, "stage", stage, "words", len(words))
	return &ShaderModule{Stage: stage, Label: label, spirv: words}, nil
}

// LoadShaderFile reads and compiles a WGSL file.
func LoadShaderFile(stage Stage, path string) (*ShaderModule, error) {
	src, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &ShaderCompileError{Stage: stage, Label: path, Log: err.Error()}
	}
	return Compile(stage, filepath.Base(path), string(src))
}

// SPIRV returns the compiled words.
func (m *ShaderModule) SPIRV() []uint32 { return m.spirv }

func (m *ShaderModule) create(device hal.Device) (hal.ShaderModule, error) {
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  m.Label,
		Source: hal.ShaderSource{SPIRV: m.spirv},
	})
}
