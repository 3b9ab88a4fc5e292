package gpu

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/g3d"
	"github.com/gogpu/g3d/geom"
)

// recordHandler keeps the messages of every record at or above Warn.
type recordHandler struct {
	mu   *sync.Mutex
	msgs *[]string
}

func (h recordHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelWarn }
func (h recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	*h.msgs = append(*h.msgs, r.Message)
	h.mu.Unlock()
	return nil
}
func (h recordHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordHandler) WithGroup(string) slog.Handler      { return h }

// captureWarnings routes package logging into a slice for the test.
func captureWarnings(t *testing.T) *[]string {
	t.Helper()
	var msgs []string
	setLogger(slog.New(recordHandler{mu: &sync.Mutex{}, msgs: &msgs}))
	t.Cleanup(func() { setLogger(nil) })
	return &msgs
}

func TestCompileRejectsInvalidSource(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		src   string
	}{
		{"syntax", StageVertex, "@vertex fn vs_main( -> {"},
		{"missing vertex entry", StageVertex, "@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }"},
		{"missing fragment entry", StageFragment, flat2DShaderSource[:strings.Index(flat2DShaderSource, "@fragment")]},
		{"unknown stage", Stage(9), flat2DShaderSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.stage, tt.name, tt.src)
			if m != nil {
				t.Error("Compile() returned a module")
			}
			var ce *ShaderCompileError
			if !errors.As(err, &ce) {
				t.Fatalf("Compile() error = %v, want *ShaderCompileError", err)
			}
			if ce.Log == "" {
				t.Error("empty compile log")
			}
		})
	}
}

func TestCompileBuiltinShaders(t *testing.T) {
	for _, src := range []string{flat2DShaderSource, flat3DShaderSource, texturedShaderSource, spriteShaderSource, phongShaderSource} {
		for _, stage := range []Stage{StageVertex, StageFragment} {
			m, err := Compile(stage, "builtin", src)
			if err != nil {
				t.Fatalf("Compile(%s) error = %v", stage, err)
			}
			if len(m.SPIRV()) == 0 || m.SPIRV()[0] != 0x07230203 {
				t.Errorf("%s module does not start with the SPIR-V magic number", stage)
			}
		}
	}
}

func TestLoadShaderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.wgsl")
	if err := os.WriteFile(path, []byte(flat2DShaderSource), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := LoadShaderFile(StageFragment, path)
	if err != nil {
		t.Fatalf("LoadShaderFile() error = %v", err)
	}
	if m.Label != "flat.wgsl" || m.Stage != StageFragment {
		t.Errorf("module = %q %v", m.Label, m.Stage)
	}

	var ce *ShaderCompileError
	if _, err := LoadShaderFile(StageVertex, filepath.Join(t.TempDir(), "missing.wgsl")); !errors.As(err, &ce) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLinkErrors(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()

	vs, err := Compile(StageVertex, "vs", flat2DShaderSource)
	if err != nil {
		t.Fatal(err)
	}
	fs, err := Compile(StageFragment, "fs", flat2DShaderSource)
	if err != nil {
		t.Fatal(err)
	}
	ok := ProgramDescriptor{Label: "flat", Layout: geom.LayoutPosition2}

	tests := []struct {
		name   string
		dev    *Device
		vs, fs *ShaderModule
		desc   ProgramDescriptor
	}{
		{"nil device", nil, vs, fs, ok},
		{"nil module", dev, nil, fs, ok},
		{"swapped stages", dev, fs, vs, ok},
		{"invalid layout", dev, vs, fs, ProgramDescriptor{Label: "x"}},
		{"too many slots", dev, vs, fs, ProgramDescriptor{Label: "x", Layout: geom.LayoutPosition2, TextureSlots: MaxTextureSlots + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Link(tt.dev, tt.vs, tt.fs, tt.desc)
			if p != nil {
				t.Error("Link() returned a program")
			}
			var le *ShaderLinkError
			if !errors.As(err, &le) {
				t.Fatalf("Link() error = %v, want *ShaderLinkError", err)
			}
		})
	}

	p, err := Link(dev, vs, fs, ok)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	defer p.Destroy()
	if p.BlockSize() != 0 {
		t.Errorf("BlockSize() = %d for a program without block", p.BlockSize())
	}
}

func TestProgramSetUniform(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	warnings := captureWarnings(t)

	p, err := dev.Program(ProgramPhong)
	if err != nil {
		t.Fatalf("Program(phong) error = %v", err)
	}
	if p.BlockSize() != 400 || p.TextureSlots() != 2 {
		t.Errorf("phong block=%d slots=%d", p.BlockSize(), p.TextureSlots())
	}

	p.SetUniform("shininess", 32.0)
	p.SetUniform("dir_diffuse", g3d.RGB(0.4, 0.4, 0.4))
	p.SetUniform("point_position[3]", mgl32.Vec4{1, 2, 3, 1})
	if len(*warnings) != 0 {
		t.Errorf("valid uniforms warned: %v", *warnings)
	}
	if !p.block.dirty {
		t.Error("setters did not mark the block dirty")
	}

	p.SetUniform("no_such_uniform", 1.0)
	p.SetUniform("no_such_uniform", 2.0)
	p.SetUniform("point_position[4]", mgl32.Vec4{})
	if len(*warnings) != 2 {
		t.Errorf("warnings = %v, want one per unknown name", *warnings)
	}

	// Bind flushes the staged block.
	if err := p.Bind(&recordPass{}, false); err != nil {
		t.Fatal(err)
	}
	if p.block.dirty {
		t.Error("Bind did not flush the block")
	}
}

func TestSetLights(t *testing.T) {
	dev, cleanup := createNoopDevice(t)
	defer cleanup()
	p, err := dev.Program(ProgramPhong)
	if err != nil {
		t.Fatal(err)
	}

	pl := NewPointLight(mgl32.Vec3{0.7, 0.2, 2}, g3d.RGB(0.05, 0.05, 0.05), g3d.RGB(0.8, 0.8, 0.8), g3d.White)
	lights := Lights{
		ViewPos:   mgl32.Vec3{0, 0, 3},
		Shininess: 32,
		Dir:       DirLight{Direction: mgl32.Vec3{-0.2, -1, -0.3}},
		Points:    []PointLight{pl, pl},
	}
	if err := SetLights(p, lights); err != nil {
		t.Fatalf("SetLights() error = %v", err)
	}
	u, _ := p.Uniform("point_count")
	if got := int32(p.block.data[u.Offset()]); got != 2 {
		t.Errorf("point_count = %d, want 2", got)
	}

	lights.Points = make([]PointLight, MaxPointLights+1)
	if err := SetLights(p, lights); err == nil {
		t.Error("SetLights accepted too many point lights")
	}

	flat, err := dev.Program(ProgramFlat3D)
	if err != nil {
		t.Fatal(err)
	}
	if err := SetLights(flat, Lights{}); err == nil {
		t.Error("SetLights accepted a program without block")
	}
}
