package quad

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/naga/ir"
)

func TestShaderSourceDeclarations(t *testing.T) {
	src := ShaderSource()
	for _, want := range []string{
		"@group(0) @binding(0) var<uniform> transform: mat4x4<f32>",
		"@group(1) @binding(0) var tex: texture_2d<f32>",
		"@group(1) @binding(1) var tex_sampler: sampler",
		"@location(0) position: vec2<f32>",
		"@location(1) uv: vec2<f32>",
		"fn vs_main",
		"fn fs_main",
		"vec4<f32>(in.position, 0.0, 1.0)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source missing %q", want)
		}
	}
}

func TestShaderCompilesToSPIRV(t *testing.T) {
	words, err := CompileSPIRV(ShaderSource())
	if err != nil {
		t.Fatalf("CompileSPIRV: %v", err)
	}
	if len(words) < 5 {
		t.Fatalf("SPIR-V too short: %d words", len(words))
	}
	if words[0] != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", words[0])
	}
}

func TestCheckShaderEmbedded(t *testing.T) {
	if err := CheckShader(ShaderSource()); err != nil {
		t.Fatalf("embedded shader does not match its binding table: %v", err)
	}
}

func TestReflectEmbedded(t *testing.T) {
	r, err := Reflect(ShaderSource())
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Slots) != 3 {
		t.Fatalf("reflected %d slots, want 3", len(r.Slots))
	}
	for i, s := range Slots() {
		if r.Slots[i].Name != s.Name {
			t.Errorf("slot %d name = %q, want %q", i, r.Slots[i].Name, s.Name)
		}
	}
	if r.EntryPoints[VertexEntryPoint] != ir.StageVertex {
		t.Errorf("vs_main stage = %v", r.EntryPoints[VertexEntryPoint])
	}
	if r.EntryPoints[FragmentEntryPoint] != ir.StageFragment {
		t.Errorf("fs_main stage = %v", r.EntryPoints[FragmentEntryPoint])
	}
}

func TestCheckShaderRejectsMismatch(t *testing.T) {
	src := ShaderSource()
	tests := []struct {
		name    string
		old     string
		new     string
		wantErr error
	}{
		{
			name:    "sampler moved",
			old:     "@group(1) @binding(1) var tex_sampler",
			new:     "@group(1) @binding(2) var tex_sampler",
			wantErr: ErrShaderMismatch,
		},
		{
			name:    "transform in material group",
			old:     "@group(0) @binding(0) var<uniform> transform",
			new:     "@group(2) @binding(0) var<uniform> transform",
			wantErr: ErrShaderMismatch,
		},
		{
			name:    "uv at wrong location",
			old:     "@location(1) uv: vec2<f32>",
			new:     "@location(2) uv: vec2<f32>",
			wantErr: ErrShaderMismatch,
		},
		{
			name:    "renamed entry point",
			old:     "fn fs_main",
			new:     "fn fs_other",
			wantErr: ErrShaderMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := strings.Replace(src, tt.old, tt.new, 1)
			if mod == src {
				t.Fatalf("replacement %q not found", tt.old)
			}
			if err := CheckShader(mod); !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckShader = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckShaderSyntaxError(t *testing.T) {
	err := CheckShader("fn broken( {")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if errors.Is(err, ErrShaderMismatch) {
		t.Error("a parse error should not be reported as a binding mismatch")
	}
}
