package quad

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

//go:embed shaders/textured_quad.wgsl
var shaderSource string

// Entry point names in the embedded shader.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// ErrShaderMismatch is returned when a shader does not declare the binding
// table, entry points or vertex layout the host relies on.
var ErrShaderMismatch = errors.New("quad: shader does not match binding contract")

// ShaderSource returns the embedded WGSL program.
func ShaderSource() string { return shaderSource }

// CompileSPIRV compiles WGSL to little-endian SPIR-V words.
func CompileSPIRV(wgsl string) ([]uint32, error) {
	b, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("quad: compile shader: %w", err)
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words, nil
}

// Reflection is what a WGSL module declares at its interface.
type Reflection struct {
	Slots           []Slot // Visibility is not reflected and left zero
	EntryPoints     map[string]ir.ShaderStage
	VertexInputs    map[uint32]string // location -> WGSL type
	VertexOutputs   map[uint32]string // location -> WGSL type
	HasClipPosition bool
	FragmentOutputs map[uint32]string
}

// Reflect parses and validates wgsl and describes its interface.
func Reflect(wgsl string) (*Reflection, error) {
	ast, err := naga.Parse(wgsl)
	if err != nil {
		return nil, fmt.Errorf("quad: parse shader: %w", err)
	}
	mod, err := naga.LowerWithSource(ast, wgsl)
	if err != nil {
		return nil, fmt.Errorf("quad: lower shader: %w", err)
	}
	verrs, err := naga.Validate(mod)
	if err != nil {
		return nil, fmt.Errorf("quad: validate shader: %w", err)
	}
	if len(verrs) > 0 {
		return nil, fmt.Errorf("quad: validate shader: %w", verrs[0])
	}

	r := &Reflection{
		EntryPoints:     make(map[string]ir.ShaderStage),
		VertexInputs:    make(map[uint32]string),
		VertexOutputs:   make(map[uint32]string),
		FragmentOutputs: make(map[uint32]string),
	}
	for _, g := range mod.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		kind, ok := resourceKind(mod, g)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported resource %q at @group(%d) @binding(%d)",
				ErrShaderMismatch, g.Name, g.Binding.Group, g.Binding.Binding)
		}
		r.Slots = append(r.Slots, Slot{Name: g.Name, Group: g.Binding.Group, Binding: g.Binding.Binding, Kind: kind})
	}
	slices.SortFunc(r.Slots, func(a, b Slot) int {
		if a.Group != b.Group {
			return int(a.Group) - int(b.Group)
		}
		return int(a.Binding) - int(b.Binding)
	})

	for _, ep := range mod.EntryPoints {
		r.EntryPoints[ep.Name] = ep.Stage
		switch ep.Stage {
		case ir.StageVertex:
			for _, arg := range ep.Function.Arguments {
				collectLocations(mod, arg.Type, arg.Binding, r.VertexInputs, nil)
			}
			if res := ep.Function.Result; res != nil {
				collectLocations(mod, res.Type, res.Binding, r.VertexOutputs, &r.HasClipPosition)
			}
		case ir.StageFragment:
			if res := ep.Function.Result; res != nil {
				collectLocations(mod, res.Type, res.Binding, r.FragmentOutputs, nil)
			}
		}
	}
	return r, nil
}

// CheckShader verifies that wgsl declares exactly the binding table of
// Slots, the vs_main/fs_main entry points, the vertex inputs of
// VertexLayout and a vec4 color output at location 0.
func CheckShader(wgsl string) error {
	r, err := Reflect(wgsl)
	if err != nil {
		return err
	}
	want := Slots()
	if len(r.Slots) != len(want) {
		return fmt.Errorf("%w: %d bindings declared, want %d", ErrShaderMismatch, len(r.Slots), len(want))
	}
	for i, s := range want {
		got := r.Slots[i]
		if got.Group != s.Group || got.Binding != s.Binding || got.Kind != s.Kind {
			return fmt.Errorf("%w: got @group(%d) @binding(%d) %s, want %s",
				ErrShaderMismatch, got.Group, got.Binding, got.Kind, s)
		}
	}

	if st, ok := r.EntryPoints[VertexEntryPoint]; !ok || st != ir.StageVertex {
		return fmt.Errorf("%w: missing vertex entry point %s", ErrShaderMismatch, VertexEntryPoint)
	}
	if st, ok := r.EntryPoints[FragmentEntryPoint]; !ok || st != ir.StageFragment {
		return fmt.Errorf("%w: missing fragment entry point %s", ErrShaderMismatch, FragmentEntryPoint)
	}

	inputs := map[uint32]string{LocationPosition: "vec2<f32>", LocationUV: "vec2<f32>"}
	if !mapsEqual(r.VertexInputs, inputs) {
		return fmt.Errorf("%w: vertex inputs %v, want %v", ErrShaderMismatch, r.VertexInputs, inputs)
	}
	if !r.HasClipPosition {
		return fmt.Errorf("%w: vertex stage has no @builtin(position) output", ErrShaderMismatch)
	}
	if outs := map[uint32]string{0: "vec2<f32>"}; !mapsEqual(r.VertexOutputs, outs) {
		return fmt.Errorf("%w: vertex outputs %v, want %v", ErrShaderMismatch, r.VertexOutputs, outs)
	}
	if outs := map[uint32]string{0: "vec4<f32>"}; !mapsEqual(r.FragmentOutputs, outs) {
		return fmt.Errorf("%w: fragment outputs %v, want %v", ErrShaderMismatch, r.FragmentOutputs, outs)
	}
	return nil
}

func resourceKind(mod *ir.Module, g ir.GlobalVariable) (ResourceKind, bool) {
	if int(g.Type) >= len(mod.Types) {
		return 0, false
	}
	switch t := mod.Types[g.Type].Inner.(type) {
	case ir.MatrixType:
		if g.Space == ir.SpaceUniform && t.Columns == ir.Vec4 && t.Rows == ir.Vec4 &&
			t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return ResourceUniform, true
		}
	case ir.ImageType:
		if t.Dim == ir.Dim2D && t.Class == ir.ImageClassSampled && !t.Arrayed && !t.Multisampled &&
			t.SampledKind == ir.ScalarFloat {
			return ResourceTexture, true
		}
	case ir.SamplerType:
		if !t.Comparison {
			return ResourceSampler, true
		}
	}
	return 0, false
}

// collectLocations records @location bindings of a value or of its struct
// members, and whether a @builtin(position) is present.
func collectLocations(mod *ir.Module, th ir.TypeHandle, b *ir.Binding, into map[uint32]string, position *bool) {
	if b != nil {
		recordBinding(mod, th, *b, into, position)
		return
	}
	if int(th) >= len(mod.Types) {
		return
	}
	st, ok := mod.Types[th].Inner.(ir.StructType)
	if !ok {
		return
	}
	for _, m := range st.Members {
		if m.Binding != nil {
			recordBinding(mod, m.Type, *m.Binding, into, position)
		}
	}
}

func recordBinding(mod *ir.Module, th ir.TypeHandle, b ir.Binding, into map[uint32]string, position *bool) {
	switch b := b.(type) {
	case ir.LocationBinding:
		into[b.Location] = typeName(mod, th)
	case ir.BuiltinBinding:
		if b.Builtin == ir.BuiltinPosition && position != nil {
			*position = true
		}
	}
}

// typeName renders the float vector types the interface uses; anything
// else is reported generically.
func typeName(mod *ir.Module, th ir.TypeHandle) string {
	if int(th) >= len(mod.Types) {
		return "?"
	}
	switch t := mod.Types[th].Inner.(type) {
	case ir.VectorType:
		if t.Scalar.Kind == ir.ScalarFloat && t.Scalar.Width == 4 {
			return fmt.Sprintf("vec%d<f32>", t.Size)
		}
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat && t.Width == 4 {
			return "f32"
		}
	}
	return fmt.Sprintf("%T", mod.Types[th].Inner)
}

func mapsEqual(a, b map[uint32]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
