package quad

// VertexOutput is what the vertex stage hands to the rasterizer: the clip
// position (builtin position) and the UV at location 0.
type VertexOutput struct {
	Clip [4]float32
	UV   [2]float32
}

// VertexStage computes clip = transform × (x, y, 0, 1) and forwards the UV
// unchanged. It is pure; a singular transform yields degenerate output,
// never an error.
func VertexStage(t Transform, v Vertex) VertexOutput {
	return VertexOutput{
		Clip: t.Apply(v.Position[0], v.Position[1]),
		UV:   v.UV,
	}
}

// FragmentStage returns the texture sampled at uv. No tint, blending or
// gamma is applied here.
func FragmentStage(tex *Texture, s Sampler, uv [2]float32) Color {
	return s.Sample(tex, uv)
}

// ShadeVertex runs the vertex stage with b's transform.
func (b Bindings) ShadeVertex(v Vertex) VertexOutput {
	return VertexStage(b.transform, v)
}

// ShadeFragment runs the fragment stage with b's texture and sampler.
func (b Bindings) ShadeFragment(uv [2]float32) Color {
	return FragmentStage(b.texture, b.sampler, uv)
}
