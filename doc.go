// Package quad draws a textured 2D quad with a vertex/fragment program and
// an orthographic transform.
//
// # Overview
//
// The program is a WGSL pair (see ShaderSource): the vertex stage maps a 2D
// position through a 4x4 transform to clip space with z fixed at 0 and
// forwards the texture coordinate; the fragment stage returns the texture
// sampled at the interpolated coordinate. Resources are bound in fixed
// slots:
//
//	@group(0) @binding(0)  transform    mat4x4<f32>      vertex
//	@group(1) @binding(0)  tex          texture_2d<f32>  fragment
//	@group(1) @binding(1)  tex_sampler  sampler          fragment
//
// Vertices are 16 bytes: position (float32x2) at location 0 and uv
// (float32x2) at location 1.
//
// # Executing the program
//
// The gpu sub-package builds a WebGPU render pipeline from the embedded
// shader and records draws into a render pass. Renderer executes the same
// program on the CPU, which is what tests and the quadblit command use:
//
//	tex, _ := quad.LoadTexture("sprite.png")
//	b, _ := quad.NewBindings(quad.PixelOrtho(256, 256), tex, quad.DefaultSampler())
//
//	r := quad.NewRenderer(quad.WithBlend(quad.BlendAlpha))
//	defer r.Close()
//
//	img := quad.NewImage(256, 256)
//	_ = r.DrawQuad(img, b, quad.PixelQuad(100))
//	_ = img.SavePNG("out.png")
//
// VertexStage and FragmentStage expose the two stages as pure functions.
//
// # Transforms
//
// Transform is column-major like WGSL. Camera2D builds a pixel-space
// view-projection (origin top-left, y down) with zoom, and Placement
// builds a per-quad model matrix.
//
// # Logging
//
// Nothing is logged unless SetLogger is called.
package quad
