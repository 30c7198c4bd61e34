// Package gpu runs the textured quad program on a WebGPU device through the
// gogpu HAL.
//
// A Pipeline borrows a hal.Device and hal.Queue (directly or from a
// gpucontext.DeviceProvider), compiles the embedded WGSL shader and creates
// one bind group layout per group:
//
//	group 0: transform (uniform mat4x4<f32>, vertex stage)
//	group 1: tex (texture_2d<f32>) + tex_sampler (sampler), fragment stage
//
// Typical use:
//
//	p, err := gpu.NewPipeline(device, queue, gpu.DefaultConfig())
//	if err != nil { ... }
//	defer p.Close()
//	if err := p.Init(); err != nil { ... }
//
//	tex, _ := p.UploadTexture(img)
//	smp, _ := p.CreateSampler(quad.DefaultSampler())
//	mesh, _ := p.NewQuadMesh(quad.PixelQuad(64))
//	b, _ := p.NewBindings(camera.ViewProjection(), tex, smp)
//
//	_, err = p.Render(targetView, mesh, b, gpu.RenderOptions{Clear: &quad.Black})
//
// RecordDraw records the same commands into a render pass owned by the
// caller, for hosts that batch several pipelines into one pass.
package gpu
