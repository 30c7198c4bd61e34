package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad"
	"github.com/gogpu/wgpu/hal"
)

// Pipeline errors.
var (
	// ErrNilDevice is returned when the device or queue is nil.
	ErrNilDevice = errors.New("gpu: device or queue is nil")

	// ErrNotInitialized is returned when drawing before Init.
	ErrNotInitialized = errors.New("gpu: pipeline not initialized")

	// ErrPipelineClosed is returned after Close.
	ErrPipelineClosed = errors.New("gpu: pipeline closed")

	// ErrProviderNotHAL is returned when a device provider does not expose HAL types.
	ErrProviderNotHAL = errors.New("gpu: provider does not expose HAL device and queue")

	// ErrEmptyMesh is returned for meshes without vertices or indices.
	ErrEmptyMesh = errors.New("gpu: mesh has no vertices or indices")

	// ErrNilResource is returned when a draw references a nil or destroyed resource.
	ErrNilResource = errors.New("gpu: resource is nil or destroyed")
)

func slogger() *slog.Logger { return quad.Logger() }

// Pipeline owns the compiled shader, the two bind group layouts and the
// render pipeline for textured quads. Device and queue are borrowed.
//
// Resources created through a Pipeline (textures, samplers, meshes,
// bindings) are released with their own Destroy methods and must be
// destroyed before Close.
type Pipeline struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	cfg    Config

	shader         hal.ShaderModule
	transformGroup hal.BindGroupLayout // group 0
	materialGroup  hal.BindGroupLayout // group 1
	layout         hal.PipelineLayout
	pipeline       hal.RenderPipeline

	closed bool
}

// NewPipeline creates a pipeline on the given device. GPU objects are not
// created until Init.
func NewPipeline(device hal.Device, queue hal.Queue, cfg Config) (*Pipeline, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	return &Pipeline{device: device, queue: queue, cfg: cfg.withDefaults()}, nil
}

// NewPipelineFromProvider shares the device of a host application. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue. A defined provider SurfaceFormat replaces
// cfg.TargetFormat.
func NewPipelineFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Pipeline, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		cfg.TargetFormat = f
	}
	slogger().Info("quad pipeline using shared device", "surface_format", cfg.TargetFormat)
	return NewPipeline(device, queue, cfg)
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Init compiles the shader and creates the layouts and render pipeline.
// Calling Init again after success is a no-op. On failure every object
// created so far is released.
func (p *Pipeline) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPipelineClosed
	}
	if p.pipeline != nil {
		return nil
	}
	if err := p.create(); err != nil {
		p.destroy()
		return err
	}
	slogger().Info("quad pipeline created",
		"target", p.cfg.TargetFormat,
		"blend", p.cfg.Blend.String(),
		"samples", p.cfg.SampleCount,
		"spirv", p.cfg.SPIRV,
	)
	return nil
}

func (p *Pipeline) create() error {
	src := quad.ShaderSource()
	if err := quad.CheckShader(src); err != nil {
		return err
	}
	source := hal.ShaderSource{WGSL: src}
	if p.cfg.SPIRV {
		words, err := quad.CompileSPIRV(src)
		if err != nil {
			return err
		}
		source = hal.ShaderSource{SPIRV: words}
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "quad_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("compile quad shader: %w", err)
	}
	p.shader = shader

	p.transformGroup, err = p.createGroupLayout("quad_transform_layout", quad.GroupTransform)
	if err != nil {
		return err
	}
	p.materialGroup, err = p.createGroupLayout("quad_material_layout", quad.GroupMaterial)
	if err != nil {
		return err
	}

	// Layout order is group index order.
	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.transformGroup, p.materialGroup},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	p.layout = layout

	pipeline, err := p.device.CreateRenderPipeline(p.pipelineDescriptor())
	if err != nil {
		return fmt.Errorf("create quad pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

func (p *Pipeline) createGroupLayout(label string, group uint32) (hal.BindGroupLayout, error) {
	slots := quad.GroupSlots(group)
	entries := make([]gputypes.BindGroupLayoutEntry, len(slots))
	for i, s := range slots {
		entries[i] = s.LayoutEntry()
	}
	l, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return l, nil
}

func (p *Pipeline) pipelineDescriptor() *hal.RenderPipelineDescriptor {
	blend := p.cfg.Blend.State()
	desc := &hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline",
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: quad.VertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{quad.VertexLayout()},
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: quad.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.cfg.TargetFormat,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: p.cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	}
	if p.cfg.DepthStencilFormat != gputypes.TextureFormatUndefined {
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            p.cfg.DepthStencilFormat,
			DepthWriteEnabled: false,
			DepthCompare:      gputypes.CompareFunctionAlways,
			StencilFront:      keep,
			StencilBack:       keep,
		}
	}
	return desc
}

// ready reports an error unless the pipeline can record draws.
// Callers hold p.mu.
func (p *Pipeline) ready() error {
	if p.closed {
		return ErrPipelineClosed
	}
	if p.pipeline == nil {
		return ErrNotInitialized
	}
	return nil
}

// RecordDraw records one indexed draw of mesh into an open render pass:
// pipeline, group 0, group 1, vertex buffer slot 0, uint16 index buffer.
func (p *Pipeline) RecordDraw(rp hal.RenderPassEncoder, mesh *Mesh, b *Bindings) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return err
	}
	if err := checkDraw(mesh, b); err != nil {
		return err
	}
	p.record(rp, mesh, b)
	return nil
}

func (p *Pipeline) record(rp hal.RenderPassEncoder, mesh *Mesh, b *Bindings) {
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(quad.GroupTransform, b.transformGroup, nil)
	rp.SetBindGroup(quad.GroupMaterial, b.materialGroup, nil)
	rp.SetVertexBuffer(0, mesh.vertices, 0)
	rp.SetIndexBuffer(mesh.indices, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
}

func checkDraw(mesh *Mesh, b *Bindings) error {
	if mesh == nil || mesh.vertices == nil {
		return fmt.Errorf("%w: mesh", ErrNilResource)
	}
	if b == nil || b.transformGroup == nil || b.materialGroup == nil {
		return fmt.Errorf("%w: bindings", ErrNilResource)
	}
	if b.texture == nil || b.texture.view == nil {
		return fmt.Errorf("%w: bound texture", ErrNilResource)
	}
	if b.sampler == nil || b.sampler.sampler == nil {
		return fmt.Errorf("%w: bound sampler", ErrNilResource)
	}
	return nil
}

// RenderOptions controls the render pass built by Render.
type RenderOptions struct {
	// Clear, when non-nil, clears the target before drawing.
	// Otherwise the previous contents are loaded.
	Clear *quad.Color

	// DepthStencil is attached when Config.DepthStencilFormat is set.
	DepthStencil hal.TextureView

	// ResolveTarget receives the resolved image when SampleCount > 1.
	ResolveTarget hal.TextureView
}

// Render encodes a single render pass that draws mesh into view and
// submits it. It returns the queue submission index.
func (p *Pipeline) Render(view hal.TextureView, mesh *Mesh, b *Bindings, opts RenderOptions) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return 0, err
	}
	if view == nil {
		return 0, fmt.Errorf("%w: target view", ErrNilResource)
	}
	if err := checkDraw(mesh, b); err != nil {
		return 0, err
	}

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "quad_encoder",
	})
	if err != nil {
		return 0, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quad_render"); err != nil {
		return 0, fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(p.passDescriptor(view, opts))
	p.record(rp, mesh, b)
	rp.End()

	cmd, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return 0, fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmd)

	idx, err := p.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return 0, fmt.Errorf("submit: %w", err)
	}
	slogger().Debug("quad pass submitted", "submission", idx, "indices", mesh.indexCount)
	return idx, nil
}

func (p *Pipeline) passDescriptor(view hal.TextureView, opts RenderOptions) *hal.RenderPassDescriptor {
	color := hal.RenderPassColorAttachment{
		View:          view,
		ResolveTarget: opts.ResolveTarget,
		LoadOp:        gputypes.LoadOpLoad,
		StoreOp:       gputypes.StoreOpStore,
	}
	if c := opts.Clear; c != nil {
		color.LoadOp = gputypes.LoadOpClear
		color.ClearValue = gputypes.Color{
			R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A),
		}
	}
	desc := &hal.RenderPassDescriptor{
		Label:            "quad_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{color},
	}
	if opts.DepthStencil != nil && p.cfg.DepthStencilFormat != gputypes.TextureFormatUndefined {
		// Read-only aspects must leave their load and store ops undefined.
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            opts.DepthStencil,
			DepthReadOnly:   true,
			StencilReadOnly: true,
		}
	}
	return desc
}

// Close releases the pipeline objects in reverse creation order.
// It is safe to call more than once.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.destroy()
	p.closed = true
}

func (p *Pipeline) destroy() {
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.materialGroup != nil {
		p.device.DestroyBindGroupLayout(p.materialGroup)
		p.materialGroup = nil
	}
	if p.transformGroup != nil {
		p.device.DestroyBindGroupLayout(p.transformGroup)
		p.transformGroup = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
