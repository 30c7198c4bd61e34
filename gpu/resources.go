package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad"
	"github.com/gogpu/wgpu/hal"
)

// Texture is a sampled 2D texture with a single mip level.
type Texture struct {
	device hal.Device
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	format gputypes.TextureFormat
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Format returns the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Destroy releases the view and the texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		t.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}

// Sampler is a device sampler built from a quad.Sampler.
type Sampler struct {
	device  hal.Device
	sampler hal.Sampler
	desc    quad.Sampler
}

// Desc returns the normalized sampler description.
func (s *Sampler) Desc() quad.Sampler { return s.desc }

// Destroy releases the sampler. Safe to call more than once.
func (s *Sampler) Destroy() {
	if s.sampler != nil {
		s.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
}

// Mesh holds a vertex buffer and a uint16 index buffer.
type Mesh struct {
	device      hal.Device
	vertices    hal.Buffer
	indices     hal.Buffer
	vertexCount int
	indexCount  uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return m.vertexCount }

// IndexCount returns the number of indices drawn.
func (m *Mesh) IndexCount() uint32 { return m.indexCount }

// Destroy releases both buffers. Safe to call more than once.
func (m *Mesh) Destroy() {
	if m.indices != nil {
		m.device.DestroyBuffer(m.indices)
		m.indices = nil
	}
	if m.vertices != nil {
		m.device.DestroyBuffer(m.vertices)
		m.vertices = nil
	}
}

// Bindings is the device form of quad.Bindings: the transform uniform
// buffer with its group 0 bind group, and the group 1 bind group pairing
// a texture with a sampler. Once that texture or sampler is destroyed,
// draws with the bindings fail with ErrNilResource.
type Bindings struct {
	device         hal.Device
	queue          hal.Queue
	uniform        hal.Buffer
	transformGroup hal.BindGroup
	materialGroup  hal.BindGroup
	transform      quad.Transform

	// Referenced by materialGroup; a draw fails once either is destroyed.
	texture *Texture
	sampler *Sampler
}

// Transform returns the last transform written to the uniform buffer.
func (b *Bindings) Transform() quad.Transform { return b.transform }

// SetTransform uploads a new transform. It takes effect for draws
// submitted afterwards.
func (b *Bindings) SetTransform(t quad.Transform) error {
	if b.uniform == nil {
		return fmt.Errorf("%w: bindings", ErrNilResource)
	}
	if err := b.queue.WriteBuffer(b.uniform, 0, t.Bytes()); err != nil {
		return fmt.Errorf("write transform: %w", err)
	}
	b.transform = t
	return nil
}

// Destroy releases the bind groups and the uniform buffer. The texture and
// sampler are not owned and stay alive. Safe to call more than once.
func (b *Bindings) Destroy() {
	if b.materialGroup != nil {
		b.device.DestroyBindGroup(b.materialGroup)
		b.materialGroup = nil
	}
	if b.transformGroup != nil {
		b.device.DestroyBindGroup(b.transformGroup)
		b.transformGroup = nil
	}
	if b.uniform != nil {
		b.device.DestroyBuffer(b.uniform)
		b.uniform = nil
	}
}

// UploadTexture creates a device texture in Config.TextureFormat and
// copies the texels of tex into it as 8-bit RGBA.
func (p *Pipeline) UploadTexture(tex *quad.Texture) (*Texture, error) {
	if tex == nil {
		return nil, quad.ErrNilTexture
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPipelineClosed
	}

	w, h := uint32(tex.Width()), uint32(tex.Height())
	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	ht, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quad_texture",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        p.cfg.TextureFormat,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	t := &Texture{device: p.device, tex: ht, width: tex.Width(), height: tex.Height(), format: p.cfg.TextureFormat}

	t.view, err = p.device.CreateTextureView(ht, &hal.TextureViewDescriptor{
		Label:         "quad_texture_view",
		Format:        p.cfg.TextureFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("create texture view: %w", err)
	}

	err = p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: ht, Aspect: gputypes.TextureAspectAll},
		tex.RGBA8(),
		&hal.ImageDataLayout{BytesPerRow: w * 4, RowsPerImage: h},
		&size,
	)
	if err != nil {
		t.Destroy()
		return nil, fmt.Errorf("write texture: %w", err)
	}
	slogger().Debug("quad texture uploaded", "width", w, "height", h, "format", p.cfg.TextureFormat)
	return t, nil
}

// CreateSampler creates a device sampler. Undefined fields take the
// defaults of quad.DefaultSampler.
func (p *Pipeline) CreateSampler(s quad.Sampler) (*Sampler, error) {
	s = s.Normalized()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPipelineClosed
	}
	hs, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "quad_sampler",
		AddressModeU: s.AddressModeU,
		AddressModeV: s.AddressModeV,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    s.MagFilter,
		MinFilter:    s.MinFilter,
		MipmapFilter: gputypes.FilterModeNearest,
		LodMaxClamp:  32,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	return &Sampler{device: p.device, sampler: hs, desc: s}, nil
}

// NewMesh uploads vertices and indices. Every index must refer to an
// existing vertex.
func (p *Pipeline) NewMesh(vertices []quad.Vertex, indices []uint16) (*Mesh, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("%w: indices[%d] = %d with %d vertices", quad.ErrIndexOutOfRange, i, idx, len(vertices))
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrPipelineClosed
	}

	m := &Mesh{device: p.device, vertexCount: len(vertices), indexCount: uint32(len(indices))}
	var err error
	m.vertices, err = p.uploadBuffer("quad_vertices", gputypes.BufferUsageVertex, quad.EncodeVertices(vertices))
	if err != nil {
		return nil, err
	}
	m.indices, err = p.uploadBuffer("quad_indices", gputypes.BufferUsageIndex, quad.EncodeIndices(indices))
	if err != nil {
		m.Destroy()
		return nil, err
	}
	return m, nil
}

// NewQuadMesh uploads the four corners of q with quad.QuadIndices.
func (p *Pipeline) NewQuadMesh(q [4]quad.Vertex) (*Mesh, error) {
	return p.NewMesh(q[:], quad.QuadIndices[:])
}

func (p *Pipeline) uploadBuffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s buffer: %w", label, err)
	}
	if err := p.queue.WriteBuffer(buf, 0, data); err != nil {
		p.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("write %s buffer: %w", label, err)
	}
	return buf, nil
}

// NewBindings creates the transform uniform buffer and both bind groups.
// The pipeline must be initialized.
func (p *Pipeline) NewBindings(t quad.Transform, tex *Texture, s *Sampler) (*Bindings, error) {
	if tex == nil || tex.view == nil {
		return nil, fmt.Errorf("%w: texture", ErrNilResource)
	}
	if s == nil || s.sampler == nil {
		return nil, fmt.Errorf("%w: sampler", ErrNilResource)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return nil, err
	}

	b := &Bindings{device: p.device, queue: p.queue, transform: t, texture: tex, sampler: s}
	var err error
	b.uniform, err = p.uploadBuffer("quad_transform", gputypes.BufferUsageUniform, t.Bytes())
	if err != nil {
		return nil, err
	}

	b.transformGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quad_transform_group",
		Layout: p.transformGroup,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding: quad.BindingTransform,
				Resource: gputypes.BufferBinding{
					Buffer: b.uniform.NativeHandle(),
					Size:   quad.TransformSize,
				},
			},
		},
	})
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("create transform bind group: %w", err)
	}

	b.materialGroup, err = p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quad_material_group",
		Layout: p.materialGroup,
		Entries: []gputypes.BindGroupEntry{
			{Binding: quad.BindingTexture, Resource: gputypes.TextureViewBinding{TextureView: tex.view.NativeHandle()}},
			{Binding: quad.BindingSampler, Resource: gputypes.SamplerBinding{Sampler: s.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		b.Destroy()
		return nil, fmt.Errorf("create material bind group: %w", err)
	}
	return b, nil
}
