package quad

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// Bind group indices. Group 0 changes per draw (transform); group 1 per
// material (texture + sampler).
const (
	GroupTransform uint32 = 0
	GroupMaterial  uint32 = 1
)

// Binding indices inside their groups.
const (
	BindingTransform uint32 = 0 // group 0
	BindingTexture   uint32 = 0 // group 1
	BindingSampler   uint32 = 1 // group 1
)

// TransformSize is the byte size of the mat4x4<f32> uniform.
const TransformSize = 64

// ResourceKind identifies what a binding slot holds.
type ResourceKind uint8

const (
	ResourceUniform ResourceKind = iota
	ResourceTexture
	ResourceSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceUniform:
		return "uniform"
	case ResourceTexture:
		return "texture_2d<f32>"
	case ResourceSampler:
		return "sampler"
	default:
		return fmt.Sprintf("ResourceKind(%d)", uint8(k))
	}
}

// Slot is one row of the binding contract between the host and the
// program.
type Slot struct {
	Name       string
	Group      uint32
	Binding    uint32
	Kind       ResourceKind
	Visibility gputypes.ShaderStages
}

func (s Slot) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s (%s)", s.Group, s.Binding, s.Name, s.Kind, s.Visibility)
}

var (
	SlotTransform = Slot{Name: "transform", Group: GroupTransform, Binding: BindingTransform, Kind: ResourceUniform, Visibility: gputypes.ShaderStageVertex}
	SlotTexture   = Slot{Name: "tex", Group: GroupMaterial, Binding: BindingTexture, Kind: ResourceTexture, Visibility: gputypes.ShaderStageFragment}
	SlotSampler   = Slot{Name: "tex_sampler", Group: GroupMaterial, Binding: BindingSampler, Kind: ResourceSampler, Visibility: gputypes.ShaderStageFragment}
)

// Slots returns the binding table ordered by group, then binding.
func Slots() []Slot {
	return []Slot{SlotTransform, SlotTexture, SlotSampler}
}

// GroupSlots returns the slots that belong to bind group g.
func GroupSlots(g uint32) []Slot {
	var out []Slot
	for _, s := range Slots() {
		if s.Group == g {
			out = append(out, s)
		}
	}
	return out
}

// LayoutEntry converts the slot to a bind group layout entry.
func (s Slot) LayoutEntry() gputypes.BindGroupLayoutEntry {
	e := gputypes.BindGroupLayoutEntry{
		Binding:    s.Binding,
		Visibility: s.Visibility,
	}
	switch s.Kind {
	case ResourceUniform:
		e.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: TransformSize,
		}
	case ResourceTexture:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case ResourceSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{
			Type: gputypes.SamplerBindingTypeFiltering,
		}
	}
	return e
}

// Errors returned when building a binding set.
var (
	ErrNilTexture     = errors.New("quad: texture is nil")
	ErrInvalidSampler = errors.New("quad: invalid sampler")
)

// Bindings is the immutable resource set a draw consumes: the transform
// for group 0 and the texture/sampler pair for group 1. Use the With
// methods to derive a new set.
type Bindings struct {
	transform Transform
	texture   *Texture
	sampler   Sampler
}

// NewBindings validates and bundles the resources for one draw.
func NewBindings(t Transform, tex *Texture, s Sampler) (Bindings, error) {
	if tex == nil {
		return Bindings{}, ErrNilTexture
	}
	if err := s.Validate(); err != nil {
		return Bindings{}, fmt.Errorf("binding %s: %w", SlotSampler, err)
	}
	return Bindings{transform: t, texture: tex, sampler: s.Normalized()}, nil
}

func (b Bindings) Transform() Transform { return b.transform }
func (b Bindings) Texture() *Texture    { return b.texture }
func (b Bindings) Sampler() Sampler     { return b.sampler }

// WithTransform returns a copy of b that uses t. The receiver is unchanged.
func (b Bindings) WithTransform(t Transform) Bindings {
	b.transform = t
	return b
}
