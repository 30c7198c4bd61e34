package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad"
)

// Config holds pipeline creation parameters.
type Config struct {
	// TargetFormat is the color attachment format.
	// Default: BGRA8Unorm, the common swapchain format.
	TargetFormat gputypes.TextureFormat

	// TextureFormat is the format used by UploadTexture.
	// Use RGBA8UnormSrgb to have the GPU decode sRGB on sample.
	// Default: RGBA8Unorm.
	TextureFormat gputypes.TextureFormat

	// Blend is the color target blend. Default: replace.
	Blend quad.BlendMode

	// SampleCount is the MSAA sample count of the target. Default: 1.
	SampleCount uint32

	// DepthStencilFormat enables a depth/stencil state compatible with an
	// external attachment. Depth is compared with Always and never written.
	// Default: undefined, no depth/stencil state.
	DepthStencilFormat gputypes.TextureFormat

	// SPIRV hands the device precompiled SPIR-V instead of WGSL text.
	SPIRV bool
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		TargetFormat:  gputypes.TextureFormatBGRA8Unorm,
		TextureFormat: gputypes.TextureFormatRGBA8Unorm,
		Blend:         quad.BlendReplace,
		SampleCount:   1,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TargetFormat == gputypes.TextureFormatUndefined {
		c.TargetFormat = d.TargetFormat
	}
	if c.TextureFormat == gputypes.TextureFormatUndefined {
		c.TextureFormat = d.TextureFormat
	}
	if c.SampleCount == 0 {
		c.SampleCount = d.SampleCount
	}
	return c
}
