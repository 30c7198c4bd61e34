package quad

import "github.com/gogpu/gputypes"

// BlendMode is the color target blend applied after the fragment stage.
// It is pipeline state, not part of the program.
type BlendMode uint8

const (
	// BlendReplace writes the fragment color as is.
	BlendReplace BlendMode = iota
	// BlendAlpha composites straight-alpha fragments over the target.
	BlendAlpha
	// BlendPremultiplied composites premultiplied fragments over the target.
	BlendPremultiplied
)

func (m BlendMode) String() string {
	switch m {
	case BlendReplace:
		return "replace"
	case BlendAlpha:
		return "alpha"
	case BlendPremultiplied:
		return "premultiplied"
	}
	return "unknown"
}

// ParseBlendMode accepts the names returned by String.
func ParseBlendMode(s string) (BlendMode, bool) {
	for _, m := range []BlendMode{BlendReplace, BlendAlpha, BlendPremultiplied} {
		if m.String() == s {
			return m, true
		}
	}
	return BlendReplace, false
}

// State returns the equivalent WebGPU blend state.
func (m BlendMode) State() gputypes.BlendState {
	switch m {
	case BlendAlpha:
		return gputypes.BlendStateAlpha()
	case BlendPremultiplied:
		return gputypes.BlendStatePremultiplied()
	default:
		return gputypes.BlendStateReplace()
	}
}

// Apply combines src into dst with the factors of State.
func (m BlendMode) Apply(src, dst Color) Color {
	switch m {
	case BlendAlpha:
		inv := 1 - src.A
		return Color{
			R: src.R*src.A + dst.R*inv,
			G: src.G*src.A + dst.G*inv,
			B: src.B*src.A + dst.B*inv,
			A: src.A + dst.A*inv,
		}
	case BlendPremultiplied:
		inv := 1 - src.A
		return Color{
			R: src.R + dst.R*inv,
			G: src.G + dst.G*inv,
			B: src.B + dst.B*inv,
			A: src.A + dst.A*inv,
		}
	default:
		return src
	}
}
