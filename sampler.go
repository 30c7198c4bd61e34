package quad

import (
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
)

// Sampler describes how the fragment stage reads the texture: filtering
// and per-axis addressing for coordinates outside [0, 1]. Undefined (zero)
// fields mean ClampToEdge and Nearest.
type Sampler struct {
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
}

// DefaultSampler is nearest filtering with clamp-to-edge addressing,
// suited to pixel art.
func DefaultSampler() Sampler {
	return Sampler{
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
	}
}

// LinearSampler is bilinear filtering with clamp-to-edge addressing.
func LinearSampler() Sampler {
	s := DefaultSampler()
	s.MagFilter = gputypes.FilterModeLinear
	s.MinFilter = gputypes.FilterModeLinear
	return s
}

// WithAddressMode returns a copy of s using m on both axes.
func (s Sampler) WithAddressMode(m gputypes.AddressMode) Sampler {
	s.AddressModeU, s.AddressModeV = m, m
	return s
}

// Normalized replaces undefined fields with their defaults.
func (s Sampler) Normalized() Sampler {
	if s.AddressModeU == gputypes.AddressModeUndefined {
		s.AddressModeU = gputypes.AddressModeClampToEdge
	}
	if s.AddressModeV == gputypes.AddressModeUndefined {
		s.AddressModeV = gputypes.AddressModeClampToEdge
	}
	if s.MagFilter == gputypes.FilterModeUndefined {
		s.MagFilter = gputypes.FilterModeNearest
	}
	if s.MinFilter == gputypes.FilterModeUndefined {
		s.MinFilter = gputypes.FilterModeNearest
	}
	return s
}

// Validate rejects address or filter modes outside the known set.
func (s Sampler) Validate() error {
	for _, m := range []gputypes.AddressMode{s.AddressModeU, s.AddressModeV} {
		if m > gputypes.AddressModeMirrorRepeat {
			return fmt.Errorf("%w: address mode %d", ErrInvalidSampler, m)
		}
	}
	for _, f := range []gputypes.FilterMode{s.MagFilter, s.MinFilter} {
		if f > gputypes.FilterModeLinear {
			return fmt.Errorf("%w: filter mode %d", ErrInvalidSampler, f)
		}
	}
	return nil
}

// Sample reads tex at uv. The texture has a single mip level, so the
// magnification filter applies. NaN coordinates read as 0.
func (s Sampler) Sample(tex *Texture, uv [2]float32) Color {
	s = s.Normalized()
	u, v := float64(uv[0]), float64(uv[1])
	if math.IsNaN(u) {
		u = 0
	}
	if math.IsNaN(v) {
		v = 0
	}
	w, h := tex.width, tex.height

	if s.MagFilter == gputypes.FilterModeNearest {
		x := wrapTexel(floorInt(u*float64(w)), w, s.AddressModeU)
		y := wrapTexel(floorInt(v*float64(h)), h, s.AddressModeV)
		return tex.Texel(x, y)
	}

	// Bilinear: texel centers sit at half-integer coordinates.
	fx := u*float64(w) - 0.5
	fy := v*float64(h) - 0.5
	x0, y0 := floorInt(fx), floorInt(fy)
	tx := float32(fx - math.Floor(fx))
	ty := float32(fy - math.Floor(fy))
	xa, xb := wrapTexel(x0, w, s.AddressModeU), wrapTexel(x0+1, w, s.AddressModeU)
	ya, yb := wrapTexel(y0, h, s.AddressModeV), wrapTexel(y0+1, h, s.AddressModeV)

	top := tex.Texel(xa, ya).Lerp(tex.Texel(xb, ya), tx)
	bottom := tex.Texel(xa, yb).Lerp(tex.Texel(xb, yb), tx)
	return top.Lerp(bottom, ty)
}

// floorInt floors f and saturates it to a range that cannot overflow the
// wrap arithmetic.
func floorInt(f float64) int {
	const limit = 1 << 30
	f = math.Floor(f)
	switch {
	case f > limit:
		return limit
	case f < -limit:
		return -limit
	}
	return int(f)
}

// wrapTexel maps an integer texel coordinate into [0, n) by address mode.
func wrapTexel(i, n int, m gputypes.AddressMode) int {
	switch m {
	case gputypes.AddressModeRepeat:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	case gputypes.AddressModeMirrorRepeat:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i
	default:
		return min(max(i, 0), n-1)
	}
}
