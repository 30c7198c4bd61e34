package quad

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the 4x4 column-major matrix bound at group 0. Element
// [col*4+row] matches the WGSL mat4x4<f32> memory layout, so Bytes can be
// written to the uniform buffer verbatim.
type Transform mgl32.Mat4

// Identity returns the identity transform.
func Identity() Transform { return Transform(mgl32.Ident4()) }

// Ortho returns an orthographic projection mapping the rectangle
// [left,right]x[bottom,top] onto clip space [-1,1]x[-1,1]. z is left at 0.
func Ortho(left, right, bottom, top float32) Transform {
	return Transform(mgl32.Ortho2D(left, right, bottom, top))
}

// PixelOrtho maps pixel coordinates with the origin at the top-left corner
// and y pointing down: (0,0) to (-1,1) and (w,h) to (1,-1).
func PixelOrtho(width, height float32) Transform {
	return Ortho(0, width, height, 0)
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float32) Transform { return Transform(mgl32.Translate3D(tx, ty, 0)) }

// Scale returns a scale by (sx, sy). z is kept at 1 so the matrix stays
// invertible when sx and sy are.
func Scale(sx, sy float32) Transform { return Transform(mgl32.Scale3D(sx, sy, 1)) }

// Rotate returns a counter-clockwise rotation about the z axis, in radians.
func Rotate(radians float32) Transform { return Transform(mgl32.HomogRotate3DZ(radians)) }

// Mul returns t × o, which applies o first.
func (t Transform) Mul(o Transform) Transform {
	return Transform(mgl32.Mat4(t).Mul4(mgl32.Mat4(o)))
}

// Then returns the transform that applies t followed by next.
func (t Transform) Then(next Transform) Transform { return next.Mul(t) }

// Apply transforms the 2D position (x, y, 0, 1) into clip space.
func (t Transform) Apply(x, y float32) [4]float32 {
	return mgl32.Mat4(t).Mul4x1(mgl32.Vec4{x, y, 0, 1})
}

// Mat4 exposes the underlying matrix.
func (t Transform) Mat4() mgl32.Mat4 { return mgl32.Mat4(t) }

// Invertible reports whether t has a finite, nonzero 4×4 determinant. A
// singular transform is still usable; its output is degenerate.
func (t Transform) Invertible() bool {
	d := mgl32.Mat4(t).Det()
	return d != 0 && !math.IsNaN(float64(d)) && !math.IsInf(float64(d), 0)
}

// ApproxEqual compares element-wise within mgl32's epsilon.
func (t Transform) ApproxEqual(o Transform) bool {
	return mgl32.Mat4(t).ApproxEqual(mgl32.Mat4(o))
}

// Bytes returns the 64-byte little-endian uniform representation.
func (t Transform) Bytes() []byte {
	return t.AppendBytes(make([]byte, 0, TransformSize))
}

// AppendBytes appends the uniform representation of t to buf.
func (t Transform) AppendBytes(buf []byte) []byte {
	for _, v := range t {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// TransformFromBytes decodes a 64-byte uniform. It reports false when b is
// too short.
func TransformFromBytes(b []byte) (Transform, bool) {
	var t Transform
	if len(b) < TransformSize {
		return t, false
	}
	for i := range t {
		t[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return t, true
}

// Placement positions a quad in world space: scale, then rotate about z,
// then translate. A zero Scale is treated as (1, 1).
type Placement struct {
	Position [2]float32
	Rotation float32 // radians
	Scale    [2]float32
}

// NewPlacement returns a placement at (x, y) with unit scale.
func NewPlacement(x, y float32) Placement {
	return Placement{Position: [2]float32{x, y}, Scale: [2]float32{1, 1}}
}

// Matrix returns T × R × S.
func (p Placement) Matrix() Transform {
	sx, sy := p.Scale[0], p.Scale[1]
	if sx == 0 && sy == 0 {
		sx, sy = 1, 1
	}
	return Translate(p.Position[0], p.Position[1]).
		Mul(Rotate(p.Rotation)).
		Mul(Scale(sx, sy))
}
