package quad

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

// Vertex input locations.
const (
	LocationPosition uint32 = 0
	LocationUV       uint32 = 1
)

// VertexStride is the byte size of one Vertex in the vertex buffer.
const VertexStride = 16

// Vertex is one per-vertex input: object-space position at location 0 and
// texture coordinate at location 1.
type Vertex struct {
	Position [2]float32
	UV       [2]float32
}

// VertexLayout returns the single vertex buffer layout the program reads.
func VertexLayout() gputypes.VertexBufferLayout {
	return gputypes.VertexBufferLayout{
		ArrayStride: VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: LocationPosition},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: LocationUV},
		},
	}
}

// Rect is an axis-aligned rectangle given by two corners.
type Rect struct {
	X0, Y0, X1, Y1 float32
}

// FullUV covers the whole texture.
var FullUV = Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}

// QuadIndices draws a quad as the triangles (0,1,2) and (0,2,3).
var QuadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

// NewQuad returns the four corners of pos in the order top-left,
// top-right, bottom-right, bottom-left (for y-down pixel space), each
// carrying the matching corner of uv.
func NewQuad(pos, uv Rect) [4]Vertex {
	return [4]Vertex{
		{Position: [2]float32{pos.X0, pos.Y0}, UV: [2]float32{uv.X0, uv.Y0}},
		{Position: [2]float32{pos.X1, pos.Y0}, UV: [2]float32{uv.X1, uv.Y0}},
		{Position: [2]float32{pos.X1, pos.Y1}, UV: [2]float32{uv.X1, uv.Y1}},
		{Position: [2]float32{pos.X0, pos.Y1}, UV: [2]float32{uv.X0, uv.Y1}},
	}
}

// PixelQuad returns a size×size quad anchored at the origin that shows the
// whole texture.
func PixelQuad(size float32) [4]Vertex {
	return NewQuad(Rect{X1: size, Y1: size}, FullUV)
}

// MaxQuads is the largest quad count a uint16 index buffer can address.
const MaxQuads = 1 << 16 / 4

// BuildQuadIndices returns indices for n quads laid out four vertices
// apiece, as produced by repeated NewQuad calls. n is clamped to
// [0, MaxQuads].
func BuildQuadIndices(n int) []uint16 {
	n = min(max(n, 0), MaxQuads)
	out := make([]uint16, 0, n*len(QuadIndices))
	for i := range n {
		base := uint16(i * 4) //nolint:gosec // i < MaxQuads
		for _, idx := range QuadIndices {
			out = append(out, base+idx)
		}
	}
	return out
}

// EncodeVertices serializes vertices for upload, VertexStride bytes each.
func EncodeVertices(vs []Vertex) []byte {
	if len(vs) == 0 {
		return nil
	}
	buf := make([]byte, len(vs)*VertexStride)
	for i, v := range vs {
		putVertex(buf[i*VertexStride:], v)
	}
	return buf
}

func putVertex(buf []byte, v Vertex) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.UV[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.UV[1]))
}

// EncodeIndices serializes uint16 indices. The result is padded to a
// multiple of four bytes because buffer writes must be 4-byte aligned.
func EncodeIndices(idx []uint16) []byte {
	if len(idx) == 0 {
		return nil
	}
	n := len(idx) * 2
	buf := make([]byte, (n+3)&^3)
	for i, v := range idx {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}
