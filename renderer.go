package quad

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/quad/internal/dispatch"
)

// Errors returned by Renderer.Draw.
var (
	ErrNilTarget       = errors.New("quad: render target is nil")
	ErrIndexOutOfRange = errors.New("quad: index out of range")
)

// Renderer executes the program on the CPU. It follows the WebGPU
// rasterization rules: clip-space to NDC division, a viewport with y
// pointing down, coverage sampled at pixel centers with a top-left fill
// rule, perspective-correct UV interpolation and no depth writes.
//
// Rows of the target are shaded in parallel; within a row triangles are
// processed in index order so blending matches draw order.
type Renderer struct {
	pool *dispatch.Pool
	opts rendererOptions
}

// NewRenderer starts a renderer. Call Close to stop its workers.
func NewRenderer(opts ...RendererOption) *Renderer {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{pool: dispatch.New(o.workers), opts: o}
}

// Close releases the worker goroutines. Draw keeps working afterwards on
// the calling goroutine.
func (r *Renderer) Close() {
	r.pool.Close()
}

// Blend returns the configured blend mode.
func (r *Renderer) Blend() BlendMode { return r.opts.blend }

// DrawQuad draws four vertices with QuadIndices.
func (r *Renderer) DrawQuad(target *Image, b Bindings, q [4]Vertex) error {
	return r.Draw(target, b, q[:], QuadIndices[:])
}

// Draw shades the indexed triangle list into target. Trailing indices that
// do not form a full triangle are ignored. Degenerate triangles (zero or
// NaN area, w <= 0) produce no fragments.
func (r *Renderer) Draw(target *Image, b Bindings, vertices []Vertex, indices []uint16) error {
	if target == nil {
		return ErrNilTarget
	}
	if b.texture == nil {
		return ErrNilTexture
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return fmt.Errorf("%w: indices[%d] = %d with %d vertices", ErrIndexOutOfRange, i, idx, len(vertices))
		}
	}
	if r.opts.clear != nil {
		target.Clear(*r.opts.clear)
	}
	if target.width == 0 || target.height == 0 {
		return nil
	}

	out := make([]VertexOutput, len(vertices))
	for i, v := range vertices {
		out[i] = b.ShadeVertex(v)
	}

	vp := viewport{w: float32(target.width), h: float32(target.height)}
	tris := make([]triangle, 0, len(indices)/3)
	skipped := 0
	for i := 0; i+2 < len(indices); i += 3 {
		t, ok := setupTriangle(vp, out[indices[i]], out[indices[i+1]], out[indices[i+2]], target.width, target.height)
		if !ok {
			skipped++
			continue
		}
		if t.minY < t.maxY && t.minX < t.maxX {
			tris = append(tris, t)
		}
	}
	if skipped > 0 {
		Logger().Debug("quad: skipped degenerate triangles", "count", skipped)
	}
	if len(tris) == 0 {
		return nil
	}

	minY, maxY := tris[0].minY, tris[0].maxY
	for _, t := range tris[1:] {
		minY = min(minY, t.minY)
		maxY = max(maxY, t.maxY)
	}

	blend := r.opts.blend
	r.pool.Range(maxY-minY, r.opts.rowsChunk, func(lo, hi int) {
		for y := minY + lo; y < minY+hi; y++ {
			row := target.row(y)
			for i := range tris {
				tris[i].shadeRow(y, row, b, blend)
			}
		}
	})
	return nil
}

type viewport struct{ w, h float32 }

// screenVertex is a vertex after the perspective divide and viewport map.
type screenVertex struct {
	x, y, z float32
	invW    float32
	uv      [2]float32
}

type triangle struct {
	v          [3]screenVertex
	area       float32
	topLeft    [3]bool
	minX, maxX int // pixel range [minX, maxX)
	minY, maxY int
}

func toScreen(vp viewport, o VertexOutput) (screenVertex, bool) {
	w := o.Clip[3]
	if !(w > 0) || isNaN32(o.Clip[0]) || isNaN32(o.Clip[1]) || isNaN32(o.Clip[2]) {
		return screenVertex{}, false
	}
	nx, ny, nz := o.Clip[0]/w, o.Clip[1]/w, o.Clip[2]/w
	return screenVertex{
		x:    (nx + 1) * 0.5 * vp.w,
		y:    (1 - ny) * 0.5 * vp.h,
		z:    nz,
		invW: 1 / w,
		uv:   o.UV,
	}, true
}

// edge is twice the signed area of (a, b, p). With y pointing down it is
// positive when a, b, p wind clockwise on screen.
func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// isTopLeft reports whether a->b is a top or left edge of a clockwise
// triangle. Samples exactly on such edges are covered.
func isTopLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return dy < 0 || (dy == 0 && dx > 0)
}

func setupTriangle(vp viewport, o0, o1, o2 VertexOutput, width, height int) (triangle, bool) {
	var t triangle
	var ok [3]bool
	t.v[0], ok[0] = toScreen(vp, o0)
	t.v[1], ok[1] = toScreen(vp, o1)
	t.v[2], ok[2] = toScreen(vp, o2)
	if !ok[0] || !ok[1] || !ok[2] {
		return t, false
	}

	t.area = edge(t.v[0], t.v[1], t.v[2].x, t.v[2].y)
	if t.area == 0 || isNaN32(t.area) || math.IsInf(float64(t.area), 0) {
		return t, false
	}
	if t.area < 0 {
		// No culling: flip to clockwise so one coverage test serves both.
		t.v[1], t.v[2] = t.v[2], t.v[1]
		t.area = -t.area
	}
	t.topLeft = [3]bool{
		isTopLeft(t.v[1], t.v[2]),
		isTopLeft(t.v[2], t.v[0]),
		isTopLeft(t.v[0], t.v[1]),
	}

	x0 := min(t.v[0].x, t.v[1].x, t.v[2].x)
	x1 := max(t.v[0].x, t.v[1].x, t.v[2].x)
	y0 := min(t.v[0].y, t.v[1].y, t.v[2].y)
	y1 := max(t.v[0].y, t.v[1].y, t.v[2].y)
	// Pixel px is a candidate when its center px+0.5 lies in [x0, x1].
	t.minX = clampInt(ceilPixel(x0-0.5), 0, width)
	t.maxX = clampInt(floorPixel(x1-0.5)+1, 0, width)
	t.minY = clampInt(ceilPixel(y0-0.5), 0, height)
	t.maxY = clampInt(floorPixel(y1-0.5)+1, 0, height)
	return t, true
}

// covered applies the fill rule to one barycentric weight.
func (t *triangle) covered(w float32, i int) bool {
	return w > 0 || (w == 0 && t.topLeft[i])
}

func (t *triangle) shadeRow(y int, row []Color, b Bindings, blend BlendMode) {
	if y < t.minY || y >= t.maxY {
		return
	}
	py := float32(y) + 0.5
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]
	for x := t.minX; x < t.maxX; x++ {
		px := float32(x) + 0.5
		w0 := edge(v1, v2, px, py)
		w1 := edge(v2, v0, px, py)
		w2 := edge(v0, v1, px, py)
		if !t.covered(w0, 0) || !t.covered(w1, 1) || !t.covered(w2, 2) {
			continue
		}
		l0, l1, l2 := w0/t.area, w1/t.area, w2/t.area

		// Depth is affine in screen space; fragments outside [0, 1] are
		// clipped like the GPU's depth clip.
		z := l0*v0.z + l1*v1.z + l2*v2.z
		if z < 0 || z > 1 {
			continue
		}

		p0, p1, p2 := l0*v0.invW, l1*v1.invW, l2*v2.invW
		sum := p0 + p1 + p2
		uv := [2]float32{
			(p0*v0.uv[0] + p1*v1.uv[0] + p2*v2.uv[0]) / sum,
			(p0*v0.uv[1] + p1*v1.uv[1] + p2*v2.uv[1]) / sum,
		}
		row[x] = blend.Apply(b.ShadeFragment(uv), row[x])
	}
}

func floorPixel(f float32) int { return saturate(math.Floor(float64(f))) }
func ceilPixel(f float32) int  { return saturate(math.Ceil(float64(f))) }

func saturate(f float64) int {
	const limit = 1 << 24
	switch {
	case f > limit:
		return limit
	case f < -limit:
		return -limit
	}
	return int(f)
}

func clampInt(v, lo, hi int) int { return min(max(v, lo), hi) }

func isNaN32(f float32) bool { return f != f }
