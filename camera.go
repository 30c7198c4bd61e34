package quad

import "github.com/go-gl/mathgl/mgl32"

// Camera defaults.
const (
	DefaultCameraSpeed = 500 // pixels per second
	MinZoom            = 0.1
)

// Direction is a camera movement direction in screen space (y down).
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Camera2D produces the view-projection transform for pixel-space scenes:
// screen origin at the top-left corner, y pointing down.
type Camera2D struct {
	Position [2]float32
	Zoom     float32 // 1 = unscaled, 2 = zoomed in
	Speed    float32 // pixels per second for Move
	Width    float32
	Height   float32
}

// NewCamera2D returns a camera at the origin for a viewport of the given
// size.
func NewCamera2D(width, height float32) *Camera2D {
	return &Camera2D{Zoom: 1, Speed: DefaultCameraSpeed, Width: width, Height: height}
}

// NewCamera2DAt returns a camera positioned at (x, y).
func NewCamera2DAt(x, y, width, height float32) *Camera2D {
	c := NewCamera2D(width, height)
	c.Position = [2]float32{x, y}
	return c
}

func (c *Camera2D) Translate(dx, dy float32) {
	c.Position[0] += dx
	c.Position[1] += dy
}

// Move advances the camera by Speed*dt pixels in direction d.
func (c *Camera2D) Move(d Direction, dt float32) {
	v := c.Speed * dt
	switch d {
	case Up:
		c.Position[1] -= v
	case Down:
		c.Position[1] += v
	case Left:
		c.Position[0] -= v
	case Right:
		c.Position[0] += v
	}
}

// SetZoom sets the zoom factor, clamped to MinZoom.
func (c *Camera2D) SetZoom(z float32) {
	c.Zoom = max(z, MinZoom)
}

// ZoomBy adjusts the zoom by delta, clamped to MinZoom.
func (c *Camera2D) ZoomBy(delta float32) {
	c.Zoom = max(c.Zoom+delta, MinZoom)
}

// SetViewportSize must be called when the render target is resized.
func (c *Camera2D) SetViewportSize(width, height float32) {
	c.Width = width
	c.Height = height
}

func (c *Camera2D) AspectRatio() float32 {
	return c.Width / c.Height
}

// Projection maps (0,0) to (-1,1) and (Width,Height) to (1,-1). z passes
// through unchanged.
func (c *Camera2D) Projection() Transform {
	return Transform(mgl32.Translate3D(-1, 1, 0).Mul4(mgl32.Scale3D(2/c.Width, -2/c.Height, 1)))
}

// ProjectionCentered maps (0,0) to the viewport center.
func (c *Camera2D) ProjectionCentered() Transform {
	return Transform(mgl32.Scale3D(2/c.Width, -2/c.Height, 1))
}

// View scales by Zoom and moves Position to the origin.
func (c *Camera2D) View() Transform {
	z := c.Zoom
	return Transform(mgl32.Translate3D(-c.Position[0]*z, -c.Position[1]*z, 0).Mul4(mgl32.Scale3D(z, z, 1)))
}

// ViewProjection returns Projection × View.
func (c *Camera2D) ViewProjection() Transform {
	return c.Projection().Mul(c.View())
}

// ViewProjectionCentered returns ProjectionCentered × View.
func (c *Camera2D) ViewProjectionCentered() Transform {
	return c.ProjectionCentered().Mul(c.View())
}

// ScreenToWorld converts a pixel position to world coordinates.
func (c *Camera2D) ScreenToWorld(x, y float32) (wx, wy float32) {
	return x/c.Zoom + c.Position[0], y/c.Zoom + c.Position[1]
}

// WorldToScreen converts world coordinates to a pixel position.
func (c *Camera2D) WorldToScreen(x, y float32) (sx, sy float32) {
	return (x - c.Position[0]) * c.Zoom, (y - c.Position[1]) * c.Zoom
}
