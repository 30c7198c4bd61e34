package quad

import "testing"

func TestCameraProjectionCorners(t *testing.T) {
	c := NewCamera2D(800, 600)
	p := c.Projection()
	if got := p.Apply(0, 0); !approx4(got, [4]float32{-1, 1, 0, 1}) {
		t.Errorf("top-left = %v", got)
	}
	if got := p.Apply(800, 600); !approx4(got, [4]float32{1, -1, 0, 1}) {
		t.Errorf("bottom-right = %v", got)
	}
	if got := c.ProjectionCentered().Apply(400, 300); !approx4(got, [4]float32{1, -1, 0, 1}) {
		t.Errorf("centered half-extent = %v", got)
	}
	if got := c.ProjectionCentered().Apply(0, 0); !approx4(got, [4]float32{0, 0, 0, 1}) {
		t.Errorf("centered origin = %v", got)
	}
}

func TestCameraViewProjection(t *testing.T) {
	c := NewCamera2DAt(100, 50, 800, 600)
	// The camera position lands on the top-left corner of the screen.
	if got := c.ViewProjection().Apply(100, 50); !approx4(got, [4]float32{-1, 1, 0, 1}) {
		t.Errorf("camera position maps to %v, want top-left", got)
	}

	c.SetZoom(2)
	// World (500, 350) is 400x300 from the camera; zoomed 2x that is the
	// bottom-right corner.
	if got := c.ViewProjection().Apply(500, 350); !approx4(got, [4]float32{1, -1, 0, 1}) {
		t.Errorf("zoomed corner = %v", got)
	}
}

func TestCameraMovement(t *testing.T) {
	c := NewCamera2D(100, 100)
	tests := []struct {
		dir  Direction
		want [2]float32
	}{
		{Right, [2]float32{50, 0}},
		{Down, [2]float32{50, 50}},
		{Left, [2]float32{0, 50}},
		{Up, [2]float32{0, 0}},
	}
	for _, tt := range tests {
		c.Move(tt.dir, 0.1) // 500 px/s * 0.1 s
		if c.Position != tt.want {
			t.Errorf("after Move(%d) position = %v, want %v", tt.dir, c.Position, tt.want)
		}
	}
	c.Translate(-3, 4)
	if c.Position != [2]float32{-3, 4} {
		t.Errorf("Translate position = %v", c.Position)
	}
}

func TestCameraZoomClamp(t *testing.T) {
	c := NewCamera2D(100, 100)
	c.SetZoom(-5)
	if c.Zoom != MinZoom {
		t.Errorf("SetZoom(-5) = %v, want %v", c.Zoom, float32(MinZoom))
	}
	c.SetZoom(1)
	c.ZoomBy(0.5)
	if c.Zoom != 1.5 {
		t.Errorf("ZoomBy(0.5) = %v, want 1.5", c.Zoom)
	}
	c.ZoomBy(-10)
	if c.Zoom != MinZoom {
		t.Errorf("ZoomBy(-10) = %v, want %v", c.Zoom, float32(MinZoom))
	}
}

func TestCameraViewport(t *testing.T) {
	c := NewCamera2D(100, 50)
	if c.AspectRatio() != 2 {
		t.Errorf("AspectRatio() = %v, want 2", c.AspectRatio())
	}
	c.SetViewportSize(30, 60)
	if c.AspectRatio() != 0.5 {
		t.Errorf("AspectRatio() after resize = %v, want 0.5", c.AspectRatio())
	}
}

func TestCameraScreenWorldRoundTrip(t *testing.T) {
	c := NewCamera2DAt(10, 20, 640, 480)
	c.SetZoom(4)
	wx, wy := c.ScreenToWorld(80, 40)
	if wx != 30 || wy != 30 {
		t.Errorf("ScreenToWorld = (%v, %v), want (30, 30)", wx, wy)
	}
	sx, sy := c.WorldToScreen(wx, wy)
	if sx != 80 || sy != 40 {
		t.Errorf("WorldToScreen = (%v, %v), want (80, 40)", sx, sy)
	}
}
