package quad

import (
	"errors"
	"testing"
)

// numberedTexture has a distinct texel at every position.
func numberedTexture(t *testing.T, w, h int) *Texture {
	t.Helper()
	texels := make([]Color, w*h)
	for i := range texels {
		texels[i] = Color{R: float32(i%w) / float32(w), G: float32(i/w) / float32(h), B: 0.5, A: 1}
	}
	tex, err := NewTexture(w, h, texels)
	if err != nil {
		t.Fatal(err)
	}
	return tex
}

func fullScreenQuad() [4]Vertex {
	return NewQuad(Rect{X0: -1, Y0: 1, X1: 1, Y1: -1}, FullUV)
}

func TestRendererFullScreenBlit(t *testing.T) {
	tex := numberedTexture(t, 4, 4)
	b, err := NewBindings(Identity(), tex, DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(WithWorkers(3), WithRowsPerTask(1))
	defer r.Close()

	img := NewImage(4, 4)
	if err := r.DrawQuad(img, b, fullScreenQuad()); err != nil {
		t.Fatal(err)
	}
	for y := range 4 {
		for x := range 4 {
			if got, want := img.Pixel(x, y), tex.Texel(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRendererSharedEdgeCoveredOnce(t *testing.T) {
	half := Color{R: 1, A: 0.5}
	tex, err := SolidTexture(1, 1, half)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBindings(Identity(), tex, DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(WithBlend(BlendAlpha))
	defer r.Close()

	img := NewImage(8, 8)
	if err := r.DrawQuad(img, b, fullScreenQuad()); err != nil {
		t.Fatal(err)
	}
	// A pixel blended twice would have alpha 0.75.
	for y := range 8 {
		for x := range 8 {
			if a := img.Pixel(x, y).A; a != 0.5 {
				t.Fatalf("pixel (%d,%d) alpha = %v, want 0.5", x, y, a)
			}
		}
	}
}

func TestRendererCameraPlacement(t *testing.T) {
	tex, err := SolidTexture(1, 1, Red)
	if err != nil {
		t.Fatal(err)
	}
	cam := NewCamera2D(8, 8)
	b, err := NewBindings(cam.ViewProjection().Mul(NewPlacement(2, 2).Matrix()), tex, DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(WithClearColor(Black))
	defer r.Close()

	img := NewImage(8, 8)
	if err := r.DrawQuad(img, b, PixelQuad(4)); err != nil {
		t.Fatal(err)
	}
	for y := range 8 {
		for x := range 8 {
			want := Black
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				want = Red
			}
			if got := img.Pixel(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRendererColorFollowsUVNotPosition(t *testing.T) {
	tex := numberedTexture(t, 4, 4)
	cam := NewCamera2D(8, 8)
	r := NewRenderer()
	defer r.Close()

	draw := func(x float32) *Image {
		b, err := NewBindings(cam.ViewProjection().Mul(NewPlacement(x, 0).Matrix()), tex, DefaultSampler())
		if err != nil {
			t.Fatal(err)
		}
		img := NewImage(8, 8)
		if err := r.DrawQuad(img, b, PixelQuad(4)); err != nil {
			t.Fatal(err)
		}
		return img
	}
	a, moved := draw(0), draw(2)
	for y := range 4 {
		for x := range 4 {
			if a.Pixel(x, y) != moved.Pixel(x+2, y) {
				t.Errorf("texel at (%d,%d) changed after moving the quad: %v vs %v",
					x, y, a.Pixel(x, y), moved.Pixel(x+2, y))
			}
		}
	}
}

func TestRendererSkipsDegenerate(t *testing.T) {
	tex, err := SolidTexture(1, 1, Red)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer()
	defer r.Close()

	for name, tr := range map[string]Transform{
		"singular": Scale(0, 1),
		"w zero":   Transform{}, // all zeros: w = 0
	} {
		t.Run(name, func(t *testing.T) {
			b, err := NewBindings(tr, tex, DefaultSampler())
			if err != nil {
				t.Fatal(err)
			}
			img := NewImage(4, 4)
			if err := r.DrawQuad(img, b, fullScreenQuad()); err != nil {
				t.Fatalf("degenerate draw returned %v", err)
			}
			for y := range 4 {
				for x := range 4 {
					if img.Pixel(x, y) != Transparent {
						t.Fatalf("pixel (%d,%d) written by degenerate triangle", x, y)
					}
				}
			}
		})
	}
}

func TestRendererErrors(t *testing.T) {
	tex, err := SolidTexture(1, 1, Red)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBindings(Identity(), tex, DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer()
	defer r.Close()

	q := fullScreenQuad()
	if err := r.Draw(nil, b, q[:], QuadIndices[:]); !errors.Is(err, ErrNilTarget) {
		t.Errorf("nil target err = %v", err)
	}
	if err := r.Draw(NewImage(2, 2), Bindings{}, q[:], QuadIndices[:]); !errors.Is(err, ErrNilTexture) {
		t.Errorf("zero bindings err = %v", err)
	}
	if err := r.Draw(NewImage(2, 2), b, q[:3], QuadIndices[:]); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad index err = %v", err)
	}
}

func TestRendererAfterClose(t *testing.T) {
	tex, err := SolidTexture(1, 1, Red)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBindings(Identity(), tex, DefaultSampler())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer()
	r.Close()

	img := NewImage(2, 2)
	if err := r.DrawQuad(img, b, fullScreenQuad()); err != nil {
		t.Fatal(err)
	}
	if img.Pixel(1, 1) != Red {
		t.Errorf("closed renderer did not draw: %v", img.Pixel(1, 1))
	}
}

func TestBlendModes(t *testing.T) {
	src := Color{R: 1, A: 0.25}
	dst := Color{B: 1, A: 1}
	tests := []struct {
		mode BlendMode
		want Color
	}{
		{BlendReplace, src},
		{BlendAlpha, Color{R: 0.25, B: 0.75, A: 1}},
		{BlendPremultiplied, Color{R: 1, B: 0.75, A: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.Apply(src, dst); !got.ApproxEqual(tt.want, 1e-6) {
				t.Errorf("Apply = %v, want %v", got, tt.want)
			}
			m, ok := ParseBlendMode(tt.mode.String())
			if !ok || m != tt.mode {
				t.Errorf("ParseBlendMode(%q) = %v, %v", tt.mode.String(), m, ok)
			}
		})
	}
	if BlendAlpha.State().Color.SrcFactor == BlendReplace.State().Color.SrcFactor {
		t.Error("alpha and replace blend states should differ")
	}
}
