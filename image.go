package quad

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// Image is a float RGBA render target for the software renderer.
type Image struct {
	width  int
	height int
	pix    []Color
}

// NewImage returns a transparent image.
func NewImage(width, height int) *Image {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Image{width: width, height: height, pix: make([]Color, width*height)}
}

func (m *Image) Width() int  { return m.width }
func (m *Image) Height() int { return m.height }

// Pixel returns the color at (x, y), or Transparent outside the image.
func (m *Image) Pixel(x, y int) Color {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return Transparent
	}
	return m.pix[y*m.width+x]
}

// SetPixel is a no-op outside the image.
func (m *Image) SetPixel(x, y int, c Color) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.pix[y*m.width+x] = c
}

// Clear fills the image with c.
func (m *Image) Clear(c Color) {
	for i := range m.pix {
		m.pix[i] = c
	}
}

// row returns the pixels of line y for in-place writes.
func (m *Image) row(y int) []Color {
	return m.pix[y*m.width : (y+1)*m.width]
}

// NRGBA quantizes the image to 8 bits per channel.
func (m *Image) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	for i, c := range m.pix {
		n := c.NRGBA()
		img.Pix[i*4+0] = n.R
		img.Pix[i*4+1] = n.G
		img.Pix[i*4+2] = n.B
		img.Pix[i*4+3] = n.A
	}
	return img
}

// EncodePNG writes the quantized image as PNG.
func (m *Image) EncodePNG(w io.Writer) error {
	return png.Encode(w, m.NRGBA())
}

// SavePNG writes the image to path.
func (m *Image) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := m.EncodePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color { return m.Pixel(x, y).NRGBA() }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.width, m.height) }

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.NRGBAModel }
