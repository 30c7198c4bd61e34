package quad

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	// Registered decoders for DecodeTexture.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"golang.org/x/image/draw"
)

// ErrInvalidDimensions is returned for textures with a non-positive size or
// a texel slice that does not match it.
var ErrInvalidDimensions = errors.New("quad: invalid texture dimensions")

// Texture is an immutable 2D RGBA texture. Texels are stored row-major
// from the top-left corner, which is UV (0, 0). A Texture is safe for
// concurrent sampling.
type Texture struct {
	width  int
	height int
	texels []Color
}

// NewTexture copies texels into a width×height texture.
func NewTexture(width, height int, texels []Color) (*Texture, error) {
	if width <= 0 || height <= 0 || len(texels) != width*height {
		return nil, fmt.Errorf("%w: %dx%d with %d texels", ErrInvalidDimensions, width, height, len(texels))
	}
	t := &Texture{width: width, height: height, texels: make([]Color, len(texels))}
	copy(t.texels, texels)
	return t, nil
}

// SolidTexture returns a width×height texture filled with c.
func SolidTexture(width, height int, c Color) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	texels := make([]Color, width*height)
	for i := range texels {
		texels[i] = c
	}
	return &Texture{width: width, height: height, texels: texels}, nil
}

// Checkerboard returns a texture of cell×cell squares alternating a and b,
// starting with a at the top-left.
func Checkerboard(width, height, cell int, a, b Color) (*Texture, error) {
	if width <= 0 || height <= 0 || cell <= 0 {
		return nil, fmt.Errorf("%w: %dx%d cell %d", ErrInvalidDimensions, width, height, cell)
	}
	texels := make([]Color, width*height)
	for y := range height {
		for x := range width {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			texels[y*width+x] = c
		}
	}
	return &Texture{width: width, height: height, texels: texels}, nil
}

// NewTextureFromImage converts img to straight-alpha RGBA texels.
func NewTextureFromImage(img image.Image) (*Texture, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d image", ErrInvalidDimensions, b.Dx(), b.Dy())
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) || nrgba.Stride != 4*b.Dx() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	t := &Texture{width: b.Dx(), height: b.Dy(), texels: make([]Color, b.Dx()*b.Dy())}
	for i := range t.texels {
		p := nrgba.Pix[i*4 : i*4+4 : i*4+4]
		t.texels[i] = Color{
			R: float32(p[0]) / 255,
			G: float32(p[1]) / 255,
			B: float32(p[2]) / 255,
			A: float32(p[3]) / 255,
		}
	}
	return t, nil
}

// DecodeTexture decodes any registered image format (PNG, JPEG, GIF, BMP,
// TIFF, WebP) into a texture. The format name is returned alongside.
func DecodeTexture(r io.Reader) (*Texture, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("quad: decode texture: %w", err)
	}
	t, err := NewTextureFromImage(img)
	if err != nil {
		return nil, format, err
	}
	Logger().Debug("texture decoded", "format", format, "width", t.width, "height", t.height)
	return t, format, nil
}

// LoadTexture decodes the image file at path.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("quad: load texture: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, _, err := DecodeTexture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Texel returns the texel at integer coordinates (x, y). Coordinates must
// be in range; addressing modes are the sampler's job.
func (t *Texture) Texel(x, y int) Color {
	return t.texels[y*t.width+x]
}

// Image returns an 8-bit copy of the texture.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.width, t.height))
	for i, c := range t.texels {
		n := c.NRGBA()
		copy(img.Pix[i*4:], []uint8{n.R, n.G, n.B, n.A})
	}
	return img
}

// RGBA8 returns tightly packed 8-bit RGBA rows for upload to an
// RGBA8Unorm (or RGBA8UnormSrgb) GPU texture.
func (t *Texture) RGBA8() []byte {
	return t.Image().Pix
}

// Resized returns the texture scaled to width×height. linear selects
// bilinear resampling, otherwise nearest neighbour.
func (t *Texture) Resized(width, height int, linear bool) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	var scaler draw.Interpolator = draw.NearestNeighbor
	if linear {
		scaler = draw.BiLinear
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), t.Image(), image.Rect(0, 0, t.width, t.height), draw.Src, nil)
	return NewTextureFromImage(dst)
}
