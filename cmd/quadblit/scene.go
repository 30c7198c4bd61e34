package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/quad"
	"gopkg.in/yaml.v3"
)

// Scene describes one rendered frame.
type Scene struct {
	Width   int        `yaml:"width"`
	Height  int        `yaml:"height"`
	Output  string     `yaml:"output"`
	Clear   string     `yaml:"clear"`
	Blend   string     `yaml:"blend"`
	Workers int        `yaml:"workers"`
	Camera  CameraSpec `yaml:"camera"`
	Quads   []QuadSpec `yaml:"quads"`
}

// CameraSpec positions the 2D camera. Zoom 0 means 1.
type CameraSpec struct {
	X    float32 `yaml:"x"`
	Y    float32 `yaml:"y"`
	Zoom float32 `yaml:"zoom"`
}

// QuadSpec is one textured quad centered at (X, Y) in world pixels.
type QuadSpec struct {
	Texture string     `yaml:"texture"` // empty: checkerboard
	X       float32    `yaml:"x"`
	Y       float32    `yaml:"y"`
	Size    float32    `yaml:"size"`
	Rotate  float32    `yaml:"rotate"` // degrees
	Filter  string     `yaml:"filter"`
	Address string     `yaml:"address"`
	UV      [4]float32 `yaml:"uv"` // u0 v0 u1 v1, zero means full texture
}

var errBadScene = errors.New("quadblit: invalid scene")

// loadScene decodes a YAML scene. Unknown keys are rejected.
func loadScene(r io.Reader) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &s, nil
}

func loadSceneFile(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loadScene(f)
}

// settings is a validated scene ready to render.
type settings struct {
	width, height int
	output        string
	clear         quad.Color
	blend         quad.BlendMode
	workers       int
	camera        *quad.Camera2D
	quads         []quadSettings
}

type quadSettings struct {
	texture   string
	vertices  [4]quad.Vertex
	placement quad.Placement
	sampler   quad.Sampler
}

func (s *Scene) resolve() (*settings, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", errBadScene, s.Width, s.Height)
	}
	if len(s.Quads) == 0 {
		return nil, fmt.Errorf("%w: no quads", errBadScene)
	}
	out := &settings{
		width:   s.Width,
		height:  s.Height,
		output:  s.Output,
		clear:   quad.Transparent,
		workers: s.Workers,
	}
	if out.output == "" {
		out.output = "quad.png"
	}
	if s.Clear != "" {
		c, ok := quad.Hex(s.Clear)
		if !ok {
			return nil, fmt.Errorf("%w: clear color %q", errBadScene, s.Clear)
		}
		out.clear = c
	}
	if s.Blend != "" {
		m, ok := quad.ParseBlendMode(s.Blend)
		if !ok {
			return nil, fmt.Errorf("%w: blend %q", errBadScene, s.Blend)
		}
		out.blend = m
	}

	out.camera = quad.NewCamera2DAt(s.Camera.X, s.Camera.Y, float32(s.Width), float32(s.Height))
	if s.Camera.Zoom != 0 {
		out.camera.SetZoom(s.Camera.Zoom)
	}

	for i, q := range s.Quads {
		qs, err := q.resolve()
		if err != nil {
			return nil, fmt.Errorf("quads[%d]: %w", i, err)
		}
		out.quads = append(out.quads, qs)
	}
	return out, nil
}

func (q QuadSpec) resolve() (quadSettings, error) {
	if q.Size <= 0 {
		return quadSettings{}, fmt.Errorf("%w: size %g", errBadScene, q.Size)
	}
	sampler := quad.DefaultSampler()
	switch q.Filter {
	case "", "nearest":
	case "linear":
		sampler = quad.LinearSampler()
	default:
		return quadSettings{}, fmt.Errorf("%w: filter %q", errBadScene, q.Filter)
	}
	mode, ok := parseAddressMode(q.Address)
	if !ok {
		return quadSettings{}, fmt.Errorf("%w: address %q", errBadScene, q.Address)
	}
	sampler = sampler.WithAddressMode(mode)

	uv := quad.FullUV
	if q.UV != [4]float32{} {
		uv = quad.Rect{X0: q.UV[0], Y0: q.UV[1], X1: q.UV[2], Y1: q.UV[3]}
	}
	h := q.Size / 2
	placement := quad.NewPlacement(q.X, q.Y)
	placement.Rotation = q.Rotate * math.Pi / 180
	return quadSettings{
		texture:   q.Texture,
		vertices:  quad.NewQuad(quad.Rect{X0: -h, Y0: -h, X1: h, Y1: h}, uv),
		placement: placement,
		sampler:   sampler,
	}, nil
}

func parseAddressMode(s string) (gputypes.AddressMode, bool) {
	switch s {
	case "", "clamp":
		return gputypes.AddressModeClampToEdge, true
	case "repeat":
		return gputypes.AddressModeRepeat, true
	case "mirror":
		return gputypes.AddressModeMirrorRepeat, true
	}
	return gputypes.AddressModeUndefined, false
}
