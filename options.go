package quad

// RendererOption configures a Renderer.
//
// Example:
//
//	r := quad.NewRenderer(quad.WithWorkers(4), quad.WithBlend(quad.BlendAlpha))
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	workers   int
	blend     BlendMode
	clear     *Color
	rowsChunk int
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		workers:   0, // GOMAXPROCS
		blend:     BlendReplace,
		rowsChunk: 8,
	}
}

// WithWorkers sets the number of goroutines used for fragment work.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) RendererOption {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithBlend selects the color target blend.
func WithBlend(m BlendMode) RendererOption {
	return func(o *rendererOptions) {
		o.blend = m
	}
}

// WithClearColor clears the target to c before every Draw, like a render
// pass with a clear load op. Without it the target is loaded as is.
func WithClearColor(c Color) RendererOption {
	return func(o *rendererOptions) {
		o.clear = &c
	}
}

// WithRowsPerTask sets how many target rows one dispatched task covers.
func WithRowsPerTask(n int) RendererOption {
	return func(o *rendererOptions) {
		if n > 0 {
			o.rowsChunk = n
		}
	}
}
