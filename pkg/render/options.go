package render

// Option configures a Device during creation.
//
// Example:
//
//	dev := render.NewDevice(res, fb,
//		render.WithWorkers(runtime.NumCPU()),
//		render.WithShader(render.PointLight{Position: math3d.V3(0, 5, -5), Ambient: 0.1}),
//	)
type Option func(*deviceOptions)

type deviceOptions struct {
	shader       Shader
	workers      int
	backfaces    bool
	frustumCull  bool
	bandsPerTask int
}

func defaultOptions() deviceOptions {
	return deviceOptions{
		shader:       DefaultLight(),
		workers:      1,
		backfaces:    true,
		frustumCull:  true,
		bandsPerTask: 2,
	}
}

// WithShader sets the shader that colors each triangle.
func WithShader(s Shader) Option {
	return func(o *deviceOptions) {
		if s != nil {
			o.shader = s
		}
	}
}

// WithWorkers enables banded parallel rasterization with n goroutines.
// With n > 1 the device records draw commands and rasterizes them on Flush.
func WithWorkers(n int) Option {
	return func(o *deviceOptions) {
		o.workers = max(n, 1)
	}
}

// WithBackfaceCulling turns backface culling on or off (default on).
func WithBackfaceCulling(enabled bool) Option {
	return func(o *deviceOptions) {
		o.backfaces = enabled
	}
}

// WithFrustumCulling turns whole-object bounding box culling on or off
// (default on). It only applies to meshes that report bounds.
func WithFrustumCulling(enabled bool) Option {
	return func(o *deviceOptions) {
		o.frustumCull = enabled
	}
}
