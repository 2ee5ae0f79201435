package gpu

import (
	"sync"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/surface"
	"github.com/gogpu/ckbridge/target"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// OpenFunc opens a GPU device for a canvas. A nil provider or an error
// means no context can be created for it.
type OpenFunc func(c *target.Canvas, o ContextOptions) (gpucontext.DeviceProvider, error)

// DeviceEngine is an Engine whose contexts are backed by
// gpucontext.DeviceProvider values, for hosts that own the GPU device
// (for example a gogpu window) instead of delegating to the engine.
//
// DeviceEngine is safe for concurrent use.
type DeviceEngine struct {
	mu       sync.Mutex
	open     OpenFunc
	next     ContextHandle
	contexts map[ContextHandle]*deviceContext
	maxDim   int
}

type deviceContext struct {
	canvas   *target.Canvas
	provider gpucontext.DeviceProvider
	options  ContextOptions
}

// DeviceEngineOption configures a DeviceEngine.
type DeviceEngineOption func(*DeviceEngine)

// WithMaxTextureDimension caps GPU surface width and height. The default
// is gputypes.DefaultLimits().MaxTextureDimension2D.
func WithMaxTextureDimension(n int) DeviceEngineOption {
	return func(e *DeviceEngine) {
		if n > 0 {
			e.maxDim = n
		}
	}
}

// NewDeviceEngine creates an engine that opens devices with open.
func NewDeviceEngine(open OpenFunc, opts ...DeviceEngineOption) *DeviceEngine {
	e := &DeviceEngine{
		open:     open,
		contexts: make(map[ContextHandle]*deviceContext),
		maxDim:   int(gputypes.DefaultLimits().MaxTextureDimension2D),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateContext implements Engine.
//
// A canvas stays locked to the first context created for it: asking again
// returns the same handle.
func (e *DeviceEngine) CreateContext(c *target.Canvas, preserveCurrent, exclusive bool, o ContextOptions) ContextHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if h := ContextHandle(c.BoundContext()); h.Valid() {
		if _, ok := e.contexts[h]; ok {
			return h
		}
	}

	provider, err := e.open(c, o)
	if err != nil || provider == nil {
		ckbridge.Logger().Debug("gpu: device open failed", "target", c.ID(), "err", err)
		return 0
	}

	e.next++
	h := e.next
	e.contexts[h] = &deviceContext{canvas: c, provider: provider, options: o}
	c.BindContext(int32(h))

	ckbridge.Logger().Debug("gpu: context created",
		"target", c.ID(), "handle", int32(h),
		"preserveCurrent", preserveCurrent, "exclusive", exclusive,
		"powerPreference", o.PowerPreference())
	return h
}

// MakeGrContext implements Engine.
func (e *DeviceEngine) MakeGrContext(h ContextHandle) gpucontext.DeviceProvider {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dc, ok := e.contexts[h]; ok {
		return dc.provider
	}
	return nil
}

// MakeOnScreenGLSurface implements Engine. It returns nil when the provider
// has no presentable format or the size is outside the texture limits.
func (e *DeviceEngine) MakeOnScreenGLSurface(gr gpucontext.DeviceProvider, width, height int, cs surface.ColorSpace) *surface.GPUSurface {
	if gr == nil {
		return nil
	}
	if width <= 0 || height <= 0 || width > e.maxDim || height > e.maxDim {
		ckbridge.Logger().Debug("gpu: surface size outside texture limits",
			"width", width, "height", height, "max", e.maxDim)
		return nil
	}
	format := gr.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		return nil
	}
	s, err := surface.NewGPUSurface(width, height, format, cs, &deviceSurface{provider: gr})
	if err != nil {
		return nil
	}
	return s
}

// MakeSWCanvasSurface implements Engine with the best available software
// rasterizer from the surface registry.
func (e *DeviceEngine) MakeSWCanvasSurface(c *target.Canvas) (surface.Surface, error) {
	return surface.NewSoftware(c)
}

// Options returns the options a context was created with.
func (e *DeviceEngine) Options(h ContextHandle) (ContextOptions, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dc, ok := e.contexts[h]
	if !ok {
		return ContextOptions{}, false
	}
	return dc.options, true
}

// Release drops a context and unlocks its canvas.
func (e *DeviceEngine) Release(h ContextHandle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	dc, ok := e.contexts[h]
	if !ok {
		return
	}
	delete(e.contexts, h)
	if ContextHandle(dc.canvas.BoundContext()) == h {
		dc.canvas.BindContext(0)
	}
}

// Len returns the number of live contexts.
func (e *DeviceEngine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contexts)
}

// deviceSurface presents through the provider's device.
type deviceSurface struct {
	provider gpucontext.DeviceProvider
}

func (d *deviceSurface) Flush() error {
	if p, ok := d.provider.Device().(interface{ Poll(wait bool) }); ok {
		p.Poll(false)
	}
	return nil
}

func (d *deviceSurface) Close() error { return nil }

var _ Engine = (*DeviceEngine)(nil)
