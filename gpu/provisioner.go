package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/surface"
	"github.com/gogpu/ckbridge/target"
	"github.com/gogpu/gpucontext"
)

// Engine is the engine's GPU layer.
type Engine interface {
	// CreateContext creates a rendering context for c. A handle <= 0 means
	// creation failed; it is not an error by itself.
	CreateContext(c *target.Canvas, preserveCurrent, exclusive bool, o ContextOptions) ContextHandle

	// MakeGrContext returns the GPU backend for a context, or nil.
	MakeGrContext(h ContextHandle) gpucontext.DeviceProvider

	// MakeOnScreenGLSurface creates an on-screen surface of the given
	// backing size. It returns nil when no GPU surface can be made.
	MakeOnScreenGLSurface(gr gpucontext.DeviceProvider, width, height int, cs surface.ColorSpace) *surface.GPUSurface

	// MakeSWCanvasSurface creates a software surface bound to c.
	MakeSWCanvasSurface(c *target.Canvas) (surface.Surface, error)
}

// Host is the registry and container tree drawing targets live in.
type Host interface {
	// Resolve returns the canvas ref points to.
	Resolve(ref target.Ref) (*target.Canvas, bool)

	// Clone returns a deep structural copy of c without GPU-locked state.
	Clone(c *target.Canvas) *target.Canvas

	// ReplaceInParent puts replacement at old's position and discards old.
	ReplaceInParent(old, replacement *target.Canvas) error

	// MarkReplaced tags c so observers can detect the swap.
	MarkReplaced(c *target.Canvas)
}

// SoftwareSurfaceFunc builds a software surface on a canvas.
type SoftwareSurfaceFunc func(c *target.Canvas) (surface.Surface, error)

// State is the outcome of a surface request.
type State uint8

const (
	// StateGPU means a GPU-backed surface was created on the original target.
	StateGPU State = iota + 1

	// StateSoftware means GPU surface creation failed and a software
	// surface was created on a replacement target.
	StateSoftware
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateGPU:
		return "gpu"
	case StateSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// Result is the surface obtained for a target.
//
// On StateGPU, GPU is the surface and Target is the untouched original.
// On StateSoftware, Target is the replacement canvas and Replaced is the
// discarded original.
type Result struct {
	State    State
	Surface  surface.Surface
	GPU      *surface.GPUSurface
	Target   *target.Canvas
	Replaced *target.Canvas
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithRegistry sets the current-context registry. The default is
// DefaultRegistry.
func WithRegistry(r *ContextRegistry) Option {
	return func(p *Provisioner) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithSoftwareSurface overrides the software surface constructor used by
// the fallback. The default is the engine's MakeSWCanvasSurface.
func WithSoftwareSurface(fn SoftwareSurfaceFunc) Option {
	return func(p *Provisioner) {
		if fn != nil {
			p.software = fn
		}
	}
}

// Provisioner obtains drawable surfaces for drawing targets.
//
// Every call runs to completion on the caller's goroutine. A Provisioner
// holds no per-call state; the only shared state is its ContextRegistry.
type Provisioner struct {
	engine   Engine
	host     Host
	registry *ContextRegistry
	software SoftwareSurfaceFunc
}

// New creates a Provisioner.
func New(engine Engine, host Host, opts ...Option) *Provisioner {
	p := &Provisioner{
		engine:   engine,
		host:     host,
		registry: DefaultRegistry,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.software == nil {
		p.software = engine.MakeSWCanvasSurface
	}
	return p
}

// Registry returns the registry the Provisioner publishes contexts to.
func (p *Provisioner) Registry() *ContextRegistry { return p.registry }

// EstablishContext creates a rendering context for c and makes it current.
//
// Defaults from DefaultContextOptions are applied first, then opts. Options
// the engine rejects fail with ckbridge.UnsupportedOptionError before the
// engine is called. A returned handle <= 0 means the engine could not
// create a context; it is returned with a nil error and the registry is
// left unchanged.
func (p *Provisioner) EstablishContext(c *target.Canvas, opts ...ContextOption) (ContextHandle, error) {
	if c == nil {
		return 0, fmt.Errorf("%w: nil canvas passed into EstablishContext", ckbridge.ErrInvalidTarget)
	}
	o := DefaultContextOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return 0, err
	}

	ckbridge.Logger().Debug("gpu: creating context", "target", c.ID(), "options", o)

	h := p.engine.CreateContext(c, true, true, o)
	if !h.Valid() {
		return h, nil
	}
	p.registry.SetCurrent(h)
	return p.registry.Current(), nil
}

// Surface obtains a drawable surface for the target ref points to.
//
// The GPU path is tried first with default context options. If the engine
// cannot build a GPU surface, the target is replaced and a software surface
// is returned with State StateSoftware; that case is not an error.
//
// Errors: ckbridge.TargetNotFoundError when an ID does not resolve,
// ckbridge.ErrInvalidTarget for a nil direct reference,
// ckbridge.GpuContextCreationError when no context or GPU backend can be
// created.
func (p *Provisioner) Surface(ref target.Ref, cs surface.ColorSpace) (Result, error) {
	c, ok := p.host.Resolve(ref)
	if !ok || c == nil {
		if ref.IsDirect() {
			return Result{}, fmt.Errorf("%w: nil canvas", ckbridge.ErrInvalidTarget)
		}
		return Result{}, &ckbridge.TargetNotFoundError{ID: ref.ID()}
	}

	h, err := p.EstablishContext(c)
	if err != nil {
		return Result{}, err
	}
	if !h.Valid() {
		return Result{}, &ckbridge.GpuContextCreationError{Handle: int32(h)}
	}

	gr := p.engine.MakeGrContext(h)
	if gr == nil {
		return Result{}, &ckbridge.GpuContextCreationError{Handle: int32(h), Reason: "no GPU backend for context"}
	}

	// The backing buffer size, not the display size: the two differ when
	// display scaling is in effect.
	s := p.engine.MakeOnScreenGLSurface(gr, c.Width(), c.Height(), cs)
	if s == nil {
		return p.fallback(c)
	}

	s.Attach(int32(h), gr)
	return Result{State: StateGPU, Surface: s, GPU: s, Target: c}, nil
}

// MakeCanvasSurface is Surface; the default surface path tries GPU first.
func (p *Provisioner) MakeCanvasSurface(ref target.Ref, cs surface.ColorSpace) (Result, error) {
	return p.Surface(ref, cs)
}

// fallback swaps c for a clone and builds a software surface on it.
func (p *Provisioner) fallback(c *target.Canvas) (Result, error) {
	ckbridge.Logger().Warn("falling back from GPU implementation to a SW based one",
		"target", c.ID(), "width", c.Width(), "height", c.Height())

	// The original is locked to its GPU context; a fresh copy is not.
	clone := p.host.Clone(c)
	if err := p.host.ReplaceInParent(c, clone); err != nil {
		if !errors.Is(err, target.ErrNoParent) {
			return Result{}, fmt.Errorf("gpu: replace target %q: %w", c.ID(), err)
		}
		ckbridge.Logger().Debug("gpu: target has no parent, using detached replacement", "target", c.ID())
	}
	p.host.MarkReplaced(clone)

	s, err := p.software(clone)
	if err != nil {
		return Result{}, fmt.Errorf("gpu: software surface for %q: %w", clone.ID(), err)
	}
	return Result{State: StateSoftware, Surface: s, Target: clone, Replaced: c}, nil
}
