package gpu

import "sync"

// ContextHandle identifies a rendering context created by the engine.
// Values <= 0 mean no context was created.
type ContextHandle int32

// Valid reports whether h refers to a created context.
func (h ContextHandle) Valid() bool { return h > 0 }

// ContextRegistry holds the current rendering context.
//
// The engine reads the current context implicitly instead of receiving it
// as a parameter, so exactly one context is current at a time. Callers that
// interleave surfaces for several targets must re-establish the context
// before each of them.
//
// ContextRegistry is safe for concurrent use.
type ContextRegistry struct {
	mu      sync.Mutex
	current ContextHandle
}

// DefaultRegistry is the process-wide registry used when a Provisioner is
// not given one.
var DefaultRegistry = NewContextRegistry()

// NewContextRegistry creates a registry with no current context.
func NewContextRegistry() *ContextRegistry {
	return &ContextRegistry{}
}

// SetCurrent makes h the current context.
func (r *ContextRegistry) SetCurrent(h ContextHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = h
}

// Current returns the current context, or 0 if none.
func (r *ContextRegistry) Current() ContextHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Reset clears the current context.
func (r *ContextRegistry) Reset() {
	r.SetCurrent(0)
}

// ResetIf clears the current context only if it is h.
func (r *ContextRegistry) ResetIf(h ContextHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == h {
		r.current = 0
	}
}
