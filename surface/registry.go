// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"slices"
	"sync"

	"github.com/gogpu/ckbridge/target"
)

// SoftwareFactory builds a software surface bound to a canvas.
type SoftwareFactory func(c *target.Canvas) (Surface, error)

// RegistryEntry is a registered software rasterizer.
type RegistryEntry struct {
	// Name is the unique identifier of the rasterizer.
	Name string

	// Priority orders selection; higher is preferred. The built-in
	// "raster" rasterizer has priority 10.
	Priority int

	// Factory creates surfaces.
	Factory SoftwareFactory

	// Available reports whether the rasterizer can run on this system.
	Available func() bool
}

// Registry holds the software rasterizers the GPU fallback chooses from.
//
// Hosts with their own rasterizer register it at a priority above 10:
//
//	func init() {
//	    surface.Register("tiny-skia", 50, newTinySkiaSurface, nil)
//	}
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a rasterizer to the global registry.
// A nil available means always available.
func Register(name string, priority int, factory SoftwareFactory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a rasterizer from the global registry.
func Unregister(name string) { globalRegistry.Unregister(name) }

// List returns the globally registered names, highest priority first.
func List() []string { return globalRegistry.List() }

// NewSoftware creates a software surface for c with the best available
// globally registered rasterizer.
func NewSoftware(c *target.Canvas) (Surface, error) { return globalRegistry.NewSoftware(c) }

// Register adds a rasterizer. An existing entry with the same name is
// replaced.
func (r *Registry) Register(name string, priority int, factory SoftwareFactory, available func() bool) {
	if available == nil {
		available = func() bool { return true }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &RegistryEntry{Name: name, Priority: priority, Factory: factory, Available: available}
}

// Unregister removes a rasterizer.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// Get returns a copy of the entry for name.
func (r *Registry) Get(name string) (RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return RegistryEntry{}, false
	}
	return *e, true
}

// List returns registered names, highest priority first. Equal priorities
// are ordered by name.
func (r *Registry) List() []string {
	var names []string
	for _, e := range r.sorted() {
		names = append(names, e.Name)
	}
	return names
}

// Available is List restricted to rasterizers that report availability.
func (r *Registry) Available() []string {
	var names []string
	for _, e := range r.sorted() {
		if e.Available() {
			names = append(names, e.Name)
		}
	}
	return names
}

func (r *Registry) sorted() []RegistryEntry {
	r.mu.RLock()
	out := make([]RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b RegistryEntry) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// NewSoftware tries the available rasterizers in priority order and
// returns the first surface created. Factory errors are joined when all
// of them fail.
func (r *Registry) NewSoftware(c *target.Canvas) (Surface, error) {
	var errs []error
	for _, e := range r.sorted() {
		if !e.Available() {
			continue
		}
		s, err := e.Factory(c)
		if err == nil {
			return s, nil
		}
		errs = append(errs, &RasterizerError{Name: e.Name, Err: err})
	}
	if len(errs) == 0 {
		return nil, ErrNoRasterizer
	}
	return nil, errors.Join(errs...)
}

// NewSoftwareByName creates a surface with a specific rasterizer.
func (r *Registry) NewSoftwareByName(name string, c *target.Canvas) (Surface, error) {
	e, ok := r.Get(name)
	if !ok {
		return nil, &RasterizerError{Name: name, Err: ErrRasterizerNotFound}
	}
	if !e.Available() {
		return nil, &RasterizerError{Name: name, Err: ErrRasterizerUnavailable}
	}
	return e.Factory(c)
}

var (
	// ErrNoRasterizer is returned when no software rasterizer is available.
	ErrNoRasterizer = errors.New("surface: no software rasterizer available")

	// ErrRasterizerNotFound is returned for an unregistered name.
	ErrRasterizerNotFound = errors.New("surface: rasterizer not registered")

	// ErrRasterizerUnavailable is returned for a registered rasterizer that
	// cannot run here.
	ErrRasterizerUnavailable = errors.New("surface: rasterizer unavailable")
)

// RasterizerError attributes a failure to a named rasterizer.
type RasterizerError struct {
	Name string
	Err  error
}

func (e *RasterizerError) Error() string { return "surface: rasterizer " + e.Name + ": " + e.Err.Error() }

func (e *RasterizerError) Unwrap() error { return e.Err }

func init() {
	Register("raster", 10, func(c *target.Canvas) (Surface, error) {
		return NewRasterSurface(c), nil
	}, nil)
}
