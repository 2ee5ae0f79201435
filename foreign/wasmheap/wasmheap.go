// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wasmheap adapts the linear memory of a wazero module to
// foreign.Heap.
//
// The module must export an allocator pair with the C signatures
//
//	void *malloc(size_t size);
//	void  free(void *ptr);
//
// and its linear memory. Emscripten and wasi-libc builds export both under
// these names by default.
package wasmheap

import (
	"context"
	"fmt"
	"math"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/foreign"
	"github.com/tetratelabs/wazero/api"
)

// Default export names.
const (
	DefaultMalloc = "malloc"
	DefaultFree   = "free"
	DefaultMemory = "memory"
)

// Option configures a Heap.
type Option func(*config)

type config struct {
	malloc string
	free   string
	memory string
}

// WithAllocator overrides the allocator export names (for example
// "_malloc" and "_free" on older emscripten builds).
func WithAllocator(malloc, free string) Option {
	return func(c *config) {
		c.malloc = malloc
		c.free = free
	}
}

// WithMemory overrides the memory export name.
func WithMemory(name string) Option {
	return func(c *config) {
		c.memory = name
	}
}

// Heap is a foreign.Heap over a wazero module's linear memory.
//
// The context given to New is used for every allocator call. Heap is not
// safe for concurrent use, matching the module instance it wraps.
type Heap struct {
	ctx    context.Context
	mod    api.Module
	mem    api.Memory
	malloc api.Function
	free   api.Function
}

// New resolves the allocator and memory exports of mod.
// A missing export is reported as ckbridge.FeatureNotCompiledError.
func New(ctx context.Context, mod api.Module, opts ...Option) (*Heap, error) {
	cfg := config{malloc: DefaultMalloc, free: DefaultFree, memory: DefaultMemory}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Heap{ctx: ctx, mod: mod}
	if h.mem = mod.ExportedMemory(cfg.memory); h.mem == nil {
		if h.mem = mod.Memory(); h.mem == nil {
			return nil, &ckbridge.FeatureNotCompiledError{Entry: cfg.memory}
		}
	}
	if h.malloc = mod.ExportedFunction(cfg.malloc); h.malloc == nil {
		return nil, &ckbridge.FeatureNotCompiledError{Entry: cfg.malloc}
	}
	if h.free = mod.ExportedFunction(cfg.free); h.free == nil {
		return nil, &ckbridge.FeatureNotCompiledError{Entry: cfg.free}
	}
	return h, nil
}

// Module returns the wrapped module.
func (h *Heap) Module() api.Module { return h.mod }

// Malloc implements foreign.Heap.
// A zero-byte request allocates one byte so every allocation owns a
// distinct address.
func (h *Heap) Malloc(size int) (foreign.Addr, error) {
	if size < 0 {
		return foreign.Null, fmt.Errorf("%w: %d", foreign.ErrNegativeSize, size)
	}
	if uint64(size) > math.MaxUint32 {
		return foreign.Null, fmt.Errorf("%w: %d bytes exceeds wasm32", foreign.ErrOutOfMemory, size)
	}
	res, err := h.malloc.Call(h.ctx, uint64(max(size, 1)))
	if err != nil {
		return foreign.Null, fmt.Errorf("wasmheap: malloc(%d): %w", size, err)
	}
	if len(res) == 0 || uint32(res[0]) == 0 {
		return foreign.Null, fmt.Errorf("%w: malloc(%d) returned null", foreign.ErrOutOfMemory, size)
	}
	return foreign.Addr(uint32(res[0])), nil
}

// Free implements foreign.Heap.
func (h *Heap) Free(addr foreign.Addr) error {
	if addr.IsNull() {
		return nil
	}
	if _, err := h.free.Call(h.ctx, uint64(addr)); err != nil {
		return fmt.Errorf("wasmheap: free(%s): %w", addr, err)
	}
	return nil
}

func (h *Heap) offset(addr foreign.Addr, n int) (uint32, error) {
	if uint64(addr)+uint64(n) > uint64(h.mem.Size()) {
		return 0, fmt.Errorf("%w: [%s, +%d) of %d", foreign.ErrOutOfBounds, addr, n, h.mem.Size())
	}
	return uint32(addr), nil
}

// Write implements foreign.Heap.
func (h *Heap) Write(addr foreign.Addr, data []byte) error {
	off, err := h.offset(addr, len(data))
	if err != nil {
		return err
	}
	if !h.mem.Write(off, data) {
		return fmt.Errorf("%w: write %d bytes at %s", foreign.ErrOutOfBounds, len(data), addr)
	}
	return nil
}

// Read implements foreign.Heap. The returned slice is a copy; wazero's
// view would be invalidated by the next memory.grow.
func (h *Heap) Read(addr foreign.Addr, n int) ([]byte, error) {
	off, err := h.offset(addr, n)
	if err != nil {
		return nil, err
	}
	view, ok := h.mem.Read(off, uint32(n))
	if !ok {
		return nil, fmt.Errorf("%w: read %d bytes at %s", foreign.ErrOutOfBounds, n, addr)
	}
	out := make([]byte, n)
	copy(out, view)
	return out, nil
}

// Width implements foreign.Heap.
func (h *Heap) Width() foreign.AddressWidth { return foreign.Width32 }

var _ foreign.Heap = (*Heap)(nil)
