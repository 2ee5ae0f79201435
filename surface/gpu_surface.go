// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// GPUBackend is the engine-side handle of an on-screen GPU surface.
type GPUBackend interface {
	// Flush submits pending GPU work for presentation.
	Flush() error

	// Close releases the engine surface.
	Close() error
}

// GPUSurface is a GPU-backed on-screen surface.
//
// The rendering context and GPU backend references attached with Attach
// are non-owning: closing the surface does not release them.
type GPUSurface struct {
	width      int
	height     int
	format     gputypes.TextureFormat
	colorSpace ColorSpace
	backend    GPUBackend
	context    int32
	grContext  gpucontext.DeviceProvider
	closed     bool
}

// NewGPUSurface wraps an engine surface handle.
// Returns an error if backend is nil or the size is not positive.
func NewGPUSurface(width, height int, format gputypes.TextureFormat, cs ColorSpace, backend GPUBackend) (*GPUSurface, error) {
	if backend == nil {
		return nil, errors.New("surface: GPUBackend cannot be nil")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("surface: GPU surface size must be positive")
	}
	return &GPUSurface{
		width:      width,
		height:     height,
		format:     format,
		colorSpace: cs,
		backend:    backend,
	}, nil
}

// Width returns the surface width.
func (s *GPUSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *GPUSurface) Height() int {
	return s.height
}

// Backend returns BackendGPU.
func (s *GPUSurface) Backend() Backend {
	return BackendGPU
}

// Format returns the texture format of the swap chain.
func (s *GPUSurface) Format() gputypes.TextureFormat {
	return s.format
}

// ColorSpace returns the color space requested at creation.
func (s *GPUSurface) ColorSpace() ColorSpace {
	return s.colorSpace
}

// Attach records the rendering context and GPU backend the surface was
// created from, for later reuse by the caller.
func (s *GPUSurface) Attach(context int32, gr gpucontext.DeviceProvider) {
	s.context = context
	s.grContext = gr
}

// Context returns the attached rendering context handle, or 0.
func (s *GPUSurface) Context() int32 {
	return s.context
}

// GrContext returns the attached GPU backend, or nil.
func (s *GPUSurface) GrContext() gpucontext.DeviceProvider {
	return s.grContext
}

// Flush ensures all pending operations are submitted.
func (s *GPUSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return s.backend.Flush()
}

// Close releases the engine surface. The attached context is left alone.
func (s *GPUSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}

// Closed reports whether Close has been called.
func (s *GPUSurface) Closed() bool {
	return s.closed
}

// Verify GPUSurface implements Surface interface.
var _ Surface = (*GPUSurface)(nil)
