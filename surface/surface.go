// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import "errors"

// ErrClosed is returned by operations on a closed surface.
var ErrClosed = errors.New("surface: closed")

// Backend identifies what a surface renders with.
type Backend uint8

const (
	// BackendGPU is a GPU-backed on-screen surface.
	BackendGPU Backend = iota + 1

	// BackendSoftware is a CPU raster surface.
	BackendSoftware
)

// String returns the backend name.
func (b Backend) String() string {
	switch b {
	case BackendGPU:
		return "gpu"
	case BackendSoftware:
		return "software"
	default:
		return "unknown"
	}
}

// ColorSpace selects the surface color space.
//
// The zero value leaves the choice to the engine; it is never replaced by a
// concrete color space on the host side.
type ColorSpace uint8

const (
	// ColorSpaceUnspecified defers to the engine default.
	ColorSpaceUnspecified ColorSpace = iota

	// ColorSpaceSRGB is sRGB.
	ColorSpaceSRGB

	// ColorSpaceDisplayP3 is Display P3.
	ColorSpaceDisplayP3

	// ColorSpaceAdobeRGB is Adobe RGB (1998).
	ColorSpaceAdobeRGB
)

// String returns the color space name.
func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceUnspecified:
		return "unspecified"
	case ColorSpaceSRGB:
		return "srgb"
	case ColorSpaceDisplayP3:
		return "display-p3"
	case ColorSpaceAdobeRGB:
		return "adobe-rgb"
	default:
		return "unknown"
	}
}

// Surface is an opaque drawable target.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Backend reports whether the surface is GPU or software backed.
	Backend() Backend

	// Flush submits pending work and presents it to the target.
	Flush() error

	// Close releases all resources associated with the surface.
	// Close is idempotent; multiple calls are safe.
	Close() error
}
