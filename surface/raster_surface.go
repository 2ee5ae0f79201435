// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"

	"github.com/gogpu/ckbridge/target"
	"golang.org/x/image/draw"
)

// RasterSurface is a CPU-based surface that renders to an *image.RGBA.
//
// The pixel buffer matches the target's backing buffer size. Flush copies
// it to the target; when the display size differs the frame is scaled with
// bilinear filtering.
//
// Example:
//
//	s := surface.NewRasterSurface(canvas)
//	defer s.Close()
//	s.Pixels().Set(0, 0, color.White)
//	_ = s.Flush()
type RasterSurface struct {
	canvas *target.Canvas
	pixels *image.RGBA
	scaler draw.Scaler
	closed bool
}

// NewRasterSurface creates a software surface bound to c.
// Non-positive backing sizes are clamped to 1x1.
func NewRasterSurface(c *target.Canvas) *RasterSurface {
	w, h := c.Size()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &RasterSurface{
		canvas: c,
		pixels: image.NewRGBA(image.Rect(0, 0, w, h)),
		scaler: draw.ApproxBiLinear,
	}
}

// Width returns the surface width.
func (s *RasterSurface) Width() int {
	return s.pixels.Rect.Dx()
}

// Height returns the surface height.
func (s *RasterSurface) Height() int {
	return s.pixels.Rect.Dy()
}

// Backend returns BackendSoftware.
func (s *RasterSurface) Backend() Backend {
	return BackendSoftware
}

// Canvas returns the target the surface presents to.
func (s *RasterSurface) Canvas() *target.Canvas {
	return s.canvas
}

// Pixels returns the backing pixel buffer for direct drawing.
func (s *RasterSurface) Pixels() *image.RGBA {
	return s.pixels
}

// Flush presents the current pixels to the target.
func (s *RasterSurface) Flush() error {
	if s.closed {
		return ErrClosed
	}
	dw, dh := s.canvas.DisplaySize()
	if dw <= 0 || dh <= 0 || (dw == s.Width() && dh == s.Height()) {
		frame := image.NewRGBA(s.pixels.Rect)
		draw.Draw(frame, frame.Rect, s.pixels, image.Point{}, draw.Src)
		s.canvas.Present(frame)
		return nil
	}
	frame := image.NewRGBA(image.Rect(0, 0, dw, dh))
	s.scaler.Scale(frame, frame.Rect, s.pixels, s.pixels.Rect, draw.Src, nil)
	s.canvas.Present(frame)
	return nil
}

// Close releases the pixel buffer.
func (s *RasterSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}

// Verify RasterSurface implements Surface interface.
var _ Surface = (*RasterSurface)(nil)
