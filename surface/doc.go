// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the drawable handles returned by surface
// provisioning.
//
// Exactly one of two kinds backs every successful provisioning call:
//
//   - GPUSurface: an on-screen surface created by the engine's GPU layer. It
//     wraps the engine's native handle and carries non-owning references to
//     the rendering context and GPU backend it was created from.
//   - RasterSurface: a software surface rendering into an *image.RGBA the
//     size of the target's backing buffer. Flush presents the pixels to the
//     target, scaled to the display size when the two differ.
//
// # Usage
//
//	s := surface.NewRasterSurface(canvas)
//	defer s.Close()
//
//	draw.Draw(s.Pixels(), s.Pixels().Bounds(), image.White, image.Point{}, draw.Src)
//	if err := s.Flush(); err != nil {
//	    return err
//	}
package surface
