// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package skottie

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/ckbridge/foreign"
)

// Color4f is a non-premultiplied RGBA color with float32 components in
// [0, 1]. It converts to the engine's color layout without rounding.
type Color4f struct {
	R, G, B, A float32
}

// RGBA implements color.Color.
func (c Color4f) RGBA() (r, g, b, a uint32) {
	return color.NRGBA64{
		R: unit16(c.R),
		G: unit16(c.G),
		B: unit16(c.B),
		A: unit16(c.A),
	}.RGBA()
}

func unit16(v float32) uint16 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xffff
	default:
		return uint16(v*0xffff + 0.5)
	}
}

// ToColor4f converts any color to non-premultiplied float components.
func ToColor4f(c color.Color) Color4f {
	if f, ok := c.(Color4f); ok {
		return f
	}
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color4f{}
	}
	fa := float32(a)
	return Color4f{
		R: float32(r) / fa,
		G: float32(g) / fa,
		B: float32(b) / fa,
		A: fa / 0xffff,
	}
}

// Animation is an animation built by the engine.
//
// An Animation is not safe for concurrent use.
type Animation struct {
	ref      Ref
	heap     foreign.Heap
	engine   Engine
	retained *foreign.Scope
	deleted  bool
}

// Ref returns the engine reference.
func (a *Animation) Ref() Ref { return a.ref }

// Deleted reports whether Delete has been called.
func (a *Animation) Deleted() bool { return a.deleted }

// Retained returns the asset buffers kept alive for the animation.
func (a *Animation) Retained() []foreign.Buffer {
	if a.retained == nil {
		return nil
	}
	return a.retained.Buffers()
}

// SetColor overrides the color property at key. The color is passed as
// four float32 components in a temporary buffer freed before returning.
func (a *Animation) SetColor(key string, c color.Color) (err error) {
	if a.deleted {
		return ErrAnimationDeleted
	}
	f := ToColor4f(c)
	s := foreign.NewScope(a.heap)
	defer func() { err = errors.Join(err, s.Release()) }()
	buf, err := s.Float32s(f.R, f.G, f.B, f.A)
	if err != nil {
		return fmt.Errorf("skottie: color buffer: %w", err)
	}
	if err := a.engine.SetColor(a.ref, key, buf.Addr); err != nil {
		return fmt.Errorf("skottie: set color %q: %w", key, err)
	}
	return nil
}

// SetOpacity overrides the opacity property at key.
func (a *Animation) SetOpacity(key string, opacity float32) error {
	if a.deleted {
		return ErrAnimationDeleted
	}
	if err := a.engine.SetOpacity(a.ref, key, opacity); err != nil {
		return fmt.Errorf("skottie: set opacity %q: %w", key, err)
	}
	return nil
}

// Delete destroys the engine animation and frees retained asset buffers.
// Calling Delete again is a no-op.
func (a *Animation) Delete() error {
	if a.deleted {
		return nil
	}
	a.deleted = true
	var err error
	if e := a.engine.Delete(a.ref); e != nil {
		err = fmt.Errorf("skottie: delete animation: %w", e)
	}
	if a.retained != nil {
		err = errors.Join(err, a.retained.Release())
	}
	return err
}
