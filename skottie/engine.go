// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package skottie

import (
	"errors"
	"maps"
	"slices"
	"strconv"

	"github.com/gogpu/ckbridge/foreign"
)

// Ref identifies an animation owned by the engine. Zero is no animation.
type Ref uint32

// Engine is the engine's animation layer.
type Engine interface {
	// HasManagedAnimation reports whether the engine build includes the
	// managed animation entry point.
	HasManagedAnimation() bool

	// MakeManagedAnimation builds an animation from a document and count
	// assets described by the packed names, data and sizes arrays.
	// With count 0 the three addresses are null.
	MakeManagedAnimation(json string, count uint32, names, data, sizes foreign.Addr) (Ref, error)

	// SetColor overrides the color property at key. color addresses four
	// float32 RGBA components.
	SetColor(ref Ref, key string, color foreign.Addr) error

	// SetOpacity overrides the opacity property at key.
	SetOpacity(ref Ref, key string, opacity float32) error

	// Delete destroys the animation.
	Delete(ref Ref) error
}

// Assets maps asset names to their raw bytes.
type Assets map[string][]byte

// Keys returns the asset names in sorted order.
func (a Assets) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Size returns the total byte size of all blobs.
func (a Assets) Size() int {
	n := 0
	for _, b := range a {
		n += len(b)
	}
	return n
}

var (
	// ErrNullAnimation is returned when the engine hands back no animation.
	ErrNullAnimation = errors.New("skottie: engine returned a null animation")

	// ErrAnimationDeleted is returned by setters on a deleted animation.
	ErrAnimationDeleted = errors.New("skottie: animation already deleted")
)

// InvalidAssetNameError reports an asset name that cannot be passed to the
// engine as a NUL-terminated string.
type InvalidAssetNameError struct {
	Name string
	Err  error
}

func (e *InvalidAssetNameError) Error() string {
	return "skottie: invalid asset name " + strconv.Quote(e.Name) + ": " + e.Err.Error()
}

func (e *InvalidAssetNameError) Unwrap() error { return e.Err }
