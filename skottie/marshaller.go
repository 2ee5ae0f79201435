// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package skottie

import (
	"errors"
	"fmt"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/foreign"
)

// Retention is what happens to per-asset buffers after the engine call.
type Retention uint8

const (
	// ReleaseAfterCall frees asset data and names as soon as the engine
	// returns. The engine copies what it needs during the call.
	ReleaseAfterCall Retention = iota

	// RetainForLifetime keeps asset data and names allocated until the
	// animation is deleted, for engine builds that reference them.
	RetainForLifetime
)

// String returns the policy name.
func (r Retention) String() string {
	switch r {
	case ReleaseAfterCall:
		return "release-after-call"
	case RetainForLifetime:
		return "retain-for-lifetime"
	default:
		return "unknown"
	}
}

// MarshallerOption configures a Marshaller.
type MarshallerOption func(*Marshaller)

// WithRetainedAssets selects RetainForLifetime.
func WithRetainedAssets() MarshallerOption {
	return func(m *Marshaller) { m.retention = RetainForLifetime }
}

// WithInspection logs an Inspect summary of every asset set at debug level.
func WithInspection() MarshallerOption {
	return func(m *Marshaller) { m.inspect = true }
}

// Marshaller creates animations from a document and its assets.
//
// A Marshaller is as safe for concurrent use as its heap and engine.
type Marshaller struct {
	heap      foreign.Heap
	engine    Engine
	retention Retention
	inspect   bool
}

// NewMarshaller creates a Marshaller that allocates from heap and builds
// animations with eng.
func NewMarshaller(heap foreign.Heap, eng Engine, opts ...MarshallerOption) *Marshaller {
	m := &Marshaller{heap: heap, engine: eng}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Retention returns the buffer retention policy.
func (m *Marshaller) Retention() Retention { return m.retention }

// MakeManagedAnimation builds an animation from json and assets.
//
// Nil or empty assets are passed as a count of 0 with null arrays and no
// allocation. Otherwise every asset gets a data buffer and a name buffer,
// and the three packed arrays list them in sorted name order. The packed
// arrays are always freed before returning, including when the engine
// panics; asset buffers follow the Retention policy. Any failure frees
// everything allocated by the call.
//
// Errors: ckbridge.FeatureNotCompiledError when the engine lacks the entry
// point, InvalidAssetNameError for names containing NUL, ErrNullAnimation
// when the engine builds nothing, plus heap and engine errors.
func (m *Marshaller) MakeManagedAnimation(json string, assets Assets) (anim *Animation, err error) {
	if !m.engine.HasManagedAnimation() {
		return nil, &ckbridge.FeatureNotCompiledError{Entry: "MakeManagedAnimation"}
	}
	if m.inspect {
		for _, info := range Inspect(assets) {
			ckbridge.Logger().Debug("skottie: asset", "info", info)
		}
	}

	if len(assets) == 0 {
		ref, err := m.engine.MakeManagedAnimation(json, 0, foreign.Null, foreign.Null, foreign.Null)
		if err != nil {
			return nil, fmt.Errorf("skottie: make animation: %w", err)
		}
		return m.newAnimation(ref, nil)
	}

	keys := assets.Keys()
	names := make([][]byte, len(keys))
	for i, k := range keys {
		enc, err := foreign.CString(k)
		if err != nil {
			return nil, &InvalidAssetNameError{Name: k, Err: err}
		}
		names[i] = enc
	}

	entries := foreign.NewScope(m.heap)
	packed := foreign.NewScope(m.heap)
	var retained *foreign.Scope
	defer func() {
		releaseErr := packed.Release()
		if retained == nil {
			releaseErr = errors.Join(releaseErr, entries.Release())
		}
		if releaseErr == nil {
			return
		}
		if err != nil {
			err = errors.Join(err, releaseErr)
			return
		}
		ckbridge.Logger().Warn("skottie: releasing marshalled assets", "err", releaseErr)
	}()

	nameAddrs := make([]foreign.Addr, len(keys))
	dataAddrs := make([]foreign.Addr, len(keys))
	sizes := make([]uint64, len(keys))
	for i, k := range keys {
		blob := assets[k]
		data, err := entries.Bytes(blob)
		if err != nil {
			return nil, fmt.Errorf("skottie: asset %q data: %w", k, err)
		}
		name, err := entries.Bytes(names[i])
		if err != nil {
			return nil, fmt.Errorf("skottie: asset %q name: %w", k, err)
		}
		dataAddrs[i] = data.Addr
		nameAddrs[i] = name.Addr
		sizes[i] = uint64(len(blob))
	}

	namesBuf, err := packed.PackAddrs(nameAddrs)
	if err != nil {
		return nil, fmt.Errorf("skottie: pack names: %w", err)
	}
	dataBuf, err := packed.PackAddrs(dataAddrs)
	if err != nil {
		return nil, fmt.Errorf("skottie: pack data: %w", err)
	}
	sizesBuf, err := packed.Pack(sizes)
	if err != nil {
		return nil, fmt.Errorf("skottie: pack sizes: %w", err)
	}

	ckbridge.Logger().Debug("skottie: assets marshalled",
		"count", len(keys), "bytes", assets.Size(),
		"allocations", entries.Len()+packed.Len(), "retention", m.retention)

	ref, err := m.engine.MakeManagedAnimation(json, uint32(len(keys)), namesBuf.Addr, dataBuf.Addr, sizesBuf.Addr)
	if err == nil && ref == 0 {
		err = ErrNullAnimation
	}
	if err != nil {
		return nil, fmt.Errorf("skottie: make animation: %w", err)
	}

	// Ownership of the asset buffers moves to the animation.
	if m.retention == RetainForLifetime {
		retained = entries
	}
	return m.newAnimation(ref, retained)
}

func (m *Marshaller) newAnimation(ref Ref, retained *foreign.Scope) (*Animation, error) {
	if ref == 0 {
		if retained != nil {
			_ = retained.Release()
		}
		return nil, ErrNullAnimation
	}
	ckbridge.Logger().Info("skottie: animation constructed", "ref", uint32(ref))
	return &Animation{
		ref:      ref,
		heap:     m.heap,
		engine:   m.engine,
		retained: retained,
	}, nil
}
