// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wasm implements skottie.Engine on the exports of an engine build
// loaded into wazero.
//
// Strings are copied into the heap for the duration of each call and
// passed as pointer and byte length. The heap must allocate in the same
// linear memory the module reads, usually a wasmheap.Heap over the same
// module.
package wasm

import (
	"context"
	"fmt"

	"github.com/gogpu/ckbridge"
	"github.com/gogpu/ckbridge/foreign"
	"github.com/gogpu/ckbridge/skottie"
	"github.com/tetratelabs/wazero/api"
)

// Export names of the managed animation entry points.
const (
	ExportMake       = "MakeManagedAnimation"
	ExportSetColor   = "ManagedAnimation_setColor"
	ExportSetOpacity = "ManagedAnimation_setOpacity"
	ExportDelete     = "ManagedAnimation_delete"
)

// Option configures an Engine.
type Option func(*Engine)

// WithExportPrefix prepends prefix to every export name, for builds that
// mangle C symbols (emscripten uses "_").
func WithExportPrefix(prefix string) Option {
	return func(e *Engine) { e.prefix = prefix }
}

// Engine calls the managed animation exports of a wasm module.
//
// Engine is not safe for concurrent use, matching the module instance.
type Engine struct {
	ctx    context.Context
	mod    api.Module
	heap   foreign.Heap
	prefix string
}

// New creates an Engine over mod. Exports are resolved on each call, so a
// build missing a setter still serves the others.
func New(ctx context.Context, mod api.Module, heap foreign.Heap, opts ...Option) *Engine {
	e := &Engine{ctx: ctx, mod: mod, heap: heap}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) export(name string) (api.Function, error) {
	fn := e.mod.ExportedFunction(e.prefix + name)
	if fn == nil {
		return nil, &ckbridge.FeatureNotCompiledError{Entry: name}
	}
	return fn, nil
}

// HasManagedAnimation implements skottie.Engine.
func (e *Engine) HasManagedAnimation() bool {
	return e.mod.ExportedFunction(e.prefix+ExportMake) != nil
}

// MakeManagedAnimation implements skottie.Engine.
func (e *Engine) MakeManagedAnimation(json string, count uint32, names, data, sizes foreign.Addr) (ref skottie.Ref, err error) {
	fn, err := e.export(ExportMake)
	if err != nil {
		return 0, err
	}
	s := foreign.NewScope(e.heap)
	defer func() { err = joinRelease(err, s) }()

	doc, err := s.Bytes([]byte(json))
	if err != nil {
		return 0, fmt.Errorf("wasm: copy animation json: %w", err)
	}
	res, err := fn.Call(e.ctx,
		uint64(doc.Addr), uint64(doc.Len), uint64(count),
		uint64(names), uint64(data), uint64(sizes))
	if err != nil {
		return 0, fmt.Errorf("wasm: %s: %w", ExportMake, err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return skottie.Ref(uint32(res[0])), nil
}

// SetColor implements skottie.Engine.
func (e *Engine) SetColor(ref skottie.Ref, key string, color foreign.Addr) error {
	return e.withKey(ExportSetColor, key, func(fn api.Function, k foreign.Buffer) error {
		_, err := fn.Call(e.ctx, uint64(ref), uint64(k.Addr), uint64(k.Len), uint64(color))
		return err
	})
}

// SetOpacity implements skottie.Engine.
func (e *Engine) SetOpacity(ref skottie.Ref, key string, opacity float32) error {
	return e.withKey(ExportSetOpacity, key, func(fn api.Function, k foreign.Buffer) error {
		_, err := fn.Call(e.ctx, uint64(ref), uint64(k.Addr), uint64(k.Len), api.EncodeF32(opacity))
		return err
	})
}

// Delete implements skottie.Engine.
func (e *Engine) Delete(ref skottie.Ref) error {
	fn, err := e.export(ExportDelete)
	if err != nil {
		return err
	}
	if _, err := fn.Call(e.ctx, uint64(ref)); err != nil {
		return fmt.Errorf("wasm: %s: %w", ExportDelete, err)
	}
	return nil
}

func (e *Engine) withKey(name, key string, call func(api.Function, foreign.Buffer) error) (err error) {
	fn, err := e.export(name)
	if err != nil {
		return err
	}
	s := foreign.NewScope(e.heap)
	defer func() { err = joinRelease(err, s) }()

	k, err := s.Bytes([]byte(key))
	if err != nil {
		return fmt.Errorf("wasm: copy key: %w", err)
	}
	if err := call(fn, k); err != nil {
		return fmt.Errorf("wasm: %s: %w", name, err)
	}
	return nil
}

func joinRelease(err error, s *foreign.Scope) error {
	if rerr := s.Release(); rerr != nil {
		if err == nil {
			return rerr
		}
		return fmt.Errorf("%w (release: %v)", err, rerr)
	}
	return err
}

var _ skottie.Engine = (*Engine)(nil)
