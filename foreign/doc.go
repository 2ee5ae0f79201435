// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package foreign models the engine's linear heap as seen from the host.
//
// The heap is reachable only through numeric addresses. Memory is obtained
// with Heap.Malloc, filled with Heap.Write and returned with Heap.Free.
// Address 0 is the null address; no successful allocation ever returns it.
//
// # Scoped allocation
//
// A Scope records every buffer it allocates and frees all of them exactly
// once when Release is called. The intended pattern is:
//
//	sc := foreign.NewScope(heap)
//	defer sc.Release()
//
//	name, err := sc.CString("image_0")
//	if err != nil {
//	    return err // already-allocated buffers are freed by the deferred Release
//	}
//
// # Packed index arrays
//
// Variable-length collections cross the boundary as one contiguous block of
// fixed-width little-endian integers (Scope.Pack). The width is a property of
// the heap (Width32 for wasm32, Width64 for wasm64), not of the protocol.
//
// # Implementations
//
// Arena is an in-process linear heap for engines hosted in Go and for tests.
// Tracker decorates any Heap with allocation accounting and double-free
// detection. Package wasmheap adapts a wazero module.
package foreign
