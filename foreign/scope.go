// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package foreign

import (
	"errors"
	"fmt"
	"math"
)

// Scope owns a set of foreign allocations and frees them together.
//
// A Scope is single-owner and not safe for concurrent use. Release frees
// every buffer exactly once, in reverse allocation order, and is idempotent.
type Scope struct {
	heap     Heap
	bufs     []Buffer
	released bool
}

// NewScope creates an empty scope allocating from h.
func NewScope(h Heap) *Scope {
	return &Scope{heap: h}
}

// Heap returns the heap the scope allocates from.
func (s *Scope) Heap() Heap { return s.heap }

// Len returns the number of live buffers owned by the scope.
func (s *Scope) Len() int { return len(s.bufs) }

// Buffers returns a copy of the buffers owned by the scope.
func (s *Scope) Buffers() []Buffer {
	out := make([]Buffer, len(s.bufs))
	copy(out, s.bufs)
	return out
}

// Alloc reserves n bytes and records the buffer for release.
func (s *Scope) Alloc(n int) (Buffer, error) {
	if s.released {
		return Buffer{}, ErrScopeReleased
	}
	if n < 0 {
		return Buffer{}, fmt.Errorf("%w: %d", ErrNegativeSize, n)
	}
	addr, err := s.heap.Malloc(n)
	if err != nil {
		return Buffer{}, fmt.Errorf("foreign: malloc(%d): %w", n, err)
	}
	b := Buffer{Addr: addr, Len: n}
	s.bufs = append(s.bufs, b)
	return b, nil
}

// Bytes allocates len(data) bytes and copies data verbatim.
// An empty data slice still yields a valid zero-length allocation.
func (s *Scope) Bytes(data []byte) (Buffer, error) {
	b, err := s.Alloc(len(data))
	if err != nil {
		return Buffer{}, err
	}
	if len(data) > 0 {
		if err := s.heap.Write(b.Addr, data); err != nil {
			return Buffer{}, fmt.Errorf("foreign: write %d bytes at %s: %w", len(data), b.Addr, err)
		}
	}
	return b, nil
}

// CString allocates str encoded as a NUL-terminated UTF-8 string.
// The buffer length includes the terminator.
func (s *Scope) CString(str string) (Buffer, error) {
	enc, err := CString(str)
	if err != nil {
		return Buffer{}, err
	}
	return s.Bytes(enc)
}

// Pack copies values into one contiguous block of address-width slots.
// An empty slice allocates nothing and returns a null buffer.
func (s *Scope) Pack(values []uint64) (Buffer, error) {
	if len(values) == 0 {
		return Buffer{}, nil
	}
	enc, err := PutSlots(s.heap.Width(), values)
	if err != nil {
		return Buffer{}, err
	}
	return s.Bytes(enc)
}

// PackAddrs is Pack for a slice of addresses.
func (s *Scope) PackAddrs(addrs []Addr) (Buffer, error) {
	values := make([]uint64, len(addrs))
	for i, a := range addrs {
		values[i] = uint64(a)
	}
	return s.Pack(values)
}

// Float32s copies vals as little-endian IEEE 754 floats.
func (s *Scope) Float32s(vals ...float32) (Buffer, error) {
	enc := make([]byte, 4*len(vals))
	for i, v := range vals {
		ByteOrder.PutUint32(enc[4*i:], math.Float32bits(v))
	}
	return s.Bytes(enc)
}

// Release frees every buffer owned by the scope. All free failures are
// reported together; a failure never stops the remaining buffers from
// being freed.
func (s *Scope) Release() error {
	if s.released {
		return nil
	}
	s.released = true

	var errs []error
	for i := len(s.bufs) - 1; i >= 0; i-- {
		b := s.bufs[i]
		if err := s.heap.Free(b.Addr); err != nil {
			errs = append(errs, fmt.Errorf("foreign: free %s: %w", b.Addr, err))
		}
	}
	s.bufs = nil
	return errors.Join(errs...)
}

// Released reports whether Release has been called.
func (s *Scope) Released() bool { return s.released }
