// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package foreign

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
)

// Addr is a numeric address inside the foreign heap.
type Addr uint64

// Null is the null foreign address.
const Null Addr = 0

// IsNull reports whether a is the null address.
func (a Addr) IsNull() bool { return a == Null }

// String formats the address in hex.
func (a Addr) String() string { return fmt.Sprintf("0x%x", uint64(a)) }

// AddressWidth is the size in bytes of one address (or size) slot in the
// foreign heap.
type AddressWidth int

const (
	// Width32 is the address width of a 32-bit (wasm32) heap.
	Width32 AddressWidth = 4

	// Width64 is the address width of a 64-bit (wasm64) heap.
	Width64 AddressWidth = 8
)

// Max returns the largest value representable in one slot.
func (w AddressWidth) Max() uint64 {
	if w == Width64 {
		return ^uint64(0)
	}
	return uint64(^uint32(0))
}

// Valid reports whether w is a supported width.
func (w AddressWidth) Valid() bool { return w == Width32 || w == Width64 }

// String returns "32-bit" or "64-bit".
func (w AddressWidth) String() string {
	switch w {
	case Width32:
		return "32-bit"
	case Width64:
		return "64-bit"
	default:
		return "invalid(" + strconv.Itoa(int(w)) + ")"
	}
}

// ByteOrder is the byte order of every multi-byte value in the foreign heap.
var ByteOrder = binary.LittleEndian

// Common foreign memory errors.
var (
	// ErrOutOfMemory is returned when the heap cannot satisfy an allocation.
	ErrOutOfMemory = errors.New("foreign: out of memory")

	// ErrOutOfBounds is returned for reads and writes outside the heap.
	ErrOutOfBounds = errors.New("foreign: access out of bounds")

	// ErrDoubleFree is returned when an address is freed twice.
	ErrDoubleFree = errors.New("foreign: double free")

	// ErrUnknownAddress is returned when freeing an address the heap never handed out.
	ErrUnknownAddress = errors.New("foreign: free of unknown address")

	// ErrNegativeSize is returned for allocation requests below zero bytes.
	ErrNegativeSize = errors.New("foreign: negative allocation size")

	// ErrInteriorNUL is returned when a string cannot be NUL-terminated cleanly.
	ErrInteriorNUL = errors.New("foreign: string contains NUL byte")

	// ErrAddressOverflow is returned when a value does not fit the address width.
	ErrAddressOverflow = errors.New("foreign: value exceeds address width")

	// ErrScopeReleased is returned when allocating from a released Scope.
	ErrScopeReleased = errors.New("foreign: scope already released")
)

// Heap is the host's view of the foreign memory space.
//
// Implementations are not required to be safe for concurrent use; the
// boundary layer calls them from a single goroutine.
type Heap interface {
	// Malloc reserves size bytes and returns their base address.
	// A zero-byte request still returns a distinct, non-null address.
	Malloc(size int) (Addr, error)

	// Free returns a block obtained from Malloc.
	Free(addr Addr) error

	// Write copies data into the heap starting at addr.
	Write(addr Addr, data []byte) error

	// Read copies n bytes starting at addr out of the heap.
	Read(addr Addr, n int) ([]byte, error)

	// Width returns the heap's address width.
	Width() AddressWidth
}

// Buffer is a byte range inside the foreign heap.
type Buffer struct {
	Addr Addr
	Len  int
}

// IsNull reports whether the buffer has no backing allocation.
func (b Buffer) IsNull() bool { return b.Addr.IsNull() }

// PutSlots encodes values as fixed-width little-endian slots.
// It returns ErrAddressOverflow if a value does not fit w.
func PutSlots(w AddressWidth, values []uint64) ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("foreign: invalid address width %d", w)
	}
	out := make([]byte, len(values)*int(w))
	for i, v := range values {
		if v > w.Max() {
			return nil, fmt.Errorf("%w: slot %d = %d", ErrAddressOverflow, i, v)
		}
		off := i * int(w)
		if w == Width64 {
			ByteOrder.PutUint64(out[off:], v)
		} else {
			ByteOrder.PutUint32(out[off:], uint32(v))
		}
	}
	return out, nil
}

// Slots decodes fixed-width little-endian slots.
func Slots(w AddressWidth, data []byte) []uint64 {
	if !w.Valid() {
		return nil
	}
	n := len(data) / int(w)
	out := make([]uint64, n)
	for i := range out {
		off := i * int(w)
		if w == Width64 {
			out[i] = ByteOrder.Uint64(data[off:])
		} else {
			out[i] = uint64(ByteOrder.Uint32(data[off:]))
		}
	}
	return out
}
