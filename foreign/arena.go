// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package foreign

import (
	"fmt"
	"sort"
)

const (
	// arenaAlign is the alignment of every block handed out by an Arena.
	arenaAlign = 8

	// arenaBase is the first usable address. Everything below it is
	// reserved so that Null never aliases a real block.
	arenaBase = 64

	defaultArenaSize = 64 << 10
	defaultArenaMax  = 256 << 20
)

// span is a free range [addr, addr+size).
type span struct {
	addr Addr
	size int
}

// Arena is an in-process linear heap.
//
// It backs memory with a growable byte slice and hands out 8-byte aligned
// blocks using a first-fit free list with coalescing. Arena is useful when
// the engine itself is hosted in Go and as a deterministic heap in tests.
//
// Arena is not safe for concurrent use.
type Arena struct {
	mem   []byte
	max   int
	width AddressWidth
	top   int
	live  map[Addr]int
	free  []span
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithArenaSize sets the initial memory size in bytes.
func WithArenaSize(n int) ArenaOption {
	return func(a *Arena) {
		if n > arenaBase {
			a.mem = make([]byte, n)
		}
	}
}

// WithArenaLimit caps how far the arena may grow.
func WithArenaLimit(n int) ArenaOption {
	return func(a *Arena) {
		a.max = n
	}
}

// WithArenaWidth sets the address width reported by the arena.
func WithArenaWidth(w AddressWidth) ArenaOption {
	return func(a *Arena) {
		if w.Valid() {
			a.width = w
		}
	}
}

// NewArena creates an arena with 64 KiB of initial memory, a 256 MiB limit
// and 32-bit addresses.
func NewArena(opts ...ArenaOption) *Arena {
	a := &Arena{
		max:   defaultArenaMax,
		width: Width32,
		top:   arenaBase,
		live:  make(map[Addr]int),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.mem == nil {
		a.mem = make([]byte, defaultArenaSize)
	}
	if a.max < len(a.mem) {
		a.max = len(a.mem)
	}
	return a
}

func alignUp(n int) int {
	return (n + arenaAlign - 1) &^ (arenaAlign - 1)
}

// Malloc implements Heap.
func (a *Arena) Malloc(size int) (Addr, error) {
	if size < 0 {
		return Null, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	n := alignUp(max(size, 1))

	for i, sp := range a.free {
		if sp.size < n {
			continue
		}
		addr := sp.addr
		if sp.size == n {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = span{addr: sp.addr + Addr(n), size: sp.size - n}
		}
		a.live[addr] = n
		clear(a.mem[addr : int(addr)+n])
		return addr, nil
	}

	if a.top+n > len(a.mem) {
		if err := a.grow(a.top + n); err != nil {
			return Null, err
		}
	}
	addr := Addr(a.top)
	a.top += n
	a.live[addr] = n
	return addr, nil
}

func (a *Arena) grow(need int) error {
	if need > a.max {
		return fmt.Errorf("%w: need %d bytes, limit %d", ErrOutOfMemory, need, a.max)
	}
	size := len(a.mem)
	for size < need {
		size *= 2
	}
	size = min(size, a.max)
	mem := make([]byte, size)
	copy(mem, a.mem)
	a.mem = mem
	return nil
}

// Free implements Heap.
func (a *Arena) Free(addr Addr) error {
	n, ok := a.live[addr]
	if !ok {
		if a.inFreeList(addr) {
			return fmt.Errorf("%w: %s", ErrDoubleFree, addr)
		}
		return fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	delete(a.live, addr)
	a.insertFree(span{addr: addr, size: n})
	return nil
}

func (a *Arena) inFreeList(addr Addr) bool {
	for _, sp := range a.free {
		if addr >= sp.addr && addr < sp.addr+Addr(sp.size) {
			return true
		}
	}
	return false
}

// insertFree adds sp to the sorted free list, merging adjacent spans and
// returning a trailing span to the bump region.
func (a *Arena) insertFree(sp span) {
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].addr > sp.addr })
	a.free = append(a.free, span{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = sp

	if i+1 < len(a.free) && a.free[i].addr+Addr(a.free[i].size) == a.free[i+1].addr {
		a.free[i].size += a.free[i+1].size
		a.free = append(a.free[:i+1], a.free[i+2:]...)
	}
	if i > 0 && a.free[i-1].addr+Addr(a.free[i-1].size) == a.free[i].addr {
		a.free[i-1].size += a.free[i].size
		a.free = append(a.free[:i], a.free[i+1:]...)
	}

	if last := len(a.free) - 1; last >= 0 && int(a.free[last].addr)+a.free[last].size == a.top {
		a.top = int(a.free[last].addr)
		a.free = a.free[:last]
	}
}

func (a *Arena) check(addr Addr, n int) error {
	if n < 0 || addr < arenaBase || uint64(addr)+uint64(n) > uint64(len(a.mem)) {
		return fmt.Errorf("%w: [%s, +%d) of %d", ErrOutOfBounds, addr, n, len(a.mem))
	}
	return nil
}

// Write implements Heap.
func (a *Arena) Write(addr Addr, data []byte) error {
	if err := a.check(addr, len(data)); err != nil {
		return err
	}
	copy(a.mem[addr:], data)
	return nil
}

// Read implements Heap.
func (a *Arena) Read(addr Addr, n int) ([]byte, error) {
	if err := a.check(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, a.mem[addr:])
	return out, nil
}

// Width implements Heap.
func (a *Arena) Width() AddressWidth { return a.width }

// Size returns the current memory size in bytes.
func (a *Arena) Size() int { return len(a.mem) }

// InUse returns the number of live blocks.
func (a *Arena) InUse() int { return len(a.live) }

var _ Heap = (*Arena)(nil)
