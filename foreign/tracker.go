// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package foreign

import (
	"fmt"
	"sort"
	"sync"
)

// EventKind identifies a heap operation recorded by a Tracker.
type EventKind uint8

const (
	// EventMalloc is a successful allocation.
	EventMalloc EventKind = iota

	// EventFree is a successful free.
	EventFree
)

// String returns the event name.
func (k EventKind) String() string {
	switch k {
	case EventMalloc:
		return "malloc"
	case EventFree:
		return "free"
	default:
		return "unknown"
	}
}

// Event is one recorded heap operation.
type Event struct {
	Kind EventKind
	Addr Addr
	Size int
}

// Stats summarizes a Tracker.
type Stats struct {
	Allocs    int
	Frees     int
	Live      int
	LiveBytes int
}

// Tracker is a Heap decorator that records every allocation and free.
//
// It rejects double frees and frees of addresses it never handed out
// before they reach the underlying heap, so a bug in the boundary layer
// can never corrupt the engine's allocator.
//
// Tracker is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	heap   Heap
	live   map[Addr]int
	freed  map[Addr]bool
	events []Event
}

// NewTracker wraps h.
func NewTracker(h Heap) *Tracker {
	return &Tracker{
		heap:  h,
		live:  make(map[Addr]int),
		freed: make(map[Addr]bool),
	}
}

// Malloc implements Heap.
func (t *Tracker) Malloc(size int) (Addr, error) {
	addr, err := t.heap.Malloc(size)
	if err != nil {
		return Null, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live[addr] = size
	delete(t.freed, addr)
	t.events = append(t.events, Event{Kind: EventMalloc, Addr: addr, Size: size})
	return addr, nil
}

// Free implements Heap.
func (t *Tracker) Free(addr Addr) error {
	t.mu.Lock()
	size, ok := t.live[addr]
	if !ok {
		freed := t.freed[addr]
		t.mu.Unlock()
		if freed {
			return fmt.Errorf("%w: %s", ErrDoubleFree, addr)
		}
		return fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	t.mu.Unlock()

	if err := t.heap.Free(addr); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, addr)
	t.freed[addr] = true
	t.events = append(t.events, Event{Kind: EventFree, Addr: addr, Size: size})
	return nil
}

// Write implements Heap.
func (t *Tracker) Write(addr Addr, data []byte) error { return t.heap.Write(addr, data) }

// Read implements Heap.
func (t *Tracker) Read(addr Addr, n int) ([]byte, error) { return t.heap.Read(addr, n) }

// Width implements Heap.
func (t *Tracker) Width() AddressWidth { return t.heap.Width() }

// Stats returns a summary of recorded operations.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Stats{Live: len(t.live)}
	for _, e := range t.events {
		switch e.Kind {
		case EventMalloc:
			st.Allocs++
		case EventFree:
			st.Frees++
		}
	}
	for _, n := range t.live {
		st.LiveBytes += n
	}
	return st
}

// Events returns a copy of the recorded operations in order.
func (t *Tracker) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Live returns the outstanding allocations sorted by address.
func (t *Tracker) Live() []Buffer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Buffer, 0, len(t.live))
	for a, n := range t.live {
		out = append(out, Buffer{Addr: a, Len: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

// IsLive reports whether addr is currently allocated.
func (t *Tracker) IsLive(addr Addr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.live[addr]
	return ok
}

// FreeCount returns how many times addr was successfully freed.
func (t *Tracker) FreeCount(addr Addr) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.events {
		if e.Kind == EventFree && e.Addr == addr {
			n++
		}
	}
	return n
}

// Reset forgets all recorded events. Outstanding allocations stay live.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = nil
	t.freed = make(map[Addr]bool)
}

var _ Heap = (*Tracker)(nil)
