// Package arena provides a slot arena of reference-counted records addressed
// by stable handles.
//
// Several indexes can refer to the same record through its handle without
// duplicating the record's data. Each index that keeps a handle holds one
// reference; a slot is recycled onto the free list only when the last
// reference is released, so a record can never be observed through one index
// after another index freed it.
//
// The arena is not safe for concurrent use. Callers own their arenas
// exclusively, matching the single-writer model of the structures built on
// top of it.
package arena

// Handle addresses a record in an Arena. Handles stay valid across
// unrelated Alloc and Release calls.
type Handle int

// Nil is the zero-record handle.
const Nil Handle = -1

// Stats tracks arena slot usage.
type Stats struct {
	Live        int    // slots currently referenced
	Capacity    int    // slots ever created
	TotalAllocs uint64 // cumulative Alloc count
	Recycled    uint64 // allocations served from the free list
}

type slot[T any] struct {
	item T
	refs int32
}

// Arena is a reference-counted slot arena.
type Arena[T any] struct {
	slots []slot[T]
	free  []Handle
	live  int
	stats Stats
}

// New creates an empty Arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Alloc stores item in a fresh or recycled slot and returns its handle.
// The slot starts with a reference count of one.
func (a *Arena[T]) Alloc(item T) Handle {
	a.stats.TotalAllocs++
	a.live++

	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = slot[T]{item: item, refs: 1}
		a.stats.Recycled++
		return h
	}
	a.slots = append(a.slots, slot[T]{item: item, refs: 1})
	return Handle(len(a.slots) - 1)
}

// Get returns a pointer to the record at h. The pointer stays valid until
// the slot's last reference is released.
func (a *Arena[T]) Get(h Handle) *T {
	return &a.slots[h].item
}

// Retain adds a reference to the slot at h.
func (a *Arena[T]) Retain(h Handle) {
	a.slots[h].refs++
}

// Release drops a reference to the slot at h. When the count reaches zero
// the record is cleared and the slot is recycled.
func (a *Arena[T]) Release(h Handle) {
	s := &a.slots[h]
	s.refs--
	if s.refs > 0 {
		return
	}
	if s.refs < 0 {
		panic("arena: release of free slot")
	}
	var zero T
	s.item = zero
	a.free = append(a.free, h)
	a.live--
}

// Refs returns the current reference count of the slot at h.
func (a *Arena[T]) Refs(h Handle) int {
	return int(a.slots[h].refs)
}

// Live returns the number of currently referenced slots.
func (a *Arena[T]) Live() int { return a.live }

// Stats returns the current arena statistics.
func (a *Arena[T]) Stats() Stats {
	st := a.stats
	st.Live = a.live
	st.Capacity = len(a.slots)
	return st
}
