// Package pool implements the fixed-capacity entity arenas every simulation
// entity kind (unit, sprite, image, bullet, order, path) lives in: a dense
// slice of T, a parallel alive/generation bookkeeping array, and an
// intrusive free list threaded through the bookkeeping slots rather than
// through T itself, so T stays a plain data record.
//
// Grounded on the teacher's slice-owned entity systems (PedestrianSystem.P,
// TrafficSystem.Cars, BonusSystem.Boxes) which already hold a flat slice of
// structs per entity kind; generalized here into one reusable generic arena
// with stable indices and generation-tagged identifiers, since those
// systems never needed to hand out a reusable slot or detect a stale
// reference.
package pool

import "github.com/stonehollow/bwsim/internal/errs"

// ID is a generation-tagged identifier: Index names a slot, Generation
// must match the slot's current occupant for the ID to be valid. This is
// the Go analogue of the original's packed unit_id.
type ID struct {
	Index      int32
	Generation uint32
}

// Valid reports whether id plausibly refers to something (index >= 0);
// actual liveness still requires Arena.Get.
func (id ID) Valid() bool { return id.Index >= 0 }

// NilID is the canonical "no entity" identifier.
var NilID = ID{Index: -1}

type slot struct {
	alive      bool
	generation uint32
	nextFree   int32 // -1 terminator
}

// Arena is a fixed-capacity pool of T, addressed by dense index or by a
// generation-tagged ID.
type Arena[T any] struct {
	items     []T
	slots     []slot
	freeHead  int32
	liveCount int
}

// New allocates an arena with room for exactly capacity elements.
func New[T any](capacity int) *Arena[T] {
	a := &Arena[T]{
		items: make([]T, capacity),
		slots: make([]slot, capacity),
	}
	for i := range a.slots {
		a.slots[i].nextFree = int32(i + 1)
	}
	if capacity > 0 {
		a.slots[capacity-1].nextFree = -1
	} else {
		a.freeHead = -1
	}
	return a
}

// Capacity returns the arena's fixed size.
func (a *Arena[T]) Capacity() int { return len(a.items) }

// Len returns the number of currently-live elements.
func (a *Arena[T]) Len() int { return a.liveCount }

// Allocate returns a zero-initialized element and its ID, or
// errs.ErrOutOfCapacity if every slot is in use.
func (a *Arena[T]) Allocate() (*T, ID, error) {
	if a.freeHead == -1 {
		var zero ID
		return nil, zero, errs.ErrOutOfCapacity
	}
	idx := a.freeHead
	s := &a.slots[idx]
	a.freeHead = s.nextFree
	s.alive = true
	a.liveCount++

	var zero T
	a.items[idx] = zero
	return &a.items[idx], ID{Index: idx, Generation: s.generation}, nil
}

// Release returns id's slot to the free list and bumps its generation so
// any other ID still referencing the old occupant fails Get.
func (a *Arena[T]) Release(id ID) {
	if id.Index < 0 || int(id.Index) >= len(a.slots) {
		return
	}
	s := &a.slots[id.Index]
	if !s.alive || s.generation != id.Generation {
		return
	}
	s.alive = false
	s.generation++
	s.nextFree = a.freeHead
	a.freeHead = id.Index
	a.liveCount--
}

// Get returns a pointer to id's element iff id is still valid (the slot is
// alive and the generation matches); otherwise nil, false.
func (a *Arena[T]) Get(id ID) (*T, bool) {
	if id.Index < 0 || int(id.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[id.Index]
	if !s.alive || s.generation != id.Generation {
		return nil, false
	}
	return &a.items[id.Index], true
}

// At returns a pointer to the element at a raw dense index, regardless of
// liveness — used by components (e.g. the spatial index) that already
// track liveness themselves and only need the backing storage.
func (a *Arena[T]) At(index int32) *T { return &a.items[index] }

// IsAlive reports whether the slot at index currently holds a live value.
func (a *Arena[T]) IsAlive(index int32) bool {
	if index < 0 || int(index) >= len(a.slots) {
		return false
	}
	return a.slots[index].alive
}

// Generation returns the current generation counter for index.
func (a *Arena[T]) Generation(index int32) uint32 {
	return a.slots[index].generation
}

// Each calls fn for every live element in index order (dense iteration
// order over the arena, not the per-player linked-list order the frame
// driver uses — see sim.World for that).
func (a *Arena[T]) Each(fn func(id ID, v *T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.alive {
			fn(ID{Index: int32(i), Generation: s.generation}, &a.items[i])
		}
	}
}

// Reset empties the arena back to its newly-constructed state, bumping no
// generations (used only when rebuilding a world from scratch, never
// mid-game).
func (a *Arena[T]) Reset() {
	n := len(a.items)
	a.items = make([]T, n)
	for i := range a.slots {
		a.slots[i] = slot{nextFree: int32(i + 1)}
	}
	if n > 0 {
		a.slots[n-1].nextFree = -1
		a.freeHead = 0
	} else {
		a.freeHead = -1
	}
	a.liveCount = 0
}

// Snapshot is a copyable capture of an arena's full state — items,
// liveness, generations, and the free list — sufficient to Restore the
// arena to exactly this point, per spec.md §5's "snapshotting copies
// the entire world, including all arenas" persistence model.
type Snapshot[T any] struct {
	Items      []T
	Alive      []bool
	Generation []uint32
	NextFree   []int32
	FreeHead   int32
	LiveCount  int
}

// Snapshot captures a's current state. T must not itself hold
// unexported arena state; a plain data record (as every entity kind in
// this module is) copies correctly with Go's built-in slice/struct
// copy semantics.
func (a *Arena[T]) Snapshot() Snapshot[T] {
	s := Snapshot[T]{
		Items:      make([]T, len(a.items)),
		Alive:      make([]bool, len(a.slots)),
		Generation: make([]uint32, len(a.slots)),
		NextFree:   make([]int32, len(a.slots)),
		FreeHead:   a.freeHead,
		LiveCount:  a.liveCount,
	}
	copy(s.Items, a.items)
	for i, sl := range a.slots {
		s.Alive[i] = sl.alive
		s.Generation[i] = sl.generation
		s.NextFree[i] = sl.nextFree
	}
	return s
}

// Restore replaces a's entire contents with s, which must have been
// produced by a Snapshot call against an arena of the same capacity.
func (a *Arena[T]) Restore(s Snapshot[T]) {
	a.items = make([]T, len(s.Items))
	copy(a.items, s.Items)
	a.slots = make([]slot, len(s.Alive))
	for i := range a.slots {
		a.slots[i] = slot{alive: s.Alive[i], generation: s.Generation[i], nextFree: s.NextFree[i]}
	}
	a.freeHead = s.FreeHead
	a.liveCount = s.LiveCount
}
