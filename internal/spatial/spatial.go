// Package spatial implements the "unit finder": a sorted-edge spatial
// index over live units' axis-aligned bounding boxes, queried by every
// combat and pathing component.
//
// Structural note (see DESIGN.md): the teacher's QuadNode
// (_examples/Lallassu-snejk/internal/game/spatial.go) is a quadtree used
// for frustum culling, whose bucket order is not sorted. spec.md's
// invariant #2 requires "the x-sorted edge list is monotonic" after every
// step — a quadtree's unordered leaf buckets cannot satisfy that, so this
// package instead keeps the teacher's "value-rectangle + single-file
// spatial type" shape but replaces the tree with two sorted edge lists,
// one per axis. Each list is a sorted slice (see axis), not a linked
// list.
package spatial

import (
	"github.com/stonehollow/bwsim/internal/fp"
)

// Side distinguishes a bounding box's low edge from its high edge.
type Side uint8

const (
	SideFrom Side = iota
	SideTo
)

// Key identifies the entity a spatial entry refers to; the index package's
// pool.ID works, but spatial stays decoupled from pool so it can index any
// caller-chosen key type.
type Key int32

type edge struct {
	coord int32
	key   Key
	side  Side
}

// axis holds one axis's sorted edge list as a plain slice kept sorted by
// coord (ties broken by ascending Key, matching spec.md §5's "stable
// tie-break on unit index"). A slice is used rather than a linked list:
// Go's slice insert/delete is O(n) exactly like unlinking/relinking nodes
// in the original's doubly-linked list, and it avoids a second allocation
// per entry.
type axis struct {
	edges []edge
}

func (a *axis) insert(e edge) {
	i := a.searchInsertPos(e)
	a.edges = append(a.edges, edge{})
	copy(a.edges[i+1:], a.edges[i:])
	a.edges[i] = e
}

func (a *axis) searchInsertPos(e edge) int {
	lo, hi := 0, len(a.edges)
	for lo < hi {
		mid := (lo + hi) / 2
		if less(a.edges[mid], e) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func less(x, y edge) bool {
	if x.coord != y.coord {
		return x.coord < y.coord
	}
	return x.key < y.key
}

func (a *axis) remove(key Key, side Side, coord int32) {
	for i, e := range a.edges {
		if e.key == key && e.side == side && e.coord == coord {
			a.edges = append(a.edges[:i], a.edges[i+1:]...)
			return
		}
	}
}

// entry records a key's last-known rect, so Move/Remove know the
// coordinates of its edges; removing an edge still scans the axis slice
// linearly.
type entry struct {
	rect fp.Rect
}

// Index is the unit finder: two sorted edge lists (x and y) plus a map
// from Key to its last-known rect.
type Index struct {
	x, y    axis
	entries map[Key]entry
}

// New returns an empty spatial index.
func New() *Index {
	return &Index{entries: make(map[Key]entry)}
}

// Insert adds key with bounding box rect. It must not already be present.
func (idx *Index) Insert(key Key, rect fp.Rect) {
	idx.x.insert(edge{coord: rect.From.X, key: key, side: SideFrom})
	idx.x.insert(edge{coord: rect.To.X, key: key, side: SideTo})
	idx.y.insert(edge{coord: rect.From.Y, key: key, side: SideFrom})
	idx.y.insert(edge{coord: rect.To.Y, key: key, side: SideTo})
	idx.entries[key] = entry{rect: rect}
}

// Remove deletes key from the index. No-op if key is absent.
func (idx *Index) Remove(key Key) {
	e, ok := idx.entries[key]
	if !ok {
		return
	}
	idx.x.remove(key, SideFrom, e.rect.From.X)
	idx.x.remove(key, SideTo, e.rect.To.X)
	idx.y.remove(key, SideFrom, e.rect.From.Y)
	idx.y.remove(key, SideTo, e.rect.To.Y)
	delete(idx.entries, key)
}

// Move updates key's bounding box by removing all four of its edges and
// inserting them again (a linear-scan remove and a binary-search insert
// per edge). Edges are not re-linked in place, so a move costs O(n) per
// axis however small the shift.
func (idx *Index) Move(key Key, newRect fp.Rect) {
	old, ok := idx.entries[key]
	if !ok {
		idx.Insert(key, newRect)
		return
	}
	if old.rect == newRect {
		return
	}
	idx.Remove(key)
	idx.Insert(key, newRect)
}

// Contains reports whether key is currently indexed.
func (idx *Index) Contains(key Key) bool {
	_, ok := idx.entries[key]
	return ok
}

// Len returns the number of indexed keys.
func (idx *Index) Len() int { return len(idx.entries) }

// FindUnits yields, in deterministic x-sorted order (ties broken by Key),
// every key whose bounding box intersects rect expanded by the configured
// max-unit-extent padding.
func (idx *Index) FindUnits(rect fp.Rect, maxUnitW, maxUnitH int32) []Key {
	return idx.query(rect.Expanded(maxUnitW, maxUnitH))
}

// FindUnitsNoExpand is the variant that does not pad rect — used when the
// caller has already accounted for unit extent.
func (idx *Index) FindUnitsNoExpand(rect fp.Rect) []Key {
	return idx.query(rect)
}

func (idx *Index) query(rect fp.Rect) []Key {
	var out []Key
	seen := make(map[Key]bool)
	// Scan the x-axis edge list for the candidate window, verify against
	// the stored rect on y (and re-verify x, since the expanded rect may
	// not align with raw edge coords). Walking the x list keeps the
	// output in the spec-mandated x-sorted order for free.
	for _, e := range idx.x.edges {
		if e.side != SideFrom {
			continue
		}
		if seen[e.key] {
			continue
		}
		ent, ok := idx.entries[e.key]
		if !ok {
			continue
		}
		if ent.rect.Intersects(rect) {
			seen[e.key] = true
			out = append(out, e.key)
		}
	}
	return out
}

// Entries returns a copy of every indexed key's current rect, in
// unspecified order, for snapshotting (internal/sim.World.Snapshot). The
// edge lists themselves are not copied since Restore rebuilds them by
// re-inserting each entry, which reproduces the same sorted order the
// original index had.
func (idx *Index) Entries() map[Key]fp.Rect {
	out := make(map[Key]fp.Rect, len(idx.entries))
	for k, e := range idx.entries {
		out[k] = e.rect
	}
	return out
}

// Restore replaces idx's entire contents by re-inserting every (key,
// rect) pair from a map previously produced by Entries, in ascending-key
// order so Restore is itself deterministic.
func (idx *Index) Restore(entries map[Key]fp.Rect) {
	idx.x = axis{}
	idx.y = axis{}
	idx.entries = make(map[Key]entry, len(entries))
	keys := make([]Key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	for _, k := range keys {
		idx.Insert(k, entries[k])
	}
}

// CheckMonotonic verifies spec.md invariant #2: for every pair of
// consecutive entries on the x-sorted list, coord[i] <= coord[i+1]. Used by
// tests and by the embedder's optional post-step invariant checks.
func (idx *Index) CheckMonotonic() bool {
	for i := 1; i < len(idx.x.edges); i++ {
		if idx.x.edges[i-1].coord > idx.x.edges[i].coord {
			return false
		}
	}
	return true
}
