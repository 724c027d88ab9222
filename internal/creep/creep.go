// Package creep implements zerg creep spread and recession: a hash
// table keyed by tile position, nine priority lists indexed by
// neighbor-creep-count, and a free list, spreading/receding at a
// bounded rate per frame — spec.md §3.4, §4.L.
//
// Grounded on the teacher's weather.go seasonal-spread simulation
// (_examples/Lallassu-snejk/internal/game/weather.go), which already
// grows/recedes a tile attribute outward from seed points at a bounded
// per-frame rate; generalized here from a global weather value into the
// neighbor-count-prioritized creep structure spec.md §3.4 names
// explicitly.
package creep

import (
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/terrain"
)

// neighborBuckets is the fixed "nine priority lists" spec.md names:
// index i holds every pending tile with exactly i creep-bearing
// neighbors (0..8).
const neighborBuckets = 9

// entry is one hash-table record: a tile position plus whether it
// currently carries creep. inUse distinguishes a live slot from one on
// the free list, since a freed slot's pos is indistinguishable from
// (0,0) otherwise.
type entry struct {
	pos      fp.XY
	hasCreep bool
	inUse    bool
	bucket   int // current neighborBuckets index, -1 if not queued
}

// Field is the creep simulation state for one map.
type Field struct {
	Map *terrain.Map

	index   map[fp.XY]int // pos -> slot in entries
	entries []entry
	free    []int

	pending [neighborBuckets][]int // slot indices pending growth, by neighbor count
	seeds   []fp.XY

	growthPerTick    int32
	recessionPerTick int32
}

// NewField creates an empty creep field over m. growthPerTick and
// recessionPerTick bound how many tiles may gain/lose creep in a single
// Step call, matching spec.md's "bounded rate per frame."
func NewField(m *terrain.Map, growthPerTick, recessionPerTick int32) *Field {
	return &Field{
		Map:              m,
		index:            make(map[fp.XY]int),
		growthPerTick:    growthPerTick,
		recessionPerTick: recessionPerTick,
	}
}

func (f *Field) slotFor(pos fp.XY) int {
	if i, ok := f.index[pos]; ok {
		return i
	}
	var i int
	if n := len(f.free); n > 0 {
		i = f.free[n-1]
		f.free = f.free[:n-1]
		f.entries[i] = entry{pos: pos, bucket: -1, inUse: true}
	} else {
		i = len(f.entries)
		f.entries = append(f.entries, entry{pos: pos, bucket: -1, inUse: true})
	}
	f.index[pos] = i
	return i
}

// Seed marks pos as a permanent creep source (a hatchery footprint) and
// enqueues its neighbors for growth consideration.
func (f *Field) Seed(pos fp.XY) {
	i := f.slotFor(pos)
	f.entries[i].hasCreep = true
	f.seeds = append(f.seeds, pos)
	f.setTileCreep(pos, true)
	f.requeue(i)
	f.enqueueNeighbors(pos)
}

func neighborOffsets() [4]fp.XY {
	return [4]fp.XY{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
}

func (f *Field) enqueueNeighbors(pos fp.XY) {
	for _, d := range neighborOffsets() {
		n := fp.XY{X: pos.X + d.X, Y: pos.Y + d.Y}
		if !f.Map.InBounds(n) {
			continue
		}
		i := f.slotFor(n)
		f.requeue(i)
	}
}

func (f *Field) neighborCreepCount(pos fp.XY) int {
	count := 0
	for _, d := range neighborOffsets() {
		n := fp.XY{X: pos.X + d.X, Y: pos.Y + d.Y}
		if !f.Map.InBounds(n) {
			continue
		}
		if i, ok := f.index[n]; ok {
			if f.entries[i].hasCreep {
				count++
			}
			continue
		}
		if f.Map.Tile(n).HasCreep() {
			count++
		}
	}
	return count
}

// requeue recomputes pos's neighbor-creep-count bucket and moves its
// slot into the matching pending list. Tiles that already carry creep
// are never queued for growth.
func (f *Field) requeue(i int) {
	e := &f.entries[i]
	if e.bucket >= 0 {
		f.removeFromBucket(e.bucket, i)
		e.bucket = -1
	}
	if e.hasCreep {
		return
	}
	n := f.neighborCreepCount(e.pos)
	if n > neighborBuckets-1 {
		n = neighborBuckets - 1
	}
	e.bucket = n
	f.pending[n] = append(f.pending[n], i)
}

func (f *Field) removeFromBucket(b, i int) {
	list := f.pending[b]
	for k, v := range list {
		if v == i {
			f.pending[b] = append(list[:k], list[k+1:]...)
			return
		}
	}
}

// Step grows creep onto up to growthPerTick tiles this frame, always
// preferring the highest-neighbor-count bucket first (creep spreads
// fastest where it is most surrounded, matching the original's
// priority-list growth order), then recedes up to recessionPerTick
// creep tiles no longer adjacent to any source. Both passes iterate the
// entries slice in allocation order, never a Go map, so the result is a
// deterministic function of insertion history alone.
func (f *Field) Step() {
	grown := int32(0)
	for b := neighborBuckets - 1; b >= 1 && grown < f.growthPerTick; b-- {
		for len(f.pending[b]) > 0 && grown < f.growthPerTick {
			i := f.pending[b][0]
			f.pending[b] = f.pending[b][1:]
			e := &f.entries[i]
			e.bucket = -1
			if e.hasCreep {
				continue
			}
			e.hasCreep = true
			f.setTileCreep(e.pos, true)
			f.enqueueNeighbors(e.pos)
			grown++
		}
	}

	receded := int32(0)
	for i := range f.entries {
		if receded >= f.recessionPerTick {
			break
		}
		e := &f.entries[i]
		if !e.inUse || !e.hasCreep || f.isSeed(e.pos) {
			continue
		}
		if f.neighborCreepCount(e.pos) == 0 {
			e.hasCreep = false
			f.setTileCreep(e.pos, false)
			f.requeue(i)
			receded++
		}
	}
}

// isSeed reports whether pos is a permanent creep source that recession
// must never clear.
func (f *Field) isSeed(pos fp.XY) bool {
	for _, s := range f.seeds {
		if s == pos {
			return true
		}
	}
	return false
}

// Snapshot is a copyable capture of a Field's full state, sufficient to
// Restore it to exactly this point (internal/sim.World.Snapshot). The
// Map a Field was built over is snapshotted separately by the owning
// World (terrain.Map.Tiles), since a Field only toggles FlagCreep on
// tiles it already has a reference to.
type Snapshot struct {
	Entries          []entry
	Free             []int32
	Pending          [neighborBuckets][]int32
	Seeds            []fp.XY
	GrowthPerTick    int32
	RecessionPerTick int32
}

// Snapshot captures f's current state.
func (f *Field) Snapshot() Snapshot {
	s := Snapshot{
		Entries:          make([]entry, len(f.entries)),
		Free:             make([]int32, len(f.free)),
		Seeds:            make([]fp.XY, len(f.seeds)),
		GrowthPerTick:    f.growthPerTick,
		RecessionPerTick: f.recessionPerTick,
	}
	copy(s.Entries, f.entries)
	for i, v := range f.free {
		s.Free[i] = int32(v)
	}
	copy(s.Seeds, f.seeds)
	for b := range f.pending {
		s.Pending[b] = make([]int32, len(f.pending[b]))
		for i, v := range f.pending[b] {
			s.Pending[b][i] = int32(v)
		}
	}
	return s
}

// Restore replaces f's entire contents with s, which must have been
// produced by a Snapshot call against a Field over the same Map.
func (f *Field) Restore(s Snapshot) {
	f.entries = make([]entry, len(s.Entries))
	copy(f.entries, s.Entries)
	f.free = make([]int, len(s.Free))
	for i, v := range s.Free {
		f.free[i] = int(v)
	}
	f.seeds = make([]fp.XY, len(s.Seeds))
	copy(f.seeds, s.Seeds)
	for b := range f.pending {
		f.pending[b] = make([]int, len(s.Pending[b]))
		for i, v := range s.Pending[b] {
			f.pending[b][i] = int(v)
		}
	}
	f.growthPerTick = s.GrowthPerTick
	f.recessionPerTick = s.RecessionPerTick

	f.index = make(map[fp.XY]int, len(f.entries))
	for i, e := range f.entries {
		if e.inUse {
			f.index[e.pos] = i
		}
	}
}

func (f *Field) setTileCreep(pos fp.XY, on bool) {
	if !f.Map.InBounds(pos) {
		return
	}
	t := f.Map.Tile(pos)
	if on {
		t.Flags |= terrain.FlagCreep
	} else {
		t.Flags &^= terrain.FlagCreep
	}
}
