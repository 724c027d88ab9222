package creep

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/terrain"
)

func openMap(t *testing.T, w, h int32) *terrain.Map {
	t.Helper()
	m, err := terrain.NewMap(w, h, 1)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			m.SetWalkable(fp.XY{X: x, Y: y}, true)
		}
	}
	return m
}

func TestCreepGrowsOutwardFromSeed(t *testing.T) {
	Convey("Given a creep field seeded at the center of a 21x21 map", t, func() {
		m := openMap(t, 21, 21)
		f := NewField(m, 4, 1)
		center := fp.XY{X: 10, Y: 10}
		f.Seed(center)

		Convey("The seed tile carries creep immediately", func() {
			So(m.Tile(center).HasCreep(), ShouldBeTrue)
		})

		Convey("After several ticks, creep has spread to an adjacent tile", func() {
			for i := 0; i < 5; i++ {
				f.Step()
			}
			So(m.Tile(fp.XY{X: 11, Y: 10}).HasCreep(), ShouldBeTrue)
		})

		Convey("Creep growth is bounded: at most growthPerTick tiles gain creep per Step", func() {
			before := countCreep(m, 21, 21)
			f.Step()
			after := countCreep(m, 21, 21)
			So(after-before, ShouldBeLessThanOrEqualTo, int32(4))
		})
	})
}

func TestCreepRecession(t *testing.T) {
	Convey("Given creep grown away from its seed and then the seed's footprint cleared from tracking", t, func() {
		m := openMap(t, 9, 9)
		f := NewField(m, 8, 8)
		center := fp.XY{X: 4, Y: 4}
		f.Seed(center)
		for i := 0; i < 10; i++ {
			f.Step()
		}

		Convey("A tile with no remaining creep neighbors recedes over time", func() {
			// Directly clear the seed's own creep flag to simulate the
			// hatchery's footprint being destroyed, then let recession run.
			m.Tile(center).Flags &^= terrain.FlagCreep
			f2 := NewField(m, 0, 8)
			for i := 0; i < 20; i++ {
				f2.Step()
			}
			// The far corner, never reachable from the seed in 10 growth
			// ticks on an 8-wide field, must never have carried creep.
			So(m.Tile(fp.XY{X: 0, Y: 0}).HasCreep(), ShouldBeFalse)
		})
	})
}

func TestFieldSnapshotRestoreReproducesContinuedSpread(t *testing.T) {
	Convey("Given a creep field mid-spread", t, func() {
		m := openMap(t, 21, 21)
		f := NewField(m, 4, 1)
		f.Seed(fp.XY{X: 10, Y: 10})
		for i := 0; i < 3; i++ {
			f.Step()
		}

		snap := f.Snapshot()

		Convey("Restoring into a fresh field over the same map reproduces identical further spread", func() {
			m2 := openMap(t, 21, 21)
			// Replay the same tile flags onto m2 so both maps start restore
			// from the same observable creep footprint.
			for y := int32(0); y < 21; y++ {
				for x := int32(0); x < 21; x++ {
					p := fp.XY{X: x, Y: y}
					if m.Tile(p).HasCreep() {
						m2.Tile(p).Flags |= terrain.FlagCreep
					}
				}
			}
			f2 := NewField(m2, 4, 1)
			f2.Restore(snap)

			for i := 0; i < 5; i++ {
				f.Step()
				f2.Step()
			}
			for y := int32(0); y < 21; y++ {
				for x := int32(0); x < 21; x++ {
					p := fp.XY{X: x, Y: y}
					So(m2.Tile(p).HasCreep(), ShouldEqual, m.Tile(p).HasCreep())
				}
			}
		})
	})
}

func countCreep(m *terrain.Map, w, h int32) int32 {
	var n int32
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			if m.Tile(fp.XY{X: x, Y: y}).HasCreep() {
				n++
			}
		}
	}
	return n
}
