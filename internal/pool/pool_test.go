package pool

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type widget struct {
	HP int
}

func TestArenaAllocateRelease(t *testing.T) {
	Convey("Given an arena with capacity 2", t, func() {
		a := New[widget](2)

		Convey("Allocate hands out zero-valued elements until capacity is exhausted", func() {
			w1, id1, err := a.Allocate()
			So(err, ShouldBeNil)
			So(w1.HP, ShouldEqual, 0)

			_, id2, err := a.Allocate()
			So(err, ShouldBeNil)
			So(id2.Index, ShouldNotEqual, id1.Index)

			_, _, err = a.Allocate()
			So(err, ShouldNotBeNil)
			So(a.Len(), ShouldEqual, 2)
		})

		Convey("Release returns a slot to the free list and bumps its generation", func() {
			_, id1, _ := a.Allocate()
			a.Release(id1)
			So(a.Len(), ShouldEqual, 0)

			_, stillThere := a.Get(id1)
			So(stillThere, ShouldBeFalse)

			w2, id2, err := a.Allocate()
			So(err, ShouldBeNil)
			So(id2.Index, ShouldEqual, id1.Index)
			So(id2.Generation, ShouldEqual, id1.Generation+1)
			w2.HP = 7

			got, ok := a.Get(id2)
			So(ok, ShouldBeTrue)
			So(got.HP, ShouldEqual, 7)
		})

		Convey("A stale ID referencing a freed-then-reallocated slot fails Get", func() {
			_, id1, _ := a.Allocate()
			a.Release(id1)
			a.Allocate() // reoccupies id1.Index with a bumped generation

			_, ok := a.Get(id1)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestArenaEachVisitsOnlyLive(t *testing.T) {
	Convey("Each visits exactly the live elements", t, func() {
		a := New[widget](4)
		_, id1, _ := a.Allocate()
		w2, id2, _ := a.Allocate()
		_, id3, _ := a.Allocate()
		a.Release(id2)

		seen := map[int32]bool{}
		a.Each(func(id ID, v *widget) {
			seen[id.Index] = true
		})

		So(seen, ShouldContainKey, id1.Index)
		So(seen, ShouldContainKey, id3.Index)
		So(seen, ShouldNotContainKey, id2.Index)
		_ = w2
	})
}

func TestArenaSnapshotRestoreReproducesExactState(t *testing.T) {
	Convey("Given an arena with a freed-then-reallocated slot", t, func() {
		a := New[widget](3)
		_, id1, _ := a.Allocate()
		w2, id2, _ := a.Allocate()
		w2.HP = 5
		a.Release(id1)
		a.Allocate() // reoccupies id1.Index with a bumped generation

		snap := a.Snapshot()

		Convey("Mutating the live arena after Snapshot does not affect the snapshot", func() {
			w2live, _ := a.Get(id2)
			w2live.HP = 999

			restored := New[widget](3)
			restored.Restore(snap)
			got, ok := restored.Get(id2)
			So(ok, ShouldBeTrue)
			So(got.HP, ShouldEqual, 5)
			So(restored.Len(), ShouldEqual, a.Len())
		})

		Convey("Restore reproduces identical liveness and generation for every slot", func() {
			restored := New[widget](3)
			restored.Restore(snap)
			for i := int32(0); i < 3; i++ {
				So(restored.IsAlive(i), ShouldEqual, a.IsAlive(i))
				So(restored.Generation(i), ShouldEqual, a.Generation(i))
			}
		})
	})
}
