package spatial

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/fp"
)

func rectAt(x, y, w, h int32) fp.Rect {
	return fp.Rect{From: fp.XY{X: x, Y: y}, To: fp.XY{X: x + w, Y: y + h}}
}

func TestFindUnitsNoExpand(t *testing.T) {
	Convey("Given three units at known positions", t, func() {
		idx := New()
		idx.Insert(1, rectAt(0, 0, 10, 10))
		idx.Insert(2, rectAt(20, 0, 10, 10))
		idx.Insert(3, rectAt(100, 100, 10, 10))

		Convey("FindUnitsNoExpand returns only intersecting keys in x-sorted order", func() {
			got := idx.FindUnitsNoExpand(rectAt(5, 0, 20, 10))
			So(got, ShouldResemble, []Key{1, 2})
		})

		Convey("A query rect touching nothing returns empty", func() {
			got := idx.FindUnitsNoExpand(rectAt(500, 500, 1, 1))
			So(got, ShouldBeEmpty)
		})
	})
}

func TestMoveRelinksEdges(t *testing.T) {
	Convey("Given a unit that moves across the map", t, func() {
		idx := New()
		idx.Insert(1, rectAt(0, 0, 10, 10))

		Convey("Move updates the indexed rect so queries reflect the new position", func() {
			idx.Move(1, rectAt(50, 50, 10, 10))

			So(idx.FindUnitsNoExpand(rectAt(0, 0, 10, 10)), ShouldBeEmpty)
			So(idx.FindUnitsNoExpand(rectAt(45, 45, 20, 20)), ShouldResemble, []Key{1})
		})
	})
}

func TestRemove(t *testing.T) {
	Convey("Remove takes a unit out of the index", t, func() {
		idx := New()
		idx.Insert(1, rectAt(0, 0, 10, 10))
		idx.Remove(1)

		So(idx.Contains(1), ShouldBeFalse)
		So(idx.Len(), ShouldEqual, 0)
		So(idx.FindUnitsNoExpand(rectAt(0, 0, 10, 10)), ShouldBeEmpty)
	})
}

func TestMonotonicInvariantHoldsAfterChurn(t *testing.T) {
	Convey("After many inserts, moves, and removes the x-edge list stays monotonic", t, func() {
		idx := New()
		for i := Key(0); i < 50; i++ {
			idx.Insert(i, rectAt(int32(i)*3, 0, 5, 5))
		}
		for i := Key(0); i < 50; i += 2 {
			idx.Move(i, rectAt(int32(i)*7+1, 10, 5, 5))
		}
		for i := Key(0); i < 50; i += 5 {
			idx.Remove(i)
		}
		So(idx.CheckMonotonic(), ShouldBeTrue)
	})
}

func TestEntriesRestoreReproducesQueriesAndMonotonicOrder(t *testing.T) {
	Convey("Given an index with several entries", t, func() {
		idx := New()
		idx.Insert(1, rectAt(0, 0, 10, 10))
		idx.Insert(2, rectAt(20, 0, 10, 10))
		idx.Insert(3, rectAt(100, 100, 10, 10))

		entries := idx.Entries()

		Convey("Restoring a fresh index from Entries reproduces identical queries", func() {
			restored := New()
			restored.Restore(entries)

			So(restored.FindUnitsNoExpand(rectAt(5, 0, 20, 10)), ShouldResemble, []Key{1, 2})
			So(restored.Len(), ShouldEqual, idx.Len())
			So(restored.CheckMonotonic(), ShouldBeTrue)
		})
	})
}

func TestFindUnitsExpandsQueryRect(t *testing.T) {
	Convey("FindUnits pads the query rect by the given max unit extent", t, func() {
		idx := New()
		idx.Insert(1, rectAt(0, 0, 4, 4))

		// A unit just outside a tight query rect is still found once the
		// rect is expanded by enough to reach it.
		got := idx.FindUnits(rectAt(10, 10, 1, 1), 20, 20)
		So(got, ShouldResemble, []Key{1})
	})
}
