package terrain

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/fp"
)

func allWalkableMap(t *testing.T, w, h int32) *Map {
	t.Helper()
	m, err := NewMap(w, h, 2)
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

func TestBuildRegionsSingleComponent(t *testing.T) {
	Convey("Given a fully walkable map", t, func() {
		m := allWalkableMap(t, 8, 8)

		Convey("BuildRegions yields exactly one region covering every tile", func() {
			m.BuildRegions()
			regions := m.Regions()
			So(len(regions), ShouldEqual, 1)
			So(regions[0].TileCount, ShouldEqual, int32(64))
			So(regions[0].Neighbors, ShouldBeEmpty)
		})
	})
}

func TestBuildRegionsSplitByWall(t *testing.T) {
	Convey("Given a map split in half by an unwalkable column", t, func() {
		m := allWalkableMap(t, 5, 5)
		for y := int32(0); y < 5; y++ {
			m.SetWalkable(fp.XY{X: 2, Y: y}, false)
		}

		Convey("BuildRegions produces two disconnected regions", func() {
			m.BuildRegions()
			regions := m.Regions()
			So(len(regions), ShouldEqual, 2)
			So(regions[0].TileCount, ShouldEqual, int32(10))
			So(regions[1].TileCount, ShouldEqual, int32(10))
			So(regions[0].Neighbors, ShouldBeEmpty)
		})

		Convey("Tiles on either side resolve to different region IDs", func() {
			m.BuildRegions()
			left := m.RegionOf(fp.XY{X: 0, Y: 0})
			right := m.RegionOf(fp.XY{X: 4, Y: 0})
			So(left, ShouldNotEqual, right)
			So(left, ShouldNotEqual, int32(-1))
		})
	})
}

func TestRegionsLinkAdjacentComponents(t *testing.T) {
	Convey("Given two halves of a map connected by a single-tile corridor", t, func() {
		m := allWalkableMap(t, 5, 3)
		// Block everything in the middle column except one tile, splitting
		// into two 6-tile blobs joined by a 1-tile corridor.
		m.SetWalkable(fp.XY{X: 2, Y: 0}, false)
		m.SetWalkable(fp.XY{X: 2, Y: 2}, false)

		Convey("BuildRegions keeps the corridor-joined halves in one region", func() {
			m.BuildRegions()
			regions := m.Regions()
			So(len(regions), ShouldEqual, 1) // the corridor keeps it one component
			_ = regions
		})
	})
}

func TestPixelTileConversion(t *testing.T) {
	Convey("PixelToTile and PixelRect are inverse on tile boundaries", t, func() {
		p := fp.XY{X: 3, Y: 5}
		rect := PixelRect(p)
		So(PixelToTile(rect.From), ShouldResemble, p)
		So(PixelToTile(fp.XY{X: rect.To.X - 1, Y: rect.To.Y - 1}), ShouldResemble, p)
	})
}
