package vision

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/terrain"
)

func flatMap(t *testing.T, w, h int32) *terrain.Map {
	t.Helper()
	m, err := terrain.NewMap(w, h, 4)
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

func TestRevealMarksDiscVisibleAndExplored(t *testing.T) {
	Convey("Given a flat 21x21 map and a unit with sight 3 at the center", t, func() {
		m := flatMap(t, 21, 21)
		r := &Revealer{Map: m}
		center := fp.XY{X: 10, Y: 10}

		Convey("Reveal marks the center tile and nearby tiles visible and explored for its owner", func() {
			r.Reveal(0, center, 3)
			So(m.Tile(center).VisibleTo(0), ShouldBeTrue)
			So(m.Tile(center).ExploredBy(0), ShouldBeTrue)
			So(m.Tile(fp.XY{X: 18, Y: 10}).VisibleTo(0), ShouldBeFalse)
		})

		Convey("ClearVisible after Reveal removes Visible but keeps Explored", func() {
			r.Reveal(0, center, 3)
			ClearVisible(m)
			So(m.Tile(center).VisibleTo(0), ShouldBeFalse)
			So(m.Tile(center).ExploredBy(0), ShouldBeTrue)
		})
	})
}

func TestRevealFansOutToSharedVisionPartners(t *testing.T) {
	Convey("Given player 0 shares vision with player 1", t, func() {
		m := flatMap(t, 11, 11)
		r := &Revealer{Map: m, SharedVision: [][]int{{1}, nil}}

		Convey("Revealing as player 0 also marks the tile visible for player 1", func() {
			r.Reveal(0, fp.XY{X: 5, Y: 5}, 2)
			So(m.Tile(fp.XY{X: 5, Y: 5}).VisibleTo(1), ShouldBeTrue)
		})
	})
}

func TestRevealClipsAtMapEdge(t *testing.T) {
	Convey("Given a unit near the map corner with a large sight radius", t, func() {
		m := flatMap(t, 10, 10)
		r := &Revealer{Map: m}

		Convey("Reveal does not panic and only marks in-bounds tiles", func() {
			r.Reveal(0, fp.XY{X: 0, Y: 0}, 11)
			So(m.Tile(fp.XY{X: 0, Y: 0}).VisibleTo(0), ShouldBeTrue)
		})
	})
}
