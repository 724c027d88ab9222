package economy

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/data"
)

func TestEnqueueTrainDeductsAndCompletes(t *testing.T) {
	Convey("Given a player with enough resources to train a Marine", t, func() {
		tables := data.Default()
		marine := tables.Unit(data.UnitMarine)
		p := NewPlayer(500, 0, 20)

		Convey("EnqueueTrain deducts cost and reserves supply", func() {
			err := p.EnqueueTrain(marine)
			So(err, ShouldBeNil)
			So(p.Minerals, ShouldEqual, 500-marine.MineralCost)
			So(p.SupplyUsed, ShouldEqual, marine.SupplyRequired)
		})

		Convey("Ticking down BuildTime frames yields exactly one completion", func() {
			p.EnqueueTrain(marine)
			var done []Completion
			for i := int32(0); i < marine.BuildTime; i++ {
				done = p.Tick()
			}
			So(len(done), ShouldEqual, 1)
			So(done[0].UnitType, ShouldEqual, data.UnitMarine)
			So(len(p.Queue), ShouldEqual, 0)
		})
	})
}

func TestEnqueueTrainRejectsWhenUnaffordable(t *testing.T) {
	Convey("Given a player with no minerals", t, func() {
		tables := data.Default()
		marine := tables.Unit(data.UnitMarine)
		p := NewPlayer(0, 0, 20)

		Convey("EnqueueTrain fails and leaves resources untouched", func() {
			err := p.EnqueueTrain(marine)
			So(err, ShouldNotBeNil)
			So(p.Minerals, ShouldEqual, 0)
			So(len(p.Queue), ShouldEqual, 0)
		})
	})
}

func TestReleaseSupplyNeverGoesNegative(t *testing.T) {
	Convey("Given a player with zero supply used", t, func() {
		p := NewPlayer(0, 0, 10)

		Convey("ReleaseSupply clamps at zero", func() {
			p.ReleaseSupply(4)
			So(p.SupplyUsed, ShouldEqual, 0)
		})
	})
}
