package telemetry

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFrameObservesHistogram(t *testing.T) {
	Convey("Given a fresh set of collectors", t, func() {
		c := New("bwsim_test")

		Convey("RecordFrame increments the histogram's sample count", func() {
			c.RecordFrame(2 * time.Millisecond)
			c.RecordFrame(4 * time.Millisecond)
			count := testutil.CollectAndCount(c.FrameDuration)
			So(count, ShouldEqual, 1) // one metric family, two observations inside it
		})
	})
}

func TestSetLiveCountsUpdatesGauges(t *testing.T) {
	Convey("Given a fresh set of collectors", t, func() {
		c := New("bwsim_test")

		Convey("SetLiveCounts reflects in each gauge's value", func() {
			c.SetLiveCounts(12, 30, 4)
			So(testutil.ToFloat64(c.LiveUnits), ShouldEqual, float64(12))
			So(testutil.ToFloat64(c.LiveSprites), ShouldEqual, float64(30))
			So(testutil.ToFloat64(c.LiveBullets), ShouldEqual, float64(4))
		})
	})
}

func TestRecordActionIncrementsPerPlayerCounter(t *testing.T) {
	Convey("Given a fresh set of collectors", t, func() {
		c := New("bwsim_test")

		Convey("RecordAction increments only the named player's label", func() {
			c.RecordAction(0)
			c.RecordAction(0)
			c.RecordAction(1)
			So(testutil.ToFloat64(c.APM.WithLabelValues("0")), ShouldEqual, float64(2))
			So(testutil.ToFloat64(c.APM.WithLabelValues("1")), ShouldEqual, float64(1))
		})
	})
}

func TestNewRegistersDistinctRegistriesWithoutPanicking(t *testing.T) {
	Convey("Given two independently constructed Collectors", t, func() {
		Convey("Neither construction panics from duplicate registration", func() {
			So(func() { New("bwsim_a"); New("bwsim_b") }, ShouldNotPanic)
		})
	})
}
