package rng

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLCGIsDeterministic(t *testing.T) {
	Convey("Given two LCGs seeded identically", t, func() {
		a := NewLCG(12345)
		b := NewLCG(12345)

		Convey("The same sequence of Roll calls produces identical results", func() {
			for i := 0; i < 1000; i++ {
				So(a.Roll(SiteUnknown, 0, 99), ShouldEqual, b.Roll(SiteUnknown, 0, 99))
			}
			So(a.State(), ShouldEqual, b.State())
		})
	})

	Convey("Given a fresh LCG seeded at 1", t, func() {
		l := NewLCG(1)

		Convey("The raw state transition matches s = s*22695477+1", func() {
			want := uint32(1)*22695477 + 1
			l.Roll(SiteUnknown, 0, 0x7fff)
			So(l.State(), ShouldEqual, want)
		})
	})
}

func TestRollStaysInRange(t *testing.T) {
	Convey("Roll always returns a value within [lo, hi]", t, func() {
		l := NewLCG(999)
		for i := 0; i < 5000; i++ {
			v := l.Roll(SiteUnknown, -7, 13)
			So(v, ShouldBeGreaterThanOrEqualTo, -7)
			So(v, ShouldBeLessThanOrEqualTo, 13)
		}
	})

	Convey("Roll with lo==hi always returns that value", t, func() {
		l := NewLCG(42)
		for i := 0; i < 50; i++ {
			So(l.Roll(SiteUnknown, 4, 4), ShouldEqual, 4)
		}
	})
}

func TestSeedResets(t *testing.T) {
	Convey("Seed resets state and draw count", t, func() {
		l := NewLCG(1)
		l.Roll(SiteUnknown, 0, 100)
		l.Roll(SiteUnknown, 0, 100)
		So(l.Draws(), ShouldEqual, uint64(2))

		l.Seed(1)
		So(l.Draws(), ShouldEqual, uint64(0))
		So(l.State(), ShouldEqual, uint32(1))
	})
}
