package fp

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFP8Arithmetic(t *testing.T) {
	Convey("Given two FP8 values", t, func() {
		a := FromInt(3)
		b := FromRaw(384) // 1.5 in 8.8 fixed point

		Convey("Mul rounds toward negative infinity", func() {
			So(a.Mul(b).Int(), ShouldEqual, 4)

			neg := FromInt(-3)
			So(neg.Mul(b).Raw(), ShouldEqual, FP8((int64(neg)*int64(b))>>8))
		})

		Convey("Div truncates toward zero", func() {
			ten := FromInt(10)
			three := FromInt(3)
			So(ten.Div(three).Int(), ShouldEqual, 3)

			negTen := FromInt(-10)
			So(negTen.Div(three).Raw(), ShouldEqual, int32(-853)) // -3.33 truncated, not floored (-854)
		})

		Convey("Add/Sub are plain wrapping arithmetic", func() {
			So(a.Add(b).Raw(), ShouldEqual, a.Raw()+b.Raw())
			So(a.Sub(b).Raw(), ShouldEqual, a.Raw()-b.Raw())
		})
	})
}

func TestMultiplyDivide(t *testing.T) {
	Convey("MultiplyDivide computes a*b/c in extended width", t, func() {
		So(MultiplyDivide(1000, 50, 100), ShouldEqual, 500)
		So(MultiplyDivide(1<<30, 4, 4), ShouldEqual, 1<<30)
	})
}

func TestIsqrt(t *testing.T) {
	Convey("Isqrt agrees with floor(sqrt(n)) for known values", t, func() {
		cases := map[uint32]uint32{
			0:          0,
			1:          1,
			3:          1,
			4:          2,
			15:         3,
			16:         4,
			1000000:    1000,
			4294836225: 65535, // 65535^2
		}
		for n, want := range cases {
			So(Isqrt(n), ShouldEqual, want)
		}
	})

	Convey("Isqrt squared never overshoots n", t, func() {
		for n := uint32(0); n < 5000; n++ {
			r := Isqrt(n)
			So(r*r, ShouldBeLessThanOrEqualTo, n)
			So((r+1)*(r+1), ShouldBeGreaterThan, n)
		}
	})
}

func TestXYLength(t *testing.T) {
	Convey("XY.Length is isqrt(x^2+y^2)", t, func() {
		So(XY{X: 3, Y: 4}.Length(), ShouldEqual, 5)
		So(XY{X: 0, Y: 0}.Length(), ShouldEqual, 0)
		So(XY{X: -3, Y: -4}.Length(), ShouldEqual, 5)
	})
}

func TestDirectionWrap(t *testing.T) {
	Convey("Direction arithmetic wraps modularly", t, func() {
		var d Direction = 120
		So(d.Add(20), ShouldEqual, Direction(-116))
		So(d.Sub(-20), ShouldEqual, Direction(-116))
	})
}

func TestRect(t *testing.T) {
	Convey("Rect is inclusive-from, exclusive-to", t, func() {
		r := Rect{From: XY{0, 0}, To: XY{10, 10}}
		So(r.Contains(XY{0, 0}), ShouldBeTrue)
		So(r.Contains(XY{9, 9}), ShouldBeTrue)
		So(r.Contains(XY{10, 10}), ShouldBeFalse)
	})

	Convey("Intersects detects overlap and rejects touching edges", t, func() {
		a := Rect{From: XY{0, 0}, To: XY{10, 10}}
		b := Rect{From: XY{10, 0}, To: XY{20, 10}}
		So(a.Intersects(b), ShouldBeFalse)

		c := Rect{From: XY{9, 0}, To: XY{20, 10}}
		So(a.Intersects(c), ShouldBeTrue)
	})

	Convey("Expanded grows symmetrically", t, func() {
		r := Rect{From: XY{5, 5}, To: XY{10, 10}}
		e := r.Expanded(2, 3)
		So(e, ShouldResemble, Rect{From: XY{3, 2}, To: XY{12, 13}})
	})
}
