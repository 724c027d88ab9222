package movement

import (
	"math"

	"github.com/stonehollow/bwsim/internal/fp"
)

// unitVector maps a fp.Direction (256 headings) to an FP8 unit vector.
// The table is built once at package init from float64 trig — this is
// static data with no runtime inputs (unlike a per-tick decision), so it
// produces the same 256 entries on every run and platform; it never
// participates in the PRNG feedback loop the determinism invariant
// protects. See DESIGN.md for the alternative considered (an integer
// Bhaskara-I sine approximation) and why the precomputed-table approach
// was kept instead, matching how the original engine itself ships a
// precomputed direction-to-vector table rather than computing trig live.
var unitVectorTable [256]fp.XYFP8

func init() {
	for d := 0; d < 256; d++ {
		theta := 2 * math.Pi * float64(d) / 256
		x := math.Cos(theta)
		y := math.Sin(theta)
		unitVectorTable[d] = fp.XYFP8{
			X: fp.FromRaw(int32(math.Round(x * 256))),
			Y: fp.FromRaw(int32(math.Round(y * 256))),
		}
	}
}

// UnitVector returns the FP8 unit vector for a direction.
func UnitVector(d fp.Direction) fp.XYFP8 {
	return unitVectorTable[uint8(d)]
}
