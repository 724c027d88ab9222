// Package rng implements the kernel's single deterministic pseudorandom
// stream: a 32-bit linear congruential generator. Every stochastic decision
// in the simulation — iscript wait jitter, damage ordering tie-breaks,
// creep growth selection, AI order defaults — draws from exactly one LCG
// instance via Roll, tagged with a SiteID for diff-ability between runs.
package rng

// SiteID tags a call site for diagnostics only; it never affects the
// sequence of draws, matching the original's "opaque integer tag."
type SiteID uint16

// Known call sites. New sites should be added here rather than passed as
// bare literals, so two runs disagreeing can be pinpointed by name.
const (
	SiteUnknown SiteID = iota
	SiteIscriptWait
	SiteIscriptRandomJump
	SiteCreepGrowthPick
	SiteDamageTieBreak
	SiteBulletScatter
	SiteVisionJitter
	SiteOrderRetarget
)

const (
	lcgMultiplier uint32 = 22695477
	lcgIncrement  uint32 = 1
)

// LCG is the deterministic generator. The zero value is a valid generator
// seeded at 0; callers should call Seed explicitly for a reproducible run.
type LCG struct {
	state uint32
	draws uint64
}

// NewLCG returns a generator seeded with the given initial state.
func NewLCG(seed uint32) *LCG {
	return &LCG{state: seed}
}

// Seed resets the generator to a known state, e.g. when restoring a
// snapshot.
func (l *LCG) Seed(seed uint32) {
	l.state = seed
	l.draws = 0
}

// State returns the raw internal state, for snapshotting.
func (l *LCG) State() uint32 { return l.state }

// Draws returns the number of values drawn since the last Seed, for
// diagnostics.
func (l *LCG) Draws() uint64 { return l.draws }

// next advances the LCG and returns the raw 15-bit draw.
func (l *LCG) next() uint32 {
	l.state = l.state*lcgMultiplier + lcgIncrement
	l.draws++
	return (l.state >> 16) & 0x7fff
}

// Roll draws the next value and maps it into [lo, hi] inclusive. site is
// recorded only for diagnostics.
func (l *LCG) Roll(site SiteID, lo, hi int32) int32 {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := uint32(hi-lo) + 1
	raw := l.next()
	return lo + int32(raw%span)
}

// Bool draws a uniformly distributed boolean.
func (l *LCG) Bool(site SiteID) bool {
	return l.Roll(site, 0, 1) == 1
}
