// Package bullet implements the projectile lifecycle state machine —
// spec.md §4.J: init, moving, homing/bouncing, hit, and dying when its
// target dies mid-flight.
//
// Grounded on the teacher's Missile type
// (_examples/Lallassu-snejk/internal/game/military.go), which already
// carries position, velocity, a Life countdown, and a Homing flag for a
// single hardcoded projectile kind; generalized here into a pooled,
// data-driven bullet carrying a weapon reference and arbitrary target
// unit ID instead of a fixed missile-vs-player relationship.
package bullet

import (
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/movement"
	"github.com/stonehollow/bwsim/internal/pool"
)

// State is the bullet's lifecycle stage.
type State uint8

const (
	StateInit State = iota
	StateMoving
	StateHoming
	StateBouncing
	StateHit
	StateDying
)

// Bullet is one in-flight projectile.
type Bullet struct {
	State    State
	Weapon   data.WeaponTypeID
	Owner    int8
	Pos      fp.XYFP8
	Heading  fp.Direction
	Speed    fp.FP8
	Source   pool.ID
	HasTarget bool
	Target   pool.ID
	TargetPos fp.XY // last known position, used if the target dies mid-flight
	Bounces  int32
	MaxBounces int32 // snapshotted from the firing weapon; 0 for non-bouncing weapons
	HitChain []pool.ID // every unit this bullet has already struck, so a bounce never re-hits one
	TimeToLive int32
}

// Pool is the fixed-capacity bullet arena.
type Pool struct {
	Bullets *pool.Arena[Bullet]
}

// NewPool allocates a bullet arena with the given capacity.
func NewPool(capacity int32) *Pool {
	return &Pool{Bullets: pool.New[Bullet](int(capacity))}
}

// Spawn creates a bullet fired from src toward target (a unit, when
// hasTarget is true) or targetPos (a ground position otherwise), per
// spec.md's distinction between unit-homing and ground-targeted weapons.
func (p *Pool) Spawn(weapon *data.WeaponType, owner int8, source pool.ID, src fp.XYFP8, target pool.ID, targetPos fp.XY, hasTarget bool) (pool.ID, error) {
	var maxBounces int32
	if weapon.HitType == data.HitBounce {
		maxBounces = weapon.MaxBounces
	}
	b := Bullet{
		State:     StateInit,
		Weapon:    weapon.ID,
		Owner:     owner,
		Pos:       src,
		Source:    source,
		HasTarget: hasTarget,
		Target:    target,
		TargetPos: targetPos,
		Speed:     fp.FromInt(20),
		MaxBounces: maxBounces,
		TimeToLive: 150,
	}
	ptr, id, err := p.Bullets.Allocate()
	if err != nil {
		return pool.NilID, err
	}
	*ptr = b
	return id, nil
}

// TargetResolver reports the live position of a target unit, or
// alive=false if it has already died — the bullet package never touches
// the unit arena directly.
type TargetResolver func(id pool.ID) (pos fp.XY, alive bool)

// BounceResolver picks the next target for a bouncing weapon's bullet,
// given the position it just struck and every unit the bounce chain has
// already hit (so the same unit is never struck twice); ok is false once
// no further target is in range.
type BounceResolver func(impactPos fp.XY, alreadyHit []pool.ID) (target pool.ID, pos fp.XY, ok bool)

// HitEvent is emitted by Step when a bullet should deal damage this tick.
type HitEvent struct {
	ImpactPos fp.XY
	Target    pool.ID
	HasTarget bool
}

// Step advances one bullet by a tick, returning a non-nil HitEvent the
// tick it lands. Grounded on the teacher's missile-update loop in
// military.go, which already moves a projectile along its velocity each
// tick, checks its Life countdown, and flags impact — generalized here
// with the target-dies-in-flight rule spec.md adds: a homing bullet
// whose target disappears continues to its target's last known position
// and detonates there (state_dying) instead of vanishing.
func Step(b *Bullet, resolve TargetResolver, bounce BounceResolver) (*HitEvent, bool) {
	switch b.State {
	case StateInit:
		b.State = StateMoving
		if b.HasTarget {
			b.State = StateHoming
		}
		return Step(b, resolve, bounce)

	case StateMoving:
		advance(b, b.TargetPos)
		b.TimeToLive--
		if reached(b.Pos, b.TargetPos) || b.TimeToLive <= 0 {
			b.State = StateHit
			return &HitEvent{ImpactPos: b.TargetPos}, true
		}
		return nil, false

	case StateHoming:
		if resolve != nil {
			pos, alive := resolve(b.Target)
			if !alive {
				// Target died mid-flight: continue to its last known
				// position and detonate there rather than vanishing.
				b.HasTarget = false
				b.State = StateDying
				return Step(b, resolve, bounce)
			}
			b.TargetPos = pos
		}
		advance(b, b.TargetPos)
		b.TimeToLive--
		if reached(b.Pos, b.TargetPos) || b.TimeToLive <= 0 {
			return b.land(b.Target, true, bounce)
		}
		return nil, false

	case StateDying:
		advance(b, b.TargetPos)
		b.TimeToLive--
		if reached(b.Pos, b.TargetPos) || b.TimeToLive <= 0 {
			b.State = StateHit
			return &HitEvent{ImpactPos: b.TargetPos}, true
		}
		return nil, false

	case StateBouncing:
		advance(b, b.TargetPos)
		b.TimeToLive--
		if reached(b.Pos, b.TargetPos) || b.TimeToLive <= 0 {
			return b.land(b.Target, true, bounce)
		}
		return nil, false
	}
	return nil, false
}

// land is reached whenever a homing or bouncing bullet arrives at its
// current target: it always reports a hit on that target, and — for a
// bounce-capable weapon with remaining_bounces still available and
// another nearby target to chain to — re-arms for one more leg instead
// of terminating, per spec.md §3.2's remaining_bounces field and §4.J's
// bounce lifecycle.
func (b *Bullet) land(target pool.ID, hasTarget bool, bounce BounceResolver) (*HitEvent, bool) {
	ev := &HitEvent{ImpactPos: b.TargetPos, Target: target, HasTarget: hasTarget}
	b.HitChain = append(b.HitChain, target)

	if b.MaxBounces > 0 && b.Bounces < b.MaxBounces && bounce != nil {
		if next, pos, ok := bounce(b.TargetPos, b.HitChain); ok {
			b.Bounces++
			b.Target = next
			b.TargetPos = pos
			b.HasTarget = true
			b.State = StateBouncing
			return ev, true
		}
	}
	b.State = StateHit
	return ev, true
}

func advance(b *Bullet, dst fp.XY) {
	dx := dst.X - b.Pos.X.Int()
	dy := dst.Y - b.Pos.Y.Int()
	b.Heading = fp.Facing(dx, dy)
	uv := movement.UnitVector(b.Heading)
	b.Pos.X = b.Pos.X.Add(uv.X.Mul(b.Speed))
	b.Pos.Y = b.Pos.Y.Add(uv.Y.Mul(b.Speed))
}

func reached(pos fp.XYFP8, dst fp.XY) bool {
	dx := pos.X.Int() - dst.X
	dy := pos.Y.Int() - dst.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx <= 4 && dy <= 4
}
