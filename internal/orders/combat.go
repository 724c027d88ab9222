package orders

import (
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
)

// inRange reports whether target lies between weapon's MinRange and
// MaxRange (inclusive) of self; the unit approaches until it does, then
// stops and fires.
func inRange(self, target fp.XY, weapon *data.WeaponType) bool {
	d := fp.XYLength(fp.XY{X: target.X - self.X, Y: target.Y - self.Y})
	return d >= weapon.MinRange && d <= weapon.MaxRange
}

// weaponFor picks the ground or air weapon depending on the target's
// InAir flag, per spec.md's "a unit with both a ground and air weapon
// selects by the target's flight status."
func weaponFor(actor *Actor, tables *data.Tables, targetInAir bool) (*data.WeaponType, bool) {
	var wid data.WeaponTypeID
	if targetInAir {
		wid = actor.UnitType.AirWeapon
	} else {
		wid = actor.UnitType.GroundWeapon
	}
	if wid == data.WeaponNone {
		return nil, false
	}
	w := tables.Weapon(wid)
	if w == nil {
		return nil, false
	}
	return w, true
}

func cooldownFor(actor *Actor, targetInAir bool) int32 {
	if targetInAir {
		return actor.AirCooldown
	}
	return actor.GroundCooldown
}

func setCooldown(actor *Actor, targetInAir bool, v int32) {
	if targetInAir {
		actor.AirCooldown = v
	} else {
		actor.GroundCooldown = v
	}
}

// firingCooldown computes the post-shot cooldown per spec.md §4.I.5:
// the weapon's base cooldown, reduced 10% per level of the actor's
// matching weapon-upgrade (ground vs air), then halved under stim. The
// result is floored at 1, so even a stimmed, fully-upgraded unit fires
// at most once per frame.
func firingCooldown(actor *Actor, weapon *data.WeaponType, targetInAir bool) int32 {
	level := actor.GroundWeaponUpgradeLevel
	if targetInAir {
		level = actor.AirWeaponUpgradeLevel
	}
	cd := weapon.Cooldown
	if level > 0 {
		cd = cd * (100 - 10*level) / 100
	}
	if actor.Stimmed {
		cd /= 2
	}
	if cd < 1 {
		cd = 1
	}
	return cd
}

// stepAttack drives AttackMove/AttackUnit/Attack1: approach until in
// weapon range, face the target, wait out any remaining cooldown, then
// fire. Grounded on the teacher's military.go update loop, which already
// implements "close distance, then fire on cooldown" for its hardcoded
// police-car-vs-player encounter.
func stepAttack(q *Queue, actor *Actor, tables *data.Tables, lookup TargetLookup) (Decision, error) {
	var dec Decision

	if !q.Current.HasTarget || lookup == nil {
		// AttackMove with no acquired target yet: just move toward the
		// order's position, target acquisition happens at the sim layer
		// (it owns the spatial index).
		dec.HasMoveGoal = true
		dec.MoveGoal = q.Current.TargetPos
		return dec, nil
	}

	targetPos, _, targetInAir, alive := lookup(q.Current.TargetU)
	if !alive {
		q.Terminate(actor.UnitType.ReturnToIdle)
		dec.ClearMoveGoal = true
		return dec, nil
	}

	weapon, ok := weaponFor(actor, tables, targetInAir)
	if !ok {
		q.Terminate(actor.UnitType.ReturnToIdle)
		return dec, nil
	}

	if !inRange(actor.Pos, targetPos, weapon) {
		q.State = StateApproaching
		dec.HasMoveGoal = true
		dec.MoveGoal = targetPos
		return dec, nil
	}

	dec.ClearMoveGoal = true
	desired := fp.Facing(targetPos.X-actor.Pos.X, targetPos.Y-actor.Pos.Y)
	dec.HasHeading = true
	dec.DesiredHeading = desired

	if actor.Heading != desired {
		q.State = StateFacing
		return dec, nil
	}

	cooldown := cooldownFor(actor, targetInAir)
	if cooldown > 0 {
		q.State = StateCoolingDown
		return dec, nil
	}

	q.State = StateFiring
	setCooldown(actor, targetInAir, firingCooldown(actor, weapon, targetInAir))
	dec.Fire = &FireResult{Weapon: weapon.ID, Target: q.Current.TargetU, TargetPos: targetPos}
	return dec, nil
}

// proximityActionRange is the contact distance spec.md §4.N's
// PickupTransport/HealMove/CastInfestation orders close to before
// signaling the caller to apply their type-specific effect (load cargo,
// heal, infest) — a fixed 32px, since none of these three orders fire a
// weapon of their own to derive a range from.
const proximityActionRange = 32

// stepProximityOrder drives PickupTransport/HealMove/CastInfestation:
// approach the order's target, then signal ActionReady every tick the
// actor remains within proximityActionRange. The caller (sim) owns
// cargo/hp/ownership state, so it decides when the order is actually
// complete and terminates the queue; this function only ever reports
// proximity.
func stepProximityOrder(q *Queue, actor *Actor, lookup TargetLookup) (Decision, error) {
	var dec Decision
	if lookup == nil || !q.Current.HasTarget {
		q.Terminate(actor.UnitType.ReturnToIdle)
		dec.ClearMoveGoal = true
		return dec, nil
	}

	targetPos, _, _, alive := lookup(q.Current.TargetU)
	if !alive {
		q.Terminate(actor.UnitType.ReturnToIdle)
		dec.ClearMoveGoal = true
		return dec, nil
	}

	d := fp.XYLength(fp.XY{X: targetPos.X - actor.Pos.X, Y: targetPos.Y - actor.Pos.Y})
	if d > proximityActionRange {
		q.State = StateApproaching
		dec.HasMoveGoal = true
		dec.MoveGoal = targetPos
		return dec, nil
	}

	q.State = StateDone
	dec.ClearMoveGoal = true
	dec.ActionReady = true
	return dec, nil
}

// stepMining drives the four SCV/drone harvest orders as one linear
// sequence: MoveToMinerals -> WaitForMinerals -> MiningMinerals ->
// ReturnMinerals -> (back to MoveToMinerals), matching spec.md §4.I.
// Timer counts down a fixed mining duration; the caller (sim/economy)
// credits the resource and flips the unit's cargo flag when
// MiningMinerals completes.
const miningDurationFrames = 37

func stepMining(q *Queue, actor *Actor, tables *data.Tables) (Decision, error) {
	var dec Decision
	switch q.Current.Type {
	case data.OrderMoveToMinerals:
		if q.State == StateInit {
			dec.HasMoveGoal = true
			dec.MoveGoal = q.Current.TargetPos
			q.State = StateApproaching
		}
		// Arrival observed by the caller, which then issues
		// WaitForMinerals or MiningMinerals depending on patch occupancy.

	case data.OrderWaitForMinerals:
		dec.ClearMoveGoal = true
		// Stays queued until the caller observes the patch free and
		// re-issues MiningMinerals.

	case data.OrderMiningMinerals:
		dec.ClearMoveGoal = true
		if q.State == StateInit {
			q.State = StateMining
			q.Timer = miningDurationFrames
		}
		if q.Timer > 0 {
			q.Timer--
		}
		if q.Timer == 0 {
			q.State = StateDone
			dec.OrderDone = true
		}

	case data.OrderReturnMinerals:
		if q.State == StateInit {
			dec.HasMoveGoal = true
			dec.MoveGoal = q.Current.TargetPos
			q.State = StateApproaching
		}
	}
	return dec, nil
}
