package sim

import (
	"github.com/stonehollow/bwsim/internal/action"
	"github.com/stonehollow/bwsim/internal/bullet"
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/movement"
	"github.com/stonehollow/bwsim/internal/orders"
	"github.com/stonehollow/bwsim/internal/pool"
	"github.com/stonehollow/bwsim/internal/spatial"
	"github.com/stonehollow/bwsim/internal/vision"
)

// pendingHit is one bullet landing resolved during the bullet-step pass
// and applied in the damage pass that follows it, per spec.md §4.O step
// 5 ("apply damage queued this frame").
type pendingHit struct {
	weapon    *data.WeaponType
	owner     int8
	target    pool.ID
	hasTarget bool
	impact    fp.XY
}

// visionUpdateInterval is the "update_tiles" cadence spec.md §4.K
// describes: the original recomputes visibility roughly every 100
// frames rather than every tick, since a full clear-and-reveal pass
// over every unit is too costly to run every frame.
const visionUpdateInterval int64 = 100

// Step advances the world by exactly one tick, in the fixed order
// spec.md §4.O names: frame counter, actions, per-unit order/movement/
// animation, bullets, damage, vision, creep, economy, timers, victory.
func (w *World) Step(actions []action.Action) error {
	w.CurrentFrame++

	for _, a := range actions {
		if w.Hooks.OnAction != nil {
			w.Hooks.OnAction(a)
		}
		if err := w.Dispatcher.Apply(a, w.unitView, w.issueOrder); err != nil {
			return err
		}
	}

	w.stepUnits()

	hits := w.stepBullets()

	w.applyDamage(hits)

	if w.CurrentFrame%visionUpdateInterval == 0 {
		w.RecomputeVision()
	}

	w.Creep.Step()

	for _, p := range w.Players {
		p.Tick()
	}

	// Passive per-unit timers (stasis, stim, ensnare, plague, lockdown,
	// maelstrom, defensive matrix, irradiate, blind, storm, acid spore)
	// decay by one frame each tick, per spec.md §4.O step 9.
	w.Units.Each(func(id pool.ID, u *Unit) {
		if !u.Alive {
			return
		}
		u.tickStatusTimers()
	})

	w.evaluateVictory()

	return nil
}

// upgradeLevel looks up owner's researched level of upgradeID, treating
// data.NoUpgrade (and any owner outside the player slice) as level 0.
func (w *World) upgradeLevel(owner int8, upgradeID int32) int32 {
	if upgradeID == data.NoUpgrade || int(owner) < 0 || int(owner) >= len(w.Players) {
		return 0
	}
	return w.Players[owner].UpgradeLevel[uint16(upgradeID)]
}

// weaponUpgradeLevel looks up owner's researched level of the upgrade
// that boosts wid's damage/cooldown, per spec.md §4.I.5.
func (w *World) weaponUpgradeLevel(owner int8, wid data.WeaponTypeID) int32 {
	weapon := w.Tables.Weapon(wid)
	if weapon == nil {
		return 0
	}
	return w.upgradeLevel(owner, weapon.UpgradeID)
}

func (w *World) unitView(id pool.ID) (action.UnitView, bool) {
	u, ok := w.Units.Get(id)
	if !ok {
		return action.UnitView{}, false
	}
	ut := w.Tables.Unit(u.TypeID)
	return action.UnitView{
		ID: id, Owner: u.Owner, Type: ut,
		MultiSelectable: !ut.Building,
	}, true
}

func (w *World) issueOrder(id pool.ID, o orders.Order) {
	u, ok := w.Units.Get(id)
	if !ok {
		return
	}
	u.Orders.Issue(o)
}

func (w *World) targetLookup(id pool.ID) (pos fp.XY, owner int8, inAir bool, alive bool) {
	u, ok := w.Units.Get(id)
	if !ok || !u.Alive || u.Carried {
		return fp.XY{}, 0, false, false
	}
	ut := w.Tables.Unit(u.TypeID)
	return fp.XY{X: u.Mover.Pos.X.Int(), Y: u.Mover.Pos.Y.Int()}, u.Owner, ut.Flyer, true
}

// stepUnits runs, in arena order, each live unit's order handler, then
// its movement state machine, per spec.md §4.O step 3. A unit currently
// loaded aboard a transport is skipped entirely: it neither acts nor
// moves until unloaded.
func (w *World) stepUnits() {
	planner := &movement.Planner{Map: w.Map}
	w.Units.Each(func(id pool.ID, u *Unit) {
		if !u.Alive || u.Carried {
			return
		}
		ut := w.Tables.Unit(u.TypeID)

		actor := &orders.Actor{
			Self: id, Owner: u.Owner, UnitType: ut,
			Pos:     fp.XY{X: u.Mover.Pos.X.Int(), Y: u.Mover.Pos.Y.Int()},
			Heading: u.Mover.Heading, HP: u.HP, MaxHP: ut.HitPoints, Shields: u.Shields,
			GroundCooldown: u.GroundCooldown, AirCooldown: u.AirCooldown, InAir: ut.Flyer,
			Stimmed:                  u.HasStatus(StatusStim),
			GroundWeaponUpgradeLevel: w.weaponUpgradeLevel(u.Owner, ut.GroundWeapon),
			AirWeaponUpgradeLevel:    w.weaponUpgradeLevel(u.Owner, ut.AirWeapon),
		}
		dec, err := orders.Step(&u.Orders, actor, w.Tables, w.targetLookup)
		if err == nil {
			u.GroundCooldown = actor.GroundCooldown
			u.AirCooldown = actor.AirCooldown
			if dec.ClearMoveGoal {
				u.Mover.ClearGoal()
			}
			if dec.HasMoveGoal {
				u.Mover.SetGoal(dec.MoveGoal)
			}
			if dec.HasHeading {
				u.Mover.Heading = dec.DesiredHeading
			}
			if dec.Fire != nil {
				w.fireWeapon(id, u, dec.Fire)
			}
			if dec.ActionReady {
				w.resolveProximityAction(u, ut)
			}
		}
		if u.GroundCooldown > 0 {
			u.GroundCooldown--
		}
		if u.AirCooldown > 0 {
			u.AirCooldown--
		}

		movement.Step(&u.Mover, planner, w.collisionProbe(id))

		if (u.Orders.Current.Type == data.OrderMove || u.Orders.Current.Type == data.OrderMoveToLegal) && u.Mover.AtGoal() {
			u.Orders.Terminate(ut.ReturnToIdle)
		}

		pixelPos := fp.XY{X: u.Mover.Pos.X.Int(), Y: u.Mover.Pos.Y.Int()}
		rect := fp.Rect{From: pixelPos, To: fp.XY{X: pixelPos.X + 1, Y: pixelPos.Y + 1}}
		if w.Spatial.Contains(spatial.Key(id.Index)) {
			w.Spatial.Move(spatial.Key(id.Index), rect)
		} else {
			w.Spatial.Insert(spatial.Key(id.Index), rect)
		}
	})
}

func (w *World) collisionProbe(self pool.ID) movement.CollisionProbe {
	return func(candidate fp.XY) (bool, fp.XY) {
		rect := fp.Rect{From: candidate, To: fp.XY{X: candidate.X + 1, Y: candidate.Y + 1}}
		for _, k := range w.Spatial.FindUnitsNoExpand(rect.Expanded(4, 4)) {
			if int32(k) == self.Index {
				continue
			}
			other, ok := w.Units.Get(pool.ID{Index: int32(k), Generation: w.Units.Generation(int32(k))})
			if !ok || !other.Alive {
				continue
			}
			return true, fp.XY{X: other.Mover.Pos.X.Int(), Y: other.Mover.Pos.Y.Int()}
		}
		return false, fp.XY{}
	}
}

func (w *World) fireWeapon(shooter pool.ID, u *Unit, fr *orders.FireResult) {
	weapon := w.Tables.Weapon(fr.Weapon)
	if weapon == nil {
		return
	}
	_, err := w.Bullets.Spawn(weapon, u.Owner, shooter, u.Mover.Pos, fr.Target, fr.TargetPos, fr.Target.Valid())
	if err != nil {
		return
	}
	if w.Hooks.PlaySound != nil {
		w.Hooks.PlaySound(int32(weapon.ID), fr.TargetPos)
	}
}

// resolveProximityAction applies the type-specific effect of whichever
// proximity order (PickupTransport, HealMove, CastInfestation) just
// signaled ActionReady, per spec.md §4.N. Each case owns when the order
// actually completes; HealMove keeps running (and ActionReady keeps
// firing) until the target is topped up or moves out of range.
func (w *World) resolveProximityAction(u *Unit, ut *data.UnitType) {
	target, ok := w.Units.Get(u.Orders.Current.TargetU)
	if !ok || !target.Alive {
		u.Orders.Terminate(ut.ReturnToIdle)
		return
	}

	switch u.Orders.Current.Type {
	case data.OrderPickupTransport:
		u.Passengers = append(u.Passengers, u.Orders.Current.TargetU)
		target.Carried = true
		target.Mover.ClearGoal()
		u.Orders.Terminate(ut.ReturnToIdle)

	case data.OrderHealMove:
		const healPerFrame = 1
		targetType := w.Tables.Unit(target.TypeID)
		if target.HP >= targetType.HitPoints {
			u.Orders.Terminate(ut.ReturnToIdle)
			return
		}
		target.HP += healPerFrame
		if target.HP > targetType.HitPoints {
			target.HP = targetType.HitPoints
		}

	case data.OrderCastInfestation:
		target.Owner = u.Owner
		u.Orders.Terminate(ut.ReturnToIdle)
	}
}

// stepBullets advances every live bullet one tick and collects the hits
// that land this frame, per spec.md §4.O step 4.
func (w *World) stepBullets() []pendingHit {
	var hits []pendingHit
	var landed []pool.ID
	w.Bullets.Bullets.Each(func(id pool.ID, b *bullet.Bullet) {
		hit, ok := bullet.Step(b, w.targetResolve, w.bounceResolve)
		if !ok {
			return
		}
		// A bullet that lands on StateBouncing has chained to another
		// target and stays alive in the arena for its next leg; only a
		// terminal StateHit frees the slot.
		if b.State == bullet.StateHit {
			landed = append(landed, id)
		}
		weapon := w.Tables.Weapon(b.Weapon)
		if weapon == nil {
			return
		}
		hits = append(hits, pendingHit{weapon: weapon, owner: b.Owner, target: hit.Target, hasTarget: hit.HasTarget, impact: hit.ImpactPos})
	})
	for _, id := range landed {
		w.Bullets.Bullets.Release(id)
	}
	return hits
}

// bounceRange bounds how far a bounce-capable weapon's bullet may jump
// to its next target from its current impact point.
const bounceRange = 64

// bounceResolve finds the nearest living, uncarried unit within
// bounceRange of impact that the bullet's chain hasn't already struck,
// for bullet.Step's BounceResolver hook.
func (w *World) bounceResolve(impact fp.XY, alreadyHit []pool.ID) (pool.ID, fp.XY, bool) {
	excluded := make(map[pool.ID]bool, len(alreadyHit))
	for _, id := range alreadyHit {
		excluded[id] = true
	}
	rect := splashRect(impact, bounceRange)
	best := pool.NilID
	bestPos := fp.XY{}
	bestDist := int32(-1)
	for _, k := range w.Spatial.FindUnitsNoExpand(rect) {
		id := pool.ID{Index: int32(k), Generation: w.Units.Generation(int32(k))}
		if excluded[id] {
			continue
		}
		u, ok := w.Units.Get(id)
		if !ok || !u.Alive || u.Carried {
			continue
		}
		pos := fp.XY{X: u.Mover.Pos.X.Int(), Y: u.Mover.Pos.Y.Int()}
		dist := fp.XYLength(fp.XY{X: pos.X - impact.X, Y: pos.Y - impact.Y})
		if dist > bounceRange {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestPos, bestDist = id, pos, dist
		}
	}
	if bestDist < 0 {
		return pool.NilID, fp.XY{}, false
	}
	return best, bestPos, true
}

func (w *World) targetResolve(id pool.ID) (fp.XY, bool) {
	u, ok := w.Units.Get(id)
	if !ok || !u.Alive || u.Carried {
		return fp.XY{}, false
	}
	return fp.XY{X: u.Mover.Pos.X.Int(), Y: u.Mover.Pos.Y.Int()}, true
}

// applyDamage resolves each queued hit against its target (for
// single-target hit types, including each leg of a bouncing weapon) or
// against every unit within the weapon's splash radii of the impact
// point (for radial/air/enemy splash), applying the size/damage-type/
// armor model and killing units that reach zero hp, per spec.md §4.O
// step 5.
func (w *World) applyDamage(hits []pendingHit) {
	for _, h := range hits {
		if h.weapon.HitType == data.HitNormal || h.weapon.HitType == data.HitBounce {
			if h.hasTarget {
				w.damageOne(h.target, h.weapon, h.owner, 0)
			}
			continue
		}
		for _, k := range w.Spatial.FindUnitsNoExpand(splashRect(h.impact, h.weapon.OuterSplashRadius)) {
			id := pool.ID{Index: int32(k), Generation: w.Units.Generation(int32(k))}
			u, ok := w.Units.Get(id)
			if !ok || !u.Alive {
				continue
			}
			dist := fp.XYLength(fp.XY{
				X: u.Mover.Pos.X.Int() - h.impact.X,
				Y: u.Mover.Pos.Y.Int() - h.impact.Y,
			})
			if dist > h.weapon.OuterSplashRadius {
				continue
			}
			w.damageOne(id, h.weapon, h.owner, dist)
		}
	}
}

func splashRect(center fp.XY, radius int32) fp.Rect {
	return fp.Rect{
		From: fp.XY{X: center.X - radius, Y: center.Y - radius},
		To:   fp.XY{X: center.X + radius + 1, Y: center.Y + radius + 1},
	}
}

func (w *World) damageOne(target pool.ID, weapon *data.WeaponType, shooterOwner int8, dist int32) {
	u, ok := w.Units.Get(target)
	if !ok || !u.Alive || u.Carried {
		return
	}
	ut := w.Tables.Unit(u.TypeID)
	weaponUpgrade := w.upgradeLevel(shooterOwner, weapon.UpgradeID)
	armorUpgrade := w.upgradeLevel(u.Owner, ut.ArmorUpgradeID)
	dmg := orders.Damage(weapon, weaponUpgrade, armorUpgrade, ut.Size, ut.Armor, dist)
	newHP, newShields, died := orders.ApplyDamage(u.HP, u.Shields, dmg)
	u.HP, u.Shields = newHP, newShields
	if died {
		w.KillUnit(target)
	}
}

// RecomputeVision performs the full vision pass spec.md §4.O step 6
// describes: clear every player's Visible bitmask, then reveal from
// every living, completed unit's position and sight range. Gated
// behind an explicit call (rather than run unconditionally every Step)
// matching spec.md's "if update_tiles" condition on this step.
func (w *World) RecomputeVision() {
	vision.ClearVisible(w.Map)
	w.Units.Each(func(id pool.ID, u *Unit) {
		if !u.Alive || !u.Completed || u.Carried {
			return
		}
		ut := w.Tables.Unit(u.TypeID)
		tile := fp.XY{X: u.Mover.Pos.X.Int() / 32, Y: u.Mover.Pos.Y.Int() / 32}
		w.Vision.Reveal(int(u.Owner), tile, ut.Sight)
	})
}

// evaluateVictory reports, per player, whether that player is defeated
// this tick: melee games require at least one building; UMS games
// require at least one unit of any kind, per spec.md §4.O step 10.
func (w *World) evaluateVictory() map[int8]bool {
	defeated := make(map[int8]bool)
	counts := make(map[int8]int)
	buildingCounts := make(map[int8]int)
	w.Units.Each(func(id pool.ID, u *Unit) {
		if !u.Alive {
			return
		}
		counts[u.Owner]++
		if w.Tables.Unit(u.TypeID).Building {
			buildingCounts[u.Owner]++
		}
	})
	for i := range w.Players {
		owner := int8(i)
		switch w.GameType {
		case GameTypeMelee:
			defeated[owner] = buildingCounts[owner] == 0
		default:
			defeated[owner] = counts[owner] == 0
		}
	}
	return defeated
}
