// Package orders implements the order queue, the per-(order_type,
// order_state) handler table, weapon firing, and the damage model —
// spec.md §4.I.
//
// Grounded on the teacher's military.go/cops.go
// (_examples/Lallassu-snejk/internal/game/military.go,
// _examples/Lallassu-snejk/internal/game/cops.go), which already
// implement "acquire a target, approach it, wait out a cooldown, then
// fire and apply damage" for two hardcoded factions — generalized here
// into the data-driven order/weapon system spec.md requires: the order
// type is no longer implied by which faction's update function runs, it
// is explicit state driven by a shared handler table.
package orders

import (
	"fmt"

	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/pool"
)

// State is the order's internal sub-state, orthogonal to which
// data.OrderTypeID is active — the handler table is keyed on
// (order.Type, state).
type State uint8

const (
	StateInit State = iota
	StateApproaching
	StateFacing
	StateCoolingDown
	StateFiring
	StateBackingOff
	StateMining
	StateBuilding
	StateDone
)

// Order is one queued order: a type, an optional unit target, an optional
// position target, and the "queue" flag from the originating action.
type Order struct {
	Type      data.OrderTypeID
	TargetU   pool.ID
	TargetPos fp.XY
	HasTarget bool
	Queued    bool
}

// Interruptible order types may be preempted by a new non-queued order
// even while running; non-interruptible ones (e.g. an in-progress attack
// windup) must run to completion first. Matches spec.md's "the current
// order is preempted only by orders that are flagged as not-interruptible
// when the current one is" — i.e. a non-interruptible current order blocks
// preemption outright; an interruptible one never blocks it.
var nonInterruptible = map[data.OrderTypeID]bool{
	data.OrderConstructingBuilding: true,
	data.OrderDie:                  true,
}

// Queue is one unit's order queue: the currently-running order plus any
// queued follow-ups.
type Queue struct {
	Current Order
	State   State
	Timer   int32
	Pending []Order
}

// Issue sets a new order on the queue. If queued is true and the current
// order is running, the new order is appended to Pending instead of
// replacing Current. A non-queued issue replaces Current outright unless
// Current is flagged non-interruptible, per the rule above.
func (q *Queue) Issue(o Order) {
	if o.Queued && q.Current.Type != data.OrderNone {
		q.Pending = append(q.Pending, o)
		return
	}
	if nonInterruptible[q.Current.Type] {
		return
	}
	q.Current = o
	q.State = StateInit
	q.Timer = 0
	q.Pending = nil
}

// Terminate ends the current order, dequeuing the next pending order or
// falling back to returnToIdle if the queue is empty, per spec.md §4.I.
func (q *Queue) Terminate(returnToIdle data.OrderTypeID) {
	if len(q.Pending) > 0 {
		q.Current = q.Pending[0]
		q.Pending = q.Pending[1:]
		q.State = StateInit
		q.Timer = 0
		return
	}
	q.Current = Order{Type: returnToIdle}
	q.State = StateInit
	q.Timer = 0
}

// Actor is the minimal read/write surface the order handlers need from a
// unit. sim.Unit implements this directly; orders never imports sim,
// keeping the dependency one-directional.
type Actor struct {
	Self           pool.ID
	Owner          int8
	UnitType       *data.UnitType
	Pos            fp.XY
	Heading        fp.Direction
	HP, MaxHP      int32
	Shields        int32
	GroundCooldown int32
	AirCooldown    int32
	InAir          bool
	TurnRate       fp.Direction

	// Stimmed and the two weapon-upgrade levels are precomputed by the
	// caller (sim owns per-player upgrade/status state) so combat.go
	// never needs to reach outside the order layer to apply spec.md
	// §4.I.5's cooldown modulation ("stim halves; the upgrade further
	// reduces").
	Stimmed                  bool
	GroundWeaponUpgradeLevel int32
	AirWeaponUpgradeLevel    int32
}

// TargetLookup resolves a unit ID to its position/owner/InAir for range
// and line-of-sight checks, and reports whether it is still alive.
type TargetLookup func(id pool.ID) (pos fp.XY, owner int8, inAir bool, alive bool)

// FireResult is emitted when a Step decides to fire: the caller (sim)
// spawns a bullet via internal/bullet using these fields.
type FireResult struct {
	Weapon   data.WeaponTypeID
	Target   pool.ID
	TargetPos fp.XY
}

// Decision is the per-tick output of stepping one unit's order queue: a
// desired heading change, an optional move goal, and an optional weapon
// fire.
type Decision struct {
	DesiredHeading fp.Direction
	HasHeading     bool
	MoveGoal       fp.XY
	HasMoveGoal    bool
	ClearMoveGoal  bool
	Fire           *FireResult
	OrderDone      bool

	// ActionReady is set each tick the actor is within
	// proximityActionRange of its current order's target while running
	// PickupTransport, HealMove, or CastInfestation — the caller (sim)
	// owns cargo/hp/ownership state and applies the type-specific effect
	// when it sees this flag, since the order layer never imports sim.
	ActionReady bool
}

// Step advances actor's order queue by one tick, dispatching on
// (q.Current.Type, q.State). tables resolves weapon/unit static data;
// lookup resolves the current target, if any.
func Step(q *Queue, actor *Actor, tables *data.Tables, lookup TargetLookup) (Decision, error) {
	var dec Decision
	switch q.Current.Type {
	case data.OrderNone, data.OrderPlayerGuard, data.OrderGuard, data.OrderComputerAI:
		// idle: nothing to do

	case data.OrderStop:
		dec.ClearMoveGoal = true
		q.Terminate(actor.UnitType.ReturnToIdle)

	case data.OrderHoldPosition:
		dec.ClearMoveGoal = true
		if q.State == StateInit {
			q.State = StateDone
		}

	case data.OrderMove, data.OrderMoveToLegal:
		if q.State == StateInit {
			dec.HasMoveGoal = true
			dec.MoveGoal = q.Current.TargetPos
			q.State = StateApproaching
		}
		// sim observes arrival through the unit's Mover.AtGoal();
		// the caller calls Terminate when it observes arrival.

	case data.OrderAttackMove, data.OrderAttackUnit, data.OrderAttack1:
		return stepAttack(q, actor, tables, lookup)

	case data.OrderFollow:
		if lookup != nil && q.Current.HasTarget {
			pos, _, _, alive := lookup(q.Current.TargetU)
			if !alive {
				q.Terminate(actor.UnitType.ReturnToIdle)
				break
			}
			dec.HasMoveGoal = true
			dec.MoveGoal = pos
		}

	case data.OrderMoveToMinerals, data.OrderWaitForMinerals, data.OrderMiningMinerals, data.OrderReturnMinerals:
		return stepMining(q, actor, tables)

	case data.OrderPickupTransport, data.OrderHealMove, data.OrderCastInfestation:
		return stepProximityOrder(q, actor, lookup)

	case data.OrderTrain, data.OrderConstructingBuilding, data.OrderBuildingLand:
		// Economy-driven orders: the build/train timer lives in
		// internal/economy: Step only reports OrderDone once economy tells
		// it the build/train completed, signaled externally by the caller
		// setting q.State = StateDone.
		if q.State == StateDone {
			dec.OrderDone = true
			q.Terminate(actor.UnitType.ReturnToIdle)
		}

	case data.OrderUnmovable:
		q.Terminate(actor.UnitType.ReturnToIdle)

	case data.OrderDie:
		// terminal; no further transitions

	default:
		return dec, fmt.Errorf("%w: order type %d has no handler", errs.ErrUnsupported, q.Current.Type)
	}
	return dec, nil
}
