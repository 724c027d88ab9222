// Package action implements the per-frame action dispatcher: packed
// (player_id, action_id, payload) records, selection rules, and
// default-order resolution — spec.md §4.N.
//
// Grounded on the teacher's input.go, which already parses a small
// tagged input-event stream and dispatches each event to a game-state
// mutator (JustPressed/JustClicked keyed handlers); generalized here
// from live keyboard/mouse polling into the spec's packed per-frame
// action-record stream. Action ID naming cross-checked against
// icza/screp's rep/repcmd order table
// (_examples/other_examples/980871ed_icza-screp__rep-repcmd-orders.go.go)
// for idiomatic opcode naming, since that is the closest available
// reference for a real StarCraft command-stream opcode set.
package action

import (
	"fmt"

	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/orders"
	"github.com/stonehollow/bwsim/internal/pool"
)

// ID names one action opcode, matching spec.md §4.N's table exactly.
type ID uint8

const (
	Select       ID = 9
	ShiftSelect  ID = 10
	Deselect     ID = 11
	Build        ID = 12
	DefaultOrder ID = 20
	Order        ID = 21
	Stop         ID = 26
	Train        ID = 31
	LeaveGame    ID = 87
)

// maxSelection is the selection size cap spec.md names ("at most 12
// units").
const maxSelection = 12

// TargetType distinguishes what a default-order or explicit-order
// action targets, needed by the default-order resolution table.
type TargetType uint8

const (
	TargetNone TargetType = iota
	TargetGround
	TargetOwnUnit
	TargetAllyUnit
	TargetEnemyUnit
	TargetMineralField
	TargetVespeneGeyser
)

// Action is one decoded per-frame action record.
type Action struct {
	Player int8
	ID     ID

	UnitIDs []pool.ID // select/shift-select/deselect payload

	Pos        fp.XY     // build/default-order/order payload
	TileXY     fp.XY     // build payload
	UnitType   data.UnitTypeID
	TargetUnit pool.ID
	HasTarget  bool
	TargetType TargetType
	OrderID    data.OrderTypeID // explicit order payload
	Queue      bool
	Reason     int32 // leave-game payload
}

// UnitView is the minimal per-unit data the dispatcher needs to apply
// selection rules and resolve default orders, without depending on
// sim.Unit directly.
type UnitView struct {
	ID             pool.ID
	Owner          int8
	Type           *data.UnitType
	MultiSelectable bool
	Burrowed       bool
}

// Selection is one player's current unit selection.
type Selection struct {
	Units []pool.ID
}

// Dispatcher holds per-player selections and the static tables needed
// to resolve default orders.
type Dispatcher struct {
	Tables     *data.Tables
	Selections map[int8]*Selection
}

// NewDispatcher returns a Dispatcher with no selections yet.
func NewDispatcher(tables *data.Tables) *Dispatcher {
	return &Dispatcher{Tables: tables, Selections: make(map[int8]*Selection)}
}

// Snapshot returns a deep copy of every player's current selection, for
// snapshotting (internal/sim.World.Snapshot).
func (d *Dispatcher) Snapshot() map[int8]*Selection {
	out := make(map[int8]*Selection, len(d.Selections))
	for k, v := range d.Selections {
		units := make([]pool.ID, len(v.Units))
		copy(units, v.Units)
		out[k] = &Selection{Units: units}
	}
	return out
}

// Restore replaces d's selections with a deep copy of s, previously
// produced by Snapshot.
func (d *Dispatcher) Restore(s map[int8]*Selection) {
	d.Selections = make(map[int8]*Selection, len(s))
	for k, v := range s {
		units := make([]pool.ID, len(v.Units))
		copy(units, v.Units)
		d.Selections[k] = &Selection{Units: units}
	}
}

func (d *Dispatcher) selectionFor(player int8) *Selection {
	s, ok := d.Selections[player]
	if !ok {
		s = &Selection{}
		d.Selections[player] = s
	}
	return s
}

// filterMultiSelectable trims a candidate unit-ID list the same way the
// original does: the first unit in a selection is always kept even if
// not multi-selectable, but no more than one such "lone" unit may be
// present alongside others, and the result never exceeds maxSelection.
func filterMultiSelectable(candidates []pool.ID, lookup func(pool.ID) (UnitView, bool)) []pool.ID {
	var out []pool.ID
	for _, id := range candidates {
		v, ok := lookup(id)
		if !ok {
			continue
		}
		if len(out) == 0 {
			out = append(out, id)
			continue
		}
		if !v.MultiSelectable {
			continue
		}
		out = append(out, id)
		if len(out) >= maxSelection {
			break
		}
	}
	return out
}

// Apply dispatches one decoded action. lookup resolves a unit ID to its
// UnitView; issue hands the resolved order to the unit's order queue
// (the sim layer supplies both, since the dispatcher never mutates
// world state directly, per spec.md's "never directly mutates world
// state other than through the order-layer helpers" rule).
func (d *Dispatcher) Apply(a Action, lookup func(pool.ID) (UnitView, bool), issue func(pool.ID, orders.Order)) error {
	switch a.ID {
	case Select:
		sel := d.selectionFor(a.Player)
		sel.Units = filterMultiSelectable(a.UnitIDs, lookup)

	case ShiftSelect:
		sel := d.selectionFor(a.Player)
		merged := append(append([]pool.ID{}, sel.Units...), a.UnitIDs...)
		sel.Units = filterMultiSelectable(merged, lookup)

	case Deselect:
		sel := d.selectionFor(a.Player)
		remove := make(map[pool.ID]bool, len(a.UnitIDs))
		for _, id := range a.UnitIDs {
			remove[id] = true
		}
		var kept []pool.ID
		for _, id := range sel.Units {
			if !remove[id] {
				kept = append(kept, id)
			}
		}
		sel.Units = kept

	case Build:
		sel := d.selectionFor(a.Player)
		for _, id := range sel.Units {
			issue(id, orders.Order{Type: data.OrderConstructingBuilding, TargetPos: a.TileXY})
		}

	case Train:
		sel := d.selectionFor(a.Player)
		for _, id := range sel.Units {
			issue(id, orders.Order{Type: data.OrderTrain, Queued: a.Queue})
		}

	case Stop:
		sel := d.selectionFor(a.Player)
		for _, id := range sel.Units {
			issue(id, orders.Order{Type: data.OrderStop, Queued: a.Queue})
		}

	case DefaultOrder:
		sel := d.selectionFor(a.Player)
		for _, id := range sel.Units {
			v, ok := lookup(id)
			if !ok {
				continue
			}
			o, err := d.ResolveDefaultOrder(v, a)
			if err != nil {
				return err
			}
			issue(id, o)
		}

	case Order:
		sel := d.selectionFor(a.Player)
		for _, id := range sel.Units {
			issue(id, orders.Order{
				Type: a.OrderID, TargetPos: a.Pos,
				TargetU: a.TargetUnit, HasTarget: a.HasTarget, Queued: a.Queue,
			})
		}

	case LeaveGame:
		// Handled entirely by the caller (sim), which removes the player
		// from active play; the dispatcher has nothing further to do.

	default:
		return fmt.Errorf("%w: action id %d has no handler", errs.ErrUnsupported, a.ID)
	}
	return nil
}

// ResolveDefaultOrder maps (right_click_action code, target, target
// type) to an order_type via the fixed decision table spec.md §4.N
// names: worker-on-minerals -> MoveToMinerals, transport-on-friendly ->
// PickupTransport, medic -> HealMove, queen-on-valid-host ->
// CastInfestation, burrowed -> Move only, otherwise enemy -> Attack1,
// ally -> Follow.
func (d *Dispatcher) ResolveDefaultOrder(v UnitView, a Action) (orders.Order, error) {
	base := orders.Order{TargetPos: a.Pos, TargetU: a.TargetUnit, HasTarget: a.HasTarget, Queued: a.Queue}

	if v.Burrowed {
		base.Type = data.OrderMove
		return base, nil
	}

	switch v.Type.RightClick {
	case data.RightClickMoveToMinerals:
		if a.TargetType == TargetMineralField {
			base.Type = data.OrderMoveToMinerals
			return base, nil
		}

	case data.RightClickPickupTransport:
		if a.TargetType == TargetOwnUnit || a.TargetType == TargetAllyUnit {
			base.Type = data.OrderPickupTransport
			return base, nil
		}

	case data.RightClickHealMove:
		base.Type = data.OrderHealMove
		return base, nil

	case data.RightClickCastInfestation:
		if a.TargetType == TargetEnemyUnit {
			base.Type = data.OrderCastInfestation
			return base, nil
		}

	case data.RightClickNoCommandCard:
		return orders.Order{}, fmt.Errorf("%w: unit type has no command card", errs.ErrUnsupported)
	}

	switch a.TargetType {
	case TargetEnemyUnit:
		base.Type = data.OrderAttack1
	case TargetAllyUnit, TargetOwnUnit:
		base.Type = data.OrderFollow
	default:
		base.Type = data.OrderMove
	}
	return base, nil
}
