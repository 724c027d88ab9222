// Package sim implements World, the frame driver tying every component
// together, and its single mutating entrypoint Step — spec.md §4.O,
// §5.
//
// Grounded on the teacher's per-frame Update orchestration in main.go
// (_examples/Lallassu-snejk/internal/game/main.go — since deleted as an
// explicit Non-goal render loop, its fixed subsystem-update ordering is
// preserved here), generalized from a render-coupled game loop into a
// headless, side-effect-free Step(actions []action.Action) error.
package sim

import (
	"github.com/stonehollow/bwsim/internal/action"
	"github.com/stonehollow/bwsim/internal/bullet"
	"github.com/stonehollow/bwsim/internal/creep"
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/economy"
	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/movement"
	"github.com/stonehollow/bwsim/internal/orders"
	"github.com/stonehollow/bwsim/internal/pool"
	"github.com/stonehollow/bwsim/internal/rng"
	"github.com/stonehollow/bwsim/internal/spatial"
	"github.com/stonehollow/bwsim/internal/sprite"
	"github.com/stonehollow/bwsim/internal/terrain"
	"github.com/stonehollow/bwsim/internal/vision"
)

// GameType selects the victory-condition predicate, per spec.md §4.O
// step 10.
type GameType uint8

const (
	GameTypeMelee GameType = iota
	GameTypeUMS
)

// StatusEffect names one of spec.md §4.O step 9's passive per-unit
// timers. Unit.StatusFlags bit i is set iff Unit.StatusTimers[i] > 0;
// the flag and the timer are always kept in sync by ApplyStatus and
// tickStatusTimers, so callers may test either.
type StatusEffect uint8

const (
	StatusStasis StatusEffect = iota
	StatusStim
	StatusEnsnare
	StatusPlague
	StatusLockdown
	StatusMaelstrom
	StatusDefenseMatrix
	StatusIrradiate
	StatusBlind
	StatusStorm
	StatusAcidSpore
	numStatusEffects
)

// Unit is the single flattened entity record spec.md §9's "Deep
// inheritance in the original" note calls for: movement, order queue,
// combat stats, and sprite binding all live directly on one struct
// rather than behind a type hierarchy.
type Unit struct {
	Owner    int8
	TypeID   data.UnitTypeID
	HP       int32
	Shields  int32
	Energy   int32
	Mover    movement.Mover
	Orders   orders.Queue
	GroundCooldown int32
	AirCooldown    int32
	SpriteID pool.ID
	Alive    bool
	Completed bool // false while under construction/training

	StatusFlags  uint32
	StatusTimers [numStatusEffects]int32

	// Passengers and Carried back PickupTransport: a transport's loaded
	// units sit in Passengers, Carried marks a loaded unit inert (no
	// longer stepped, targeted, or counted for vision) until unloaded.
	// No unload order appears in spec.md §4.N's default-order table, so
	// this implementation does not yet offer one (see DESIGN.md).
	Passengers []pool.ID
	Carried    bool
}

// HasStatus reports whether e is currently active on u.
func (u *Unit) HasStatus(e StatusEffect) bool {
	return u.StatusFlags&(1<<uint(e)) != 0
}

// ApplyStatus arms e for the given number of frames, setting its flag
// bit. No builtin unit type in this implementation's static tables casts
// a status spell (stasis, lockdown, plague, ...), and nothing in this
// module calls ApplyStatus; embedders may. The per-frame decay in
// tickStatusTimers runs unconditionally regardless of whether anything
// ever arms a status.
func (u *Unit) ApplyStatus(e StatusEffect, frames int32) {
	u.StatusTimers[e] = frames
	u.StatusFlags |= 1 << uint(e)
}

// tickStatusTimers decrements every armed status timer by one frame,
// clearing the flag bit the instant a timer reaches zero, per spec.md
// §4.O step 9.
func (u *Unit) tickStatusTimers() {
	for e := StatusEffect(0); e < numStatusEffects; e++ {
		if u.StatusTimers[e] > 0 {
			u.StatusTimers[e]--
			if u.StatusTimers[e] == 0 {
				u.StatusFlags &^= 1 << uint(e)
			}
		}
	}
}

// World owns every arena, the terrain map, and the per-player state the
// frame driver advances one tick at a time.
type World struct {
	Tables *data.Tables

	Units   *pool.Arena[Unit]
	Sprites *sprite.Pool
	Bullets *bullet.Pool

	Map       *terrain.Map
	Spatial   *spatial.Index
	Vision    *vision.Revealer
	Creep     *creep.Field
	Dispatcher *action.Dispatcher

	Players []*economy.Player
	LCG     *rng.LCG

	CurrentFrame int64
	GameType     GameType

	Hooks Hooks
}

// Hooks are the observer callbacks spec.md §5 requires to run
// synchronously from within Step and never call back into mutating
// kernel APIs.
type Hooks struct {
	OnUnitDestroy func(id pool.ID)
	OnKillUnit    func(id pool.ID)
	OnAction      func(a action.Action)
	PlaySound     func(soundID int32, pos fp.XY)
}

// NewWorld constructs an empty world over m with the given per-player
// count and arena capacities, matching spec.md §3.2's capacity table
// (1700 units, ~2500 sprites, ~5000 images, ~100 bullets).
func NewWorld(tables *data.Tables, m *terrain.Map, playerCount int) *World {
	w := &World{
		Tables:     tables,
		Units:      pool.New[Unit](1700),
		Sprites:    sprite.NewPool(2500, 5000),
		Bullets:    bullet.NewPool(100),
		Map:        m,
		Spatial:    spatial.New(),
		Vision:     &vision.Revealer{Map: m},
		Creep:      creep.NewField(m, 4, 1),
		Dispatcher: action.NewDispatcher(tables),
		LCG:        rng.NewLCG(1),
	}
	for i := 0; i < playerCount; i++ {
		w.Players = append(w.Players, economy.NewPlayer(50, 0, 20))
	}
	return w
}

// GetUnit resolves a generation-tagged ID to its live unit, failing the
// stale-reference check spec.md §3.2 requires once the slot has been
// reallocated.
func (w *World) GetUnit(id pool.ID) (*Unit, bool) {
	return w.Units.Get(id)
}

// KillUnit marks a unit destroyed, releases its supply, fires hooks,
// and frees its sprite and arena slot. A short "dying" animation is out
// of scope for the headless kernel's observable contract (spec.md
// treats the rendered animation as a sprite/iscript concern); here the
// unit is released immediately once kill_unit is invoked, matching the
// *terminal* state the original's dying animation eventually reaches.
func (w *World) KillUnit(id pool.ID) error {
	u, ok := w.Units.Get(id)
	if !ok {
		return errs.ErrInvalidInput
	}
	if int(u.Owner) < len(w.Players) {
		w.Players[u.Owner].ReleaseSupply(w.Tables.Unit(u.TypeID).SupplyRequired)
	}
	w.Spatial.Remove(spatial.Key(id.Index))
	if u.SpriteID.Valid() {
		w.Sprites.RemoveSprite(u.SpriteID)
	}
	if w.Hooks.OnKillUnit != nil {
		w.Hooks.OnKillUnit(id)
	}
	if w.Hooks.OnUnitDestroy != nil {
		w.Hooks.OnUnitDestroy(id)
	}
	u.Alive = false
	w.Units.Release(id)
	return nil
}
