// Package economy implements per-player minerals/gas/supply accounting,
// upgrades/tech research, and build/train queues — spec.md §4.M.
//
// Fully new relative to the teacher (a snake-on-a-city-map arcade game
// has no resource economy); grounded directly on the unit cost/supply
// fields already carried by internal/data.UnitType and
// internal/data.UpgradeType, and shaped as a small per-player struct in
// the teacher's own style of flat, exported-field state records (see
// gamestate.go's PlayerState-shaped structs).
package economy

import (
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/errs"
)

// QueueItem is one pending train/build/upgrade/research order.
type QueueItem struct {
	UnitType     data.UnitTypeID
	HasUnit      bool
	Upgrade      uint16
	HasUpgrade   bool
	FramesLeft   int32
	TotalFrames  int32
}

// Player is one player's economic state.
type Player struct {
	Minerals     int32
	Gas          int32
	SupplyUsed   int32 // half-supply units
	SupplyCap    int32
	UpgradeLevel map[uint16]int32
	Queue        []QueueItem
}

// NewPlayer returns a fresh economy state with the starting resources a
// melee game assigns.
func NewPlayer(startMinerals, startGas, startSupplyCap int32) *Player {
	return &Player{
		Minerals:     startMinerals,
		Gas:          startGas,
		SupplyCap:    startSupplyCap,
		UpgradeLevel: make(map[uint16]int32),
	}
}

// Credit adds mined resources, per spec.md's "accumulate mining" frame
// driver step. Grounded on internal/orders' MiningMinerals duration —
// the sim layer calls Credit once a mining order completes.
func (p *Player) Credit(minerals, gas int32) {
	p.Minerals += minerals
	p.Gas += gas
}

// CanAfford reports whether the player has enough minerals, gas, and
// unused supply to begin training/building ut.
func (p *Player) CanAfford(ut *data.UnitType) bool {
	return p.Minerals >= ut.MineralCost &&
		p.Gas >= ut.GasCost &&
		p.SupplyUsed+ut.SupplyRequired <= p.SupplyCap
}

// EnqueueTrain deducts cost immediately (matching the original's
// pay-on-queue, refund-on-cancel behavior) and appends a build-queue
// entry that Tick will count down.
func (p *Player) EnqueueTrain(ut *data.UnitType) error {
	if !p.CanAfford(ut) {
		return errs.ErrInvalidInput
	}
	p.Minerals -= ut.MineralCost
	p.Gas -= ut.GasCost
	p.SupplyUsed += ut.SupplyRequired
	p.Queue = append(p.Queue, QueueItem{
		UnitType: ut.ID, HasUnit: true,
		FramesLeft: ut.BuildTime, TotalFrames: ut.BuildTime,
	})
	return nil
}

// EnqueueUpgrade deducts cost for upgrading id to the next level and
// queues the research timer.
func (p *Player) EnqueueUpgrade(up *data.UpgradeType) error {
	level := p.UpgradeLevel[up.ID]
	if level >= up.MaxLevel {
		return errs.ErrInvalidInput
	}
	mineral := up.MineralCostBase * (level + 1)
	gas := up.GasCostBase * (level + 1)
	if p.Minerals < mineral || p.Gas < gas {
		return errs.ErrInvalidInput
	}
	p.Minerals -= mineral
	p.Gas -= gas
	p.Queue = append(p.Queue, QueueItem{
		Upgrade: up.ID, HasUpgrade: true,
		FramesLeft: up.TimeCostBase, TotalFrames: up.TimeCostBase,
	})
	return nil
}

// Completion reports one build-queue entry finishing this tick.
type Completion struct {
	UnitType   data.UnitTypeID
	HasUnit    bool
	Upgrade    uint16
	HasUpgrade bool
}

// Tick counts down every queued item by one frame, returning the
// completions that finished this tick (in queue order) and removing
// them from Queue. Matches spec.md's frame-driver step 8, "resolve
// completed trains / builds / upgrades / research."
func (p *Player) Tick() []Completion {
	var done []Completion
	kept := p.Queue[:0]
	for _, item := range p.Queue {
		item.FramesLeft--
		if item.FramesLeft <= 0 {
			if item.HasUpgrade {
				p.UpgradeLevel[item.Upgrade]++
			}
			done = append(done, Completion{
				UnitType: item.UnitType, HasUnit: item.HasUnit,
				Upgrade: item.Upgrade, HasUpgrade: item.HasUpgrade,
			})
			continue
		}
		kept = append(kept, item)
	}
	p.Queue = kept
	return done
}

// ReleaseSupply frees supply when a unit dies, per the original's
// "supply is reclaimed on death, not on order cancel" rule.
func (p *Player) ReleaseSupply(amount int32) {
	p.SupplyUsed -= amount
	if p.SupplyUsed < 0 {
		p.SupplyUsed = 0
	}
}

// Clone returns a deep copy of p, for snapshotting (internal/sim.World.Snapshot);
// p's map and slice fields would otherwise alias the original on a plain
// struct copy.
func (p *Player) Clone() *Player {
	c := *p
	c.UpgradeLevel = make(map[uint16]int32, len(p.UpgradeLevel))
	for k, v := range p.UpgradeLevel {
		c.UpgradeLevel[k] = v
	}
	c.Queue = make([]QueueItem, len(p.Queue))
	copy(c.Queue, p.Queue)
	return &c
}
