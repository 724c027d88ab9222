// Package data holds the read-only static descriptor tables the kernel
// consumes: unit, weapon, flingy, sprite, image, order, upgrade, and sound
// types. The kernel never mutates a Tables value after construction — it is
// the "process-wide immutable global_state" of spec.md §9, safe to share
// across multiple concurrently-held World instances.
package data

import "github.com/stonehollow/bwsim/internal/fp"

// Size classifies a unit's hitbox for the damage size x damage-type table.
type Size uint8

const (
	SizeIndependent Size = iota
	SizeSmall
	SizeMedium
	SizeLarge
)

// DamageType classifies a weapon's damage for the size x damage-type table.
type DamageType uint8

const (
	DamageNone DamageType = iota
	DamageExplosive
	DamageConcussive
	DamageNormal
	DamageIgnoreArmor
)

// HitType selects a bullet's impact pattern (splash radii, special effect).
type HitType uint8

const (
	HitNormal HitType = iota
	HitRadialSplash
	HitEnemySplash
	HitAirSplash
	HitBounce
)

// RightClickAction is the unit type's default-order dispatch code, see
// spec.md §4.N.
type RightClickAction uint8

const (
	RightClickNormal RightClickAction = iota
	RightClickMoveToMinerals
	RightClickPickupTransport
	RightClickHealMove
	RightClickCastInfestation
	RightClickAttack
	RightClickNoCommandCard
)

// UnitTypeID names a unit type; deliberately a small closed set here rather
// than the original's ~228 to keep the table and order coverage honest
// about what this implementation actually drives end to end (see
// DESIGN.md). Embedders needing unlisted types add rows to the table
// without code changes elsewhere.
type UnitTypeID uint16

const (
	UnitMarine UnitTypeID = iota
	UnitSCV
	UnitVulture
	UnitGhost
	UnitWraith
	UnitSiegeTankMode
	UnitCommandCenter
	UnitSupplyDepot
	UnitBarracks
	UnitMineralField
	UnitLarva
	UnitDrone
	UnitZergling
	UnitHydralisk
	UnitOverlord
	UnitHatchery
	UnitSpawningPool
	unitTypeCount
)

// WeaponTypeID names a weapon type.
type WeaponTypeID uint16

const (
	WeaponNone WeaponTypeID = iota
	WeaponGaussRifle
	WeaponFragmentationGrenade
	WeaponSpines
	WeaponClaws
	WeaponLashingSpines // bounces to a second nearby target after landing
	weaponTypeCount
)

// FlingyTypeID names a flingy (movement+sprite binding).
type FlingyTypeID uint16

// OrderTypeID enumerates the order kinds the dispatcher and order state
// machine recognize. Matches the naming the original engine uses (Move,
// AttackMove, ...); unsupported codes return errs.ErrUnsupported per
// spec.md's open question on get_default_order.
type OrderTypeID uint16

const (
	OrderDie OrderTypeID = iota
	OrderStop
	OrderGuard
	OrderPlayerGuard
	OrderMove
	OrderAttackMove
	OrderAttackUnit
	OrderAttack1 // alias used by default-order resolution, same handler as AttackUnit
	OrderFollow
	OrderHoldPosition
	OrderMoveToMinerals
	OrderWaitForMinerals
	OrderMiningMinerals
	OrderReturnMinerals
	OrderMoveToLegal
	OrderUnmovable
	OrderConstructingBuilding
	OrderTrain
	OrderComputerAI // placeholder idle order assigned to brand-new buildings
	OrderBuildingLand
	OrderPickupTransport // approach a friendly unit and load it aboard
	OrderHealMove        // medic: approach a damaged ally and heal it
	OrderCastInfestation // queen: approach a valid host and infest it
	OrderNone
	orderTypeCount
)

// UnitType is the static descriptor for one unit kind.
type UnitType struct {
	ID               UnitTypeID
	Name             string
	HitPoints        int32
	ShieldPoints     int32
	MaxEnergy        int32
	Armor            int32
	Size             Size
	TopSpeed         fp.FP8 // pixels/frame
	Acceleration     fp.FP8
	TurnRadius       int32
	TurnRate         fp.Direction // max heading change per frame
	HaltDistance     fp.FP8
	SupplyRequired   int32 // half-supply units, matching the original's halved representation
	SupplyProvided   int32
	MineralCost      int32
	GasCost          int32
	BuildTime        int32 // frames
	GroundWeapon     WeaponTypeID
	AirWeapon        WeaponTypeID
	Sight            int32 // 1..11 sight range bucket
	SpaceRequired    int32
	SpaceProvided    int32
	Subunit          bool // has a turret subunit
	Building         bool
	Flyer            bool
	TwoUnitsInOneEgg bool
	RegeneratesHP    bool // zerg organic regen
	RightClick       RightClickAction
	ReturnToIdle     OrderTypeID // order assigned when the order queue drains
	DefaultOrder     OrderTypeID // order newly-created units start with
	FootprintTiles   fp.XY       // footprint in tiles: a building's size, (1,1) for ordinary units, resources have their own (Mineral Field is 2x1)
	ArmorUpgradeID   int32       // Upgrades[] index raising this unit's armor; -1 if none
}

// NoUpgrade is the sentinel ArmorUpgradeID/WeaponType.UpgradeID value
// meaning "no researchable upgrade applies."
const NoUpgrade int32 = -1

// WeaponType is the static descriptor for one weapon kind.
type WeaponType struct {
	ID                 WeaponTypeID
	Name               string
	MinRange           int32
	MaxRange           int32
	DamageType         DamageType
	HitType            HitType
	InnerSplashRadius  int32
	MediumSplashRadius int32
	OuterSplashRadius  int32
	DamageAmount       int32
	DamageBonus        int32 // per upgrade level
	Cooldown           int32 // frames
	BulletCount        int32
	Flingy             FlingyTypeID
	UpgradeID          int32 // Upgrades[] index raising DamageBonus/reducing Cooldown; -1 if none
	MaxBounces         int32 // HitBounce only: remaining_bounces a fresh bullet starts with
}

// FlingyType binds a sprite to movement parameters.
type FlingyType struct {
	ID           FlingyTypeID
	TopSpeed     fp.FP8
	Acceleration fp.FP8
	TurnRate     fp.Direction
	HaltDistance fp.FP8
}

// UpgradeType is the static descriptor for a researchable upgrade.
type UpgradeType struct {
	ID              uint16
	Name            string
	MineralCostBase int32
	GasCostBase     int32
	TimeCostBase    int32
	MaxLevel        int32
}

// Tables is the full immutable static-data snapshot, loaded once and shared
// read-only by every World that uses it.
type Tables struct {
	Units    []UnitType
	Weapons  []WeaponType
	Flingies []FlingyType
	Upgrades []UpgradeType
}

// Unit looks up a unit type by ID. Panics on an out-of-range ID since a
// well-formed Tables always covers every UnitTypeID it defines — an
// out-of-range lookup is a programming error, not a runtime input error.
func (t *Tables) Unit(id UnitTypeID) *UnitType { return &t.Units[id] }

// Weapon looks up a weapon type by ID; WeaponNone has no backing row.
func (t *Tables) Weapon(id WeaponTypeID) *WeaponType {
	if id == WeaponNone {
		return nil
	}
	return &t.Weapons[id]
}
