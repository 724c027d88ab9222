package orders

import (
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/pool"
	"github.com/stonehollow/bwsim/internal/rng"
)

// sizeDamageModifier is the well-known size x damage-type percentage
// table: explosive weapons are weakest against small units and strongest
// against large ones, concussive is the mirror image, normal and
// ignore-armor always apply in full. Recovered from public StarCraft
// game-mechanics reference material — original_source/data_types.h
// defines the damage_type and unit_size_type enums but carries no
// populated ratio table, so the percentages themselves are not
// teacher-grounded (see DESIGN.md).
var sizeDamageModifier = [5][4]int32{
	// SizeIndependent, Small, Medium, Large
	{100, 100, 100, 100}, // DamageNone (unused)
	{100, 50, 75, 100},   // DamageExplosive
	{100, 100, 50, 25},   // DamageConcussive
	{100, 100, 100, 100}, // DamageNormal
	{100, 100, 100, 100}, // DamageIgnoreArmor
}

func sizeIndex(s data.Size) int {
	switch s {
	case data.SizeSmall:
		return 1
	case data.SizeMedium:
		return 2
	case data.SizeLarge:
		return 3
	default:
		return 0
	}
}

// splashFraction returns the percentage of full damage a target at
// pixel-distance d from the impact point receives under a weapon's hit
// type, per spec.md's inner/medium/outer splash discs at 100/50/25%.
func splashFraction(w *data.WeaponType, d int32) int32 {
	if w.HitType == data.HitNormal {
		return 100
	}
	switch {
	case d <= w.InnerSplashRadius:
		return 100
	case d <= w.MediumSplashRadius:
		return 50
	case d <= w.OuterSplashRadius:
		return 25
	default:
		return 0
	}
}

// Damage computes the final damage a single hit deals to a target,
// applying the size x damage-type modifier, splash falloff by distance
// from impact, the shooter's weapon-upgrade damage bonus, and armor
// reduction by the target's base armor plus its armor-upgrade level
// (clamped to a minimum of 1/8 of the raw amount, matching the
// original's armor-can't-reduce-below-one-eighth rule). Both upgrade
// levels are looked up by the caller (sim owns per-player upgrade
// state); DamageIgnoreArmor weapons bypass armor and its upgrade
// entirely, per spec.md §4.I.
func Damage(w *data.WeaponType, weaponUpgradeLevel, armorUpgradeLevel int32, targetSize data.Size, targetArmor int32, impactDist int32) int32 {
	if w.DamageType == data.DamageIgnoreArmor {
		targetArmor = 0
		armorUpgradeLevel = 0
	}
	raw := w.DamageAmount + w.DamageBonus*weaponUpgradeLevel
	raw = raw * splashFraction(w, impactDist) / 100
	raw = raw * sizeDamageModifier[w.DamageType][sizeIndex(targetSize)] / 100

	reduced := raw - (targetArmor + armorUpgradeLevel)
	minDamage := raw / 8
	if minDamage < 1 && raw > 0 {
		minDamage = 1
	}
	if reduced < minDamage {
		reduced = minDamage
	}
	if reduced < 0 {
		reduced = 0
	}
	return reduced
}

// ApplyDamage subtracts dmg from shields first, then hit points, matching
// spec.md's "shields absorb before hit points" rule. Returns the
// remaining hp/shields and whether the target died.
func ApplyDamage(hp, shields, dmg int32) (newHP, newShields int32, died bool) {
	if shields > 0 {
		if dmg <= shields {
			return hp, shields - dmg, false
		}
		dmg -= shields
		shields = 0
	}
	hp -= dmg
	if hp <= 0 {
		return 0, 0, true
	}
	return hp, shields, false
}

// DamageTieBreak resolves simultaneous-kill ordering ambiguity (two
// bullets landing the same frame that would each individually be lethal)
// by drawing from the shared PRNG stream, tagged with
// rng.SiteDamageTieBreak so replay diffs can attribute the draw.
func DamageTieBreak(lcg *rng.LCG, a, b pool.ID) pool.ID {
	if lcg.Bool(rng.SiteDamageTieBreak) {
		return a
	}
	return b
}
