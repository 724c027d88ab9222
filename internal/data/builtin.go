package data

import "github.com/stonehollow/bwsim/internal/fp"

// Default returns a self-consistent, hand-built Tables covering the unit
// and weapon IDs this implementation drives end to end. Values are drawn
// from public StarCraft game-mechanics reference data (hit points, costs,
// cooldowns) rather than recovered from the original_source/ headers,
// which carry the struct layout but not the populated .dat rows (those are
// binary data files, not source) — see DESIGN.md.
func Default() *Tables {
	t := &Tables{
		Units:    make([]UnitType, unitTypeCount),
		Weapons:  make([]WeaponType, weaponTypeCount),
		Flingies: make([]FlingyType, 4),
		Upgrades: []UpgradeType{
			{ID: 0, Name: "Terran Infantry Weapons", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 160, MaxLevel: 3},
			{ID: 1, Name: "Metabolic Boost", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 1200, MaxLevel: 1},
			{ID: 2, Name: "Terran Infantry Armor", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 160, MaxLevel: 3},
			{ID: 3, Name: "Terran Vehicle Weapons", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 160, MaxLevel: 3},
			{ID: 4, Name: "Terran Vehicle Plating", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 160, MaxLevel: 3},
			{ID: 5, Name: "Zerg Melee Attacks", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 160, MaxLevel: 3},
			{ID: 6, Name: "Zerg Missile Attacks", MineralCostBase: 100, GasCostBase: 100, TimeCostBase: 160, MaxLevel: 3},
			{ID: 7, Name: "Zerg Carapace", MineralCostBase: 150, GasCostBase: 150, TimeCostBase: 160, MaxLevel: 3},
		},
	}

	t.Units[UnitMarine] = UnitType{
		ID: UnitMarine, Name: "Marine",
		HitPoints: 40, Armor: 0, Size: SizeMedium,
		TopSpeed: fp.FromRaw(256), Acceleration: fp.FromRaw(27), TurnRate: 32,
		SupplyRequired: 2, SupplyProvided: 0,
		MineralCost: 50, GasCost: 0, BuildTime: 360,
		GroundWeapon: WeaponGaussRifle, AirWeapon: WeaponGaussRifle,
		Sight: 7, RightClick: RightClickAttack,
		ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: 2,
	}
	t.Units[UnitSCV] = UnitType{
		ID: UnitSCV, Name: "SCV",
		HitPoints: 60, Armor: 0, Size: SizeSmall,
		TopSpeed: fp.FromRaw(320), Acceleration: fp.FromRaw(27), TurnRate: 32,
		SupplyRequired: 2,
		MineralCost:    50, BuildTime: 300,
		Sight: 7, RightClick: RightClickMoveToMinerals,
		ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitVulture] = UnitType{
		ID: UnitVulture, Name: "Vulture",
		HitPoints: 80, Armor: 0, Size: SizeSmall,
		TopSpeed: fp.FromRaw(426), Acceleration: fp.FromRaw(40), TurnRate: 40,
		SupplyRequired: 4, MineralCost: 75, GasCost: 0, BuildTime: 450,
		GroundWeapon: WeaponFragmentationGrenade, AirWeapon: WeaponNone,
		Sight: 8, RightClick: RightClickAttack,
		ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: 4,
	}
	t.Units[UnitCommandCenter] = UnitType{
		ID: UnitCommandCenter, Name: "Command Center",
		HitPoints: 1500, Armor: 1, Size: SizeLarge, Building: true,
		SupplyProvided: 20, MineralCost: 400, BuildTime: 1800,
		Sight: 9, RightClick: RightClickNoCommandCard,
		ReturnToIdle: OrderComputerAI, DefaultOrder: OrderComputerAI,
		FootprintTiles: fp.XY{X: 4, Y: 3}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitSupplyDepot] = UnitType{
		ID: UnitSupplyDepot, Name: "Supply Depot",
		HitPoints: 500, Armor: 1, Size: SizeLarge, Building: true,
		SupplyProvided: 16, MineralCost: 100, BuildTime: 400,
		Sight: 7, RightClick: RightClickNoCommandCard,
		ReturnToIdle: OrderComputerAI, DefaultOrder: OrderComputerAI,
		FootprintTiles: fp.XY{X: 3, Y: 2}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitBarracks] = UnitType{
		ID: UnitBarracks, Name: "Barracks",
		HitPoints: 1000, Armor: 1, Size: SizeLarge, Building: true,
		MineralCost: 150, BuildTime: 1200,
		Sight: 7, RightClick: RightClickNoCommandCard,
		ReturnToIdle: OrderComputerAI, DefaultOrder: OrderComputerAI,
		FootprintTiles: fp.XY{X: 4, Y: 3}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitMineralField] = UnitType{
		ID: UnitMineralField, Name: "Mineral Field",
		HitPoints: 1, Size: SizeIndependent,
		RightClick: RightClickNoCommandCard, ReturnToIdle: OrderNone, DefaultOrder: OrderNone,
		FootprintTiles: fp.XY{X: 2, Y: 1}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitLarva] = UnitType{
		ID: UnitLarva, Name: "Larva",
		HitPoints: 25, Size: SizeSmall, RegeneratesHP: true,
		TopSpeed: 0, Sight: 4,
		RightClick: RightClickNoCommandCard, ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitDrone] = UnitType{
		ID: UnitDrone, Name: "Drone",
		HitPoints: 40, Size: SizeSmall, RegeneratesHP: true,
		TopSpeed: fp.FromRaw(282), Acceleration: fp.FromRaw(27), TurnRate: 32,
		SupplyRequired: 2, MineralCost: 50, BuildTime: 300,
		Sight: 7, RightClick: RightClickMoveToMinerals,
		ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitZergling] = UnitType{
		ID: UnitZergling, Name: "Zergling",
		HitPoints: 35, Size: SizeSmall, RegeneratesHP: true,
		TopSpeed: fp.FromRaw(442), Acceleration: fp.FromRaw(56), TurnRate: 50,
		SupplyRequired: 1, MineralCost: 25, BuildTime: 420, TwoUnitsInOneEgg: true,
		GroundWeapon: WeaponClaws, Sight: 5, RightClick: RightClickAttack,
		ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: 7,
	}
	t.Units[UnitHydralisk] = UnitType{
		ID: UnitHydralisk, Name: "Hydralisk",
		HitPoints: 80, Size: SizeMedium, RegeneratesHP: true,
		TopSpeed: fp.FromRaw(320), Acceleration: fp.FromRaw(47), TurnRate: 45,
		SupplyRequired: 2, MineralCost: 75, GasCost: 25, BuildTime: 600,
		GroundWeapon: WeaponSpines, AirWeapon: WeaponLashingSpines, Sight: 6,
		RightClick: RightClickAttack, ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: 7,
	}
	t.Units[UnitOverlord] = UnitType{
		ID: UnitOverlord, Name: "Overlord",
		HitPoints: 200, Size: SizeLarge, Flyer: true, RegeneratesHP: true,
		TopSpeed: fp.FromRaw(133), Acceleration: fp.FromRaw(20), TurnRate: 20,
		SupplyProvided: 16, MineralCost: 100, BuildTime: 600,
		Sight: 11, RightClick: RightClickNoCommandCard,
		ReturnToIdle: OrderPlayerGuard, DefaultOrder: OrderPlayerGuard,
		FootprintTiles: fp.XY{X: 1, Y: 1}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitHatchery] = UnitType{
		ID: UnitHatchery, Name: "Hatchery",
		HitPoints: 1250, Armor: 1, Size: SizeLarge, Building: true, RegeneratesHP: true,
		MineralCost: 300, BuildTime: 1800,
		Sight: 9, RightClick: RightClickNoCommandCard,
		ReturnToIdle: OrderComputerAI, DefaultOrder: OrderComputerAI,
		FootprintTiles: fp.XY{X: 4, Y: 3}, ArmorUpgradeID: NoUpgrade,
	}
	t.Units[UnitSpawningPool] = UnitType{
		ID: UnitSpawningPool, Name: "Spawning Pool",
		HitPoints: 750, Armor: 1, Size: SizeLarge, Building: true, RegeneratesHP: true,
		MineralCost: 200, BuildTime: 1200,
		Sight: 7, RightClick: RightClickNoCommandCard,
		ReturnToIdle: OrderComputerAI, DefaultOrder: OrderComputerAI,
		FootprintTiles: fp.XY{X: 3, Y: 2}, ArmorUpgradeID: NoUpgrade,
	}

	t.Weapons[WeaponGaussRifle] = WeaponType{
		ID: WeaponGaussRifle, Name: "Gauss Rifle",
		MinRange: 0, MaxRange: 160, DamageType: DamageNormal, HitType: HitNormal,
		DamageAmount: 6, DamageBonus: 1, Cooldown: 15, BulletCount: 1, UpgradeID: 0,
	}
	t.Weapons[WeaponFragmentationGrenade] = WeaponType{
		ID: WeaponFragmentationGrenade, Name: "Fragmentation Grenade",
		MinRange: 32, MaxRange: 160, DamageType: DamageExplosive, HitType: HitRadialSplash,
		InnerSplashRadius: 16, MediumSplashRadius: 32, OuterSplashRadius: 48,
		DamageAmount: 20, DamageBonus: 2, Cooldown: 30, BulletCount: 1, UpgradeID: 3,
	}
	t.Weapons[WeaponSpines] = WeaponType{
		ID: WeaponSpines, Name: "Needle Spines",
		MinRange: 0, MaxRange: 160, DamageType: DamageNormal, HitType: HitNormal,
		DamageAmount: 10, DamageBonus: 1, Cooldown: 15, BulletCount: 1, UpgradeID: 6,
	}
	t.Weapons[WeaponClaws] = WeaponType{
		ID: WeaponClaws, Name: "Claws",
		MinRange: 0, MaxRange: 15, DamageType: DamageNormal, HitType: HitNormal,
		DamageAmount: 5, DamageBonus: 1, Cooldown: 8, BulletCount: 1, UpgradeID: 5,
	}
	t.Weapons[WeaponLashingSpines] = WeaponType{
		ID: WeaponLashingSpines, Name: "Lashing Spines",
		MinRange: 0, MaxRange: 160, DamageType: DamageNormal, HitType: HitBounce,
		DamageAmount: 6, DamageBonus: 1, Cooldown: 15, BulletCount: 1, UpgradeID: 6, MaxBounces: 2,
	}

	return t
}
