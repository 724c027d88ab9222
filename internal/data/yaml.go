package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/fp"
)

// yamlUnit/yamlWeapon mirror UnitType/WeaponType with plain ints instead of
// fp.FP8, since YAML fixtures are authored by hand (tests, tools) and
// shouldn't need to know the fixed-point scale — the loader applies
// fp.FromRaw itself, the same cast the binary .dat loader performs.
type yamlUnit struct {
	ID             UnitTypeID `yaml:"id"`
	Name           string     `yaml:"name"`
	HitPoints      int32      `yaml:"hit_points"`
	ShieldPoints   int32      `yaml:"shield_points"`
	MaxEnergy      int32      `yaml:"max_energy"`
	Armor          int32      `yaml:"armor"`
	Size           Size       `yaml:"size"`
	TopSpeedRaw    int32      `yaml:"top_speed_raw"`
	AccelRaw       int32      `yaml:"acceleration_raw"`
	TurnRate       int8       `yaml:"turn_rate"`
	SupplyRequired int32      `yaml:"supply_required"`
	SupplyProvided int32      `yaml:"supply_provided"`
	MineralCost    int32      `yaml:"mineral_cost"`
	GasCost        int32      `yaml:"gas_cost"`
	BuildTime      int32      `yaml:"build_time"`
	GroundWeapon   WeaponTypeID `yaml:"ground_weapon"`
	AirWeapon      WeaponTypeID `yaml:"air_weapon"`
	Sight          int32      `yaml:"sight"`
	Building       bool       `yaml:"building"`
	Flyer          bool       `yaml:"flyer"`
	RegeneratesHP  bool       `yaml:"regenerates_hp"`
	RightClick     RightClickAction `yaml:"right_click"`
	ReturnToIdle   OrderTypeID `yaml:"return_to_idle"`
	DefaultOrder   OrderTypeID `yaml:"default_order"`
	FootprintW     int32       `yaml:"footprint_w"`
	FootprintH     int32       `yaml:"footprint_h"`
}

type yamlWeapon struct {
	ID                 WeaponTypeID `yaml:"id"`
	Name               string       `yaml:"name"`
	MinRange           int32        `yaml:"min_range"`
	MaxRange           int32        `yaml:"max_range"`
	DamageType         DamageType   `yaml:"damage_type"`
	HitType            HitType      `yaml:"hit_type"`
	InnerSplashRadius  int32        `yaml:"inner_splash_radius"`
	MediumSplashRadius int32        `yaml:"medium_splash_radius"`
	OuterSplashRadius  int32        `yaml:"outer_splash_radius"`
	DamageAmount       int32        `yaml:"damage_amount"`
	DamageBonus        int32        `yaml:"damage_bonus"`
	Cooldown           int32        `yaml:"cooldown"`
	BulletCount        int32        `yaml:"bullet_count"`
}

type yamlTables struct {
	Units   []yamlUnit   `yaml:"units"`
	Weapons []yamlWeapon `yaml:"weapons"`
}

// LoadYAML parses a fixture-format Tables document. Used by tests and by
// tools that want to tweak balance constants without touching Go source.
func LoadYAML(raw []byte) (*Tables, error) {
	var doc yamlTables
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: yaml: %v", errs.ErrInvalidInput, err)
	}

	maxUnit := UnitTypeID(0)
	for _, u := range doc.Units {
		if u.ID > maxUnit {
			maxUnit = u.ID
		}
	}
	maxWeapon := WeaponTypeID(0)
	for _, w := range doc.Weapons {
		if w.ID > maxWeapon {
			maxWeapon = w.ID
		}
	}

	t := &Tables{
		Units:   make([]UnitType, maxUnit+1),
		Weapons: make([]WeaponType, maxWeapon+1),
	}
	for _, u := range doc.Units {
		t.Units[u.ID] = UnitType{
			ID: u.ID, Name: u.Name,
			HitPoints: u.HitPoints, ShieldPoints: u.ShieldPoints, MaxEnergy: u.MaxEnergy,
			Armor: u.Armor, Size: u.Size,
			TopSpeed: fp.FromRaw(u.TopSpeedRaw), Acceleration: fp.FromRaw(u.AccelRaw),
			TurnRate:       fp.Direction(u.TurnRate),
			SupplyRequired: u.SupplyRequired, SupplyProvided: u.SupplyProvided,
			MineralCost: u.MineralCost, GasCost: u.GasCost, BuildTime: u.BuildTime,
			GroundWeapon: u.GroundWeapon, AirWeapon: u.AirWeapon,
			Sight: u.Sight, Building: u.Building, Flyer: u.Flyer,
			RegeneratesHP: u.RegeneratesHP, RightClick: u.RightClick,
			ReturnToIdle: u.ReturnToIdle, DefaultOrder: u.DefaultOrder,
			FootprintTiles: fp.XY{X: u.FootprintW, Y: u.FootprintH},
		}
	}
	for _, w := range doc.Weapons {
		t.Weapons[w.ID] = WeaponType{
			ID: w.ID, Name: w.Name,
			MinRange: w.MinRange, MaxRange: w.MaxRange,
			DamageType: w.DamageType, HitType: w.HitType,
			InnerSplashRadius: w.InnerSplashRadius, MediumSplashRadius: w.MediumSplashRadius,
			OuterSplashRadius: w.OuterSplashRadius,
			DamageAmount:      w.DamageAmount, DamageBonus: w.DamageBonus,
			Cooldown: w.Cooldown, BulletCount: w.BulletCount,
		}
	}
	return t, nil
}

// LoadYAMLFile reads and parses a fixture file from disk.
func LoadYAMLFile(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errs.ErrInvalidInput, path, err)
	}
	return LoadYAML(raw)
}
