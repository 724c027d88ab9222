package data

import (
	"encoding/binary"
	"fmt"

	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/fp"
)

// datColumn describes one little-endian, fixed-width column of a packed
// column-major .dat table, per spec.md §6: "offsets are implicit from the
// column count and integer widths."
type datColumn struct {
	width int // 1, 2, or 4 bytes
}

// readColumnU32 reads record count values of the given column width,
// widening to u32, starting at byte offset off within raw.
func readColumnU32(raw []byte, off, width, count int) ([]uint32, int, error) {
	need := width * count
	if off+need > len(raw) {
		return nil, off, fmt.Errorf("%w: .dat column truncated at offset %d", errs.ErrInvalidInput, off)
	}
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		p := raw[off+i*width:]
		switch width {
		case 1:
			out[i] = uint32(p[0])
		case 2:
			out[i] = uint32(binary.LittleEndian.Uint16(p))
		case 4:
			out[i] = binary.LittleEndian.Uint32(p)
		default:
			return nil, off, fmt.Errorf("%w: unsupported .dat column width %d", errs.ErrUnsupported, width)
		}
	}
	return out, off + need, nil
}

// unitsDatLayout is the column order this implementation reads from a
// units.dat-shaped table: (width, field). Only the columns this kernel
// actually consumes are parsed; trailing columns in a real units.dat are
// skipped by the caller via recordCount*width arithmetic, matching the
// original loader's "cast only what you use" style.
var unitsDatLayout = []struct {
	width int
	name  string
}{
	{4, "hit_points"},
	{4, "shield_points"},
	{4, "armor"},
	{1, "size"},
	{2, "top_speed_raw"},
	{2, "acceleration_raw"},
	{1, "turn_rate"},
	{4, "supply_required"},
	{4, "mineral_cost"},
	{4, "gas_cost"},
	{4, "build_time"},
	{2, "ground_weapon"},
	{2, "air_weapon"},
	{4, "sight"},
}

// LoadUnitsDat parses a packed column-major units.dat-shaped byte stream
// into hit points, shields, armor, size, speed, acceleration, turn rate,
// supply/cost/build time, weapons, and sight for recordCount unit types, in
// UnitTypeID order 0..recordCount-1. Unknown/extra trailing columns beyond
// unitsDatLayout are not read, matching spec.md §6's "kernel casts integer
// columns into the rich types via a small cast table" — this is that cast
// table made explicit.
func LoadUnitsDat(raw []byte, recordCount int) ([]UnitType, error) {
	if recordCount <= 0 {
		return nil, fmt.Errorf("%w: units.dat record count must be positive", errs.ErrInvalidInput)
	}
	cols := make(map[string][]uint32, len(unitsDatLayout))
	off := 0
	var err error
	for _, c := range unitsDatLayout {
		var vals []uint32
		vals, off, err = readColumnU32(raw, off, c.width, recordCount)
		if err != nil {
			return nil, err
		}
		cols[c.name] = vals
	}

	units := make([]UnitType, recordCount)
	for i := 0; i < recordCount; i++ {
		units[i] = UnitType{
			ID:             UnitTypeID(i),
			HitPoints:      int32(cols["hit_points"][i]),
			ShieldPoints:   int32(cols["shield_points"][i]),
			Armor:          int32(cols["armor"][i]),
			Size:           Size(cols["size"][i]),
			TopSpeed:       fp.FromRaw(int32(int16(cols["top_speed_raw"][i]))),
			Acceleration:   fp.FromRaw(int32(int16(cols["acceleration_raw"][i]))),
			TurnRate:       fp.Direction(int8(cols["turn_rate"][i])),
			SupplyRequired: int32(cols["supply_required"][i]),
			MineralCost:    int32(cols["mineral_cost"][i]),
			GasCost:        int32(cols["gas_cost"][i]),
			BuildTime:      int32(cols["build_time"][i]),
			GroundWeapon:   WeaponTypeID(cols["ground_weapon"][i]),
			AirWeapon:      WeaponTypeID(cols["air_weapon"][i]),
			Sight:          int32(cols["sight"][i]),
		}
	}
	return units, nil
}

// weaponsDatLayout mirrors unitsDatLayout for weapons.dat-shaped tables.
var weaponsDatLayout = []struct {
	width int
	name  string
}{
	{1, "damage_type"},
	{1, "hit_type"},
	{4, "min_range"},
	{4, "max_range"},
	{4, "inner_splash_radius"},
	{4, "medium_splash_radius"},
	{4, "outer_splash_radius"},
	{4, "damage_amount"},
	{4, "damage_bonus"},
	{4, "cooldown"},
	{1, "bullet_count"},
}

// LoadWeaponsDat parses a packed column-major weapons.dat-shaped byte
// stream into WeaponType rows, in WeaponTypeID order.
func LoadWeaponsDat(raw []byte, recordCount int) ([]WeaponType, error) {
	if recordCount <= 0 {
		return nil, fmt.Errorf("%w: weapons.dat record count must be positive", errs.ErrInvalidInput)
	}
	cols := make(map[string][]uint32, len(weaponsDatLayout))
	off := 0
	var err error
	for _, c := range weaponsDatLayout {
		var vals []uint32
		vals, off, err = readColumnU32(raw, off, c.width, recordCount)
		if err != nil {
			return nil, err
		}
		cols[c.name] = vals
	}

	weapons := make([]WeaponType, recordCount)
	for i := 0; i < recordCount; i++ {
		weapons[i] = WeaponType{
			ID:                 WeaponTypeID(i),
			DamageType:         DamageType(cols["damage_type"][i]),
			HitType:            HitType(cols["hit_type"][i]),
			MinRange:           int32(cols["min_range"][i]),
			MaxRange:           int32(cols["max_range"][i]),
			InnerSplashRadius:  int32(cols["inner_splash_radius"][i]),
			MediumSplashRadius: int32(cols["medium_splash_radius"][i]),
			OuterSplashRadius:  int32(cols["outer_splash_radius"][i]),
			DamageAmount:       int32(cols["damage_amount"][i]),
			DamageBonus:        int32(cols["damage_bonus"][i]),
			Cooldown:           int32(cols["cooldown"][i]),
			BulletCount:        int32(cols["bullet_count"][i]),
		}
	}
	return weapons, nil
}
