// Package vision implements fog-of-war reveal: precomputed sight-radius
// disc masks, per-player Visible/Explored bit updates, and shared-vision
// fan-out — spec.md §4.K.
//
// Grounded on the teacher's weather.go day/night visibility attenuation
// and chunk.go's tile-flag bitmask storage
// (_examples/Lallassu-snejk/internal/game/weather.go,
// _examples/Lallassu-snejk/internal/game/chunk.go), generalized from a
// single global lighting level into per-player sight discs over the
// terrain's Visible/Explored bitmasks.
package vision

import (
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/terrain"
)

// maxSight is the largest sight-range bucket a unit type's Sight field
// may carry (data.UnitType.Sight is documented as a 1..11 bucket).
const maxSight = 11

// discOffsets[r] lists the tile offsets, relative to a unit's own tile,
// that lie within sight-range bucket r — a circular disc in tile space,
// precomputed once at package init so Reveal never recomputes the
// geometry per unit per tick.
var discOffsets [maxSight + 1][]fp.XY

func init() {
	for r := 1; r <= maxSight; r++ {
		discOffsets[r] = buildDisc(int32(r))
	}
}

func buildDisc(radius int32) []fp.XY {
	var out []fp.XY
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				out = append(out, fp.XY{X: dx, Y: dy})
			}
		}
	}
	return out
}

// Elevation attenuation, per spec.md: a viewer on low ground cannot see
// onto tiles at strictly higher elevation beyond half its sight radius,
// matching the original's "can't see over a cliff" rule at range.
func attenuated(viewerElev, targetElev terrain.Elevation, dist, radius int32) bool {
	return targetElev > viewerElev && dist > radius/2
}

// Revealer owns the terrain map and the set of shared-vision fan-out
// groups (player i's reveal also marks every player in
// SharedVision[i]).
type Revealer struct {
	Map           *terrain.Map
	SharedVision  [][]int // SharedVision[owner] = additional players who see what owner sees
}

// Reveal marks every tile within the sight disc for sightBucket as
// visible to owner (and to owner's shared-vision partners), and marks
// it explored permanently. Out-of-bounds offsets are skipped rather
// than clamped, matching spec.md's "sight discs are clipped to the map,
// never wrapped or mirrored" edge case.
func (r *Revealer) Reveal(owner int, unitTile fp.XY, sightBucket int32) {
	if sightBucket < 1 {
		sightBucket = 1
	}
	if sightBucket > maxSight {
		sightBucket = maxSight
	}
	viewerElev := terrain.ElevationLow
	if r.Map.InBounds(unitTile) {
		viewerElev = r.Map.Tile(unitTile).Elevation
	}

	owners := append([]int{owner}, r.sharedPartners(owner)...)

	for _, off := range discOffsets[sightBucket] {
		p := fp.XY{X: unitTile.X + off.X, Y: unitTile.Y + off.Y}
		if !r.Map.InBounds(p) {
			continue
		}
		dist := fp.XYLength(off)
		tile := r.Map.Tile(p)
		if attenuated(viewerElev, tile.Elevation, dist, sightBucket) {
			continue
		}
		for _, o := range owners {
			tile.Visible |= 1 << uint(o)
			tile.Explored |= 1 << uint(o)
		}
	}
}

func (r *Revealer) sharedPartners(owner int) []int {
	if owner < 0 || owner >= len(r.SharedVision) {
		return nil
	}
	return r.SharedVision[owner]
}

// ClearVisible zeroes the Visible bitmask for every tile on the map
// (called once at the start of each frame's vision pass, before
// Reveal is called for every living unit) — Explored is never cleared.
func ClearVisible(m *terrain.Map) {
	for y := int32(0); y < m.Height; y++ {
		for x := int32(0); x < m.Width; x++ {
			p := fp.XY{X: x, Y: y}
			t := m.Tile(p)
			t.Visible = 0
		}
	}
}
