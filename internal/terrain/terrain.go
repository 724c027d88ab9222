// Package terrain implements the tile grid, the tile->group->mega-tile->
// mini-tile walkability cascade, and the region graph used as the coarse
// pathing graph. Grounded on the teacher's chunk/worldgen pipeline
// (chunk.go, worldgen.go), which already partitions a pixel world into
// fixed-size chunks generated once and repaired globally afterward —
// generalized here from "city chunk of pixels" to "tile of mini-tiles,"
// keeping the same two-pass generate-then-repair shape (see Map.BuildRegions).
package terrain

import (
	"fmt"

	"github.com/stonehollow/bwsim/internal/errs"
	"github.com/stonehollow/bwsim/internal/fp"
)

// TileSize is the pixel width/height of one tile; MiniTileSize is the
// pixel width/height of one of the 4x4 mini-tiles inside it.
const (
	TileSize     = 32
	MiniTilesPer = 4 // 4x4 mini-tiles per tile, 8px each
	MiniTileSize = TileSize / MiniTilesPer
)

// Elevation levels, low to very high.
type Elevation uint8

const (
	ElevationLow Elevation = iota
	ElevationMiddle
	ElevationHigh
	ElevationVeryHigh
)

// TileFlags carries the per-tile boolean attributes.
type TileFlags uint16

const (
	FlagWalkable TileFlags = 1 << iota
	FlagBuildable
	FlagCreep
	FlagOccupied
	FlagPartiallyWalkable
	FlagTemporary
)

// MiniTile is one 8x8 walkability cell.
type MiniTile struct {
	Walkable  bool
	Elevation Elevation
}

// Tile is one 32x32 record: flags plus per-player visible/explored bits and
// its 4x4 mini-tile cascade.
type Tile struct {
	Flags     TileFlags
	Elevation Elevation
	Visible   uint32 // bit i set => player i currently sees this tile
	Explored  uint32 // bit i set => player i has ever seen this tile
	Minis     [MiniTilesPer * MiniTilesPer]MiniTile
	RegionID  int32 // -1 until assigned by BuildRegions
}

func (t *Tile) Walkable() bool      { return t.Flags&FlagWalkable != 0 }
func (t *Tile) Buildable() bool     { return t.Flags&FlagBuildable != 0 }
func (t *Tile) HasCreep() bool      { return t.Flags&FlagCreep != 0 }
func (t *Tile) Occupied() bool      { return t.Flags&FlagOccupied != 0 }
func (t *Tile) VisibleTo(p int) bool  { return t.Visible&(1<<uint(p)) != 0 }
func (t *Tile) ExploredBy(p int) bool { return t.Explored&(1<<uint(p)) != 0 }

// Region is a connected component of walkable terrain: a vertex in the
// coarse pathing graph.
type Region struct {
	ID                int32
	Area              int32 // walkable mini-tile count
	TileCount         int32
	Center            fp.XY // in tiles
	Neighbors         []int32
	WalkableNeighbors []int32
	Walkable          bool
}

// Map is the full tile grid plus its derived region graph.
type Map struct {
	Width, Height int32 // in tiles
	tiles         []Tile
	regions       []Region
	playerCount   int
}

// NewMap allocates a width x height (in tiles) map with every tile
// unwalkable and unassigned, ready for a generator to paint it.
func NewMap(width, height int32, playerCount int) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: map dimensions must be positive, got %dx%d", errs.ErrInvalidInput, width, height)
	}
	m := &Map{Width: width, Height: height, playerCount: playerCount}
	m.tiles = make([]Tile, width*height)
	for i := range m.tiles {
		m.tiles[i].RegionID = -1
	}
	return m, nil
}

func (m *Map) InBounds(p fp.XY) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

func (m *Map) index(p fp.XY) int32 { return p.Y*m.Width + p.X }

// Tile returns the tile at tile-coordinate p. Panics if out of bounds;
// callers that accept untrusted coordinates must check InBounds first.
func (m *Map) Tile(p fp.XY) *Tile { return &m.tiles[m.index(p)] }

// SetWalkable paints every mini-tile of tile p as walkable/unwalkable and
// keeps the tile-level FlagWalkable in sync (a tile is walkable iff at
// least one mini-tile is, matching the original's "partially walkable"
// tile concept).
func (m *Map) SetWalkable(p fp.XY, walkable bool) {
	t := m.Tile(p)
	for i := range t.Minis {
		t.Minis[i].Walkable = walkable
	}
	if walkable {
		t.Flags |= FlagWalkable
		t.Flags &^= FlagPartiallyWalkable
	} else {
		t.Flags &^= FlagWalkable
	}
}

// SetBuildable sets or clears FlagBuildable on tile p.
func (m *Map) SetBuildable(p fp.XY, buildable bool) {
	t := m.Tile(p)
	if buildable {
		t.Flags |= FlagBuildable
	} else {
		t.Flags &^= FlagBuildable
	}
}

// SetElevation sets the tile (and all its mini-tiles) to the given
// elevation level, used by the vision component's "higher sees lower"
// rule.
func (m *Map) SetElevation(p fp.XY, e Elevation) {
	t := m.Tile(p)
	t.Elevation = e
	for i := range t.Minis {
		t.Minis[i].Elevation = e
	}
}

// PixelRect returns the pixel-space rectangle covered by tile p.
func PixelRect(p fp.XY) fp.Rect {
	return fp.Rect{
		From: fp.XY{X: p.X * TileSize, Y: p.Y * TileSize},
		To:   fp.XY{X: (p.X + 1) * TileSize, Y: (p.Y + 1) * TileSize},
	}
}

// PixelToTile converts a pixel-space point to its containing tile
// coordinate.
func PixelToTile(px fp.XY) fp.XY {
	return fp.XY{X: floorDiv(px.X, TileSize), Y: floorDiv(px.Y, TileSize)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
	}
	return q
}

// Regions returns the built region graph; empty until BuildRegions runs.
func (m *Map) Regions() []Region { return m.regions }

// Tiles returns a copy of every tile, in row-major order, for
// snapshotting (internal/sim.World.Snapshot).
func (m *Map) Tiles() []Tile {
	out := make([]Tile, len(m.tiles))
	copy(out, m.tiles)
	return out
}

// SetTiles replaces every tile in place from a slice previously
// produced by Tiles, for snapshot restore. Panics if len(tiles) does
// not match the map's own tile count.
func (m *Map) SetTiles(tiles []Tile) {
	if len(tiles) != len(m.tiles) {
		panic("terrain: SetTiles length mismatch")
	}
	copy(m.tiles, tiles)
}

// RegionOf returns the region index a tile belongs to, or -1 if the map's
// regions have not been built or the tile is unwalkable.
func (m *Map) RegionOf(p fp.XY) int32 {
	if !m.InBounds(p) {
		return -1
	}
	return m.Tile(p).RegionID
}
