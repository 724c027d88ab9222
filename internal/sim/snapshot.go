package sim

import (
	"github.com/stonehollow/bwsim/internal/action"
	"github.com/stonehollow/bwsim/internal/bullet"
	"github.com/stonehollow/bwsim/internal/creep"
	"github.com/stonehollow/bwsim/internal/economy"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/orders"
	"github.com/stonehollow/bwsim/internal/pool"
	"github.com/stonehollow/bwsim/internal/spatial"
	"github.com/stonehollow/bwsim/internal/sprite"
	"github.com/stonehollow/bwsim/internal/terrain"
)

// Snapshot is a copyable capture of an entire World, sufficient to
// Restore it to exactly this point: every arena, the terrain tiles, the
// spatial index entries, creep, per-player economy, the PRNG state, and
// the frame counter — spec.md §5's "Snapshotting is supported by copying
// the entire world, including all arenas, and re-linking intra-state
// pointers by their arena indices."
//
// Grounded on the teacher's single-struct save/load shape implied by
// gamestate.go (a flat, fully-owned state record with no external
// references); generalized here so every nested slice/pointer a Unit,
// Sprite, or Image carries (order queue, path, iscript call stack,
// image list) is deep-copied rather than aliased, since those are
// mutated in place frame to frame.
type Snapshot struct {
	Frame    int64
	GameType GameType

	Units   pool.Snapshot[Unit]
	Sprites pool.Snapshot[sprite.Sprite]
	Images  pool.Snapshot[sprite.Image]
	Bullets pool.Snapshot[bullet.Bullet]

	Tiles   []terrain.Tile
	Spatial map[spatial.Key]fp.Rect
	Creep   creep.Snapshot

	Players    []*economy.Player
	Selections map[int8]*action.Selection
	RNGState   uint32
}

// Snapshot captures w's entire current state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Frame:    w.CurrentFrame,
		GameType: w.GameType,

		Units:   w.Units.Snapshot(),
		Sprites: w.Sprites.Sprites.Snapshot(),
		Images:  w.Sprites.Images.Snapshot(),
		Bullets: w.Bullets.Bullets.Snapshot(),

		Tiles:   w.Map.Tiles(),
		Spatial: w.Spatial.Entries(),
		Creep:   w.Creep.Snapshot(),

		RNGState: w.LCG.State(),
	}
	for i := range s.Units.Items {
		s.Units.Items[i] = cloneUnit(s.Units.Items[i])
	}
	for i := range s.Sprites.Items {
		s.Sprites.Items[i] = cloneSprite(s.Sprites.Items[i])
	}
	for i := range s.Images.Items {
		s.Images.Items[i] = cloneImage(s.Images.Items[i])
	}
	s.Players = make([]*economy.Player, len(w.Players))
	for i, p := range w.Players {
		s.Players[i] = p.Clone()
	}
	s.Selections = w.Dispatcher.Snapshot()
	return s
}

// Restore replaces w's entire contents with s, which must have been
// produced by a Snapshot call against a World of the same capacities and
// player count. s itself is left untouched, so it may be Restored more
// than once.
func (w *World) Restore(s Snapshot) {
	w.CurrentFrame = s.Frame
	w.GameType = s.GameType

	units := s.Units
	units.Items = make([]Unit, len(s.Units.Items))
	for i, u := range s.Units.Items {
		units.Items[i] = cloneUnit(u)
	}
	w.Units.Restore(units)

	sprites := s.Sprites
	sprites.Items = make([]sprite.Sprite, len(s.Sprites.Items))
	for i, spr := range s.Sprites.Items {
		sprites.Items[i] = cloneSprite(spr)
	}
	w.Sprites.Sprites.Restore(sprites)

	images := s.Images
	images.Items = make([]sprite.Image, len(s.Images.Items))
	for i, img := range s.Images.Items {
		images.Items[i] = cloneImage(img)
	}
	w.Sprites.Images.Restore(images)

	w.Bullets.Bullets.Restore(s.Bullets)

	w.Map.SetTiles(s.Tiles)
	w.Spatial.Restore(s.Spatial)
	w.Creep.Restore(s.Creep)

	w.Players = make([]*economy.Player, len(s.Players))
	for i, p := range s.Players {
		w.Players[i] = p.Clone()
	}
	w.Dispatcher.Restore(s.Selections)

	w.LCG.Seed(s.RNGState)
}

func cloneUnit(u Unit) Unit {
	if len(u.Orders.Pending) > 0 {
		pending := make([]orders.Order, len(u.Orders.Pending))
		copy(pending, u.Orders.Pending)
		u.Orders.Pending = pending
	}
	if u.Mover.Path != nil {
		p := *u.Mover.Path
		if len(p.RegionSeq) > 0 {
			seq := make([]int32, len(p.RegionSeq))
			copy(seq, p.RegionSeq)
			p.RegionSeq = seq
		}
		if len(p.Waypoints) > 0 {
			wp := make([]fp.XY, len(p.Waypoints))
			copy(wp, p.Waypoints)
			p.Waypoints = wp
		}
		u.Mover.Path = &p
	}
	return u
}

func cloneSprite(s sprite.Sprite) sprite.Sprite {
	if len(s.Images) > 0 {
		imgs := make([]pool.ID, len(s.Images))
		copy(imgs, s.Images)
		s.Images = imgs
	}
	return s
}

func cloneImage(img sprite.Image) sprite.Image {
	img.VM = img.VM.Clone()
	return img
}
