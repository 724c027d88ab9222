// Package sprite implements the sprite/image layer: z-ordered sprites,
// each owning a small intrusive list of layered images, and the images
// each running a tiny byte-coded animation ("iscript") program stepped
// once per tick.
//
// Grounded on the teacher's particle system
// (_examples/Lallassu-snejk/internal/game/particle.go,
// particle_spawn.go, particle_update.go), which already splits "spawn a
// visual effect" from "update it once per tick until it expires" across
// two files — generalized here from a flat particle struct into a
// sprite-owns-images tree driven by a bytecode program instead of a
// hardcoded per-kind switch.
package sprite

import (
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/pool"
)

// TypeID names a sprite type (binds default images, z-order class).
type TypeID uint16

// ImageTypeID names an image type (binds an iscript Program).
type ImageTypeID uint16

// VisibilityFlags is a per-player bitmask of which players currently see
// this sprite's owning entity.
type VisibilityFlags uint32

// Sprite is one z-ordered visual entity: a position, an owner, and an
// ordered list of Image IDs (front to back).
type Sprite struct {
	Type       TypeID
	Owner      int8
	Pos        fp.XY
	Elevation  int32
	Visibility VisibilityFlags
	Selected   bool
	Images     []pool.ID // front-to-back; Images[0] is the "main image"
}

// MainImage returns the sprite's primary image ID, or pool.NilID if the
// sprite has no images left (RemoveImage releases a sprite as soon as its
// last image is removed).
func (s *Sprite) MainImage() pool.ID {
	if len(s.Images) == 0 {
		return pool.NilID
	}
	return s.Images[0]
}

// Image is one layered image: its iscript cursor and the frame it
// currently displays.
type Image struct {
	Type       ImageTypeID
	Sprite     pool.ID
	Offset     fp.XY
	FrameIndex int32
	Hidden     bool
	Flipped    bool

	VM VMState
}

// Pool owns the sprite and image arenas together, since an image always
// belongs to exactly one sprite and most operations (spawn overlay,
// remove-on-end, free-when-empty) touch both.
type Pool struct {
	Sprites *pool.Arena[Sprite]
	Images  *pool.Arena[Image]
}

// NewPool allocates sprite/image arenas at the given capacities (spec.md
// §3.2: ~2500 sprites, ~5000 images).
func NewPool(spriteCapacity, imageCapacity int) *Pool {
	return &Pool{
		Sprites: pool.New[Sprite](spriteCapacity),
		Images:  pool.New[Image](imageCapacity),
	}
}

// NewSprite allocates a sprite with one main image running program for
// imgType, at pos.
func (p *Pool) NewSprite(sType TypeID, imgType ImageTypeID, owner int8, posPx fp.XY, prog *Program) (pool.ID, error) {
	spr, sid, err := p.Sprites.Allocate()
	if err != nil {
		return pool.NilID, err
	}
	spr.Type = sType
	spr.Owner = owner
	spr.Pos = posPx

	imgID, err := p.addImage(sid, imgType, prog, fp.XY{})
	if err != nil {
		p.Sprites.Release(sid)
		return pool.NilID, err
	}
	spr.Images = append(spr.Images, imgID)
	return sid, nil
}

func (p *Pool) addImage(sprite pool.ID, imgType ImageTypeID, prog *Program, offset fp.XY) (pool.ID, error) {
	img, iid, err := p.Images.Allocate()
	if err != nil {
		return pool.NilID, err
	}
	img.Type = imgType
	img.Sprite = sprite
	img.Offset = offset
	img.VM = NewVMState(prog)
	return iid, nil
}

// AddOverlay spawns a new image at the front of sprite's list as an
// overlay, or at the back when underlay is true, running the given program — the iscript `imgol`/`imgulnextframe` family
// of opcodes.
func (p *Pool) AddOverlay(sprite pool.ID, imgType ImageTypeID, prog *Program, offset fp.XY, underlay bool) (pool.ID, error) {
	spr, ok := p.Sprites.Get(sprite)
	if !ok {
		return pool.NilID, nil
	}
	iid, err := p.addImage(sprite, imgType, prog, offset)
	if err != nil {
		return pool.NilID, err
	}
	if underlay {
		spr.Images = append(spr.Images, iid)
	} else {
		spr.Images = append([]pool.ID{iid}, spr.Images...)
	}
	return iid, nil
}

// RemoveImage detaches imgID from its sprite and releases it; if the
// sprite has no images left it is also released (spec.md §3.2 lifecycle).
func (p *Pool) RemoveImage(imgID pool.ID) {
	img, ok := p.Images.Get(imgID)
	if !ok {
		return
	}
	sprite := img.Sprite
	p.Images.Release(imgID)

	spr, ok := p.Sprites.Get(sprite)
	if !ok {
		return
	}
	for i, id := range spr.Images {
		if id == imgID {
			spr.Images = append(spr.Images[:i], spr.Images[i+1:]...)
			break
		}
	}
	if len(spr.Images) == 0 {
		p.Sprites.Release(sprite)
	}
}

// RemoveSprite releases a sprite and every image it owns.
func (p *Pool) RemoveSprite(sid pool.ID) {
	spr, ok := p.Sprites.Get(sid)
	if !ok {
		return
	}
	for _, iid := range spr.Images {
		p.Images.Release(iid)
	}
	p.Sprites.Release(sid)
}
