package movement

import "github.com/stonehollow/bwsim/internal/fp"

// GroupMember is the minimal per-unit data GroupMoveTargets needs: its
// current position and whether it's a flyer (flyers ignore the
// region-membership preference described in spec.md §4.H).
type GroupMember struct {
	Pos   fp.XY
	Flyer bool
}

// boundingBox computes the tile-space AABB of a set of positions.
func boundingBox(members []GroupMember) fp.Rect {
	if len(members) == 0 {
		return fp.Rect{}
	}
	r := fp.Rect{From: members[0].Pos, To: members[0].Pos}
	for _, m := range members[1:] {
		if m.Pos.X < r.From.X {
			r.From.X = m.Pos.X
		}
		if m.Pos.Y < r.From.Y {
			r.From.Y = m.Pos.Y
		}
		if m.Pos.X > r.To.X {
			r.To.X = m.Pos.X
		}
		if m.Pos.Y > r.To.Y {
			r.To.Y = m.Pos.Y
		}
	}
	return r
}

func center(r fp.Rect) fp.XY {
	return fp.XY{X: (r.From.X + r.To.X) / 2, Y: (r.From.Y + r.To.Y) / 2}
}

// snapTolerance is how close (in pixels) a group's target must be to a
// member's row/column before that member snaps to the target's
// row/column instead of offsetting by the group center, per spec.md's
// "target lies inside the group's bounding box" rule.
const snapTolerance = 8

// GroupMoveTargets computes, for each selected unit, the per-unit move
// target implementing spec.md §4.H's group-move rule:
//
//   - target inside the group's bounding box: each unit snaps to the
//     target's row/column within snapTolerance;
//   - target outside the box: each unit moves to target + (unit.pos -
//     group_center), preserving formation.
//
// A lone unit moves straight to target. A group never gets a bare move
// to the shared target: every target outside the box, near or far,
// takes the formation-offset branch.
func GroupMoveTargets(members []GroupMember, target fp.XY) []fp.XY {
	out := make([]fp.XY, len(members))
	if len(members) == 0 {
		return out
	}
	if len(members) == 1 {
		out[0] = target
		return out
	}

	box := boundingBox(members)
	groupCenter := center(box)

	if box.Contains(target) {
		for i, m := range members {
			dx := m.Pos.X - target.X
			dy := m.Pos.Y - target.Y
			tx, ty := target.X, target.Y
			if abs32(dx) <= snapTolerance {
				tx = m.Pos.X
			}
			if abs32(dy) <= snapTolerance {
				ty = m.Pos.Y
			}
			out[i] = fp.XY{X: tx, Y: ty}
		}
		return out
	}

	// Widely separated (or target simply outside the box): preserve
	// formation by the fixed per-unit offset from the group center.
	for i, m := range members {
		offset := fp.XY{X: m.Pos.X - groupCenter.X, Y: m.Pos.Y - groupCenter.Y}
		out[i] = fp.XY{X: target.X + offset.X, Y: target.Y + offset.Y}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
