package movement

import (
	"github.com/stonehollow/bwsim/internal/fp"
)

// CollisionProbe is supplied by the caller (sim.World) so movement can ask
// "would moving to candidate collide with another collision-enabled
// unit?" without movement needing to know about the spatial index or unit
// arena directly.
type CollisionProbe func(candidate fp.XY) (blocked bool, otherPos fp.XY)

// Step advances one unit's movement state machine by exactly one tick. It
// may perform more than one state transition within the call when a
// transition does not consume time (e.g. Init -> AtRest), matching
// spec.md §4.H's "at most one transition per tick but may perform
// multiple when transitions do not consume time."
func Step(m *Mover, planner *Planner, probe CollisionProbe) {
	switch m.State {
	case StateInit:
		if m.Flyer {
			m.State = StateFlyer
		} else {
			m.State = StateAtRest
		}
		Step(m, planner, probe) // re-enter immediately: init consumes no time
		return

	case StateHidden, StateUnmovable:
		return

	case StateAtRest:
		if m.HasGoal && !m.AtGoal() {
			m.State = StateFollowPath
			Step(m, planner, probe)
		}
		return

	case StateFlyer:
		stepFlyer(m)

	case StateFollowPath:
		stepFollowPath(m, planner, probe)

	case StateFaceTarget:
		turnToward(m, headingTo(m.Pos, m.Goal))
		if m.Heading == headingTo(m.Pos, m.Goal) {
			m.State = StateFollowPath
		}

	case StateSlideFree:
		stepSlide(m, probe)

	case StateMoveToLegal:
		stepMoveToLegal(m, planner)
	}
}

func headingTo(from fp.XYFP8, to fp.XY) fp.Direction {
	dx := to.X - from.X.Int()
	dy := to.Y - from.Y.Int()
	return fp.Facing(dx, dy)
}

func turnToward(m *Mover, desired fp.Direction) {
	diff := int8(desired) - int8(m.Heading)
	maxStep := int8(m.TurnRate)
	if maxStep == 0 {
		maxStep = 1
	}
	switch {
	case diff == 0:
		// already facing
	case diff > 0 && diff <= 127:
		if diff > maxStep {
			diff = maxStep
		}
		m.Heading = m.Heading.Add(int(diff))
	default:
		// negative arc: the int8 subtraction above already wrapped diff
		// to the shortest signed turn
		neg := diff
		if -neg > int8(maxStep) {
			neg = -maxStep
		}
		m.Heading = m.Heading.Add(int(neg))
	}
}

func advance(m *Mover) {
	if m.CurrentSpeed < m.TopSpeed {
		m.CurrentSpeed = m.CurrentSpeed.Add(m.Acceleration)
		if m.CurrentSpeed > m.TopSpeed {
			m.CurrentSpeed = m.TopSpeed
		}
	}
	uv := UnitVector(m.Heading)
	m.Pos.X = m.Pos.X.Add(uv.X.Mul(m.CurrentSpeed))
	m.Pos.Y = m.Pos.Y.Add(uv.Y.Mul(m.CurrentSpeed))
}

func stepFlyer(m *Mover) {
	if !m.HasGoal {
		return
	}
	desired := headingTo(m.Pos, m.Goal)
	turnToward(m, desired)
	advance(m)
	if m.AtGoal() {
		m.CurrentSpeed = 0
		m.HasGoal = false
	}
}

func stepFollowPath(m *Mover, planner *Planner, probe CollisionProbe) {
	if !m.HasGoal {
		m.State = StateAtRest
		return
	}
	if m.Path == nil {
		curTile := fp.XY{X: m.Pos.X.Int() / 32, Y: m.Pos.Y.Int() / 32}
		wp := planner.PlanShortRange(curTile, m.Goal)
		if len(wp) == 0 {
			m.State = StateMoveToLegal
			m.StuckTicks = 0
			return
		}
		m.Path = &Path{Waypoints: wp}
	}

	if m.Path.NextWaypoint >= len(m.Path.Waypoints) {
		if m.AtGoal() {
			m.CurrentSpeed = 0
			m.HasGoal = false
			m.State = StateAtRest
			return
		}
		// Waypoints exhausted but not at goal: re-plan next tick.
		m.Path = nil
		return
	}

	targetTile := m.Path.Waypoints[m.Path.NextWaypoint]
	targetPx := fp.XY{X: targetTile.X*32 + 16, Y: targetTile.Y*32 + 16}
	desired := headingTo(m.Pos, targetPx)
	turnToward(m, desired)

	candidate := predictPosition(m)
	if probe != nil {
		if blocked, otherPos := probe(candidate); blocked {
			m.Collisions++
			m.Path.LastCollisionDir = fp.Facing(m.Pos.X.Int()-otherPos.X, m.Pos.Y.Int()-otherPos.Y)
			m.Path.HasLastCollision = true
			if m.Collisions > CollisionThreshold {
				m.Path = nil
				m.Collisions = 0
				m.State = StateMoveToLegal
				return
			}
			m.State = StateSlideFree
			return
		}
	}
	advance(m)

	curTile := fp.XY{X: m.Pos.X.Int() / 32, Y: m.Pos.Y.Int() / 32}
	if curTile == targetTile {
		m.Path.NextWaypoint++
		if m.Path.NextWaypoint >= len(m.Path.Waypoints) && m.AtGoal() {
			m.CurrentSpeed = 0
			m.HasGoal = false
			m.State = StateAtRest
		}
	}
}

func predictPosition(m *Mover) fp.XY {
	uv := UnitVector(m.Heading)
	speed := m.CurrentSpeed
	if speed < m.Acceleration {
		speed = m.Acceleration
	}
	return fp.XY{
		X: m.Pos.X.Add(uv.X.Mul(speed)).Int(),
		Y: m.Pos.Y.Add(uv.Y.Mul(speed)).Int(),
	}
}

// stepSlide turns the unit toward the slide-free direction derived from
// the obstacle's position and resumes forward movement, per spec.md's
// "turns toward a slide-free direction ... and attempts to continue along
// its movement vector."
func stepSlide(m *Mover, probe CollisionProbe) {
	if m.Path == nil || !m.Path.HasLastCollision {
		m.State = StateFollowPath
		return
	}
	slideDir := m.Path.LastCollisionDir.Add(64) // perpendicular to the obstacle bearing
	turnToward(m, slideDir)

	candidate := predictPosition(m)
	if probe != nil {
		if blocked, _ := probe(candidate); blocked {
			m.Collisions++
			if m.Collisions > CollisionThreshold {
				m.Path = nil
				m.Collisions = 0
				m.State = StateMoveToLegal
			}
			return
		}
	}
	advance(m)
	m.Path.HasLastCollision = false
	m.State = StateFollowPath
}

// stepMoveToLegal lets the unit oscillate in place for a bounded number of
// frames, per spec.md's boundary case, before terminating with
// StateUnmovable.
func stepMoveToLegal(m *Mover, planner *Planner) {
	m.StuckTicks++
	if m.StuckTicks > moveToLegalFrameLimit {
		m.State = StateUnmovable
		m.HasGoal = false
		return
	}
	curTile := fp.XY{X: m.Pos.X.Int() / 32, Y: m.Pos.Y.Int() / 32}
	wp := planner.PlanShortRange(curTile, m.Goal)
	if len(wp) > 0 {
		m.Path = &Path{Waypoints: wp}
		m.State = StateFollowPath
		m.StuckTicks = 0
	}
}
