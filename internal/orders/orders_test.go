package orders

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/pool"
)

func TestQueueIssueAndTerminate(t *testing.T) {
	Convey("Given an idle order queue", t, func() {
		q := &Queue{Current: Order{Type: data.OrderNone}}

		Convey("A non-queued Move replaces Current immediately", func() {
			q.Issue(Order{Type: data.OrderMove, TargetPos: fp.XY{X: 5, Y: 5}})
			So(q.Current.Type, ShouldEqual, data.OrderMove)
			So(q.State, ShouldEqual, StateInit)
		})

		Convey("A queued order appended while Current is running waits in Pending", func() {
			q.Issue(Order{Type: data.OrderMove, TargetPos: fp.XY{X: 1, Y: 1}})
			q.Issue(Order{Type: data.OrderMove, TargetPos: fp.XY{X: 2, Y: 2}, Queued: true})
			So(len(q.Pending), ShouldEqual, 1)
			q.Terminate(data.OrderNone)
			So(q.Current.TargetPos, ShouldResemble, fp.XY{X: 2, Y: 2})
			So(len(q.Pending), ShouldEqual, 0)
		})

		Convey("Terminate with an empty queue falls back to the idle order", func() {
			q.Issue(Order{Type: data.OrderMove})
			q.Terminate(data.OrderGuard)
			So(q.Current.Type, ShouldEqual, data.OrderGuard)
		})

		Convey("A non-interruptible current order rejects a replacing issue", func() {
			q.Issue(Order{Type: data.OrderConstructingBuilding})
			q.Issue(Order{Type: data.OrderMove, TargetPos: fp.XY{X: 9, Y: 9}})
			So(q.Current.Type, ShouldEqual, data.OrderConstructingBuilding)
		})
	})
}

func TestStepMoveIssuesMoveGoalOnce(t *testing.T) {
	Convey("Given a fresh Move order", t, func() {
		tables := data.Default()
		actor := &Actor{UnitType: tables.Unit(data.UnitMarine)}
		q := &Queue{Current: Order{Type: data.OrderMove, TargetPos: fp.XY{X: 10, Y: 10}}}

		Convey("The first Step reports a move goal and advances state", func() {
			dec, err := Step(q, actor, tables, nil)
			So(err, ShouldBeNil)
			So(dec.HasMoveGoal, ShouldBeTrue)
			So(dec.MoveGoal, ShouldResemble, fp.XY{X: 10, Y: 10})
			So(q.State, ShouldEqual, StateApproaching)
		})

		Convey("A second Step does not re-issue the move goal", func() {
			Step(q, actor, tables, nil)
			dec, err := Step(q, actor, tables, nil)
			So(err, ShouldBeNil)
			So(dec.HasMoveGoal, ShouldBeFalse)
		})
	})
}

func TestStepAttackFiresInRangeAfterCooldown(t *testing.T) {
	Convey("Given a Marine in range of a Zergling target with no cooldown", t, func() {
		tables := data.Default()
		actor := &Actor{
			UnitType: tables.Unit(data.UnitMarine),
			Pos:      fp.XY{X: 0, Y: 0},
			Heading:  fp.Facing(1, 0),
		}
		targetID := pool.ID{Index: 1, Generation: 1}
		lookup := func(id pool.ID) (fp.XY, int8, bool, bool) {
			return fp.XY{X: 20, Y: 0}, 1, false, true
		}
		q := &Queue{Current: Order{Type: data.OrderAttackUnit, TargetU: targetID, HasTarget: true}}

		Convey("Step fires and sets the ground cooldown", func() {
			dec, err := Step(q, actor, tables, lookup)
			So(err, ShouldBeNil)
			So(dec.Fire, ShouldNotBeNil)
			So(actor.GroundCooldown, ShouldBeGreaterThan, 0)
			So(q.State, ShouldEqual, StateFiring)
		})
	})
}

func TestStepAttackApproachesWhenOutOfRange(t *testing.T) {
	Convey("Given a target far outside weapon range", t, func() {
		tables := data.Default()
		actor := &Actor{UnitType: tables.Unit(data.UnitMarine), Pos: fp.XY{X: 0, Y: 0}}
		lookup := func(id pool.ID) (fp.XY, int8, bool, bool) {
			return fp.XY{X: 2000, Y: 0}, 1, false, true
		}
		q := &Queue{Current: Order{Type: data.OrderAttackUnit, HasTarget: true}}

		Convey("Step reports a move goal toward the target instead of firing", func() {
			dec, err := Step(q, actor, tables, lookup)
			So(err, ShouldBeNil)
			So(dec.Fire, ShouldBeNil)
			So(dec.HasMoveGoal, ShouldBeTrue)
			So(q.State, ShouldEqual, StateApproaching)
		})
	})
}

func TestDamageArmorClampAndSplash(t *testing.T) {
	Convey("Given a weapon dealing 20 normal damage against 5 armor", t, func() {
		w := &data.WeaponType{DamageType: data.DamageNormal, HitType: data.HitNormal, DamageAmount: 20}

		Convey("Full damage at zero distance reduces by armor", func() {
			d := Damage(w, 0, 0, data.SizeMedium, 5, 0)
			So(d, ShouldEqual, int32(15))
		})

		Convey("Armor never reduces damage below one eighth of raw", func() {
			d := Damage(w, 0, 0, data.SizeMedium, 100, 0)
			So(d, ShouldEqual, int32(2))
		})
	})

	Convey("Given a splash weapon with inner/medium/outer radii 0/10/20", t, func() {
		w := &data.WeaponType{
			DamageType: data.DamageNormal, HitType: data.HitRadialSplash,
			InnerSplashRadius: 0, MediumSplashRadius: 10, OuterSplashRadius: 20,
			DamageAmount: 100,
		}
		Convey("A hit at medium distance deals half damage before armor", func() {
			d := Damage(w, 0, 0, data.SizeMedium, 0, 5)
			So(d, ShouldEqual, int32(50))
		})
		Convey("A hit beyond the outer radius deals no damage", func() {
			d := Damage(w, 0, 0, data.SizeMedium, 0, 25)
			So(d, ShouldEqual, int32(0))
		})
	})
}

func TestApplyDamageShieldsAbsorbFirst(t *testing.T) {
	Convey("Given a unit with 10 hp and 5 shields taking 8 damage", t, func() {
		hp, shields, died := ApplyDamage(10, 5, 8)
		So(shields, ShouldEqual, int32(0))
		So(hp, ShouldEqual, int32(7))
		So(died, ShouldBeFalse)
	})

	Convey("Given lethal damage exceeding hp and shields combined", t, func() {
		hp, shields, died := ApplyDamage(10, 5, 20)
		So(hp, ShouldEqual, int32(0))
		So(shields, ShouldEqual, int32(0))
		So(died, ShouldBeTrue)
	})
}
