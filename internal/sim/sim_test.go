package sim

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/action"
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/pool"
	"github.com/stonehollow/bwsim/internal/spatial"
	"github.com/stonehollow/bwsim/internal/terrain"
)

func tileOf(pos fp.XYFP8) fp.XY {
	return terrain.PixelToTile(fp.XY{X: pos.X.Int(), Y: pos.Y.Int()})
}

func openWorld(t *testing.T, w, h int32) *World {
	t.Helper()
	m, err := terrain.NewMap(w, h, 2)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			m.SetWalkable(fp.XY{X: x, Y: y}, true)
		}
	}
	m.BuildRegions()
	return NewWorld(data.Default(), m, 2)
}

func spawnUnit(world *World, owner int8, typeID data.UnitTypeID, pos fp.XY) pool.ID {
	ut := world.Tables.Unit(typeID)
	u, id, err := world.Units.Allocate()
	if err != nil {
		panic(err)
	}
	u.Owner = owner
	u.TypeID = typeID
	u.HP = ut.HitPoints
	u.Alive = true
	u.Completed = true
	u.Orders.Current.Type = ut.DefaultOrder
	u.Mover.TopSpeed = ut.TopSpeed
	u.Mover.Acceleration = ut.Acceleration
	u.Mover.TurnRate = ut.TurnRate
	u.Mover.Pos = fp.XYFP8{X: fp.FromInt(pos.X), Y: fp.FromInt(pos.Y)}
	rect := fp.Rect{From: pos, To: fp.XY{X: pos.X + 1, Y: pos.Y + 1}}
	world.Spatial.Insert(spatial.Key(id.Index), rect)
	return id
}

func TestWorldStepMovesUnitTowardMoveGoal(t *testing.T) {
	Convey("Given an SCV issued a Move order across an open map", t, func() {
		w := openWorld(t, 64, 64)
		id := spawnUnit(w, 0, data.UnitSCV, fp.XY{X: 16, Y: 16})
		w.Dispatcher.Selections[0] = &action.Selection{Units: []pool.ID{id}}

		act := action.Action{
			Player: 0, ID: action.Order,
			OrderID: data.OrderMove, Pos: fp.XY{X: 40, Y: 30},
		}

		Convey("Stepping enough frames drives the unit to the goal and terminates the order", func() {
			err := w.Step([]action.Action{act})
			So(err, ShouldBeNil)
			for i := 0; i < 2000; i++ {
				u, _ := w.GetUnit(id)
				if u.Orders.Current.Type == data.OrderPlayerGuard {
					break
				}
				err := w.Step(nil)
				So(err, ShouldBeNil)
			}
			u, ok := w.GetUnit(id)
			So(ok, ShouldBeTrue)
			So(tileOf(u.Mover.Pos), ShouldResemble, fp.XY{X: 40, Y: 30})
		})
	})
}

func TestWorldStepMarineKillsTargetAndReleasesSupply(t *testing.T) {
	Convey("Given a Marine attacking a low-hp enemy within range", t, func() {
		w := openWorld(t, 64, 64)
		marine := spawnUnit(w, 0, data.UnitMarine, fp.XY{X: 10, Y: 10})
		target := spawnUnit(w, 1, data.UnitSCV, fp.XY{X: 20, Y: 10})
		tu, _ := w.GetUnit(target)
		tu.HP = 1

		w.Players[0].SupplyUsed = w.Tables.Unit(data.UnitMarine).SupplyRequired
		w.Players[1].SupplyUsed = w.Tables.Unit(data.UnitSCV).SupplyRequired

		w.Dispatcher.Selections[0] = &action.Selection{Units: []pool.ID{marine}}
		act := action.Action{
			Player: 0, ID: action.Order,
			OrderID: data.OrderAttackUnit, TargetUnit: target, HasTarget: true,
			TargetType: action.TargetEnemyUnit,
		}

		Convey("Stepping until the bullet lands kills the target and frees its supply", func() {
			err := w.Step([]action.Action{act})
			So(err, ShouldBeNil)

			killed := false
			for i := 0; i < 200; i++ {
				err := w.Step(nil)
				So(err, ShouldBeNil)
				if _, ok := w.GetUnit(target); !ok {
					killed = true
					break
				}
			}
			So(killed, ShouldBeTrue)
			So(w.Players[1].SupplyUsed, ShouldEqual, int32(0))
		})
	})
}

func TestWorldStepSelectionCapRespectedThroughDispatch(t *testing.T) {
	Convey("Given 13 units selected by one player", t, func() {
		w := openWorld(t, 32, 32)
		var ids []pool.ID
		for i := 0; i < 13; i++ {
			ids = append(ids, spawnUnit(w, 0, data.UnitMarine, fp.XY{X: int32(i % 30), Y: 1}))
		}

		Convey("World.Step's Select action caps the resulting selection at 12", func() {
			err := w.Step([]action.Action{{Player: 0, ID: action.Select, UnitIDs: ids}})
			So(err, ShouldBeNil)
			So(len(w.Dispatcher.Selections[0].Units), ShouldBeLessThanOrEqualTo, 12)
		})
	})
}

func TestWorldStepCreepGrowsAroundSeed(t *testing.T) {
	Convey("Given a creep field seeded at one tile", t, func() {
		w := openWorld(t, 32, 32)
		w.Creep.Seed(fp.XY{X: 16, Y: 16})

		Convey("Repeated World.Step calls spread creep to a neighboring tile", func() {
			for i := 0; i < 5; i++ {
				err := w.Step(nil)
				So(err, ShouldBeNil)
			}
			So(w.Map.Tile(fp.XY{X: 17, Y: 16}).HasCreep(), ShouldBeTrue)
		})
	})
}

func TestWorldSnapshotRestoreReproducesDeterministicContinuation(t *testing.T) {
	Convey("Given a world mid-battle with creep spreading and a unit moving", t, func() {
		w := openWorld(t, 64, 64)
		marine := spawnUnit(w, 0, data.UnitMarine, fp.XY{X: 10, Y: 10})
		target := spawnUnit(w, 1, data.UnitSCV, fp.XY{X: 20, Y: 10})
		w.Creep.Seed(fp.XY{X: 16, Y: 16})
		w.Dispatcher.Selections[0] = &action.Selection{Units: []pool.ID{marine}}

		act := action.Action{
			Player: 0, ID: action.Order,
			OrderID: data.OrderAttackUnit, TargetUnit: target, HasTarget: true,
			TargetType: action.TargetEnemyUnit,
		}
		So(w.Step([]action.Action{act}), ShouldBeNil)
		for i := 0; i < 5; i++ {
			So(w.Step(nil), ShouldBeNil)
		}

		snap := w.Snapshot()

		Convey("Stepping the live world then restoring the snapshot reproduces identical continuation", func() {
			var liveFrames []int64
			for i := 0; i < 20; i++ {
				So(w.Step(nil), ShouldBeNil)
				liveFrames = append(liveFrames, w.CurrentFrame)
			}
			liveUnit, liveOK := w.GetUnit(marine)
			liveTile := w.Map.Tile(fp.XY{X: 17, Y: 16}).HasCreep()

			w.Restore(snap)
			var restoredFrames []int64
			for i := 0; i < 20; i++ {
				So(w.Step(nil), ShouldBeNil)
				restoredFrames = append(restoredFrames, w.CurrentFrame)
			}
			restoredUnit, restoredOK := w.GetUnit(marine)
			restoredTile := w.Map.Tile(fp.XY{X: 17, Y: 16}).HasCreep()

			So(restoredFrames, ShouldResemble, liveFrames)
			So(restoredOK, ShouldEqual, liveOK)
			if liveOK {
				So(restoredUnit.Mover.Pos, ShouldResemble, liveUnit.Mover.Pos)
				So(restoredUnit.HP, ShouldEqual, liveUnit.HP)
			}
			So(restoredTile, ShouldEqual, liveTile)
		})

		Convey("Restoring does not alias mutable state back into the snapshot", func() {
			w.Restore(snap)
			u, _ := w.GetUnit(marine)
			u.HP = 99999
			if u.Mover.Path != nil {
				u.Mover.Path.NextWaypoint = 99999
			}

			w.Restore(snap)
			u2, _ := w.GetUnit(marine)
			So(u2.HP, ShouldNotEqual, 99999)
		})
	})
}

func TestWorldStepEvaluateVictoryMeleeRequiresBuilding(t *testing.T) {
	Convey("Given a melee game where one player has no buildings", t, func() {
		w := openWorld(t, 16, 16)
		w.GameType = GameTypeMelee
		spawnUnit(w, 0, data.UnitMarine, fp.XY{X: 1, Y: 1})

		Convey("That player is reported defeated", func() {
			err := w.Step(nil)
			So(err, ShouldBeNil)
			defeated := w.evaluateVictory()
			So(defeated[0], ShouldBeTrue)
		})
	})
}
