package bullet

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/pool"
)

func TestBulletReachesGroundTarget(t *testing.T) {
	Convey("Given a non-homing bullet fired at a ground position", t, func() {
		b := &Bullet{
			State:      StateInit,
			Pos:        fp.XYFP8{X: fp.FromInt(0), Y: fp.FromInt(0)},
			TargetPos:  fp.XY{X: 100, Y: 0},
			Speed:      fp.FromInt(20),
			TimeToLive: 50,
		}

		Convey("Stepping repeatedly eventually yields a hit at the target position", func() {
			var hit *HitEvent
			for i := 0; i < 50 && hit == nil; i++ {
				hit, _ = Step(b, nil, nil)
			}
			So(hit, ShouldNotBeNil)
			So(hit.ImpactPos, ShouldResemble, fp.XY{X: 100, Y: 0})
		})
	})
}

func TestHomingBulletFollowsTargetToImpact(t *testing.T) {
	Convey("Given a homing bullet whose target keeps moving", t, func() {
		targetID := pool.ID{Index: 1, Generation: 1}
		pos := fp.XY{X: 100, Y: 0}
		resolve := func(id pool.ID) (fp.XY, bool) { return pos, true }

		b := &Bullet{
			State:      StateInit,
			Pos:        fp.XYFP8{X: fp.FromInt(0), Y: fp.FromInt(0)},
			HasTarget:  true,
			Target:     targetID,
			TargetPos:  pos,
			Speed:      fp.FromInt(20),
			TimeToLive: 50,
		}

		Convey("It eventually hits, reporting the live target", func() {
			var hit *HitEvent
			for i := 0; i < 50 && hit == nil; i++ {
				hit, _ = Step(b, resolve, nil)
			}
			So(hit, ShouldNotBeNil)
			So(hit.HasTarget, ShouldBeTrue)
			So(hit.Target, ShouldEqual, targetID)
		})
	})

	Convey("Given a homing bullet whose target dies mid-flight", t, func() {
		targetID := pool.ID{Index: 2, Generation: 1}
		dead := false
		lastPos := fp.XY{X: 40, Y: 0}
		resolve := func(id pool.ID) (fp.XY, bool) {
			if dead {
				return fp.XY{}, false
			}
			return lastPos, true
		}

		b := &Bullet{
			State:      StateInit,
			Pos:        fp.XYFP8{X: fp.FromInt(0), Y: fp.FromInt(0)},
			HasTarget:  true,
			Target:     targetID,
			TargetPos:  lastPos,
			Speed:      fp.FromInt(20),
			TimeToLive: 50,
		}

		Convey("It continues to the last known position and detonates without a live target", func() {
			Step(b, resolve, nil) // one tick while alive
			dead = true
			var hit *HitEvent
			for i := 0; i < 50 && hit == nil; i++ {
				hit, _ = Step(b, resolve, nil)
			}
			So(hit, ShouldNotBeNil)
			So(hit.HasTarget, ShouldBeFalse)
			So(hit.ImpactPos, ShouldResemble, lastPos)
		})
	})
}

func TestBouncingBulletChainsToNextTarget(t *testing.T) {
	Convey("Given a bullet with one bounce remaining and a target within range", t, func() {
		first := pool.ID{Index: 1, Generation: 1}
		second := pool.ID{Index: 2, Generation: 1}
		firstPos := fp.XY{X: 100, Y: 0}
		secondPos := fp.XY{X: 140, Y: 0}

		resolve := func(id pool.ID) (fp.XY, bool) {
			if id == first {
				return firstPos, true
			}
			return secondPos, true
		}
		bounceCalls := 0
		bounceResolve := func(impact fp.XY, hit []pool.ID) (pool.ID, fp.XY, bool) {
			bounceCalls++
			for _, h := range hit {
				if h == second {
					return pool.NilID, fp.XY{}, false
				}
			}
			return second, secondPos, true
		}

		b := &Bullet{
			State:      StateInit,
			Pos:        fp.XYFP8{X: fp.FromInt(0), Y: fp.FromInt(0)},
			HasTarget:  true,
			Target:     first,
			TargetPos:  firstPos,
			Speed:      fp.FromInt(20),
			MaxBounces: 1,
			TimeToLive: 50,
		}

		Convey("Landing on the first target chains to the second instead of terminating", func() {
			var hits []*HitEvent
			for i := 0; i < 50 && len(hits) < 2; i++ {
				hit, ok := Step(b, resolve, bounceResolve)
				if ok {
					hits = append(hits, hit)
				}
			}
			So(len(hits), ShouldEqual, 2)
			So(hits[0].Target, ShouldEqual, first)
			So(hits[1].Target, ShouldEqual, second)
			So(bounceCalls, ShouldBeGreaterThan, 0)
		})

		Convey("Once MaxBounces is exhausted, a further landing terminates instead of chaining", func() {
			b.Bounces = 1 // already used its one bounce
			var hits []*HitEvent
			for i := 0; i < 50 && len(hits) < 1; i++ {
				hit, ok := Step(b, resolve, bounceResolve)
				if ok {
					hits = append(hits, hit)
				}
			}
			So(len(hits), ShouldEqual, 1)
			So(b.State, ShouldEqual, StateHit)
		})
	})
}

func TestPoolSpawnAndCapacity(t *testing.T) {
	Convey("Given a bullet pool with capacity 1", t, func() {
		p := NewPool(1)
		w := &data.WeaponType{ID: data.WeaponGaussRifle}

		Convey("Spawning once succeeds and a second spawn fails", func() {
			_, err := p.Spawn(w, 0, pool.NilID, fp.XYFP8{}, pool.NilID, fp.XY{}, false)
			So(err, ShouldBeNil)
			_, err = p.Spawn(w, 0, pool.NilID, fp.XYFP8{}, pool.NilID, fp.XY{}, false)
			So(err, ShouldNotBeNil)
		})
	})
}
