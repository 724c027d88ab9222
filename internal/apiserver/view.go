// Package apiserver exposes a read-only HTTP/WebSocket surface over
// already-published World snapshots — a frame view, a live stream of
// frame views, and the telemetry registry's metrics — spec.md §1's
// "engine vs. embedder" split: this package never imports sim.World's
// mutating methods and never touches the live simulation goroutine
// directly.
//
// Grounded on iamvalenciia-kick-game-stream's internal/api package
// (router.go, websocket.go, ratelimit.go), which already wires a chi
// router, a broadcast-hub WebSocket layer, and a per-IP token-bucket
// rate limiter in front of a game engine's read-only state. Trimmed of
// everything that package needed for a public stream (OAuth, admin
// panel, session auth) since this kernel has no such concerns; the
// router/hub/limiter shapes are otherwise kept as-is.
package apiserver

import (
	"github.com/stonehollow/bwsim/internal/economy"
	"github.com/stonehollow/bwsim/internal/pool"
	"github.com/stonehollow/bwsim/internal/sim"
)

// UnitView is the JSON-friendly projection of one live unit.
type UnitView struct {
	ID        int32  `json:"id"`
	Owner     int8   `json:"owner"`
	Type      string `json:"type"`
	HP        int32  `json:"hp"`
	Shields   int32  `json:"shields"`
	X         int32  `json:"x"`
	Y         int32  `json:"y"`
	Completed bool   `json:"completed"`
}

// PlayerView is the JSON-friendly projection of one player's economy.
type PlayerView struct {
	Minerals   int32 `json:"minerals"`
	Gas        int32 `json:"gas"`
	SupplyUsed int32 `json:"supplyUsed"`
	SupplyCap  int32 `json:"supplyCap"`
}

// FrameView is one published, immutable frame — the only shape the
// apiserver ever hands out to callers.
type FrameView struct {
	Frame   int64        `json:"frame"`
	Units   []UnitView   `json:"units"`
	Players []PlayerView `json:"players"`
}

// BuildFrameView projects w's current state into a FrameView. w is only
// read, never mutated; callers must still ensure no concurrent Step is
// in progress while this runs (the frame driver is expected to build a
// view and hand it to a Publisher between ticks, not call this from a
// second goroutine racing Step).
func BuildFrameView(w *sim.World) FrameView {
	fv := FrameView{Frame: w.CurrentFrame}

	w.Units.Each(func(id pool.ID, u *sim.Unit) {
		if !u.Alive {
			return
		}
		fv.Units = append(fv.Units, UnitView{
			ID:        id.Index,
			Owner:     u.Owner,
			Type:      w.Tables.Unit(u.TypeID).Name,
			HP:        u.HP,
			Shields:   u.Shields,
			X:         u.Mover.Pos.X.Int(),
			Y:         u.Mover.Pos.Y.Int(),
			Completed: u.Completed,
		})
	})

	fv.Players = make([]PlayerView, len(w.Players))
	for i, p := range w.Players {
		fv.Players[i] = playerView(p)
	}
	return fv
}

func playerView(p *economy.Player) PlayerView {
	return PlayerView{
		Minerals:   p.Minerals,
		Gas:        p.Gas,
		SupplyUsed: p.SupplyUsed,
		SupplyCap:  p.SupplyCap,
	}
}
