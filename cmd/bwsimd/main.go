// Command bwsimd is the headless frame-driver daemon: it owns the one
// sim.World and advances it at a fixed tick rate, recording every
// action into a replay file and publishing a read-only view of each
// frame over internal/apiserver.
//
// Grounded on the teacher's RunDesktop entrypoint
// (_examples/Lallassu-snejk/internal/game/main.go), which already
// seeds from the environment, constructs every subsystem once, and
// runs a fixed per-frame Update loop; generalized here from a
// GL-windowed render loop into a headless ticker loop, and on
// iamvalenciia-kick-game-stream's cmd/server/main.go for the
// config-load-then-serve-in-a-goroutine-then-wait-for-signal shape.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stonehollow/bwsim/internal/action"
	"github.com/stonehollow/bwsim/internal/apiserver"
	"github.com/stonehollow/bwsim/internal/config"
	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/mapfile"
	"github.com/stonehollow/bwsim/internal/replay"
	"github.com/stonehollow/bwsim/internal/sim"
	"github.com/stonehollow/bwsim/internal/telemetry"
	"github.com/stonehollow/bwsim/internal/terrain"
)

// frameInterval is the wall-clock length of one simulation frame,
// matching the original's "Fastest" game speed (~24 logical
// frames/second); it bounds the daemon's own ticker, not Step itself,
// which is agnostic to wall-clock time.
const frameInterval = 42 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	mapPath := flag.String("map", "", "path to a .scm/.scx-style map file; an open fallback map is used if empty")
	seed := flag.Uint64("seed", 1, "initial PRNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tables := data.Default()
	terr, initialUnits, err := loadMap(*mapPath, cfg.PlayerCount)
	if err != nil {
		log.Fatalf("map: %v", err)
	}

	world := sim.NewWorld(tables, terr, cfg.PlayerCount)
	world.LCG.Seed(uint32(*seed))
	spawnInitialUnits(world, initialUnits)

	collectors := telemetry.New(cfg.MetricsNamespace)
	world.Hooks.OnAction = func(a action.Action) { collectors.RecordAction(a.Player) }

	publisher := apiserver.NewPublisher()
	hub := apiserver.NewHub(publisher, apiserver.DefaultStreamInterval)
	stopHub := make(chan struct{})
	go hub.Run(stopHub)

	router := apiserver.NewRouter(apiserver.RouterConfig{
		Publisher: publisher,
		Registry:  collectors.Registry,
		Hub:       hub,
	})
	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		log.Printf("bwsimd: observer API listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("observer API: %v", err)
		}
	}()

	var records []replay.Record
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	log.Printf("bwsimd: running with seed %d, %d player slot(s)", *seed, cfg.PlayerCount)
runLoop:
	for {
		select {
		case <-quit:
			break runLoop
		case <-ticker.C:
			// The daemon itself never issues actions absent an embedder
			// wiring a command source in; this loop only advances idle
			// time. An embedder linking this package directly would call
			// world.Step(actions) with its own decoded action batch
			// instead of nil here, and append the same batch below.
			start := time.Now()
			if err := world.Step(nil); err != nil {
				log.Printf("bwsimd: step error: %v", err)
				break runLoop
			}
			records = append(records, replay.Record{Frame: uint32(world.CurrentFrame)})
			publisher.Publish(apiserver.BuildFrameView(world))
			collectors.RecordFrame(time.Since(start))
			collectors.SetLiveCounts(world.Units.Len(), world.Sprites.Sprites.Len(), world.Bullets.Bullets.Len())
		}
	}

	log.Println("bwsimd: shutting down")
	close(stopHub)
	httpServer.Close()

	if err := writeReplay(cfg.ReplayOutDir, world, *seed, records); err != nil {
		log.Printf("bwsimd: replay write failed: %v", err)
	}
}

// loadMap decodes mapPath if given, otherwise returns an open,
// fully-walkable fallback map sized for local experimentation.
func loadMap(mapPath string, playerCount int) (*terrain.Map, []mapfile.InitialUnit, error) {
	if mapPath == "" {
		const w, h = 64, 64
		m, err := terrain.NewMap(w, h, playerCount)
		if err != nil {
			return nil, nil, err
		}
		for y := int32(0); y < h; y++ {
			for x := int32(0); x < w; x++ {
				m.SetWalkable(fp.XY{X: x, Y: y}, true)
			}
		}
		m.BuildRegions()
		return m, nil, nil
	}

	raw, err := os.ReadFile(mapPath)
	if err != nil {
		return nil, nil, err
	}
	mf, err := mapfile.Decode(raw)
	if err != nil {
		return nil, nil, err
	}
	mf.Terrain.BuildRegions()
	return mf.Terrain, mf.Units, nil
}

func spawnInitialUnits(w *sim.World, units []mapfile.InitialUnit) {
	for _, iu := range units {
		ut := w.Tables.Unit(iu.TypeID)
		u, _, err := w.Units.Allocate()
		if err != nil {
			log.Printf("bwsimd: dropping initial unit, arena full: %v", err)
			continue
		}
		u.Owner = iu.Owner
		u.TypeID = iu.TypeID
		u.HP = ut.HitPoints
		u.Alive = true
		u.Completed = true
		u.Orders.Current.Type = ut.DefaultOrder
		u.Mover.TopSpeed = ut.TopSpeed
		u.Mover.Acceleration = ut.Acceleration
		u.Mover.TurnRate = ut.TurnRate
		u.Mover.Pos = fp.XYFP8{X: fp.FromInt(iu.Pos.X), Y: fp.FromInt(iu.Pos.Y)}
	}
}

func writeReplay(outDir string, w *sim.World, seed uint64, records []replay.Record) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	hdr := replay.Header{
		FrameCount:  uint32(w.CurrentFrame),
		Seed:        uint32(seed),
		PlayerSlots: uint8(len(w.Players)),
		GameType:    uint8(w.GameType),
	}
	encoded, err := replay.Encode(hdr, records)
	if err != nil {
		return err
	}
	path := outDir + "/" + time.Now().UTC().Format("20060102T150405Z") + ".bwrep"
	return os.WriteFile(path, encoded, 0o644)
}

var _ = json.Marshal // retained for embedders that want ad-hoc frame dumps via BuildFrameView
