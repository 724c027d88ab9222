// Package telemetry exposes the frame driver's Prometheus collectors:
// frame duration, live-unit/sprite/bullet gauges, PRNG draw counter,
// and per-player APM — spec.md §3.6 / SPEC_FULL.md's observability
// surface.
//
// Grounded on iamvalenciia-kick-game-stream's observability.go, which
// already wires tick-duration histograms, entity-count gauges, and
// per-reason counters via promauto. That file registers its collectors
// against the global default registry as package vars; here they are
// bound to a Collectors struct over a private prometheus.Registry
// instead, so a daemon process (or a test) can construct more than one
// without the "duplicate metrics collector registration" panic the
// global-registry style is prone to under repeated construction.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors holds every metric the frame driver reports.
type Collectors struct {
	Registry *prometheus.Registry

	FrameDuration prometheus.Histogram
	LiveUnits     prometheus.Gauge
	LiveSprites   prometheus.Gauge
	LiveBullets   prometheus.Gauge
	PRNGDraws     prometheus.Counter
	APM           *prometheus.CounterVec
}

// New registers and returns a fresh set of collectors under namespace
// (e.g. "bwsim", per internal/config's metrics_namespace field).
func New(namespace string) *Collectors {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collectors{
		Registry: reg,

		FrameDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent in one Step call.",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
		}),
		LiveUnits: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_units",
			Help:      "Currently live units across all players.",
		}),
		LiveSprites: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sprites",
			Help:      "Currently live sprites.",
		}),
		LiveBullets: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_bullets",
			Help:      "Currently live bullets in flight.",
		}),
		PRNGDraws: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prng_draws_total",
			Help:      "Total PRNG draws across every call site.",
		}),
		APM: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "player_actions_total",
			Help:      "Total actions dispatched per player (bounded label cardinality: player slot count).",
		}, []string{"player"}),
	}
}

// RecordFrame records one Step call's wall-clock duration.
func (c *Collectors) RecordFrame(d time.Duration) {
	c.FrameDuration.Observe(d.Seconds())
}

// SetLiveCounts updates the gauge triple from the world's current arena
// occupancy.
func (c *Collectors) SetLiveCounts(units, sprites, bullets int) {
	c.LiveUnits.Set(float64(units))
	c.LiveSprites.Set(float64(sprites))
	c.LiveBullets.Set(float64(bullets))
}

// RecordAction increments the per-player APM counter; intended to be
// wired as sim.Hooks.OnAction.
func (c *Collectors) RecordAction(player int8) {
	c.APM.WithLabelValues(playerLabel(player)).Inc()
}

// AddPRNGDraws increments the PRNG draw counter by n.
func (c *Collectors) AddPRNGDraws(n int) {
	c.PRNGDraws.Add(float64(n))
}

func playerLabel(p int8) string {
	const digits = "01234567"
	if p < 0 || int(p) >= len(digits) {
		return "unknown"
	}
	return digits[p : p+1]
}
