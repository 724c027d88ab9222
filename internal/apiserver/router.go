package apiserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig wires the dependencies the router needs: the frame
// publisher every handler reads from, the metrics registry /v1/metrics
// exposes, and optional overrides for rate limiting and CORS.
type RouterConfig struct {
	Publisher *Publisher
	Registry  *prometheus.Registry

	Hub *Hub // optional; if nil, /v1/stream responds 503

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig
	CORSOrigins     []string

	DisableLogging bool
}

// NewRouter builds the read-only HTTP surface: GET /v1/frame (latest
// published frame as JSON), GET /v1/stream (WebSocket push of the latest
// published frame each time the Hub polls; frames published between two
// polls are not sent), GET /v1/metrics (Prometheus exposition). Pure — no goroutines
// started, no listener opened — so it is safe to hand to
// httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	rl := cfg.RateLimiter
	if rl == nil {
		rlCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rlCfg = *cfg.RateLimitConfig
		}
		rl = NewIPRateLimiter(rlCfg)
	}
	r.Use(rl.Middleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET"},
	}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/frame", handleFrame(cfg.Publisher))
		r.Get("/stream", handleStream(cfg.Hub))
		if cfg.Registry != nil {
			r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
		}
	})

	return r
}

func handleFrame(pub *Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fv, ok := pub.Latest()
		if !ok {
			http.Error(w, "no frame published yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(fv)
	}
}

func handleStream(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			http.Error(w, "streaming not enabled", http.StatusServiceUnavailable)
			return
		}
		hub.ServeWS(w, r)
	}
}

// DefaultStreamInterval is how often a Hub polls its Publisher absent
// an override — a tenth of a second, matching a dashboard's useful
// refresh rate rather than the kernel's own per-frame rate.
const DefaultStreamInterval = 100 * time.Millisecond
