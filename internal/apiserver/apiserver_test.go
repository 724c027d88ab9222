package apiserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/gorilla/websocket"

	"github.com/stonehollow/bwsim/internal/data"
	"github.com/stonehollow/bwsim/internal/fp"
	"github.com/stonehollow/bwsim/internal/sim"
	"github.com/stonehollow/bwsim/internal/terrain"
	"github.com/stonehollow/bwsim/internal/telemetry"
)

func openWorld(t *testing.T) *sim.World {
	t.Helper()
	m, err := terrain.NewMap(16, 16, 2)
	if err != nil {
		t.Fatalf("NewMap: %v", err)
	}
	for y := int32(0); y < 16; y++ {
		for x := int32(0); x < 16; x++ {
			m.SetWalkable(fp.XY{X: x, Y: y}, true)
		}
	}
	m.BuildRegions()
	return sim.NewWorld(data.Default(), m, 2)
}

func TestBuildFrameViewProjectsLiveUnitsOnly(t *testing.T) {
	Convey("Given a world with one live unit", t, func() {
		w := openWorld(t)
		u, id, err := w.Units.Allocate()
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		u.Owner = 0
		u.TypeID = data.UnitMarine
		u.HP = 40
		u.Alive = true
		u.Completed = true

		Convey("BuildFrameView includes it with its projected fields", func() {
			fv := BuildFrameView(w)
			So(len(fv.Units), ShouldEqual, 1)
			So(fv.Units[0].ID, ShouldEqual, id.Index)
			So(fv.Units[0].HP, ShouldEqual, int32(40))
			So(len(fv.Players), ShouldEqual, 2)
		})
	})
}

func TestHandleFrameServesLatestPublishedView(t *testing.T) {
	Convey("Given a router with no frame published yet", t, func() {
		pub := NewPublisher()
		r := NewRouter(RouterConfig{Publisher: pub, DisableLogging: true, RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000}})
		ts := httptest.NewServer(r)
		defer ts.Close()

		Convey("GET /v1/frame returns 503 before the first Publish", func() {
			resp, err := http.Get(ts.URL + "/v1/frame")
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("GET /v1/frame returns the published frame as JSON after Publish", func() {
			pub.Publish(FrameView{Frame: 42})
			resp, err := http.Get(ts.URL + "/v1/frame")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var got FrameView
			So(json.NewDecoder(resp.Body).Decode(&got), ShouldBeNil)
			So(got.Frame, ShouldEqual, int64(42))
		})
	})
}

func TestHandleMetricsExposesTelemetryRegistry(t *testing.T) {
	Convey("Given a router wired to a telemetry Collectors registry", t, func() {
		pub := NewPublisher()
		collectors := telemetry.New("bwsim_api_test")
		collectors.SetLiveCounts(3, 5, 1)

		r := NewRouter(RouterConfig{
			Publisher: pub, Registry: collectors.Registry, DisableLogging: true,
			RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		})
		ts := httptest.NewServer(r)
		defer ts.Close()

		Convey("GET /v1/metrics serves Prometheus exposition text naming the gauge", func() {
			resp, err := http.Get(ts.URL + "/v1/metrics")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			buf := make([]byte, 8192)
			n, _ := resp.Body.Read(buf)
			So(strings.Contains(string(buf[:n]), "bwsim_api_test_live_units"), ShouldBeTrue)
		})
	})
}

func TestRateLimiterRejectsBurstAboveConfiguredRate(t *testing.T) {
	Convey("Given a rate limiter allowing only 1 request per second with no burst", t, func() {
		rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})

		Convey("The first request from an IP is allowed and the second immediate one is not", func() {
			So(rl.Allow("1.2.3.4"), ShouldBeTrue)
			So(rl.Allow("1.2.3.4"), ShouldBeFalse)
		})

		Convey("A different IP has its own independent bucket", func() {
			So(rl.Allow("1.2.3.4"), ShouldBeTrue)
			So(rl.Allow("5.6.7.8"), ShouldBeTrue)
		})
	})
}

func TestHubBroadcastsNewFramesToConnectedClients(t *testing.T) {
	Convey("Given a hub polling a publisher at a fast interval", t, func() {
		pub := NewPublisher()
		hub := NewHub(pub, 5*time.Millisecond)
		r := NewRouter(RouterConfig{
			Publisher: pub, Hub: hub, DisableLogging: true,
			RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		})
		ts := httptest.NewServer(r)
		defer ts.Close()

		stop := make(chan struct{})
		go hub.Run(stop)
		defer close(stop)

		wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		Convey("Publishing a frame after connect delivers it over the socket", func() {
			// Give the hub a moment to register the new connection before publishing.
			time.Sleep(20 * time.Millisecond)
			pub.Publish(FrameView{Frame: 7})

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, msg, err := conn.ReadMessage()
			So(err, ShouldBeNil)

			var got FrameView
			So(json.Unmarshal(msg, &got), ShouldBeNil)
			So(got.Frame, ShouldEqual, int64(7))
		})
	})
}
