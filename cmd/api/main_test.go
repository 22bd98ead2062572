package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/hausservice-booking/internal/config"
	"github.com/wolfman30/hausservice-booking/internal/webcal"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:               "test",
		Timezone:          "Europe/Berlin",
		RemoteLeadSink:    appconfig.RemoteSinkAuto,
		RemoteSinkTimeout: time.Second,
		SessionTTL:        time.Hour,
		HandoffPath:       "/contact",
		LeadRatePerSecond: 1,
		LeadRateBurst:     5,
	}
}

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, bookingMetrics, leadMetrics := setupMetrics()
	if handler == nil || bookingMetrics == nil || leadMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	bookingMetrics.ObserveTransition("select_date", true)
	leadMetrics.ObserveSubmission("local")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "hausservice_booking_transitions_total") {
		t.Fatalf("expected booking counter to be exported")
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Fatalf("expected runtime collectors to be exported")
	}
}

func TestBuildAppInMemory(t *testing.T) {
	app, err := buildApp(context.Background(), testConfig(), logging.New("error"))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer app.Close()

	for _, path := range []string{"/health", "/ready", "/booking", "/contact"} {
		rr := httptest.NewRecorder()
		app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected status 200, got %d", path, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/leads", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected admin routes to be disabled without secret, got %d", rr.Code)
	}
}

func TestBuildAppUsesPrunableMemorySessions(t *testing.T) {
	app, err := buildApp(context.Background(), testConfig(), logging.New("error"))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer app.Close()

	mem, ok := app.sessions.(*webcal.MemorySessionStore)
	if !ok {
		t.Fatalf("expected in-memory session store without redis, got %T", app.sessions)
	}

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/booking", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected booking page, got %d", rr.Code)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected one stored session, got %d", mem.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	app.startBackground(ctx)
	cancel()
}

func TestBuildAppWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	app, err := buildApp(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer app.Close()
	if app.redis == nil {
		t.Fatalf("expected redis client")
	}

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"redis":"ok"`) {
		t.Fatalf("expected redis readiness, got %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/booking", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected booking page, got %d", rr.Code)
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected the booking session to be stored in redis")
	}
}

func TestBuildAppRejectsMisconfiguredSink(t *testing.T) {
	cfg := testConfig()
	cfg.RemoteLeadSink = appconfig.RemoteSinkPostgres

	if _, err := buildApp(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error when postgres sink has no database")
	}
}
