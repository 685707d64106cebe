package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	healthhandler "geodados/ms_municipios/internal/adapters/http/health"
	municipalityhandler "geodados/ms_municipios/internal/adapters/http/municipality"
	"geodados/ms_municipios/internal/adapters/municipality/memory"
	application "geodados/ms_municipios/internal/application/municipality"
	"geodados/ms_municipios/internal/infrastructure/config"
	"geodados/ms_municipios/internal/testutil"
)

func newRouter(t *testing.T, rl config.RateLimitSettings) http.Handler {
	t.Helper()

	log := testutil.NewNullLogger()
	service := application.NewService(memory.NewRepository())

	return NewRouter(RouterDeps{
		Municipality: municipalityhandler.NewHandler(service, log),
		Health: healthhandler.NewHandler(healthhandler.Metadata{
			Name:        "ms_municipios",
			Version:     "test",
			Environment: "test",
			StoreEngine: config.EngineMemory,
		}, nil, log),
		RateLimit: rl,
		Logger:    log,
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newRouter(t, config.RateLimitSettings{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %v", body["status"])
	}
	if body["store_engine"] != config.EngineMemory {
		t.Errorf("expected memory engine, got %v", body["store_engine"])
	}
}

func TestRouterSetsCorrelationHeader(t *testing.T) {
	router := newRouter(t, config.RateLimitSettings{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Correlation-Id") == "" {
		t.Error("expected correlation id header")
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newRouter(t, config.RateLimitSettings{})

	req := httptest.NewRequest(http.MethodOptions, "/municipios", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected permissive CORS header")
	}
}

func TestRouterRateLimit(t *testing.T) {
	router := newRouter(t, config.RateLimitSettings{Enabled: true, RPS: 0.001, Burst: 1})

	first := httptest.NewRequest(http.MethodGet, "/health", nil)
	first.RemoteAddr = "10.1.1.1:4000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}

	second := httptest.NewRequest(http.MethodGet, "/health", nil)
	second.RemoteAddr = "10.1.1.1:4000"
	w = httptest.NewRecorder()
	router.ServeHTTP(w, second)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", w.Code)
	}
}
