package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"randomcarnegie.app/internal/config"
	"randomcarnegie.app/internal/protocol"
	"randomcarnegie.app/internal/service"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	cfg := config.Defaults()
	svc := service.New(service.Config{Defaults: cfg.Defaults, Logger: log.New(io.Discard, "", 0)})
	return buildMux(svc, nil, nil, v, cfg, log.New(io.Discard, "", 0))
}

func TestBuildMux_HealthAndMetrics(t *testing.T) {
	mux := newTestMux(t)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}

	for _, target := range []string{"/v1/setup?seed=1", "/v1/setup?seed=2", "/v1/setup?seed=x"} {
		rr = httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	for _, want := range []string{
		`randomcarnegie_setups_served_total{source="http"} 2`,
		`randomcarnegie_setup_failures_total{code="E_BAD_SEED"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "randomcarnegie_index_queue_depth") {
		t.Fatalf("index metrics without an index:\n%s", body)
	}
}

func TestBuildMux_AdminLoopbackOnly(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/index/stats", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("remote status=%d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/v1/index/stats", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"queue_depth":0`) {
		t.Fatalf("loopback status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:80":   true,
		"[::1]:443":      true,
		"::1":            true,
		"10.0.0.1:80":    false,
		"example.com:80": false,
		"":               false,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
}
