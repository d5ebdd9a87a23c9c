package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exotel-connector/internal/auth"
	"exotel-connector/internal/calllog"
	"exotel-connector/internal/config"
	"exotel-connector/internal/errorlog"
	"exotel-connector/internal/exotel"

	"github.com/gin-gonic/gin"
)

func testEngine(t *testing.T) (*gin.Engine, *auth.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{JWTSecret: "s", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	settings := exotel.StaticSettings{Enabled: true}
	rec := exotel.NewReconciler(settings, calllog.NewMemoryStore(), errorlog.NewService(errorlog.NewMemoryRepo()), nil)

	r := gin.New()
	registerRoutes(r, deps{auth: m, reconciler: rec, client: exotel.NewClient(settings)})
	return r, m
}

func TestRoutes_WebhooksArePublic(t *testing.T) {
	r, _ := testEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhooks/exotel/incoming-call?CallSid=CA1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRoutes_OutboundRequireToken(t *testing.T) {
	r, _ := testEngine(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/calls/CA1/status", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	r, _ := testEngine(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}
