package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/focus-analytics/transcript-insights/pkg/logger"
)

func TestLoggingPropagatesCorrelationID(t *testing.T) {
	var fromCtx string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetCorrelationID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	h := Logging(logger.NewNop())(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if fromCtx != "abc-123" {
		t.Errorf("correlation id in context = %q, want abc-123", fromCtx)
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("response header = %q, want abc-123", got)
	}
}

func TestLoggingGeneratesCorrelationID(t *testing.T) {
	var fromCtx string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetCorrelationID(r.Context())
	})

	h := Logging(logger.NewNop())(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if fromCtx == "" {
		t.Error("expected a generated correlation id in context")
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != fromCtx {
		t.Errorf("response header = %q, context = %q, want them equal", got, fromCtx)
	}
}

func TestGetCorrelationIDEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCorrelationID(req.Context()); got != "" {
		t.Errorf("correlation id = %q, want empty", got)
	}
}
