package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCorrelationID_PropagatesInboundHeader(t *testing.T) {
	var got string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got != "req-123" {
		t.Errorf("correlation ID in context = %q, want %q", got, "req-123")
	}
	if resp := w.Header().Get("X-Correlation-ID"); resp != "req-123" {
		t.Errorf("response header = %q, want %q", resp, "req-123")
	}
}

func TestCorrelationID_FallsBackToChiRequestID(t *testing.T) {
	var got string
	handler := CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// No inbound header and no chi RequestID middleware in front of this
	// handler in the test, so the fallback is an empty string — still set
	// (and still echoed on the response header) rather than left absent.
	if got != "" {
		t.Errorf("expected empty fallback correlation ID without chi RequestID middleware, got %q", got)
	}
	if _, ok := w.Result().Header["X-Correlation-Id"]; !ok {
		t.Error("expected X-Correlation-ID response header to be set even when empty")
	}
}

func TestGetCorrelationID_AbsentFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetCorrelationID(req.Context()); got != "" {
		t.Errorf("expected empty string for missing correlation ID, got %q", got)
	}
}
