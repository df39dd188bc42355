package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDocsRouter_SwaggerUI(t *testing.T) {
	router := NewDocsRouter("/openapi.json").Routes()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html prefix", ct)
	}
	if !strings.Contains(w.Body.String(), "/openapi.json") {
		t.Error("expected the configured spec URL to appear in the rendered HTML")
	}
}

func TestDocsRouter_OpenAPIJSON(t *testing.T) {
	router := NewDocsRouter("/openapi.json").Routes()

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	req.Host = "example.com"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if !strings.Contains(w.Body.String(), "example.com") {
		t.Error("expected server URL to be rewritten with the request host")
	}
}

func TestDocsRouter_OpenAPIYAML(t *testing.T) {
	router := NewDocsRouter("/openapi.json").Routes()

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	req.Host = "example.com"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q, want application/yaml", ct)
	}
	body := w.Body.String()
	if strings.HasPrefix(strings.TrimSpace(body), "{") {
		t.Error("expected YAML output, got what looks like JSON")
	}
	if !strings.Contains(body, "example.com") {
		t.Error("expected server URL to be rewritten with the request host")
	}
}

func TestDocsRouter_ForwardedHeaders(t *testing.T) {
	router := NewDocsRouter("/openapi.json").Routes()

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	req.Host = "internal.local"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "api.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `"url": "https://api.example.com/api/v1"`) {
		t.Errorf("expected rewritten url using forwarded headers, got: %s", body)
	}
}
