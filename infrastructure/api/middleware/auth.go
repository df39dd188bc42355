package middleware

import (
	"net/http"
)

// AuthConfig holds API key write-protection configuration.
type AuthConfig struct {
	keys    map[string]struct{}
	enabled bool
}

// NewAuthConfigWithKeys creates an AuthConfig accepting any of the given keys.
// An empty or nil slice disables write protection entirely.
func NewAuthConfigWithKeys(keys []string) AuthConfig {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return AuthConfig{keys: set, enabled: len(set) > 0}
}

// Enabled returns true if at least one API key is configured.
func (c AuthConfig) Enabled() bool { return c.enabled }

func (c AuthConfig) valid(key string) bool {
	_, ok := c.keys[key]
	return ok
}

// WriteProtect returns middleware that requires a valid X-API-KEY header on
// mutating requests (POST, PUT, PATCH, DELETE). Safe methods (GET, HEAD,
// OPTIONS) always pass through. If the config has no keys, all requests pass.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.enabled || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get("X-API-KEY")
			if key == "" || !config.valid(key) {
				w.Header().Set("Content-Type", "application/vnd.api+json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"errors":[{"status":"401","title":"Unauthorized","detail":"a valid X-API-KEY header is required"}]}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth is a convenience wrapper around WriteProtect for the
// common case of configuring write protection directly from a key list.
func WriteProtectAuth(keys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(keys))
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
