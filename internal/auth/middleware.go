package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Middleware returns an HTTP middleware that validates API key authentication.
// An empty apiKey disables authentication entirely. Requests to skipPaths
// (e.g., "/health") and static asset paths are allowed without a key.
// If rateLimiter is non-nil, failed auth attempts are tracked and IPs are
// blocked after exceeding the threshold (10 failures/min, 5-min block).
func Middleware(apiKey string, skipPaths []string, rateLimiter *RateLimiter) func(http.Handler) http.Handler {
	skipSet := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skipSet[p] = true
	}
	rl := rateLimiter

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if skipSet[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Static assets and the embedded UI shell stay open so the
			// browser can load the page that prompts for a key.
			if strings.HasPrefix(r.URL.Path, "/static/") ||
				r.URL.Path == "/" ||
				r.URL.Path == "/favicon.ico" {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := ClientIPKeyFunc(r)
			if rl != nil && rl.IsAuthBlocked(clientIP) {
				retryAfter := rl.AuthBlockRetryAfter(clientIP)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				writeAuthError(w, http.StatusTooManyRequests, "Too many failed authentication attempts. Try again later.")
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				if rl != nil {
					rl.AuthFailure(clientIP)
				}
				writeAuthError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				if rl != nil {
					rl.AuthFailure(clientIP)
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid Authorization format, expected 'Bearer <key>'")
				return
			}

			key := strings.TrimPrefix(authz, prefix)
			if !ValidateKey(key, apiKey) {
				if rl != nil {
					rl.AuthFailure(clientIP)
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			if rl != nil {
				rl.AuthSuccess(clientIP)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError writes the API error envelope used across the service.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":    false,
		"error":      message,
		"statusCode": status,
	})
}
