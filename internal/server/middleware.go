package server

import (
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/hrdesk/hrdesk/internal/telemetry"
)

// recoverMiddleware turns handler panics into 500 envelopes so one bad
// request cannot take the process down.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panicked",
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				fail(w, http.StatusInternalServerError, "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware attaches a correlation ID to the request context and
// logs each request on completion. The inbound X-Correlation-Id header is
// honored so callers can trace requests across systems.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := telemetry.WithCorrelationID(r.Context(), r.Header.Get("X-Correlation-Id"))
		w.Header().Set("X-Correlation-Id", telemetry.CorrelationID(ctx))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r.WithContext(ctx))

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"correlation_id", telemetry.CorrelationID(ctx),
		)
	})
}

// corsMiddleware answers preflight requests and sets the allow-origin header
// for configured origins. "*" allows any origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Correlation-Id")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.corsOrigins, "*") || slices.Contains(s.corsOrigins, origin)
}

// statusWriter records the response status for request logging. Flush is
// forwarded so SSE streaming keeps working through the wrapper.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
