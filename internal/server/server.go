package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hrdesk/hrdesk/internal/agent"
	"github.com/hrdesk/hrdesk/internal/auth"
	"github.com/hrdesk/hrdesk/internal/frontend"
	"github.com/hrdesk/hrdesk/internal/hr"
	"github.com/hrdesk/hrdesk/internal/session"
	"github.com/hrdesk/hrdesk/internal/telemetry"
)

// Server is the HTTP server for the chat API and the embedded web UI.
type Server struct {
	router    *agent.Router
	sessions  *session.Store
	stores    *hr.Stores
	metrics   *telemetry.Metrics
	logger    *slog.Logger
	mux       *http.ServeMux
	server    *http.Server
	startTime time.Time

	model       string
	version     string
	apiKey      string
	corsOrigins []string
	rateLimiter *auth.RateLimiter
}

// Option configures the Server.
type Option func(*Server)

// WithAPIKey requires a Bearer token on API requests.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetrics attaches the Prometheus collector and serves it on /metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithCORSOrigins sets the origins allowed for browser clients.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// WithModelName records the configured model string for /api/info.
func WithModelName(model string) Option {
	return func(s *Server) { s.model = model }
}

// WithVersion records the build version for /api/info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithRateLimiter enables per-IP request rate limiting.
func WithRateLimiter(rl *auth.RateLimiter) Option {
	return func(s *Server) { s.rateLimiter = rl }
}

// New creates the HTTP server around the agent router, the session store,
// and the HR record stores.
func New(router *agent.Router, sessions *session.Store, stores *hr.Stores, opts ...Option) *Server {
	s := &Server{
		router:    router,
		sessions:  sessions,
		stores:    stores,
		logger:    slog.Default(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("POST /api/chat/message", s.handleMessage)
	mux.HandleFunc("GET /api/chat/history/{sessionId}", s.handleHistory)
	mux.HandleFunc("POST /api/chat/stream", s.handleStream)
	mux.HandleFunc("GET /api/chat/stream", s.handleStreamGet)
	mux.HandleFunc("DELETE /api/chat/session/{sessionId}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/vacations", s.handleListVacations)
	mux.HandleFunc("GET /api/timesheets", s.handleListTimesheets)
	mux.HandleFunc("GET /api/procedures", s.handleListProcedures)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	frontend.Mount(mux, frontend.NewHandler("/ui"))

	s.mux = mux
	return s
}

// Handler returns the full middleware chain for use with httptest or custom
// servers.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = auth.Middleware(s.apiKey, []string{"/health", "/metrics"}, s.rateLimiter)(h)
	if s.rateLimiter != nil {
		h = s.rateLimiter.Middleware(auth.ClientIPKeyFunc)(h)
	}
	h = s.corsMiddleware(h)
	h = s.loggingMiddleware(h)
	h = s.recoverMiddleware(h)
	return h
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server starting", "addr", addr, "model", s.model)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
		"service": "hrdesk",
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	agents := make([]string, 0, 3)
	for _, t := range agent.Types() {
		agents = append(agents, s.router.Lookup(t).Name())
	}
	info := map[string]any{
		"service":  "hrdesk",
		"version":  s.version,
		"model":    s.model,
		"agents":   agents,
		"sessions": s.sessions.Len(),
	}
	if s.stores != nil {
		info["records"] = map[string]int{
			"vacations":  s.stores.Vacations.Len(),
			"timesheets": s.stores.Timesheets.Len(),
			"procedures": s.stores.Procedures.Len(),
		}
	}
	ok(w, info)
}
