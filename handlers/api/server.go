package api

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/nijaru/summora/config"
	"github.com/nijaru/summora/middleware"
	"github.com/nijaru/summora/services/messaging"
	"github.com/nijaru/summora/services/summary"
	"github.com/nijaru/summora/validation"
	"github.com/sirupsen/logrus"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Server struct {
	messages   *MessageHandler
	summary    *SummaryHandler
	transcript *TranscriptHandler
	settings   *SettingsHandler
	checks     map[string]HealthCheck
	config     *config.Config
	logger     *logrus.Logger
	server     *http.Server
	startTime  time.Time
}

type ServerOption func(*Server)

// NewServer creates a new API server with the provided services and options
func NewServer(cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		checks:    make(map[string]HealthCheck),
		config:    cfg,
		logger:    logrus.StandardLogger(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// WithServices sets up the handlers with the provided services
func WithServices(
	summarySvc summary.Service,
	transcripts messaging.TranscriptFetcher,
) ServerOption {
	return func(s *Server) {
		validator := validation.NewValidator()
		router := messaging.NewRouter(summarySvc, transcripts, s.logger)
		s.messages = NewMessageHandler(router, validator)
		s.summary = NewSummaryHandler(summarySvc, validator)
		s.transcript = NewTranscriptHandler(transcripts, validator)
		s.settings = NewSettingsHandler(summarySvc, validator)
	}
}

// WithLogger sets a custom logger for the server. It must come before
// WithServices to reach the message router.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHealthCheck adds a named dependency check to /health.
func WithHealthCheck(name string, check HealthCheck) ServerOption {
	return func(s *Server) {
		s.checks[name] = check
	}
}

func (s *Server) Start() error {
	s.logger.WithField("port", s.config.ServerPort).Info("Starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Handler returns the fully wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	if s.messages != nil {
		s.addV1Routes(mux)
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.middleware(mux)
}

func (s *Server) addV1Routes(mux *http.ServeMux) {
	const v1Prefix = "/api/v1"

	mux.HandleFunc("POST "+v1Prefix+"/messages", s.messages.HandleMessage)

	mux.HandleFunc("POST "+v1Prefix+"/summary", s.summary.HandleCreateSummary)
	mux.HandleFunc("POST "+v1Prefix+"/keys/test", s.summary.HandleTestAPIKey)

	mux.HandleFunc("POST "+v1Prefix+"/transcript", s.transcript.HandleGetTranscript)
	mux.HandleFunc("GET "+v1Prefix+"/page", s.transcript.HandleCheckPage)

	mux.HandleFunc("GET "+v1Prefix+"/settings", s.settings.HandleGetSettings)
	mux.HandleFunc("PUT "+v1Prefix+"/settings", s.settings.HandleUpdateSettings)
}

func (s *Server) middleware(handler http.Handler) http.Handler {
	mw := s.config.Middleware

	var middlewares []func(http.Handler) http.Handler
	if mw.EnableRecover {
		middlewares = append(middlewares, middleware.Recovery(s.logger))
	}
	if mw.EnableRequestID {
		middlewares = append(middlewares, middleware.RequestID())
	}
	if mw.EnableLogger {
		middlewares = append(middlewares, middleware.Logging(s.logger))
	}
	if mw.EnableCORS && s.config.CORS.Enabled {
		middlewares = append(middlewares, middleware.CORS(s.config.CORS))
	}
	if mw.EnableTimeout {
		middlewares = append(middlewares, middleware.Timeout(s.config.RequestTimeout))
	}
	if mw.EnableRateLimit && s.config.RateLimit.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.config.RateLimit.RequestsPerMinute,
			s.config.RateLimit.BurstSize,
		)
		middlewares = append(middlewares, rateLimiter.Middleware)
	}

	return middleware.Chain(handler, middlewares...)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   s.config.Version,
		"uptime":    time.Since(s.startTime).String(),
	}
	code := http.StatusOK

	if len(s.checks) > 0 {
		names := make([]string, 0, len(s.checks))
		for name := range s.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		deps := make(map[string]string, len(names))
		for _, name := range names {
			if err := s.checks[name](r.Context()); err != nil {
				middleware.GetLogger(r.Context()).WithError(err).WithField("dependency", name).Warn("Health check failed")
				deps[name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			deps[name] = "ok"
		}
		status["dependencies"] = deps
	}

	if s.config.Debug {
		status["debug"] = true
		status["goroutines"] = runtime.NumGoroutine()
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		status["memory"] = map[string]interface{}{
			"allocated": m.Alloc,
			"total":     m.TotalAlloc,
			"system":    m.Sys,
			"gc_cycles": m.NumGC,
		}
	}

	respondJSON(w, r, code, status)
}
