package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/salescope/salescope/internal/agent"
	"github.com/salescope/salescope/internal/dataset"
	"github.com/salescope/salescope/internal/engine"
	"github.com/salescope/salescope/internal/handler"
	"github.com/salescope/salescope/internal/interpreter"
	"github.com/salescope/salescope/internal/middleware"
	"github.com/salescope/salescope/internal/resolver"
	"github.com/salescope/salescope/internal/security"
)

func (s *Server) setupRoutes(store *dataset.Store) (http.Handler, error) {
	cfg := s.cfg
	sch := store.Schema()

	// ─── Interpreter chain ──────────────────────────────────────────────────────
	local := interpreter.NewLocal(sch)

	var fallback resolver.Interpreter
	if cfg.AnthropicAPIKey != "" {
		fallback = agent.New(
			cfg.AnthropicAPIKey,
			cfg.AnthropicModel,
			cfg.AnthropicBaseURL,
			time.Duration(cfg.FallbackTimeout)*time.Second,
			sch,
		)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - fallback interpreter disabled, only local pattern matching available")
	}

	res := resolver.New(local, fallback)

	// ─── Security ───────────────────────────────────────────────────────────────
	promptVal := security.NewPromptValidator()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Handlers ────────────────────────────────────────────────────────────────
	exec := engine.New(sch)
	askH := handler.NewAskHandler(store, res, exec, promptVal, auditLogger)
	dataInfoH := handler.NewDataInfoHandler(store)
	healthH := handler.NewHealthHandler(store, fallback != nil)

	log.Info().
		Int("rows", store.Len()).
		Bool("fallback_enabled", fallback != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/ask", askH.Ask)
			r.Get("/data-info", dataInfoH.DataInfo)
		})
	})

	return r, nil
}
