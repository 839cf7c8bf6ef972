// Package api provides the HTTP API server and handlers for the Link marketplace.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/linkmarket/link-server/internal/media"
	"github.com/linkmarket/link-server/internal/ratelimit"
	"github.com/linkmarket/link-server/internal/store"
)

// Options are the server settings that handlers need at request time.
type Options struct {
	// PublicURL is the web client origin the share page redirects to.
	PublicURL string
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string
	// MaxFileSize caps each uploaded file.
	MaxFileSize int64
	// RateLimit is requests per second per client IP. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	media    *media.LocalProvider
	opts     Options
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// local may be nil when media is only stored remotely.
func NewServer(st store.Store, services *Services, local *media.LocalProvider, opts Options, logger *slog.Logger) *Server {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = media.DefaultMaxFileSize
	}

	s := &Server{
		store:    st,
		services: services,
		media:    local,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   logger,
	}
	if opts.RateLimit > 0 {
		s.limiter = ratelimit.NewWithTTL(opts.RateLimit, max(opts.RateBurst, 1), 10*time.Minute)
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Link API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(corsOptions(s.opts.CORSOrigins)))
	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
	s.router.Use(clientIPMiddleware)
	s.router.Use(authMiddleware(s.services.Auth))
}

// setupRoutes registers huma operations and the plain chi routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerListingRoutes()
	s.registerInteractionRoutes()
	s.registerCommentRoutes()
	s.registerSearchRoutes()
	s.registerAdminRoutes()

	// Multipart bodies are handled by chi directly.
	s.router.Post("/api/v1/listings", s.handleCreateListing)
	s.router.Put("/api/v1/listings/{id}", s.handleUpdateListing)

	s.router.Get("/share/listings/{id}", s.handleSharePage)
	s.router.Get("/media/{name}", s.handleMedia)
}

func corsOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
