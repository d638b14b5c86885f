// Package api provides the HTTP server and handlers for the Folllow application.
package api

import (
	"net"
	"net/http"

	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/folllow/folllow-server/internal/auth"
	"github.com/folllow/folllow-server/internal/config"
	"github.com/folllow/folllow-server/internal/http/response"
	"github.com/folllow/folllow-server/internal/ratelimit"
	"github.com/folllow/folllow-server/internal/service"
	"github.com/folllow/folllow-server/internal/store/sqlite"
	"github.com/folllow/folllow-server/internal/validation"
)

// Services bundles the application services the handlers dispatch to.
type Services struct {
	Auth      *service.AuthService
	Tree      *service.TreeService
	Page      *service.PageService
	Analytics *service.AnalyticsService
	Dashboard *service.DashboardService
	Upload    *service.UploadService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *sqlite.Store
	services     *Services
	tokens       *auth.TokenService
	google       *auth.GoogleProvider
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
	validator    *validation.Validator
	eventLimiter *ratelimit.KeyedRateLimiter
	baseURL      string
	production   bool
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *sqlite.Store, services *Services, tokens *auth.TokenService, google *auth.GoogleProvider, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		services: services,
		tokens:   tokens,
		google:   google,
		router:    chi.NewRouter(),
		logger:    logger,
		validator: validation.New(),
		// Visitors report at most one view and a handful of clicks per
		// page load; 5 rps with a small burst absorbs honest traffic.
		eventLimiter: ratelimit.New(5, 10),
		baseURL:      cfg.App.BaseURL,
		production:   cfg.App.Environment == "production",
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.eventLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.baseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.tokens))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	humaConfig := huma.DefaultConfig("Folllow API", "1.0.0")
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

	// Typed operations.
	s.registerTreeRoutes()
	s.registerDashboardRoutes()
	s.registerAuthRoutes()

	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Visitor-facing endpoints.
	s.router.Get("/api/geo", s.handleGeo)
	s.router.Route("/api/v1/page", func(r chi.Router) {
		r.Use(s.eventRateLimit)
		r.Post("/view", s.handlePostView)
		r.Post("/click", s.handlePostClick)
	})

	// Browser sign-in flow.
	s.router.Route("/api/v1/auth", func(r chi.Router) {
		r.Get("/signin/google", s.handleSignIn)
		r.Get("/callback/google", s.handleCallback)
		r.Post("/logout", s.handleLogout)
	})

	// Public pages. Registered last; every more specific route wins.
	s.router.Get("/{slug}", s.handlePage)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

// eventRateLimit rejects event reports from IPs exceeding the budget.
func (s *Server) eventRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.eventLimiter.Allow(clientIP(r)) {
			response.TooManyRequests(w, "slow down", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the remote IP, already normalized by middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
