// Package api provides the HTTP API server and handlers for the CineLog application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cinelogapp/cinelog-server/internal/config"
	"github.com/cinelogapp/cinelog-server/internal/http/response"
	"github.com/cinelogapp/cinelog-server/internal/ratelimit"
	"github.com/cinelogapp/cinelog-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService    *service.AuthService
	contentService *service.ContentService
	catalogService *service.CatalogService
	statsService   *service.StatsService
	loginLimiter   *ratelimit.KeyedRateLimiter
	router         *chi.Mux
	logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg *config.Config,
	authService *service.AuthService,
	contentService *service.ContentService,
	catalogService *service.CatalogService,
	statsService *service.StatsService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		authService:    authService,
		contentService: contentService,
		catalogService: catalogService,
		statsService:   statsService,
		loginLimiter:   ratelimit.New(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginBurst),
		router:         chi.NewRouter(),
		logger:         logger,
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.loginLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/auth", func(r chi.Router) {
		// Credential endpoints are throttled per client address.
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitByIP(s.loginLimiter))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleGetCurrentUser)
			r.Get("/me/stats", s.handleGetCurrentUserStats)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Get("/users", s.handleListUsers)
			r.Put("/users/{id}/role", s.handleUpdateUserRole)
		})
	})

	s.router.Route("/movies", func(r chi.Router) {
		// Public catalog reads.
		r.Get("/", s.handleListMovies)
		r.Get("/search", s.handleSearchMovies)
		r.Get("/{id}", s.handleGetMovie)
		r.Get("/{id}/reviews", s.handleGetReviews)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/{id}/reviews", s.handleSubmitReview)
			r.Post("/reviews/{id}/vote", s.handleVoteOnReview)
			r.Post("/reviews/{id}/report", s.handleReportReview)
			r.Get("/user/watchlist", s.handleGetWatchlist)
			r.Post("/{id}/watchlist", s.handleAddToWatchlist)
			r.Delete("/{id}/watchlist", s.handleRemoveFromWatchlist)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireModerator)
			r.Get("/reviews/reports", s.handleListReports)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
