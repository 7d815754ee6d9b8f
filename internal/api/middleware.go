package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/cinelogapp/cinelog-server/internal/domain"
	"github.com/cinelogapp/cinelog-server/internal/http/response"
	"github.com/cinelogapp/cinelog-server/internal/ratelimit"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUser contextKey = "user"

// requireAuth is middleware that validates the bearer token and attaches the
// current account to the request context. The account is resolved fresh per
// request, so a role change is visible immediately.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(w, "invalid authorization header format", s.logger)
			return
		}

		user, err := s.authService.VerifyAccessToken(r.Context(), parts[1])
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that ensures the authenticated user holds at
// least the given role. Must be used after requireAuth.
func (s *Server) requireRole(min domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := getUser(r.Context())
			if user == nil || !user.Role.AtLeast(min) {
				response.Forbidden(w, "insufficient privileges", s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requireModerator ensures the user is at least a moderator.
func (s *Server) requireModerator(next http.Handler) http.Handler {
	return s.requireRole(domain.RoleModerator)(next)
}

// requireAdmin ensures the user is an admin.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireRole(domain.RoleAdmin)(next)
}

// rateLimitByIP returns middleware that throttles requests per client address.
func (s *Server) rateLimitByIP(limiter *ratelimit.KeyedRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				if s.logger != nil {
					s.logger.Warn("Rate limit exceeded", "ip", key, "path", r.URL.Path)
				}
				response.TooManyRequests(w, "too many requests, please try again later", s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getUser extracts the authenticated user from request context.
// Returns nil if not authenticated.
func getUser(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(contextKeyUser).(*domain.User); ok {
		return user
	}
	return nil
}

// getClientIP extracts the client IP from the request, checking proxy headers
// before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the chain is the client.
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Strip the port from RemoteAddr.
	ip := r.RemoteAddr
	if i := strings.LastIndexByte(ip, ':'); i >= 0 {
		return ip[:i]
	}
	return ip
}
