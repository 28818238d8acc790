package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"billboardwatch/internal/token"
	"billboardwatch/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyUser contextKey = "user"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth validates the bearer token and attaches the resolved user to
// the request context. The 401 reason codes let clients tell an expired
// session apart from a malformed request.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			s.respondUnauthenticated(w, "missing_token", "Access denied. No token provided.")
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")

		user, err := s.auth.Authenticate(r.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpired):
				s.respondUnauthenticated(w, "token_expired", "Token expired.")
			case errors.Is(err, token.ErrInvalid):
				s.respondUnauthenticated(w, "token_invalid", "Invalid token.")
			case errors.Is(err, types.ErrUserNotFound):
				s.respondUnauthenticated(w, "unknown_user", "Invalid token. User not found.")
			default:
				s.logger.WithError(err).Error("failed to authenticate request")
				s.internalServerError(w, err)
			}
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": user.ID,
			"role":    user.Role,
		}).Debug("authenticated user")

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORSMiddleware reflects configured origins and answers preflight requests.
func (s *Service) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			if _, ok := s.allowedOrigins[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) actorFromContext(ctx context.Context) (*types.User, error) {
	user, ok := ctx.Value(contextKeyUser).(*types.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}
