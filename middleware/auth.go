package middleware

import (
	"context"
	"net/http"
	"strings"

	"backoffice/internal/auth"
	"backoffice/pkg/logger"
	"backoffice/pkg/response"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserID returns the authenticated subject stored by AuthMiddleware, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}

// AuthMiddleware requires a valid HS256 bearer token on /api/ routes and the
// websocket feed. Paths listed in public, and everything outside /api/ and
// /ws, pass through.
func AuthMiddleware(secret []byte, public ...string) func(http.Handler) http.Handler {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			protected := strings.HasPrefix(path, "/api/") || path == "/ws"
			if !protected || open[path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Browsers cannot set headers on websocket requests, so the
			// token may also arrive in the query string.
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				tokenString = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			}
			if tokenString == "" {
				response.Error(w, http.StatusUnauthorized, "unauthorized: no token provided")
				return
			}

			userID, err := auth.ParseToken(secret, tokenString)
			if err != nil {
				logger.Sugar.Infof("Invalid token: %v", err)
				response.Error(w, http.StatusUnauthorized, "unauthorized: invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
