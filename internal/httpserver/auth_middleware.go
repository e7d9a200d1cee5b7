package httpserver

import (
	"context"
	"net/http"
	"strings"

	"messenger/internal/domain"
	"messenger/internal/security"
	"messenger/internal/service"
)

type contextKey string

const (
	userContextKey   contextKey = "currentUser"
	claimsContextKey contextKey = "tokenClaims"
)

// WithUser returns a new context carrying the current user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser extracts the current user from context, if any.
func CurrentUser(r *http.Request) *domain.User {
	if v := r.Context().Value(userContextKey); v != nil {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

func currentClaims(r *http.Request) *security.Claims {
	c, _ := r.Context().Value(claimsContextKey).(*security.Claims)
	return c
}

// AuthMiddleware validates the Bearer token and attaches the user to the context.
func AuthMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
				return
			}
			tokenStr := strings.TrimSpace(authHeader[len("Bearer "):])

			user, claims, err := auth.CurrentUser(r.Context(), tokenStr)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := WithUser(r.Context(), user)
			ctx = context.WithValue(ctx, claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
