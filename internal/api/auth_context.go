package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/linkmarket/link-server/internal/domain"
	"github.com/linkmarket/link-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	// userIDKey is the context key for the authenticated user ID.
	userIDKey ctxKey = "userID"
	// userTypeKey carries the user type claim of the token.
	userTypeKey ctxKey = "userType"
	// clientIPKey is the context key for the caller address.
	clientIPKey ctxKey = "clientIP"
)

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return userID, nil
}

// optionalUserID returns the user ID, or "" for anonymous callers.
func optionalUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// userTypeFrom returns the user type claim, or "" for anonymous callers.
func userTypeFrom(ctx context.Context) domain.UserType {
	t, _ := ctx.Value(userTypeKey).(domain.UserType)
	return t
}

// clientIP returns the caller address stored by clientIPMiddleware.
func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// viewerKey identifies the caller for view deduplication.
func viewerKey(ctx context.Context) string {
	return domain.ViewerKey(optionalUserID(ctx), clientIP(ctx))
}

// authMiddleware returns a middleware that validates Bearer tokens and stores user ID in context.
// If no token is present or invalid, continues without user in context.
// Handlers use GetUserID to check authentication.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.VerifyAccessToken(token)
			if err != nil {
				// Invalid token - continue without user (handler will reject if auth required)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, userTypeKey, claims.UserType)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientIPMiddleware stores the caller address for handlers that cannot see the request.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
