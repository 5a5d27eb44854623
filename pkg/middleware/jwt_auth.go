package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tourism-marketplace/pkg/errors"
	jwtutil "tourism-marketplace/pkg/jwt"
	"tourism-marketplace/pkg/logger"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "user_id"
	// RoleKey is the context key for the caller's role
	RoleKey ContextKey = "user_role"
)

// TokenValidator is satisfied by *jwtutil.JWTManager
type TokenValidator interface {
	ValidateToken(token string) (*jwtutil.Claims, error)
}

// JWTAuthMiddleware rejects requests without a valid bearer token
func JWTAuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				HandleError(w, r, errors.NewUnauthorizedError("Unauthorized"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.FromContext(r.Context(), zap.L()).Debug("token rejected", zap.Error(err))
				HandleError(w, r, errors.NewUnauthorizedError("Unauthorized"))
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, RoleKey, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}
