package middleware

import (
	"context"
	"net/http"

	"tourism-marketplace/internal/domain/aggregate"
	"tourism-marketplace/pkg/errors"
)

// RoleAuthMiddleware lets a request through when allowed accepts the caller's role
func RoleAuthMiddleware(allowed func(aggregate.UserRole) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok || role == "" {
				HandleError(w, r, errors.NewUnauthorizedError("Unauthorized"))
				return
			}

			if !allowed(role) {
				HandleError(w, r, errors.NewForbiddenError("Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin admits ADMIN and SUPER_ADMIN
func RequireAdmin(next http.Handler) http.Handler {
	return RoleAuthMiddleware(aggregate.UserRole.IsAdmin)(next)
}

func GetUserRole(ctx context.Context) (aggregate.UserRole, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	if !ok {
		return "", false
	}
	return aggregate.UserRole(role), true
}
