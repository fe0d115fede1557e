package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// RequireManager requires a manager or admin role claim. Services recheck
// the roster role on every call.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, employee.ErrPermissionDenied)
			return
		}

		roleStr, ok := claims["role"].(string)
		if !ok {
			response.HandleError(w, employee.ErrPermissionDenied)
			return
		}

		role := employee.Role(roleStr)
		if role != employee.RoleManager && role != employee.RoleAdmin {
			response.HandleError(w, employee.ErrPermissionDenied)
			return
		}

		next.ServeHTTP(w, r)
	})
}
