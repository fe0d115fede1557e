package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-bot/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-bot/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller as an employee.Actor in the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, response.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, response.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, response.ErrInvalidToken)
				return
			}

			identity, err := jwt.ClaimsFromMap(claims)
			if err != nil {
				response.HandleError(w, response.ErrInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, employee.Actor{
				GuildID: identity.GuildID,
				UserID:  identity.UserID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// ActorFromContext returns the caller stored by AuthRequired.
func ActorFromContext(ctx context.Context) (employee.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(employee.Actor)
	return actor, ok
}
