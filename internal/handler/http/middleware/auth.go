package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/workpulse-hq/attendance-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests whose verified token is missing, unreadable,
// or not an access token. Runs after jwtauth.Verifier, which does the
// signature check and stashes the token on the context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.HandleError(w, attendance.ErrUnauthorized)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, attendance.ErrUnauthorized)
				return
			}
			if tokenType, _ := claims["type"].(string); tokenType != "access" {
				response.HandleError(w, attendance.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
