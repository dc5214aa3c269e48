package middleware

import (
	"net/http"
	"strings"

	"vizin/pkg/auth"
	apperrors "vizin/pkg/errors"
	httputil "vizin/pkg/http"
	"vizin/pkg/logger"
)

type TokenParser interface {
	Parse(token string) (auth.Actor, error)
}

// Authenticate resolves the bearer token into an actor stored on the request
// context. Requests without a valid token are rejected with 401.
func Authenticate(parser TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				_ = httputil.WriteError(w, apperrors.Unauthorized("missing bearer token"))
				return
			}

			actor, err := parser.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				log.Warn("Rejected access token",
					"request_id", RequestIDFromContext(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = httputil.WriteError(w, apperrors.Unauthorized("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}
