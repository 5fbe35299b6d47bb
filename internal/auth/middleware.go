package auth

import (
	"net/http"
	"strings"

	"github.com/servimas/cortineros/internal/http/respond"
)

// Authenticate requires a valid Bearer token and stores its identity in the
// request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respond.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, err := a.Parse(strings.TrimSpace(token))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Require rejects requests whose identity lacks c.
func Require(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := Check(r.Context(), c); err {
			case nil:
				next.ServeHTTP(w, r)
			case ErrUnauthenticated:
				respond.Error(w, http.StatusUnauthorized, err.Error())
			default:
				respond.ErrorDetails(w, http.StatusForbidden, err.Error(), map[string]any{"capability": c})
			}
		})
	}
}
