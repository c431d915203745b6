package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"epusara/pkg/config"
)

// RequireUser resolves the calling principal from a bearer token.
//
// Contract:
// - Caller must provide `Authorization: Bearer <JWT>`.
// - The token is verified against the identity provider's shared secret.
func RequireUser(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
				return
			}

			vs, err := VerifySessionToken(strings.TrimSpace(authz[7:]), cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sesi tidak sah atau telah tamat")
				return
			}

			p := &Principal{ID: vs.UserID, Email: vs.Email}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RoleCounter reports how many role rows a user holds for a role.
type RoleCounter interface {
	CountRole(ctx context.Context, userID, role string) (int, error)
}

// RequireAdmin gates admin-only routes. The principal must hold exactly one
// row of the required role: zero rows is an ordinary user, more than one
// means the role data is malformed, and neither is allowed through. Must run
// after RequireUser.
func RequireAdmin(roles RoleCounter, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
				return
			}

			n, err := roles.CountRole(r.Context(), p.ID, role)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
				return
			}
			if n != 1 {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "Akses pentadbir diperlukan")
				return
			}

			p.Admin = true
			next.ServeHTTP(w, r)
		})
	}
}
