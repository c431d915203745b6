package user

import (
	"net/http"

	"go.uber.org/zap"

	"epusara/internal/api"
)

type Handlers struct {
	Users  *Repository
	Logger *zap.Logger
}

// Me returns the caller's profile and whether they hold the admin role.
func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	u, err := h.Users.GetByID(r.Context(), p.ID)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Pengguna tidak dijumpai")
		return
	}

	n, err := h.Users.CountRole(r.Context(), p.ID, RoleAdmin)
	if err != nil {
		h.Logger.Error("role lookup failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"user":    u,
		"isAdmin": n == 1,
	})
}
