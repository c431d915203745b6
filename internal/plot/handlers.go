package plot

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"epusara/internal/api"
)

type Handlers struct {
	Plots  *Repository
	Logger *zap.Logger
}

// List is public: the frontend renders the plot grid from it. An optional
// ?status= narrows the result, e.g. status=AVAILABLE for the booking form.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if qs := strings.TrimSpace(r.URL.Query().Get("status")); qs != "" {
		st, err := ParseStatus(qs)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Status lot tidak sah")
			return
		}
		status = &st
	}

	items, err := h.Plots.List(r.Context(), status)
	if err != nil {
		h.Logger.Error("list plots failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	if items == nil {
		items = []Plot{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}
