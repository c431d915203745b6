package kit

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"epusara/internal/api"
	"epusara/pkg/db"
)

type Handlers struct {
	DB     *pgxpool.Pool
	Kits   *Repository
	Logger *zap.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Kits.List(r.Context())
	if err != nil {
		h.Logger.Error("list kits failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	if items == nil {
		items = []FuneralKit{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Usage returns the append-only audit trail for one kit, newest first.
func (h Handlers) Usage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID kit diperlukan")
		return
	}

	items, err := h.Kits.ListUsage(r.Context(), id)
	if err != nil {
		h.Logger.Error("list kit usage failed", zap.String("kit_id", id), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	if items == nil {
		items = []Usage{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type adjustRequest struct {
	QuantityChange int     `json:"quantityChange"`
	Notes          *string `json:"notes,omitempty"`
}

// Adjust corrects stock outside the booking flow, e.g. a new delivery or a
// damaged kit written off. The change lands in the usage ledger as
// MANUAL_ADJUSTMENT with no booking attached.
func (h Handlers) Adjust(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID kit diperlukan")
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}
	if req.QuantityChange == 0 {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Medan 'quantityChange' tidak boleh sifar")
		return
	}

	err := db.WithTx(r.Context(), h.DB, h.Logger, func(tx pgx.Tx) error {
		return AdjustStock(r.Context(), tx, id, req.QuantityChange, p.ID, req.Notes)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			api.WriteError(w, http.StatusBadRequest, "KIT_OUT_OF_STOCK", "Stok kit pengurusan jenazah tidak mencukupi")
			return
		}
		h.Logger.Error("adjust kit stock failed", zap.String("kit_id", id), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"message": "Stok kit telah dikemaskini"})
}
