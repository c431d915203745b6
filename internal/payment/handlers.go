package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"epusara/internal/api"
	"epusara/pkg/db"
)

type Handlers struct {
	DB       *pgxpool.Pool
	Payments *Repository
	Logger   *zap.Logger
}

type submitRequest struct {
	PaymentMethod string  `json:"paymentMethod"`
	Reference     *string `json:"reference,omitempty"`
}

// Submit is the customer handing in proof of payment: PENDING → SUBMITTED.
// The admin verdict later comes through the lifecycle VerifyPayment op.
func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID pembayaran diperlukan")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		method = MethodQR
	}

	var updated *Payment
	notOwner := false
	wrongState := false
	err := db.WithTx(r.Context(), h.DB, h.Logger, func(tx pgx.Tx) error {
		pay, err := GetForUpdate(r.Context(), tx, id)
		if err != nil {
			return err
		}

		// Ownership runs through the booking's applicant.
		var ownerID string
		if err := tx.QueryRow(r.Context(), `SELECT user_id FROM bookings WHERE id = $1`, pay.BookingID).Scan(&ownerID); err != nil {
			return err
		}
		if ownerID != p.ID {
			notOwner = true
			return pgx.ErrTxCommitRollback
		}
		if pay.Status != StatusPending && pay.Status != StatusRejected {
			wrongState = true
			return pgx.ErrTxCommitRollback
		}

		if err := MarkSubmitted(r.Context(), tx, pay.ID, method, req.Reference); err != nil {
			return err
		}
		pay.Status = StatusSubmitted
		pay.PaymentMethod = method
		pay.Reference = req.Reference
		updated = pay
		return nil
	})
	if err != nil {
		switch {
		case notOwner:
			api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Anda tidak dibenarkan mengemaskini pembayaran ini")
		case wrongState:
			api.WriteError(w, http.StatusBadRequest, "INVALID_STATE", "Status semasa tidak membenarkan tindakan ini")
		case errors.Is(err, pgx.ErrNoRows):
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Pembayaran tidak dijumpai")
		default:
			h.Logger.Error("submit payment failed", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		}
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Bukti pembayaran telah dihantar dan menunggu pengesahan",
		"payment": updated,
	})
}
