package lifecycle

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"epusara/internal/api"
)

// Handlers exposes the admin lifecycle operations over HTTP. Authentication
// and the admin role gate run as middleware before any of these.
type Handlers struct {
	Engine *Engine
	Logger *zap.Logger
}

type approveRequest struct {
	AdminNotes *string `json:"adminNotes,omitempty"`
}

func (h Handlers) Approve(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID tempahan diperlukan")
		return
	}

	var req approveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
			return
		}
	}

	res, err := h.Engine.Approve(r.Context(), id, p.ID, req.AdminNotes)
	if err != nil {
		h.writeEngineError(w, err, "approve")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Tempahan telah diluluskan, menunggu pembayaran",
		"booking": res.Booking,
		"payment": res.Payment,
	})
}

type rejectRequest struct {
	RejectionReason string  `json:"rejectionReason"`
	AdminNotes      *string `json:"adminNotes,omitempty"`
}

func (h Handlers) Reject(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID tempahan diperlukan")
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}

	b, err := h.Engine.Reject(r.Context(), id, p.ID, req.RejectionReason, req.AdminNotes)
	if err != nil {
		h.writeEngineError(w, err, "reject")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Tempahan telah ditolak",
		"booking": b,
	})
}

type completeRequest struct {
	AdminNotes *string `json:"adminNotes,omitempty"`
}

func (h Handlers) Complete(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID tempahan diperlukan")
		return
	}

	var req completeRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
			return
		}
	}

	b, err := h.Engine.Complete(r.Context(), id, p.ID, req.AdminNotes)
	if err != nil {
		h.writeEngineError(w, err, "complete")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Tempahan telah selesai",
		"booking": b,
	})
}

type verifyRequest struct {
	Verified   *bool   `json:"verified"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

func (h Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
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

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}
	if req.Verified == nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Medan 'verified' diperlukan")
		return
	}

	res, err := h.Engine.VerifyPayment(r.Context(), id, p.ID, *req.Verified, req.AdminNotes)
	if err != nil {
		h.writeEngineError(w, err, "verify payment")
		return
	}

	msg := "Pembayaran telah ditolak, sila hantar semula bukti pembayaran"
	if *req.Verified {
		msg = "Pembayaran telah disahkan"
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message":       msg,
		"payment":       res.Payment,
		"bookingStatus": res.BookingStatus,
	})
}

func (h Handlers) writeEngineError(w http.ResponseWriter, err error, op string) {
	var vErr *ValidationError
	var sErr *InvalidStateError
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Rekod tidak dijumpai")
	case errors.As(err, &vErr):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Sila lengkapkan maklumat yang diperlukan")
	case errors.As(err, &sErr):
		api.WriteError(w, http.StatusBadRequest, "INVALID_STATE", "Status semasa tidak membenarkan tindakan ini")
	default:
		// No database detail leaks to the caller.
		h.Logger.Error("lifecycle operation failed", zap.String("op", op), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
	}
}
