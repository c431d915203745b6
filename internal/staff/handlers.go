package staff

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"epusara/internal/api"
)

type Handlers struct {
	Staff  *Repository
	Logger *zap.Logger
}

// Available answers GET /staff/available?date=&type=&excludeBookingId=.
// Result is grouped by staff type with the no-staff sentinel pinned first.
func (h Handlers) Available(w http.ResponseWriter, r *http.Request) {
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Parameter 'date' diperlukan")
		return
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Format tarikh tidak sah, guna YYYY-MM-DD")
		return
	}

	var typeFilter *Type
	if ts := strings.TrimSpace(r.URL.Query().Get("type")); ts != "" {
		t, err := ParseType(ts)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Jenis petugas tidak sah")
			return
		}
		typeFilter = &t
	}

	var excludeBookingID *string
	if ex := strings.TrimSpace(r.URL.Query().Get("excludeBookingId")); ex != "" {
		excludeBookingID = &ex
	}

	pool, err := h.Staff.ListActive(r.Context(), typeFilter)
	if err != nil {
		h.Logger.Error("list active staff failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	assigned, err := h.Staff.AssignedOn(r.Context(), day, excludeBookingID)
	if err != nil {
		h.Logger.Error("assigned staff lookup failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"available": Available(pool, assigned)})
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Staff.List(r.Context())
	if err != nil {
		h.Logger.Error("list staff failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	if items == nil {
		items = []Staff{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	StaffType string `json:"staffType"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Nama petugas diperlukan")
		return
	}
	st, err := ParseType(req.StaffType)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Jenis petugas tidak sah")
		return
	}

	s := &Staff{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		StaffType: st,
		IsActive:  true,
	}
	if err := h.Staff.Create(r.Context(), s); err != nil {
		h.Logger.Error("create staff failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Petugas telah didaftarkan",
		"staff":   s,
	})
}

type patchRequest struct {
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func (h Handlers) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "ID petugas diperlukan")
		return
	}
	if id == NoStaffNeededID {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Rekod ini tidak boleh diubah")
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}

	s, err := h.Staff.Update(r.Context(), id, req.Name, req.Phone, req.IsActive)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Petugas tidak dijumpai")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Maklumat petugas telah dikemaskini",
		"staff":   s,
	})
}
