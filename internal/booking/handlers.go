package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"epusara/internal/api"
	"epusara/internal/kit"
	"epusara/internal/payment"
	"epusara/internal/plot"
	"epusara/internal/staff"
	"epusara/pkg/db"
)

var validate = validator.New()

type Handlers struct {
	DB       *pgxpool.Pool
	Bookings *Repository
	Payments *payment.Repository
	Logger   *zap.Logger
}

type kitRequest struct {
	KitID    string `json:"kitId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

type staffRequest struct {
	StaffID   string `json:"staffId" validate:"required,uuid"`
	StaffType string `json:"staffType" validate:"required"`
}

type createRequest struct {
	PlotID     string         `json:"plotId" validate:"required,uuid"`
	BurialDate string         `json:"burialDate" validate:"required"`
	TotalPrice string         `json:"totalPrice" validate:"required"`
	DeceasedID *string        `json:"deceasedId,omitempty" validate:"omitempty,uuid"`
	Kits       []kitRequest   `json:"kits,omitempty" validate:"dive"`
	Staff      []staffRequest `json:"staff,omitempty" validate:"dive"`
}

// Create opens a PENDING booking in one transaction: the plot is held (link
// set, status left AVAILABLE until approval), requested kits are reserved out
// of stock, and staff assignments recorded.
func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "JSON tidak sah")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Sila lengkapkan maklumat yang diperlukan")
		return
	}

	burialDate, err := time.Parse("2006-01-02", req.BurialDate)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Tarikh pengebumian tidak sah")
		return
	}
	price, err := decimal.NewFromString(req.TotalPrice)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Harga tempahan tidak sah")
		return
	}
	for _, s := range req.Staff {
		if _, err := staff.ParseType(s.StaffType); err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Jenis petugas tidak sah")
			return
		}
	}

	b := &Booking{
		ID:         uuid.NewString(),
		UserID:     p.ID,
		PlotID:     req.PlotID,
		DeceasedID: req.DeceasedID,
		BurialDate: burialDate,
		Status:     StatusPending,
		TotalPrice: price.StringFixed(2),
		Currency:   "MYR",
	}

	plotTaken := false
	outOfStock := false
	err = db.WithTx(r.Context(), h.DB, h.Logger, func(tx pgx.Tx) error {
		pl, err := plot.GetForUpdate(r.Context(), tx, req.PlotID)
		if err != nil {
			return err
		}
		if pl.Status != plot.StatusAvailable || pl.CurrentBookingID != nil {
			plotTaken = true
			return pgx.ErrTxCommitRollback
		}

		if err := Insert(r.Context(), tx, b); err != nil {
			return err
		}
		if err := plot.Hold(r.Context(), tx, pl.ID, b.ID); err != nil {
			return err
		}
		for _, k := range req.Kits {
			if err := kit.Reserve(r.Context(), tx, k.KitID, b.ID, k.Quantity, p.ID, nil); err != nil {
				if errors.Is(err, kit.ErrInsufficientStock) {
					outOfStock = true
					return pgx.ErrTxCommitRollback
				}
				return err
			}
		}
		for _, s := range req.Staff {
			if err := staff.Assign(r.Context(), tx, b.ID, s.StaffID, staff.Type(s.StaffType)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case plotTaken:
			api.WriteError(w, http.StatusBadRequest, "PLOT_UNAVAILABLE", "Lot pusara telah ditempah")
		case outOfStock:
			api.WriteError(w, http.StatusBadRequest, "KIT_OUT_OF_STOCK", "Stok kit pengurusan jenazah tidak mencukupi")
		case errors.Is(err, pgx.ErrNoRows):
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Lot pusara tidak dijumpai")
		default:
			h.Logger.Error("create booking failed", zap.Error(err))
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		}
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "Tempahan telah dihantar dan menunggu kelulusan",
		"booking": b,
	})
}

// List returns the caller's bookings, or every booking for an admin.
func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	p := api.PrincipalFromContext(r.Context())
	if p == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Sila log masuk untuk meneruskan")
		return
	}

	var statusFilter *Status
	if qs := strings.TrimSpace(r.URL.Query().Get("status")); qs != "" {
		st, err := ParseStatus(qs)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Status tempahan tidak sah")
			return
		}
		statusFilter = &st
	}

	var (
		items []Booking
		err   error
	)
	if p.Admin {
		items, err = h.Bookings.ListAll(r.Context(), statusFilter)
	} else {
		items, err = h.Bookings.ListByUser(r.Context(), p.ID, statusFilter)
	}
	if err != nil {
		h.Logger.Error("list bookings failed", zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	if items == nil {
		items = []Booking{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
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

	b, err := h.Bookings.GetByID(r.Context(), id)
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Tempahan tidak dijumpai")
		return
	}
	if !p.Admin && b.UserID != p.ID {
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "Anda tidak dibenarkan melihat tempahan ini")
		return
	}

	payments, err := h.Payments.ListByBooking(r.Context(), b.ID)
	if err != nil {
		h.Logger.Error("list booking payments failed", zap.String("booking_id", b.ID), zap.Error(err))
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Ralat dalaman")
		return
	}
	if payments == nil {
		payments = []payment.Payment{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":  b,
		"payments": payments,
	})
}
