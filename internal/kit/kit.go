package kit

import (
	"errors"
	"time"
)

type FuneralKit struct {
	ID                string    `json:"id"`
	KitType           string    `json:"kitType"`
	AvailableQuantity int       `json:"availableQuantity"`
	TotalUsed         int       `json:"totalUsed"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Usage is one immutable row of the stock audit trail. Rows are only ever
// appended; corrections are new compensating entries, never edits.
// BookingID is nil for manual stock adjustments.
type Usage struct {
	ID             string    `json:"id"`
	KitID          string    `json:"kitId"`
	BookingID      *string   `json:"bookingId,omitempty"`
	QuantityChange int       `json:"quantityChange"`
	Reason         Reason    `json:"reason"`
	ChangedBy      string    `json:"changedBy"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Reason string

const (
	ReasonBookingCreated   Reason = "BOOKING_CREATED"
	ReasonBookingRejected  Reason = "BOOKING_REJECTED"
	ReasonBookingCompleted Reason = "BOOKING_COMPLETED"
	ReasonManualAdjustment Reason = "MANUAL_ADJUSTMENT"
)

// Reservation is the quantity a booking holds against one kit.
type Reservation struct {
	KitID    string `json:"kitId"`
	Quantity int    `json:"quantity"`
}

var ErrInsufficientStock = errors.New("insufficient kit stock")
