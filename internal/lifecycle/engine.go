package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"epusara/internal/booking"
	"epusara/internal/kit"
	"epusara/internal/payment"
	"epusara/internal/plot"
)

// Engine drives the booking lifecycle:
//
//	PENDING → APPROVED_PENDING_PAYMENT → PAYMENT_CONFIRMED → COMPLETED
//
// with REJECTED reachable from the first two states. Every operation checks
// the current status before writing and runs inside one store transaction,
// so concurrent admins racing on the same booking serialize on the row lock
// and the loser fails its precondition.
type Engine struct {
	store      Store
	paymentDue time.Duration
	now        func() time.Time
	newID      func() string
}

func NewEngine(store Store, paymentDueDays int) *Engine {
	if paymentDueDays <= 0 {
		paymentDueDays = 7
	}
	return &Engine{
		store:      store,
		paymentDue: time.Duration(paymentDueDays) * 24 * time.Hour,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// ApproveResult carries the post-transition snapshot.
type ApproveResult struct {
	Booking *booking.Booking `json:"booking"`
	Payment *payment.Payment `json:"payment"`
}

// Approve moves a PENDING booking to APPROVED_PENDING_PAYMENT, opens its
// payment record and marks the plot BOOKED.
func (e *Engine) Approve(ctx context.Context, bookingID, actor string, adminNotes *string) (*ApproveResult, error) {
	var out ApproveResult
	err := e.store.Within(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusPending {
			return invalidState("approve", b.Status)
		}

		deadline := e.now().Add(e.paymentDue)
		if err := tx.MarkApproved(ctx, b.ID, actor, adminNotes, deadline); err != nil {
			return err
		}

		p := &payment.Payment{
			ID:            e.newID(),
			BookingID:     b.ID,
			Amount:        b.TotalPrice,
			Currency:      b.Currency,
			PaymentMethod: payment.MethodQR,
			Status:        payment.StatusPending,
		}
		if err := tx.InsertPayment(ctx, p); err != nil {
			return err
		}
		if err := tx.SetPlotStatus(ctx, b.PlotID, plot.StatusBooked); err != nil {
			return err
		}

		now := e.now()
		b.Status = booking.StatusApprovedPendingPayment
		b.ApprovedBy = &actor
		b.ApprovalDate = &now
		b.AdminNotes = adminNotes
		b.PaymentDeadline = &deadline
		out = ApproveResult{Booking: b, Payment: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Reject closes a booking before payment is confirmed: the plot goes back to
// the pool, pending payments are voided, and every kit reservation is
// returned to stock with a BOOKING_REJECTED ledger entry.
func (e *Engine) Reject(ctx context.Context, bookingID, actor, reason string, adminNotes *string) (*booking.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "rejectionReason", Message: "required"}
	}

	var out *booking.Booking
	err := e.store.Within(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusPending && b.Status != booking.StatusApprovedPendingPayment {
			return invalidState("reject", b.Status)
		}

		if err := tx.MarkRejected(ctx, b.ID, actor, reason, adminNotes); err != nil {
			return err
		}
		if err := tx.ReleasePlot(ctx, b.PlotID); err != nil {
			return err
		}
		if err := tx.CancelPendingPayments(ctx, b.ID); err != nil {
			return err
		}

		reservations, err := tx.KitReservations(ctx, b.ID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if err := tx.ReleaseKit(ctx, res.KitID, b.ID, res.Quantity, kit.ReasonBookingRejected, actor); err != nil {
				return err
			}
		}

		b.Status = booking.StatusRejected
		b.ApprovedBy = &actor
		b.RejectionReason = &reason
		b.AdminNotes = adminNotes
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type VerifyResult struct {
	Payment       *payment.Payment `json:"payment"`
	BookingStatus booking.Status   `json:"bookingStatus"`
}

// VerifyPayment settles a SUBMITTED payment. Accepted: payment SUCCESSFUL and
// booking PAYMENT_CONFIRMED in one transaction. Declined: payment REJECTED
// while the booking stays APPROVED_PENDING_PAYMENT so the customer can
// resubmit.
func (e *Engine) VerifyPayment(ctx context.Context, paymentID, actor string, verified bool, notes *string) (*VerifyResult, error) {
	var out VerifyResult
	err := e.store.Within(ctx, func(tx Tx) error {
		p, err := tx.PaymentForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		if p.Status != payment.StatusSubmitted {
			return &InvalidStateError{Op: "verify payment", Current: string(p.Status)}
		}

		b, err := tx.BookingForUpdate(ctx, p.BookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusApprovedPendingPayment {
			return invalidState("verify payment", b.Status)
		}

		next := payment.StatusRejected
		if verified {
			next = payment.StatusSuccessful
		}
		if err := tx.SetPaymentVerification(ctx, p.ID, next, actor, notes); err != nil {
			return err
		}
		if verified {
			if err := tx.MarkPaymentConfirmed(ctx, b.ID); err != nil {
				return err
			}
			b.Status = booking.StatusPaymentConfirmed
		}

		now := e.now()
		p.Status = next
		p.VerifiedBy = &actor
		p.VerifiedAt = &now
		p.PaymentNotes = notes
		out = VerifyResult{Payment: p, BookingStatus: b.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete closes out a PAYMENT_CONFIRMED booking after the burial: the plot
// becomes OCCUPIED, the deceased record is stamped with it, and reserved kits
// are consumed for good.
func (e *Engine) Complete(ctx context.Context, bookingID, actor string, adminNotes *string) (*booking.Booking, error) {
	var out *booking.Booking
	err := e.store.Within(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != booking.StatusPaymentConfirmed {
			return invalidState("complete", b.Status)
		}

		if err := tx.MarkCompleted(ctx, b.ID, adminNotes); err != nil {
			return err
		}
		if err := tx.SetPlotStatus(ctx, b.PlotID, plot.StatusOccupied); err != nil {
			return err
		}
		if b.DeceasedID != nil {
			if err := tx.SetDeceasedPlot(ctx, *b.DeceasedID, b.PlotID); err != nil {
				return err
			}
		}

		reservations, err := tx.KitReservations(ctx, b.ID)
		if err != nil {
			return err
		}
		for _, res := range reservations {
			if err := tx.ConsumeKit(ctx, res.KitID, b.ID, res.Quantity, kit.ReasonBookingCompleted, actor); err != nil {
				return err
			}
		}

		b.Status = booking.StatusCompleted
		if adminNotes != nil {
			b.AdminNotes = adminNotes
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
