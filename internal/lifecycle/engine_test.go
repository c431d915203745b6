package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"epusara/internal/booking"
	"epusara/internal/kit"
	"epusara/internal/payment"
	"epusara/internal/plot"
)

const (
	bookingID = "b1"
	plotID    = "pl1"
	adminID   = "admin1"
)

func newTestEngine(store *memStore) *Engine {
	e := NewEngine(store, 7)
	e.now = func() time.Time { return time.Unix(1700000000, 0) }
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
	return e
}

func seedBooking(s *memStore, status booking.Status) {
	s.bookings[bookingID] = booking.Booking{
		ID:         bookingID,
		UserID:     "cust1",
		PlotID:     plotID,
		Status:     status,
		TotalPrice: "500.00",
		Currency:   "MYR",
	}
	bid := bookingID
	s.plots[plotID] = plot.Plot{ID: plotID, Status: plot.StatusAvailable, CurrentBookingID: &bid}
}

func TestApprove_Success(t *testing.T) {
	s := newMemStore()
	seedBooking(s, booking.StatusPending)
	e := newTestEngine(s)

	notes := "semak dokumen ok"
	res, err := e.Approve(context.Background(), bookingID, adminID, &notes)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	got := s.bookings[bookingID]
	if got.Status != booking.StatusApprovedPendingPayment {
		t.Fatalf("booking status = %s", got.Status)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != adminID {
		t.Fatalf("approvedBy not recorded")
	}
	if got.PaymentDeadline == nil {
		t.Fatalf("payment deadline not stamped")
	}
	wantDeadline := time.Unix(1700000000, 0).Add(7 * 24 * time.Hour)
	if !got.PaymentDeadline.Equal(wantDeadline) {
		t.Fatalf("deadline = %v, want %v", got.PaymentDeadline, wantDeadline)
	}

	if len(s.payments) != 1 {
		t.Fatalf("expected exactly one payment, got %d", len(s.payments))
	}
	p := s.payments[res.Payment.ID]
	if p.Amount != "500.00" || p.Status != payment.StatusPending || p.Currency != "MYR" || p.PaymentMethod != payment.MethodQR {
		t.Fatalf("payment mismatch: %+v", p)
	}
	if s.plots[plotID].Status != plot.StatusBooked {
		t.Fatalf("plot status = %s, want BOOKED", s.plots[plotID].Status)
	}
}

func TestApprove_FailsUnlessPending(t *testing.T) {
	for _, st := range []booking.Status{
		booking.StatusApprovedPendingPayment,
		booking.StatusPaymentConfirmed,
		booking.StatusCompleted,
		booking.StatusRejected,
	} {
		s := newMemStore()
		seedBooking(s, st)
		e := newTestEngine(s)

		_, err := e.Approve(context.Background(), bookingID, adminID, nil)
		var sErr *InvalidStateError
		if !errors.As(err, &sErr) {
			t.Fatalf("status %s: expected InvalidStateError, got %v", st, err)
		}
		if len(s.payments) != 0 {
			t.Fatalf("status %s: payment created despite failure", st)
		}
	}
}

func TestApprove_NotFound(t *testing.T) {
	s := newMemStore()
	e := newTestEngine(s)

	_, err := e.Approve(context.Background(), "missing", adminID, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprove_PaymentFailureRollsBackBooking(t *testing.T) {
	s := newMemStore()
	seedBooking(s, booking.StatusPending)
	s.failInsertPayment = true
	e := newTestEngine(s)

	notes := "nota"
	if _, err := e.Approve(context.Background(), bookingID, adminID, &notes); err == nil {
		t.Fatalf("expected error")
	}

	got := s.bookings[bookingID]
	if got.Status != booking.StatusPending {
		t.Fatalf("booking status = %s, want PENDING after rollback", got.Status)
	}
	if got.ApprovedBy != nil || got.AdminNotes != nil || got.PaymentDeadline != nil {
		t.Fatalf("approver fields not rolled back: %+v", got)
	}
	if len(s.payments) != 0 {
		t.Fatalf("payment survived rollback")
	}
	if s.plots[plotID].Status != plot.StatusAvailable {
		t.Fatalf("plot status changed despite rollback")
	}
}

func TestReject_RequiresReason(t *testing.T) {
	s := newMemStore()
	seedBooking(s, booking.StatusPending)
	e := newTestEngine(s)

	_, err := e.Reject(context.Background(), bookingID, adminID, "   ", nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if s.bookings[bookingID].Status != booking.StatusPending {
		t.Fatalf("booking mutated by failed reject")
	}
}

func TestReject_ReleasesPlotPaymentAndStock(t *testing.T) {
	s := newMemStore()
	seedBooking(s, booking.StatusApprovedPendingPayment)
	s.payments["pay1"] = payment.Payment{ID: "pay1", BookingID: bookingID, Status: payment.StatusPending, Amount: "500.00"}
	s.kits["k1"] = kit.FuneralKit{ID: "k1", AvailableQuantity: 3}
	s.kits["k2"] = kit.FuneralKit{ID: "k2", AvailableQuantity: 0}
	s.reservations[bookingID] = []kit.Reservation{{KitID: "k1", Quantity: 2}, {KitID: "k2", Quantity: 1}}
	e := newTestEngine(s)

	b, err := e.Reject(context.Background(), bookingID, adminID, "dokumen tidak lengkap", nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if b.Status != booking.StatusRejected {
		t.Fatalf("returned status = %s", b.Status)
	}

	pl := s.plots[plotID]
	if pl.Status != plot.StatusAvailable || pl.CurrentBookingID != nil {
		t.Fatalf("plot not released: %+v", pl)
	}
	if s.payments["pay1"].Status != payment.StatusCancelled {
		t.Fatalf("pending payment not cancelled")
	}
	if s.kits["k1"].AvailableQuantity != 5 || s.kits["k2"].AvailableQuantity != 1 {
		t.Fatalf("stock not returned: k1=%d k2=%d", s.kits["k1"].AvailableQuantity, s.kits["k2"].AvailableQuantity)
	}

	if len(s.usage) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(s.usage))
	}
	for _, u := range s.usage {
		if u.Reason != kit.ReasonBookingRejected {
			t.Fatalf("ledger reason = %s", u.Reason)
		}
		if u.QuantityChange <= 0 {
			t.Fatalf("return entry must be positive, got %d", u.QuantityChange)
		}
	}
}

func TestReject_InvalidStateHasNoSideEffects(t *testing.T) {
	for _, st := range []booking.Status{booking.StatusPaymentConfirmed, booking.StatusCompleted, booking.StatusRejected} {
		s := newMemStore()
		seedBooking(s, st)
		s.kits["k1"] = kit.FuneralKit{ID: "k1", AvailableQuantity: 3}
		s.reservations[bookingID] = []kit.Reservation{{KitID: "k1", Quantity: 2}}
		e := newTestEngine(s)

		_, err := e.Reject(context.Background(), bookingID, adminID, "sebab", nil)
		var sErr *InvalidStateError
		if !errors.As(err, &sErr) {
			t.Fatalf("status %s: expected InvalidStateError, got %v", st, err)
		}
		if s.kits["k1"].AvailableQuantity != 3 || len(s.usage) != 0 {
			t.Fatalf("status %s: side effects leaked", st)
		}
		if s.bookings[bookingID].Status != st {
			t.Fatalf("status %s: booking mutated", st)
		}
	}
}

func seedSubmittedPayment(s *memStore) {
	seedBooking(s, booking.StatusApprovedPendingPayment)
	s.payments["pay1"] = payment.Payment{ID: "pay1", BookingID: bookingID, Status: payment.StatusSubmitted, Amount: "500.00"}
}

func TestVerifyPayment_Accepted(t *testing.T) {
	s := newMemStore()
	seedSubmittedPayment(s)
	e := newTestEngine(s)

	res, err := e.VerifyPayment(context.Background(), "pay1", adminID, true, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Payment.Status != payment.StatusSuccessful {
		t.Fatalf("payment status = %s", res.Payment.Status)
	}
	if res.BookingStatus != booking.StatusPaymentConfirmed {
		t.Fatalf("booking status = %s", res.BookingStatus)
	}
	// Both writes landed in the store, not just the snapshot.
	if s.payments["pay1"].Status != payment.StatusSuccessful {
		t.Fatalf("payment not persisted")
	}
	if s.bookings[bookingID].Status != booking.StatusPaymentConfirmed {
		t.Fatalf("booking not persisted")
	}
}

func TestVerifyPayment_Declined(t *testing.T) {
	s := newMemStore()
	seedSubmittedPayment(s)
	e := newTestEngine(s)

	res, err := e.VerifyPayment(context.Background(), "pay1", adminID, false, nil)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Payment.Status != payment.StatusRejected {
		t.Fatalf("payment status = %s", res.Payment.Status)
	}
	if s.bookings[bookingID].Status != booking.StatusApprovedPendingPayment {
		t.Fatalf("booking must stay APPROVED_PENDING_PAYMENT, got %s", s.bookings[bookingID].Status)
	}
}

func TestVerifyPayment_FailsUnlessSubmitted(t *testing.T) {
	for _, st := range []payment.Status{payment.StatusPending, payment.StatusSuccessful, payment.StatusRejected, payment.StatusCancelled} {
		s := newMemStore()
		seedBooking(s, booking.StatusApprovedPendingPayment)
		s.payments["pay1"] = payment.Payment{ID: "pay1", BookingID: bookingID, Status: st}
		e := newTestEngine(s)

		_, err := e.VerifyPayment(context.Background(), "pay1", adminID, true, nil)
		var sErr *InvalidStateError
		if !errors.As(err, &sErr) {
			t.Fatalf("payment status %s: expected InvalidStateError, got %v", st, err)
		}
	}
}

func TestVerifyPayment_BookingFailureRollsBackPayment(t *testing.T) {
	s := newMemStore()
	seedSubmittedPayment(s)
	s.failMarkPaymentConfirmed = true
	e := newTestEngine(s)

	if _, err := e.VerifyPayment(context.Background(), "pay1", adminID, true, nil); err == nil {
		t.Fatalf("expected error")
	}

	p := s.payments["pay1"]
	if p.Status != payment.StatusSubmitted {
		t.Fatalf("payment status = %s, want SUBMITTED after rollback", p.Status)
	}
	if p.VerifiedBy != nil || p.VerifiedAt != nil {
		t.Fatalf("verification fields not rolled back")
	}
}

func TestComplete_Success(t *testing.T) {
	s := newMemStore()
	seedBooking(s, booking.StatusPaymentConfirmed)
	deceasedID := "d1"
	b := s.bookings[bookingID]
	b.DeceasedID = &deceasedID
	s.bookings[bookingID] = b
	s.kits["k1"] = kit.FuneralKit{ID: "k1", AvailableQuantity: 3, TotalUsed: 10}
	s.reservations[bookingID] = []kit.Reservation{{KitID: "k1", Quantity: 2}}
	e := newTestEngine(s)

	got, err := e.Complete(context.Background(), bookingID, adminID, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != booking.StatusCompleted {
		t.Fatalf("returned status = %s", got.Status)
	}
	if s.plots[plotID].Status != plot.StatusOccupied {
		t.Fatalf("plot status = %s, want OCCUPIED", s.plots[plotID].Status)
	}
	if s.deceasedPlots["d1"] != plotID {
		t.Fatalf("deceased record not stamped with plot")
	}
	if s.kits["k1"].TotalUsed != 12 {
		t.Fatalf("totalUsed = %d, want 12", s.kits["k1"].TotalUsed)
	}
	if len(s.usage) != 1 || s.usage[0].Reason != kit.ReasonBookingCompleted || s.usage[0].QuantityChange != -2 {
		t.Fatalf("consumption ledger entry wrong: %+v", s.usage)
	}
}

func TestComplete_SecondCallFailsWithoutDoubleConsume(t *testing.T) {
	s := newMemStore()
	seedBooking(s, booking.StatusPaymentConfirmed)
	s.kits["k1"] = kit.FuneralKit{ID: "k1", TotalUsed: 0}
	s.reservations[bookingID] = []kit.Reservation{{KitID: "k1", Quantity: 2}}
	e := newTestEngine(s)

	if _, err := e.Complete(context.Background(), bookingID, adminID, nil); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	_, err := e.Complete(context.Background(), bookingID, adminID, nil)
	var sErr *InvalidStateError
	if !errors.As(err, &sErr) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if s.kits["k1"].TotalUsed != 2 {
		t.Fatalf("totalUsed = %d, double consumption", s.kits["k1"].TotalUsed)
	}
	if len(s.usage) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(s.usage))
	}
}
