package lifecycle

import (
	"context"
	"errors"
	"time"

	"epusara/internal/booking"
	"epusara/internal/kit"
	"epusara/internal/payment"
	"epusara/internal/plot"
)

// memStore is an in-memory Store whose Within snapshots state up front and
// restores it when fn fails, mirroring transaction rollback. Failure
// injection flags simulate mid-transaction store errors.
type memStore struct {
	bookings      map[string]booking.Booking
	payments      map[string]payment.Payment
	plots         map[string]plot.Plot
	kits          map[string]kit.FuneralKit
	reservations  map[string][]kit.Reservation
	usage         []kit.Usage
	deceasedPlots map[string]string

	failInsertPayment        bool
	failMarkPaymentConfirmed bool
}

func newMemStore() *memStore {
	return &memStore{
		bookings:      map[string]booking.Booking{},
		payments:      map[string]payment.Payment{},
		plots:         map[string]plot.Plot{},
		kits:          map[string]kit.FuneralKit{},
		reservations:  map[string][]kit.Reservation{},
		deceasedPlots: map[string]string{},
	}
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.bookings {
		c.bookings[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.plots {
		c.plots[k] = v
	}
	for k, v := range s.kits {
		c.kits[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = append([]kit.Reservation(nil), v...)
	}
	for k, v := range s.deceasedPlots {
		c.deceasedPlots[k] = v
	}
	c.usage = append([]kit.Usage(nil), s.usage...)
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.bookings = snap.bookings
	s.payments = snap.payments
	s.plots = snap.plots
	s.kits = snap.kits
	s.reservations = snap.reservations
	s.usage = snap.usage
	s.deceasedPlots = snap.deceasedPlots
}

func (s *memStore) Within(ctx context.Context, fn func(tx Tx) error) error {
	snap := s.snapshot()
	if err := fn(memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memTx struct {
	s *memStore
}

func (t memTx) BookingForUpdate(ctx context.Context, id string) (*booking.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (t memTx) MarkApproved(ctx context.Context, id, approvedBy string, adminNotes *string, deadline time.Time) error {
	b := t.s.bookings[id]
	now := time.Now()
	b.Status = booking.StatusApprovedPendingPayment
	b.ApprovedBy = &approvedBy
	b.ApprovalDate = &now
	b.AdminNotes = adminNotes
	b.PaymentDeadline = &deadline
	t.s.bookings[id] = b
	return nil
}

func (t memTx) MarkRejected(ctx context.Context, id, rejectedBy, reason string, adminNotes *string) error {
	b := t.s.bookings[id]
	b.Status = booking.StatusRejected
	b.ApprovedBy = &rejectedBy
	b.RejectionReason = &reason
	b.AdminNotes = adminNotes
	t.s.bookings[id] = b
	return nil
}

func (t memTx) MarkPaymentConfirmed(ctx context.Context, id string) error {
	if t.s.failMarkPaymentConfirmed {
		return errors.New("booking update failed")
	}
	b := t.s.bookings[id]
	b.Status = booking.StatusPaymentConfirmed
	t.s.bookings[id] = b
	return nil
}

func (t memTx) MarkCompleted(ctx context.Context, id string, adminNotes *string) error {
	b := t.s.bookings[id]
	b.Status = booking.StatusCompleted
	if adminNotes != nil {
		b.AdminNotes = adminNotes
	}
	t.s.bookings[id] = b
	return nil
}

func (t memTx) SetDeceasedPlot(ctx context.Context, deceasedID, plotID string) error {
	t.s.deceasedPlots[deceasedID] = plotID
	return nil
}

func (t memTx) PaymentForUpdate(ctx context.Context, id string) (*payment.Payment, error) {
	p, ok := t.s.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (t memTx) InsertPayment(ctx context.Context, p *payment.Payment) error {
	if t.s.failInsertPayment {
		return errors.New("payment insert failed")
	}
	t.s.payments[p.ID] = *p
	return nil
}

func (t memTx) SetPaymentVerification(ctx context.Context, id string, next payment.Status, verifiedBy string, notes *string) error {
	p := t.s.payments[id]
	now := time.Now()
	p.Status = next
	p.VerifiedBy = &verifiedBy
	p.VerifiedAt = &now
	p.PaymentNotes = notes
	t.s.payments[id] = p
	return nil
}

func (t memTx) CancelPendingPayments(ctx context.Context, bookingID string) error {
	for id, p := range t.s.payments {
		if p.BookingID == bookingID && p.Status == payment.StatusPending {
			p.Status = payment.StatusCancelled
			t.s.payments[id] = p
		}
	}
	return nil
}

func (t memTx) SetPlotStatus(ctx context.Context, id string, next plot.Status) error {
	p := t.s.plots[id]
	p.Status = next
	t.s.plots[id] = p
	return nil
}

func (t memTx) ReleasePlot(ctx context.Context, id string) error {
	p := t.s.plots[id]
	p.Status = plot.StatusAvailable
	p.CurrentBookingID = nil
	t.s.plots[id] = p
	return nil
}

func (t memTx) KitReservations(ctx context.Context, bookingID string) ([]kit.Reservation, error) {
	return append([]kit.Reservation(nil), t.s.reservations[bookingID]...), nil
}

func (t memTx) ReleaseKit(ctx context.Context, kitID, bookingID string, qty int, reason kit.Reason, actor string) error {
	k := t.s.kits[kitID]
	k.AvailableQuantity += qty
	t.s.kits[kitID] = k
	t.s.usage = append(t.s.usage, kit.Usage{
		KitID: kitID, BookingID: &bookingID, QuantityChange: qty, Reason: reason, ChangedBy: actor,
	})
	return nil
}

func (t memTx) ConsumeKit(ctx context.Context, kitID, bookingID string, qty int, reason kit.Reason, actor string) error {
	k := t.s.kits[kitID]
	k.TotalUsed += qty
	t.s.kits[kitID] = k
	t.s.usage = append(t.s.usage, kit.Usage{
		KitID: kitID, BookingID: &bookingID, QuantityChange: -qty, Reason: reason, ChangedBy: actor,
	})
	return nil
}
