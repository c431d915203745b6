package lifecycle

import (
	"context"
	"time"

	"epusara/internal/booking"
	"epusara/internal/kit"
	"epusara/internal/payment"
	"epusara/internal/plot"
)

// Store is the resource-store boundary the engine runs against. Within opens
// one transactional unit of work: either every write inside fn lands or none
// do, which is what makes the multi-table transitions safe to expose.
type Store interface {
	Within(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the typed per-aggregate operations available inside one unit of
// work. Reads take row locks where the backing store supports them.
type Tx interface {
	BookingForUpdate(ctx context.Context, id string) (*booking.Booking, error)
	MarkApproved(ctx context.Context, id, approvedBy string, adminNotes *string, deadline time.Time) error
	MarkRejected(ctx context.Context, id, rejectedBy, reason string, adminNotes *string) error
	MarkPaymentConfirmed(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, adminNotes *string) error
	SetDeceasedPlot(ctx context.Context, deceasedID, plotID string) error

	PaymentForUpdate(ctx context.Context, id string) (*payment.Payment, error)
	InsertPayment(ctx context.Context, p *payment.Payment) error
	SetPaymentVerification(ctx context.Context, id string, next payment.Status, verifiedBy string, notes *string) error
	CancelPendingPayments(ctx context.Context, bookingID string) error

	SetPlotStatus(ctx context.Context, id string, next plot.Status) error
	ReleasePlot(ctx context.Context, id string) error

	KitReservations(ctx context.Context, bookingID string) ([]kit.Reservation, error)
	ReleaseKit(ctx context.Context, kitID, bookingID string, qty int, reason kit.Reason, actor string) error
	ConsumeKit(ctx context.Context, kitID, bookingID string, qty int, reason kit.Reason, actor string) error
}
