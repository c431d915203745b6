package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"epusara/internal/booking"
	"epusara/internal/kit"
	"epusara/internal/payment"
	"epusara/internal/plot"
	"epusara/pkg/db"
)

// PgxStore runs each unit of work as one Postgres transaction, delegating to
// the tx-scoped functions of the aggregate packages.
type PgxStore struct {
	Pool   *pgxpool.Pool
	Logger *zap.Logger
}

func NewPgxStore(pool *pgxpool.Pool, logger *zap.Logger) *PgxStore {
	return &PgxStore{Pool: pool, Logger: logger}
}

func (s *PgxStore) Within(ctx context.Context, fn func(tx Tx) error) error {
	return db.WithTx(ctx, s.Pool, s.Logger, func(tx pgx.Tx) error {
		return fn(pgxTx{tx: tx})
	})
}

type pgxTx struct {
	tx pgx.Tx
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (t pgxTx) BookingForUpdate(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := booking.GetForUpdate(ctx, t.tx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (t pgxTx) MarkApproved(ctx context.Context, id, approvedBy string, adminNotes *string, deadline time.Time) error {
	return booking.MarkApproved(ctx, t.tx, id, approvedBy, adminNotes, deadline)
}

func (t pgxTx) MarkRejected(ctx context.Context, id, rejectedBy, reason string, adminNotes *string) error {
	return booking.MarkRejected(ctx, t.tx, id, rejectedBy, reason, adminNotes)
}

func (t pgxTx) MarkPaymentConfirmed(ctx context.Context, id string) error {
	return booking.MarkPaymentConfirmed(ctx, t.tx, id)
}

func (t pgxTx) MarkCompleted(ctx context.Context, id string, adminNotes *string) error {
	return booking.MarkCompleted(ctx, t.tx, id, adminNotes)
}

func (t pgxTx) SetDeceasedPlot(ctx context.Context, deceasedID, plotID string) error {
	return booking.SetDeceasedPlot(ctx, t.tx, deceasedID, plotID)
}

func (t pgxTx) PaymentForUpdate(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := payment.GetForUpdate(ctx, t.tx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (t pgxTx) InsertPayment(ctx context.Context, p *payment.Payment) error {
	return payment.Insert(ctx, t.tx, p)
}

func (t pgxTx) SetPaymentVerification(ctx context.Context, id string, next payment.Status, verifiedBy string, notes *string) error {
	return payment.SetVerification(ctx, t.tx, id, next, verifiedBy, notes)
}

func (t pgxTx) CancelPendingPayments(ctx context.Context, bookingID string) error {
	return payment.CancelPending(ctx, t.tx, bookingID)
}

func (t pgxTx) SetPlotStatus(ctx context.Context, id string, next plot.Status) error {
	return plot.SetStatus(ctx, t.tx, id, next)
}

func (t pgxTx) ReleasePlot(ctx context.Context, id string) error {
	return plot.Release(ctx, t.tx, id)
}

func (t pgxTx) KitReservations(ctx context.Context, bookingID string) ([]kit.Reservation, error) {
	return kit.ReservationsForBooking(ctx, t.tx, bookingID)
}

func (t pgxTx) ReleaseKit(ctx context.Context, kitID, bookingID string, qty int, reason kit.Reason, actor string) error {
	return kit.Release(ctx, t.tx, kitID, bookingID, qty, reason, actor, nil)
}

func (t pgxTx) ConsumeKit(ctx context.Context, kitID, bookingID string, qty int, reason kit.Reason, actor string) error {
	return kit.Consume(ctx, t.tx, kitID, bookingID, qty, reason, actor, nil)
}
