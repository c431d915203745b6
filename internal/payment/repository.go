package payment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Payment struct {
	ID            string     `json:"id"`
	BookingID     string     `json:"bookingId"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        Status     `json:"paymentStatus"`
	Reference     *string    `json:"reference,omitempty"`
	VerifiedBy    *string    `json:"verifiedBy,omitempty"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
	PaymentNotes  *string    `json:"paymentNotes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

const paymentColumns = `
id, booking_id, amount::text, currency, payment_method, payment_status, reference,
verified_by, verified_at, payment_notes, created_at, updated_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(
		&p.ID, &p.BookingID, &p.Amount, &p.Currency, &p.PaymentMethod, &p.Status, &p.Reference,
		&p.VerifiedBy, &p.VerifiedAt, &p.PaymentNotes, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID string) ([]Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func Insert(ctx context.Context, tx pgx.Tx, p *Payment) error {
	const q = `
INSERT INTO payments (id, booking_id, amount, currency, payment_method, payment_status)
VALUES ($1, $2, $3::numeric, $4, $5, $6)
`
	_, err := tx.Exec(ctx, q, p.ID, p.BookingID, p.Amount, p.Currency, p.PaymentMethod, string(p.Status))
	return err
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return scanPayment(tx.QueryRow(ctx, q, id))
}

func MarkSubmitted(ctx context.Context, tx pgx.Tx, id, method string, reference *string) error {
	const q = `
UPDATE payments
SET payment_status = $2, payment_method = $3, reference = $4, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(StatusSubmitted), method, reference)
	return err
}

// SetVerification records the admin's verdict on a submitted payment.
func SetVerification(ctx context.Context, tx pgx.Tx, id string, next Status, verifiedBy string, notes *string) error {
	const q = `
UPDATE payments
SET payment_status = $2, verified_by = $3, verified_at = NOW(), payment_notes = $4, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(next), verifiedBy, notes)
	return err
}

// CancelPending voids any payment still waiting on the customer when its
// booking is rejected.
func CancelPending(ctx context.Context, tx pgx.Tx, bookingID string) error {
	const q = `
UPDATE payments
SET payment_status = $2, updated_at = NOW()
WHERE booking_id = $1 AND payment_status = $3
`
	_, err := tx.Exec(ctx, q, bookingID, string(StatusCancelled), string(StatusPending))
	return err
}
