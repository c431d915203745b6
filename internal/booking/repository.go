package booking

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Booking struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	PlotID          string     `json:"plotId"`
	DeceasedID      *string    `json:"deceasedId,omitempty"`
	BurialDate      time.Time  `json:"burialDate"`
	Status          Status     `json:"status"`
	TotalPrice      string     `json:"totalPrice"`
	Currency        string     `json:"currency"`
	ApprovedBy      *string    `json:"approvedBy,omitempty"`
	ApprovalDate    *time.Time `json:"approvalDate,omitempty"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	AdminNotes      *string    `json:"adminNotes,omitempty"`
	PaymentDeadline *time.Time `json:"paymentDeadline,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

const bookingColumns = `
id, user_id, plot_id, deceased_id, burial_date, status, total_price::text, currency,
approved_by, approval_date, rejection_reason, admin_notes, payment_deadline,
created_at, updated_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.UserID, &b.PlotID, &b.DeceasedID, &b.BurialDate, &b.Status, &b.TotalPrice, &b.Currency,
		&b.ApprovedBy, &b.ApprovalDate, &b.RejectionReason, &b.AdminNotes, &b.PaymentDeadline,
		&b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) ListByUser(ctx context.Context, userID string, status *Status) ([]Booking, error) {
	const q = `SELECT ` + bookingColumns + `
FROM bookings
WHERE user_id = $1 AND ($2::text IS NULL OR status = $2::text)
ORDER BY created_at DESC`
	return r.list(ctx, q, userID, statusArg(status))
}

// ListAll is the admin view, optionally narrowed to one status.
func (r *Repository) ListAll(ctx context.Context, status *Status) ([]Booking, error) {
	const q = `SELECT ` + bookingColumns + `
FROM bookings
WHERE $1::text IS NULL OR status = $1::text
ORDER BY created_at DESC`
	return r.list(ctx, q, statusArg(status))
}

func statusArg(status *Status) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Booking, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func Insert(ctx context.Context, tx pgx.Tx, b *Booking) error {
	const q = `
INSERT INTO bookings (id, user_id, plot_id, deceased_id, burial_date, status, total_price, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
`
	_, err := tx.Exec(ctx, q, b.ID, b.UserID, b.PlotID, b.DeceasedID, b.BurialDate, string(b.Status), b.TotalPrice, b.Currency)
	return err
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(tx.QueryRow(ctx, q, id))
}

func MarkApproved(ctx context.Context, tx pgx.Tx, id, approvedBy string, adminNotes *string, deadline time.Time) error {
	const q = `
UPDATE bookings
SET status = $2, approved_by = $3, approval_date = NOW(), admin_notes = $4,
    payment_deadline = $5, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(StatusApprovedPendingPayment), approvedBy, adminNotes, deadline)
	return err
}

func MarkRejected(ctx context.Context, tx pgx.Tx, id, rejectedBy, reason string, adminNotes *string) error {
	const q = `
UPDATE bookings
SET status = $2, approved_by = $3, rejection_reason = $4, admin_notes = $5, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(StatusRejected), rejectedBy, reason, adminNotes)
	return err
}

func MarkPaymentConfirmed(ctx context.Context, tx pgx.Tx, id string) error {
	const q = `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, string(StatusPaymentConfirmed))
	return err
}

func MarkCompleted(ctx context.Context, tx pgx.Tx, id string, adminNotes *string) error {
	const q = `
UPDATE bookings
SET status = $2, admin_notes = COALESCE($3, admin_notes), updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(StatusCompleted), adminNotes)
	return err
}

// SetDeceasedPlot stamps the plot onto the linked deceased record when a
// booking completes.
func SetDeceasedPlot(ctx context.Context, tx pgx.Tx, deceasedID, plotID string) error {
	const q = `UPDATE deceased SET plot_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := tx.Exec(ctx, q, deceasedID, plotID)
	return err
}
