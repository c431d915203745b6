package plot

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Plot struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	RowNo            int       `json:"rowNo"`
	ColumnNo         int       `json:"columnNo"`
	Status           Status    `json:"status"`
	CurrentBookingID *string   `json:"currentBookingId,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List returns the grid, optionally narrowed to one status.
func (r *Repository) List(ctx context.Context, status *Status) ([]Plot, error) {
	const q = `
SELECT id, label, row_no, column_no, status, current_booking_id, created_at, updated_at
FROM plots
WHERE $1::text IS NULL OR status = $1::text
ORDER BY row_no ASC, column_no ASC
`
	var filter *string
	if status != nil {
		s := string(*status)
		filter = &s
	}
	rows, err := r.db.Query(ctx, q, filter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plot
	for rows.Next() {
		var p Plot
		if err := rows.Scan(&p.ID, &p.Label, &p.RowNo, &p.ColumnNo, &p.Status, &p.CurrentBookingID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Plot, error) {
	const q = `
SELECT id, label, row_no, column_no, status, current_booking_id, created_at, updated_at
FROM plots
WHERE id = $1
FOR UPDATE
`
	var p Plot
	if err := tx.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.Label, &p.RowNo, &p.ColumnNo, &p.Status, &p.CurrentBookingID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// Hold links the plot to a booking while it works through the lifecycle.
// The status stays AVAILABLE until approval flips it to BOOKED.
func Hold(ctx context.Context, tx pgx.Tx, id, bookingID string) error {
	const q = `
UPDATE plots
SET current_booking_id = $2, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, bookingID)
	return err
}

func SetStatus(ctx context.Context, tx pgx.Tx, id string, next Status) error {
	const q = `UPDATE plots SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, string(next))
	return err
}

// Release returns the plot to the pool and clears its booking link.
func Release(ctx context.Context, tx pgx.Tx, id string) error {
	const q = `
UPDATE plots
SET status = $2, current_booking_id = NULL, updated_at = NOW()
WHERE id = $1
`
	_, err := tx.Exec(ctx, q, id, string(StatusAvailable))
	return err
}
