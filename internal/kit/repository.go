package kit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]FuneralKit, error) {
	const q = `
SELECT id, kit_type, available_quantity, total_used, created_at, updated_at
FROM funeral_kits
ORDER BY kit_type ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FuneralKit
	for rows.Next() {
		var k FuneralKit
		if err := rows.Scan(&k.ID, &k.KitType, &k.AvailableQuantity, &k.TotalUsed, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *Repository) ListUsage(ctx context.Context, kitID string) ([]Usage, error) {
	const q = `
SELECT id, kit_id, booking_id, quantity_change, reason, changed_by, notes, created_at
FROM funeral_kit_usage
WHERE kit_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.ID, &u.KitID, &u.BookingID, &u.QuantityChange, &u.Reason, &u.ChangedBy, &u.Notes, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Reserve takes qty units out of stock for a booking. The decrement is
// conditional so available_quantity can never go negative, and the ledger row
// is written in the same transaction.
func Reserve(ctx context.Context, tx pgx.Tx, kitID, bookingID string, qty int, actor string, notes *string) error {
	const q = `
UPDATE funeral_kits
SET available_quantity = available_quantity - $2, updated_at = NOW()
WHERE id = $1 AND available_quantity >= $2
`
	tag, err := tx.Exec(ctx, q, kitID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	if err := insertBookingKit(ctx, tx, bookingID, kitID, qty); err != nil {
		return err
	}
	return AppendUsage(ctx, tx, kitID, &bookingID, -qty, ReasonBookingCreated, actor, notes)
}

// Release returns qty units to stock, e.g. when a booking is rejected.
func Release(ctx context.Context, tx pgx.Tx, kitID, bookingID string, qty int, reason Reason, actor string, notes *string) error {
	const q = `
UPDATE funeral_kits
SET available_quantity = available_quantity + $2, updated_at = NOW()
WHERE id = $1
`
	if _, err := tx.Exec(ctx, q, kitID, qty); err != nil {
		return err
	}
	return AppendUsage(ctx, tx, kitID, &bookingID, qty, reason, actor, notes)
}

// Consume marks qty reserved units as used for good when a booking completes.
func Consume(ctx context.Context, tx pgx.Tx, kitID, bookingID string, qty int, reason Reason, actor string, notes *string) error {
	const q = `
UPDATE funeral_kits
SET total_used = total_used + $2, updated_at = NOW()
WHERE id = $1
`
	if _, err := tx.Exec(ctx, q, kitID, qty); err != nil {
		return err
	}
	return AppendUsage(ctx, tx, kitID, &bookingID, -qty, reason, actor, notes)
}

// AdjustStock is an admin correction outside any booking: positive delta adds
// stock, negative removes it, guarded so availability never goes below zero.
func AdjustStock(ctx context.Context, tx pgx.Tx, kitID string, delta int, actor string, notes *string) error {
	const q = `
UPDATE funeral_kits
SET available_quantity = available_quantity + $2, updated_at = NOW()
WHERE id = $1 AND available_quantity + $2 >= 0
`
	tag, err := tx.Exec(ctx, q, kitID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}
	return AppendUsage(ctx, tx, kitID, nil, delta, ReasonManualAdjustment, actor, notes)
}

// AppendUsage writes one ledger row. There is deliberately no update or
// delete counterpart anywhere in this package.
func AppendUsage(ctx context.Context, tx pgx.Tx, kitID string, bookingID *string, quantityChange int, reason Reason, actor string, notes *string) error {
	const q = `
INSERT INTO funeral_kit_usage (kit_id, booking_id, quantity_change, reason, changed_by, notes)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := tx.Exec(ctx, q, kitID, bookingID, quantityChange, string(reason), actor, notes)
	return err
}

// ReservationsForBooking lists what a booking currently holds against stock.
func ReservationsForBooking(ctx context.Context, tx pgx.Tx, bookingID string) ([]Reservation, error) {
	const q = `
SELECT kit_id, quantity
FROM booking_kits
WHERE booking_id = $1
ORDER BY kit_id ASC
`
	rows, err := tx.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(&res.KitID, &res.Quantity); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func insertBookingKit(ctx context.Context, tx pgx.Tx, bookingID, kitID string, qty int) error {
	const q = `
INSERT INTO booking_kits (booking_id, kit_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (booking_id, kit_id) DO UPDATE SET quantity = booking_kits.quantity + EXCLUDED.quantity
`
	_, err := tx.Exec(ctx, q, bookingID, kitID, qty)
	return err
}
