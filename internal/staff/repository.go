package staff

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Staff, error) {
	const q = `
SELECT id, name, COALESCE(phone,''), staff_type, is_active, created_at, updated_at
FROM staff
ORDER BY staff_type ASC, name ASC
`
	return r.list(ctx, q)
}

// ListActive returns the assignable pool, optionally filtered by type.
func (r *Repository) ListActive(ctx context.Context, typeFilter *Type) ([]Staff, error) {
	if typeFilter != nil {
		const q = `
SELECT id, name, COALESCE(phone,''), staff_type, is_active, created_at, updated_at
FROM staff
WHERE is_active AND staff_type = $1
`
		return r.list(ctx, q, string(*typeFilter))
	}
	const q = `
SELECT id, name, COALESCE(phone,''), staff_type, is_active, created_at, updated_at
FROM staff
WHERE is_active
`
	return r.list(ctx, q)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]Staff, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.StaffType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AssignedOn collects staff ids already linked to any booking whose burial
// date falls on the given day and whose booking is still active. Full-day
// bounds are inclusive of the entire calendar day.
func (r *Repository) AssignedOn(ctx context.Context, day time.Time, excludeBookingID *string) (map[string]bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	const q = `
SELECT bs.staff_id
FROM booking_staff bs
JOIN bookings b ON b.id = bs.booking_id
WHERE b.burial_date >= $1 AND b.burial_date < $2
  AND b.status NOT IN ('REJECTED', 'CANCELLED')
  AND ($3::uuid IS NULL OR b.id <> $3::uuid)
`
	rows, err := r.db.Query(ctx, q, dayStart, dayEnd, excludeBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assigned := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		assigned[id] = true
	}
	return assigned, rows.Err()
}

func (r *Repository) Create(ctx context.Context, s *Staff) error {
	const q = `
INSERT INTO staff (id, name, phone, staff_type, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING created_at, updated_at
`
	return r.db.QueryRow(ctx, q, s.ID, s.Name, s.Phone, string(s.StaffType), s.IsActive).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *Repository) Update(ctx context.Context, id string, name, phone *string, isActive *bool) (*Staff, error) {
	const q = `
UPDATE staff
SET name = COALESCE($2, name),
    phone = COALESCE($3, phone),
    is_active = COALESCE($4, is_active),
    updated_at = NOW()
WHERE id = $1
RETURNING id, name, COALESCE(phone,''), staff_type, is_active, created_at, updated_at
`
	var s Staff
	if err := r.db.QueryRow(ctx, q, id, name, phone, isActive).Scan(
		&s.ID, &s.Name, &s.Phone, &s.StaffType, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// Assign records the staff working a booking. One staff member can hold at
// most one active assignment per day; the availability query is the guard.
func Assign(ctx context.Context, tx pgx.Tx, bookingID, staffID string, staffType Type) error {
	const q = `
INSERT INTO booking_staff (booking_id, staff_id, staff_type)
VALUES ($1, $2, $3)
`
	_, err := tx.Exec(ctx, q, bookingID, staffID, string(staffType))
	return err
}
