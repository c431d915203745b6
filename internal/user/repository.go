package user

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	const q = `
SELECT id, email, COALESCE(full_name,''), COALESCE(phone,''), created_at
FROM users
WHERE id = $1
`
	u := &User{}
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Phone, &u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

// CountRole returns how many role rows the user holds for the given role.
// Callers gate on the count being exactly one: zero means no grant, more
// than one means the role data is malformed and must not be trusted.
func (r *Repository) CountRole(ctx context.Context, userID, role string) (int, error) {
	const q = `SELECT COUNT(*) FROM user_roles WHERE user_id = $1 AND role = $2`
	var n int
	if err := r.db.QueryRow(ctx, q, userID, role).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
