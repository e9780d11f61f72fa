package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
)

const userColumns = `id, email, password_hash, full_name,
	COALESCE(avatar_url,''), COALESCE(phone,''), COALESCE(telegram,''), COALESCE(about,''),
	role, is_blocked, created_at, updated_at`

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName,
		&u.AvatarURL, &u.Phone, &u.Telegram, &u.About,
		&u.Role, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, q, email))
}

// Create inserts a new user with the user role.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.User, error) {
	q := `INSERT INTO users (email, password_hash, full_name, role)
		VALUES ($1, $2, $3, 'user')
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, fullName))
}

// ProfileUpdate holds optional profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	FullName *string
	Phone    *string
	Telegram *string
	About    *string
}

// UpdateProfile applies non-nil profile fields to a user.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, p ProfileUpdate) (*models.User, error) {
	q := `UPDATE users SET
			full_name = COALESCE($1, full_name),
			phone = COALESCE($2, phone),
			telegram = COALESCE($3, telegram),
			about = COALESCE($4, about),
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, p.FullName, p.Phone, p.Telegram, p.About, id))
}

// UpdateAvatarURL stores the avatar object URL for a user. An empty URL
// clears it.
func (r *Repository) UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	const q = `UPDATE users SET avatar_url = NULLIF($1,''), updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, url, id)
	return err
}

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role      *models.Role
	IsBlocked *bool
	Query     string // matches email or full_name
	Limit     int
	Offset    int
}

// List returns users for the admin panel, newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.UserPublic, error) {
	q := `SELECT id, email, full_name, COALESCE(avatar_url,''), COALESCE(phone,''),
		COALESCE(telegram,''), COALESCE(about,''), role, is_blocked, created_at FROM users`
	var conds []string
	var args []interface{}
	if f.Role != nil {
		args = append(args, string(*f.Role))
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.IsBlocked != nil {
		args = append(args, *f.IsBlocked)
		conds = append(conds, fmt.Sprintf("is_blocked = $%d", len(args)))
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		conds = append(conds, fmt.Sprintf("(email ILIKE $%d OR full_name ILIKE $%d)", len(args), len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.AvatarURL, &u.Phone,
			&u.Telegram, &u.About, &u.Role, &u.IsBlocked, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// UpdateRole changes a user's role. Admin action only; guarded in the handler.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	const q = `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, string(role), id)
	return err
}

// SetBlocked flips the blocked flag for a user.
func (r *Repository) SetBlocked(ctx context.Context, id uuid.UUID, blocked bool) error {
	const q = `UPDATE users SET is_blocked = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, blocked, id)
	return err
}
