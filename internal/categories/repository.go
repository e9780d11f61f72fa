// Package categories manages the event category dictionary.
package categories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
)

var (
	// ErrNotFound is returned when a category does not exist.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicate is returned when a name or slug is already taken.
	ErrDuplicate = errors.New("category already exists")
	// ErrInUse is returned when events still reference the category.
	ErrInUse = errors.New("category is referenced by events")
)

// Repository handles category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a categories repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const categoryColumns = `id, name, slug, COALESCE(description,'')`

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM event_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// GetByID returns one category.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM event_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a category. Name and slug uniqueness is enforced by the
// schema; violations surface as ErrDuplicate.
func (r *Repository) Create(ctx context.Context, c *models.Category) error {
	const q = `INSERT INTO event_categories (name, slug, description)
		VALUES ($1, $2, NULLIF($3,'')) RETURNING id`
	err := r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description).Scan(&c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes a category. Categories still referenced by events are
// protected by the foreign key and surface as ErrInUse.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
