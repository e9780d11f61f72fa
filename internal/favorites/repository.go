// Package favorites lets users save events for later.
package favorites

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
)

// Repository handles favorite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a favorites repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Add marks an event as favorite and returns the row. Adding an existing
// favorite returns it unchanged (the DO UPDATE is a no-op write that makes
// RETURNING yield the existing row).
func (r *Repository) Add(ctx context.Context, userID, eventID uuid.UUID) (*models.Favorite, error) {
	const q = `INSERT INTO favorite_events (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO UPDATE SET event_id = EXCLUDED.event_id
		RETURNING id, user_id, event_id, created_at`
	var f models.Favorite
	err := r.pool.QueryRow(ctx, q, userID, eventID).
		Scan(&f.ID, &f.UserID, &f.EventID, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Remove unmarks a favorite. Removing a missing favorite is a no-op.
func (r *Repository) Remove(ctx context.Context, userID, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM favorite_events WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}

// Exists reports whether the user has favorited the event.
func (r *Repository) Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorite_events WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID).Scan(&exists)
	return exists, err
}

// ListEvents returns the user's favorited events that are still published,
// most recently saved first.
func (r *Repository) ListEvents(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT e.id, e.title, e.description, e.category_id, e.organizer_id, e.status,
			e.starts_at, e.ends_at, COALESCE(e.address_text,''), e.latitude, e.longitude,
			e.is_free, e.price_from, e.capacity,
			e.created_at, e.updated_at
		FROM favorite_events f
		JOIN events e ON e.id = f.event_id
		WHERE f.user_id = $1 AND e.status = 'published'
		ORDER BY f.created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.CategoryID, &e.OrganizerID, &e.Status,
			&e.StartsAt, &e.EndsAt, &e.AddressText, &e.Latitude, &e.Longitude,
			&e.IsFree, &e.PriceFrom, &e.Capacity, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
