package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
)

// ErrNotFound is returned when an event does not exist.
var ErrNotFound = errors.New("event not found")

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var (
		e   models.Event
		cat models.Category
	)
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.CategoryID, &e.OrganizerID, &e.Status,
		&e.StartsAt, &e.EndsAt, &e.AddressText, &e.Latitude, &e.Longitude,
		&e.IsFree, &e.PriceFrom, &e.Capacity, &e.ModerationComment,
		&e.CreatedAt, &e.UpdatedAt,
		&cat.ID, &cat.Name, &cat.Slug, &cat.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Category = &cat
	return &e, nil
}

// Create inserts a new event in draft status.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (title, description, category_id, organizer_id, status,
			starts_at, ends_at, address_text, latitude, longitude, is_free, price_from, capacity)
		VALUES ($1, $2, $3, $4, 'draft', $5, $6, NULLIF($7,''), $8, $9, $10, $11, $12)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Title, e.Description, e.CategoryID, e.OrganizerID,
		e.StartsAt, e.EndsAt, e.AddressText, e.Latitude, e.Longitude, e.IsFree, e.PriceFrom, e.Capacity).
		Scan(&e.ID, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event (with category) regardless of status.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events e JOIN event_categories c ON c.id = e.category_id WHERE e.id = $1`
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

// GetPublishedByID returns a published event or ErrNotFound.
func (r *Repository) GetPublishedByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events e JOIN event_categories c ON c.id = e.category_id
		WHERE e.id = $1 AND e.status = 'published'`
	return scanEvent(r.pool.QueryRow(ctx, q, id))
}

// List returns events matching the filter, ordered by start time.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.Event, error) {
	q, args := buildListQuery(f)
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByOrganizer returns an organizer's events, newest first. When status
// is empty, archived events are hidden.
func (r *Repository) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, status models.EventStatus) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events e JOIN event_categories c ON c.id = e.category_id
		WHERE e.organizer_id = $1`
	args := []interface{}{organizerID}
	if status != "" {
		q += ` AND e.status = $2`
		args = append(args, string(status))
	} else {
		q += ` AND e.status <> 'archived'`
	}
	q += ` ORDER BY e.created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListByStatus returns events in a given status for the moderation queue,
// newest first.
func (r *Repository) ListByStatus(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events e JOIN event_categories c ON c.id = e.category_id
		WHERE e.status = $1 ORDER BY e.created_at DESC`
	rows, err := r.pool.Query(ctx, q, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]models.Event, error) {
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update persists editable event fields.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET title = $1, description = $2, category_id = $3,
			starts_at = $4, ends_at = $5, address_text = NULLIF($6,''),
			latitude = $7, longitude = $8, is_free = $9, price_from = $10, capacity = $11,
			updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.Title, e.Description, e.CategoryID,
		e.StartsAt, e.EndsAt, e.AddressText, e.Latitude, e.Longitude,
		e.IsFree, e.PriceFrom, e.Capacity, e.ID).Scan(&e.UpdatedAt)
}

// UpdateStatus persists a status transition with its moderation comment.
// The workflow package decides the transition; this is the single-record
// write that commits it.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EventStatus, moderationComment string) error {
	const q = `UPDATE events SET status = $1, moderation_comment = NULLIF($2,''), updated_at = NOW() WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, string(status), moderationComment, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event row entirely.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ParseEventTime parses RFC3339 timestamps from request bodies.
func ParseEventTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
