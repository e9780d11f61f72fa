// Package rsvp tracks attendance responses for published events.
package rsvp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
)

// ErrNotFound is returned when a user has no response for the event.
var ErrNotFound = errors.New("rsvp not found")

// Repository handles RSVP persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an RSVP repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert sets the user's response for an event. Repeating a request with a
// different status overwrites the previous one.
func (r *Repository) Upsert(ctx context.Context, userID, eventID uuid.UUID, status models.RSVPStatus) (*models.RSVP, error) {
	const q = `INSERT INTO event_rsvps (user_id, event_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING id, user_id, event_id, status, created_at, updated_at`
	var v models.RSVP
	err := r.pool.QueryRow(ctx, q, userID, eventID, string(status)).
		Scan(&v.ID, &v.UserID, &v.EventID, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Get returns the user's response for one event.
func (r *Repository) Get(ctx context.Context, userID, eventID uuid.UUID) (*models.RSVP, error) {
	const q = `SELECT id, user_id, event_id, status, created_at, updated_at
		FROM event_rsvps WHERE user_id = $1 AND event_id = $2`
	var v models.RSVP
	err := r.pool.QueryRow(ctx, q, userID, eventID).
		Scan(&v.ID, &v.UserID, &v.EventID, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Stats counts responses per status for one event.
func (r *Repository) Stats(ctx context.Context, eventID uuid.UUID) (*models.RSVPStats, error) {
	const q = `SELECT
		COUNT(*) FILTER (WHERE status = 'going'),
		COUNT(*) FILTER (WHERE status = 'interested'),
		COUNT(*) FILTER (WHERE status = 'canceled')
		FROM event_rsvps WHERE event_id = $1`
	var s models.RSVPStats
	if err := r.pool.QueryRow(ctx, q, eventID).Scan(&s.Going, &s.Interested, &s.Canceled); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns the user's responses with the event attached, most
// recent first. Responses to events that have left the published state are
// included so users can see what happened to them.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	const q = `SELECT v.id, v.user_id, v.event_id, v.status, v.created_at, v.updated_at,
			e.id, e.title, e.status, e.starts_at, e.latitude, e.longitude, e.is_free
		FROM event_rsvps v
		JOIN events e ON e.id = v.event_id
		WHERE v.user_id = $1
		ORDER BY v.updated_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.RSVP
	for rows.Next() {
		var (
			v models.RSVP
			e models.Event
		)
		err := rows.Scan(&v.ID, &v.UserID, &v.EventID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&e.ID, &e.Title, &e.Status, &e.StartsAt, &e.Latitude, &e.Longitude, &e.IsFree)
		if err != nil {
			return nil, err
		}
		v.Event = &e
		list = append(list, v)
	}
	return list, rows.Err()
}

// ListByEvent returns all responses for one event, for the organizer view.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RSVP, error) {
	const q = `SELECT id, user_id, event_id, status, created_at, updated_at
		FROM event_rsvps WHERE event_id = $1 ORDER BY updated_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.RSVP
	for rows.Next() {
		var v models.RSVP
		if err := rows.Scan(&v.ID, &v.UserID, &v.EventID, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}
