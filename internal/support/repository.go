// Package support implements the user-to-admin ticket flow.
package support

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
)

// ErrNotFound is returned when a ticket does not exist.
var ErrNotFound = errors.New("support ticket not found")

// Repository handles support ticket persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a support ticket repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const ticketColumns = `id, user_id, subject, message, status, COALESCE(admin_reply,''), created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.AdminReply, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create opens a new ticket.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, subject, message string) (*models.SupportTicket, error) {
	const q = `INSERT INTO support_tickets (user_id, subject, message, status)
		VALUES ($1, $2, $3, 'open')
		RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, q, userID, subject, message))
}

// GetByID returns one ticket.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	q := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id = $1`
	return scanTicket(r.pool.QueryRow(ctx, q, id))
}

// ListByUser returns the user's tickets, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SupportTicket, error) {
	q := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

// List returns tickets for the admin view. Empty status means all.
func (r *Repository) List(ctx context.Context, status models.TicketStatus) ([]models.SupportTicket, error) {
	q := `SELECT ` + ticketColumns + ` FROM support_tickets`
	var args []interface{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, string(status))
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]models.SupportTicket, error) {
	var list []models.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// Reply stores the admin answer and marks the ticket answered.
func (r *Repository) Reply(ctx context.Context, id uuid.UUID, reply string) (*models.SupportTicket, error) {
	const q = `UPDATE support_tickets
		SET admin_reply = $1, status = 'answered', updated_at = NOW()
		WHERE id = $2
		RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, q, reply, id))
}

// SetStatus changes a ticket's status.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status models.TicketStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE support_tickets SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a ticket.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM support_tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
