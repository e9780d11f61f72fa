// Package organizer implements the application flow for gaining event
// creation privileges.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/internal/workflow"
)

var (
	// ErrNotFound is returned when a request does not exist.
	ErrNotFound = errors.New("organizer request not found")
	// ErrDuplicatePending is returned when the partial unique index catches
	// a second pending request for the same user.
	ErrDuplicatePending = errors.New("an organizer request is already pending")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Repository handles organizer request persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizer request repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, user_id, status, COALESCE(message,''), COALESCE(admin_comment,''), created_at, resolved_at`

func scanRequest(row interface{ Scan(...any) error }) (*models.OrganizerRequest, error) {
	var r models.OrganizerRequest
	err := row.Scan(&r.ID, &r.UserID, &r.Status, &r.Message, &r.AdminComment, &r.CreatedAt, &r.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Create opens a new pending request. The partial unique index on pending
// requests backs up the application-level duplicate check; a race between
// the two surfaces as ErrDuplicatePending.
func (r *Repository) Create(ctx context.Context, userID uuid.UUID, message string) (*models.OrganizerRequest, error) {
	const q = `INSERT INTO organizer_requests (user_id, status, message)
		VALUES ($1, 'pending', NULLIF($2,''))
		RETURNING ` + requestColumns
	req, err := scanRequest(r.pool.QueryRow(ctx, q, userID, message))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}
	return req, nil
}

// HasPending reports whether the user has an unresolved request.
func (r *Repository) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM organizer_requests WHERE user_id = $1 AND status = 'pending')`,
		userID).Scan(&exists)
	return exists, err
}

// GetByID returns one request.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.OrganizerRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM organizer_requests WHERE id = $1`
	return scanRequest(r.pool.QueryRow(ctx, q, id))
}

// ListByUser returns the user's requests, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.OrganizerRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM organizer_requests WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// List returns requests for the admin view. Empty status means all.
func (r *Repository) List(ctx context.Context, status models.OrganizerRequestStatus) ([]models.OrganizerRequest, error) {
	q := `SELECT ` + requestColumns + ` FROM organizer_requests`
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
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]models.OrganizerRequest, error) {
	var list []models.OrganizerRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *req)
	}
	return list, rows.Err()
}

// Approve resolves a pending request and promotes the user to organizer in
// one transaction.
func (r *Repository) Approve(ctx context.Context, id uuid.UUID, comment string) (*models.OrganizerRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + requestColumns + ` FROM organizer_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(tx.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}

	var requester models.User
	err = tx.QueryRow(ctx, `SELECT id, role FROM users WHERE id = $1 FOR UPDATE`, req.UserID).
		Scan(&requester.ID, &requester.Role)
	if err != nil {
		return nil, fmt.Errorf("load requester: %w", err)
	}

	req.AdminComment = comment
	if err := workflow.ApproveRequest(req, &requester, time.Now()); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE organizer_requests
		SET status = $1, admin_comment = $2, resolved_at = $3 WHERE id = $4`,
		string(req.Status), req.AdminComment, req.ResolvedAt, req.ID)
	if err != nil {
		return nil, err
	}
	_, err = tx.Exec(ctx, `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`,
		string(requester.Role), requester.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// Reject resolves a pending request as rejected. The user's role is never
// touched.
func (r *Repository) Reject(ctx context.Context, id uuid.UUID, comment string) (*models.OrganizerRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + requestColumns + ` FROM organizer_requests WHERE id = $1 FOR UPDATE`
	req, err := scanRequest(tx.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := workflow.RejectRequest(req, comment, time.Now()); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE organizer_requests
		SET status = $1, admin_comment = $2, resolved_at = $3 WHERE id = $4`,
		string(req.Status), req.AdminComment, req.ResolvedAt, req.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}
