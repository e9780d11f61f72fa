package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
)

func TestCanSubmitRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       models.Role
		hasPending bool
		wantErr    error
	}{
		{"plain user, no pending", models.RoleUser, false, nil},
		{"plain user, pending exists", models.RoleUser, true, ErrRequestPending},
		{"organizer", models.RoleOrganizer, false, ErrAlreadyPrivileged},
		{"admin", models.RoleAdmin, false, ErrAlreadyPrivileged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanSubmitRequest(tt.role, tt.hasPending); !errors.Is(err, tt.wantErr) {
				t.Fatalf("CanSubmitRequest: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApproveRequest(t *testing.T) {
	t.Parallel()

	now := time.Now()
	user := &models.User{ID: uuid.New(), Role: models.RoleUser}
	req := &models.OrganizerRequest{
		ID:     uuid.New(),
		UserID: user.ID,
		Status: models.OrganizerRequestPending,
	}

	if err := ApproveRequest(req, user, now); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	if req.Status != models.OrganizerRequestApproved {
		t.Errorf("request status = %s, want approved", req.Status)
	}
	if user.Role != models.RoleOrganizer {
		t.Errorf("user role = %s, want organizer", user.Role)
	}
	if req.ResolvedAt == nil || !req.ResolvedAt.Equal(now) {
		t.Errorf("resolved_at = %v, want %v", req.ResolvedAt, now)
	}
	if req.AdminComment != DefaultApproveComment {
		t.Errorf("admin comment = %q, want default", req.AdminComment)
	}

	// Terminal: approving again is an invalid transition and the user's
	// role must not be touched.
	user.Role = models.RoleUser
	if err := ApproveRequest(req, user, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second approve: got %v, want ErrInvalidTransition", err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("role changed by failed approve")
	}
}

func TestRejectRequest(t *testing.T) {
	t.Parallel()

	now := time.Now()
	req := &models.OrganizerRequest{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: models.OrganizerRequestPending,
	}

	var verr *ValidationError
	if err := RejectRequest(req, "  ", now); !errors.As(err, &verr) {
		t.Fatalf("reject without comment: got %v, want ValidationError", err)
	}
	if req.Status != models.OrganizerRequestPending {
		t.Fatalf("status changed on failed reject: %s", req.Status)
	}

	if err := RejectRequest(req, " not enough details ", now); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if req.Status != models.OrganizerRequestRejected {
		t.Errorf("status = %s, want rejected", req.Status)
	}
	if req.AdminComment != "not enough details" {
		t.Errorf("admin comment = %q, want trimmed comment", req.AdminComment)
	}

	if err := RejectRequest(req, "again", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reject terminal request: got %v, want ErrInvalidTransition", err)
	}
}
