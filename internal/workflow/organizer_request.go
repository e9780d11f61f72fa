package workflow

import (
	"errors"
	"strings"
	"time"

	"github.com/afisha-events/backend/internal/models"
)

var (
	// ErrRequestPending means the user already has an unresolved request.
	ErrRequestPending = errors.New("an organizer request is already pending")
	// ErrAlreadyPrivileged means the user already holds organizer or admin role.
	ErrAlreadyPrivileged = errors.New("user already has organizer privileges")
)

// DefaultApproveComment is stored when the admin approves without a comment.
const DefaultApproveComment = "Approved by administrator"

// CanSubmitRequest checks whether a user may open a new organizer request.
// hasPending is whether a pending request already exists for the user.
func CanSubmitRequest(role models.Role, hasPending bool) error {
	if role == models.RoleOrganizer || role == models.RoleAdmin {
		return ErrAlreadyPrivileged
	}
	if hasPending {
		return ErrRequestPending
	}
	return nil
}

// ApproveRequest resolves a pending request as approved and promotes the
// requesting user to organizer. Both mutations must be persisted in the same
// transaction so the outcome is both-or-neither.
func ApproveRequest(req *models.OrganizerRequest, requester *models.User, now time.Time) error {
	if req.Status != models.OrganizerRequestPending {
		return ErrInvalidTransition
	}
	req.Status = models.OrganizerRequestApproved
	req.ResolvedAt = &now
	if strings.TrimSpace(req.AdminComment) == "" {
		req.AdminComment = DefaultApproveComment
	}
	requester.Role = models.RoleOrganizer
	return nil
}

// RejectRequest resolves a pending request as rejected with a mandatory
// admin comment. The user's role is left unchanged.
func RejectRequest(req *models.OrganizerRequest, comment string, now time.Time) error {
	if req.Status != models.OrganizerRequestPending {
		return ErrInvalidTransition
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return &ValidationError{Field: "comment", Reason: "must not be empty"}
	}
	req.Status = models.OrganizerRequestRejected
	req.ResolvedAt = &now
	req.AdminComment = comment
	return nil
}
