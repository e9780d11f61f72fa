package models

import (
	"time"

	"github.com/google/uuid"
)

// OrganizerRequestStatus is the state of an application for the organizer role.
type OrganizerRequestStatus string

const (
	OrganizerRequestPending  OrganizerRequestStatus = "pending"
	OrganizerRequestApproved OrganizerRequestStatus = "approved"
	OrganizerRequestRejected OrganizerRequestStatus = "rejected"
)

// ParseOrganizerRequestStatus returns the status for a string, or false if unknown.
func ParseOrganizerRequestStatus(s string) (OrganizerRequestStatus, bool) {
	switch OrganizerRequestStatus(s) {
	case OrganizerRequestPending, OrganizerRequestApproved, OrganizerRequestRejected:
		return OrganizerRequestStatus(s), true
	}
	return "", false
}

// OrganizerRequest is a user's application to gain event-creation privileges.
// At most one pending request per user at a time.
type OrganizerRequest struct {
	ID           uuid.UUID              `json:"id"`
	UserID       uuid.UUID              `json:"user_id"`
	Status       OrganizerRequestStatus `json:"status"`
	Message      string                 `json:"message,omitempty"`
	AdminComment string                 `json:"admin_comment,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ResolvedAt   *time.Time             `json:"resolved_at,omitempty"`
}
