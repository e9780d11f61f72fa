// Package workflow holds the status transition rules for events and
// organizer requests. Functions here mutate models in memory only; callers
// persist the result in a single-record transaction.
package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
)

var (
	// ErrInvalidTransition means the requested status change is not in the
	// transition table for the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotAllowed means the actor's role/ownership does not permit the
	// transition.
	ErrNotAllowed = errors.New("actor is not allowed to perform this transition")
)

// ValidationError reports a failed guard on event fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Actor is the caller identity used in transition guards.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Owns reports whether the actor is the organizer of the event.
func (a Actor) Owns(e *models.Event) bool { return a.UserID == e.OrganizerID }

// ValidateForSubmission checks the required fields an event must carry
// before it can enter moderation.
func ValidateForSubmission(e *models.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if e.CategoryID == uuid.Nil {
		return &ValidationError{Field: "category_id", Reason: "must be set"}
	}
	if e.StartsAt.IsZero() {
		return &ValidationError{Field: "starts_at", Reason: "must be set"}
	}
	if e.Latitude < -90 || e.Latitude > 90 {
		return &ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if e.Longitude < -180 || e.Longitude > 180 {
		return &ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	if !e.IsFree && (e.PriceFrom == nil || *e.PriceFrom < 0) {
		return &ValidationError{Field: "price_from", Reason: "must be set for paid events"}
	}
	return nil
}

// SubmitEvent moves a draft or rejected event to pending_moderation.
// Only the owning organizer may submit; a resubmission clears the previous
// moderation comment.
func SubmitEvent(actor Actor, e *models.Event) error {
	if !actor.Owns(e) {
		return ErrNotAllowed
	}
	if e.Status != models.EventDraft && e.Status != models.EventRejected {
		return ErrInvalidTransition
	}
	if err := ValidateForSubmission(e); err != nil {
		return err
	}
	e.Status = models.EventPendingModeration
	e.ModerationComment = ""
	return nil
}

// PublishEvent moves a pending event to published. Admin only.
func PublishEvent(actor Actor, e *models.Event) error {
	if !actor.IsAdmin() {
		return ErrNotAllowed
	}
	if e.Status != models.EventPendingModeration {
		return ErrInvalidTransition
	}
	e.Status = models.EventPublished
	return nil
}

// RejectEvent moves a pending event to rejected, recording the moderation
// comment shown to the organizer. Admin only; the comment is mandatory.
func RejectEvent(actor Actor, e *models.Event, comment string) error {
	if !actor.IsAdmin() {
		return ErrNotAllowed
	}
	if e.Status != models.EventPendingModeration {
		return ErrInvalidTransition
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return &ValidationError{Field: "moderation_comment", Reason: "must not be empty"}
	}
	e.Status = models.EventRejected
	e.ModerationComment = comment
	return nil
}

// ArchiveEvent moves a published event to archived. Admin or owner.
func ArchiveEvent(actor Actor, e *models.Event) error {
	if !actor.IsAdmin() && !actor.Owns(e) {
		return ErrNotAllowed
	}
	if e.Status != models.EventPublished {
		return ErrInvalidTransition
	}
	e.Status = models.EventArchived
	return nil
}

// CanEditEvent reports whether the actor may edit event fields. Organizers
// edit their own events while in draft or rejected; admins edit any event.
func CanEditEvent(actor Actor, e *models.Event) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.Owns(e) {
		return ErrNotAllowed
	}
	if e.Status != models.EventDraft && e.Status != models.EventRejected {
		return ErrInvalidTransition
	}
	return nil
}

// CanDeleteEvent reports whether the actor may hard-delete the event.
// Organizers delete their own drafts, rejected or archived events; admins
// delete anything.
func CanDeleteEvent(actor Actor, e *models.Event) error {
	if actor.IsAdmin() {
		return nil
	}
	if !actor.Owns(e) {
		return ErrNotAllowed
	}
	switch e.Status {
	case models.EventDraft, models.EventRejected, models.EventArchived:
		return nil
	}
	return ErrInvalidTransition
}
