package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
)

func validEvent(organizerID uuid.UUID, status models.EventStatus) *models.Event {
	return &models.Event{
		ID:          uuid.New(),
		Title:       "Open-air concert",
		CategoryID:  uuid.New(),
		OrganizerID: organizerID,
		Status:      status,
		StartsAt:    time.Now().Add(48 * time.Hour),
		AddressText: "Main square 1",
		Latitude:    55.75,
		Longitude:   37.61,
		IsFree:      true,
	}
}

func TestSubmitEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	tests := []struct {
		name    string
		actor   Actor
		status  models.EventStatus
		wantErr error
	}{
		{"owner submits draft", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventDraft, nil},
		{"owner resubmits rejected", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventRejected, nil},
		{"owner submits published", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventPublished, ErrInvalidTransition},
		{"owner submits pending", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventPendingModeration, ErrInvalidTransition},
		{"owner submits archived", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventArchived, ErrInvalidTransition},
		{"stranger submits draft", Actor{UserID: uuid.New(), Role: models.RoleOrganizer}, models.EventDraft, ErrNotAllowed},
		{"admin submits someone else's draft", Actor{UserID: uuid.New(), Role: models.RoleAdmin}, models.EventDraft, ErrNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent(owner, tt.status)
			err := SubmitEvent(tt.actor, e)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SubmitEvent: got %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && e.Status != models.EventPendingModeration {
				t.Errorf("status = %s, want pending_moderation", e.Status)
			}
		})
	}
}

func TestSubmitEventValidation(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	actor := Actor{UserID: owner, Role: models.RoleOrganizer}

	mutations := []struct {
		name  string
		field string
		fn    func(*models.Event)
	}{
		{"empty title", "title", func(e *models.Event) { e.Title = "  " }},
		{"missing category", "category_id", func(e *models.Event) { e.CategoryID = uuid.Nil }},
		{"zero start time", "starts_at", func(e *models.Event) { e.StartsAt = time.Time{} }},
		{"latitude out of range", "latitude", func(e *models.Event) { e.Latitude = 91 }},
		{"longitude out of range", "longitude", func(e *models.Event) { e.Longitude = -181 }},
		{"paid without price", "price_from", func(e *models.Event) { e.IsFree = false; e.PriceFrom = nil }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent(owner, models.EventDraft)
			tt.fn(e)
			err := SubmitEvent(actor, e)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("SubmitEvent: got %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %s, want %s", verr.Field, tt.field)
			}
			if e.Status != models.EventDraft {
				t.Errorf("status changed to %s on failed validation", e.Status)
			}
		})
	}
}

func TestSubmitClearsModerationComment(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	e := validEvent(owner, models.EventRejected)
	e.ModerationComment = "missing address"

	if err := SubmitEvent(Actor{UserID: owner, Role: models.RoleOrganizer}, e); err != nil {
		t.Fatalf("SubmitEvent: %v", err)
	}
	if e.ModerationComment != "" {
		t.Errorf("moderation comment not cleared on resubmission: %q", e.ModerationComment)
	}
}

func TestPublishEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	// Publish succeeds only from pending_moderation.
	for _, status := range []models.EventStatus{
		models.EventDraft, models.EventPublished, models.EventRejected, models.EventArchived,
	} {
		e := validEvent(owner, status)
		if err := PublishEvent(admin, e); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("PublishEvent from %s: got %v, want ErrInvalidTransition", status, err)
		}
	}

	e := validEvent(owner, models.EventPendingModeration)
	if err := PublishEvent(admin, e); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}
	if e.Status != models.EventPublished {
		t.Errorf("status = %s, want published", e.Status)
	}

	// Non-admins cannot publish, owner included.
	e = validEvent(owner, models.EventPendingModeration)
	if err := PublishEvent(Actor{UserID: owner, Role: models.RoleOrganizer}, e); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("PublishEvent by owner: got %v, want ErrNotAllowed", err)
	}
}

func TestRejectEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	e := validEvent(owner, models.EventPendingModeration)
	if err := RejectEvent(admin, e, "  missing address  "); err != nil {
		t.Fatalf("RejectEvent: %v", err)
	}
	if e.Status != models.EventRejected {
		t.Errorf("status = %s, want rejected", e.Status)
	}
	if e.ModerationComment != "missing address" {
		t.Errorf("moderation comment = %q, want trimmed comment", e.ModerationComment)
	}

	e = validEvent(owner, models.EventPendingModeration)
	var verr *ValidationError
	if err := RejectEvent(admin, e, "   "); !errors.As(err, &verr) {
		t.Errorf("RejectEvent with empty comment: got %v, want ValidationError", err)
	}

	e = validEvent(owner, models.EventPublished)
	if err := RejectEvent(admin, e, "late"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("RejectEvent from published: got %v, want ErrInvalidTransition", err)
	}

	e = validEvent(owner, models.EventPendingModeration)
	if err := RejectEvent(Actor{UserID: owner, Role: models.RoleOrganizer}, e, "no"); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("RejectEvent by organizer: got %v, want ErrNotAllowed", err)
	}
}

func TestArchiveEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()

	tests := []struct {
		name    string
		actor   Actor
		status  models.EventStatus
		wantErr error
	}{
		{"owner archives published", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventPublished, nil},
		{"admin archives published", Actor{UserID: uuid.New(), Role: models.RoleAdmin}, models.EventPublished, nil},
		{"stranger archives published", Actor{UserID: uuid.New(), Role: models.RoleOrganizer}, models.EventPublished, ErrNotAllowed},
		{"owner archives draft", Actor{UserID: owner, Role: models.RoleOrganizer}, models.EventDraft, ErrInvalidTransition},
		{"admin archives pending", Actor{UserID: uuid.New(), Role: models.RoleAdmin}, models.EventPendingModeration, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent(owner, tt.status)
			if err := ArchiveEvent(tt.actor, e); !errors.Is(err, tt.wantErr) {
				t.Fatalf("ArchiveEvent: got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanEditEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	ownerActor := Actor{UserID: owner, Role: models.RoleOrganizer}
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	if err := CanEditEvent(ownerActor, validEvent(owner, models.EventDraft)); err != nil {
		t.Errorf("owner edit draft: %v", err)
	}
	if err := CanEditEvent(ownerActor, validEvent(owner, models.EventRejected)); err != nil {
		t.Errorf("owner edit rejected: %v", err)
	}
	if err := CanEditEvent(ownerActor, validEvent(owner, models.EventPublished)); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("owner edit published: got %v, want ErrInvalidTransition", err)
	}
	if err := CanEditEvent(admin, validEvent(owner, models.EventPublished)); err != nil {
		t.Errorf("admin edit published: %v", err)
	}
	if err := CanEditEvent(Actor{UserID: uuid.New(), Role: models.RoleOrganizer}, validEvent(owner, models.EventDraft)); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("stranger edit: want ErrNotAllowed, got %v", err)
	}
}

func TestCanDeleteEvent(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	ownerActor := Actor{UserID: owner, Role: models.RoleOrganizer}

	for _, status := range []models.EventStatus{models.EventDraft, models.EventRejected, models.EventArchived} {
		if err := CanDeleteEvent(ownerActor, validEvent(owner, status)); err != nil {
			t.Errorf("owner delete %s: %v", status, err)
		}
	}
	for _, status := range []models.EventStatus{models.EventPendingModeration, models.EventPublished} {
		if err := CanDeleteEvent(ownerActor, validEvent(owner, status)); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("owner delete %s: got %v, want ErrInvalidTransition", status, err)
		}
	}
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	if err := CanDeleteEvent(admin, validEvent(owner, models.EventPublished)); err != nil {
		t.Errorf("admin delete published: %v", err)
	}
}

// TestModerationRoundTrip walks the full lifecycle: draft submitted, rejected
// with a comment, resubmitted, then published.
func TestModerationRoundTrip(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	ownerActor := Actor{UserID: owner, Role: models.RoleOrganizer}
	admin := Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	e := validEvent(owner, models.EventDraft)

	if err := SubmitEvent(ownerActor, e); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := RejectEvent(admin, e, "missing address"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if e.ModerationComment != "missing address" {
		t.Fatalf("comment = %q after reject", e.ModerationComment)
	}

	e.AddressText = "Main square 1"
	if err := SubmitEvent(ownerActor, e); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if e.ModerationComment != "" {
		t.Fatalf("comment = %q after resubmit, want cleared", e.ModerationComment)
	}

	if err := PublishEvent(admin, e); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if e.Status != models.EventPublished {
		t.Fatalf("status = %s, want published", e.Status)
	}
}
