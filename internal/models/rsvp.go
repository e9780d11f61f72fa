package models

import (
	"time"

	"github.com/google/uuid"
)

// RSVPStatus is a user's declared attendance intent.
type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "going"
	RSVPInterested RSVPStatus = "interested"
	RSVPCanceled   RSVPStatus = "canceled"
)

// ParseRSVPStatus returns the status for a string, or false if unknown.
func ParseRSVPStatus(s string) (RSVPStatus, bool) {
	switch RSVPStatus(s) {
	case RSVPGoing, RSVPInterested, RSVPCanceled:
		return RSVPStatus(s), true
	}
	return "", false
}

// RSVP is a user's response to an event, unique per (user, event).
type RSVP struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	EventID   uuid.UUID  `json:"event_id"`
	Status    RSVPStatus `json:"status"`
	Event     *Event     `json:"event,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RSVPStats counts responses per status for one event.
type RSVPStats struct {
	Going      int `json:"going"`
	Interested int `json:"interested"`
	Canceled   int `json:"canceled"`
}
