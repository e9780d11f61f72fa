package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the moderation lifecycle state of an event.
type EventStatus string

const (
	EventDraft             EventStatus = "draft"
	EventPendingModeration EventStatus = "pending_moderation"
	EventPublished         EventStatus = "published"
	EventRejected          EventStatus = "rejected"
	EventArchived          EventStatus = "archived"
)

// ParseEventStatus returns the status for a string, or false if unknown.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventDraft, EventPendingModeration, EventPublished, EventRejected, EventArchived:
		return EventStatus(s), true
	}
	return "", false
}

// Event is an event shown in the feed and on the map.
type Event struct {
	ID                uuid.UUID   `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	CategoryID        uuid.UUID   `json:"category_id"`
	Category          *Category   `json:"category,omitempty"`
	OrganizerID       uuid.UUID   `json:"organizer_id"`
	Status            EventStatus `json:"status"`
	StartsAt          time.Time   `json:"starts_at"`
	EndsAt            *time.Time  `json:"ends_at,omitempty"`
	AddressText       string      `json:"address_text,omitempty"`
	Latitude          float64     `json:"latitude"`
	Longitude         float64     `json:"longitude"`
	IsFree            bool        `json:"is_free"`
	PriceFrom         *int        `json:"price_from,omitempty"`
	Capacity          *int        `json:"capacity,omitempty"`
	ModerationComment string      `json:"moderation_comment,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
