package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks an event as saved by a user, unique per (user, event).
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	EventID   uuid.UUID `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}
