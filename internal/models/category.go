package models

import "github.com/google/uuid"

// Category is an event category (concerts, exhibitions, ...).
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}
