package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus is the state of a support ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// ParseTicketStatus returns the status for a string, or false if unknown.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch TicketStatus(s) {
	case TicketOpen, TicketAnswered, TicketClosed:
		return TicketStatus(s), true
	}
	return "", false
}

// SupportTicket is a user's message to support.
type SupportTicket struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	Subject    string       `json:"subject"`
	Message    string       `json:"message"`
	Status     TicketStatus `json:"status"`
	AdminReply string       `json:"admin_reply,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
