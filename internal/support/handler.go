package support

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/auth"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/pkg/queue"
	"github.com/afisha-events/backend/pkg/response"
)

// CreateRequest is the body for POST /support-tickets.
type CreateRequest struct {
	Subject string `json:"subject" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ReplyRequest is the body for POST /admin/support-tickets/:id/reply.
type ReplyRequest struct {
	Reply string `json:"reply" binding:"required"`
}

// Handler handles support ticket HTTP endpoints.
type Handler struct {
	repo   *Repository
	users  *auth.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates a support handler. q may be nil when notifications are
// disabled.
func NewHandler(repo *Repository, users *auth.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, queue: q, logger: logger}
}

// Create handles POST /support-tickets.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if subject == "" || message == "" {
		response.BadRequest(c, "subject and message must not be empty")
		return
	}

	user := middleware.CurrentUser(c)
	ticket, err := h.repo.Create(c.Request.Context(), user.ID, subject, message)
	if err != nil {
		response.Internal(c, "failed to create ticket")
		return
	}
	h.logger.Info("support ticket created", zap.String("ticket_id", ticket.ID.String()))
	response.Created(c, ticket)
}

// ListMine handles GET /support-tickets/my.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.repo.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to list tickets")
		return
	}
	response.OK(c, list)
}

// GetMine handles GET /support-tickets/:id: the caller's own ticket.
func (h *Handler) GetMine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket id")
		return
	}
	ticket, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "ticket not found")
		return
	}
	user := middleware.CurrentUser(c)
	if ticket.UserID != user.ID && user.Role != models.RoleAdmin {
		response.NotFound(c, "ticket not found")
		return
	}
	response.OK(c, ticket)
}

// List handles GET /admin/support-tickets with an optional ?status= filter.
func (h *Handler) List(c *gin.Context) {
	var status models.TicketStatus
	if s := c.Query("status"); s != "" {
		parsed, ok := models.ParseTicketStatus(s)
		if !ok {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = parsed
	}
	list, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		response.Internal(c, "failed to list tickets")
		return
	}
	response.OK(c, list)
}

// Reply handles POST /admin/support-tickets/:id/reply. Closed tickets
// cannot be answered.
func (h *Handler) Reply(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket id")
		return
	}
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	reply := strings.TrimSpace(req.Reply)
	if reply == "" {
		response.BadRequest(c, "reply must not be empty")
		return
	}

	ticket, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "ticket not found")
		return
	}
	if ticket.Status == models.TicketClosed {
		response.Conflict(c, "ticket is closed")
		return
	}

	updated, err := h.repo.Reply(c.Request.Context(), id, reply)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "ticket not found")
			return
		}
		response.Internal(c, "failed to reply")
		return
	}
	h.notifyUser(c, updated, "Support replied to your ticket",
		"Re: "+updated.Subject+"\n\n"+reply)
	response.OK(c, updated)
}

// Close handles POST /admin/support-tickets/:id/close.
func (h *Handler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket id")
		return
	}
	if err := h.repo.SetStatus(c.Request.Context(), id, models.TicketClosed); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "ticket not found")
			return
		}
		response.Internal(c, "failed to close ticket")
		return
	}
	response.OK(c, gin.H{"id": id, "status": models.TicketClosed})
}

// Delete handles DELETE /admin/support-tickets/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ticket id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "ticket not found")
			return
		}
		response.Internal(c, "failed to delete ticket")
		return
	}
	response.NoContent(c)
}

func (h *Handler) notifyUser(c *gin.Context, ticket *models.SupportTicket, subject, body string) {
	if h.queue == nil {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), ticket.UserID)
	if err != nil {
		h.logger.Warn("ticket user lookup for notification", zap.Error(err))
		return
	}
	payload := queue.EmailPayload{
		Kind:           queue.EmailSupportReply,
		RecipientEmail: user.Email,
		Subject:        subject,
		Body:           body,
	}
	if err := h.queue.EnqueueEmail(c.Request.Context(), payload); err != nil {
		h.logger.Warn("enqueue notification", zap.Error(err))
	}
}
