package rsvp

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/events"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/pkg/response"
)

// SetRequest is the body for POST /events/:id/rsvp.
type SetRequest struct {
	Status string `json:"status" binding:"required"`
}

// Handler handles RSVP HTTP endpoints.
type Handler struct {
	repo   *Repository
	events *events.Repository
	logger *zap.Logger
}

// NewHandler creates an RSVP handler.
func NewHandler(repo *Repository, events *events.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, events: events, logger: logger}
}

// Set handles POST /events/:id/rsvp. Only published events accept responses;
// repeating with a different status overwrites the previous one.
func (h *Handler) Set(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	status, ok := models.ParseRSVPStatus(req.Status)
	if !ok {
		response.BadRequest(c, "invalid rsvp status")
		return
	}

	if _, err := h.events.GetPublishedByID(c.Request.Context(), eventID); err != nil {
		response.NotFound(c, "event not found")
		return
	}

	user := middleware.CurrentUser(c)
	v, err := h.repo.Upsert(c.Request.Context(), user.ID, eventID, status)
	if err != nil {
		h.logger.Error("rsvp upsert", zap.Error(err))
		response.Internal(c, "failed to save rsvp")
		return
	}
	response.OK(c, v)
}

// Get handles GET /events/:id/rsvp/my: the caller's own response.
func (h *Handler) Get(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	user := middleware.CurrentUser(c)
	v, err := h.repo.Get(c.Request.Context(), user.ID, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "no rsvp for this event")
			return
		}
		response.Internal(c, "failed to load rsvp")
		return
	}
	response.OK(c, v)
}

// Stats handles GET /events/:id/rsvp/stats: per-status counts for a
// published event.
func (h *Handler) Stats(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.events.GetPublishedByID(c.Request.Context(), eventID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	stats, err := h.repo.Stats(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to load stats")
		return
	}
	response.OK(c, stats)
}

// ListMine handles GET /rsvp/my: the caller's responses with events attached.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.repo.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to list rsvps")
		return
	}
	response.OK(c, list)
}

// ListForEvent handles GET /events/:id/rsvp/list. Restricted to the event's
// organizer and admins.
func (h *Handler) ListForEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	user := middleware.CurrentUser(c)
	if user.Role != models.RoleAdmin && user.ID != e.OrganizerID {
		response.Forbidden(c, "not your event")
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list attendees")
		return
	}
	response.OK(c, list)
}
