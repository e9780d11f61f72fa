package favorites

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/events"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/pkg/response"
)

// Handler handles favorite HTTP endpoints.
type Handler struct {
	repo   *Repository
	events *events.Repository
	logger *zap.Logger
}

// NewHandler creates a favorites handler.
func NewHandler(repo *Repository, events *events.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, events: events, logger: logger}
}

// Add handles POST /favorites/:id. Idempotent: repeating the request keeps
// a single favorite.
func (h *Handler) Add(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if _, err := h.events.GetPublishedByID(c.Request.Context(), eventID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	user := middleware.CurrentUser(c)
	fav, err := h.repo.Add(c.Request.Context(), user.ID, eventID)
	if err != nil {
		h.logger.Error("add favorite", zap.Error(err))
		response.Internal(c, "failed to save favorite")
		return
	}
	response.OK(c, fav)
}

// Remove handles DELETE /favorites/:id. Idempotent: removing a favorite
// that does not exist still succeeds.
func (h *Handler) Remove(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	user := middleware.CurrentUser(c)
	if err := h.repo.Remove(c.Request.Context(), user.ID, eventID); err != nil {
		response.Internal(c, "failed to remove favorite")
		return
	}
	response.NoContent(c)
}

// Get handles GET /favorites/:id: whether the caller saved the event.
func (h *Handler) Get(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	user := middleware.CurrentUser(c)
	exists, err := h.repo.Exists(c.Request.Context(), user.ID, eventID)
	if err != nil {
		response.Internal(c, "failed to check favorite")
		return
	}
	response.OK(c, gin.H{"event_id": eventID, "favorited": exists})
}

// ListMine handles GET /favorites: the caller's saved events that are still
// published.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.repo.ListEvents(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to list favorites")
		return
	}
	response.OK(c, list)
}
