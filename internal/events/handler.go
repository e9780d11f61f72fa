package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/auth"
	"github.com/afisha-events/backend/internal/categories"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/internal/workflow"
	"github.com/afisha-events/backend/pkg/queue"
	"github.com/afisha-events/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id" binding:"required,uuid"`
	StartsAt    string  `json:"starts_at" binding:"required"`
	EndsAt      *string `json:"ends_at"`
	AddressText string  `json:"address_text"`
	Latitude    float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude   float64 `json:"longitude" binding:"min=-180,max=180"`
	IsFree      *bool   `json:"is_free"`
	PriceFrom   *int    `json:"price_from"`
	Capacity    *int    `json:"capacity"`
}

// UpdateRequest is the body for PUT /events/:id. Omitted fields are left
// unchanged.
type UpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	CategoryID  *string  `json:"category_id"`
	StartsAt    *string  `json:"starts_at"`
	EndsAt      *string  `json:"ends_at"`
	AddressText *string  `json:"address_text"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsFree      *bool    `json:"is_free"`
	PriceFrom   *int     `json:"price_from"`
	Capacity    *int     `json:"capacity"`
}

// RejectRequest is the body for POST /admin/events/:id/reject.
type RejectRequest struct {
	ModerationComment string `json:"moderation_comment"`
}

// CategorySource resolves categories referenced by events.
type CategorySource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo       *Repository
	users      *auth.Repository
	categories CategorySource
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewHandler creates an events handler. q may be nil when notifications are
// disabled.
func NewHandler(repo *Repository, users *auth.Repository, cats CategorySource, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, categories: cats, queue: q, logger: logger}
}

// checkCategory verifies the referenced category exists, writing the error
// response itself. Returns false when the request is already answered.
func (h *Handler) checkCategory(c *gin.Context, id uuid.UUID) bool {
	if _, err := h.categories.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, categories.ErrNotFound) {
			response.BadRequest(c, "category does not exist")
		} else {
			response.Internal(c, "failed to resolve category")
		}
		return false
	}
	return true
}

func actorFrom(c *gin.Context) workflow.Actor {
	u := middleware.CurrentUser(c)
	return workflow.Actor{UserID: u.ID, Role: u.Role}
}

// workflowError maps workflow/repository errors onto the response taxonomy.
func workflowError(c *gin.Context, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Error())
	case errors.Is(err, workflow.ErrNotAllowed):
		response.Forbidden(c, "not allowed")
	case errors.Is(err, workflow.ErrInvalidTransition):
		response.Conflict(c, "invalid status transition")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "event not found")
	default:
		response.Internal(c, "operation failed")
	}
}

// List handles GET /events: the public feed/map query over published events.
func (h *Handler) List(c *gin.Context) {
	filter := ListFilter{Status: models.EventPublished}

	if s := c.Query("category_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			response.BadRequest(c, "invalid category_id")
			return
		}
		filter.CategoryID = &id
	}
	if s := c.Query("date_from"); s != "" {
		t, err := ParseEventTime(s)
		if err != nil {
			response.BadRequest(c, "invalid date_from")
			return
		}
		filter.DateFrom = &t
	}
	if s := c.Query("date_to"); s != "" {
		t, err := ParseEventTime(s)
		if err != nil {
			response.BadRequest(c, "invalid date_to")
			return
		}
		filter.DateTo = &t
	}
	filter.Query = c.Query("q")

	bbox, err := parseBBox(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	filter.BBox = bbox
	filter.Limit = intQuery(c, "limit", 20)
	filter.Offset = intQuery(c, "offset", 0)

	list, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list events", zap.Error(err))
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id. Only published events are visible here.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetPublishedByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// ListMine handles GET /events/my. Archived events are hidden unless
// requested explicitly with ?status=archived.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var status models.EventStatus
	if s := c.Query("status"); s != "" {
		parsed, ok := models.ParseEventStatus(s)
		if !ok {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = parsed
	}
	list, err := h.repo.ListByOrganizer(c.Request.Context(), user.ID, status)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetForManage handles GET /events/:id/manage: any status, owner or admin.
func (h *Handler) GetForManage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	actor := actorFrom(c)
	if !actor.IsAdmin() && !actor.Owns(e) {
		response.Forbidden(c, "not your event")
		return
	}
	response.OK(c, e)
}

// Create handles POST /events (organizer or admin). Events start in draft.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		response.BadRequest(c, "invalid category_id")
		return
	}
	if !h.checkCategory(c, categoryID) {
		return
	}
	startsAt, err := ParseEventTime(req.StartsAt)
	if err != nil {
		response.BadRequest(c, "invalid starts_at")
		return
	}
	var endsAt *time.Time
	if req.EndsAt != nil {
		t, err := ParseEventTime(*req.EndsAt)
		if err != nil {
			response.BadRequest(c, "invalid ends_at")
			return
		}
		endsAt = &t
	}

	user := middleware.CurrentUser(c)
	isFree := true
	if req.IsFree != nil {
		isFree = *req.IsFree
	}
	e := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  categoryID,
		OrganizerID: user.ID,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		AddressText: req.AddressText,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsFree:      isFree,
		PriceFrom:   req.PriceFrom,
		Capacity:    req.Capacity,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// Update handles PUT /events/:id. Organizers edit their own drafts and
// rejected events; admins edit anything.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	if err := workflow.CanEditEvent(actorFrom(c), e); err != nil {
		workflowError(c, err)
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := applyUpdate(e, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.CategoryID != nil && !h.checkCategory(c, e.CategoryID) {
		return
	}
	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, e)
}

func applyUpdate(e *models.Event, req *UpdateRequest) error {
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return fmt.Errorf("invalid category_id")
		}
		e.CategoryID = id
	}
	if req.StartsAt != nil {
		t, err := ParseEventTime(*req.StartsAt)
		if err != nil {
			return fmt.Errorf("invalid starts_at")
		}
		e.StartsAt = t
	}
	if req.EndsAt != nil {
		t, err := ParseEventTime(*req.EndsAt)
		if err != nil {
			return fmt.Errorf("invalid ends_at")
		}
		e.EndsAt = &t
	}
	if req.AddressText != nil {
		e.AddressText = *req.AddressText
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return fmt.Errorf("latitude out of range")
		}
		e.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return fmt.Errorf("longitude out of range")
		}
		e.Longitude = *req.Longitude
	}
	if req.IsFree != nil {
		e.IsFree = *req.IsFree
		if e.IsFree {
			e.PriceFrom = nil
		}
	}
	if req.PriceFrom != nil {
		e.PriceFrom = req.PriceFrom
	}
	if req.Capacity != nil {
		e.Capacity = req.Capacity
	}
	return nil
}

// Delete handles DELETE /events/:id. Organizers remove their own drafts,
// rejected or archived events; admins remove anything.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	if err := workflow.CanDeleteEvent(actorFrom(c), e); err != nil {
		workflowError(c, err)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		workflowError(c, err)
		return
	}
	response.NoContent(c)
}

// Submit handles POST /events/:id/submit: draft or rejected goes to the
// moderation queue.
func (h *Handler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	if err := workflow.SubmitEvent(actorFrom(c), e); err != nil {
		workflowError(c, err)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), e.ID, e.Status, e.ModerationComment); err != nil {
		workflowError(c, err)
		return
	}
	h.logger.Info("event submitted", zap.String("event_id", e.ID.String()))
	response.OK(c, e)
}

// Archive handles POST /events/:id/archive: published events leave the
// public feed. Owner or admin.
func (h *Handler) Archive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	if err := workflow.ArchiveEvent(actorFrom(c), e); err != nil {
		workflowError(c, err)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), e.ID, e.Status, e.ModerationComment); err != nil {
		workflowError(c, err)
		return
	}
	response.OK(c, e)
}

// ListForModeration handles GET /admin/events. Defaults to the pending
// moderation queue; ?status= selects another status.
func (h *Handler) ListForModeration(c *gin.Context) {
	status := models.EventPendingModeration
	if s := c.Query("status"); s != "" {
		parsed, ok := models.ParseEventStatus(s)
		if !ok {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = parsed
	}
	list, err := h.repo.ListByStatus(c.Request.Context(), status)
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// Publish handles POST /admin/events/:id/publish.
func (h *Handler) Publish(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	if err := workflow.PublishEvent(actorFrom(c), e); err != nil {
		workflowError(c, err)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), e.ID, e.Status, e.ModerationComment); err != nil {
		workflowError(c, err)
		return
	}
	h.logger.Info("event published", zap.String("event_id", e.ID.String()))
	h.notifyOrganizer(c, e, queue.EmailEventPublished,
		"Your event has been published",
		fmt.Sprintf("Your event %q is now live.", e.Title))
	response.OK(c, e)
}

// Reject handles POST /admin/events/:id/reject. A moderation comment is
// mandatory.
func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		workflowError(c, err)
		return
	}
	if err := workflow.RejectEvent(actorFrom(c), e, req.ModerationComment); err != nil {
		workflowError(c, err)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), e.ID, e.Status, e.ModerationComment); err != nil {
		workflowError(c, err)
		return
	}
	h.logger.Info("event rejected", zap.String("event_id", e.ID.String()))
	h.notifyOrganizer(c, e, queue.EmailEventRejected,
		"Your event needs changes",
		fmt.Sprintf("Your event %q was not approved: %s", e.Title, e.ModerationComment))
	response.OK(c, e)
}

// notifyOrganizer enqueues a moderation outcome email. Failures are logged
// and do not fail the request.
func (h *Handler) notifyOrganizer(c *gin.Context, e *models.Event, kind queue.EmailKind, subject, body string) {
	if h.queue == nil {
		return
	}
	organizer, err := h.users.GetByID(c.Request.Context(), e.OrganizerID)
	if err != nil {
		h.logger.Warn("organizer lookup for notification", zap.Error(err))
		return
	}
	payload := queue.EmailPayload{
		Kind:           kind,
		RecipientEmail: organizer.Email,
		Subject:        subject,
		Body:           body,
	}
	if err := h.queue.EnqueueEmail(c.Request.Context(), payload); err != nil {
		h.logger.Warn("enqueue notification", zap.Error(err))
	}
}

func parseBBox(c *gin.Context) (*BoundingBox, error) {
	vals := [4]string{c.Query("lat_min"), c.Query("lat_max"), c.Query("lng_min"), c.Query("lng_max")}
	present := 0
	for _, v := range vals {
		if v != "" {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != 4 {
		return nil, fmt.Errorf("bounding box requires lat_min, lat_max, lng_min and lng_max")
	}
	var nums [4]float64
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bounding box value %q", v)
		}
		nums[i] = f
	}
	if nums[0] < -90 || nums[1] > 90 || nums[2] < -180 || nums[3] > 180 {
		return nil, fmt.Errorf("bounding box out of range")
	}
	return &BoundingBox{LatMin: nums[0], LatMax: nums[1], LngMin: nums[2], LngMax: nums[3]}, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	s := c.Query(name)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
