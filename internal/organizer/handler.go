package organizer

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/auth"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/internal/workflow"
	"github.com/afisha-events/backend/pkg/queue"
	"github.com/afisha-events/backend/pkg/response"
)

// CreateRequestBody is the body for POST /organizer-requests.
type CreateRequestBody struct {
	Message string `json:"message"`
}

// ResolveRequestBody is the body for approve/reject. The comment is
// optional on approve and mandatory on reject.
type ResolveRequestBody struct {
	Comment string `json:"comment"`
}

// Handler handles organizer request HTTP endpoints.
type Handler struct {
	repo   *Repository
	users  *auth.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates an organizer request handler. q may be nil when
// notifications are disabled.
func NewHandler(repo *Repository, users *auth.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, queue: q, logger: logger}
}

// Create handles POST /organizer-requests. One pending request per user;
// organizers and admins have nothing to apply for.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user := middleware.CurrentUser(c)
	hasPending, err := h.repo.HasPending(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to check pending requests")
		return
	}
	if err := workflow.CanSubmitRequest(user.Role, hasPending); err != nil {
		response.Conflict(c, err.Error())
		return
	}

	created, err := h.repo.Create(c.Request.Context(), user.ID, req.Message)
	if err != nil {
		if errors.Is(err, ErrDuplicatePending) {
			response.Conflict(c, "an organizer request is already pending")
			return
		}
		h.logger.Error("create organizer request", zap.Error(err))
		response.Internal(c, "failed to create request")
		return
	}
	h.logger.Info("organizer request created", zap.String("user_id", user.ID.String()))
	response.Created(c, created)
}

// ListMine handles GET /organizer-requests/my.
func (h *Handler) ListMine(c *gin.Context) {
	user := middleware.CurrentUser(c)
	list, err := h.repo.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// List handles GET /admin/organizer-requests with an optional ?status=
// filter.
func (h *Handler) List(c *gin.Context) {
	var status models.OrganizerRequestStatus
	if s := c.Query("status"); s != "" {
		parsed, ok := models.ParseOrganizerRequestStatus(s)
		if !ok {
			response.BadRequest(c, "invalid status filter")
			return
		}
		status = parsed
	}
	list, err := h.repo.List(c.Request.Context(), status)
	if err != nil {
		response.Internal(c, "failed to list requests")
		return
	}
	response.OK(c, list)
}

// Approve handles POST /admin/organizer-requests/:id/approve. The request
// resolution and the role promotion commit together.
func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var body ResolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil && c.Request.ContentLength > 0 {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	req, err := h.repo.Approve(c.Request.Context(), id, body.Comment)
	if err != nil {
		h.resolveError(c, err)
		return
	}
	h.logger.Info("organizer request approved",
		zap.String("request_id", req.ID.String()),
		zap.String("user_id", req.UserID.String()),
	)
	h.notifyRequester(c, req, queue.EmailOrganizerApproved,
		"Your organizer application was approved",
		"You can now create and submit events.")
	response.OK(c, req)
}

// Reject handles POST /admin/organizer-requests/:id/reject. A comment is
// mandatory.
func (h *Handler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request id")
		return
	}
	var body ResolveRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	req, err := h.repo.Reject(c.Request.Context(), id, body.Comment)
	if err != nil {
		h.resolveError(c, err)
		return
	}
	h.logger.Info("organizer request rejected", zap.String("request_id", req.ID.String()))
	h.notifyRequester(c, req, queue.EmailOrganizerRejected,
		"Your organizer application was declined",
		fmt.Sprintf("Reason: %s", req.AdminComment))
	response.OK(c, req)
}

func (h *Handler) resolveError(c *gin.Context, err error) {
	var verr *workflow.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(c, verr.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		response.Conflict(c, "request is already resolved")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "organizer request not found")
	default:
		h.logger.Error("resolve organizer request", zap.Error(err))
		response.Internal(c, "failed to resolve request")
	}
}

func (h *Handler) notifyRequester(c *gin.Context, req *models.OrganizerRequest, kind queue.EmailKind, subject, body string) {
	if h.queue == nil {
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if err != nil {
		h.logger.Warn("requester lookup for notification", zap.Error(err))
		return
	}
	payload := queue.EmailPayload{
		Kind:           kind,
		RecipientEmail: user.Email,
		Subject:        subject,
		Body:           body,
	}
	if err := h.queue.EnqueueEmail(c.Request.Context(), payload); err != nil {
		h.logger.Warn("enqueue notification", zap.Error(err))
	}
}
