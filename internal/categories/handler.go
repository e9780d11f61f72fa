package categories

import (
	"errors"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/pkg/response"
)

// CreateRequest is the body for POST /admin/categories. Slug is derived
// from the name when omitted.
type CreateRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Handler handles category HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a categories handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /categories.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list categories")
		return
	}
	response.OK(c, list)
}

// Create handles POST /admin/categories.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		response.BadRequest(c, "name must not be empty")
		return
	}
	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		response.BadRequest(c, "could not derive a slug from the name")
		return
	}

	cat := &models.Category{Name: name, Slug: slug, Description: req.Description}
	if err := h.repo.Create(c.Request.Context(), cat); err != nil {
		if errors.Is(err, ErrDuplicate) {
			response.Conflict(c, "category name or slug already exists")
			return
		}
		response.Internal(c, "failed to create category")
		return
	}
	h.logger.Info("category created", zap.String("slug", cat.Slug))
	response.Created(c, cat)
}

// Delete handles DELETE /admin/categories/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "category not found")
		case errors.Is(err, ErrInUse):
			response.Conflict(c, "category is still used by events")
		default:
			response.Internal(c, "failed to delete category")
		}
		return
	}
	response.NoContent(c)
}

// Slugify lowercases a name and collapses non-alphanumeric runs into single
// hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
