// Package users exposes profile endpoints for the current user and the
// admin user-management panel.
package users

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/afisha-events/backend/internal/auth"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/pkg/response"
	"github.com/afisha-events/backend/pkg/storage"
)

// UpdateProfileRequest is the body for PUT /users/me. Omitted fields are
// left unchanged.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Telegram *string `json:"telegram"`
	About    *string `json:"about"`
}

// PresignAvatarRequest is the body for POST /users/me/avatar/presign.
type PresignAvatarRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

// UpdateRoleRequest is the body for PATCH /admin/users/:id/role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// BlockRequest is the body for PATCH /admin/users/:id/block.
type BlockRequest struct {
	Blocked bool `json:"blocked"`
}

// Handler handles user profile and admin user-management endpoints.
type Handler struct {
	repo   *auth.Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a users handler. s3 may be nil when avatar storage is
// not configured.
func NewHandler(repo *auth.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// Me handles GET /users/me.
func (h *Handler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	response.OK(c, user.ToPublic())
}

// UpdateMe handles PUT /users/me.
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	user := middleware.CurrentUser(c)
	updated, err := h.repo.UpdateProfile(c.Request.Context(), user.ID, auth.ProfileUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Telegram: req.Telegram,
		About:    req.About,
	})
	if err != nil {
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, updated.ToPublic())
}

// UploadAvatar handles POST /users/me/avatar (multipart form, field "file").
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "avatar storage is not configured")
		return
	}
	user := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	if fileHeader.Size > storage.MaxAvatarFileSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateAvatarFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported file type")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read file")
		return
	}
	defer f.Close()

	key := storage.AvatarKey(user.ID.String(), fileHeader.Filename)
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}
	url, err := h.s3.Upload(c.Request.Context(), h.s3.AvatarsBucket(), key, contentType, f, fileHeader.Size, true)
	if err != nil {
		h.logger.Error("avatar upload", zap.Error(err))
		response.Internal(c, "failed to upload avatar")
		return
	}
	h.dropReplacedAvatar(c, user.AvatarURL, url)
	if err := h.repo.UpdateAvatarURL(c.Request.Context(), user.ID, url); err != nil {
		response.Internal(c, "failed to store avatar url")
		return
	}
	response.OK(c, gin.H{"avatar_url": url})
}

// PresignAvatar handles POST /users/me/avatar/presign: returns a pre-signed
// PUT URL so the client can upload the avatar straight to S3. The object URL
// is stored immediately since the key is derived from the user ID.
func (h *Handler) PresignAvatar(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "avatar storage is not configured")
		return
	}
	var req PresignAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !storage.ValidateAvatarFileType(req.ContentType, req.Filename) {
		response.BadRequest(c, "unsupported file type")
		return
	}

	user := middleware.CurrentUser(c)
	key := storage.AvatarKey(user.ID.String(), req.Filename)
	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}

	uploadURL, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(),
		h.s3.AvatarsBucket(), key, contentType, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign avatar upload", zap.Error(err))
		response.Internal(c, "failed to presign upload")
		return
	}
	avatarURL := h.s3.ObjectURL(h.s3.AvatarsBucket(), key)
	h.dropReplacedAvatar(c, user.AvatarURL, avatarURL)
	if err := h.repo.UpdateAvatarURL(c.Request.Context(), user.ID, avatarURL); err != nil {
		response.Internal(c, "failed to store avatar url")
		return
	}
	response.OK(c, gin.H{"upload_url": uploadURL, "avatar_url": avatarURL})
}

// DeleteAvatar handles DELETE /users/me/avatar. Removes the S3 object and
// clears the stored URL; a missing avatar is a no-op.
func (h *Handler) DeleteAvatar(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.AvatarURL == "" {
		response.NoContent(c)
		return
	}
	if h.s3 != nil {
		if key := storage.KeyFromObjectURL(user.AvatarURL); key != "" {
			if err := h.s3.DeleteObject(c.Request.Context(), h.s3.AvatarsBucket(), key); err != nil {
				h.logger.Warn("delete avatar object", zap.Error(err))
			}
		}
	}
	if err := h.repo.UpdateAvatarURL(c.Request.Context(), user.ID, ""); err != nil {
		response.Internal(c, "failed to clear avatar url")
		return
	}
	response.NoContent(c)
}

// dropReplacedAvatar removes the previous avatar object when a new upload
// lands under a different key (the extension changed). Best effort.
func (h *Handler) dropReplacedAvatar(c *gin.Context, oldURL, newURL string) {
	if h.s3 == nil || oldURL == "" || oldURL == newURL {
		return
	}
	key := storage.KeyFromObjectURL(oldURL)
	if key == "" {
		return
	}
	if err := h.s3.DeleteObject(c.Request.Context(), h.s3.AvatarsBucket(), key); err != nil {
		h.logger.Warn("delete replaced avatar", zap.Error(err))
	}
}

// List handles GET /admin/users with role/blocked/q filters.
func (h *Handler) List(c *gin.Context) {
	var filter auth.ListFilter
	if s := c.Query("role"); s != "" {
		role, ok := models.ParseRole(s)
		if !ok {
			response.BadRequest(c, "invalid role filter")
			return
		}
		filter.Role = &role
	}
	if s := c.Query("is_blocked"); s != "" {
		blocked := s == "true" || s == "1"
		filter.IsBlocked = &blocked
	}
	filter.Query = c.Query("q")
	filter.Limit = intQuery(c, "limit", 50)
	filter.Offset = intQuery(c, "offset", 0)

	list, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// UpdateRole handles PATCH /admin/users/:id/role. Admins cannot change
// their own role.
func (h *Handler) UpdateRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		response.BadRequest(c, "invalid role")
		return
	}

	admin := middleware.CurrentUser(c)
	if admin.ID == targetID {
		response.Forbidden(c, "cannot change your own role")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), targetID); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	if err := h.repo.UpdateRole(c.Request.Context(), targetID, role); err != nil {
		response.Internal(c, "failed to update role")
		return
	}
	h.logger.Info("user role changed",
		zap.String("user_id", targetID.String()),
		zap.String("role", string(role)),
		zap.String("admin_id", admin.ID.String()),
	)
	response.OK(c, gin.H{"id": targetID, "role": role})
}

// SetBlocked handles PATCH /admin/users/:id/block. Admins cannot block
// themselves.
func (h *Handler) SetBlocked(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	admin := middleware.CurrentUser(c)
	if admin.ID == targetID {
		response.Forbidden(c, "cannot block yourself")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), targetID); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	if err := h.repo.SetBlocked(c.Request.Context(), targetID, req.Blocked); err != nil {
		response.Internal(c, "failed to update user")
		return
	}
	response.OK(c, gin.H{"id": targetID, "is_blocked": req.Blocked})
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
