package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
	"github.com/afisha-events/backend/pkg/response"
)

// UserSource resolves users by ID for the account gate.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LoadUser resolves the authenticated caller from the datastore and denies
// blocked accounts regardless of role. It refreshes the role in context from
// the row, so role changes take effect without waiting for token expiry.
// Must run after JWT.
func LoadUser(users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		idVal, ok := c.Get(ContextUserID)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		userID, _ := idVal.(uuid.UUID)
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			response.Unauthorized(c, "user not found")
			c.Abort()
			return
		}
		if user.IsBlocked {
			response.Forbidden(c, "account is blocked")
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Set(ContextUserRole, string(user.Role))
		c.Next()
	}
}

// CurrentUser returns the resolved user row set by LoadUser.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(ContextUser).(*models.User)
}
