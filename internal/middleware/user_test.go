package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
)

type fakeUserSource struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("no such user")
	}
	return u, nil
}

func newTestRouter(src UserSource, claimsID any) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me",
		func(c *gin.Context) {
			if claimsID != nil {
				c.Set(ContextUserID, claimsID)
				c.Set(ContextUserRole, "user")
			}
		},
		LoadUser(src),
		func(c *gin.Context) {
			u := CurrentUser(c)
			c.JSON(http.StatusOK, gin.H{"role": u.Role})
		},
	)
	return r
}

func TestLoadUserResolvesAndRefreshesRole(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	src := &fakeUserSource{users: map[uuid.UUID]*models.User{
		id: {ID: id, Email: "o@example.com", Role: models.RoleOrganizer},
	}}
	r := newTestRouter(src, id)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	// The JWT said "user" but the row says organizer; the row wins.
	if got := w.Body.String(); got != `{"role":"organizer"}` {
		t.Errorf("body = %s", got)
	}
}

func TestLoadUserDeniesBlockedAccount(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	src := &fakeUserSource{users: map[uuid.UUID]*models.User{
		id: {ID: id, Role: models.RoleAdmin, IsBlocked: true},
	}}
	r := newTestRouter(src, id)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for blocked account", w.Code)
	}
}

func TestLoadUserUnknownUser(t *testing.T) {
	t.Parallel()

	src := &fakeUserSource{users: map[uuid.UUID]*models.User{}}
	r := newTestRouter(src, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for unknown user", w.Code)
	}
}

func TestLoadUserMissingClaims(t *testing.T) {
	t.Parallel()

	src := &fakeUserSource{users: map[uuid.UUID]*models.User{}}
	r := newTestRouter(src, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 without claims", w.Code)
	}
}
