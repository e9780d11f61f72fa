package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/categories"
	"github.com/afisha-events/backend/internal/middleware"
	"github.com/afisha-events/backend/internal/models"
)

type fakeCategorySource struct {
	known map[uuid.UUID]bool
}

func (f *fakeCategorySource) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	if f.known[id] {
		return &models.Category{ID: id, Name: "concerts", Slug: "concerts"}, nil
	}
	return nil, categories.ErrNotFound
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	h := NewHandler(nil, nil, &fakeCategorySource{known: map[uuid.UUID]bool{}}, nil, nil)

	r := gin.New()
	r.POST("/events",
		func(c *gin.Context) {
			c.Set(middleware.ContextUser, &models.User{ID: uuid.New(), Role: models.RoleOrganizer})
		},
		h.Create,
	)

	body := `{"title":"Jazz night","category_id":"` + uuid.NewString() +
		`","starts_at":"2026-09-01T19:00:00Z","latitude":55.75,"longitude":37.62}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown category", w.Code)
	}
	if !strings.Contains(w.Body.String(), "category does not exist") {
		t.Errorf("body = %s, want a category error", w.Body.String())
	}
}

func TestCheckCategoryKnown(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	catID := uuid.New()
	h := NewHandler(nil, nil, &fakeCategorySource{known: map[uuid.UUID]bool{catID: true}}, nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/events", nil)

	if !h.checkCategory(c, catID) {
		t.Fatal("checkCategory = false for an existing category")
	}
	if w.Body.Len() != 0 {
		t.Errorf("response written for an existing category: %s", w.Body.String())
	}
}
