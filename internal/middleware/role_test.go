package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func roleRouter(setRole string, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me",
		func(c *gin.Context) {
			if setRole != "" {
				c.Set(ContextUserRole, setRole)
			}
		},
		RequireRole(allowed...),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return r
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     string
		allowed  []string
		wantCode int
	}{
		{"admin allowed on admin route", "admin", []string{"admin"}, http.StatusOK},
		{"organizer allowed on shared route", "organizer", []string{"organizer", "admin"}, http.StatusOK},
		{"user denied on organizer route", "user", []string{"organizer", "admin"}, http.StatusForbidden},
		{"organizer denied on admin route", "organizer", []string{"admin"}, http.StatusForbidden},
		{"missing context denied", "", []string{"admin"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := roleRouter(tt.role, tt.allowed...)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			r.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}
