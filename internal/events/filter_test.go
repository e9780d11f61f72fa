package events

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
)

func TestBuildListQueryDefaults(t *testing.T) {
	t.Parallel()

	q, args := buildListQuery(ListFilter{Status: models.EventPublished})

	if !strings.Contains(q, "e.status = $1") {
		t.Fatalf("missing status condition in %q", q)
	}
	if !strings.Contains(q, "ORDER BY e.starts_at") {
		t.Fatalf("missing order clause in %q", q)
	}
	// status + limit + offset
	if len(args) != 3 {
		t.Fatalf("args = %v, want 3 values", args)
	}
	if args[1] != 20 {
		t.Errorf("default limit = %v, want 20", args[1])
	}
	if args[2] != 0 {
		t.Errorf("default offset = %v, want 0", args[2])
	}
}

func TestBuildListQueryAllFilters(t *testing.T) {
	t.Parallel()

	catID := uuid.New()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	f := ListFilter{
		Status:     models.EventPublished,
		CategoryID: &catID,
		DateFrom:   &from,
		DateTo:     &to,
		Query:      "jazz",
		BBox:       &BoundingBox{LatMin: 55.5, LatMax: 56.0, LngMin: 37.3, LngMax: 37.9},
		Limit:      50,
		Offset:     100,
	}

	q, args := buildListQuery(f)

	for _, want := range []string{
		"e.status = $1",
		"e.category_id = $2",
		"e.starts_at >= $3",
		"e.starts_at <= $4",
		"e.title ILIKE $5",
		"e.description ILIKE $6",
		"e.latitude BETWEEN $7 AND $8",
		"e.longitude BETWEEN $9 AND $10",
		"LIMIT $11",
		"OFFSET $12",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("query missing %q:\n%s", want, q)
		}
	}
	if len(args) != 12 {
		t.Fatalf("len(args) = %d, want 12", len(args))
	}
	if args[4] != "%jazz%" || args[5] != "%jazz%" {
		t.Errorf("search args = %v, %v, want %%jazz%%", args[4], args[5])
	}
	if args[10] != 50 || args[11] != 100 {
		t.Errorf("limit/offset args = %v, %v", args[10], args[11])
	}
}

func TestBuildListQueryClampsLimitAndOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"zero limit falls back", 0, 0, 20, 0},
		{"negative limit falls back", -5, 0, 20, 0},
		{"over cap falls back", 500, 0, 20, 0},
		{"negative offset clamps", 10, -3, 10, 0},
		{"in range passes through", 100, 40, 100, 40},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, args := buildListQuery(ListFilter{Limit: tt.limit, Offset: tt.offset})
			if got := args[len(args)-2]; got != tt.wantLimit {
				t.Errorf("limit arg = %v, want %d", got, tt.wantLimit)
			}
			if got := args[len(args)-1]; got != tt.wantOffset {
				t.Errorf("offset arg = %v, want %d", got, tt.wantOffset)
			}
		})
	}
}

func TestBuildListQueryNoConditions(t *testing.T) {
	t.Parallel()

	q, args := buildListQuery(ListFilter{})
	if strings.Contains(q, "WHERE") {
		t.Fatalf("unexpected WHERE clause in %q", q)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want just limit and offset", args)
	}
}
