package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/afisha-events/backend/internal/models"
)

const eventColumns = `e.id, e.title, e.description, e.category_id, e.organizer_id, e.status,
	e.starts_at, e.ends_at, COALESCE(e.address_text,''), e.latitude, e.longitude,
	e.is_free, e.price_from, e.capacity, COALESCE(e.moderation_comment,''),
	e.created_at, e.updated_at,
	c.id, c.name, c.slug, COALESCE(c.description,'')`

// BoundingBox is a map viewport filter. All four corners must be present
// for the filter to apply.
type BoundingBox struct {
	LatMin, LatMax float64
	LngMin, LngMax float64
}

// ListFilter narrows the public feed/map listing. Status is fixed to
// published for unprivileged callers.
type ListFilter struct {
	Status     models.EventStatus
	CategoryID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Query      string
	BBox       *BoundingBox
	Limit      int
	Offset     int
}

// buildListQuery renders the filter into SQL and positional args.
func buildListQuery(f ListFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, vals ...interface{}) {
		placeholders := make([]interface{}, 0, len(vals))
		for _, v := range vals {
			args = append(args, v)
			placeholders = append(placeholders, len(args))
		}
		conds = append(conds, fmt.Sprintf(cond, placeholders...))
	}

	if f.Status != "" {
		add("e.status = $%d", string(f.Status))
	}
	if f.CategoryID != nil {
		add("e.category_id = $%d", *f.CategoryID)
	}
	if f.DateFrom != nil {
		add("e.starts_at >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("e.starts_at <= $%d", *f.DateTo)
	}
	if f.Query != "" {
		add("(e.title ILIKE $%d OR e.description ILIKE $%d)", "%"+f.Query+"%", "%"+f.Query+"%")
	}
	if f.BBox != nil {
		add("e.latitude BETWEEN $%d AND $%d", f.BBox.LatMin, f.BBox.LatMax)
		add("e.longitude BETWEEN $%d AND $%d", f.BBox.LngMin, f.BBox.LngMax)
	}

	q := `SELECT ` + eventColumns + ` FROM events e JOIN event_categories c ON c.id = e.category_id`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY e.starts_at"

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	return q, args
}
