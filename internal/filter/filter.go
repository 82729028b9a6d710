// Package filter narrows an item snapshot by category, publication day and
// free-text query. It never mutates the items it is given.
package filter

import (
	"strings"
	"time"

	"InsightStream/internal/domain"
)

// Criteria groups the optional predicates. Zero values match everything.
type Criteria struct {
	Category domain.Category
	Query    string
	DateFrom time.Time
	DateTo   time.Time
	// Location defines calendar days for the date bounds; nil means time.Local.
	Location *time.Location
}

// Apply returns the items matching every predicate, preserving order.
// The input slice is never modified.
func Apply(items []domain.Item, c Criteria) []domain.Item {
	match := c.compile()
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

func (c Criteria) compile() func(domain.Item) bool {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}

	category := c.Category
	if category == domain.CategoryAll {
		category = ""
	}
	query := strings.ToLower(strings.TrimSpace(c.Query))

	var from, to time.Time
	if !c.DateFrom.IsZero() {
		from = StartOfDay(c.DateFrom, loc)
	}
	if !c.DateTo.IsZero() {
		to = EndOfDay(c.DateTo, loc)
	}

	return func(item domain.Item) bool {
		if category != "" && item.Category != category {
			return false
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Title), query) &&
			!strings.Contains(strings.ToLower(item.Snippet), query) {
			return false
		}
		if !from.IsZero() && item.PublishedAt.Before(from) {
			return false
		}
		if !to.IsZero() && item.PublishedAt.After(to) {
			return false
		}
		return true
	}
}

// StartOfDay returns 00:00:00.000 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// ParseDay parses a YYYY-MM-DD calendar day in loc; empty input yields the zero time.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02", value, loc)
}
