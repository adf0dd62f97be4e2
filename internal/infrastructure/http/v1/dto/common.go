// Package dto provides the request and response bodies of the HTTP API.
package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/id"
	"sitebook/internal/domain"
)

// Response is the success envelope.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse converts a repository page.
func NewListResponse[T any](r domain.ListResult[T]) ListResponse {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse{Items: items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
}

// MessageResponse is returned by operations without a resource to show.
type MessageResponse struct {
	Message string `json:"message"`
	Count   *int   `json:"count,omitempty"`
}

// ListQuery holds the common list parameters.
type ListQuery struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
	From    string `form:"from"`
	To      string `form:"to"`
}

// Filter converts the query into a repository filter.
func (q ListQuery) Filter() (domain.ListFilter, error) {
	f := domain.DefaultListFilter()
	f.Search = strings.TrimSpace(q.Search)
	if q.OrderBy != "" {
		f.OrderBy = q.OrderBy
	}
	if q.Limit > 0 {
		f.Limit = q.Limit
	}
	f.Offset = q.Offset
	var err error
	if f.From, f.To, err = DateRange(q.From, q.To); err != nil {
		return f, err
	}
	return f, nil
}

// DateRange parses optional from/to query values. A bare date in to covers the whole day.
func DateRange(from, to string) (*time.Time, *time.Time, error) {
	var lo, hi *time.Time
	if from != "" {
		t, err := parseDate(from)
		if err != nil {
			return nil, nil, apperror.NewValidation("invalid from date").WithDetail("from", from)
		}
		lo = &t
	}
	if to != "" {
		t, err := parseDate(to)
		if err != nil {
			return nil, nil, apperror.NewValidation("invalid to date").WithDetail("to", to)
		}
		end := (&Date{Time: t}).EndOfDay()
		hi = &end
	}
	return lo, hi, nil
}

// OptionalID parses an optional id query value.
func OptionalID(field, value string) (*id.ID, error) {
	if value == "" {
		return nil, nil
	}
	v, err := id.Parse(value)
	if err != nil {
		return nil, apperror.NewValidation("invalid id format").WithDetail(field, value)
	}
	return &v, nil
}

// --- Dates ---

const dateLayout = "2006-01-02"

// Date accepts "2006-01-02" as well as RFC 3339 timestamps.
type Date struct {
	time.Time
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t.UTC()
	return nil
}

// TimeOrZero returns the zero time for a nil date.
func (d *Date) TimeOrZero() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

// TimePtr returns nil for a nil or empty date.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// EndOfDay returns the last instant of a date given without a clock part.
func (d *Date) EndOfDay() time.Time {
	if d.Hour() == 0 && d.Minute() == 0 && d.Second() == 0 && d.Nanosecond() == 0 {
		return d.Add(24*time.Hour - time.Nanosecond)
	}
	return d.Time
}
