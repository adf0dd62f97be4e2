// Package id provides identifiers for all persisted entities.
// UUIDv7 keeps ids ordered by creation time, which the FIFO lot selection relies on as a tie-breaker.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID.
type ID = uuid.UUID

// New generates a new UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error. Tests and constants only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Ptr returns a pointer to v, or nil for the zero id.
func Ptr(v ID) *ID {
	if IsNil(v) {
		return nil
	}
	return &v
}

// Strings converts ids to their string form.
func Strings(ids []ID) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		out = append(out, v.String())
	}
	return out
}

// ParseAll parses a list of string ids, skipping malformed values.
func ParseAll(values []string) []ID {
	out := make([]ID, 0, len(values))
	for _, s := range values {
		if v, err := uuid.Parse(s); err == nil {
			out = append(out, v)
		}
	}
	return out
}
