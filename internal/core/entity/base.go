// Package entity holds the fields and contracts shared by every persisted record.
package entity

import (
	"context"
	"time"

	"sitebook/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// (without database access) before being persisted.
type Validatable interface {
	Validate(ctx context.Context) error
}

// Identifiable exposes the primary key.
type Identifiable interface {
	GetID() id.ID
}

// Base contains common fields for all entities.
type Base struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented by the repository on each update)
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBase creates a Base with generated ID and timestamps.
func NewBase() Base {
	now := time.Now().UTC()
	return Base{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID implements Identifiable.
func (b *Base) GetID() id.ID {
	return b.ID
}

// Touch refreshes UpdatedAt. Version is bumped by the repository.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now().UTC()
}

// SetVersion updates the version number (used by repository after a successful update).
func (b *Base) SetVersion(v int) {
	b.Version = v
}

// GetVersion returns the optimistic lock version.
func (b *Base) GetVersion() int {
	return b.Version
}
