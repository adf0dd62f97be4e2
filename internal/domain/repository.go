// Package domain provides the repository contracts and the generic catalog service
// shared by all business packages.
package domain

import (
	"context"
	"time"

	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs a case-insensitive match on the repository's searchable columns
	Search string

	// Where holds column equality conditions. A slice value means IN (an empty slice matches nothing).
	Where map[string]any

	// From/To bound created_at (inclusive)
	From *time.Time
	To   *time.Time

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-created_at",
	}
}

// Eq adds an equality condition and returns the filter for chaining.
func (f ListFilter) Eq(column string, value any) ListFilter {
	where := make(map[string]any, len(f.Where)+1)
	for k, v := range f.Where {
		where[k] = v
	}
	where[column] = value
	f.Where = where
	return f
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Repository Interfaces ---

// Repository defines the storage operations every entity supports.
// Implementations read the transaction from ctx, so calls made inside
// tx.Manager.RunInTransaction join the same unit of work.
type Repository[T entity.Identifiable] interface {
	// Create inserts a new entity
	Create(ctx context.Context, entity T) error

	// GetByID retrieves entity by ID
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetForUpdate retrieves entity by ID and locks the row until the transaction ends
	GetForUpdate(ctx context.Context, id id.ID) (T, error)

	// Update modifies existing entity (with optimistic locking on version)
	Update(ctx context.Context, entity T) error

	// Delete physically removes the entity
	Delete(ctx context.Context, id id.ID) error

	// List retrieves entities with filtering and pagination
	List(ctx context.Context, filter ListFilter) (ListResult[T], error)

	// FindAll returns every row matching where, oldest first
	FindAll(ctx context.Context, where map[string]any) ([]T, error)

	// DeleteWhere removes every row matching where and returns the count
	DeleteWhere(ctx context.Context, where map[string]any) (int64, error)
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate HookEvent = "before_create"
	BeforeUpdate HookEvent = "before_update"
	BeforeDelete HookEvent = "before_delete"
)

// Hook is a function that runs at specific lifecycle points.
// Before-hooks run inside the transaction; an error aborts the operation.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
