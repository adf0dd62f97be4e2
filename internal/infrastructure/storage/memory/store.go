// Package memory provides an in-process implementation of domain.Repository and tx.Manager.
// It backs service tests and mirrors the PostgreSQL semantics that services rely on:
// NotFound errors, optimistic version checks, equality/IN filters and rollback on error.
package memory

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/domain"
	"sitebook/internal/infrastructure/storage/postgres"
)

// Store keeps rows of one table in memory. Rows are copied on the way in and
// out, so callers must Update to persist a change, exactly as with PostgreSQL.
type Store[T entity.Identifiable] struct {
	mu    sync.Mutex
	table string
	rows  map[id.ID]T
	order []id.ID
}

var _ domain.Repository[entity.Identifiable] = (*Store[entity.Identifiable])(nil)

// NewStore creates an empty table.
func NewStore[T entity.Identifiable](table string) *Store[T] {
	return &Store[T]{table: table, rows: make(map[id.ID]T)}
}

func clone[T any](v T) T {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return v
	}
	cp := reflect.New(rv.Elem().Type())
	cp.Elem().Set(rv.Elem())
	return cp.Interface().(T)
}

// Create implements domain.Repository.
func (s *Store[T]) Create(_ context.Context, e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[e.GetID()]; ok {
		return apperror.NewDuplicate(s.table, "id", e.GetID().String())
	}
	s.rows[e.GetID()] = clone(e)
	s.order = append(s.order, e.GetID())
	return nil
}

// GetByID implements domain.Repository.
func (s *Store[T]) GetByID(_ context.Context, entityID id.ID) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[entityID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound(s.table, entityID.String())
	}
	return clone(row), nil
}

// GetForUpdate implements domain.Repository.
func (s *Store[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	return s.GetByID(ctx, entityID)
}

// Update implements domain.Repository.
func (s *Store[T]) Update(_ context.Context, e T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rows[e.GetID()]
	if !ok {
		return apperror.NewNotFound(s.table, e.GetID().String())
	}

	versioned, ok := any(e).(interface {
		GetVersion() int
		SetVersion(int)
	})
	if ok {
		stored := any(current).(interface{ GetVersion() int })
		if stored.GetVersion() != versioned.GetVersion() {
			return apperror.NewConcurrentModification(s.table, e.GetID().String())
		}
		versioned.SetVersion(versioned.GetVersion() + 1)
	}
	s.rows[e.GetID()] = clone(e)
	return nil
}

// Delete implements domain.Repository.
func (s *Store[T]) Delete(_ context.Context, entityID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[entityID]; !ok {
		return apperror.NewNotFound(s.table, entityID.String())
	}
	s.remove(entityID)
	return nil
}

func (s *Store[T]) remove(entityID id.ID) {
	delete(s.rows, entityID)
	for i, v := range s.order {
		if v == entityID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// FindAll implements domain.Repository.
func (s *Store[T]) FindAll(_ context.Context, where map[string]any) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []T
	for _, key := range s.order {
		row := s.rows[key]
		if Matches(row, where) {
			out = append(out, clone(row))
		}
	}
	return out, nil
}

// DeleteWhere implements domain.Repository.
func (s *Store[T]) DeleteWhere(_ context.Context, where map[string]any) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("delete from %s without conditions", s.table)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []id.ID
	for _, key := range s.order {
		if Matches(s.rows[key], where) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		s.remove(key)
	}
	return int64(len(doomed)), nil
}

// List implements domain.Repository. Ordering supports created_at only (ascending
// insertion order, or descending with "-created_at", the default).
func (s *Store[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	all, _ := s.FindAll(ctx, filter.Where)

	items := make([]T, 0, len(all))
	for _, row := range all {
		cols := postgres.StructToMap(row)
		if filter.Search != "" && !searchMatches(cols, filter.Search) {
			continue
		}
		if created, ok := cols["created_at"].(time.Time); ok {
			if filter.From != nil && created.Before(*filter.From) {
				continue
			}
			if filter.To != nil && created.After(*filter.To) {
				continue
			}
		}
		items = append(items, row)
	}

	if filter.OrderBy == "" || filter.OrderBy == "-created_at" {
		slices.Reverse(items)
	}

	result := domain.ListResult[T]{TotalCount: int64(len(items)), Limit: filter.Limit, Offset: filter.Offset}
	if filter.Offset > 0 {
		if filter.Offset >= len(items) {
			items = nil
		} else {
			items = items[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	result.Items = items
	return result, nil
}

// Rows returns a copy of every row in insertion order.
func (s *Store[T]) Rows() []T {
	out, _ := s.FindAll(context.Background(), nil)
	return out
}

// Len returns the number of rows.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *Store[T]) snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make(map[id.ID]T, len(s.rows))
	for k, v := range s.rows {
		rows[k] = clone(v)
	}
	order := append([]id.ID(nil), s.order...)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rows = rows
		s.order = order
	}
}

// Matches reports whether row satisfies the equality/IN conditions, using "db" tags as column names.
func Matches(row any, where map[string]any) bool {
	if len(where) == 0 {
		return true
	}
	cols := postgres.StructToMap(row)
	for col, want := range where {
		got, ok := cols[col]
		if !ok {
			return false
		}
		if !valueMatches(got, want) {
			return false
		}
	}
	return true
}

func valueMatches(got, want any) bool {
	got = deref(got)
	wv := reflect.ValueOf(want)
	if wv.Kind() == reflect.Slice {
		for i := 0; i < wv.Len(); i++ {
			if equalValues(got, deref(wv.Index(i).Interface())) {
				return true
			}
		}
		return false
	}
	return equalValues(got, deref(want))
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
	return v
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := a.(decimal.Decimal); ok {
		db, ok := b.(decimal.Decimal)
		return ok && da.Equal(db)
	}
	if reflect.TypeOf(a) == reflect.TypeOf(b) && reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func searchMatches(cols map[string]any, search string) bool {
	needle := strings.ToLower(search)
	for _, v := range cols {
		if s, ok := deref(v).(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}
