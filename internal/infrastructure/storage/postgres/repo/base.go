// Package repo provides the PostgreSQL implementations of the domain repositories.
package repo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"sitebook/internal/core/apperror"
	"sitebook/internal/core/entity"
	"sitebook/internal/core/id"
	"sitebook/internal/domain"
	"sitebook/internal/infrastructure/storage/postgres"
)

// BaseRepo provides CRUD operations for any entity described by "db" tags.
// Embed it in specific repositories to add queries of their own.
type BaseRepo[T entity.Identifiable] struct {
	txm        *postgres.TxManager
	tableName  string
	selectCols []string
	searchCols []string
	allowed    map[string]struct{}
	newFn      func() T
}

// NewBaseRepo creates a new base repository.
func NewBaseRepo[T entity.Identifiable](
	txm *postgres.TxManager,
	tableName string,
	selectCols []string,
	searchCols []string,
	newFn func() T,
) *BaseRepo[T] {
	allowed := make(map[string]struct{}, len(selectCols))
	for _, col := range selectCols {
		allowed[col] = struct{}{}
	}
	return &BaseRepo[T]{
		txm:        txm,
		tableName:  tableName,
		selectCols: selectCols,
		searchCols: searchCols,
		allowed:    allowed,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *BaseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().Select(r.selectCols...).From(r.tableName)
}

// columnsOf keeps only the known columns of the entity's db map.
func (r *BaseRepo[T]) columnsOf(e T, skip ...string) (map[string]any, error) {
	data := postgres.StructToMap(e)
	if len(data) == 0 {
		return nil, fmt.Errorf("no db tags found in %T", e)
	}
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if containsString(skip, col) {
			continue
		}
		if val, ok := data[col]; ok {
			out[col] = val
		}
	}
	return out, nil
}

// Create inserts a new entity.
func (r *BaseRepo[T]) Create(ctx context.Context, e T) error {
	data, err := r.columnsOf(e)
	if err != nil {
		return err
	}

	sql, args, err := r.Builder().Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteErr(err, e.GetID())
	}
	return nil
}

// Update modifies an existing entity with optimistic locking on version.
func (r *BaseRepo[T]) Update(ctx context.Context, e T) error {
	data, err := r.columnsOf(e, "id", "version", "created_at")
	if err != nil {
		return err
	}

	versioned, ok := any(e).(interface {
		GetVersion() int
		SetVersion(int)
	})
	if !ok {
		return fmt.Errorf("%T does not carry a version", e)
	}
	version := versioned.GetVersion()
	data["updated_at"] = time.Now().UTC()

	sql, args, err := r.Builder().
		Update(r.tableName).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": e.GetID()}).
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteErr(err, e.GetID())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.tableName, e.GetID().String())
	}

	versioned.SetVersion(version + 1)
	return nil
}

// GetByID retrieves entity by ID.
func (r *BaseRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Limit(1), entityID)
}

// GetForUpdate retrieves entity by ID with a row lock.
func (r *BaseRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"), entityID)
}

func (r *BaseRepo[T]) getOne(ctx context.Context, q squirrel.SelectBuilder, entityID id.ID) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return e, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return e, nil
}

// FindOne executes a SELECT and returns a single entity.
func (r *BaseRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return e, apperror.NewNotFound(r.tableName, "matching query")
		}
		return e, fmt.Errorf("find one %s: %w", r.tableName, err)
	}
	return e, nil
}

// FindMany executes a SELECT and returns all entities.
func (r *BaseRepo[T]) FindMany(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []T
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find many %s: %w", r.tableName, err)
	}
	return items, nil
}

// FindAll returns all rows matching where, oldest first.
func (r *BaseRepo[T]) FindAll(ctx context.Context, where map[string]any) ([]T, error) {
	q, err := r.applyWhere(r.baseSelect(), where)
	if err != nil {
		return nil, err
	}
	return r.FindMany(ctx, q.OrderBy("created_at ASC", "id ASC"))
}

// List retrieves entities with filtering and pagination.
func (r *BaseRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}

	q, err := r.applyWhere(r.baseSelect(), filter.Where)
	if err != nil {
		return result, err
	}

	if filter.Search != "" && len(r.searchCols) > 0 {
		pattern := "%" + filter.Search + "%"
		or := squirrel.Or{}
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.To})
	}

	countSQL, countArgs, err := r.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	items, err := r.FindMany(ctx, q)
	if err != nil {
		return result, err
	}
	result.Items = items
	return result, nil
}

// Delete performs physical removal.
func (r *BaseRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	sql, args, err := r.Builder().Delete(r.tableName).Where(squirrel.Eq{"id": entityID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteErr(err, entityID)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}
	return nil
}

// DeleteWhere removes every row matching where.
func (r *BaseRepo[T]) DeleteWhere(ctx context.Context, where map[string]any) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("delete from %s without conditions", r.tableName)
	}
	cond, err := r.eqCondition(where)
	if err != nil {
		return 0, err
	}

	sql, args, err := r.Builder().Delete(r.tableName).Where(cond).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", r.tableName, err)
	}
	return result.RowsAffected(), nil
}

func (r *BaseRepo[T]) applyWhere(q squirrel.SelectBuilder, where map[string]any) (squirrel.SelectBuilder, error) {
	if len(where) == 0 {
		return q, nil
	}
	cond, err := r.eqCondition(where)
	if err != nil {
		return q, err
	}
	return q.Where(cond), nil
}

// eqCondition whitelists columns so user-supplied filters cannot inject SQL.
func (r *BaseRepo[T]) eqCondition(where map[string]any) (squirrel.Eq, error) {
	cond := make(squirrel.Eq, len(where))
	for col, val := range where {
		if _, ok := r.allowed[col]; !ok {
			return nil, apperror.NewValidation("invalid filter column").WithDetail("field", col)
		}
		cond[col] = derefValue(val)
	}
	return cond, nil
}

// derefValue unwraps pointer filter values; a nil pointer becomes IS NULL.
func derefValue(val any) any {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr {
		return val
	}
	if rv.IsNil() {
		return nil
	}
	return rv.Elem().Interface()
}

func (r *BaseRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return "created_at DESC", nil
	}

	direction := "ASC"
	field := strings.TrimSpace(orderBy)
	switch {
	case strings.HasPrefix(field, "-"):
		direction = "DESC"
		field = strings.TrimPrefix(field, "-")
	case strings.HasPrefix(field, "+"):
		field = strings.TrimPrefix(field, "+")
	}

	if _, ok := r.allowed[field]; !ok || field == "" {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	return field + " " + direction, nil
}

func (r *BaseRepo[T]) mapWriteErr(err error, entityID id.ID) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return apperror.NewConflict("record is referenced by other records").
				WithDetail("entity", r.tableName).
				WithDetail("id", entityID.String()).
				WithCause(err)
		case "23505":
			return apperror.NewDuplicate(r.tableName, pgErr.ConstraintName, entityID.String()).WithCause(err)
		case "23514":
			return apperror.NewValidation("value violates a constraint").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		}
	}
	return fmt.Errorf("write %s: %w", r.tableName, err)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
