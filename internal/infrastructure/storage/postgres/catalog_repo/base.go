// Package catalog_repo provides PostgreSQL implementations of the catalog repositories
// (categories, products, customers, expenses).
// Every query is scoped by owner_id taken from the request context.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/entity"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// tableSpec describes how a catalog entity maps to its table.
type tableSpec struct {
	table  string
	entity string

	// searchCols are matched with ILIKE by ListFilter.Search
	searchCols []string

	// sortable maps API sort keys to SQL expressions
	sortable map[string]string

	// defaultOrder is used when ListFilter.OrderBy is empty
	defaultOrder string
}

// BaseCatalogRepo provides owner-scoped CRUD for one table.
// Embed it in the specific repositories.
type BaseCatalogRepo[T entity.Owned] struct {
	txm        *postgres.TxManager
	spec       tableSpec
	selectCols []string
	newFn      func() T
}

func newBaseCatalogRepo[T entity.Owned](txm *postgres.TxManager, spec tableSpec, selectCols []string, newFn func() T) *BaseCatalogRepo[T] {
	sortable := map[string]string{
		"createdAt":  "created_at",
		"created_at": "created_at",
		"updatedAt":  "updated_at",
		"updated_at": "updated_at",
	}
	for k, v := range spec.sortable {
		sortable[k] = v
	}
	spec.sortable = sortable

	return &BaseCatalogRepo[T]{
		txm:        txm,
		spec:       spec,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseCatalogRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// ownerSelect selects the entity columns restricted to the owner in ctx.
func (r *BaseCatalogRepo[T]) ownerSelect(ctx context.Context) (squirrel.SelectBuilder, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}
	return Builder().
		Select(r.selectCols...).
		From(r.spec.table).
		Where(squirrel.Eq{"owner_id": ownerID}), nil
}

func (r *BaseCatalogRepo[T]) notFound(entityID id.ID) error {
	return apperror.NewNotFound(r.spec.entity, entityID.String())
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, e T) error {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return err
	}
	data := postgres.StructToMap(e)
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}

	sql, args, err := Builder().Insert(r.spec.table).SetMap(values).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "insert "+r.spec.table)
	}
	return nil
}

// Update writes every column except id, owner_id and created_at.
func (r *BaseCatalogRepo[T]) Update(ctx context.Context, e T) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	data := postgres.StructToMap(e)
	values := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		switch col {
		case "id", "owner_id", "created_at":
			continue
		}
		if v, ok := data[col]; ok {
			values[col] = v
		}
	}

	sql, args, err := Builder().
		Update(r.spec.table).
		SetMap(values).
		Where(squirrel.Eq{"id": e.GetID(), "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "update "+r.spec.table)
	}
	if tag.RowsAffected() == 0 {
		return r.notFound(e.GetID())
	}
	return nil
}

// GetByID retrieves entity by ID.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	q, err := r.ownerSelect(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.FindOne(ctx, q.Where(squirrel.Eq{"id": entityID}).Limit(1), entityID.String())
}

// GetForUpdate retrieves entity by ID with row lock.
func (r *BaseCatalogRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	q, err := r.ownerSelect(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.FindOne(ctx, q.Where(squirrel.Eq{"id": entityID}).Suffix("FOR UPDATE"), entityID.String())
}

// FindOne executes a SELECT and scans a single entity.
// ref names the lookup in the not-found error.
func (r *BaseCatalogRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder, ref string) (T, error) {
	e := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return e, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		var zero T
		if pgxscan.NotFound(err) {
			return zero, apperror.NewNotFound(r.spec.entity, ref)
		}
		return zero, fmt.Errorf("get %s: %w", r.spec.entity, err)
	}
	return e, nil
}

// Exists checks if the owner has an entity with the given ID.
func (r *BaseCatalogRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return false, err
	}
	sql, args, err := Builder().
		Select("1").
		From(r.spec.table).
		Where(squirrel.Eq{"id": entityID, "owner_id": ownerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

// Delete performs physical removal.
func (r *BaseCatalogRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	sql, args, err := Builder().
		Delete(r.spec.table).
		Where(squirrel.Eq{"id": entityID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "delete "+r.spec.table)
	}
	if tag.RowsAffected() == 0 {
		return r.notFound(entityID)
	}
	return nil
}

// List retrieves entities with the common filters applied.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	return r.list(ctx, filter, nil)
}

func (r *BaseCatalogRepo[T]) list(ctx context.Context, filter domain.ListFilter, extra func(squirrel.SelectBuilder) squirrel.SelectBuilder) (domain.ListResult[T], error) {
	result := domain.ListResult[T]{Limit: filter.Limit, Offset: filter.Offset}

	q, err := r.ownerSelect(ctx)
	if err != nil {
		return result, err
	}
	q = r.applyFilter(q, filter)
	if extra != nil {
		q = extra(q)
	}

	countSQL, countArgs, err := Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.spec.table, err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy, "id ASC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.spec.table, err)
	}
	if result.Items == nil {
		result.Items = make([]T, 0)
	}
	return result, nil
}

// applyFilter adds the Search and IDs conditions.
func (r *BaseCatalogRepo[T]) applyFilter(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if search := strings.TrimSpace(filter.Search); search != "" && len(r.spec.searchCols) > 0 {
		pattern := "%" + escapeLike(search) + "%"
		or := make(squirrel.Or, 0, len(r.spec.searchCols))
		for _, col := range r.spec.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	return q
}

// parseOrderBy resolves "field" or "-field" against the sortable whitelist.
func (r *BaseCatalogRepo[T]) parseOrderBy(orderBy string) (string, error) {
	return parseOrderBy(orderBy, r.spec.sortable, r.spec.defaultOrder)
}

func parseOrderBy(orderBy string, sortable map[string]string, defaultOrder string) (string, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return defaultOrder, nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	expr, ok := sortable[strings.TrimSpace(field)]
	if !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", orderBy)
	}
	return expr + " " + direction, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
