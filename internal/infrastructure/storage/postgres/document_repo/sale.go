// Package document_repo provides PostgreSQL storage for sales and their line items.
package document_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/sales"
	"gestaopro/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

var (
	saleColumns = postgres.ExtractDBColumns[sales.Sale]()
	itemColumns = postgres.ExtractDBColumns[sales.SaleItem]()
)

// sortable maps API sort keys to columns of the sales table.
var sortable = map[string]string{
	"saleDate":    "sale_date",
	"sale_date":   "sale_date",
	"number":      "number",
	"totalAmount": "total_amount",
	"createdAt":   "created_at",
	"created_at":  "created_at",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txm *postgres.TxManager
}

var _ sales.Repository = (*SaleRepo)(nil)

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{txm: txm}
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the header and its items.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return err
	}
	sql, args, err := builder().
		Insert(salesTable).
		SetMap(postgres.StructToMap(sale)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "insert sale")
	}
	return r.insertItems(ctx, sale.ID, sale.Items)
}

func (r *SaleRepo) insertItems(ctx context.Context, saleID id.ID, items []sales.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	q := builder().Insert(saleItemsTable).Columns(itemColumns...)
	for _, it := range items {
		it.SaleID = saleID
		row := postgres.StructToMap(it)
		values := make([]any, len(itemColumns))
		for i, col := range itemColumns {
			values[i] = row[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "insert sale items")
	}
	return nil
}

// GetByID loads the header with items ordered by line number.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.get(ctx, saleID, false)
}

// GetForUpdate is GetByID with the header row locked.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.get(ctx, saleID, true)
}

func (r *SaleRepo) get(ctx context.Context, saleID id.ID, lock bool) (*sales.Sale, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	q := builder().
		Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID, "owner_id": ownerID})
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.Sale
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if err := r.loadItems(ctx, []*sales.Sale{&sale}); err != nil {
		return nil, err
	}
	return &sale, nil
}

// loadItems fills Items of every sale with a single query.
func (r *SaleRepo) loadItems(ctx context.Context, list []*sales.Sale) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]id.ID, len(list))
	byID := make(map[id.ID]*sales.Sale, len(list))
	for i, s := range list {
		ids[i] = s.ID
		s.Items = make([]sales.SaleItem, 0)
		byID[s.ID] = s
	}

	sql, args, err := builder().
		Select(itemColumns...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": ids}).
		OrderBy("sale_id", "line_no").
		ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}

	var items []sales.SaleItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return fmt.Errorf("get sale items: %w", err)
	}
	for _, it := range items {
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, it)
		}
	}
	return nil
}

// UpdateHeader writes header fields, including the total.
func (r *SaleRepo) UpdateHeader(ctx context.Context, sale *sales.Sale) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	sql, args, err := builder().
		Update(salesTable).
		Set("customer_id", sale.CustomerID).
		Set("payment_method", sale.PaymentMethod).
		Set("notes", sale.Notes).
		Set("sale_date", sale.SaleDate).
		Set("total_amount", sale.TotalAmount).
		Set("updated_at", sale.UpdatedAt).
		Where(squirrel.Eq{"id": sale.ID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "update sale")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", sale.ID.String())
	}
	return nil
}

// ReplaceItems deletes all items of the sale and inserts the given ones.
// The caller has already checked the sale belongs to the owner.
func (r *SaleRepo) ReplaceItems(ctx context.Context, saleID id.ID, items []sales.SaleItem) error {
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx,
		"DELETE FROM "+saleItemsTable+" WHERE sale_id = $1", saleID); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	return r.insertItems(ctx, saleID, items)
}

// Delete removes the header; items go with it through the cascade.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx,
		"DELETE FROM "+salesTable+" WHERE id = $1 AND owner_id = $2", saleID, ownerID)
	if err != nil {
		return postgres.MapError(err, "delete sale")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return nil
}

// filtered builds the owner-scoped sales query with the list filters applied.
func filtered(ownerID id.ID, filter domain.ListFilter) squirrel.SelectBuilder {
	q := builder().
		Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"owner_id": ownerID})

	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"sale_date": *filter.DateTo})
	}
	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = sales.id AND si.product_id = ANY(?))",
			filter.ProductIDs))
	}
	if len(filter.CategoryIDs) > 0 {
		q = q.Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM sale_items si JOIN products p ON p.id = si.product_id"+
				" WHERE si.sale_id = sales.id AND p.category_id = ANY(?))",
			filter.CategoryIDs))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"payment_method": pattern},
			squirrel.ILike{"notes": pattern},
			squirrel.Expr("EXISTS (SELECT 1 FROM customers c WHERE c.id = sales.customer_id AND c.name ILIKE ?)", pattern),
			squirrel.Expr("EXISTS (SELECT 1 FROM sale_items si WHERE si.sale_id = sales.id AND si.product_name ILIKE ?)", pattern),
		})
	}
	return q
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func orderBy(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "sale_date DESC, number DESC", nil
	}
	direction := "ASC"
	field := raw
	if strings.HasPrefix(raw, "-") {
		direction = "DESC"
		field = raw[1:]
	}
	col, ok := sortable[field]
	if !ok {
		return "", apperror.NewValidation("invalid orderBy").WithDetail("orderBy", raw)
	}
	return col + " " + direction, nil
}

// List returns one page of sales with their items.
func (r *SaleRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*sales.Sale], error) {
	result := domain.ListResult[*sales.Sale]{Limit: filter.Limit, Offset: filter.Offset}

	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return result, err
	}
	q := filtered(ownerID, filter)
	querier := r.txm.GetQuerier(ctx)

	countSQL, countArgs, err := builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count sales: %w", err)
	}

	order, err := orderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(order, "id ASC")
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
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list sales: %w", err)
	}
	if result.Items == nil {
		result.Items = make([]*sales.Sale, 0)
	}
	if err := r.loadItems(ctx, result.Items); err != nil {
		return result, err
	}
	return result, nil
}

// SumBetween totals sales dated within [from, to] and counts them.
func (r *SaleRepo) SumBetween(ctx context.Context, from, to time.Time) (types.Money, int64, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return types.Zero(), 0, err
	}
	var (
		total types.Money
		count int64
	)
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM sales
		WHERE owner_id = $1 AND sale_date >= $2 AND sale_date <= $3
	`, ownerID, from, to).Scan(&total, &count)
	if err != nil {
		return types.Zero(), 0, fmt.Errorf("sum sales: %w", err)
	}
	return types.RoundMoney(total), count, nil
}

// TopProducts ranks products by revenue, then product id ascending.
// Lines of deleted products are left out.
func (r *SaleRepo) TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]sales.TopProduct, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	q := topProductsQuery(ownerID, limit, from, to)
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top products: %w", err)
	}

	out := make([]sales.TopProduct, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return out, nil
}

func topProductsQuery(ownerID id.ID, limit int, from, to *time.Time) squirrel.SelectBuilder {
	q := builder().
		Select(
			"si.product_id",
			"p.name AS product_name",
			"SUM(si.quantity) AS quantity",
			"SUM(si.subtotal) AS revenue",
		).
		From("sale_items si").
		Join("sales s ON s.id = si.sale_id").
		Join("products p ON p.id = si.product_id").
		Where(squirrel.Eq{"s.owner_id": ownerID}).
		GroupBy("si.product_id", "p.name").
		OrderBy("revenue DESC", "si.product_id ASC")
	if from != nil {
		q = q.Where(squirrel.GtOrEq{"s.sale_date": *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"s.sale_date": *to})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}
