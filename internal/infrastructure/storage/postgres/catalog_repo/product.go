package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// ProductRepo implements product.Repository and the stock store used by sales.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: newBaseCatalogRepo(txm, tableSpec{
			table:      "products",
			entity:     "product",
			searchCols: []string{"name", "description"},
			sortable: map[string]string{
				"name":          "lower(name)",
				"salePrice":     "sale_price",
				"stockQuantity": "stock_quantity",
			},
			defaultOrder: "lower(name) ASC",
		}, postgres.ExtractDBColumns[product.Product](), func() *product.Product { return &product.Product{} }),
	}
}

// List adds the category filter to the common ones.
func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	return r.list(ctx, filter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if len(filter.CategoryIDs) > 0 {
			q = q.Where(squirrel.Eq{"category_id": filter.CategoryIDs})
		}
		return q
	})
}

// ListAll returns every product of the owner ordered by name.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	res, err := r.list(ctx, domain.ListFilter{}, nil)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// UpdateStock overwrites stock_quantity.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, quantity types.Quantity) error {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return err
	}
	sql, args, err := Builder().
		Update("products").
		Set("stock_quantity", quantity).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": productID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update stock: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "update stock")
	}
	if tag.RowsAffected() == 0 {
		return r.notFound(productID)
	}
	return nil
}

// DetachCategory clears category_id of the owner's products in the category.
func (r *ProductRepo) DetachCategory(ctx context.Context, categoryID id.ID) (int64, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return 0, err
	}
	sql, args, err := Builder().
		Update("products").
		Set("category_id", nil).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"category_id": categoryID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build detach category: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, "detach category")
	}
	return tag.RowsAffected(), nil
}
