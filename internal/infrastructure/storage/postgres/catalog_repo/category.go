package catalog_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

var _ category.Repository = (*CategoryRepo)(nil)

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: newBaseCatalogRepo(txm, tableSpec{
			table:        "categories",
			entity:       "category",
			searchCols:   []string{"name", "description"},
			sortable:     map[string]string{"name": "lower(name)"},
			defaultOrder: "lower(name) ASC",
		}, postgres.ExtractDBColumns[category.Category](), func() *category.Category { return &category.Category{} }),
	}
}

// FindByName matches the owner's category name ignoring case.
func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*category.Category, error) {
	q, err := r.ownerSelect(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	return r.FindOne(ctx, q.Where(squirrel.Expr("lower(name) = lower(?)", name)).Limit(1), name)
}
