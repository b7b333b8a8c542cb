package category

import (
	"context"

	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// FindByName retrieves the owner's category by name, ignoring case.
	// Returns a NotFound error when there is none.
	FindByName(ctx context.Context, name string) (*Category, error)
}

// ProductDetacher clears the category reference of products.
type ProductDetacher interface {
	DetachCategory(ctx context.Context, categoryID id.ID) (int64, error)
}
