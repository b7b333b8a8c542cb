package product

import (
	"context"

	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves product with row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// UpdateStock overwrites the stock quantity.
	UpdateStock(ctx context.Context, id id.ID, quantity types.Quantity) error

	// ListAll returns every product of the owner ordered by name.
	ListAll(ctx context.Context) ([]*Product, error)

	// DetachCategory clears category_id on products referencing the category.
	DetachCategory(ctx context.Context, categoryID id.ID) (int64, error)
}

// CategoryLookup is the part of the category store products depend on.
type CategoryLookup interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}
