package sales

import (
	"context"
	"time"

	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/product"
)

// Repository defines sale persistence. All methods are owner-scoped.
type Repository interface {
	// Create inserts the header and its items.
	Create(ctx context.Context, sale *Sale) error

	// GetByID loads the header with items ordered by line number.
	GetByID(ctx context.Context, id id.ID) (*Sale, error)

	// GetForUpdate is GetByID with the header row locked.
	GetForUpdate(ctx context.Context, id id.ID) (*Sale, error)

	// UpdateHeader writes header fields, including the total.
	UpdateHeader(ctx context.Context, sale *Sale) error

	// ReplaceItems deletes all items of the sale and inserts the given ones.
	ReplaceItems(ctx context.Context, saleID id.ID, items []SaleItem) error

	// Delete removes the header and its items.
	Delete(ctx context.Context, id id.ID) error

	// List honours Search (number, notes, payment method, customer name),
	// CategoryIDs, ProductIDs, DateFrom and DateTo. Items are loaded.
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error)

	// SumBetween totals sales dated within [from, to] and counts them.
	SumBetween(ctx context.Context, from, to time.Time) (types.Money, int64, error)

	// TopProducts ranks products by revenue, then product id ascending.
	// Nil bounds are open.
	TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]TopProduct, error)
}

// StockStore is the part of the product store the workflow needs.
type StockStore interface {
	GetForUpdate(ctx context.Context, id id.ID) (*product.Product, error)
	UpdateStock(ctx context.Context, id id.ID, quantity types.Quantity) error
}

// CustomerLookup checks customer references.
type CustomerLookup interface {
	Exists(ctx context.Context, id id.ID) (bool, error)
}
