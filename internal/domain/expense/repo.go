package expense

import (
	"context"
	"time"

	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
)

// Repository defines the interface for Expense persistence.
// List honours Search (description, category), Category, DateFrom and DateTo.
type Repository interface {
	domain.CatalogRepository[*Expense]

	// SumBetween totals amounts with date in [from, to], both inclusive.
	SumBetween(ctx context.Context, from, to time.Time) (types.Money, error)
}
