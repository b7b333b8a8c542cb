package customer

import (
	"context"

	"gestaopro/internal/core/tx"
	"gestaopro/internal/domain"
)

// Service provides business logic for customers.
type Service struct {
	*domain.CatalogService[*Customer]
	repo Repository
}

// NewService creates a new Customer service.
// Deleting a customer changes the customer shown on sales, hence the sales tag.
func NewService(repo Repository, txManager tx.Manager, inv domain.Invalidator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "customer",
	})
	base.Hooks().On(domain.AfterDelete, func(ctx context.Context, _ *Customer) error {
		if inv == nil {
			return nil
		}
		return inv.Invalidate(ctx, domain.TagSales)
	})

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}
