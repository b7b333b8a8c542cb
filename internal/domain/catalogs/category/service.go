package category

import (
	"context"
	"fmt"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/tx"
	"gestaopro/internal/domain"
	"gestaopro/pkg/logger"
)

// Service provides business logic for categories.
type Service struct {
	*domain.CatalogService[*Category]
	repo     Repository
	products ProductDetacher
}

// NewService creates a new Category service.
func NewService(repo Repository, txManager tx.Manager, products ProductDetacher, inv domain.Invalidator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		products:       products,
	}

	base.Hooks().OnBeforeCreate(svc.checkUniqueName)
	base.Hooks().OnBeforeUpdate(svc.checkUniqueName)
	base.Hooks().OnBeforeDelete(svc.detachProducts)
	domain.InvalidateAfterWrite(base.Hooks(), inv, domain.TagProducts)

	return svc
}

func (s *Service) checkUniqueName(ctx context.Context, c *Category) error {
	existing, err := s.repo.FindByName(ctx, c.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("check category name: %w", err)
	}
	if existing.ID != c.ID {
		return apperror.NewDuplicate("category", "name", c.Name)
	}
	return nil
}

// detachProducts runs inside the delete transaction.
func (s *Service) detachProducts(ctx context.Context, c *Category) error {
	if s.products == nil {
		return nil
	}
	n, err := s.products.DetachCategory(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("detach products: %w", err)
	}
	if n > 0 {
		logger.Debug(ctx, "category detached from products", "category_id", c.ID, "products", n)
	}
	return nil
}
