package product

import (
	"context"
	"fmt"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/tx"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/pkg/logger"
)

// Service provides business logic for the product catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Product]
	repo       Repository
	categories CategoryLookup
	txManager  tx.Manager
	rule       *LowStockRule
	inv        domain.Invalidator
}

// NewService creates a new Product service.
// A nil rule falls back to DefaultLowStockRule.
func NewService(
	repo Repository,
	txManager tx.Manager,
	categories CategoryLookup,
	rule *LowStockRule,
	inv domain.Invalidator,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})
	if rule == nil {
		rule = MustCompileLowStockRule(DefaultLowStockRule)
	}
	if inv == nil {
		inv = domain.NoopInvalidator{}
	}

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		categories:     categories,
		txManager:      txManager,
		rule:           rule,
		inv:            inv,
	}

	base.Hooks().OnBeforeCreate(svc.checkCategory)
	base.Hooks().OnBeforeUpdate(svc.checkCategory)
	domain.InvalidateAfterWrite(base.Hooks(), inv, domain.TagProducts)

	return svc
}

func (s *Service) checkCategory(ctx context.Context, p *Product) error {
	if p.CategoryID == nil || s.categories == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, *p.CategoryID)
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("category", p.CategoryID.String())
	}
	return nil
}

// AdjustStock adds delta (possibly negative) to the product stock.
// The result must stay non-negative.
func (s *Service) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity) (*Product, error) {
	if !types.IsQuantityPrecise(delta) {
		return nil, apperror.NewFieldValidation("delta", "stock change allows at most 3 decimal places")
	}
	return s.changeStock(ctx, productID, func(p *Product) (types.Quantity, error) {
		next := p.StockQuantity.Add(delta)
		if next.IsNegative() {
			return next, apperror.NewInsufficientStock(
				p.ID.String(), p.Name, delta.Neg().String(), p.StockQuantity.String())
		}
		return next, nil
	})
}

// SetStock overwrites the product stock, e.g. after a physical count.
func (s *Service) SetStock(ctx context.Context, productID id.ID, quantity types.Quantity) (*Product, error) {
	if quantity.IsNegative() {
		return nil, apperror.NewFieldValidation("quantity", "stock quantity cannot be negative")
	}
	if !types.IsQuantityPrecise(quantity) {
		return nil, apperror.NewFieldValidation("quantity", "stock quantity allows at most 3 decimal places")
	}
	return s.changeStock(ctx, productID, func(*Product) (types.Quantity, error) {
		return quantity, nil
	})
}

func (s *Service) changeStock(
	ctx context.Context,
	productID id.ID,
	next func(p *Product) (types.Quantity, error),
) (*Product, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return nil, err
	}

	var updated *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, productID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", productID.String())
			}
			return fmt.Errorf("lock product: %w", err)
		}

		qty, err := next(p)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateStock(ctx, p.ID, qty); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		p.StockQuantity = qty
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.inv.Invalidate(ctx, domain.TagProducts); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "product_id", productID, "error", err)
	}
	return updated, nil
}

// LowStock returns products matched by the configured low-stock rule, ordered by name.
func (s *Service) LowStock(ctx context.Context) ([]*Product, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]*Product, 0)
	for _, p := range all {
		low, err := s.rule.Matches(p)
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("rule", s.rule.String())
		}
		if low {
			out = append(out, p)
		}
	}
	return out, nil
}
