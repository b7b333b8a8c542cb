package expense

import (
	"context"
	"fmt"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/tx"
	"gestaopro/internal/domain"
)

// Service provides business logic for expenses.
type Service struct {
	*domain.CatalogService[*Expense]
	repo Repository
}

// NewService creates a new Expense service.
func NewService(repo Repository, txManager tx.Manager, inv domain.Invalidator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Expense]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "expense",
	})
	domain.InvalidateAfterWrite(base.Hooks(), inv, domain.TagExpenses)

	return &Service{
		CatalogService: base,
		repo:           repo,
	}
}

// MonthlyTotal sums expense amounts dated within the given month.
func (s *Service) MonthlyTotal(ctx context.Context, year, month int) (domain.MonthlyTotal, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return domain.MonthlyTotal{}, err
	}
	from, to, err := domain.MonthRange(year, month)
	if err != nil {
		return domain.MonthlyTotal{}, err
	}

	total, err := s.repo.SumBetween(ctx, from, to)
	if err != nil {
		return domain.MonthlyTotal{}, fmt.Errorf("sum expenses: %w", err)
	}

	filter := domain.ListFilter{DateFrom: &from, DateTo: &to, Limit: 1}
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return domain.MonthlyTotal{}, fmt.Errorf("count expenses: %w", err)
	}

	return domain.MonthlyTotal{Year: year, Month: month, Total: total, Count: page.TotalCount}, nil
}
