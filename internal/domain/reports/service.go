package reports

import (
	"context"
	"fmt"
	"time"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/sales"
	"gestaopro/pkg/logger"
)

// DashboardTopProducts is the size of the dashboard best sellers list.
const DashboardTopProducts = 5

// SalesReader is the part of the sales workflow the dashboard reads.
type SalesReader interface {
	MonthlyTotal(ctx context.Context, year, month int) (domain.MonthlyTotal, error)
	TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]sales.TopProduct, error)
}

// ExpenseReader provides the monthly expense total.
type ExpenseReader interface {
	MonthlyTotal(ctx context.Context, year, month int) (domain.MonthlyTotal, error)
}

// LowStockReader lists products under their stock threshold.
type LowStockReader interface {
	LowStock(ctx context.Context) ([]*product.Product, error)
}

// Service provides report generation operations.
type Service struct {
	repo     Repository
	sales    SalesReader
	expenses ExpenseReader
	products LowStockReader
	cache    Cache
}

// NewService creates a new reports service. A nil cache disables caching.
func NewService(repo Repository, salesReader SalesReader, expenses ExpenseReader, products LowStockReader, cache Cache) *Service {
	return &Service{
		repo:     repo,
		sales:    salesReader,
		expenses: expenses,
		products: products,
		cache:    cache,
	}
}

var dashboardTags = []string{domain.TagSales, domain.TagExpenses, domain.TagProducts}

// Dashboard returns the monthly overview, served from cache when possible.
func (s *Service) Dashboard(ctx context.Context, year, month int) (*Dashboard, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	from, to, err := domain.MonthRange(year, month)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("dashboard:%04d-%02d", year, month)
	var slot CacheSlot
	if s.cache != nil {
		var cached Dashboard
		var hit bool
		slot, hit, err = s.cache.Get(ctx, key, dashboardTags, &cached)
		if err != nil {
			logger.Warn(ctx, "report cache read failed", "key", key, "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	d, err := s.build(ctx, year, month, from, to)
	if err != nil {
		return nil, err
	}

	if slot != "" {
		if err := s.cache.Set(ctx, slot, d); err != nil {
			logger.Warn(ctx, "report cache write failed", "key", key, "error", err)
		}
	}
	return d, nil
}

func (s *Service) build(ctx context.Context, year, month int, from, to time.Time) (*Dashboard, error) {
	salesTotal, err := s.sales.MonthlyTotal(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("sales total: %w", err)
	}
	expensesTotal, err := s.expenses.MonthlyTotal(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("expenses total: %w", err)
	}
	top, err := s.sales.TopProducts(ctx, DashboardTopProducts, &from, &to)
	if err != nil {
		return nil, err
	}
	low, err := s.products.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.DailySales(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	byCategory, err := s.repo.ExpensesByCategory(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}

	return &Dashboard{
		Year:               year,
		Month:              month,
		SalesTotal:         salesTotal.Total,
		SalesCount:         salesTotal.Count,
		ExpensesTotal:      expensesTotal.Total,
		NetResult:          salesTotal.Total.Sub(expensesTotal.Total),
		TopProducts:        top,
		LowStock:           low,
		DailySales:         daily,
		ExpensesByCategory: byCategory,
		GeneratedAt:        time.Now().UTC(),
	}, nil
}
