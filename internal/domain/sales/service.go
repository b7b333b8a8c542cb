package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/numerator"
	"gestaopro/internal/core/tx"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/audit"
	"gestaopro/pkg/logger"
)

const (
	DefaultTopProducts = 5
	MaxTopProducts     = 50
)

// Service orchestrates the sale workflow. Every write runs in one transaction:
// either header, items and stock all change, or nothing does.
type Service struct {
	repo      Repository
	stock     StockStore
	customers CustomerLookup
	txManager tx.Manager
	numerator numerator.Generator
	audit     audit.Recorder
	inv       domain.Invalidator
	now       func() time.Time
}

// Config wires the Service dependencies. Audit and Invalidator are optional.
type Config struct {
	Repo      Repository
	Stock     StockStore
	Customers CustomerLookup
	TxManager tx.Manager
	Numerator numerator.Generator
	Audit     audit.Recorder
	Invalid   domain.Invalidator
}

// NewService creates a new sales service.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:      cfg.Repo,
		stock:     cfg.Stock,
		customers: cfg.Customers,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		audit:     cfg.Audit,
		inv:       cfg.Invalid,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if s.audit == nil {
		s.audit = audit.Nop{}
	}
	if s.inv == nil {
		s.inv = domain.NoopInvalidator{}
	}
	return s
}

func (s *Service) checkCustomer(ctx context.Context, customerID *id.ID) error {
	if customerID == nil || s.customers == nil {
		return nil
	}
	ok, err := s.customers.Exists(ctx, *customerID)
	if err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if !ok {
		return apperror.NewNotFound("customer", customerID.String())
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.inv.Invalidate(ctx, domain.TagSales, domain.TagProducts); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "error", err)
	}
}

// Create records a new sale, decrementing stock for every item.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}

	sale := &Sale{
		CustomerID:    in.CustomerID,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		SaleDate:      in.SaleDate,
	}
	sale.BaseEntity = newBase(ownerID, s.now())
	if sale.SaleDate.IsZero() {
		sale.SaleDate = sale.CreatedAt
	}
	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkCustomer(ctx, sale.CustomerID); err != nil {
			return err
		}

		plan, err := reconcile(ctx, s.stock, sale.ID, nil, in.Items)
		if err != nil {
			return err
		}
		sale.Items = plan.items
		sale.TotalAmount = Total(plan.items)

		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, sale.SaleDate)
		if err != nil {
			return fmt.Errorf("generate sale number: %w", err)
		}
		sale.Number = number

		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		if err := plan.apply(ctx, s.stock); err != nil {
			return err
		}

		return s.audit.LogChange(ctx, "sale", sale.ID, audit.ActionCreate, map[string]any{
			"number": sale.Number,
			"total":  sale.TotalAmount.String(),
			"items":  len(sale.Items),
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info(ctx, "sale created", "sale_id", sale.ID, "number", sale.Number, "total", sale.TotalAmount.String())
	return sale, nil
}

// GetByID returns the sale with its items.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, notFound(err, saleID)
	}
	return sale, nil
}

// Update patches header fields and, when in.Items is non-nil, replaces the items.
// Quantities held by the previous items are available to the new ones.
func (s *Service) Update(ctx context.Context, saleID id.ID, in UpdateInput) (*Sale, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	if in.Items != nil {
		if err := validateItems(in.Items); err != nil {
			return nil, err
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return notFound(err, saleID)
		}

		changes := applyPatch(sale, in)
		if err := sale.Validate(ctx); err != nil {
			return err
		}
		if in.CustomerID != nil {
			if err := s.checkCustomer(ctx, sale.CustomerID); err != nil {
				return err
			}
		}

		if in.Items != nil {
			plan, err := reconcile(ctx, s.stock, sale.ID, sale.Items, in.Items)
			if err != nil {
				return err
			}
			if err := s.repo.ReplaceItems(ctx, sale.ID, plan.items); err != nil {
				return fmt.Errorf("replace items: %w", err)
			}
			if err := plan.apply(ctx, s.stock); err != nil {
				return err
			}
			sale.Items = plan.items
			sale.TotalAmount = Total(plan.items)
			changes["items"] = len(plan.items)
			changes["total"] = sale.TotalAmount.String()
		}

		sale.UpdatedAt = s.now()
		if err := s.repo.UpdateHeader(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}
		return s.audit.LogChange(ctx, "sale", sale.ID, audit.ActionUpdate, changes)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.GetByID(ctx, saleID)
}

// Delete removes the sale and returns its quantities to stock.
// Lines whose product no longer exists are skipped.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.repo.GetForUpdate(ctx, saleID)
		if err != nil {
			return notFound(err, saleID)
		}

		plan, err := reconcile(ctx, s.stock, sale.ID, sale.Items, nil)
		if err != nil {
			return err
		}
		if err := plan.apply(ctx, s.stock); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, sale.ID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		return s.audit.LogChange(ctx, "sale", sale.ID, audit.ActionDelete, map[string]any{
			"number": sale.Number,
			"total":  sale.TotalAmount.String(),
		})
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// List returns a page of sales.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Sale], error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return domain.ListResult[*Sale]{}, err
	}
	if filter.Limit <= 0 || filter.Limit > domain.MaxPageSize {
		filter.Limit = domain.DefaultListFilter().Limit
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return domain.ListResult[*Sale]{}, apperror.NewFieldValidation("endDate", "end date is before start date")
	}
	return s.repo.List(ctx, filter)
}

// MonthlyTotal sums sale totals dated within the month.
func (s *Service) MonthlyTotal(ctx context.Context, year, month int) (domain.MonthlyTotal, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return domain.MonthlyTotal{}, err
	}
	from, to, err := domain.MonthRange(year, month)
	if err != nil {
		return domain.MonthlyTotal{}, err
	}
	total, count, err := s.repo.SumBetween(ctx, from, to)
	if err != nil {
		return domain.MonthlyTotal{}, fmt.Errorf("sum sales: %w", err)
	}
	return domain.MonthlyTotal{Year: year, Month: month, Total: total, Count: count}, nil
}

// TopProducts ranks products by revenue. Limit defaults to 5 and is capped at 50.
func (s *Service) TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]TopProduct, error) {
	if _, err := appctx.RequireOwnerID(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultTopProducts
	}
	if limit > MaxTopProducts {
		limit = MaxTopProducts
	}
	top, err := s.repo.TopProducts(ctx, limit, from, to)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return top, nil
}

// applyPatch copies set fields of in onto sale and returns the changed fields.
func applyPatch(sale *Sale, in UpdateInput) map[string]any {
	changes := make(map[string]any)
	if in.ClearCustomer {
		sale.CustomerID = nil
		changes["customerId"] = nil
	} else if in.CustomerID != nil {
		cid := *in.CustomerID
		sale.CustomerID = &cid
		changes["customerId"] = cid.String()
	}
	if in.PaymentMethod != nil {
		sale.PaymentMethod = strings.TrimSpace(*in.PaymentMethod)
		changes["paymentMethod"] = sale.PaymentMethod
	}
	if in.Notes != nil {
		notes := *in.Notes
		sale.Notes = &notes
		changes["notes"] = notes
	}
	if in.SaleDate != nil {
		sale.SaleDate = in.SaleDate.UTC()
		changes["saleDate"] = sale.SaleDate
	}
	return changes
}

func notFound(err error, saleID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return err
}
