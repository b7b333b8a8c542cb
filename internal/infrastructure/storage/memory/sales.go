package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"time"

	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/reports"
	"gestaopro/internal/domain/sales"
)

// SaleRepo implements sales.Repository.
type SaleRepo struct{ s *Store }

func cloneSale(sale sales.Sale) *sales.Sale {
	sale.Items = slices.Clone(sale.Items)
	return &sale
}

func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	if _, err := owner(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.sales[sale.ID] = *cloneSale(*sale)
	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.st.sales[saleID]
	if !ok || sale.OwnerID != ownerID {
		return nil, notFound("sale", saleID)
	}
	return cloneSale(sale), nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *SaleRepo) UpdateHeader(ctx context.Context, sale *sales.Sale) error {
	current, err := r.GetByID(ctx, sale.ID)
	if err != nil {
		return err
	}
	next := *sale
	next.Items = current.Items
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.sales[sale.ID] = next
	return nil
}

func (r *SaleRepo) ReplaceItems(ctx context.Context, saleID id.ID, items []sales.SaleItem) error {
	current, err := r.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	current.Items = slices.Clone(items)
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.sales[saleID] = *current
	return nil
}

func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	if _, err := r.GetByID(ctx, saleID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.sales, saleID)
	return nil
}

func (r *SaleRepo) filtered(ctx context.Context, f domain.ListFilter) ([]*sales.Sale, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*sales.Sale, 0)
	for _, sale := range r.s.st.sales {
		if sale.OwnerID != ownerID {
			continue
		}
		if len(f.IDs) > 0 && !inIDs(sale.ID, f.IDs) {
			continue
		}
		if f.DateFrom != nil && sale.SaleDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && sale.SaleDate.After(*f.DateTo) {
			continue
		}
		if len(f.ProductIDs) > 0 && !slices.ContainsFunc(sale.Items, func(it sales.SaleItem) bool {
			return it.ProductID != nil && inIDs(*it.ProductID, f.ProductIDs)
		}) {
			continue
		}
		if len(f.CategoryIDs) > 0 && !slices.ContainsFunc(sale.Items, func(it sales.SaleItem) bool {
			if it.ProductID == nil {
				return false
			}
			p, ok := r.s.st.products[*it.ProductID]
			return ok && p.CategoryID != nil && inIDs(*p.CategoryID, f.CategoryIDs)
		}) {
			continue
		}
		if f.Search != "" && !r.matchesSearch(sale, f.Search) {
			continue
		}
		out = append(out, cloneSale(sale))
	}
	return out, nil
}

// matchesSearch must be called with the read lock held.
func (r *SaleRepo) matchesSearch(sale sales.Sale, q string) bool {
	if containsFold(sale.Number, q) || containsFold(sale.PaymentMethod, q) || containsFold(optional(sale.Notes), q) {
		return true
	}
	if sale.CustomerID != nil {
		if c, ok := r.s.st.customers[*sale.CustomerID]; ok && containsFold(c.Name, q) {
			return true
		}
	}
	return slices.ContainsFunc(sale.Items, func(it sales.SaleItem) bool {
		return containsFold(it.ProductName, q)
	})
}

func (r *SaleRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*sales.Sale], error) {
	items, err := r.filtered(ctx, f)
	if err != nil {
		return domain.ListResult[*sales.Sale]{}, err
	}
	sortItems(items, f.OrderBy,
		func(a, b *sales.Sale) int {
			if c := b.SaleDate.Compare(a.SaleDate); c != 0 {
				return c
			}
			return strings.Compare(b.Number, a.Number)
		},
		func(s *sales.Sale) time.Time { return s.CreatedAt })
	return page(items, f), nil
}

func (r *SaleRepo) SumBetween(ctx context.Context, from, to time.Time) (types.Money, int64, error) {
	items, err := r.filtered(ctx, domain.ListFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return types.Zero(), 0, err
	}
	totals := make([]types.Money, len(items))
	for i, sale := range items {
		totals[i] = sale.TotalAmount
	}
	return types.SumMoney(totals...), int64(len(items)), nil
}

func (r *SaleRepo) TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]sales.TopProduct, error) {
	list, err := r.filtered(ctx, domain.ListFilter{DateFrom: from, DateTo: to})
	if err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	byProduct := make(map[id.ID]*sales.TopProduct)
	for _, sale := range list {
		for _, it := range sale.Items {
			if it.ProductID == nil {
				continue
			}
			tp, ok := byProduct[*it.ProductID]
			if !ok {
				name := it.ProductName
				if p, exists := r.s.st.products[*it.ProductID]; exists {
					name = p.Name
				}
				tp = &sales.TopProduct{ProductID: *it.ProductID, ProductName: name}
				byProduct[*it.ProductID] = tp
			}
			tp.Quantity = tp.Quantity.Add(it.Quantity)
			tp.Revenue = tp.Revenue.Add(it.Subtotal)
		}
	}
	r.s.mu.RUnlock()

	out := make([]sales.TopProduct, 0, len(byProduct))
	for _, tp := range byProduct {
		out = append(out, *tp)
	}
	slices.SortFunc(out, func(a, b sales.TopProduct) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ReportRepo implements reports.Repository.
type ReportRepo struct{ s *Store }

func (r *ReportRepo) DailySales(ctx context.Context, from, to time.Time) ([]reports.DailyPoint, error) {
	list, err := r.s.Sales().filtered(ctx, domain.ListFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}
	byDay := make(map[time.Time]*reports.DailyPoint)
	for _, sale := range list {
		day := sale.SaleDate.UTC().Truncate(24 * time.Hour)
		p, ok := byDay[day]
		if !ok {
			p = &reports.DailyPoint{Day: day}
			byDay[day] = p
		}
		p.Total = p.Total.Add(sale.TotalAmount)
		p.Count++
	}
	out := make([]reports.DailyPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b reports.DailyPoint) int { return a.Day.Compare(b.Day) })
	return out, nil
}

func (r *ReportRepo) ExpensesByCategory(ctx context.Context, from, to time.Time) ([]reports.CategoryAmount, error) {
	list, err := r.s.Expenses().filtered(ctx, domain.ListFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}
	byCategory := make(map[string]*reports.CategoryAmount)
	for _, e := range list {
		key := strings.ToLower(e.Category)
		c, ok := byCategory[key]
		if !ok {
			c = &reports.CategoryAmount{Category: e.Category}
			byCategory[key] = c
		}
		c.Total = c.Total.Add(e.Amount)
	}
	out := make([]reports.CategoryAmount, 0, len(byCategory))
	for _, c := range byCategory {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b reports.CategoryAmount) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return out, nil
}

var (
	_ sales.Repository   = (*SaleRepo)(nil)
	_ sales.StockStore   = (*ProductRepo)(nil)
	_ reports.Repository = (*ReportRepo)(nil)
)
