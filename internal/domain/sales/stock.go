package sales

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain/catalogs/product"
)

// stockPlan is the outcome of reconciling a sale's old items with its new ones.
type stockPlan struct {
	items  []SaleItem
	writes map[id.ID]types.Quantity
}

// reconcile computes the new item rows and the resulting stock of every product
// touched by previous or requested items. Quantities held by previous items count
// as available again. Nothing is written; the caller applies the plan.
//
// Products are locked in id order. Validation then runs in item order, so the
// first failing line is the one reported.
func reconcile(ctx context.Context, stock StockStore, saleID id.ID, previous []SaleItem, requested []ItemInput) (*stockPlan, error) {
	reserved := make(map[id.ID]types.Quantity)
	for _, it := range previous {
		if it.ProductID == nil {
			continue
		}
		reserved[*it.ProductID] = reserved[*it.ProductID].Add(it.Quantity)
	}

	touched := make([]id.ID, 0, len(reserved)+len(requested))
	seen := make(map[id.ID]bool)
	for pid := range reserved {
		if !seen[pid] {
			seen[pid] = true
			touched = append(touched, pid)
		}
	}
	for _, it := range requested {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			touched = append(touched, it.ProductID)
		}
	}
	slices.SortFunc(touched, func(a, b id.ID) int { return bytes.Compare(a[:], b[:]) })

	products := make(map[id.ID]*product.Product, len(touched))
	for _, pid := range touched {
		p, err := stock.GetForUpdate(ctx, pid)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("lock product %s: %w", pid, err)
		}
		products[pid] = p
	}

	plan := &stockPlan{
		items:  make([]SaleItem, 0, len(requested)),
		writes: make(map[id.ID]types.Quantity),
	}

	consumed := make(map[id.ID]types.Quantity)
	for i, in := range requested {
		p, ok := products[in.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", in.ProductID.String()).WithDetail("line", i+1)
		}

		available := p.StockQuantity.Add(reserved[in.ProductID])
		want := consumed[in.ProductID].Add(in.Quantity)
		if want.GreaterThan(available) {
			return nil, apperror.NewInsufficientStock(
				p.ID.String(), p.Name, want.String(), available.String(),
			).WithDetail("line", i+1)
		}
		consumed[in.ProductID] = want

		pid := p.ID
		plan.items = append(plan.items, SaleItem{
			ID:          id.New(),
			SaleID:      saleID,
			ProductID:   &pid,
			ProductName: p.Name,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Subtotal:    types.LineTotal(in.Quantity, in.UnitPrice),
			LineNo:      i + 1,
		})
	}

	for pid, p := range products {
		delta := reserved[pid].Sub(consumed[pid])
		if delta.Equal(decimal.Zero) {
			continue
		}
		plan.writes[pid] = p.StockQuantity.Add(delta)
	}
	return plan, nil
}

// apply writes the planned stock quantities.
func (p *stockPlan) apply(ctx context.Context, stock StockStore) error {
	for pid, qty := range p.writes {
		if err := stock.UpdateStock(ctx, pid, qty); err != nil {
			return fmt.Errorf("update stock of %s: %w", pid, err)
		}
	}
	return nil
}
