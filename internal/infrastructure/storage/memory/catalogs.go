package memory

import (
	"context"
	"strings"
	"time"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/expense"
)

// --- categories ---

// CategoryRepo implements category.Repository.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	ownerID, err := owner(ctx)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.categories {
		if existing.OwnerID == ownerID && strings.EqualFold(existing.Name, c.Name) {
			return apperror.NewDuplicate("category", "name", c.Name)
		}
	}
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.st.categories[categoryID]
	if !ok || c.OwnerID != ownerID {
		return nil, notFound("category", categoryID)
	}
	return &c, nil
}

func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*category.Category, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.st.categories {
		if c.OwnerID == ownerID && strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return &c, nil
		}
	}
	return nil, apperror.NewNotFound("category", name)
}

func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.categories {
		if existing.ID != c.ID && existing.OwnerID == c.OwnerID && strings.EqualFold(existing.Name, c.Name) {
			return apperror.NewDuplicate("category", "name", c.Name)
		}
	}
	r.s.st.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) Delete(ctx context.Context, categoryID id.ID) error {
	if _, err := r.GetByID(ctx, categoryID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.categories, categoryID)
	// Mirrors ON DELETE SET NULL.
	for pid, p := range r.s.st.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			r.s.st.products[pid] = p
		}
	}
	return nil
}

func (r *CategoryRepo) Exists(ctx context.Context, categoryID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, categoryID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *CategoryRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*category.Category], error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return domain.ListResult[*category.Category]{}, err
	}
	r.s.mu.RLock()
	items := make([]*category.Category, 0)
	for _, c := range r.s.st.categories {
		if c.OwnerID != ownerID {
			continue
		}
		if len(f.IDs) > 0 && !inIDs(c.ID, f.IDs) {
			continue
		}
		if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(optional(c.Description), f.Search) {
			continue
		}
		c := c
		items = append(items, &c)
	}
	r.s.mu.RUnlock()

	sortItems(items, f.OrderBy,
		func(a, b *category.Category) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		},
		func(c *category.Category) time.Time { return c.CreatedAt })
	return page(items, f), nil
}

// --- products ---

// ProductRepo implements product.Repository and sales.StockStore.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	if _, err := owner(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.st.products[productID]
	if !ok || p.OwnerID != ownerID {
		return nil, notFound("product", productID)
	}
	return &p, nil
}

// GetForUpdate is GetByID; transactions are already serialised.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	if _, err := r.GetByID(ctx, p.ID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, quantity types.Quantity) error {
	if _, err := r.GetByID(ctx, productID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.st.products[productID]
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now().UTC()
	r.s.st.products[productID] = p
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	if _, err := r.GetByID(ctx, productID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.products, productID)
	// Sale lines keep their snapshot, mirroring ON DELETE SET NULL.
	for sid, sale := range r.s.st.sales {
		changed := false
		for i, it := range sale.Items {
			if it.ProductID != nil && *it.ProductID == productID {
				sale.Items[i].ProductID = nil
				changed = true
			}
		}
		if changed {
			r.s.st.sales[sid] = sale
		}
	}
	return nil
}

func (r *ProductRepo) Exists(ctx context.Context, productID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, productID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *ProductRepo) DetachCategory(ctx context.Context, categoryID id.ID) (int64, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for pid, p := range r.s.st.products {
		if p.OwnerID == ownerID && p.CategoryID != nil && *p.CategoryID == categoryID {
			p.CategoryID = nil
			r.s.st.products[pid] = p
			n++
		}
	}
	return n, nil
}

func (r *ProductRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	res, err := r.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*product.Product], error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return domain.ListResult[*product.Product]{}, err
	}
	r.s.mu.RLock()
	items := make([]*product.Product, 0)
	for _, p := range r.s.st.products {
		if p.OwnerID != ownerID {
			continue
		}
		if len(f.IDs) > 0 && !inIDs(p.ID, f.IDs) {
			continue
		}
		if len(f.CategoryIDs) > 0 && (p.CategoryID == nil || !inIDs(*p.CategoryID, f.CategoryIDs)) {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(optional(p.Description), f.Search) {
			continue
		}
		p := p
		items = append(items, &p)
	}
	r.s.mu.RUnlock()

	sortItems(items, f.OrderBy,
		func(a, b *product.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		},
		func(p *product.Product) time.Time { return p.CreatedAt })
	return page(items, f), nil
}

// --- customers ---

// CustomerRepo implements customer.Repository.
type CustomerRepo struct{ s *Store }

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	if _, err := owner(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.st.customers[customerID]
	if !ok || c.OwnerID != ownerID {
		return nil, notFound("customer", customerID)
	}
	return &c, nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.customers[c.ID] = *c
	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, customerID id.ID) error {
	if _, err := r.GetByID(ctx, customerID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.customers, customerID)
	for sid, sale := range r.s.st.sales {
		if sale.CustomerID != nil && *sale.CustomerID == customerID {
			sale.CustomerID = nil
			r.s.st.sales[sid] = sale
		}
	}
	return nil
}

func (r *CustomerRepo) Exists(ctx context.Context, customerID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, customerID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *CustomerRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return domain.ListResult[*customer.Customer]{}, err
	}
	r.s.mu.RLock()
	items := make([]*customer.Customer, 0)
	for _, c := range r.s.st.customers {
		if c.OwnerID != ownerID {
			continue
		}
		if len(f.IDs) > 0 && !inIDs(c.ID, f.IDs) {
			continue
		}
		if f.Search != "" && !containsFold(c.Name, f.Search) &&
			!containsFold(optional(c.Email), f.Search) && !containsFold(optional(c.Phone), f.Search) {
			continue
		}
		c := c
		items = append(items, &c)
	}
	r.s.mu.RUnlock()

	sortItems(items, f.OrderBy,
		func(a, b *customer.Customer) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		},
		func(c *customer.Customer) time.Time { return c.CreatedAt })
	return page(items, f), nil
}

// --- expenses ---

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct{ s *Store }

func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	if _, err := owner(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.expenses[e.ID] = *e
	return nil
}

func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*expense.Expense, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.st.expenses[expenseID]
	if !ok || e.OwnerID != ownerID {
		return nil, notFound("expense", expenseID)
	}
	return &e, nil
}

func (r *ExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	if _, err := r.GetByID(ctx, e.ID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.expenses[e.ID] = *e
	return nil
}

func (r *ExpenseRepo) Delete(ctx context.Context, expenseID id.ID) error {
	if _, err := r.GetByID(ctx, expenseID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.st.expenses, expenseID)
	return nil
}

func (r *ExpenseRepo) Exists(ctx context.Context, expenseID id.ID) (bool, error) {
	_, err := r.GetByID(ctx, expenseID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *ExpenseRepo) filtered(ctx context.Context, f domain.ListFilter) ([]*expense.Expense, error) {
	ownerID, err := owner(ctx)
	if err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	items := make([]*expense.Expense, 0)
	for _, e := range r.s.st.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if len(f.IDs) > 0 && !inIDs(e.ID, f.IDs) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
			continue
		}
		if f.DateFrom != nil && e.Date.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && e.Date.After(*f.DateTo) {
			continue
		}
		if f.Search != "" && !containsFold(e.Description, f.Search) && !containsFold(e.Category, f.Search) {
			continue
		}
		e := e
		items = append(items, &e)
	}
	return items, nil
}

func (r *ExpenseRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*expense.Expense], error) {
	items, err := r.filtered(ctx, f)
	if err != nil {
		return domain.ListResult[*expense.Expense]{}, err
	}
	sortItems(items, f.OrderBy,
		func(a, b *expense.Expense) int { return b.Date.Compare(a.Date) },
		func(e *expense.Expense) time.Time { return e.CreatedAt })
	return page(items, f), nil
}

func (r *ExpenseRepo) SumBetween(ctx context.Context, from, to time.Time) (types.Money, error) {
	items, err := r.filtered(ctx, domain.ListFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return types.Zero(), err
	}
	amounts := make([]types.Money, len(items))
	for i, e := range items {
		amounts[i] = e.Amount
	}
	return types.SumMoney(amounts...), nil
}

var (
	_ category.Repository = (*CategoryRepo)(nil)
	_ product.Repository  = (*ProductRepo)(nil)
	_ customer.Repository = (*CustomerRepo)(nil)
	_ expense.Repository  = (*ExpenseRepo)(nil)
)
