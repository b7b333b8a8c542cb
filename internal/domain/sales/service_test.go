package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/numerator"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/customer"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/sales"
	"gestaopro/internal/infrastructure/storage/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx   context.Context
	store *memory.Store
	svc   *sales.Service
	tags  []string
}

func (f *fixture) Invalidate(_ context.Context, tags ...string) error {
	f.tags = append(f.tags, tags...)
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	f := &fixture{
		ctx:   appctx.WithOwner(context.Background(), id.New()),
		store: store,
	}
	f.svc = sales.NewService(sales.Config{
		Repo:      store.Sales(),
		Stock:     store.Products(),
		Customers: store.Customers(),
		TxManager: store,
		Numerator: numerator.NewMemoryGenerator(),
		Audit:     store.Audit(),
		Invalid:   f,
	})
	return f
}

func (f *fixture) product(t *testing.T, name, price, stock string) *product.Product {
	t.Helper()
	p := product.NewProduct(name, d("0"), d(price), d(stock))
	p.OwnerID, _ = appctx.RequireOwnerID(f.ctx)
	require.NoError(t, f.store.Products().Create(f.ctx, p))
	return p
}

func (f *fixture) stock(t *testing.T, productID id.ID) string {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, productID)
	require.NoError(t, err)
	return p.StockQuantity.String()
}

func item(p *product.Product, qty, price string) sales.ItemInput {
	return sales.ItemInput{ProductID: p.ID, Quantity: d(qty), UnitPrice: d(price)}
}

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Product A", "5.00", "10")

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		SaleDate:      time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Items:         []sales.ItemInput{item(a, "3", "5.00")},
	})
	require.NoError(t, err)
	assert.True(t, sale.TotalAmount.Equal(d("15.00")))
	assert.Equal(t, "7", f.stock(t, a.ID))
	assert.Equal(t, "VND-2026-00001", sale.Number)

	updated, err := f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{
		Items: []sales.ItemInput{item(a, "1", "5.00")},
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(d("5.00")))
	assert.Equal(t, "9", f.stock(t, a.ID))
	require.Len(t, updated.Items, 1)
	assert.True(t, updated.Items[0].Quantity.Equal(d("1")))
}

func TestCreate_TotalIsSumOfRoundedLines(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "100")
	b := f.product(t, "B", "1", "100")

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "card",
		Items: []sales.ItemInput{
			item(a, "0.333", "3.00"),
			item(b, "0.5", "19.99"),
		},
	})
	require.NoError(t, err)

	// 0.333 x 3.00 = 0.999 -> 1.00; 0.5 x 19.99 = 9.995 -> 10.00
	assert.Equal(t, "1", sale.Items[0].Subtotal.String())
	assert.Equal(t, "10", sale.Items[1].Subtotal.String())
	assert.Equal(t, "11", sale.TotalAmount.String())
	assert.Equal(t, "99.5", f.stock(t, b.ID))
}

func TestCreate_InsufficientStockIsAtomic(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Apple", "2", "10")
	b := f.product(t, "Banana", "1", "2")

	_, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items: []sales.ItemInput{
			item(a, "4", "2"),
			item(b, "3", "1"),
		},
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Contains(t, appErr.Message, "Banana")
	assert.Equal(t, "2", appErr.Details["available"])

	assert.Equal(t, "10", f.stock(t, a.ID))
	assert.Equal(t, "2", f.stock(t, b.ID))

	list, err := f.svc.List(f.ctx, domain.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestCreate_DuplicateProductLinesAccumulate(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "5")

	_, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "3", "1"), item(a, "3", "1")},
	})
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 2, appErr.Details["line"])

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "3", "1"), item(a, "2", "1")},
	})
	require.NoError(t, err)
	assert.Len(t, sale.Items, 2)
	assert.Equal(t, "0", f.stock(t, a.ID))
}

func TestCreate_ValidationAndReferences(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "5")
	missing := id.New()

	tests := []struct {
		name string
		in   sales.CreateInput
		code string
	}{
		{"no items", sales.CreateInput{PaymentMethod: "cash"}, apperror.CodeValidation},
		{"no payment method", sales.CreateInput{Items: []sales.ItemInput{item(a, "1", "1")}}, apperror.CodeValidation},
		{"zero quantity", sales.CreateInput{PaymentMethod: "cash", Items: []sales.ItemInput{item(a, "0", "1")}}, apperror.CodeValidation},
		{"negative price", sales.CreateInput{PaymentMethod: "cash", Items: []sales.ItemInput{item(a, "1", "-1")}}, apperror.CodeValidation},
		{"sub-cent price", sales.CreateInput{PaymentMethod: "cash", Items: []sales.ItemInput{item(a, "1", "0.333")}}, apperror.CodeValidation},
		{"quantity past 3 places", sales.CreateInput{PaymentMethod: "cash", Items: []sales.ItemInput{item(a, "0.0005", "1")}}, apperror.CodeValidation},
		{"unknown product", sales.CreateInput{PaymentMethod: "cash", Items: []sales.ItemInput{{ProductID: missing, Quantity: d("1"), UnitPrice: d("1")}}}, apperror.CodeNotFound},
		{"unknown customer", sales.CreateInput{PaymentMethod: "cash", CustomerID: &missing, Items: []sales.ItemInput{item(a, "1", "1")}}, apperror.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, tt.in)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Equal(t, "5", f.stock(t, a.ID))
}

func TestCreate_PrecisionIsCheckedPerLine(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "5")

	_, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "1", "1.10"), item(a, "1", "1.005")},
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, 2, appErr.Details["line"])
	assert.Equal(t, "1.005", appErr.Details["unitPrice"])

	// Trailing zeros past the column scale are not extra precision.
	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "1.5000", "2.500")},
	})
	require.NoError(t, err)
	assert.Equal(t, "3.75", sale.TotalAmount.String())
	assert.Equal(t, "3.5", f.stock(t, a.ID))
}

func TestUpdate_RejectsImpreciseItems(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "5")
	sale, err := f.svc.Create(f.ctx, sales.CreateInput{PaymentMethod: "cash", Items: []sales.ItemInput{item(a, "2", "1")}})
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{Items: []sales.ItemInput{item(a, "1.2345", "1")}})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, "3", f.stock(t, a.ID))
}

func TestCreate_OtherOwnersProductIsNotFound(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "5")

	other := appctx.WithOwner(context.Background(), id.New())
	_, err := f.svc.Create(other, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "1", "1")},
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "2.50", "10")
	c := customer.NewCustomer("Ana")
	c.OwnerID, _ = appctx.RequireOwnerID(f.ctx)
	require.NoError(t, f.store.Customers().Create(f.ctx, c))
	notes := "paid in full"

	created, err := f.svc.Create(f.ctx, sales.CreateInput{
		CustomerID:    &c.ID,
		PaymentMethod: "pix",
		Notes:         &notes,
		SaleDate:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Items:         []sales.ItemInput{item(a, "2", "2.50")},
	})
	require.NoError(t, err)

	got, err := f.svc.GetByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Number, got.Number)
	assert.Equal(t, c.ID, *got.CustomerID)
	assert.Equal(t, "pix", got.PaymentMethod)
	assert.True(t, got.TotalAmount.Equal(d("5")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "A", got.Items[0].ProductName)
	assert.True(t, got.Items[0].UnitPrice.Equal(d("2.50")))
	assert.True(t, got.Items[0].Subtotal.Equal(d("5.00")))
}

func TestUpdate_ReservedQuantityIsAvailable(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "P1", "1", "5")

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(p1, "2", "1")},
	})
	require.NoError(t, err)
	require.Equal(t, "3", f.stock(t, p1.ID))

	updated, err := f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{
		Items: []sales.ItemInput{item(p1, "5", "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "0", f.stock(t, p1.ID))
	assert.True(t, updated.TotalAmount.Equal(d("5")))

	_, err = f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{
		Items: []sales.ItemInput{item(p1, "6", "1")},
	})
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "5", appErr.Details["available"])
	assert.Equal(t, "0", f.stock(t, p1.ID))
}

func TestUpdate_SwapProductRestoresOld(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "10")
	b := f.product(t, "B", "1", "10")

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "4", "1")},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{
		Items: []sales.ItemInput{item(b, "3", "1")},
	})
	require.NoError(t, err)
	assert.Equal(t, "10", f.stock(t, a.ID))
	assert.Equal(t, "7", f.stock(t, b.ID))
}

func TestUpdate_HeaderOnlyKeepsItems(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "10")

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "4", "1.25")},
	})
	require.NoError(t, err)

	method := "card"
	updated, err := f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, "card", updated.PaymentMethod)
	assert.True(t, updated.TotalAmount.Equal(d("5")))
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "6", f.stock(t, a.ID))

	blank := " "
	_, err = f.svc.Update(f.ctx, sale.ID, sales.UpdateInput{PaymentMethod: &blank})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.Update(f.ctx, id.New(), sales.UpdateInput{PaymentMethod: &method})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_RestoresStock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "10")
	b := f.product(t, "B", "1", "10")

	sale, err := f.svc.Create(f.ctx, sales.CreateInput{
		PaymentMethod: "cash",
		Items:         []sales.ItemInput{item(a, "4", "1"), item(b, "1", "1")},
	})
	require.NoError(t, err)

	// A deleted product is skipped on restore.
	require.NoError(t, f.store.Products().Delete(f.ctx, b.ID))

	require.NoError(t, f.svc.Delete(f.ctx, sale.ID))
	assert.Equal(t, "10", f.stock(t, a.ID))

	_, err = f.svc.GetByID(f.ctx, sale.ID)
	assert.True(t, apperror.IsNotFound(err))

	history, err := f.store.Audit().History(f.ctx, "sale", sale.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.EqualValues(t, "delete", history[0].Action)
	assert.Contains(t, f.tags, domain.TagSales)
}

func TestMonthlyTotalAndTopProducts(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", "1", "100")
	b := f.product(t, "B", "1", "100")
	c := f.product(t, "C", "1", "100")

	march := time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)
	april := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	create := func(at time.Time, items ...sales.ItemInput) {
		_, err := f.svc.Create(f.ctx, sales.CreateInput{PaymentMethod: "cash", SaleDate: at, Items: items})
		require.NoError(t, err)
	}
	create(march, item(a, "2", "10"), item(b, "1", "20"))
	create(march, item(c, "1", "5"))
	create(april, item(c, "10", "10"))

	total, err := f.svc.MonthlyTotal(f.ctx, 2026, 3)
	require.NoError(t, err)
	assert.True(t, total.Total.Equal(d("45")))
	assert.EqualValues(t, 2, total.Count)

	top, err := f.svc.TopProducts(f.ctx, 0, nil, nil)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, c.ID, top[0].ProductID)
	assert.True(t, top[0].Quantity.Equal(d("11")))

	// A and B tie at 20.00; the lower id wins.
	first, second := a, b
	if b.ID.String() < a.ID.String() {
		first, second = b, a
	}
	assert.Equal(t, first.ID, top[1].ProductID)
	assert.Equal(t, second.ID, top[2].ProductID)

	from, to, _ := domain.MonthRange(2026, 3)
	marchTop, err := f.svc.TopProducts(f.ctx, 1, &from, &to)
	require.NoError(t, err)
	require.Len(t, marchTop, 1)
	assert.NotEqual(t, c.ID, marchTop[0].ProductID)
}

func TestList_Filters(t *testing.T) {
	f := newFixture(t)
	owner, _ := appctx.RequireOwnerID(f.ctx)
	drinks := category.NewCategory("Drinks", nil)
	drinks.OwnerID = owner
	require.NoError(t, f.store.Categories().Create(f.ctx, drinks))

	juice := f.product(t, "Juice", "3", "10")
	juice.CategoryID = &drinks.ID
	require.NoError(t, f.store.Products().Update(f.ctx, juice))
	bread := f.product(t, "Bread", "2", "10")

	day := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	_, err := f.svc.Create(f.ctx, sales.CreateInput{PaymentMethod: "cash", SaleDate: day, Items: []sales.ItemInput{item(juice, "1", "3")}})
	require.NoError(t, err)
	_, err = f.svc.Create(f.ctx, sales.CreateInput{PaymentMethod: "card", SaleDate: day.AddDate(0, 0, 5), Items: []sales.ItemInput{item(bread, "1", "2")}})
	require.NoError(t, err)

	count := func(filter domain.ListFilter) int64 {
		t.Helper()
		filter.Limit = 10
		res, err := f.svc.List(f.ctx, filter)
		require.NoError(t, err)
		return res.TotalCount
	}
	until := day.AddDate(0, 0, 1)
	assert.EqualValues(t, 2, count(domain.ListFilter{}))
	assert.EqualValues(t, 1, count(domain.ListFilter{CategoryIDs: []id.ID{drinks.ID}}))
	assert.EqualValues(t, 1, count(domain.ListFilter{ProductIDs: []id.ID{bread.ID}}))
	assert.EqualValues(t, 1, count(domain.ListFilter{DateTo: &until}))
	assert.EqualValues(t, 1, count(domain.ListFilter{Search: "card"}))
	assert.EqualValues(t, 1, count(domain.ListFilter{Search: "juice"}))

	_, err = f.svc.List(f.ctx, domain.ListFilter{DateFrom: &until, DateTo: &day})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
