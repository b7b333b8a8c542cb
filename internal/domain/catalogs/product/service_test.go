package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/infrastructure/storage/memory"
	"gestaopro/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recordingInvalidator struct{ tags []string }

func (r *recordingInvalidator) Invalidate(_ context.Context, tags ...string) error {
	r.tags = append(r.tags, tags...)
	return nil
}

func setup(t *testing.T, rule string) (context.Context, *memory.Store, *product.Service, *recordingInvalidator) {
	t.Helper()
	store := memory.New()
	inv := &recordingInvalidator{}
	svc := product.NewService(store.Products(), store, store.Categories(), product.MustCompileLowStockRule(rule), inv)
	return appctx.WithOwner(context.Background(), id.New()), store, svc, inv
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(p *product.Product)
		field string
	}{
		{"valid", func(*product.Product) {}, ""},
		{"blank name", func(p *product.Product) { p.Name = " " }, "name"},
		{"negative cost", func(p *product.Product) { p.CostPrice = d("-1") }, "costPrice"},
		{"sale below cost", func(p *product.Product) { p.SalePrice = d("1.99") }, "salePrice"},
		{"negative stock", func(p *product.Product) { p.StockQuantity = d("-0.5") }, "stockQuantity"},
		{"negative min stock", func(p *product.Product) { p.MinStock = d("-1") }, "minStock"},
		{"sale equals cost", func(p *product.Product) { p.SalePrice = d("2") }, ""},
		{"fractional stock", func(p *product.Product) { p.StockQuantity = d("0.25") }, ""},
		{"sub-cent cost", func(p *product.Product) { p.CostPrice = d("1.999") }, "costPrice"},
		{"sub-cent sale price", func(p *product.Product) { p.SalePrice = d("5.001") }, "salePrice"},
		{"stock past 3 places", func(p *product.Product) { p.StockQuantity = d("0.0001") }, "stockQuantity"},
		{"min stock past 3 places", func(p *product.Product) { p.MinStock = d("1.2345") }, "minStock"},
		{"trailing zeros", func(p *product.Product) { p.SalePrice = d("5.0000"); p.StockQuantity = d("1.50000") }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := product.NewProduct("Coffee", d("2"), d("5"), d("10"))
			tt.edit(p)
			err := p.Validate(context.Background())
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestNewProduct_DefaultMinStock(t *testing.T) {
	p := product.NewProduct("Tea", d("1"), d("2"), d("0"))
	assert.True(t, p.MinStock.Equal(product.DefaultMinStock))
}

func TestCreate_UnknownCategory(t *testing.T) {
	ctx, _, svc, _ := setup(t, "")
	p := product.NewProduct("Tea", d("1"), d("2"), d("3"))
	missing := id.New()
	p.CategoryID = &missing

	err := svc.Create(ctx, p)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_WithCategoryAndInvalidation(t *testing.T) {
	ctx, store, svc, inv := setup(t, "")
	c := category.NewCategory("Drinks", nil)
	require.NoError(t, store.Categories().Create(ctx, c))

	p := product.NewProduct("Juice", d("1"), d("3"), d("4"))
	p.CategoryID = &c.ID
	require.NoError(t, svc.Create(ctx, p))

	assert.Contains(t, inv.tags, domain.TagProducts)

	res, err := svc.List(ctx, domain.ListFilter{CategoryIDs: []id.ID{c.ID}, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Juice", res.Items[0].Name)
}

func TestAdjustStock(t *testing.T) {
	ctx, _, svc, _ := setup(t, "")
	p := product.NewProduct("Rice", d("1"), d("2"), d("3"))
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.AdjustStock(ctx, p.ID, d("1.5"))
	require.NoError(t, err)
	assert.Equal(t, "4.5", got.StockQuantity.String())

	_, err = svc.AdjustStock(ctx, p.ID, d("-5"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	_, err = svc.AdjustStock(ctx, p.ID, d("0.0001"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	again, err := svc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "4.5", again.StockQuantity.String())
}

func TestSetStock(t *testing.T) {
	ctx, _, svc, _ := setup(t, "")
	p := product.NewProduct("Rice", d("1"), d("2"), d("3"))
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.SetStock(ctx, p.ID, d("12"))
	require.NoError(t, err)
	assert.Equal(t, "12", got.StockQuantity.String())

	_, err = svc.SetStock(ctx, p.ID, d("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.SetStock(ctx, p.ID, d("2.0005"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.SetStock(ctx, id.New(), d("1"))
	assert.True(t, apperror.IsNotFound(err))
}

func TestLowStock_DefaultRule(t *testing.T) {
	ctx, _, svc, _ := setup(t, "")
	low := product.NewProduct("Low", d("1"), d("2"), d("5"))
	ok := product.NewProduct("Ok", d("1"), d("2"), d("6"))
	custom := product.NewProduct("Custom", d("1"), d("2"), d("8"))
	custom.MinStock = d("10")
	for _, p := range []*product.Product{low, ok, custom} {
		require.NoError(t, svc.Create(ctx, p))
	}

	got, err := svc.LowStock(ctx)
	require.NoError(t, err)
	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Custom", "Low"}, names)
}

func TestLowStock_CustomRule(t *testing.T) {
	ctx, _, svc, _ := setup(t, "stock <= 0.0")
	require.NoError(t, svc.Create(ctx, product.NewProduct("Empty", d("1"), d("2"), d("0"))))
	require.NoError(t, svc.Create(ctx, product.NewProduct("Some", d("1"), d("2"), d("1"))))

	got, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Empty", got[0].Name)
}

func TestCompileLowStockRule_Errors(t *testing.T) {
	_, err := product.CompileLowStockRule("stock +")
	assert.Error(t, err)

	_, err = product.CompileLowStockRule("stock + 1.0")
	assert.Error(t, err, "non-bool rule must be rejected")

	r, err := product.CompileLowStockRule("")
	require.NoError(t, err)
	assert.Equal(t, product.DefaultLowStockRule, r.String())
}

type failingInvalidator struct{ calls int }

func (f *failingInvalidator) Invalidate(context.Context, ...string) error {
	f.calls++
	return errors.New("redis down")
}

func TestStockChange_InvalidationFailureIsLoggedNotReturned(t *testing.T) {
	store := memory.New()
	inv := &failingInvalidator{}
	svc := product.NewService(store.Products(), store, store.Categories(), nil, inv)

	core, logs := observer.New(zap.WarnLevel)
	ctx := logger.WithLogger(appctx.WithOwner(context.Background(), id.New()), &logger.Logger{SugaredLogger: zap.New(core).Sugar()})

	p := product.NewProduct("Rice", d("1"), d("2"), d("3"))
	require.NoError(t, svc.Create(ctx, p))

	got, err := svc.AdjustStock(ctx, p.ID, d("2"))
	require.NoError(t, err)
	assert.Equal(t, "5", got.StockQuantity.String())
	assert.Equal(t, 2, inv.calls)

	entries := logs.FilterMessage("report cache invalidation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "redis down", entries[0].ContextMap()["error"])
	assert.Equal(t, p.ID.String(), entries[0].ContextMap()["product_id"])
}
