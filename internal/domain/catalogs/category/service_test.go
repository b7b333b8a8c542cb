package category_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestaopro/internal/core/apperror"
	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/catalogs/category"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/infrastructure/storage/memory"
)

func setup(t *testing.T) (context.Context, *memory.Store, *category.Service) {
	t.Helper()
	store := memory.New()
	svc := category.NewService(store.Categories(), store, store.Products(), domain.NoopInvalidator{})
	return appctx.WithOwner(context.Background(), id.New()), store, svc
}

func TestCreate_DuplicateNameIgnoresCase(t *testing.T) {
	ctx, _, svc := setup(t)

	require.NoError(t, svc.Create(ctx, category.NewCategory("Drinks", nil)))

	err := svc.Create(ctx, category.NewCategory("  drinks ", nil))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "category already exists", appErr.Message)
}

func TestCreate_SameNameDifferentOwners(t *testing.T) {
	_, store, svc := setup(t)
	ownerA := appctx.WithOwner(context.Background(), id.New())
	ownerB := appctx.WithOwner(context.Background(), id.New())

	require.NoError(t, svc.Create(ownerA, category.NewCategory("Food", nil)))
	require.NoError(t, svc.Create(ownerB, category.NewCategory("FOOD", nil)))

	res, err := store.Categories().List(ownerA, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
}

func TestUpdate_RenameToExistingNameRejected(t *testing.T) {
	ctx, _, svc := setup(t)
	a := category.NewCategory("Food", nil)
	b := category.NewCategory("Drinks", nil)
	require.NoError(t, svc.Create(ctx, a))
	require.NoError(t, svc.Create(ctx, b))

	b.Name = "FOOD"
	err := svc.Update(ctx, b)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	// Renaming to its own name with a different case is allowed.
	a.Name = "food"
	assert.NoError(t, svc.Update(ctx, a))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ok", "Snacks", false},
		{"blank", "   ", true},
		{"max length", strings.Repeat("é", category.MaxNameLength), false},
		{"too long", strings.Repeat("x", category.MaxNameLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := category.NewCategory(tt.input, nil).Validate(context.Background())
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestDelete_DetachesProducts(t *testing.T) {
	ctx, store, svc := setup(t)
	c := category.NewCategory("Bakery", nil)
	require.NoError(t, svc.Create(ctx, c))

	products := product.NewService(store.Products(), store, store.Categories(), nil, nil)
	p := product.NewProduct("Bread", decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.NewFromInt(10))
	p.CategoryID = &c.ID
	require.NoError(t, products.Create(ctx, p))

	require.NoError(t, svc.Delete(ctx, c.ID))

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Equal(t, "Bread", got.Name)
	assert.True(t, got.StockQuantity.Equal(decimal.NewFromInt(10)))
}

func TestBulkDelete_IsAtomic(t *testing.T) {
	ctx, store, svc := setup(t)
	a := category.NewCategory("A", nil)
	require.NoError(t, svc.Create(ctx, a))

	_, err := svc.BulkDelete(ctx, []id.ID{a.ID, id.New()})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	ok, err := store.Categories().Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok, "first delete must be rolled back")
}

func TestSearch(t *testing.T) {
	ctx, _, svc := setup(t)
	for _, n := range []string{"Cleaning", "Clothes", "Food"} {
		require.NoError(t, svc.Create(ctx, category.NewCategory(n, nil)))
	}

	found, err := svc.Search(ctx, "cl", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Cleaning", found[0].Name)
	assert.Equal(t, "Clothes", found[1].Name)
}

func TestRequiresOwner(t *testing.T) {
	_, _, svc := setup(t)
	err := svc.Create(context.Background(), category.NewCategory("X", nil))
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}
