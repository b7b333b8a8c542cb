// Package product provides the product catalog with stock tracking.
package product

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/entity"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
)

// DefaultMinStock is the low-stock threshold of products created without one.
var DefaultMinStock = decimal.NewFromInt(5)

// MaxNameLength is the maximum product name length in characters.
const MaxNameLength = 200

// Product is a sellable item with prices and on-hand stock.
type Product struct {
	entity.BaseEntity

	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`

	// CategoryID is nil for uncategorized products
	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	CostPrice types.Money `db:"cost_price" json:"costPrice"`
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// StockQuantity may be fractional (e.g. 0.5 kg)
	StockQuantity types.Quantity `db:"stock_quantity" json:"stockQuantity"`

	// MinStock is the threshold used by the low-stock rule
	MinStock types.Quantity `db:"min_stock" json:"minStock"`
}

// NewProduct creates a new Product with the default minimum stock.
func NewProduct(name string, costPrice, salePrice types.Money, stock types.Quantity) *Product {
	return &Product{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          strings.TrimSpace(name),
		CostPrice:     costPrice,
		SalePrice:     salePrice,
		StockQuantity: stock,
		MinStock:      DefaultMinStock,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(_ context.Context) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperror.NewFieldValidation("name", "name is required")
	}
	if utf8.RuneCountInString(p.Name) > MaxNameLength {
		return apperror.NewFieldValidation("name", "name must be at most 200 characters")
	}

	if p.CostPrice.IsNegative() {
		return apperror.NewFieldValidation("costPrice", "cost price cannot be negative")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewFieldValidation("salePrice", "sale price cannot be negative")
	}
	if !types.IsMoneyPrecise(p.CostPrice) {
		return apperror.NewFieldValidation("costPrice", "cost price allows at most 2 decimal places")
	}
	if !types.IsMoneyPrecise(p.SalePrice) {
		return apperror.NewFieldValidation("salePrice", "sale price allows at most 2 decimal places")
	}
	if p.SalePrice.LessThan(p.CostPrice) {
		return apperror.NewFieldValidation("salePrice", "sale price must not be lower than cost price").
			WithDetail("costPrice", p.CostPrice.String()).
			WithDetail("salePrice", p.SalePrice.String())
	}

	if p.StockQuantity.IsNegative() {
		return apperror.NewFieldValidation("stockQuantity", "stock quantity cannot be negative")
	}
	if !types.IsQuantityPrecise(p.StockQuantity) {
		return apperror.NewFieldValidation("stockQuantity", "stock quantity allows at most 3 decimal places")
	}
	if p.MinStock.IsNegative() {
		return apperror.NewFieldValidation("minStock", "minimum stock cannot be negative")
	}
	if !types.IsQuantityPrecise(p.MinStock) {
		return apperror.NewFieldValidation("minStock", "minimum stock allows at most 3 decimal places")
	}

	if p.CategoryID != nil && id.IsNil(*p.CategoryID) {
		p.CategoryID = nil
	}
	return nil
}

// Margin returns sale price minus cost price.
func (p *Product) Margin() types.Money {
	return p.SalePrice.Sub(p.CostPrice)
}
