// Package sales implements the sale transaction workflow:
// creating, updating and deleting sales while keeping product stock consistent.
package sales

import (
	"context"
	"strings"
	"time"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/entity"
	"gestaopro/internal/core/id"
	"gestaopro/internal/core/types"
)

// NumberPrefix prefixes human-readable sale numbers (VND-2026-00001).
const NumberPrefix = "VND"

// Sale is the sale header with its line items.
type Sale struct {
	entity.BaseEntity

	// Number is assigned on create, sequential per owner and year
	Number string `db:"number" json:"number"`

	// CustomerID is nil for walk-in sales or after the customer was deleted
	CustomerID *id.ID `db:"customer_id" json:"customerId,omitempty"`

	PaymentMethod string    `db:"payment_method" json:"paymentMethod"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	SaleDate      time.Time `db:"sale_date" json:"saleDate"`

	// TotalAmount is always the sum of item subtotals
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`

	Items []SaleItem `db:"-" json:"items"`
}

// SaleItem is a line of a sale. ProductName and UnitPrice are snapshots
// taken when the line was written.
type SaleItem struct {
	ID     id.ID `db:"id" json:"id"`
	SaleID id.ID `db:"sale_id" json:"saleId"`

	// ProductID becomes nil when the product is deleted
	ProductID   *id.ID `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal  types.Money    `db:"subtotal" json:"subtotal"`

	LineNo int `db:"line_no" json:"lineNo"`
}

// ItemInput is a requested line.
type ItemInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitPrice types.Money
}

// CreateInput carries the fields of a new sale.
// TotalAmount from clients is ignored; the total is derived from the items.
type CreateInput struct {
	CustomerID    *id.ID
	PaymentMethod string
	Notes         *string
	SaleDate      time.Time
	Items         []ItemInput
}

// UpdateInput is a partial patch. Nil fields are left unchanged.
// A non-nil Items replaces every line of the sale.
type UpdateInput struct {
	CustomerID    *id.ID
	ClearCustomer bool
	PaymentMethod *string
	Notes         *string
	SaleDate      *time.Time
	Items         []ItemInput
}

// TopProduct is an entry of the best sellers ranking.
type TopProduct struct {
	ProductID   id.ID          `db:"product_id" json:"productId"`
	ProductName string         `db:"product_name" json:"productName"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Revenue     types.Money    `db:"revenue" json:"revenue"`
}

// Validate implements entity.Validatable interface.
// Items are validated separately by validateItems.
func (s *Sale) Validate(_ context.Context) error {
	s.PaymentMethod = strings.TrimSpace(s.PaymentMethod)
	if s.PaymentMethod == "" {
		return apperror.NewFieldValidation("paymentMethod", "payment method is required")
	}
	if s.SaleDate.IsZero() {
		return apperror.NewFieldValidation("saleDate", "sale date is required")
	}
	if s.Notes != nil && strings.TrimSpace(*s.Notes) == "" {
		s.Notes = nil
	}
	if s.CustomerID != nil && id.IsNil(*s.CustomerID) {
		s.CustomerID = nil
	}
	return nil
}

func validateItems(items []ItemInput) error {
	if len(items) == 0 {
		return apperror.NewFieldValidation("items", "at least one item is required")
	}
	for i, it := range items {
		if id.IsNil(it.ProductID) {
			return apperror.NewFieldValidation("items", "product is required").WithDetail("line", i+1)
		}
		if !it.Quantity.IsPositive() {
			return apperror.NewFieldValidation("items", "quantity must be greater than zero").WithDetail("line", i+1)
		}
		if !types.IsQuantityPrecise(it.Quantity) {
			return apperror.NewFieldValidation("items", "quantity allows at most 3 decimal places").
				WithDetail("line", i+1).
				WithDetail("quantity", it.Quantity.String())
		}
		if it.UnitPrice.IsNegative() {
			return apperror.NewFieldValidation("items", "unit price cannot be negative").WithDetail("line", i+1)
		}
		if !types.IsMoneyPrecise(it.UnitPrice) {
			return apperror.NewFieldValidation("items", "unit price allows at most 2 decimal places").
				WithDetail("line", i+1).
				WithDetail("unitPrice", it.UnitPrice.String())
		}
	}
	return nil
}

// Total sums item subtotals rounded to currency precision.
func Total(items []SaleItem) types.Money {
	subtotals := make([]types.Money, len(items))
	for i, it := range items {
		subtotals[i] = it.Subtotal
	}
	return types.SumMoney(subtotals...)
}

func newBase(ownerID id.ID, now time.Time) entity.BaseEntity {
	b := entity.NewBaseEntity()
	b.OwnerID = ownerID
	b.CreatedAt = now
	b.UpdatedAt = now
	return b
}
