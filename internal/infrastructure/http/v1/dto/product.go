package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,max=200"`
	Description   *string          `json:"description"`
	CategoryID    *string          `json:"categoryId" binding:"omitempty,uuid"`
	CostPrice     decimal.Decimal  `json:"costPrice"`
	SalePrice     decimal.Decimal  `json:"salePrice"`
	StockQuantity decimal.Decimal  `json:"stockQuantity"`
	MinStock      *decimal.Decimal `json:"minStock"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Name, r.CostPrice, r.SalePrice, r.StockQuantity)
	p.Description = r.Description
	p.CategoryID = parseOptionalID(r.CategoryID)
	if r.MinStock != nil {
		p.MinStock = *r.MinStock
	}
	return p
}

// UpdateProductRequest is a partial update. Stock changes go through the stock endpoint.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=200"`
	Description Nullable[string] `json:"description"`
	CategoryID  Nullable[string] `json:"categoryId"`
	CostPrice   *decimal.Decimal `json:"costPrice"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	MinStock    *decimal.Decimal `json:"minStock"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Description.Set {
		p.Description = r.Description.Value
	}
	if r.CategoryID.Set {
		p.CategoryID = parseOptionalID(r.CategoryID.Value)
	}
	if r.CostPrice != nil {
		p.CostPrice = *r.CostPrice
	}
	if r.SalePrice != nil {
		p.SalePrice = *r.SalePrice
	}
	if r.MinStock != nil {
		p.MinStock = *r.MinStock
	}
}

// StockRequest either adjusts stock by Delta or sets it to Quantity.
type StockRequest struct {
	Delta    *decimal.Decimal `json:"delta"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// Validate requires exactly one of the fields.
func (r *StockRequest) Validate() error {
	if (r.Delta == nil) == (r.Quantity == nil) {
		return apperror.NewValidation("exactly one of delta or quantity is required")
	}
	return nil
}

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	CategoryID    *string         `json:"categoryId,omitempty"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	Margin        decimal.Decimal `json:"margin"`
	StockQuantity decimal.Decimal `json:"stockQuantity"`
	MinStock      decimal.Decimal `json:"minStock"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		CostPrice:     p.CostPrice,
		SalePrice:     p.SalePrice,
		Margin:        p.Margin(),
		StockQuantity: p.StockQuantity,
		MinStock:      p.MinStock,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.CategoryID != nil {
		s := p.CategoryID.String()
		resp.CategoryID = &s
	}
	return resp
}

// FromProducts maps a slice of products.
func FromProducts(items []*product.Product) []*ProductResponse {
	out := make([]*ProductResponse, len(items))
	for i, p := range items {
		out[i] = FromProduct(p)
	}
	return out
}

// parseOptionalID ignores values rejected by the uuid binding rule.
func parseOptionalID(s *string) *id.ID {
	if s == nil || *s == "" {
		return nil
	}
	parsed, err := id.Parse(*s)
	if err != nil {
		return nil
	}
	return id.Ptr(parsed)
}
