package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/audit"
	"gestaopro/internal/domain/sales"
)

// SaleItemRequest is a requested sale line.
type SaleItemRequest struct {
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func toItemInputs(items []SaleItemRequest) ([]sales.ItemInput, error) {
	out := make([]sales.ItemInput, len(items))
	for i, it := range items {
		pid, err := id.Parse(it.ProductID)
		if err != nil {
			return nil, apperror.NewFieldValidation("items", "invalid product id").WithDetail("line", i+1)
		}
		out[i] = sales.ItemInput{ProductID: pid, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return out, nil
}

// CreateSaleRequest is the request body for creating a sale.
// TotalAmount is accepted for compatibility; the stored total is derived from the items.
type CreateSaleRequest struct {
	CustomerID    *string           `json:"customerId" binding:"omitempty,uuid"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Notes         *string           `json:"notes"`
	SaleDate      Date              `json:"saleDate"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	TotalAmount   *decimal.Decimal  `json:"totalAmount"`
}

// ToInput converts DTO to the domain input.
func (r *CreateSaleRequest) ToInput() (sales.CreateInput, error) {
	items, err := toItemInputs(r.Items)
	if err != nil {
		return sales.CreateInput{}, err
	}
	return sales.CreateInput{
		CustomerID:    parseOptionalID(r.CustomerID),
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
		SaleDate:      r.SaleDate.Time,
		Items:         items,
	}, nil
}

// UpdateSaleRequest is a partial update. Items, when present, replace every line.
type UpdateSaleRequest struct {
	CustomerID    Nullable[string]  `json:"customerId"`
	PaymentMethod *string           `json:"paymentMethod"`
	Notes         *string           `json:"notes"`
	SaleDate      *Date             `json:"saleDate"`
	Items         []SaleItemRequest `json:"items" binding:"omitempty,dive"`
	TotalAmount   *decimal.Decimal  `json:"totalAmount"`
}

// ToInput converts DTO to the domain patch.
func (r *UpdateSaleRequest) ToInput() (sales.UpdateInput, error) {
	in := sales.UpdateInput{
		PaymentMethod: r.PaymentMethod,
		Notes:         r.Notes,
	}
	if r.CustomerID.Set {
		if r.CustomerID.Value == nil || *r.CustomerID.Value == "" {
			in.ClearCustomer = true
		} else {
			cid, err := id.Parse(*r.CustomerID.Value)
			if err != nil {
				return in, apperror.NewFieldValidation("customerId", "invalid customer id")
			}
			in.CustomerID = &cid
		}
	}
	if r.SaleDate != nil {
		t := r.SaleDate.Time
		in.SaleDate = &t
	}
	if r.Items != nil {
		items, err := toItemInputs(r.Items)
		if err != nil {
			return in, err
		}
		in.Items = items
	}
	return in, nil
}

// SaleItemResponse is one line of a sale.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse is the response body for a sale.
type SaleResponse struct {
	ID            string             `json:"id"`
	Number        string             `json:"number"`
	CustomerID    *string            `json:"customerId,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	Notes         *string            `json:"notes,omitempty"`
	SaleDate      time.Time          `json:"saleDate"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// FromSale creates response DTO from domain entity.
func FromSale(s *sales.Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:            s.ID.String(),
		Number:        s.Number,
		PaymentMethod: s.PaymentMethod,
		Notes:         s.Notes,
		SaleDate:      s.SaleDate,
		TotalAmount:   s.TotalAmount,
		Items:         make([]SaleItemResponse, len(s.Items)),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.CustomerID != nil {
		cid := s.CustomerID.String()
		resp.CustomerID = &cid
	}
	for i, it := range s.Items {
		item := SaleItemResponse{
			ID:          it.ID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
		if it.ProductID != nil {
			pid := it.ProductID.String()
			item.ProductID = &pid
		}
		resp.Items[i] = item
	}
	return resp
}

// SaleListRequest holds the sale list query parameters.
// Categories and products are comma-separated id lists.
type SaleListRequest struct {
	PaginationRequest
	Search     string `form:"search"`
	Categories string `form:"categories"`
	Products   string `form:"products"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
	OrderBy    string `form:"orderBy"`
}

// MonthRequest selects a calendar month.
type MonthRequest struct {
	Year  int `form:"year" binding:"required"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// TopProductsRequest holds the best sellers query parameters.
type TopProductsRequest struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=50"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// AuditEntryResponse is one change of a record.
type AuditEntryResponse struct {
	Action    audit.Action `json:"action"`
	UserID    string       `json:"userId"`
	Changes   any          `json:"changes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// FromAuditEntries maps the audit history.
func FromAuditEntries(entries []audit.Entry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			Action:    e.Action,
			UserID:    e.UserID,
			CreatedAt: e.CreatedAt,
		}
		if len(e.Changes) > 0 {
			out[i].Changes = e.Changes
		}
	}
	return out
}
