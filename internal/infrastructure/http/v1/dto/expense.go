package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"gestaopro/internal/domain/expense"
)

// CreateExpenseRequest is the request body for creating an expense.
type CreateExpenseRequest struct {
	Description      string                    `json:"description" binding:"required"`
	Amount           decimal.Decimal           `json:"amount"`
	Category         string                    `json:"category"`
	Date             Date                      `json:"date"`
	IsRecurring      bool                      `json:"isRecurring"`
	RecurrencePeriod *expense.RecurrencePeriod `json:"recurrencePeriod"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateExpenseRequest) ToEntity() *expense.Expense {
	e := expense.NewExpense(r.Description, r.Amount, r.Category, r.Date.Time)
	e.IsRecurring = r.IsRecurring
	e.RecurrencePeriod = r.RecurrencePeriod
	return e
}

// UpdateExpenseRequest is a partial update.
type UpdateExpenseRequest struct {
	Description      *string                            `json:"description"`
	Amount           *decimal.Decimal                   `json:"amount"`
	Category         *string                            `json:"category"`
	Date             *Date                              `json:"date"`
	IsRecurring      *bool                              `json:"isRecurring"`
	RecurrencePeriod Nullable[expense.RecurrencePeriod] `json:"recurrencePeriod"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateExpenseRequest) ApplyTo(e *expense.Expense) {
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Amount != nil {
		e.Amount = *r.Amount
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.Date != nil {
		e.Date = r.Date.Time
	}
	if r.IsRecurring != nil {
		e.IsRecurring = *r.IsRecurring
	}
	if r.RecurrencePeriod.Set {
		e.RecurrencePeriod = r.RecurrencePeriod.Value
	}
}

// ExpenseResponse is the response body for an expense.
type ExpenseResponse struct {
	ID               string                    `json:"id"`
	Description      string                    `json:"description"`
	Amount           decimal.Decimal           `json:"amount"`
	Category         string                    `json:"category"`
	Date             time.Time                 `json:"date"`
	IsRecurring      bool                      `json:"isRecurring"`
	RecurrencePeriod *expense.RecurrencePeriod `json:"recurrencePeriod,omitempty"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

// FromExpense creates response DTO from domain entity.
func FromExpense(e *expense.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:               e.ID.String(),
		Description:      e.Description,
		Amount:           e.Amount,
		Category:         e.Category,
		Date:             e.Date,
		IsRecurring:      e.IsRecurring,
		RecurrencePeriod: e.RecurrencePeriod,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
