// Package expense provides expense records with optional recurrence.
package expense

import (
	"context"
	"strings"
	"time"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/entity"
	"gestaopro/internal/core/types"
)

// RecurrencePeriod is how often a recurring expense repeats.
type RecurrencePeriod string

const (
	PeriodDaily   RecurrencePeriod = "daily"
	PeriodWeekly  RecurrencePeriod = "weekly"
	PeriodMonthly RecurrencePeriod = "monthly"
	PeriodYearly  RecurrencePeriod = "yearly"
)

// IsValid reports whether p is one of the known periods.
func (p RecurrencePeriod) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Expense is money spent by the business.
type Expense struct {
	entity.BaseEntity

	Description string      `db:"description" json:"description"`
	Amount      types.Money `db:"amount" json:"amount"`

	// Category is free text, not a reference to the product taxonomy
	Category string    `db:"category" json:"category"`
	Date     time.Time `db:"expense_date" json:"date"`

	IsRecurring      bool              `db:"is_recurring" json:"isRecurring"`
	RecurrencePeriod *RecurrencePeriod `db:"recurrence_period" json:"recurrencePeriod,omitempty"`
}

// NewExpense creates a new one-off Expense.
func NewExpense(description string, amount types.Money, category string, date time.Time) *Expense {
	return &Expense{
		BaseEntity:  entity.NewBaseEntity(),
		Description: description,
		Amount:      amount,
		Category:    category,
		Date:        date,
	}
}

// Validate implements entity.Validatable interface.
func (e *Expense) Validate(_ context.Context) error {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)

	if e.Description == "" {
		return apperror.NewFieldValidation("description", "description is required")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewFieldValidation("amount", "amount must be greater than zero")
	}
	if e.Date.IsZero() {
		return apperror.NewFieldValidation("date", "date is required")
	}
	e.Amount = types.RoundMoney(e.Amount)

	if !e.IsRecurring {
		e.RecurrencePeriod = nil
		return nil
	}

	if e.RecurrencePeriod == nil || strings.TrimSpace(string(*e.RecurrencePeriod)) == "" {
		return apperror.NewRecurrencePeriodRequired()
	}
	period := RecurrencePeriod(strings.ToLower(strings.TrimSpace(string(*e.RecurrencePeriod))))
	if !period.IsValid() {
		return apperror.NewFieldValidation("recurrencePeriod", "recurrence period must be one of daily, weekly, monthly, yearly").
			WithDetail("value", string(period))
	}
	e.RecurrencePeriod = &period
	return nil
}
