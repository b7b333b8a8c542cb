// Package reports builds the dashboard from sales, expenses and products.
package reports

import (
	"time"

	"gestaopro/internal/core/types"
	"gestaopro/internal/domain/catalogs/product"
	"gestaopro/internal/domain/sales"
)

// DailyPoint is the sales total of one calendar day.
type DailyPoint struct {
	Day   time.Time   `db:"day" json:"day"`
	Total types.Money `db:"total" json:"total"`
	Count int64       `db:"count" json:"count"`
}

// CategoryAmount is the expense total of one free-text category.
type CategoryAmount struct {
	Category string      `db:"category" json:"category"`
	Total    types.Money `db:"total" json:"total"`
}

// Dashboard is the monthly overview.
type Dashboard struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	SalesTotal    types.Money `json:"salesTotal"`
	SalesCount    int64       `json:"salesCount"`
	ExpensesTotal types.Money `json:"expensesTotal"`

	// NetResult is SalesTotal minus ExpensesTotal
	NetResult types.Money `json:"netResult"`

	TopProducts        []sales.TopProduct `json:"topProducts"`
	LowStock           []*product.Product `json:"lowStock"`
	DailySales         []DailyPoint       `json:"dailySales"`
	ExpensesByCategory []CategoryAmount   `json:"expensesByCategory"`

	GeneratedAt time.Time `json:"generatedAt"`
}
