package catalog_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/types"
	"gestaopro/internal/domain"
	"gestaopro/internal/domain/expense"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	*BaseCatalogRepo[*expense.Expense]
}

var _ expense.Repository = (*ExpenseRepo)(nil)

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txm *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		BaseCatalogRepo: newBaseCatalogRepo(txm, tableSpec{
			table:      "expenses",
			entity:     "expense",
			searchCols: []string{"description", "category"},
			sortable: map[string]string{
				"date":   "expense_date",
				"amount": "amount",
			},
			defaultOrder: "expense_date DESC",
		}, postgres.ExtractDBColumns[expense.Expense](), func() *expense.Expense { return &expense.Expense{} }),
	}
}

// List adds the category and date filters to the common ones.
func (r *ExpenseRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*expense.Expense], error) {
	return r.list(ctx, filter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		return expenseFilter(q, filter)
	})
}

func expenseFilter(q squirrel.SelectBuilder, filter domain.ListFilter) squirrel.SelectBuilder {
	if c := strings.TrimSpace(filter.Category); c != "" {
		q = q.Where(squirrel.Expr("lower(category) = lower(?)", c))
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"expense_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"expense_date": *filter.DateTo})
	}
	return q
}

// SumBetween totals amounts with expense_date in [from, to].
func (r *ExpenseRepo) SumBetween(ctx context.Context, from, to time.Time) (types.Money, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return types.Zero(), err
	}
	sql, args, err := Builder().
		Select("COALESCE(SUM(amount), 0)").
		From("expenses").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"expense_date": from}).
		Where(squirrel.LtOrEq{"expense_date": to}).
		ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build sum: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sum expenses: %w", err)
	}
	return types.RoundMoney(total), nil
}
