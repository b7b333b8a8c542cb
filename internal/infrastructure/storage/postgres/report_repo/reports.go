// Package report_repo provides the PostgreSQL aggregations behind the dashboard.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	appctx "gestaopro/internal/core/context"
	"gestaopro/internal/core/id"
	"gestaopro/internal/domain/reports"
	"gestaopro/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// DailySales groups sales by UTC calendar day.
func (r *ReportRepo) DailySales(ctx context.Context, from, to time.Time) ([]reports.DailyPoint, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	sql, args, err := r.dailySalesQuery(ownerID, from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily sales: %w", err)
	}

	out := make([]reports.DailyPoint, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("daily sales: %w", err)
	}
	for i := range out {
		out[i].Day = out[i].Day.UTC()
	}
	return out, nil
}

func (r *ReportRepo) dailySalesQuery(ownerID id.ID, from, to time.Time) squirrel.SelectBuilder {
	day := "date_trunc('day', sale_date AT TIME ZONE 'UTC') AT TIME ZONE 'UTC'"
	return r.builder.
		Select(
			day+" AS day",
			"SUM(total_amount) AS total",
			"COUNT(*) AS count",
		).
		From("sales").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"sale_date": from}).
		Where(squirrel.LtOrEq{"sale_date": to}).
		GroupBy("1").
		OrderBy("1 ASC")
}

// ExpensesByCategory merges categories that differ only in case.
// The spelling shown is the alphabetically first one.
func (r *ReportRepo) ExpensesByCategory(ctx context.Context, from, to time.Time) ([]reports.CategoryAmount, error) {
	ownerID, err := appctx.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	sql, args, err := r.expensesByCategoryQuery(ownerID, from, to).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expenses by category: %w", err)
	}

	out := make([]reports.CategoryAmount, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) expensesByCategoryQuery(ownerID id.ID, from, to time.Time) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"MIN(category) AS category",
			"SUM(amount) AS total",
		).
		From("expenses").
		Where(squirrel.Eq{"owner_id": ownerID}).
		Where(squirrel.GtOrEq{"expense_date": from}).
		Where(squirrel.LtOrEq{"expense_date": to}).
		GroupBy("lower(category)").
		OrderBy("total DESC", "category ASC")
}
