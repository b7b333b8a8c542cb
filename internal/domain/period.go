package domain

import (
	"time"

	"gestaopro/internal/core/apperror"
	"gestaopro/internal/core/types"
)

// MonthRange returns the first and last instant of a calendar month in UTC.
// Both bounds are inclusive.
func MonthRange(year, month int) (time.Time, time.Time, error) {
	if year < 1970 || year > 9999 {
		return time.Time{}, time.Time{}, apperror.NewFieldValidation("year", "year is out of range")
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, apperror.NewFieldValidation("month", "month must be between 1 and 12")
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return from, to, nil
}

// MonthlyTotal is the aggregate returned by the monthly-total endpoints.
type MonthlyTotal struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Total types.Money `json:"total"`
	Count int64       `json:"count"`
}
