package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"gestaopro/internal/core/apperror"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

// uniqueFields maps unique constraints to the entity and field reported to clients.
var uniqueFields = map[string][2]string{
	"categories_owner_name_key": {"category", "name"},
	"users_email_key":           {"user", "email"},
	"sales_owner_number_key":    {"sale", "number"},
}

// MapError converts constraint violations into AppErrors and wraps the rest with op.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if f, ok := uniqueFields[pgErr.ConstraintName]; ok {
				return apperror.NewDuplicate(f[0], f[1], "").WithCause(err)
			}
			return apperror.NewConflict("record already exists").WithCause(err)
		case codeForeignKeyViolation:
			return apperror.NewConflict("referenced record does not exist or is still in use").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case codeCheckViolation:
			return apperror.NewValidation("value rejected by the database").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case codeNumericOutOfRange:
			return apperror.NewValidation("numeric value out of range").WithCause(err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
