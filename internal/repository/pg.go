package repository

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/storage/db"
	"github.com/tuanvumaihuynh/game-store/pkg/zerror"
)

func toNumeric(v float64) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(decimal.NewFromFloat(v).String()); err != nil {
		return pgtype.Numeric{}, fmt.Errorf("scan numeric %v: %w", v, err)
	}
	return n, nil
}

func numericFloat64(n pgtype.Numeric) (float64, error) {
	f, err := n.Float64Value()
	if err != nil {
		return 0, fmt.Errorf("convert numeric to float64: %w", err)
	}
	return f.Float64, nil
}

// notFoundOr maps a missing row to notFound and wraps any other error.
func notFoundOr(err error, notFound zerror.ZError, op string) error {
	if db.IsNoRows(err) {
		return notFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// constraintErr reports check constraint violations as validation errors.
func constraintErr(err error, op string) error {
	if pgErr, ok := db.AsPgError(err); ok && pgErr.Code == db.CodeCheckViolation {
		return apperr.ValidationErr.
			WithDetails(fmt.Sprintf("%s: violates %s", pgErr.TableName, pgErr.ConstraintName)).
			WrapParent(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
