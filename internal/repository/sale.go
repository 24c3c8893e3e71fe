package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/storage/db"
)

const saleColumns = `id, product_id, quantity, unit_price_at_sale, total, created_at`

type SaleRepository interface {
	WithDB(db db.DB) SaleRepository
	ListSales(ctx context.Context) ([]model.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	CreateSale(ctx context.Context, sale model.Sale) error
	DeleteSale(ctx context.Context, id uuid.UUID) (model.Sale, error)
	ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Sale, error)
	CountSalesByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) WithDB(db db.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r saleRepository) ListSales(ctx context.Context) ([]model.Sale, error) {
	return r.querySales(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY id`)
}

func (r saleRepository) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		return model.Sale{}, notFoundOr(err, apperr.SaleNotFoundErr, "get sale")
	}

	return sale, nil
}

func (r saleRepository) CreateSale(ctx context.Context, sale model.Sale) error {
	unitPrice, err := toNumeric(sale.UnitPriceAtSale)
	if err != nil {
		return err
	}
	total, err := toNumeric(sale.Total)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO sales (id, product_id, quantity, unit_price_at_sale, total, created_at)
		VALUES (@id, @product_id, @quantity, @unit_price_at_sale, @total, @created_at)
	`, pgx.NamedArgs{
		"id":                 sale.ID,
		"product_id":         sale.ProductID,
		"quantity":           sale.Quantity,
		"unit_price_at_sale": unitPrice,
		"total":              total,
		"created_at":         sale.Timestamp,
	}); err != nil {
		if pgErr, ok := db.AsPgError(err); ok && pgErr.Code == db.CodeForeignKeyViolation {
			return apperr.ProductNotFoundErr.WrapParent(err)
		}
		return constraintErr(err, "create sale")
	}

	return nil
}

// DeleteSale removes the sale and returns the deleted row.
func (r saleRepository) DeleteSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := scanSale(r.db.QueryRow(ctx, `DELETE FROM sales WHERE id = $1 RETURNING `+saleColumns, id))
	if err != nil {
		return model.Sale{}, notFoundOr(err, apperr.SaleNotFoundErr, "delete sale")
	}

	return sale, nil
}

func (r saleRepository) ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	return r.querySales(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at BETWEEN $1 AND $2
		ORDER BY id
	`, start, end)
}

func (r saleRepository) CountSalesByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE product_id = $1`, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count sales by product: %w", err)
	}

	return count, nil
}

func (r saleRepository) querySales(ctx context.Context, sql string, args ...any) ([]model.Sale, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Sale, error) {
		return scanSale(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales: %w", err)
	}

	return sales, nil
}

func scanSale(row pgx.Row) (model.Sale, error) {
	var (
		s         model.Sale
		unitPrice pgtype.Numeric
		total     pgtype.Numeric
	)

	if err := row.Scan(&s.ID, &s.ProductID, &s.Quantity, &unitPrice, &total, &s.Timestamp); err != nil {
		return model.Sale{}, err
	}

	var err error
	if s.UnitPriceAtSale, err = numericFloat64(unitPrice); err != nil {
		return model.Sale{}, err
	}
	if s.Total, err = numericFloat64(total); err != nil {
		return model.Sale{}, err
	}
	s.Timestamp = s.Timestamp.UTC()

	return s, nil
}
