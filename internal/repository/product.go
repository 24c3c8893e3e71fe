package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/storage/db"
	"github.com/tuanvumaihuynh/game-store/internal/store"
)

const productColumns = `id, name, category, unit_price, stock_quantity, description, created_at, updated_at`

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error)
	CreateProduct(ctx context.Context, product model.Product) error
	UpdateProduct(ctx context.Context, id uuid.UUID, params store.ProductParams, updatedAt time.Time) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SearchProducts(ctx context.Context, term string) ([]model.Product, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedAt time.Time) (model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r productRepository) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, notFoundOr(err, apperr.ProductNotFoundErr, "get product")
	}

	return product, nil
}

func (r productRepository) GetProductForUpdate(ctx context.Context, id uuid.UUID) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, notFoundOr(err, apperr.ProductNotFoundErr, "get product for update")
	}

	return product, nil
}

func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := toNumeric(product.UnitPrice)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, category, unit_price, stock_quantity, description, created_at, updated_at)
		VALUES (@id, @name, @category, @unit_price, @stock_quantity, @description, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":             product.ID,
		"name":           product.Name,
		"category":       string(product.Category),
		"unit_price":     price,
		"stock_quantity": product.StockQuantity,
		"description":    product.Description,
		"created_at":     product.CreatedAt,
		"updated_at":     product.UpdatedAt,
	}); err != nil {
		return constraintErr(err, "create product")
	}

	return nil
}

func (r productRepository) UpdateProduct(
	ctx context.Context,
	id uuid.UUID,
	params store.ProductParams,
	updatedAt time.Time,
) (model.Product, error) {
	price, err := toNumeric(params.UnitPrice)
	if err != nil {
		return model.Product{}, err
	}

	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			name           = @name,
			category       = @category,
			unit_price     = @unit_price,
			stock_quantity = @stock_quantity,
			description    = @description,
			updated_at     = @updated_at
		WHERE id = @id
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"id":             id,
			"name":           params.Name,
			"category":       string(params.Category),
			"unit_price":     price,
			"stock_quantity": params.StockQuantity,
			"description":    params.Description,
			"updated_at":     updatedAt,
		})

	product, err := scanProduct(row)
	if err != nil {
		if db.IsNoRows(err) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, constraintErr(err, "update product")
	}

	return product, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := db.AsPgError(err); ok && pgErr.Code == db.CodeForeignKeyViolation {
			return apperr.ProductHasSalesErr.WrapParent(err)
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ProductNotFoundErr
	}

	return nil
}

func (r productRepository) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY id
	`, escapeLike(term))
}

func (r productRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE stock_quantity > 0 AND stock_quantity < $1
		ORDER BY id
	`, threshold)
}

// AdjustStock applies delta only if the stock stays within [0, model.MaxQuantity].
// When no row is updated a second read tells a missing product from a
// rejected delta.
func (r productRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedAt time.Time) (model.Product, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			stock_quantity = stock_quantity + @delta::bigint,
			updated_at     = @updated_at
		WHERE id = @id AND stock_quantity + @delta::bigint BETWEEN 0 AND @max_quantity
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"id":           id,
			"delta":        delta,
			"max_quantity": model.MaxQuantity,
			"updated_at":   updatedAt,
		})

	product, err := scanProduct(row)
	if err == nil {
		return product, nil
	}
	if !db.IsNoRows(err) {
		return model.Product{}, fmt.Errorf("adjust stock: %w", err)
	}

	var available int
	if err := r.db.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, id).Scan(&available); err != nil {
		return model.Product{}, notFoundOr(err, apperr.ProductNotFoundErr, "get stock quantity")
	}

	if delta > 0 {
		return model.Product{}, apperr.ValidationErr.WithDetails(
			fmt.Sprintf("delta: stock must not exceed %d", model.MaxQuantity))
	}
	return model.Product{}, apperr.InsufficientStockErr.WithDetails(
		fmt.Sprintf("requested %d, available %d", -delta, available))
}

func (r productRepository) queryProducts(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		p        model.Product
		category string
		price    pgtype.Numeric
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&category,
		&price,
		&p.StockQuantity,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	unitPrice, err := numericFloat64(price)
	if err != nil {
		return model.Product{}, err
	}

	p.Category = model.Category(category)
	p.UnitPrice = unitPrice
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
