// Package store defines the persistence boundary of the catalog and the sale ledger.
//
// A Store returns either a payload or an error. Errors that are a zerror.ZError
// (not found, field validation, insufficient stock) are domain answers; any other
// error is a transport or remote failure that the services surface as
// apperr.StoreUnavailableErr.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/model"
)

// ProductParams holds the writable fields of a product.
type ProductParams struct {
	Name          string
	Category      model.Category
	UnitPrice     float64
	StockQuantity int
	Description   string
}

// SaleParams holds the fields of a sale computed by the ledger.
type SaleParams struct {
	ProductID       uuid.UUID
	Quantity        int
	UnitPriceAtSale float64
	Total           float64
}

type ProductStore interface {
	// ListProducts returns every product in insertion order.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// GetProduct returns apperr.ProductNotFoundErr if the id does not resolve.
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)

	// CreateProduct assigns the id and timestamps of the new product.
	CreateProduct(ctx context.Context, params ProductParams) (model.Product, error)

	// UpdateProduct returns apperr.ProductNotFoundErr if the id does not resolve.
	UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error)

	// DeleteProduct returns apperr.ProductNotFoundErr if the id does not resolve.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// SearchProducts matches term as a case-insensitive substring of the name.
	SearchProducts(ctx context.Context, term string) ([]model.Product, error)

	// ListLowStockProducts returns products with 0 < stock < threshold.
	ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)

	// AdjustStock adds delta to the stock of a product in one conditional step.
	// It returns apperr.InsufficientStockErr, leaving the stock untouched,
	// when the result would be negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error)
}

type SaleStore interface {
	// ListSales returns every sale in insertion order.
	ListSales(ctx context.Context) ([]model.Sale, error)

	// GetSale returns apperr.SaleNotFoundErr if the id does not resolve.
	GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error)

	// CreateSale assigns the id and timestamp of the new sale.
	CreateSale(ctx context.Context, params SaleParams) (model.Sale, error)

	// DeleteSale returns apperr.SaleNotFoundErr if the id does not resolve.
	DeleteSale(ctx context.Context, id uuid.UUID) error

	// ListSalesByDateRange returns sales with start <= timestamp <= end.
	ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Sale, error)

	// CountSalesByProduct returns the number of sales referencing the product.
	CountSalesByProduct(ctx context.Context, productID uuid.UUID) (int, error)
}

// Store groups the product and sale capabilities.
type Store interface {
	ProductStore
	SaleStore
}
