package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/internal/validation"
)

// minSearchTermLength is the shortest term that filters a search.
const minSearchTermLength = 2

type ProductCatalog interface {
	// List returns every product in store order.
	List(ctx context.Context) ([]model.Product, error)

	// FindByID returns apperr.ProductNotFoundErr if the id does not resolve.
	FindByID(ctx context.Context, id uuid.UUID) (model.Product, error)

	// Search matches term case-insensitively against product names.
	// A trimmed term shorter than two characters returns the unfiltered list.
	Search(ctx context.Context, term string) ([]model.Product, error)

	// Filter applies every set field of the filter.
	Filter(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)

	// LowStock returns products with 0 < stock < threshold.
	// A non-positive threshold uses the configured default.
	LowStock(ctx context.Context, threshold int) ([]model.Product, error)

	Create(ctx context.Context, in model.ProductInput) (model.Product, error)
	Update(ctx context.Context, id uuid.UUID, in model.ProductInput) (model.Product, error)

	// Delete returns apperr.ProductHasSalesErr while any sale references the product.
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustStock returns apperr.InsufficientStockErr if the stock would go negative
	// and apperr.ValidationErr if it would exceed model.MaxQuantity.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error)

	// LowStockThreshold returns the configured default low stock threshold.
	LowStockThreshold() int
}

type productCatalog struct {
	cfg       config.Catalog
	logger    *slog.Logger
	validator *validation.Validator
	store     store.Store
	locks     *StockLocks
}

func NewProductCatalog(
	cfg config.Catalog,
	logger *slog.Logger,
	validator *validation.Validator,
	store store.Store,
	locks *StockLocks,
) ProductCatalog {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = model.DefaultLowStockThreshold
	}

	return &productCatalog{
		cfg:       cfg,
		logger:    logger.With(slog.String("service", "catalog")),
		validator: validator,
		store:     store,
		locks:     locks,
	}
}

func (c *productCatalog) LowStockThreshold() int {
	return c.cfg.LowStockThreshold
}

func (c *productCatalog) List(ctx context.Context) ([]model.Product, error) {
	products, err := c.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("store list products: %w", storeErr(err))
	}

	return products, nil
}

func (c *productCatalog) FindByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := c.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("store get product: %w", storeErr(err))
	}

	return product, nil
}

func (c *productCatalog) Search(ctx context.Context, term string) ([]model.Product, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < minSearchTermLength {
		return c.List(ctx)
	}

	products, err := c.store.SearchProducts(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("store search products: %w", storeErr(err))
	}

	return products, nil
}

func (c *productCatalog) Filter(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Category != "" {
		if err := filter.Category.Validate(); err != nil {
			return nil, apperr.ValidationErr.
				WithDetails(fmt.Sprintf("category: invalid enum value: %s", filter.Category)).
				WrapParent(err)
		}
	}

	products, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	return filterProducts(products, filter, c.cfg.LowStockThreshold), nil
}

func (c *productCatalog) LowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	if threshold <= 0 {
		threshold = c.cfg.LowStockThreshold
	}

	products, err := c.store.ListLowStockProducts(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("store list low stock products: %w", storeErr(err))
	}

	return filterProducts(products, model.ProductFilter{StockBand: model.StockBandLow}, threshold), nil
}

func (c *productCatalog) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	if err := c.validator.ValidateProduct(in).Err(); err != nil {
		return model.Product{}, err
	}

	product, err := c.store.CreateProduct(ctx, productParams(in))
	if err != nil {
		return model.Product{}, fmt.Errorf("store create product: %w", storeErr(err))
	}

	c.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.Int("stock_quantity", product.StockQuantity),
	)

	return product, nil
}

func (c *productCatalog) Update(ctx context.Context, id uuid.UUID, in model.ProductInput) (model.Product, error) {
	if err := c.validator.ValidateProduct(in).Err(); err != nil {
		return model.Product{}, err
	}

	unlock := c.locks.Lock(id)
	defer unlock()

	product, err := c.store.UpdateProduct(ctx, id, productParams(in))
	if err != nil {
		return model.Product{}, fmt.Errorf("store update product: %w", storeErr(err))
	}

	return product, nil
}

func (c *productCatalog) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := c.locks.Lock(id)
	defer unlock()

	count, err := c.store.CountSalesByProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("store count sales by product: %w", storeErr(err))
	}
	if count > 0 {
		return apperr.ProductHasSalesErr.WithDetails(fmt.Sprintf("%d sale(s) reference this product", count))
	}

	if err := c.store.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("store delete product: %w", storeErr(err))
	}

	c.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))

	return nil
}

func (c *productCatalog) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error) {
	unlock := c.locks.Lock(id)
	defer unlock()

	product, err := c.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if err := checkStockDelta(product.StockQuantity, delta); err != nil {
		return model.Product{}, err
	}

	return adjustStock(ctx, c.store, id, delta)
}

func productParams(in model.ProductInput) store.ProductParams {
	in = in.Normalize()
	return store.ProductParams{
		Name:          in.Name,
		Category:      in.Category,
		UnitPrice:     *in.UnitPrice,
		StockQuantity: int(*in.StockQuantity),
		Description:   in.Description,
	}
}

func filterProducts(products []model.Product, filter model.ProductFilter, lowStockThreshold int) []model.Product {
	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if !filter.StockBand.Matches(p.StockQuantity, lowStockThreshold) {
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered
}
