package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/internal/validation"
)

type SaleLedger interface {
	// CreateSale reserves stock from the product and records the sale as one unit.
	CreateSale(ctx context.Context, in model.SaleInput) (model.Sale, error)

	// DeleteSale removes the sale and gives its quantity back to the product.
	// A missing product skips the restoration without blocking the deletion.
	DeleteSale(ctx context.Context, id uuid.UUID) error

	// FindByID returns apperr.SaleNotFoundErr if the id does not resolve.
	FindByID(ctx context.Context, id uuid.UUID) (model.Sale, error)

	// ListSales applies every set field of the filter; date bounds are inclusive.
	ListSales(ctx context.Context, filter model.SaleFilter) ([]model.Sale, error)
}

type saleLedger struct {
	logger    *slog.Logger
	validator *validation.Validator
	store     store.Store
	locks     *StockLocks
}

func NewSaleLedger(
	logger *slog.Logger,
	validator *validation.Validator,
	store store.Store,
	locks *StockLocks,
) SaleLedger {
	return &saleLedger{
		logger:    logger.With(slog.String("service", "ledger")),
		validator: validator,
		store:     store,
		locks:     locks,
	}
}

func (l *saleLedger) CreateSale(ctx context.Context, in model.SaleInput) (model.Sale, error) {
	if err := l.validator.ValidateSale(in).Err(); err != nil {
		return model.Sale{}, err
	}
	in = in.Normalize()

	productID, err := parseProductID(in.ProductID)
	if err != nil {
		return model.Sale{}, err
	}
	quantity := int(*in.Quantity)

	unlock := l.locks.Lock(productID)
	defer unlock()

	product, err := l.store.GetProduct(ctx, productID)
	if err != nil {
		return model.Sale{}, fmt.Errorf("store get product: %w", storeErr(err))
	}
	if quantity > product.StockQuantity {
		return model.Sale{}, insufficientStock(quantity, product.StockQuantity)
	}

	params := store.SaleParams{
		ProductID:       product.ID,
		Quantity:        quantity,
		UnitPriceAtSale: product.UnitPrice,
		Total: decimal.NewFromFloat(product.UnitPrice).
			Mul(decimal.NewFromInt(int64(quantity))).
			InexactFloat64(),
	}

	if _, err := adjustStock(ctx, l.store, product.ID, -quantity); err != nil {
		return model.Sale{}, err
	}

	sale, err := l.store.CreateSale(ctx, params)
	if err != nil {
		err = fmt.Errorf("store create sale: %w", storeErr(err))
		if cErr := l.compensate(ctx, product.ID, quantity, "reverse stock decrement"); cErr != nil {
			return model.Sale{}, errors.Join(err, cErr)
		}
		return model.Sale{}, err
	}

	l.logger.InfoContext(ctx, "sale created",
		slog.String("sale_id", sale.ID.String()),
		slog.String("product_id", sale.ProductID.String()),
		slog.Int("quantity", sale.Quantity),
		slog.Float64("total", sale.Total),
	)

	return sale, nil
}

func (l *saleLedger) DeleteSale(ctx context.Context, id uuid.UUID) error {
	sale, err := l.FindByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := l.locks.Lock(sale.ProductID)
	defer unlock()

	// A concurrent delete may have won the lock first.
	sale, err = l.FindByID(ctx, id)
	if err != nil {
		return err
	}

	restored := true
	if _, err := adjustStock(ctx, l.store, sale.ProductID, sale.Quantity); err != nil {
		if !errors.Is(err, apperr.ProductNotFoundErr) {
			return err
		}
		restored = false
		l.logger.WarnContext(ctx, "product of sale no longer exists, skipping stock restoration",
			slog.String("sale_id", sale.ID.String()),
			slog.String("product_id", sale.ProductID.String()),
		)
	}

	if err := l.store.DeleteSale(ctx, sale.ID); err != nil {
		err = fmt.Errorf("store delete sale: %w", storeErr(err))
		if restored {
			if cErr := l.compensate(ctx, sale.ProductID, -sale.Quantity, "reverse stock restoration"); cErr != nil {
				return errors.Join(err, cErr)
			}
		}
		return err
	}

	l.logger.InfoContext(ctx, "sale deleted",
		slog.String("sale_id", sale.ID.String()),
		slog.String("product_id", sale.ProductID.String()),
		slog.Bool("stock_restored", restored),
	)

	return nil
}

func (l *saleLedger) FindByID(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	sale, err := l.store.GetSale(ctx, id)
	if err != nil {
		return model.Sale{}, fmt.Errorf("store get sale: %w", storeErr(err))
	}

	return sale, nil
}

func (l *saleLedger) ListSales(ctx context.Context, filter model.SaleFilter) ([]model.Sale, error) {
	var (
		sales []model.Sale
		err   error
	)

	switch {
	case filter.From != nil && filter.To != nil:
		if filter.From.After(*filter.To) {
			return nil, apperr.ValidationErr.WithDetails("from: must not be after to")
		}
		sales, err = l.store.ListSalesByDateRange(ctx, *filter.From, *filter.To)
	default:
		sales, err = l.store.ListSales(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("store list sales: %w", storeErr(err))
	}

	filtered := make([]model.Sale, 0, len(sales))
	for _, s := range sales {
		if filter.Matches(s) {
			filtered = append(filtered, s)
		}
	}

	return filtered, nil
}

// compensate undoes a stock change after the paired sale write failed.
// It runs even if ctx is already canceled.
func (l *saleLedger) compensate(ctx context.Context, productID uuid.UUID, delta int, action string) error {
	if _, err := adjustStock(context.WithoutCancel(ctx), l.store, productID, delta); err != nil {
		l.logger.ErrorContext(ctx, "compensation failed, stock is inconsistent",
			slog.String("action", action),
			slog.String("product_id", productID.String()),
			slog.Int("delta", delta),
			slog.Any("error", err),
		)
		return fmt.Errorf("%s: %w", action, err)
	}

	l.logger.WarnContext(ctx, "sale write failed, stock change reversed",
		slog.String("action", action),
		slog.String("product_id", productID.String()),
		slog.Int("delta", delta),
	)

	return nil
}
