package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/pkg/zerror"
)

var _ Store = (*breakerStore)(nil)

// breakerStore fails fast with apperr.StoreUnavailableErr once the wrapped
// store keeps failing. Domain answers (any zerror.ZError) do not count as failures.
type breakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[any]
}

// WithCircuitBreaker wraps s with a circuit breaker.
func WithCircuitBreaker(s Store, cfg config.StoreBreaker, logger *slog.Logger) Store {
	st := gobreaker.Settings{
		Name:        "store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var zErr zerror.ZError
			return errors.As(err, &zErr)
		},
	}

	return &breakerStore{
		next: s,
		cb:   gobreaker.NewCircuitBreaker[any](st),
	}
}

func execute[T any](cb *gobreaker.CircuitBreaker[any], fn func() (T, error)) (T, error) {
	res, err := cb.Execute(func() (any, error) {
		v, err := fn()
		return v, err
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, apperr.StoreUnavailableErr.WrapParent(err)
		}
		return zero, err
	}

	return res.(T), nil
}

func executeErr(cb *gobreaker.CircuitBreaker[any], fn func() error) error {
	_, err := execute(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (b *breakerStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	return execute(b.cb, func() ([]model.Product, error) { return b.next.ListProducts(ctx) })
}

func (b *breakerStore) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return execute(b.cb, func() (model.Product, error) { return b.next.GetProduct(ctx, id) })
}

func (b *breakerStore) CreateProduct(ctx context.Context, params ProductParams) (model.Product, error) {
	return execute(b.cb, func() (model.Product, error) { return b.next.CreateProduct(ctx, params) })
}

func (b *breakerStore) UpdateProduct(ctx context.Context, id uuid.UUID, params ProductParams) (model.Product, error) {
	return execute(b.cb, func() (model.Product, error) { return b.next.UpdateProduct(ctx, id, params) })
}

func (b *breakerStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return executeErr(b.cb, func() error { return b.next.DeleteProduct(ctx, id) })
}

func (b *breakerStore) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	return execute(b.cb, func() ([]model.Product, error) { return b.next.SearchProducts(ctx, term) })
}

func (b *breakerStore) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	return execute(b.cb, func() ([]model.Product, error) { return b.next.ListLowStockProducts(ctx, threshold) })
}

func (b *breakerStore) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error) {
	return execute(b.cb, func() (model.Product, error) { return b.next.AdjustStock(ctx, id, delta) })
}

func (b *breakerStore) ListSales(ctx context.Context) ([]model.Sale, error) {
	return execute(b.cb, func() ([]model.Sale, error) { return b.next.ListSales(ctx) })
}

func (b *breakerStore) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	return execute(b.cb, func() (model.Sale, error) { return b.next.GetSale(ctx, id) })
}

func (b *breakerStore) CreateSale(ctx context.Context, params SaleParams) (model.Sale, error) {
	return execute(b.cb, func() (model.Sale, error) { return b.next.CreateSale(ctx, params) })
}

func (b *breakerStore) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return executeErr(b.cb, func() error { return b.next.DeleteSale(ctx, id) })
}

func (b *breakerStore) ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	return execute(b.cb, func() ([]model.Sale, error) { return b.next.ListSalesByDateRange(ctx, start, end) })
}

func (b *breakerStore) CountSalesByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	return execute(b.cb, func() (int, error) { return b.next.CountSalesByProduct(ctx, productID) })
}
