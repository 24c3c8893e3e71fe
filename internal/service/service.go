// Package service implements the inventory and sale consistency engine on top of a store.Store.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/pkg/keymutex"
	"github.com/tuanvumaihuynh/game-store/pkg/zerror"
)

// StockLocks serializes check-and-act sequences on the stock of one product.
// The catalog and the ledger must share the same instance.
type StockLocks = keymutex.KeyMutex[uuid.UUID]

// NewStockLocks creates the per product lock set.
func NewStockLocks() *StockLocks {
	return &StockLocks{}
}

// storeErr passes domain answers from the store through and turns any other
// failure into apperr.StoreUnavailableErr.
func storeErr(err error) error {
	if err == nil {
		return nil
	}

	var zErr zerror.ZError
	if errors.As(err, &zErr) {
		return err
	}

	return apperr.StoreUnavailableErr.WrapParent(err)
}

// adjustStock applies delta through the store. Callers hold the product lock.
func adjustStock(ctx context.Context, st store.ProductStore, id uuid.UUID, delta int) (model.Product, error) {
	product, err := st.AdjustStock(ctx, id, delta)
	if err != nil {
		return model.Product{}, fmt.Errorf("store adjust stock: %w", storeErr(err))
	}

	return product, nil
}

// checkStockDelta rejects a delta that would move stock outside [0, model.MaxQuantity].
func checkStockDelta(stock, delta int) error {
	switch {
	case delta < -stock:
		return insufficientStock(-delta, stock)
	case delta > model.MaxQuantity-stock:
		return apperr.ValidationErr.WithDetails(
			fmt.Sprintf("delta: stock must not exceed %d", model.MaxQuantity))
	default:
		return nil
	}
}

func insufficientStock(requested, available int) error {
	return apperr.InsufficientStockErr.WithDetails(
		fmt.Sprintf("requested %d, available %d", requested, available))
}

func parseProductID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.
			WithDetails("product_id: must be a valid UUID").
			WrapParent(err)
	}

	return id, nil
}
