package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/log"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/service"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/internal/validation"
	"github.com/tuanvumaihuynh/game-store/pkg/ptr"
)

var errBoom = errors.New("connection reset by peer")

// faultyStore fails the selected operations and delegates the rest.
type faultyStore struct {
	store.Store

	mu         sync.Mutex
	createSale error
	deleteSale error
	listAll    error
}

func (f *faultyStore) fail(set func(f *faultyStore)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set(f)
}

func (f *faultyStore) CreateSale(ctx context.Context, params store.SaleParams) (model.Sale, error) {
	f.mu.Lock()
	err := f.createSale
	f.mu.Unlock()
	if err != nil {
		return model.Sale{}, err
	}
	return f.Store.CreateSale(ctx, params)
}

func (f *faultyStore) DeleteSale(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	err := f.deleteSale
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.DeleteSale(ctx, id)
}

func (f *faultyStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	f.mu.Lock()
	err := f.listAll
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Store.ListProducts(ctx)
}

type fixture struct {
	store   *faultyStore
	catalog service.ProductCatalog
	ledger  service.SaleLedger
	stats   service.StatisticsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validation.New()
	require.NoError(t, err)

	st := &faultyStore{Store: store.NewMemory()}
	locks := service.NewStockLocks()
	logger := log.Discard()

	return &fixture{
		store:   st,
		catalog: service.NewProductCatalog(config.Catalog{LowStockThreshold: 5}, logger, v, st, locks),
		ledger:  service.NewSaleLedger(logger, v, st, locks),
		stats:   service.NewStatisticsService(st),
	}
}

func (f *fixture) createProduct(t *testing.T, name string, category model.Category, price float64, stock int) model.Product {
	t.Helper()

	p, err := f.catalog.Create(context.Background(), model.ProductInput{
		Name:          name,
		Category:      category,
		UnitPrice:     ptr.New(price),
		StockQuantity: ptr.New(float64(stock)),
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) sell(ctx context.Context, productID uuid.UUID, quantity float64) (model.Sale, error) {
	return f.ledger.CreateSale(ctx, model.SaleInput{
		ProductID: productID.String(),
		Quantity:  ptr.New(quantity),
	})
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()

	p, err := f.catalog.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}
