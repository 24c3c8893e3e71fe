package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/event"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/storage/db"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/pkg/outbox"
	"github.com/tuanvumaihuynh/game-store/pkg/ptr"
)

var _ store.Store = (*Store)(nil)

// Store is the postgres backed store.Store. Every write records its domain
// event in the outbox within the same transaction.
type Store struct {
	db            db.DB
	productRepo   ProductRepository
	saleRepo      SaleRepository
	outboxMsgRepo OutboxMsgRepository
	now           func() time.Time
}

func NewStore(
	db db.DB,
	productRepo ProductRepository,
	saleRepo SaleRepository,
	outboxMsgRepo OutboxMsgRepository,
) *Store {
	return &Store{
		db:            db,
		productRepo:   productRepo,
		saleRepo:      saleRepo,
		outboxMsgRepo: outboxMsgRepo,
		now:           time.Now,
	}
}

// timestamp returns the current time at the precision postgres stores.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.ListProducts(ctx)
}

func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	return s.productRepo.GetProduct(ctx, id)
}

func (s *Store) CreateProduct(ctx context.Context, params store.ProductParams) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := s.timestamp()
	product := model.Product{
		ID:            id,
		Name:          params.Name,
		Category:      params.Category,
		UnitPrice:     params.UnitPrice,
		StockQuantity: params.StockQuantity,
		Description:   params.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).CreateProduct(ctx, product); err != nil {
			return err
		}

		return s.publish(ctx, tx, event.TopicProductCreated, product.ID, event.ProductCreatedEvent{
			ProductID:     product.ID.String(),
			Name:          product.Name,
			Category:      string(product.Category),
			UnitPrice:     product.UnitPrice,
			StockQuantity: product.StockQuantity,
		})
	}); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, params store.ProductParams) (model.Product, error) {
	var product model.Product

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		productRepo := s.productRepo.WithDB(tx)

		before, err := productRepo.GetProductForUpdate(ctx, id)
		if err != nil {
			return err
		}

		product, err = productRepo.UpdateProduct(ctx, id, params, s.timestamp())
		if err != nil {
			return err
		}

		delta := product.StockQuantity - before.StockQuantity
		if delta == 0 {
			return nil
		}

		return s.publishStockAdjusted(ctx, tx, product, delta)
	}); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.productRepo.WithDB(tx).DeleteProduct(ctx, id); err != nil {
			return err
		}

		return s.publish(ctx, tx, event.TopicProductDeleted, id, event.ProductDeletedEvent{
			ProductID: id.String(),
		})
	})
}

func (s *Store) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	return s.productRepo.SearchProducts(ctx, term)
}

func (s *Store) ListLowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	return s.productRepo.ListLowStockProducts(ctx, threshold)
}

func (s *Store) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (model.Product, error) {
	var product model.Product

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		var err error
		product, err = s.productRepo.WithDB(tx).AdjustStock(ctx, id, delta, s.timestamp())
		if err != nil {
			return err
		}

		return s.publishStockAdjusted(ctx, tx, product, delta)
	}); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *Store) ListSales(ctx context.Context) ([]model.Sale, error) {
	return s.saleRepo.ListSales(ctx)
}

func (s *Store) GetSale(ctx context.Context, id uuid.UUID) (model.Sale, error) {
	return s.saleRepo.GetSale(ctx, id)
}

func (s *Store) CreateSale(ctx context.Context, params store.SaleParams) (model.Sale, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	sale := model.Sale{
		ID:              id,
		ProductID:       params.ProductID,
		Quantity:        params.Quantity,
		UnitPriceAtSale: params.UnitPriceAtSale,
		Total:           params.Total,
		Timestamp:       s.timestamp(),
	}

	if err := s.db.WithTx(ctx, func(tx db.DB) error {
		if err := s.saleRepo.WithDB(tx).CreateSale(ctx, sale); err != nil {
			return err
		}

		return s.publish(ctx, tx, event.TopicSaleCreated, sale.ProductID, event.SaleCreatedEvent{
			SaleID:    sale.ID.String(),
			ProductID: sale.ProductID.String(),
			Quantity:  sale.Quantity,
			Total:     sale.Total,
		})
	}); err != nil {
		return model.Sale{}, err
	}

	return sale, nil
}

func (s *Store) DeleteSale(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx db.DB) error {
		sale, err := s.saleRepo.WithDB(tx).DeleteSale(ctx, id)
		if err != nil {
			return err
		}

		return s.publish(ctx, tx, event.TopicSaleDeleted, sale.ProductID, event.SaleDeletedEvent{
			SaleID:    sale.ID.String(),
			ProductID: sale.ProductID.String(),
			Quantity:  sale.Quantity,
		})
	})
}

func (s *Store) ListSalesByDateRange(ctx context.Context, start, end time.Time) ([]model.Sale, error) {
	return s.saleRepo.ListSalesByDateRange(ctx, start, end)
}

func (s *Store) CountSalesByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.saleRepo.CountSalesByProduct(ctx, productID)
}

func (s *Store) publishStockAdjusted(ctx context.Context, tx db.DB, product model.Product, delta int) error {
	return s.publish(ctx, tx, event.TopicProductStockAdjusted, product.ID, event.StockAdjustedEvent{
		ProductID:     product.ID.String(),
		Name:          product.Name,
		Delta:         delta,
		StockQuantity: product.StockQuantity,
	})
}

// publish writes ev to the outbox keyed by the product id, so that events of
// one product keep their order on the topic.
func (s *Store) publish(ctx context.Context, tx db.DB, topic string, productID uuid.UUID, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := s.outboxMsgRepo.
		WithDB(tx).
		CreateOutboxMsg(ctx, CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: ptr.New(productID.String()),
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}

	return nil
}
