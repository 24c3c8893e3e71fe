package event

import (
	"context"
	"log/slog"

	"github.com/tuanvumaihuynh/game-store/internal/model"
)

func (s *Service) handleProductCreated(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleProductDeleted(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event", slog.Any("event", ev))
	return nil
}

// handleStockAdjusted raises a warning when a product enters the low or
// out of stock band.
func (s *Service) handleStockAdjusted(ctx context.Context, ev StockAdjustedEvent) error {
	product := model.Product{StockQuantity: ev.StockQuantity}
	status := product.StockStatus(s.cfg.LowStockThreshold)

	attrs := []any{
		slog.String("product_id", ev.ProductID),
		slog.String("name", ev.Name),
		slog.Int("delta", ev.Delta),
		slog.Int("stock_quantity", ev.StockQuantity),
	}

	switch status {
	case model.StockStatusOut:
		s.logger.WarnContext(ctx, "product is out of stock", attrs...)
	case model.StockStatusLow:
		s.logger.WarnContext(ctx, "product stock is low", attrs...)
	default:
		s.logger.DebugContext(ctx, "product stock adjusted", attrs...)
	}

	return nil
}

func (s *Service) handleSaleCreated(ctx context.Context, ev SaleCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling sale created event", slog.Any("event", ev))
	return nil
}

func (s *Service) handleSaleDeleted(ctx context.Context, ev SaleDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling sale deleted event", slog.Any("event", ev))
	return nil
}
