package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/storage/mq"
)

// Service consumes the domain events relayed from the outbox.
type Service struct {
	cfg        config.Catalog
	logger     *slog.Logger
	mqConsumer mq.Consumer
}

// New creates a new event service.
func New(
	cfg config.Catalog,
	logger *slog.Logger,
	mqConsumer mq.Consumer,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logger.With(slog.String("service", "event")),
		mqConsumer: mqConsumer,
	}
}

type CleanupFunc func()

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	if err := s.RegisterHandlers(); err != nil {
		return nil, err
	}

	mqCleanup, err := s.mqConsumer.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("run mq consumer: %w", err)
	}

	cleanup := func() {
		mqCleanup()
	}

	return cleanup, nil
}

// RegisterHandlers binds every known topic to its handler on the consumer.
func (s *Service) RegisterHandlers() error {
	registrations := []struct {
		topic   string
		handler mq.HandlerFunc
	}{
		{TopicProductCreated, decode(s.handleProductCreated)},
		{TopicProductDeleted, decode(s.handleProductDeleted)},
		{TopicProductStockAdjusted, decode(s.handleStockAdjusted)},
		{TopicSaleCreated, decode(s.handleSaleCreated)},
		{TopicSaleDeleted, decode(s.handleSaleDeleted)},
	}

	for _, r := range registrations {
		if err := s.mqConsumer.RegisterHandler(r.topic, r.handler); err != nil {
			return fmt.Errorf("register %s event handler: %w", r.topic, err)
		}
	}

	return nil
}

func decode[T any](handle func(ctx context.Context, ev T) error) mq.HandlerFunc {
	return func(ctx context.Context, topic string, payload []byte) error {
		var ev T
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("unmarshal %s event: %w", topic, err)
		}

		if err := handle(ctx, ev); err != nil {
			return fmt.Errorf("handle %s event: %w", topic, err)
		}

		return nil
	}
}
