package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/game-store/internal/config"
	"github.com/tuanvumaihuynh/game-store/internal/event"
	"github.com/tuanvumaihuynh/game-store/internal/log"
	"github.com/tuanvumaihuynh/game-store/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = make(map[string]mq.HandlerFunc)
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	return func() {}, nil
}

func (c *fakeConsumer) deliver(t *testing.T, topic string, ev any) error {
	t.Helper()

	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	handler, ok := c.handlers[topic]
	require.True(t, ok, "no handler for %s", topic)
	return handler(context.Background(), topic, payload)
}

func newService(t *testing.T) (*fakeConsumer, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logger := log.New(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo})
	consumer := &fakeConsumer{}

	svc := event.New(config.Catalog{LowStockThreshold: 5}, logger, consumer)
	cleanup, err := svc.Run(context.Background())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return consumer, &buf
}

func TestService_Run(t *testing.T) {
	consumer, _ := newService(t)

	for _, topic := range []string{
		event.TopicProductCreated,
		event.TopicProductDeleted,
		event.TopicProductStockAdjusted,
		event.TopicSaleCreated,
		event.TopicSaleDeleted,
	} {
		assert.Contains(t, consumer.handlers, topic)
	}
}

func TestService_StockAdjusted(t *testing.T) {
	testCases := []struct {
		name       string
		stock      int
		expectWarn string
	}{
		{name: "out of stock", stock: 0, expectWarn: "product is out of stock"},
		{name: "low stock", stock: 4, expectWarn: "product stock is low"},
		{name: "healthy stock"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			consumer, buf := newService(t)
			stock := tc.stock
			if tc.expectWarn == "" {
				stock = 20
			}

			err := consumer.deliver(t, event.TopicProductStockAdjusted, event.StockAdjustedEvent{
				ProductID:     "p-1",
				Name:          "Controller",
				Delta:         -1,
				StockQuantity: stock,
			})

			require.NoError(t, err)
			if tc.expectWarn == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tc.expectWarn)
			assert.Contains(t, buf.String(), `"level":"WARN"`)
		})
	}
}

func TestService_MalformedPayload(t *testing.T) {
	consumer, _ := newService(t)

	err := consumer.handlers[event.TopicSaleCreated](context.Background(), event.TopicSaleCreated, []byte("{"))

	assert.ErrorContains(t, err, "unmarshal sale.created event")
}
