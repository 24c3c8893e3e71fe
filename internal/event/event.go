// Package event defines the domain events written to the outbox and the
// service consuming them back from Kafka.
package event

const (
	TopicProductCreated       = "product.created"
	TopicProductDeleted       = "product.deleted"
	TopicProductStockAdjusted = "product.stock_adjusted"
	TopicSaleCreated          = "sale.created"
	TopicSaleDeleted          = "sale.deleted"
)

type ProductCreatedEvent struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	UnitPrice     float64 `json:"unit_price"`
	StockQuantity int     `json:"stock_quantity"`
}

type ProductDeletedEvent struct {
	ProductID string `json:"product_id"`
}

// StockAdjustedEvent is emitted for every stock change, including the ones
// caused by recording or deleting a sale.
type StockAdjustedEvent struct {
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Delta         int    `json:"delta"`
	StockQuantity int    `json:"stock_quantity"`
}

type SaleCreatedEvent struct {
	SaleID    string  `json:"sale_id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

type SaleDeletedEvent struct {
	SaleID    string `json:"sale_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
