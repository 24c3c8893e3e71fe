package model

import "github.com/google/uuid"

// Stats summarizes a snapshot of the sale history.
type Stats struct {
	TotalRevenue     float64        `json:"total_revenue"`
	TotalUnits       int            `json:"total_units"`
	SaleCount        int            `json:"sale_count"`
	AverageSaleValue float64        `json:"average_sale_value"`
	SalesToday       int            `json:"sales_today"`
	SalesByProduct   []ProductSales `json:"sales_by_product"`
	// TopProduct is nil when there are no sales.
	TopProduct *ProductSales `json:"top_product"`
}

// ProductSales aggregates the sales of one product.
type ProductSales struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Revenue     float64   `json:"revenue"`
}
