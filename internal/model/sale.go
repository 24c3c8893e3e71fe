package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sale is an immutable record of a stock reducing transaction against one product.
type Sale struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Quantity        int       `json:"quantity"`
	UnitPriceAtSale float64   `json:"unit_price_at_sale"`
	Total           float64   `json:"total"`
	Timestamp       time.Time `json:"timestamp"`
}

// SaleInput is the candidate payload for recording a sale.
type SaleInput struct {
	ProductID string   `json:"product_id" validate:"required"`
	Quantity  *float64 `json:"quantity"   validate:"required,gte=1,lte=2147483647,integer"`
}

// Normalize returns a copy of the input with surrounding whitespace removed.
func (in SaleInput) Normalize() SaleInput {
	in.ProductID = strings.TrimSpace(in.ProductID)
	return in
}

// SaleFilter narrows a sale listing. Nil fields do not filter; bounds are inclusive.
type SaleFilter struct {
	ProductID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// Matches reports whether the sale satisfies every set field of the filter.
func (f SaleFilter) Matches(s Sale) bool {
	if f.ProductID != nil && s.ProductID != *f.ProductID {
		return false
	}
	if f.From != nil && s.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && s.Timestamp.After(*f.To) {
		return false
	}
	return true
}
