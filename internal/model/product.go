package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLowStockThreshold is the exclusive upper bound of the low stock band.
	DefaultLowStockThreshold = 5

	// MaxQuantity bounds stock and sale quantities to the INTEGER columns
	// that persist them. Keep in sync with the lte tags below.
	MaxQuantity = math.MaxInt32
)

type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	UnitPrice     float64   `json:"unit_price"`
	StockQuantity int       `json:"stock_quantity"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockStatus reports the stock band of the product for the given low stock threshold.
func (p Product) StockStatus(lowStockThreshold int) StockStatus {
	switch {
	case p.StockQuantity <= 0:
		return StockStatusOut
	case p.StockQuantity < lowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusOK
	}
}

// Category is the closed set of catalog categories.
type Category string

const (
	CategoryGame    Category = "game"
	CategoryConsole Category = "console"
)

// Categories lists every valid category.
var Categories = []Category{CategoryGame, CategoryConsole}

// Validate returns an error when the category is not part of the enumeration.
func (c Category) Validate() error {
	switch c {
	case CategoryGame, CategoryConsole:
		return nil
	default:
		return fmt.Errorf("unknown category: %q", string(c))
	}
}

// StockStatus is the derived stock state of a product.
type StockStatus string

const (
	StockStatusOut StockStatus = "out"
	StockStatusLow StockStatus = "low"
	StockStatusOK  StockStatus = "ok"
)

// StockBand selects products by stock level when filtering the catalog.
type StockBand uint8

const (
	StockBandAny StockBand = iota
	StockBandLow
	StockBandOut
)

// String returns the string representation of the stock band.
func (b StockBand) String() string {
	switch b {
	case StockBandLow:
		return "low"
	case StockBandOut:
		return "out"
	default:
		return "any"
	}
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *StockBand) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "any":
		*b = StockBandAny
	case "low":
		*b = StockBandLow
	case "out":
		*b = StockBandOut
	default:
		return fmt.Errorf("unknown stock band: %s", text)
	}
	return nil
}

func (b StockBand) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Matches reports whether a stock quantity falls inside the band.
func (b StockBand) Matches(quantity, lowStockThreshold int) bool {
	switch b {
	case StockBandLow:
		return quantity > 0 && quantity < lowStockThreshold
	case StockBandOut:
		return quantity == 0
	default:
		return true
	}
}

// ProductInput is the candidate payload for creating or updating a product.
// Numbers are pointers so that missing values can be told apart from zero.
type ProductInput struct {
	Name          string   `json:"name"           validate:"required,min=2,max=100"`
	Category      Category `json:"category"       validate:"required,enum"`
	UnitPrice     *float64 `json:"unit_price"     validate:"required,gte=0,lte=1000000"`
	StockQuantity *float64 `json:"stock_quantity" validate:"required,gte=0,lte=2147483647,integer"`
	Description   string   `json:"description"    validate:"max=500"`
}

// Normalize returns a copy of the input with surrounding whitespace removed.
func (in ProductInput) Normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// ProductFilter narrows a product listing. Zero fields do not filter.
type ProductFilter struct {
	Category  Category
	StockBand StockBand
}
