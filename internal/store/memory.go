package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
)

var _ Store = (*Memory)(nil)

// Memory is an in-process Store. Products and sales are kept in insertion order.
type Memory struct {
	mu       sync.RWMutex
	products []model.Product
	sales    []model.Sale
	now      func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.products), nil
}

func (m *Memory) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.productIndex(id)
	if i < 0 {
		return model.Product{}, apperr.ProductNotFoundErr
	}
	return m.products[i], nil
}

func (m *Memory) CreateProduct(_ context.Context, params ProductParams) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
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
	m.products = append(m.products, product)

	return product, nil
}

func (m *Memory) UpdateProduct(_ context.Context, id uuid.UUID, params ProductParams) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.productIndex(id)
	if i < 0 {
		return model.Product{}, apperr.ProductNotFoundErr
	}

	p := &m.products[i]
	p.Name = params.Name
	p.Category = params.Category
	p.UnitPrice = params.UnitPrice
	p.StockQuantity = params.StockQuantity
	p.Description = params.Description
	p.UpdatedAt = m.now()

	return *p, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.productIndex(id)
	if i < 0 {
		return apperr.ProductNotFoundErr
	}
	m.products = slices.Delete(m.products, i, i+1)

	return nil
}

func (m *Memory) SearchProducts(_ context.Context, term string) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	term = strings.ToLower(term)
	products := make([]model.Product, 0)
	for _, p := range m.products {
		if strings.Contains(strings.ToLower(p.Name), term) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *Memory) ListLowStockProducts(_ context.Context, threshold int) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]model.Product, 0)
	for _, p := range m.products {
		if model.StockBandLow.Matches(p.StockQuantity, threshold) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *Memory) AdjustStock(_ context.Context, id uuid.UUID, delta int) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.productIndex(id)
	if i < 0 {
		return model.Product{}, apperr.ProductNotFoundErr
	}

	p := &m.products[i]
	switch {
	case delta < -p.StockQuantity:
		return model.Product{}, apperr.InsufficientStockErr.WithDetails(
			fmt.Sprintf("requested %d, available %d", -delta, p.StockQuantity))
	case delta > model.MaxQuantity-p.StockQuantity:
		return model.Product{}, apperr.ValidationErr.WithDetails(
			fmt.Sprintf("delta: stock must not exceed %d", model.MaxQuantity))
	}
	p.StockQuantity += delta
	p.UpdatedAt = m.now()

	return *p, nil
}

func (m *Memory) ListSales(_ context.Context) ([]model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.sales), nil
}

func (m *Memory) GetSale(_ context.Context, id uuid.UUID) (model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.saleIndex(id)
	if i < 0 {
		return model.Sale{}, apperr.SaleNotFoundErr
	}
	return m.sales[i], nil
}

func (m *Memory) CreateSale(_ context.Context, params SaleParams) (model.Sale, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	sale := model.Sale{
		ID:              id,
		ProductID:       params.ProductID,
		Quantity:        params.Quantity,
		UnitPriceAtSale: params.UnitPriceAtSale,
		Total:           params.Total,
		Timestamp:       m.now(),
	}
	m.sales = append(m.sales, sale)

	return sale, nil
}

func (m *Memory) DeleteSale(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.saleIndex(id)
	if i < 0 {
		return apperr.SaleNotFoundErr
	}
	m.sales = slices.Delete(m.sales, i, i+1)

	return nil
}

func (m *Memory) ListSalesByDateRange(_ context.Context, start, end time.Time) ([]model.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	filter := model.SaleFilter{From: &start, To: &end}
	sales := make([]model.Sale, 0)
	for _, s := range m.sales {
		if filter.Matches(s) {
			sales = append(sales, s)
		}
	}
	return sales, nil
}

func (m *Memory) CountSalesByProduct(_ context.Context, productID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, s := range m.sales {
		if s.ProductID == productID {
			count++
		}
	}
	return count, nil
}

func (m *Memory) productIndex(id uuid.UUID) int {
	return slices.IndexFunc(m.products, func(p model.Product) bool { return p.ID == id })
}

func (m *Memory) saleIndex(id uuid.UUID) int {
	return slices.IndexFunc(m.sales, func(s model.Sale) bool { return s.ID == id })
}
