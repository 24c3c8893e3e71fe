package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/service"
	"github.com/tuanvumaihuynh/game-store/pkg/ptr"
)

type productResponse struct {
	model.Product
	StockStatus model.StockStatus `json:"stock_status"`
}

type productHandler struct {
	catalog service.ProductCatalog
}

func newProductHandler(catalog service.ProductCatalog) *productHandler {
	return &productHandler{
		catalog: catalog,
	}
}

func (h *productHandler) toResponse(p model.Product) productResponse {
	return productResponse{
		Product:     p,
		StockStatus: p.StockStatus(h.catalog.LowStockThreshold()),
	}
}

func (h *productHandler) toResponses(products []model.Product) []productResponse {
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, h.toResponse(p))
	}
	return items
}

// List serves search, filter and plain listing. When both a term and a
// filter are given the result is their intersection in search order.
func (h *productHandler) List(w http.ResponseWriter, r *http.Request) error {
	var (
		term     *string
		category *string
		stock    *string
	)
	query := r.URL.Query()
	for name, dest := range map[string]**string{"term": &term, "category": &category, "stock": &stock} {
		if err := bindQuery(query, name, dest); err != nil {
			return err
		}
	}

	filter := model.ProductFilter{Category: model.Category(ptr.ValueOr(category, ""))}
	if err := filter.StockBand.UnmarshalText([]byte(ptr.ValueOr(stock, ""))); err != nil {
		return apperr.ValidationErr.WithDetails("stock: must be one of [any low out]").WrapParent(err)
	}
	filtered := filter != model.ProductFilter{}

	var (
		products []model.Product
		err      error
	)
	switch {
	case term != nil && filtered:
		products, err = h.searchAndFilter(r, *term, filter)
	case term != nil:
		products, err = h.catalog.Search(r.Context(), *term)
	case filtered:
		products, err = h.catalog.Filter(r.Context(), filter)
	default:
		products, err = h.catalog.List(r.Context())
	}
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	writeJSON(w, http.StatusOK, h.toResponses(products))
	return nil
}

func (h *productHandler) searchAndFilter(r *http.Request, term string, filter model.ProductFilter) ([]model.Product, error) {
	matched, err := h.catalog.Filter(r.Context(), filter)
	if err != nil {
		return nil, fmt.Errorf("catalog filter: %w", err)
	}
	keep := make(map[uuid.UUID]struct{}, len(matched))
	for _, p := range matched {
		keep[p.ID] = struct{}{}
	}

	found, err := h.catalog.Search(r.Context(), term)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	products := make([]model.Product, 0, len(found))
	for _, p := range found {
		if _, ok := keep[p.ID]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (h *productHandler) LowStock(w http.ResponseWriter, r *http.Request) error {
	var threshold *int
	if err := bindQuery(r.URL.Query(), "threshold", &threshold); err != nil {
		return err
	}

	limit := ptr.ValueOr(threshold, h.catalog.LowStockThreshold())
	if limit < 1 {
		return apperr.ValidationErr.WithDetails("threshold: must be at least 1")
	}

	products, err := h.catalog.LowStock(r.Context(), limit)
	if err != nil {
		return fmt.Errorf("catalog low stock: %w", err)
	}

	writeJSON(w, http.StatusOK, h.toResponses(products))
	return nil
}

func (h *productHandler) Get(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	product, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		return fmt.Errorf("catalog find product: %w", err)
	}

	writeJSON(w, http.StatusOK, h.toResponse(product))
	return nil
}

func (h *productHandler) Create(w http.ResponseWriter, r *http.Request) error {
	var in model.ProductInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}

	product, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		return fmt.Errorf("catalog create product: %w", err)
	}

	writeJSON(w, http.StatusCreated, h.toResponse(product))
	return nil
}

func (h *productHandler) Update(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var in model.ProductInput
	if err := decodeBody(w, r, &in); err != nil {
		return err
	}

	product, err := h.catalog.Update(r.Context(), id, in)
	if err != nil {
		return fmt.Errorf("catalog update product: %w", err)
	}

	writeJSON(w, http.StatusOK, h.toResponse(product))
	return nil
}

func (h *productHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("catalog delete product: %w", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
