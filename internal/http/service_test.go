package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/config"
	httpsvc "github.com/tuanvumaihuynh/game-store/internal/http"
	"github.com/tuanvumaihuynh/game-store/internal/http/apierr"
	"github.com/tuanvumaihuynh/game-store/internal/log"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/service"
	"github.com/tuanvumaihuynh/game-store/internal/store"
	"github.com/tuanvumaihuynh/game-store/internal/validation"
)

type productBody struct {
	model.Product
	StockStatus model.StockStatus `json:"stock_status"`
}

type unhealthyStore struct{}

func (unhealthyStore) IsHealthy(context.Context) (bool, error) { return false, nil }

func newHandler(t *testing.T) http.Handler {
	t.Helper()

	v, err := validation.New()
	require.NoError(t, err)

	st := store.NewMemory()
	locks := service.NewStockLocks()
	logger := log.Discard()

	svc, err := httpsvc.New(
		config.HTTP{Swagger: true},
		logger,
		service.NewProductCatalog(config.Catalog{LowStockThreshold: 5}, logger, v, st, locks),
		service.NewSaleLedger(logger, v, st, locks),
		service.NewStatisticsService(st),
		nil,
	)
	require.NoError(t, err)

	return svc.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func createProduct(t *testing.T, h http.Handler, name string, category model.Category, price float64, stock int) productBody {
	t.Helper()

	resp := do(t, h, http.MethodPost, "/api/v1/products", map[string]any{
		"name":           name,
		"category":       category,
		"unit_price":     price,
		"stock_quantity": stock,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	return decode[productBody](t, resp)
}

func createSale(t *testing.T, h http.Handler, productID string, quantity int) *httptest.ResponseRecorder {
	t.Helper()

	return do(t, h, http.MethodPost, "/api/v1/sales", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	})
}

func TestProductRoutes(t *testing.T) {
	t.Run("Should create and fetch a product with its stock status", func(t *testing.T) {
		// given
		h := newHandler(t)

		// when
		created := createProduct(t, h, "  Zelda  ", model.CategoryGame, 59.99, 3)
		resp := do(t, h, http.MethodGet, "/api/v1/products/"+created.ID.String(), nil)

		// then
		require.Equal(t, http.StatusOK, resp.Code)
		got := decode[productBody](t, resp)
		assert.Equal(t, "Zelda", got.Name)
		assert.Equal(t, model.StockStatusLow, got.StockStatus)
		assert.Equal(t, 3, got.StockQuantity)
	})

	t.Run("Should report every field error of an invalid payload", func(t *testing.T) {
		// given
		h := newHandler(t)

		// when
		resp := do(t, h, http.MethodPost, "/api/v1/products", map[string]any{"unit_price": -1})

		// then
		require.Equal(t, http.StatusBadRequest, resp.Code)
		res := decode[apierr.ErrorResponse](t, resp)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		assert.Contains(t, res.Details, "name: field is required")
		assert.Contains(t, res.Details, "category: field is required")
		assert.Contains(t, res.Details, "stock_quantity: field is required")
	})

	t.Run("Should reject malformed JSON", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodPost, "/api/v1/products", `{"name": `)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		res := decode[apierr.ErrorResponse](t, resp)
		assert.Equal(t, []string{"body: malformed JSON"}, res.Details)
	})

	t.Run("Should reject a field of the wrong type", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodPost, "/api/v1/products", `{"name": 5}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		res := decode[apierr.ErrorResponse](t, resp)
		assert.Equal(t, []string{"name: must be a string"}, res.Details)
	})

	t.Run("Should reject a stock quantity beyond the integer range", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodPost, "/api/v1/products",
			`{"name": "Controller", "category": "console", "unit_price": 50, "stock_quantity": 1e19}`)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		res := decode[apierr.ErrorResponse](t, resp)
		assert.Equal(t, []string{"stock_quantity: must be less than or equal to 2147483647"}, res.Details)

		list := do(t, h, http.MethodGet, "/api/v1/products", nil)
		assert.Empty(t, decode[[]productBody](t, list))
	})

	t.Run("Should return not found for an unknown product", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/api/v1/products/0190b3c4-8e8f-7a4c-9a8e-6b1d2c3e4f50", nil)

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, apperr.ProductNotFoundCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should reject a malformed product id", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodDelete, "/api/v1/products/not-a-uuid", nil)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.ValidationErrorCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should update a product", func(t *testing.T) {
		// given
		h := newHandler(t)
		created := createProduct(t, h, "Zelda", model.CategoryGame, 59.99, 3)

		// when
		resp := do(t, h, http.MethodPut, "/api/v1/products/"+created.ID.String(), map[string]any{
			"name":           "Zelda Deluxe",
			"category":       "game",
			"unit_price":     69.99,
			"stock_quantity": 10,
		})

		// then
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		got := decode[productBody](t, resp)
		assert.Equal(t, "Zelda Deluxe", got.Name)
		assert.Equal(t, model.StockStatusOK, got.StockStatus)
	})

	t.Run("Should search and filter the catalog", func(t *testing.T) {
		// given
		h := newHandler(t)
		createProduct(t, h, "Mario Kart", model.CategoryGame, 49.99, 20)
		createProduct(t, h, "Mario Party", model.CategoryGame, 39.99, 2)
		createProduct(t, h, "Switch Console", model.CategoryConsole, 299.99, 0)

		testCases := []struct {
			name   string
			query  string
			expect []string
		}{
			{name: "no query", query: "", expect: []string{"Mario Kart", "Mario Party", "Switch Console"}},
			{name: "term", query: "?term=mario", expect: []string{"Mario Kart", "Mario Party"}},
			{name: "short term", query: "?term=m", expect: []string{"Mario Kart", "Mario Party", "Switch Console"}},
			{name: "category", query: "?category=console", expect: []string{"Switch Console"}},
			{name: "out of stock", query: "?stock=out", expect: []string{"Switch Console"}},
			{name: "term and stock band", query: "?term=mario&stock=low", expect: []string{"Mario Party"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				resp := do(t, h, http.MethodGet, "/api/v1/products"+tc.query, nil)

				require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
				names := make([]string, 0)
				for _, p := range decode[[]productBody](t, resp) {
					names = append(names, p.Name)
				}
				assert.Equal(t, tc.expect, names)
			})
		}
	})

	t.Run("Should reject an unknown stock band", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/api/v1/products?stock=plenty", nil)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.ValidationErrorCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should list low stock products with a custom threshold", func(t *testing.T) {
		// given
		h := newHandler(t)
		createProduct(t, h, "Zelda", model.CategoryGame, 59.99, 7)
		createProduct(t, h, "Pad", model.CategoryConsole, 19.99, 0)

		// when
		defaultResp := do(t, h, http.MethodGet, "/api/v1/products/low-stock", nil)
		customResp := do(t, h, http.MethodGet, "/api/v1/products/low-stock?threshold=8", nil)

		// then
		require.Equal(t, http.StatusOK, defaultResp.Code)
		assert.Empty(t, decode[[]productBody](t, defaultResp))
		require.Equal(t, http.StatusOK, customResp.Code)
		products := decode[[]productBody](t, customResp)
		require.Len(t, products, 1)
		assert.Equal(t, "Zelda", products[0].Name)
	})

	t.Run("Should reject a threshold below one", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/api/v1/products/low-stock?threshold=0", nil)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.ValidationErrorCode, decode[apierr.ErrorResponse](t, resp).Code)
	})
}

func TestSaleRoutes(t *testing.T) {
	t.Run("Should record a sale and decrement the stock", func(t *testing.T) {
		// given
		h := newHandler(t)
		product := createProduct(t, h, "Zelda", model.CategoryGame, 10, 5)

		// when
		resp := createSale(t, h, product.ID.String(), 2)

		// then
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		sale := decode[model.Sale](t, resp)
		assert.Equal(t, product.ID, sale.ProductID)
		assert.InDelta(t, 20.0, sale.Total, 1e-9)

		got := decode[productBody](t, do(t, h, http.MethodGet, "/api/v1/products/"+product.ID.String(), nil))
		assert.Equal(t, 3, got.StockQuantity)
	})

	t.Run("Should refuse a sale beyond the stock", func(t *testing.T) {
		// given
		h := newHandler(t)
		product := createProduct(t, h, "Zelda", model.CategoryGame, 10, 1)

		// when
		resp := createSale(t, h, product.ID.String(), 2)

		// then
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Equal(t, apperr.InsufficientStockCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should reject a sale quantity beyond the integer range", func(t *testing.T) {
		// given
		h := newHandler(t)
		product := createProduct(t, h, "Zelda", model.CategoryGame, 10, 3)

		// when
		resp := do(t, h, http.MethodPost, "/api/v1/sales",
			`{"product_id": "`+product.ID.String()+`", "quantity": 1e19}`)

		// then
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.ValidationErrorCode, decode[apierr.ErrorResponse](t, resp).Code)
		got := decode[productBody](t, do(t, h, http.MethodGet, "/api/v1/products/"+product.ID.String(), nil))
		assert.Equal(t, 3, got.StockQuantity)
	})

	t.Run("Should refuse a sale of an unknown product", func(t *testing.T) {
		h := newHandler(t)

		resp := createSale(t, h, "0190b3c4-8e8f-7a4c-9a8e-6b1d2c3e4f50", 1)

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, apperr.ProductNotFoundCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should delete a sale and restore the stock", func(t *testing.T) {
		// given
		h := newHandler(t)
		product := createProduct(t, h, "Zelda", model.CategoryGame, 10, 5)
		sale := decode[model.Sale](t, createSale(t, h, product.ID.String(), 4))

		// when
		resp := do(t, h, http.MethodDelete, "/api/v1/sales/"+sale.ID.String(), nil)

		// then
		require.Equal(t, http.StatusNoContent, resp.Code)
		got := decode[productBody](t, do(t, h, http.MethodGet, "/api/v1/products/"+product.ID.String(), nil))
		assert.Equal(t, 5, got.StockQuantity)
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/sales/"+sale.ID.String(), nil).Code)
	})

	t.Run("Should refuse to delete a product that has sales", func(t *testing.T) {
		// given
		h := newHandler(t)
		product := createProduct(t, h, "Zelda", model.CategoryGame, 10, 5)
		require.Equal(t, http.StatusCreated, createSale(t, h, product.ID.String(), 1).Code)

		// when
		resp := do(t, h, http.MethodDelete, "/api/v1/products/"+product.ID.String(), nil)

		// then
		require.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, apperr.ProductHasSalesCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should filter sales by product", func(t *testing.T) {
		// given
		h := newHandler(t)
		zelda := createProduct(t, h, "Zelda", model.CategoryGame, 10, 5)
		mario := createProduct(t, h, "Mario", model.CategoryGame, 20, 5)
		require.Equal(t, http.StatusCreated, createSale(t, h, zelda.ID.String(), 1).Code)
		require.Equal(t, http.StatusCreated, createSale(t, h, mario.ID.String(), 1).Code)

		// when
		resp := do(t, h, http.MethodGet, "/api/v1/sales?product_id="+mario.ID.String(), nil)

		// then
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		sales := decode[[]model.Sale](t, resp)
		require.Len(t, sales, 1)
		assert.Equal(t, mario.ID, sales[0].ProductID)
	})

	t.Run("Should reject an inverted date range", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/api/v1/sales?from=2024-01-02T00:00:00Z&to=2024-01-01T00:00:00Z", nil)

		require.Equal(t, http.StatusBadRequest, resp.Code)
		res := decode[apierr.ErrorResponse](t, resp)
		assert.Equal(t, []string{"from: must not be after to"}, res.Details)
	})

	t.Run("Should summarize the sales", func(t *testing.T) {
		// given
		h := newHandler(t)
		zelda := createProduct(t, h, "Zelda", model.CategoryGame, 10, 5)
		mario := createProduct(t, h, "Mario", model.CategoryGame, 20, 5)
		require.Equal(t, http.StatusCreated, createSale(t, h, zelda.ID.String(), 3).Code)
		require.Equal(t, http.StatusCreated, createSale(t, h, mario.ID.String(), 1).Code)

		// when
		resp := do(t, h, http.MethodGet, "/api/v1/sales/statistics", nil)

		// then
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		stats := decode[model.Stats](t, resp)
		assert.InDelta(t, 50.0, stats.TotalRevenue, 1e-9)
		assert.Equal(t, 4, stats.TotalUnits)
		assert.Equal(t, 2, stats.SaleCount)
		assert.Equal(t, 2, stats.SalesToday)
		require.NotNil(t, stats.TopProduct)
		assert.Equal(t, "Zelda", stats.TopProduct.ProductName)
	})
}

func TestOperationalRoutes(t *testing.T) {
	t.Run("Should report healthy without a remote store", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/healthz", nil)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
	})

	t.Run("Should report an unhealthy store", func(t *testing.T) {
		v, err := validation.New()
		require.NoError(t, err)
		st := store.NewMemory()
		locks := service.NewStockLocks()
		logger := log.Discard()
		svc, err := httpsvc.New(config.HTTP{}, logger,
			service.NewProductCatalog(config.Catalog{}, logger, v, st, locks),
			service.NewSaleLedger(logger, v, st, locks),
			service.NewStatisticsService(st),
			unhealthyStore{},
		)
		require.NoError(t, err)

		resp := do(t, svc.Handler(), http.MethodGet, "/healthz", nil)

		require.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.Equal(t, apperr.StoreUnavailableCode, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should expose prometheus metrics", func(t *testing.T) {
		h := newHandler(t)
		do(t, h, http.MethodGet, "/api/v1/products", nil)

		resp := do(t, h, http.MethodGet, "/metrics", nil)

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "game_store_http_requests_total")
	})

	t.Run("Should answer unknown routes with JSON", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/api/v1/unknown", nil)

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, apierr.NotFoundErr.Code, decode[apierr.ErrorResponse](t, resp).Code)
	})

	t.Run("Should serve the API docs", func(t *testing.T) {
		h := newHandler(t)

		resp := do(t, h, http.MethodGet, "/docs/openapi.yml", nil)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "/api/v1/products")
	})
}
