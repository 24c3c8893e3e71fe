package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/game-store/api-contract"
	"github.com/tuanvumaihuynh/game-store/internal/http/swagger"
)

func TestSwaggerDocsRoute(t *testing.T) {
	r := chi.NewRouter()
	swagger.Register(r)

	t.Run("Should get docs successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, swagger.DocsPath, nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("Should get openapi.yml successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, swagger.SpecPath, nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/yaml")
	})
}

func TestAPIContract(t *testing.T) {
	t.Run("Should load a valid OpenAPI document", func(t *testing.T) {
		doc, err := apicontract.Load()
		require.NoError(t, err)

		assert.Empty(t, doc.Servers)
		for _, path := range []string{
			"/api/v1/products",
			"/api/v1/products/low-stock",
			"/api/v1/products/{id}",
			"/api/v1/sales",
			"/api/v1/sales/statistics",
			"/api/v1/sales/{id}",
		} {
			assert.NotNil(t, doc.Paths.Find(path), path)
		}
	})
}
