package validation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/internal/validation"
	"github.com/tuanvumaihuynh/game-store/pkg/ptr"
)

func validProduct() model.ProductInput {
	return model.ProductInput{
		Name:          "Controller",
		Category:      model.CategoryConsole,
		UnitPrice:     ptr.New(50.0),
		StockQuantity: ptr.New(3.0),
		Description:   "wireless",
	}
}

func TestValidateProduct(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	testCases := []struct {
		name        string
		mutate      func(in *model.ProductInput)
		expectField string
	}{
		{name: "valid product", mutate: func(*model.ProductInput) {}},
		{name: "zero price is allowed", mutate: func(in *model.ProductInput) { in.UnitPrice = ptr.New(0.0) }},
		{name: "zero stock is allowed", mutate: func(in *model.ProductInput) { in.StockQuantity = ptr.New(0.0) }},
		{name: "price at cap is allowed", mutate: func(in *model.ProductInput) { in.UnitPrice = ptr.New(1_000_000.0) }},
		{name: "missing name", mutate: func(in *model.ProductInput) { in.Name = "" }, expectField: "name"},
		{name: "name too short after trim", mutate: func(in *model.ProductInput) { in.Name = "  a  " }, expectField: "name"},
		{name: "name too long", mutate: func(in *model.ProductInput) { in.Name = strings.Repeat("x", 101) }, expectField: "name"},
		{name: "missing category", mutate: func(in *model.ProductInput) { in.Category = "" }, expectField: "category"},
		{name: "unknown category", mutate: func(in *model.ProductInput) { in.Category = "accessory" }, expectField: "category"},
		{name: "missing price", mutate: func(in *model.ProductInput) { in.UnitPrice = nil }, expectField: "unit_price"},
		{name: "negative price", mutate: func(in *model.ProductInput) { in.UnitPrice = ptr.New(-1.0) }, expectField: "unit_price"},
		{name: "price over cap", mutate: func(in *model.ProductInput) { in.UnitPrice = ptr.New(1_000_000.01) }, expectField: "unit_price"},
		{name: "missing quantity", mutate: func(in *model.ProductInput) { in.StockQuantity = nil }, expectField: "stock_quantity"},
		{name: "negative quantity", mutate: func(in *model.ProductInput) { in.StockQuantity = ptr.New(-1.0) }, expectField: "stock_quantity"},
		{name: "fractional quantity", mutate: func(in *model.ProductInput) { in.StockQuantity = ptr.New(2.5) }, expectField: "stock_quantity"},
		{name: "quantity at cap is allowed", mutate: func(in *model.ProductInput) { in.StockQuantity = ptr.New(float64(model.MaxQuantity)) }},
		{name: "quantity over cap", mutate: func(in *model.ProductInput) { in.StockQuantity = ptr.New(float64(model.MaxQuantity) + 1) }, expectField: "stock_quantity"},
		{name: "quantity beyond integer range", mutate: func(in *model.ProductInput) { in.StockQuantity = ptr.New(1e19) }, expectField: "stock_quantity"},
		{name: "description too long", mutate: func(in *model.ProductInput) { in.Description = strings.Repeat("d", 501) }, expectField: "description"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			in := validProduct()
			tc.mutate(&in)
			// when
			res := v.ValidateProduct(in)
			// then
			if tc.expectField == "" {
				assert.True(t, res.Valid)
				assert.Empty(t, res.Errors)
				assert.NoError(t, res.Err())
				return
			}
			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.True(t, strings.HasPrefix(res.Errors[0], tc.expectField+":"), res.Errors[0])
			assert.ErrorIs(t, res.Err(), apperr.ValidationErr)
		})
	}
}

func TestValidateProductCollectsEveryError(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	res := v.ValidateProduct(model.ProductInput{})

	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 4)
}

func TestValidateSale(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	testCases := []struct {
		name        string
		input       model.SaleInput
		expectField string
	}{
		{name: "valid sale", input: model.SaleInput{ProductID: "p-1", Quantity: ptr.New(1.0)}},
		{name: "missing product", input: model.SaleInput{ProductID: "  ", Quantity: ptr.New(1.0)}, expectField: "product_id"},
		{name: "missing quantity", input: model.SaleInput{ProductID: "p-1"}, expectField: "quantity"},
		{name: "zero quantity", input: model.SaleInput{ProductID: "p-1", Quantity: ptr.New(0.0)}, expectField: "quantity"},
		{name: "fractional quantity", input: model.SaleInput{ProductID: "p-1", Quantity: ptr.New(1.5)}, expectField: "quantity"},
		{name: "quantity at cap", input: model.SaleInput{ProductID: "p-1", Quantity: ptr.New(float64(model.MaxQuantity))}},
		{name: "quantity beyond integer range", input: model.SaleInput{ProductID: "p-1", Quantity: ptr.New(1e19)}, expectField: "quantity"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := v.ValidateSale(tc.input)

			if tc.expectField == "" {
				assert.True(t, res.Valid)
				return
			}
			assert.False(t, res.Valid)
			require.Len(t, res.Errors, 1)
			assert.True(t, strings.HasPrefix(res.Errors[0], tc.expectField+":"), res.Errors[0])
		})
	}
}

func TestValidateQuantityCap(t *testing.T) {
	v, err := validation.New()
	require.NoError(t, err)

	t.Run("Should name the cap for an oversized stock quantity", func(t *testing.T) {
		in := validProduct()
		in.StockQuantity = ptr.New(1e19)

		res := v.ValidateProduct(in)

		assert.Equal(t, []string{"stock_quantity: must be less than or equal to 2147483647"}, res.Errors)
	})

	t.Run("Should name the cap for an oversized sale quantity", func(t *testing.T) {
		res := v.ValidateSale(model.SaleInput{ProductID: "p-1", Quantity: ptr.New(1e19)})

		assert.Equal(t, []string{"quantity: must be less than or equal to 2147483647"}, res.Errors)
	})
}
