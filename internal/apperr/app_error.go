package apperr

import "github.com/tuanvumaihuynh/game-store/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
	SaleNotFoundCode      = "SALE_NOT_FOUND"
	InsufficientStockCode = "INSUFFICIENT_STOCK"
	ProductHasSalesCode   = "PRODUCT_HAS_SALES"
	StoreUnavailableCode  = "STORE_UNAVAILABLE"
)

var (
	ValidationErr        = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr   = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	SaleNotFoundErr      = zerror.NewNotFound(SaleNotFoundCode, "sale not found")
	InsufficientStockErr = zerror.NewUnprocessableEntity(InsufficientStockCode, "insufficient stock")
	ProductHasSalesErr   = zerror.NewConflict(ProductHasSalesCode, "product has sales and cannot be deleted")
	StoreUnavailableErr  = zerror.NewServiceUnavailable(StoreUnavailableCode, "store unavailable")
)
