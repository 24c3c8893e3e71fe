// Package validation checks candidate product and sale payloads against
// field level rules. It performs no I/O and never looks at live stock.
package validation

import (
	"errors"
	"fmt"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/model"
	"github.com/tuanvumaihuynh/game-store/pkg/validator"
)

// Result is the outcome of validating a payload.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Err returns nil for a valid result and apperr.ValidationErr carrying
// every field error otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return apperr.ValidationErr.WithDetails(r.Errors...)
}

type Validator struct {
	v validator.Validator
}

// New creates a payload validator.
func New() (*Validator, error) {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return nil, fmt.Errorf("new default validator: %w", err)
	}

	return &Validator{v: v}, nil
}

// ValidateProduct validates the normalized form of a product payload.
func (v *Validator) ValidateProduct(in model.ProductInput) Result {
	return v.validate(in.Normalize())
}

// ValidateSale validates the normalized form of a sale payload.
func (v *Validator) ValidateSale(in model.SaleInput) Result {
	return v.validate(in.Normalize())
}

func (v *Validator) validate(s any) Result {
	err := v.v.Validate(s)
	if err == nil {
		return Result{Valid: true, Errors: []string{}}
	}

	var validationErrs govalidator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Result{Valid: false, Errors: []string{err.Error()}}
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), validator.ValidationErrorMessage(fe)))
	}

	return Result{Valid: false, Errors: msgs}
}
