package validator_test

import (
	"errors"
	"fmt"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/game-store/pkg/ptr"
	"github.com/tuanvumaihuynh/game-store/pkg/validator"
)

type color string

func (c color) Validate() error {
	switch c {
	case "red", "blue":
		return nil
	default:
		return fmt.Errorf("unknown color %q", string(c))
	}
}

type payload struct {
	Label string   `json:"label" validate:"required,min=2,max=5"`
	Color color    `json:"color" validate:"required,enum"`
	Count *float64 `json:"count" validate:"required,gte=0,lte=10,integer"`
}

func validPayload() payload {
	return payload{Label: "box", Color: "red", Count: ptr.New(3.0)}
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()

	var fieldErrs govalidator.ValidationErrors
	require.True(t, errors.As(err, &fieldErrs), err)

	msgs := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs[fe.Field()] = validator.ValidationErrorMessage(fe)
	}
	return msgs
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should accept a valid payload", func(t *testing.T) {
		assert.NoError(t, v.Validate(validPayload()))
	})

	testCases := []struct {
		name          string
		mutate        func(p *payload)
		expectField   string
		expectMessage string
	}{
		{
			name:          "Should report missing fields by json name",
			mutate:        func(p *payload) { p.Count = nil },
			expectField:   "count",
			expectMessage: "field is required",
		},
		{
			name:          "Should report string length in characters",
			mutate:        func(p *payload) { p.Label = "toolong" },
			expectField:   "label",
			expectMessage: "must be at most 5 characters long",
		},
		{
			name:          "Should reject values outside the enum",
			mutate:        func(p *payload) { p.Color = "green" },
			expectField:   "color",
			expectMessage: "invalid enum value: green",
		},
		{
			name:          "Should reject fractional numbers",
			mutate:        func(p *payload) { p.Count = ptr.New(2.5) },
			expectField:   "count",
			expectMessage: "must be a whole number",
		},
		{
			name:          "Should reject numbers below the lower bound",
			mutate:        func(p *payload) { p.Count = ptr.New(-1.0) },
			expectField:   "count",
			expectMessage: "must be greater than or equal to 0",
		},
		{
			name:          "Should reject whole numbers above the upper bound",
			mutate:        func(p *payload) { p.Count = ptr.New(1e19) },
			expectField:   "count",
			expectMessage: "must be less than or equal to 10",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			p := validPayload()
			tc.mutate(&p)
			// when
			err := v.Validate(p)
			// then
			msgs := fieldMessages(t, err)
			assert.Len(t, msgs, 1)
			assert.Equal(t, tc.expectMessage, msgs[tc.expectField])
		})
	}
}
