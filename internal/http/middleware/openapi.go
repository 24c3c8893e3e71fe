package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
	"github.com/tuanvumaihuynh/game-store/internal/http/apierr"
)

// OpenAPIValidator checks path and query parameters against the API contract.
// Requests that match no documented operation pass through untouched. Bodies
// are left to the payload validator so that field errors keep one format.
func OpenAPIValidator(router routers.Router) func(http.Handler) http.Handler {
	opts := &openapi3filter.Options{
		ExcludeRequestBody:    true,
		ExcludeResponseBody:   true,
		IncludeResponseStatus: false,
		MultiError:            true,
		AuthenticationFunc:    openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			if err := openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			}); err != nil {
				res := apierr.New(apperr.ValidationErr.WithDetails(requestErrorDetails(err)...).WrapParent(err))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(res.StatusCode)
				//nolint:errcheck
				json.NewEncoder(w).Encode(res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestErrorDetails(err error) []string {
	if multi, ok := err.(openapi3.MultiError); ok {
		details := make([]string, 0, len(multi))
		for _, e := range multi {
			details = append(details, requestErrorDetails(e)...)
		}
		return details
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Parameter != nil {
		return []string{fmt.Sprintf("%s: %s", reqErr.Parameter.Name, reason(reqErr))}
	}

	return []string{err.Error()}
}

func reason(reqErr *openapi3filter.RequestError) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(reqErr.Err, &schemaErr) {
		return schemaErr.Reason
	}
	if reqErr.Reason != "" {
		return reqErr.Reason
	}
	if reqErr.Err != nil {
		return reqErr.Err.Error()
	}
	return "is invalid"
}
