package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/game-store/internal/apperr"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

// decodeBody decodes a JSON request body into dst. Malformed bodies are
// reported as apperr.ValidationErr.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		maxErr    *http.MaxBytesError
		detail    string
	)
	switch {
	case errors.Is(err, io.EOF):
		detail = "body: request body is required"
	case errors.As(err, &typeErr):
		detail = fmt.Sprintf("%s: must be a %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		detail = "body: malformed JSON"
	case errors.As(err, &maxErr):
		detail = fmt.Sprintf("body: must be at most %d bytes", maxErr.Limit)
	default:
		detail = "body: " + err.Error()
	}

	return apperr.ValidationErr.WithDetails(detail).WrapParent(err)
}

// pathID parses the id URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WithDetails("id: must be a valid UUID").WrapParent(err)
	}

	return id, nil
}

// bindQuery binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer.
func bindQuery(query url.Values, name string, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
		return apperr.ValidationErr.WithDetails(fmt.Sprintf("%s: is invalid", name)).WrapParent(err)
	}

	return nil
}
