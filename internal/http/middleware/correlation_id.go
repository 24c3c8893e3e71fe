package middleware

import (
	"net/http"

	"github.com/tuanvumaihuynh/game-store/pkg/correlationid"
)

const maxCorrelationIDLength = 128

// CorrelationID propagates the X-Correlation-ID request header, generating
// one when absent, and echoes it on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" || len(id) > maxCorrelationIDLength {
				id = correlationid.New()
			}

			w.Header().Set(correlationid.Header, id)
			next.ServeHTTP(w, r.WithContext(correlationid.NewContext(r.Context(), id)))
		})
	}
}
