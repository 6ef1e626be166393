package middleware

import (
	"fmt"
	"net/http"

	apperrors "roombook/pkg/errors"
)

const CodeRequestTooLarge = "REQUEST_TOO_LARGE"

// MaxRequestSize rejects declared bodies over limit and caps the rest, so a
// handler decoding an oversized chunked body fails instead of buffering it.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = apperrors.WriteError(w, apperrors.New(
					CodeRequestTooLarge,
					fmt.Sprintf("Request body must not exceed %d bytes", limit),
					http.StatusRequestEntityTooLarge,
				))
				return
			}

			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
