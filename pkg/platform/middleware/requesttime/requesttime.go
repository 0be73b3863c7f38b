// Package requesttime pins "now" for the lifetime of a request so every
// event published by one call carries the same timestamp.
package requesttime

import (
	"net/http"
	"time"

	"idbridge/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
