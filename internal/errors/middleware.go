package errors

import (
	"net/http"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID: the caller's
// X-Request-ID when it is well formed, a fresh UUID otherwise. The ID is
// echoed back and stored in the context for logs and error bodies.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = NewRequestID()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// Handler is an endpoint that reports failure by returning an error
// instead of writing it.
type Handler func(w http.ResponseWriter, r *http.Request) error

// HandleFunc adapts h to net/http. A returned error is written as the flat
// {"error","message"} body; anything that is not an *AppError becomes the
// generic 500 so internal detail never reaches the client.
func HandleFunc(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, GetRequestID(r.Context()), err)
		}
	}
}
