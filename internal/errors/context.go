package errors

import (
	"context"

	"github.com/google/uuid"
)

// maxRequestIDLen bounds a caller-supplied X-Request-ID. Longer or oddly
// shaped values are replaced so they cannot bloat or forge log lines.
const maxRequestIDLen = 64

type requestIDKey struct{}

// NewRequestID returns a random UUIDv4 for a lookup that arrived without a
// usable X-Request-ID.
func NewRequestID() string {
	return uuid.NewString()
}

// WithRequestID returns ctx carrying requestID; the logger and the error
// writers read it back with GetRequestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// validRequestID accepts 1-64 characters from [A-Za-z0-9._-].
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}
