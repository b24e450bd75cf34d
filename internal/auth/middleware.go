package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
)

type contextKey string

const SubjectContextKey contextKey = "subject"

// Middleware rejects requests without a valid bearer token. Preflight
// requests pass through so CORS keeps working.
func Middleware(authService *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			requestID := apperrors.GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("Missing authorization header."))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("Invalid authorization header format."))
				return
			}

			claims, err := authService.ValidateAccessToken(strings.TrimSpace(parts[1]))
			if err != nil {
				if errors.Is(err, ErrTokenExpired) {
					apperrors.WriteError(w, requestID, apperrors.Unauthorized("Access token has expired."))
					return
				}
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("Invalid access token."))
				return
			}

			ctx := context.WithValue(r.Context(), SubjectContextKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(SubjectContextKey).(string)
	return subject
}
