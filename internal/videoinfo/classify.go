package videoinfo

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
	"github.com/openmusicplayer/videoinfo/internal/extractor"
)

const errorPrefix = "ERROR:"

// unsupportedPlatform builds the client message naming the supported platforms.
func unsupportedPlatform(names []string) *apperrors.AppError {
	return apperrors.InvalidURL("Unsupported platform. Supported platforms: " + strings.Join(names, ", ") + ".")
}

// classifyExtractionError maps an extractor failure onto the public error
// taxonomy. Anything that is not an *extractor.Error or a deadline is an
// internal failure and surfaces only as a generic 500.
func classifyExtractionError(err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.FetchFailed(apperrors.MsgExtractionTimeout).WithCause(err)
	}

	var extErr *extractor.Error
	if !errors.As(err, &extErr) {
		return apperrors.InternalError().WithCause(err)
	}

	switch extErr.Kind {
	case extractor.KindPrivate, extractor.KindUnavailable:
		return apperrors.FetchFailed(apperrors.MsgPrivateOrGone).WithCause(err)
	case extractor.KindNotFound:
		return apperrors.FetchFailed(apperrors.MsgNotFound).WithCause(err)
	}

	return apperrors.FetchFailed(messageFromReason(extErr.Error())).WithCause(err)
}

// messageFromReason applies the free-text rules to an extractor reason.
// These substring checks are heuristic: they depend on the extractor's
// wording and only run when no structured kind matched.
func messageFromReason(reason string) string {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "private") || strings.Contains(lower, "unavailable"):
		return apperrors.MsgPrivateOrGone
	case strings.Contains(lower, "not found"):
		return apperrors.MsgNotFound
	}

	msg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(reason), errorPrefix))
	if msg == "" {
		return "Failed to fetch video information"
	}
	return msg
}
