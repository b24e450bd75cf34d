package ytdlp

import (
	"errors"
	"strings"

	"github.com/openmusicplayer/videoinfo/internal/extractor"
)

// ErrYtdlpNotFound indicates yt-dlp is not installed
var ErrYtdlpNotFound = errors.New("yt-dlp not found in PATH")

// categorizeError converts yt-dlp stderr into a structured extractor error.
// The reason is the last "ERROR:" line, kept verbatim.
func categorizeError(stderr string, cause error) *extractor.Error {
	reason := lastErrorLine(stderr)
	if reason == "" {
		reason = cause.Error()
	}
	lower := strings.ToLower(reason)

	// Private, unavailable and not-found match the same substrings as the
	// client message rules; wider wording stays KindUnknown.
	kind := extractor.KindUnknown
	switch {
	case strings.Contains(lower, "private"):
		kind = extractor.KindPrivate

	case strings.Contains(lower, "unavailable"):
		kind = extractor.KindUnavailable

	case strings.Contains(lower, "not found"):
		kind = extractor.KindNotFound

	case strings.Contains(lower, "unsupported url") ||
		strings.Contains(lower, "no suitable extractor"):
		kind = extractor.KindUnsupported

	case strings.Contains(lower, "unable to download") ||
		strings.Contains(lower, "connection") ||
		strings.Contains(lower, "network") ||
		strings.Contains(lower, "timed out"):
		kind = extractor.KindNetwork
	}

	return &extractor.Error{Kind: kind, Reason: reason, Err: cause}
}

// lastErrorLine returns the last line starting with "ERROR:", or the last
// non-empty line if there is none.
func lastErrorLine(stderr string) string {
	var lastErr, lastLine string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lastLine = line
		if strings.HasPrefix(line, "ERROR:") {
			lastErr = line
		}
	}
	if lastErr != "" {
		return lastErr
	}
	return lastLine
}
