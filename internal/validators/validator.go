package validators

import (
	"net/url"
	"strings"
)

// SourceType identifies the platform a URL belongs to
type SourceType string

const (
	SourceYouTube  SourceType = "youtube"
	SourceFacebook SourceType = "facebook"
	SourceUnknown  SourceType = "unknown"
)

// PlatformKind says whether a URL's host is on the allow-list.
type PlatformKind int

const (
	Unsupported PlatformKind = iota
	Supported
)

func (k PlatformKind) String() string {
	if k == Supported {
		return "supported"
	}
	return "unsupported"
}

// ValidationResult contains the result of URL validation
type ValidationResult struct {
	Valid      bool       `json:"valid"`
	SourceType SourceType `json:"source_type"`
	MediaID    string     `json:"media_id,omitempty"`
	MediaType  string     `json:"media_type,omitempty"` // e.g., "video", "short", "reel"
	URL        string     `json:"url"`
	Canonical  string     `json:"canonical_url,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Validator defines the interface for per-platform URL validators
type Validator interface {
	// SourceType returns the source type this validator handles
	SourceType() SourceType

	// DisplayName is the human-readable platform name
	DisplayName() string

	// Domains returns the allow-listed hosts for this platform
	Domains() []string

	// CanHandle returns true if this validator can handle the given URL
	CanHandle(url string) bool

	// Validate validates the URL and extracts relevant information
	Validate(url string) ValidationResult
}

// ValidateURL reports whether raw parses as a URL with both a scheme and a
// host. raw is expected to be trimmed already.
func ValidateURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// hostOf returns the lower-cased host of raw without port or trailing dot.
func hostOf(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	host := strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	if host == "" {
		return "", false
	}
	return host, true
}
