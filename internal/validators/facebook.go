package validators

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var facebookDomains = []string{"facebook.com", "www.facebook.com", "m.facebook.com", "fb.watch"}

// FacebookValidator validates Facebook video URLs
type FacebookValidator struct {
	numericID *regexp.Regexp
	shortID   *regexp.Regexp
}

// NewFacebookValidator creates a new Facebook URL validator
func NewFacebookValidator() *FacebookValidator {
	return &FacebookValidator{
		numericID: regexp.MustCompile(`^[0-9]+$`),
		shortID:   regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),
	}
}

func (v *FacebookValidator) SourceType() SourceType {
	return SourceFacebook
}

func (v *FacebookValidator) DisplayName() string {
	return "Facebook"
}

func (v *FacebookValidator) Domains() []string {
	return facebookDomains
}

// CanHandle returns true if the URL appears to be a Facebook URL
func (v *FacebookValidator) CanHandle(rawURL string) bool {
	host, ok := hostOf(rawURL)
	if !ok {
		return false
	}
	return matchHost(host, facebookDomains)
}

// Validate validates a Facebook URL and extracts the video ID.
//
// Supported shapes:
//
//	https://fb.watch/ID/
//	https://www.facebook.com/watch/?v=ID
//	https://www.facebook.com/PAGE/videos/ID
//	https://www.facebook.com/PAGE/videos/SLUG/ID
//	https://www.facebook.com/reel/ID
//	https://www.facebook.com/share/v/TOKEN/
func (v *FacebookValidator) Validate(rawURL string) ValidationResult {
	rawURL = strings.TrimSpace(rawURL)

	invalid := func(msg string) ValidationResult {
		return ValidationResult{
			Valid:      false,
			SourceType: SourceFacebook,
			URL:        rawURL,
			Error:      msg,
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return invalid("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return invalid("invalid URL scheme")
	}

	host := strings.ToLower(parsed.Hostname())
	if !matchHost(host, facebookDomains) {
		return invalid("not a Facebook URL")
	}

	segments := splitPath(parsed.Path)

	if host == "fb.watch" {
		if len(segments) == 0 || !v.shortID.MatchString(segments[0]) {
			return invalid("could not extract video ID from URL")
		}
		return ValidationResult{
			Valid:      true,
			SourceType: SourceFacebook,
			MediaID:    segments[0],
			MediaType:  "video",
			URL:        rawURL,
			Canonical:  fmt.Sprintf("https://fb.watch/%s/", segments[0]),
		}
	}

	var id, mediaType, canonical string

	switch {
	case len(segments) >= 1 && segments[0] == "watch":
		id = parsed.Query().Get("v")
		mediaType = "video"
	case len(segments) >= 2 && segments[0] == "reel":
		id = segments[1]
		mediaType = "reel"
		canonical = fmt.Sprintf("https://www.facebook.com/reel/%s", id)
	case len(segments) >= 3 && segments[0] == "share" && (segments[1] == "v" || segments[1] == "r"):
		if !v.shortID.MatchString(segments[2]) {
			return invalid("invalid share token")
		}
		return ValidationResult{
			Valid:      true,
			SourceType: SourceFacebook,
			MediaID:    segments[2],
			MediaType:  "share",
			URL:        rawURL,
			Canonical:  fmt.Sprintf("https://www.facebook.com/share/%s/%s/", segments[1], segments[2]),
		}
	case len(segments) >= 3 && segments[1] == "videos":
		// The numeric ID is the last segment; a title slug may precede it.
		id = segments[len(segments)-1]
		mediaType = "video"
	}

	if id == "" {
		return invalid("could not extract video ID from URL")
	}
	if !v.numericID.MatchString(id) {
		return ValidationResult{
			Valid:      false,
			SourceType: SourceFacebook,
			URL:        rawURL,
			MediaID:    id,
			Error:      "invalid video ID format",
		}
	}
	if canonical == "" {
		canonical = fmt.Sprintf("https://www.facebook.com/watch/?v=%s", id)
	}

	return ValidationResult{
		Valid:      true,
		SourceType: SourceFacebook,
		MediaID:    id,
		MediaType:  mediaType,
		URL:        rawURL,
		Canonical:  canonical,
	}
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
