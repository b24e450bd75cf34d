package validators

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var youtubeDomains = []string{"youtube.com", "youtu.be", "m.youtube.com", "www.youtube.com"}

// YouTubeValidator validates YouTube URLs
type YouTubeValidator struct {
	// videoIDPattern matches YouTube video IDs (11 characters, alphanumeric with - and _)
	videoIDPattern *regexp.Regexp
}

// NewYouTubeValidator creates a new YouTube URL validator
func NewYouTubeValidator() *YouTubeValidator {
	return &YouTubeValidator{
		videoIDPattern: regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`),
	}
}

// SourceType returns the source type for this validator
func (v *YouTubeValidator) SourceType() SourceType {
	return SourceYouTube
}

func (v *YouTubeValidator) DisplayName() string {
	return "YouTube"
}

func (v *YouTubeValidator) Domains() []string {
	return youtubeDomains
}

// CanHandle returns true if the URL appears to be a YouTube URL
func (v *YouTubeValidator) CanHandle(rawURL string) bool {
	host, ok := hostOf(rawURL)
	if !ok {
		return false
	}
	return matchHost(host, youtubeDomains)
}

// Validate validates a YouTube URL and extracts the video ID
func (v *YouTubeValidator) Validate(rawURL string) ValidationResult {
	rawURL = strings.TrimSpace(rawURL)

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ValidationResult{
			Valid:      false,
			SourceType: SourceYouTube,
			URL:        rawURL,
			Error:      "invalid URL format",
		}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ValidationResult{
			Valid:      false,
			SourceType: SourceYouTube,
			URL:        rawURL,
			Error:      "invalid URL scheme",
		}
	}

	host := strings.ToLower(parsed.Hostname())

	var videoID string
	var mediaType string

	switch {
	case host == "youtu.be":
		// Short URL format: youtu.be/VIDEO_ID
		videoID = strings.TrimPrefix(parsed.Path, "/")
		mediaType = "video"
	case matchHost(host, youtubeDomains):
		videoID, mediaType = v.extractFromYouTubeCom(parsed)
	default:
		return ValidationResult{
			Valid:      false,
			SourceType: SourceYouTube,
			URL:        rawURL,
			Error:      "not a YouTube URL",
		}
	}

	if idx := strings.IndexAny(videoID, "/?"); idx != -1 {
		videoID = videoID[:idx]
	}

	if videoID == "" {
		return ValidationResult{
			Valid:      false,
			SourceType: SourceYouTube,
			URL:        rawURL,
			Error:      "could not extract video ID from URL",
		}
	}

	if !v.videoIDPattern.MatchString(videoID) {
		return ValidationResult{
			Valid:      false,
			SourceType: SourceYouTube,
			URL:        rawURL,
			MediaID:    videoID,
			Error:      "invalid video ID format",
		}
	}

	return ValidationResult{
		Valid:      true,
		SourceType: SourceYouTube,
		MediaID:    videoID,
		MediaType:  mediaType,
		URL:        rawURL,
		Canonical:  fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID),
	}
}

// extractFromYouTubeCom extracts video ID from youtube.com URLs
func (v *YouTubeValidator) extractFromYouTubeCom(parsed *url.URL) (videoID, mediaType string) {
	path := parsed.Path

	switch {
	case strings.HasPrefix(path, "/watch"):
		videoID = parsed.Query().Get("v")
		mediaType = "video"
	case strings.HasPrefix(path, "/shorts/"):
		videoID = strings.TrimPrefix(path, "/shorts/")
		mediaType = "short"
	case strings.HasPrefix(path, "/embed/"):
		videoID = strings.TrimPrefix(path, "/embed/")
		mediaType = "video"
	case strings.HasPrefix(path, "/v/"):
		videoID = strings.TrimPrefix(path, "/v/")
		mediaType = "video"
	case strings.HasPrefix(path, "/live/"):
		videoID = strings.TrimPrefix(path, "/live/")
		mediaType = "live"
	}

	return videoID, mediaType
}
