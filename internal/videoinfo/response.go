package videoinfo

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/openmusicplayer/videoinfo/internal/extractor"
	"github.com/openmusicplayer/videoinfo/internal/formats"
)

// DefaultTitle is used when the extractor reports no usable title.
const DefaultTitle = "No title"

// VideoInfo is the successful result of one lookup.
type VideoInfo struct {
	Title     string           `json:"title"`
	Thumbnail string           `json:"thumbnail"`
	Formats   []formats.Format `json:"formats"`
	URL       string           `json:"url"`
}

func buildResponse(meta *extractor.Metadata, ranked []formats.Format, url string) *VideoInfo {
	if ranked == nil {
		ranked = []formats.Format{}
	}
	return &VideoInfo{
		Title:     cleanTitle(meta.Title.OrEmpty()),
		Thumbnail: strings.TrimSpace(meta.Thumbnail.OrEmpty()),
		Formats:   ranked,
		URL:       url,
	}
}

// cleanTitle NFC-normalizes s and drops control characters.
func cleanTitle(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTitle
	}
	return s
}
