// Package formats turns raw extractor output into the short, ranked list of
// streams a client can offer to a user.
package formats

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/openmusicplayer/videoinfo/internal/extractor"
)

// MaxFormats is the default cap on the ranked list.
const MaxFormats = 10

const (
	defaultExt   = "unknown"
	labelAudio   = "Audio"
	labelUnknown = "Unknown"
)

// Format is one normalized, ready-to-rank stream. Size, FormatID and Height
// are nil when the source did not report them.
type Format struct {
	Ext      string  `json:"ext"`
	Quality  string  `json:"quality"`
	Size     *int64  `json:"size"`
	URL      string  `json:"url"`
	FormatID *string `json:"format_id"`
	Height   *int    `json:"height"`
}

// Normalize converts raw records into formats, preserving input order.
// Records without a URL or without any media stream are dropped.
func Normalize(records []extractor.RawFormat) []Format {
	out := make([]Format, 0, len(records))
	for _, r := range records {
		url := strings.TrimSpace(r.URL.OrEmpty())
		if url == "" {
			continue
		}
		if !r.HasVideo() && !r.HasAudio() {
			continue
		}

		f := Format{
			Ext:     r.Ext.OrElse(defaultExt),
			Quality: qualityLabel(r),
			Size:    size(r),
			URL:     url,
		}
		if f.Ext == "" {
			f.Ext = defaultExt
		}
		if id, ok := r.FormatID.Get(); ok && id != "" {
			f.FormatID = &id
		}
		if h, ok := r.Height.Get(); ok && h > 0 {
			f.Height = &h
		}
		out = append(out, f)
	}
	return out
}

// qualityLabel derives the display label. Precedence: explicit note,
// height, audio bitrate, bare "Audio", format ID, "Unknown".
func qualityLabel(r extractor.RawFormat) string {
	if note := strings.TrimSpace(r.FormatNote.OrEmpty()); note != "" {
		return note
	}
	if h, ok := r.Height.Get(); ok && h > 0 {
		return fmt.Sprintf("%dp", h)
	}
	if r.AudioOnly() {
		if abr, ok := r.AudioBitrate.Get(); ok && abr > 0 {
			return fmt.Sprintf("Audio (%sk)", strconv.FormatFloat(abr, 'f', -1, 64))
		}
		return labelAudio
	}
	if id := r.FormatID.OrEmpty(); id != "" {
		return id
	}
	return labelUnknown
}

func size(r extractor.RawFormat) *int64 {
	if s, ok := r.FileSize.Get(); ok && s > 0 {
		return &s
	}
	if s, ok := r.FileSizeApprox.Get(); ok && s > 0 {
		return &s
	}
	return nil
}

type dedupeKey struct {
	quality string
	ext     string
}

// Rank orders formats by height then size, both descending with absent
// values counting as zero, keeps the first format for each (quality, ext)
// pair and returns at most limit entries. Equal keys keep input order.
// The input slice is not modified.
func Rank(formats []Format, limit int) []Format {
	sorted := slices.Clone(formats)
	slices.SortStableFunc(sorted, func(a, b Format) int {
		if c := cmpDesc(heightOf(a), heightOf(b)); c != 0 {
			return c
		}
		return cmpDesc(sizeOf(a), sizeOf(b))
	})

	unique := lo.UniqBy(sorted, func(f Format) dedupeKey {
		return dedupeKey{quality: f.Quality, ext: f.Ext}
	})

	if limit >= 0 && len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func cmpDesc[T int | int64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func heightOf(f Format) int {
	if f.Height == nil {
		return 0
	}
	return *f.Height
}

func sizeOf(f Format) int64 {
	if f.Size == nil {
		return 0
	}
	return *f.Size
}
