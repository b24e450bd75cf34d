package ytdlp

import (
	"github.com/samber/mo"

	"github.com/openmusicplayer/videoinfo/internal/extractor"
)

// output represents the JSON emitted by yt-dlp -J. Pointers distinguish
// absent or null fields from zero values.
type output struct {
	ID         string   `json:"id"`
	Title      *string  `json:"title"`
	Thumbnail  *string  `json:"thumbnail"`
	Thumbnails []thumb  `json:"thumbnails"`
	WebpageURL string   `json:"webpage_url"`
	Extractor  string   `json:"extractor"`
	Formats    []format `json:"formats"`
}

// thumb represents a thumbnail entry
type thumb struct {
	URL string `json:"url"`
}

// format represents one entry of the formats array
type format struct {
	FormatID   *string `json:"format_id"`
	FormatNote *string `json:"format_note"`
	URL        *string `json:"url"`
	Ext        *string `json:"ext"`
	VCodec     *string `json:"vcodec"`
	ACodec     *string `json:"acodec"`
	// yt-dlp reports some integers as floats depending on the extractor
	Height         *float64 `json:"height"`
	Abr            *float64 `json:"abr"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
}

func (o *output) toMetadata() *extractor.Metadata {
	m := &extractor.Metadata{
		Title:     optional(o.Title),
		Thumbnail: optional(o.Thumbnail),
		Formats:   make([]extractor.RawFormat, 0, len(o.Formats)),
	}

	// Fall back to the last listed thumbnail, which yt-dlp orders by preference
	if m.Thumbnail.IsAbsent() && len(o.Thumbnails) > 0 {
		if u := o.Thumbnails[len(o.Thumbnails)-1].URL; u != "" {
			m.Thumbnail = mo.Some(u)
		}
	}

	for _, f := range o.Formats {
		m.Formats = append(m.Formats, f.toRaw())
	}
	return m
}

func (f format) toRaw() extractor.RawFormat {
	return extractor.RawFormat{
		URL:            optional(f.URL),
		Ext:            optional(f.Ext),
		VCodec:         optional(f.VCodec),
		ACodec:         optional(f.ACodec),
		FormatNote:     optional(f.FormatNote),
		FormatID:       optional(f.FormatID),
		Height:         convert(f.Height, func(v float64) int { return int(v) }),
		AudioBitrate:   optional(f.Abr),
		FileSize:       convert(f.Filesize, func(v float64) int64 { return int64(v) }),
		FileSizeApprox: convert(f.FilesizeApprox, func(v float64) int64 { return int64(v) }),
	}
}

func optional[T any](p *T) mo.Option[T] {
	if p == nil {
		return mo.None[T]()
	}
	return mo.Some(*p)
}

func convert[T, U any](p *T, fn func(T) U) mo.Option[U] {
	if p == nil {
		return mo.None[U]()
	}
	return mo.Some(fn(*p))
}
