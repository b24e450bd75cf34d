// Package extractor defines the contract between the lookup pipeline and
// whatever resolves a video URL into raw stream candidates.
package extractor

import (
	"context"

	"github.com/samber/mo"
)

// Extractor resolves a validated URL into raw metadata. Implementations may
// block on network I/O and must honour ctx cancellation.
type Extractor interface {
	Extract(ctx context.Context, url string) (*Metadata, error)
}

// Func adapts a plain function to the Extractor interface.
type Func func(ctx context.Context, url string) (*Metadata, error)

func (f Func) Extract(ctx context.Context, url string) (*Metadata, error) {
	return f(ctx, url)
}

// Metadata is the unprocessed result of one extraction.
type Metadata struct {
	Title     mo.Option[string]
	Thumbnail mo.Option[string]
	Formats   []RawFormat
}

// RawFormat describes one candidate stream exactly as the source reported
// it. Any field may be missing; the normalizer decides what is usable.
type RawFormat struct {
	URL        mo.Option[string]
	Ext        mo.Option[string]
	VCodec     mo.Option[string]
	ACodec     mo.Option[string]
	FormatNote mo.Option[string]
	FormatID   mo.Option[string]
	Height     mo.Option[int]
	// AudioBitrate is in kbit/s.
	AudioBitrate   mo.Option[float64]
	FileSize       mo.Option[int64]
	FileSizeApprox mo.Option[int64]
}

// NoStream is the codec tag extractors use for "this stream is absent".
const NoStream = "none"

// HasVideo reports whether the record carries a video stream. An absent tag
// is not treated as absence of a stream.
func (f RawFormat) HasVideo() bool {
	v, ok := f.VCodec.Get()
	return !ok || v != NoStream
}

// HasAudio reports whether the record carries an audio stream.
func (f RawFormat) HasAudio() bool {
	a, ok := f.ACodec.Get()
	return !ok || a != NoStream
}

// AudioOnly reports whether the video codec is explicitly "none".
func (f RawFormat) AudioOnly() bool {
	v, ok := f.VCodec.Get()
	return ok && v == NoStream
}
