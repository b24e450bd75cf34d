package formats

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/samber/mo"

	"github.com/openmusicplayer/videoinfo/internal/extractor"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize_SkipRules(t *testing.T) {
	records := []extractor.RawFormat{
		{Ext: mo.Some("mp4"), Height: mo.Some(720)},                           // no URL
		{URL: mo.Some("   "), Ext: mo.Some("mp4")},                            // blank URL
		{URL: mo.Some("a"), VCodec: mo.Some("none"), ACodec: mo.Some("none")}, // storyboard
		{URL: mo.Some("b"), VCodec: mo.Some("none"), ACodec: mo.Some("opus")}, // audio
		{URL: mo.Some("c"), VCodec: mo.Some("vp9"), ACodec: mo.Some("none")},  // video only
		{URL: mo.Some("d")},                          // tags absent
		{URL: mo.Some("e"), ACodec: mo.Some("none")}, // video tag absent
	}

	got := Normalize(records)

	var urls []string
	for _, f := range got {
		urls = append(urls, f.URL)
	}
	want := []string{"b", "c", "d", "e"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Normalize() URLs = %v, want %v", urls, want)
	}
}

func TestNormalize_QualityLabel(t *testing.T) {
	tests := []struct {
		name   string
		record extractor.RawFormat
		want   string
	}{
		{
			name:   "note wins over height",
			record: extractor.RawFormat{FormatNote: mo.Some("1080p60 HDR"), Height: mo.Some(1080)},
			want:   "1080p60 HDR",
		},
		{
			name:   "blank note falls through to height",
			record: extractor.RawFormat{FormatNote: mo.Some("  "), Height: mo.Some(480)},
			want:   "480p",
		},
		{
			name:   "height",
			record: extractor.RawFormat{Height: mo.Some(720), VCodec: mo.Some("avc1")},
			want:   "720p",
		},
		{
			name:   "zero height is absent",
			record: extractor.RawFormat{Height: mo.Some(0), FormatID: mo.Some("hls-1")},
			want:   "hls-1",
		},
		{
			name:   "audio with integer bitrate",
			record: extractor.RawFormat{VCodec: mo.Some("none"), AudioBitrate: mo.Some(128.0)},
			want:   "Audio (128k)",
		},
		{
			name:   "audio with fractional bitrate",
			record: extractor.RawFormat{VCodec: mo.Some("none"), AudioBitrate: mo.Some(129.478)},
			want:   "Audio (129.478k)",
		},
		{
			name:   "audio without bitrate",
			record: extractor.RawFormat{VCodec: mo.Some("none"), FormatID: mo.Some("140")},
			want:   "Audio",
		},
		{
			name:   "bitrate ignored when video present",
			record: extractor.RawFormat{VCodec: mo.Some("avc1"), AudioBitrate: mo.Some(128.0), FormatID: mo.Some("18")},
			want:   "18",
		},
		{
			name:   "format id fallback",
			record: extractor.RawFormat{FormatID: mo.Some("dash-video")},
			want:   "dash-video",
		},
		{
			name:   "unknown",
			record: extractor.RawFormat{},
			want:   "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.record.URL = mo.Some("https://cdn.example/x")
			got := Normalize([]extractor.RawFormat{tt.record})
			if len(got) != 1 {
				t.Fatalf("Normalize() returned %d formats, want 1", len(got))
			}
			if got[0].Quality != tt.want {
				t.Errorf("Quality = %q, want %q", got[0].Quality, tt.want)
			}
		})
	}
}

func TestNormalize_Fields(t *testing.T) {
	got := Normalize([]extractor.RawFormat{
		{
			URL:            mo.Some("a"),
			Ext:            mo.Some("webm"),
			FormatID:       mo.Some("248"),
			Height:         mo.Some(1080),
			FileSize:       mo.Some(int64(0)),
			FileSizeApprox: mo.Some(int64(900)),
		},
		{
			URL:            mo.Some("b"),
			FileSize:       mo.Some(int64(100)),
			FileSizeApprox: mo.Some(int64(900)),
		},
		{
			URL:      mo.Some("c"),
			Ext:      mo.Some(""),
			FormatID: mo.Some(""),
		},
	})

	want := []Format{
		{Ext: "webm", Quality: "1080p", Size: ptr(int64(900)), URL: "a", FormatID: ptr("248"), Height: ptr(1080)},
		{Ext: "unknown", Quality: "Unknown", Size: ptr(int64(100)), URL: "b"},
		{Ext: "unknown", Quality: "Unknown", URL: "c"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize(nil); len(got) != 0 {
		t.Errorf("Normalize(nil) = %v, want empty", got)
	}
}

func TestRank_Ordering(t *testing.T) {
	in := []Format{
		{URL: "audio", Quality: "Audio (128k)", Ext: "m4a", Size: ptr(int64(3000))},
		{URL: "360", Quality: "360p", Ext: "mp4", Height: ptr(360), Size: ptr(int64(100))},
		{URL: "720-small", Quality: "720p", Ext: "webm", Height: ptr(720), Size: ptr(int64(200))},
		{URL: "720-big", Quality: "720p", Ext: "mp4", Height: ptr(720), Size: ptr(int64(900))},
		{URL: "1080", Quality: "1080p", Ext: "mp4", Height: ptr(1080)},
	}

	got := Rank(in, MaxFormats)

	var urls []string
	for _, f := range got {
		urls = append(urls, f.URL)
	}
	want := []string{"1080", "720-big", "720-small", "360", "audio"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("Rank() = %v, want %v", urls, want)
	}
	if in[0].URL != "audio" {
		t.Error("Rank() modified its input")
	}
}

func TestRank_StableTies(t *testing.T) {
	in := []Format{
		{URL: "first", Quality: "a", Ext: "mp4"},
		{URL: "second", Quality: "b", Ext: "mp4"},
		{URL: "third", Quality: "c", Ext: "mp4", Height: ptr(0)},
	}

	got := Rank(in, MaxFormats)
	for i, f := range got {
		if f.URL != in[i].URL {
			t.Errorf("Rank()[%d] = %q, want %q", i, f.URL, in[i].URL)
		}
	}
}

func TestRank_DedupeFirstOccurrenceWins(t *testing.T) {
	// Two records with equal height, size, quality and ext.
	raw := []extractor.RawFormat{
		{Height: mo.Some(720), FileSize: mo.Some(int64(500)), URL: mo.Some("a")},
		{Height: mo.Some(720), FileSize: mo.Some(int64(500)), URL: mo.Some("b")},
	}

	got := Rank(Normalize(raw), MaxFormats)
	if len(got) != 1 {
		t.Fatalf("Rank() returned %d formats, want 1", len(got))
	}
	if got[0].URL != "a" {
		t.Errorf("URL = %q, want %q", got[0].URL, "a")
	}
}

func TestRank_DedupeKeepsBestRanked(t *testing.T) {
	in := []Format{
		{URL: "small", Quality: "720p", Ext: "mp4", Height: ptr(720), Size: ptr(int64(10))},
		{URL: "big", Quality: "720p", Ext: "mp4", Height: ptr(720), Size: ptr(int64(99))},
		{URL: "other-ext", Quality: "720p", Ext: "webm", Height: ptr(720), Size: ptr(int64(1))},
	}

	got := Rank(in, MaxFormats)
	if len(got) != 2 {
		t.Fatalf("Rank() returned %d formats, want 2", len(got))
	}
	if got[0].URL != "big" || got[1].URL != "other-ext" {
		t.Errorf("Rank() = [%s %s], want [big other-ext]", got[0].URL, got[1].URL)
	}
}

func TestRank_Cap(t *testing.T) {
	var in []Format
	for i := 0; i < 25; i++ {
		in = append(in, Format{URL: fmt.Sprint(i), Quality: fmt.Sprintf("q%d", i), Ext: "mp4", Height: ptr(i)})
	}

	got := Rank(in, MaxFormats)
	if len(got) != MaxFormats {
		t.Fatalf("len(Rank()) = %d, want %d", len(got), MaxFormats)
	}
	if got[0].URL != "24" || got[9].URL != "15" {
		t.Errorf("Rank() kept wrong entries: first %s, last %s", got[0].URL, got[9].URL)
	}

	if got := Rank(in, 3); len(got) != 3 {
		t.Errorf("len(Rank(limit=3)) = %d, want 3", len(got))
	}
}

func TestRank_Properties(t *testing.T) {
	// A noisy list with repeated labels, absent sizes and equal keys.
	var raw []extractor.RawFormat
	heights := []int{144, 720, 0, 360, 720, 1080, 0, 360, 480, 720, 144, 240, 1440, 2160, 0}
	for i, h := range heights {
		r := extractor.RawFormat{
			URL:      mo.Some(fmt.Sprintf("u%d", i)),
			Ext:      mo.Some([]string{"mp4", "webm"}[i%2]),
			FormatID: mo.Some(fmt.Sprint(i)),
		}
		if h > 0 {
			r.Height = mo.Some(h)
		} else {
			r.VCodec = mo.Some("none")
		}
		if i%3 == 0 {
			r.FileSize = mo.Some(int64(i * 1000))
		}
		raw = append(raw, r)
	}

	once := Rank(Normalize(raw), MaxFormats)

	if len(once) > MaxFormats {
		t.Errorf("len = %d exceeds cap", len(once))
	}

	seen := make(map[dedupeKey]bool)
	for i, f := range once {
		k := dedupeKey{f.Quality, f.Ext}
		if seen[k] {
			t.Errorf("duplicate (quality, ext) = %v", k)
		}
		seen[k] = true

		if i > 0 {
			prev := once[i-1]
			if heightOf(prev) < heightOf(f) ||
				(heightOf(prev) == heightOf(f) && sizeOf(prev) < sizeOf(f)) {
				t.Errorf("entries %d and %d out of order", i-1, i)
			}
		}
	}

	twice := Rank(once, MaxFormats)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Rank is not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, MaxFormats); len(got) != 0 {
		t.Errorf("Rank(nil) = %v, want empty", got)
	}
}
