package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"

	"github.com/openmusicplayer/videoinfo/internal/auth"
	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
	"github.com/openmusicplayer/videoinfo/internal/extractor"
	"github.com/openmusicplayer/videoinfo/internal/health"
	"github.com/openmusicplayer/videoinfo/internal/logger"
	"github.com/openmusicplayer/videoinfo/internal/metrics"
	"github.com/openmusicplayer/videoinfo/internal/validators"
	"github.com/openmusicplayer/videoinfo/internal/videoinfo"
)

func sampleMetadata() *extractor.Metadata {
	return &extractor.Metadata{
		Title:     mo.Some("Sample"),
		Thumbnail: mo.Some("https://i.ytimg.com/x.jpg"),
		Formats: []extractor.RawFormat{
			{URL: mo.Some("https://cdn/720"), Ext: mo.Some("mp4"), Height: mo.Some(720), FileSize: mo.Some(int64(500)), FormatID: mo.Some("22")},
			{URL: mo.Some("https://cdn/audio"), Ext: mo.Some("m4a"), VCodec: mo.Some("none"), AudioBitrate: mo.Some(128.0)},
		},
	}
}

type testServer struct {
	router  *Router
	metrics *metrics.Metrics
	calls   int
}

func newTestServer(t *testing.T, ext extractor.Extractor, authSvc *auth.Service) *testServer {
	t.Helper()
	ts := &testServer{metrics: metrics.New()}

	counting := extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		ts.calls++
		return ext.Extract(ctx, url)
	})

	registry := validators.DefaultRegistry()
	svc, err := videoinfo.New(videoinfo.Config{
		Extractor: counting,
		Registry:  registry,
		Logger:    logger.Discard(),
		Metrics:   ts.metrics,
	})
	if err != nil {
		t.Fatal(err)
	}

	checker := health.NewChecker(&health.CheckerConfig{
		YtdlpCheck: func(ctx context.Context) error { return nil },
		Version:    "test",
	})

	ts.router = NewRouter(Config{
		VideoInfo: svc,
		Platforms: validators.NewHandlers(registry),
		Health:    health.NewHandler(checker),
		Metrics:   ts.metrics,
		Auth:      authSvc,
		Logger:    logger.Discard(),
		Version:   "test",
	})
	return ts
}

func (ts *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorResponse {
	t.Helper()
	var resp apperrors.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestGetVideoInfo_Success(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	w := ts.do(http.MethodPost, "/api/get_video_info", `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Header().Get(apperrors.RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"title", "thumbnail", "formats", "url"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}

	var info videoinfo.VideoInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.URL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("URL = %q", info.URL)
	}
	if len(info.Formats) != 2 || info.Formats[0].Quality != "720p" || info.Formats[1].Quality != "Audio (128k)" {
		t.Errorf("Formats = %+v", info.Formats)
	}

	var formats []map[string]any
	if err := json.Unmarshal(raw["formats"], &formats); err != nil {
		t.Fatal(err)
	}
	if formats[1]["size"] != nil || formats[1]["height"] != nil || formats[1]["format_id"] != nil {
		t.Errorf("absent fields should encode as null: %v", formats[1])
	}
}

func TestGetVideoInfo_BadRequests(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"no body", "", apperrors.MsgURLMissing},
		{"empty object", `{}`, apperrors.MsgURLMissing},
		{"empty url", `{"url":""}`, apperrors.MsgURLMissing},
		{"blank url", `{"url":"   "}`, apperrors.MsgURLMissing},
		{"null body", `null`, apperrors.MsgURLMissing},
		{"malformed json", `{"url":`, apperrors.MsgURLMissing},
		{"wrong type", `{"url":42}`, apperrors.MsgURLMissing},
		{"no scheme", `{"url":"not a url"}`, apperrors.MsgInvalidURL},
		{"unsupported", `{"url":"https://vimeo.com/1"}`, "Unsupported platform. Supported platforms: YouTube, Facebook."},
		{"lookalike host", `{"url":"https://facebook.com.attacker.example/watch?v=1"}`, "Unsupported platform. Supported platforms: YouTube, Facebook."},
		{"oversized", `{"url":"` + strings.Repeat("a", MaxRequestBody) + `"}`, apperrors.MsgInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/api/get_video_info", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			resp := decodeError(t, w)
			if resp.Error != apperrors.CodeInvalidURL {
				t.Errorf("error = %q", resp.Error)
			}
			if resp.Message != tt.message {
				t.Errorf("message = %q, want %q", resp.Message, tt.message)
			}
		})
	}

	if ts.calls != 0 {
		t.Errorf("extractor called %d times for rejected input", ts.calls)
	}
}

func TestGetVideoInfo_FetchFailed(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return nil, extractor.NewError(extractor.KindPrivate, "ERROR: [youtube] x: Private video")
	}), nil)

	w := ts.do(http.MethodPost, "/api/get_video_info", `{"url":"https://www.youtube.com/watch?v=x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Error != apperrors.CodeFetchFailed || resp.Message != apperrors.MsgPrivateOrGone {
		t.Errorf("resp = %+v", resp)
	}
	if got := ts.metrics.Outcome(apperrors.CodeFetchFailed); got != 1 {
		t.Errorf("fetch_failed outcomes = %d, want 1", got)
	}
}

func TestGetVideoInfo_InternalErrorHidesDetail(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return nil, errors.New("exec: permission denied on /usr/local/bin/yt-dlp")
	}), nil)

	w := ts.do(http.MethodPost, "/api/get_video_info", `{"url":"https://fb.watch/abc/"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "yt-dlp") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
	resp := decodeError(t, w)
	if resp.Error != apperrors.CodeServerError || resp.Message != apperrors.MsgInternal {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetVideoInfo_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	if w := ts.do(http.MethodGet, "/api/get_video_info", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestPreflight(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	for _, path := range []string{"/api/get_video_info", "/anything/else"} {
		w := ts.do(http.MethodOptions, path, "", "Origin", "https://example.org")
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, w.Code)
		}
		if w.Body.Len() != 0 {
			t.Errorf("%s: body = %q, want empty", path, w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Methods") != "GET, POST" {
			t.Errorf("%s: Allow-Methods = %q", path, w.Header().Get("Access-Control-Allow-Methods"))
		}
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	w := ts.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"status":"healthy","message":"Server is running"}` {
		t.Errorf("body = %s", got)
	}

	w = ts.do(http.MethodGet, "/health/ready", "")
	if w.Code != http.StatusOK {
		t.Errorf("ready status = %d", w.Code)
	}
}

func TestIndexAndPlatforms(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	w := ts.do(http.MethodGet, "/", "")
	var index IndexResponse
	if err := json.NewDecoder(w.Body).Decode(&index); err != nil {
		t.Fatal(err)
	}
	if index.Service != "videoinfo" || index.Version != "test" {
		t.Errorf("index = %+v", index)
	}
	if _, ok := index.Endpoints["POST /api/get_video_info"]; !ok {
		t.Error("index should list the lookup endpoint")
	}

	if w := ts.do(http.MethodGet, "/nope", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", w.Code)
	}

	w = ts.do(http.MethodGet, "/api/platforms", "")
	var platforms validators.PlatformsResponse
	if err := json.NewDecoder(w.Body).Decode(&platforms); err != nil {
		t.Fatal(err)
	}
	if strings.Join(platforms.Platforms, ",") != "YouTube,Facebook" {
		t.Errorf("platforms = %v", platforms.Platforms)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), nil)

	ts.do(http.MethodPost, "/api/get_video_info", `{"url":"https://youtu.be/abc"}`)
	w := ts.do(http.MethodGet, "/metrics", "")

	body := w.Body.String()
	if !strings.Contains(body, `videoinfo_lookups_total{outcome="ok"} 1`) {
		t.Errorf("metrics missing ok outcome:\n%s", body)
	}
	if !strings.Contains(body, `endpoint="/api/get_video_info"`) {
		t.Errorf("metrics missing lookup endpoint:\n%s", body)
	}
}

func TestAuthRequired(t *testing.T) {
	authSvc, err := auth.NewService("secret")
	if err != nil {
		t.Fatal(err)
	}
	token, err := authSvc.IssueToken("frontend", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	ts := newTestServer(t, extractor.Func(func(ctx context.Context, url string) (*extractor.Metadata, error) {
		return sampleMetadata(), nil
	}), authSvc)

	body := `{"url":"https://youtu.be/abc"}`

	w := ts.do(http.MethodPost, "/api/get_video_info", body)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if resp := decodeError(t, w); resp.Error != apperrors.CodeUnauthorized {
		t.Errorf("error = %q", resp.Error)
	}
	if ts.calls != 0 {
		t.Error("extractor called without a token")
	}

	w = ts.do(http.MethodPost, "/api/get_video_info", body, "Authorization", "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = ts.do(http.MethodOptions, "/api/get_video_info", "")
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Allow-Headers = %q", got)
	}

	if w := ts.do(http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health should stay open, status = %d", w.Code)
	}
}
