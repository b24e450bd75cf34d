package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openmusicplayer/videoinfo/internal/logger"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(""), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, "") != "abc" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	h := CORS([]string{"*"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/get_video_info", nil)
	req.Header.Set("Origin", "https://someone.github.io")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()

	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if called {
		t.Error("preflight should not reach the next handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST" {
		t.Errorf("Allow-Methods = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
		t.Errorf("Allow-Headers = %q", got)
	}
}

func TestCORS_ExtraHeaders(t *testing.T) {
	h := CORS([]string{"*"}, "Authorization")(okHandler(""))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))

	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization" {
		t.Errorf("Allow-Headers = %q", got)
	}
}

func TestCORS_Origins(t *testing.T) {
	h := CORS([]string{"https://app.example"})(okHandler("{}"))

	tests := []struct {
		origin string
		want   string
	}{
		{"https://app.example", "https://app.example"},
		{"https://evil.example", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/get_video_info", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %q: Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
		if w.Code != http.StatusOK {
			t.Errorf("origin %q: status = %d", tt.origin, w.Code)
		}
	}
}

func TestGzip(t *testing.T) {
	body := strings.Repeat(`{"quality":"720p"}`, 50)
	h := Gzip(okHandler(body))

	req := httptest.NewRequest(http.MethodPost, "/api/get_video_info", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("expected gzip encoding")
	}
	zr, err := gzip.NewReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != body {
		t.Error("decoded body mismatch")
	}
}

func TestGzip_Skipped(t *testing.T) {
	h := Gzip(okHandler("plain"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "plain" {
		t.Error("response should not be compressed without Accept-Encoding")
	}

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w = httptest.NewRecorder()
	Gzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, req)

	if w.Body.Len() != 0 {
		t.Errorf("OPTIONS body = %q, want empty", w.Body.String())
	}
}

func TestTiming(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Output: &buf, Level: logger.LevelDebug})

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.Write([]byte("done"))
	})

	w := httptest.NewRecorder()
	Timing(log, 5*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	if !strings.HasPrefix(w.Header().Get("Server-Timing"), "total;dur=") {
		t.Errorf("Server-Timing = %q", w.Header().Get("Server-Timing"))
	}
	if !strings.Contains(buf.String(), "slow request") {
		t.Errorf("expected slow request log, got %q", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	Timing(log, time.Minute)(okHandler("{}")).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if buf.Len() != 0 {
		t.Errorf("fast request should not be logged, got %q", buf.String())
	}
}
