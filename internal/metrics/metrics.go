package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const prefix = "videoinfo_"

// Default latency buckets in seconds for HTTP requests
var httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Extraction runs an external process and is much slower than the rest of
// the request, so it gets its own buckets.
var extractionBuckets = []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 45, 60, 90}

// Metrics holds all application metrics
type Metrics struct {
	// Request metrics, keyed endpoint:method
	requests        *counterVec
	requestDuration *histogramVec
	// keyed endpoint:method:status_class
	requestErrors *counterVec

	// Lookup outcomes keyed by error code, or "ok"
	outcomes *counterVec

	extractionDuration *Histogram
	extractionFailures atomic.Uint64

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
	cacheErrors atomic.Uint64

	startTime time.Time
}

// Histogram tracks value distributions
type Histogram struct {
	mu         sync.Mutex
	count      uint64
	sum        float64
	buckets    []float64
	bucketVals []uint64
}

// NewHistogram creates a histogram with the given upper bounds, or the HTTP
// latency buckets when none are given.
func NewHistogram(buckets ...float64) *Histogram {
	if len(buckets) == 0 {
		buckets = httpBuckets
	}
	return &Histogram{
		buckets:    buckets,
		bucketVals: make([]uint64, len(buckets)),
	}
}

// Observe records a value
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i, b := range h.buckets {
		if v <= b {
			h.bucketVals[i]++
		}
	}
}

// Count returns the number of observations
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *Histogram) write(sb *strings.Builder, name, labels string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sep := ""
	if labels != "" {
		sep = ","
	}
	for i, bucket := range h.buckets {
		fmt.Fprintf(sb, "%s_bucket{%s%sle=\"%g\"} %d\n", name, labels, sep, bucket, h.bucketVals[i])
	}
	fmt.Fprintf(sb, "%s_bucket{%s%sle=\"+Inf\"} %d\n", name, labels, sep, h.count)
	if labels != "" {
		fmt.Fprintf(sb, "%s_sum{%s} %f\n", name, labels, h.sum)
		fmt.Fprintf(sb, "%s_count{%s} %d\n", name, labels, h.count)
	} else {
		fmt.Fprintf(sb, "%s_sum %f\n", name, h.sum)
		fmt.Fprintf(sb, "%s_count %d\n", name, h.count)
	}
}

type counterVec struct {
	mu     sync.RWMutex
	values map[string]*atomic.Uint64
}

func newCounterVec() *counterVec {
	return &counterVec{values: make(map[string]*atomic.Uint64)}
}

func (c *counterVec) inc(key string) {
	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if !ok {
		c.mu.Lock()
		if v, ok = c.values[key]; !ok {
			v = &atomic.Uint64{}
			c.values[key] = v
		}
		c.mu.Unlock()
	}
	v.Add(1)
}

func (c *counterVec) get(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.values[key]; ok {
		return v.Load()
	}
	return 0
}

// snapshot returns keys in sorted order with their current values
func (c *counterVec) snapshot() ([]string, map[string]uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	vals := make(map[string]uint64, len(c.values))
	for k, v := range c.values {
		keys = append(keys, k)
		vals[k] = v.Load()
	}
	sort.Strings(keys)
	return keys, vals
}

type histogramVec struct {
	mu     sync.RWMutex
	values map[string]*Histogram
}

func newHistogramVec() *histogramVec {
	return &histogramVec{values: make(map[string]*Histogram)}
}

func (h *histogramVec) observe(key string, v float64) {
	h.mu.RLock()
	hist, ok := h.values[key]
	h.mu.RUnlock()
	if !ok {
		h.mu.Lock()
		if hist, ok = h.values[key]; !ok {
			hist = NewHistogram()
			h.values[key] = hist
		}
		h.mu.Unlock()
	}
	hist.Observe(v)
}

// New creates a new Metrics instance
func New() *Metrics {
	return &Metrics{
		requests:           newCounterVec(),
		requestDuration:    newHistogramVec(),
		requestErrors:      newCounterVec(),
		outcomes:           newCounterVec(),
		extractionDuration: NewHistogram(extractionBuckets...),
		startTime:          time.Now(),
	}
}

// global metrics instance
var defaultMetrics = New()

// Default returns the default metrics instance
func Default() *Metrics {
	return defaultMetrics
}

// RecordRequest records a request
func (m *Metrics) RecordRequest(method, path string, statusCode int, duration time.Duration) {
	key := normalizeEndpoint(path) + ":" + method

	m.requests.inc(key)
	m.requestDuration.observe(key, duration.Seconds())

	if statusCode >= 400 {
		m.requestErrors.inc(fmt.Sprintf("%s:%d", key, statusCode/100))
	}
}

// OutcomeOK labels successful lookups in RecordOutcome.
const OutcomeOK = "ok"

// RecordOutcome counts one finished lookup under its error code, or
// OutcomeOK for a success.
func (m *Metrics) RecordOutcome(code string) {
	m.outcomes.inc(code)
}

// Outcome returns the number of lookups recorded under code.
func (m *Metrics) Outcome(code string) uint64 {
	return m.outcomes.get(code)
}

// ObserveExtraction records how long one extractor call took.
func (m *Metrics) ObserveExtraction(d time.Duration, err error) {
	m.extractionDuration.Observe(d.Seconds())
	if err != nil {
		m.extractionFailures.Add(1)
	}
}

// CacheHit counts a result served from the cache
func (m *Metrics) CacheHit() { m.cacheHits.Add(1) }

// CacheMiss counts a lookup not found in the cache
func (m *Metrics) CacheMiss() { m.cacheMisses.Add(1) }

// CacheError counts a cache read or write that failed
func (m *Metrics) CacheError() { m.cacheErrors.Add(1) }

// normalizeEndpoint normalizes an endpoint path for metrics. Anything
// outside the known routes collapses into one label so random probes
// cannot grow the maps without bound.
func normalizeEndpoint(path string) string {
	switch path {
	case "/", "/health", "/health/ready", "/metrics", "/api/get_video_info", "/api/platforms":
		return path
	}
	return "other"
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		var sb strings.Builder

		// Uptime
		writeHeader(&sb, "uptime_seconds", "Time since the server started", "gauge")
		fmt.Fprintf(&sb, "%suptime_seconds %f\n\n", prefix, time.Since(m.startTime).Seconds())

		// Request counts
		if keys, vals := m.requests.snapshot(); len(keys) > 0 {
			writeHeader(&sb, "http_requests_total", "Total HTTP requests", "counter")
			for _, key := range keys {
				endpoint, method, _ := strings.Cut(key, ":")
				fmt.Fprintf(&sb, "%shttp_requests_total{endpoint=\"%s\",method=\"%s\"} %d\n", prefix, endpoint, method, vals[key])
			}
			sb.WriteString("\n")
		}

		// Request duration histograms
		m.requestDuration.mu.RLock()
		if len(m.requestDuration.values) > 0 {
			writeHeader(&sb, "http_request_duration_seconds", "HTTP request latency", "histogram")
			keys := make([]string, 0, len(m.requestDuration.values))
			for k := range m.requestDuration.values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, key := range keys {
				endpoint, method, _ := strings.Cut(key, ":")
				labels := fmt.Sprintf("endpoint=\"%s\",method=\"%s\"", endpoint, method)
				m.requestDuration.values[key].write(&sb, prefix+"http_request_duration_seconds", labels)
			}
			sb.WriteString("\n")
		}
		m.requestDuration.mu.RUnlock()

		// Error counts
		if keys, vals := m.requestErrors.snapshot(); len(keys) > 0 {
			writeHeader(&sb, "http_errors_total", "Total HTTP errors by status class", "counter")
			for _, key := range keys {
				// key format: endpoint:method:statusClass
				parts := strings.Split(key, ":")
				if len(parts) == 3 {
					fmt.Fprintf(&sb, "%shttp_errors_total{endpoint=\"%s\",method=\"%s\",status_class=\"%sxx\"} %d\n", prefix, parts[0], parts[1], parts[2], vals[key])
				}
			}
			sb.WriteString("\n")
		}

		// Lookup outcomes
		if keys, vals := m.outcomes.snapshot(); len(keys) > 0 {
			writeHeader(&sb, "lookups_total", "Video info lookups by outcome", "counter")
			for _, code := range keys {
				fmt.Fprintf(&sb, "%slookups_total{outcome=\"%s\"} %d\n", prefix, code, vals[code])
			}
			sb.WriteString("\n")
		}

		// Extraction
		writeHeader(&sb, "extraction_duration_seconds", "Time spent in the extractor", "histogram")
		m.extractionDuration.write(&sb, prefix+"extraction_duration_seconds", "")
		writeHeader(&sb, "extraction_failures_total", "Extractor calls that returned an error", "counter")
		fmt.Fprintf(&sb, "%sextraction_failures_total %d\n\n", prefix, m.extractionFailures.Load())

		// Cache
		writeHeader(&sb, "cache_requests_total", "Result cache lookups", "counter")
		fmt.Fprintf(&sb, "%scache_requests_total{result=\"hit\"} %d\n", prefix, m.cacheHits.Load())
		fmt.Fprintf(&sb, "%scache_requests_total{result=\"miss\"} %d\n", prefix, m.cacheMisses.Load())
		fmt.Fprintf(&sb, "%scache_requests_total{result=\"error\"} %d\n", prefix, m.cacheErrors.Load())

		w.Write([]byte(sb.String()))
	}
}

func writeHeader(sb *strings.Builder, name, help, kind string) {
	fmt.Fprintf(sb, "# HELP %s%s %s\n", prefix, name, help)
	fmt.Fprintf(sb, "# TYPE %s%s %s\n", prefix, name, kind)
}

// MetricsMiddleware creates middleware that records request metrics
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status
			wrapped := &statusResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			m.RecordRequest(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
