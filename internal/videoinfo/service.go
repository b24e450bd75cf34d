// Package videoinfo runs the lookup pipeline: validate, classify, extract,
// normalize, rank and build the response.
package videoinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openmusicplayer/videoinfo/internal/cache"
	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
	"github.com/openmusicplayer/videoinfo/internal/extractor"
	"github.com/openmusicplayer/videoinfo/internal/formats"
	"github.com/openmusicplayer/videoinfo/internal/logger"
	"github.com/openmusicplayer/videoinfo/internal/metrics"
	"github.com/openmusicplayer/videoinfo/internal/validators"
)

// DefaultExtractTimeout bounds a single extractor call.
const DefaultExtractTimeout = 60 * time.Second

// Cache stores serialized results. *cache.Cache satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Config holds the dependencies of a Service. Extractor and Registry are
// required; everything else has a default or is optional.
type Config struct {
	Extractor      extractor.Extractor
	Registry       *validators.Registry
	Cache          Cache
	CacheTTL       time.Duration
	ExtractTimeout time.Duration
	MaxFormats     int
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
}

// Service is built once at startup and is safe for concurrent use.
type Service struct {
	extractor      extractor.Extractor
	registry       *validators.Registry
	cache          Cache
	cacheTTL       time.Duration
	extractTimeout time.Duration
	maxFormats     int
	log            *logger.Logger
	metrics        *metrics.Metrics
}

// New creates a Service from cfg.
func New(cfg Config) (*Service, error) {
	if cfg.Extractor == nil {
		return nil, errors.New("videoinfo: extractor is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("videoinfo: registry is required")
	}

	s := &Service{
		extractor:      cfg.Extractor,
		registry:       cfg.Registry,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		extractTimeout: cfg.ExtractTimeout,
		maxFormats:     cfg.MaxFormats,
		log:            cfg.Logger,
		metrics:        cfg.Metrics,
	}
	if s.extractTimeout <= 0 {
		s.extractTimeout = DefaultExtractTimeout
	}
	if s.maxFormats <= 0 {
		s.maxFormats = formats.MaxFormats
	}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.log = s.log.WithComponent("videoinfo")
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.cache != nil && s.cacheTTL <= 0 {
		s.cacheTTL = 10 * time.Minute
	}
	return s, nil
}

// SupportedPlatforms returns the display names of the allow-listed platforms.
func (s *Service) SupportedPlatforms() []string {
	return s.registry.SupportedPlatforms()
}

// GetVideoInfo resolves rawURL into a ranked format list. Exactly one of the
// return values is non-nil; errors are always *apperrors.AppError.
func (s *Service) GetVideoInfo(ctx context.Context, rawURL string) (info *VideoInfo, err error) {
	start := time.Now()
	url := strings.TrimSpace(rawURL)

	defer func() {
		if rec := recover(); rec != nil {
			info = nil
			err = apperrors.InternalError().WithCause(fmt.Errorf("panic: %v", rec))
		}
		s.logOutcome(ctx, url, info, err, time.Since(start))
	}()

	return s.lookup(ctx, url)
}

func (s *Service) lookup(ctx context.Context, url string) (*VideoInfo, error) {
	if url == "" {
		return nil, apperrors.InvalidURL(apperrors.MsgURLMissing)
	}
	if !validators.ValidateURL(url) {
		return nil, apperrors.InvalidURL(apperrors.MsgInvalidURL)
	}
	if s.registry.Classify(url) != validators.Supported {
		return nil, unsupportedPlatform(s.registry.SupportedPlatforms())
	}

	key := s.cacheKey(url)
	if cached, ok := s.fromCache(ctx, key, url); ok {
		return cached, nil
	}

	meta, err := s.extract(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(meta.Formats) == 0 {
		return nil, apperrors.FetchFailed(apperrors.MsgNoFormats)
	}

	normalized := formats.Normalize(meta.Formats)
	if len(normalized) == 0 {
		return nil, apperrors.FetchFailed(apperrors.MsgNoFormats)
	}

	info := buildResponse(meta, formats.Rank(normalized, s.maxFormats), url)
	s.toCache(ctx, key, info)
	return info, nil
}

func (s *Service) extract(ctx context.Context, url string) (*extractor.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	start := time.Now()
	meta, err := s.extractor.Extract(ctx, url)
	s.metrics.ObserveExtraction(time.Since(start), err)

	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			// The extractor noticed the deadline in its own way.
			err = fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, classifyExtractionError(err)
	}
	if meta == nil {
		return nil, apperrors.InternalError().WithCause(errors.New("extractor returned no metadata"))
	}
	return meta, nil
}

// cacheKey prefers the platform's canonical URL so equivalent links share
// an entry.
func (s *Service) cacheKey(url string) string {
	if s.cache == nil {
		return ""
	}
	if res := s.registry.Validate(url); res.Valid && res.Canonical != "" {
		return cache.Key(res.Canonical)
	}
	return cache.Key(url)
}

func (s *Service) fromCache(ctx context.Context, key, url string) (*VideoInfo, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.metrics.CacheError()
		return nil, false
	}
	if !ok {
		s.metrics.CacheMiss()
		return nil, false
	}

	var info VideoInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		s.metrics.CacheError()
		s.log.Warn(ctx, "discarding unreadable cache entry", map[string]interface{}{"key": key})
		return nil, false
	}
	s.metrics.CacheHit()

	// The entry may have been stored under a different link to the same video.
	info.URL = url
	if info.Formats == nil {
		info.Formats = []formats.Format{}
	}
	return &info, true
}

func (s *Service) toCache(ctx context.Context, key string, info *VideoInfo) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		s.metrics.CacheError()
	}
}

// logOutcome writes the single log line for a finished lookup.
func (s *Service) logOutcome(ctx context.Context, url string, info *VideoInfo, err error, d time.Duration) {
	fields := map[string]interface{}{
		"url":         url,
		"duration_ms": d.Milliseconds(),
	}

	if err == nil {
		s.metrics.RecordOutcome(metrics.OutcomeOK)
		fields["outcome"] = metrics.OutcomeOK
		fields["formats"] = len(info.Formats)
		s.log.Info(ctx, "video info lookup succeeded", fields)
		return
	}

	appErr := apperrors.AsAppError(err)
	s.metrics.RecordOutcome(appErr.Code)
	fields["outcome"] = appErr.Code
	fields["status"] = appErr.HTTPStatus
	fields["message"] = appErr.Message
	fields["formats"] = 0

	if apperrors.IsServerError(appErr) {
		s.log.Error(ctx, "video info lookup failed", appErr, fields)
		return
	}
	if appErr.Cause != nil {
		fields["cause"] = appErr.Cause.Error()
	}
	s.log.Warn(ctx, "video info lookup failed", fields)
}
