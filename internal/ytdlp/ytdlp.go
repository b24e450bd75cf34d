package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
	"github.com/openmusicplayer/videoinfo/internal/extractor"
	"github.com/openmusicplayer/videoinfo/internal/logger"
)

// Config holds configuration for the yt-dlp service
type Config struct {
	// Path is the yt-dlp binary (default: "yt-dlp")
	Path string
	// Retries is how many extra attempts a network failure gets
	Retries int
	// RetryBackoff overrides the initial backoff between attempts
	RetryBackoff time.Duration
	Logger       *logger.Logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path:    "yt-dlp",
		Retries: 1,
	}
}

// Service resolves video URLs into format lists by shelling out to yt-dlp.
type Service struct {
	cfg   *Config
	path  string
	retry *apperrors.RetryConfig
	log   *logger.Logger
}

var _ extractor.Extractor = (*Service)(nil)

// New creates a new yt-dlp service
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = "yt-dlp"
	}

	path, err := exec.LookPath(cfg.Path)
	if err != nil {
		return nil, ErrYtdlpNotFound
	}

	retry := apperrors.ExtractionRetryConfig(cfg.Retries)
	if cfg.RetryBackoff > 0 {
		retry.InitialBackoff = cfg.RetryBackoff
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	return &Service{
		cfg:   cfg,
		path:  path,
		retry: retry,
		log:   log.WithComponent("ytdlp"),
	}, nil
}

// Path returns the resolved binary path.
func (s *Service) Path() string {
	return s.path
}

// Version runs yt-dlp --version. It doubles as the readiness probe.
func (s *Service) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, s.path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp --version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Extract retrieves metadata and the format list for a URL without
// downloading anything. Network failures are retried; everything else is
// returned as an *extractor.Error on the first attempt.
func (s *Service) Extract(ctx context.Context, sourceURL string) (*extractor.Metadata, error) {
	attempt := 0
	return apperrors.RetryWithResult(ctx, s.retry, func(ctx context.Context) (*extractor.Metadata, error) {
		attempt++
		m, err := s.dump(ctx, sourceURL)
		if err != nil {
			var extErr *extractor.Error
			if errors.As(err, &extErr) && extErr.Retryable() {
				s.log.Warn(ctx, "yt-dlp network failure", map[string]interface{}{
					"attempt": attempt,
					"reason":  extErr.Reason,
				})
			}
		}
		return m, err
	})
}

func (s *Service) dump(ctx context.Context, sourceURL string) (*extractor.Metadata, error) {
	args := []string{
		"-J",
		"--no-playlist",
		"--no-warnings",
		"--skip-download",
		"--",
		sourceURL,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Do not wait on grandchildren still holding the pipes after a kill.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	s.log.Debug(ctx, "yt-dlp finished", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"exit_ok":     err == nil,
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, categorizeError(stderr.String(), err)
		}
		return nil, fmt.Errorf("failed to run yt-dlp: %w", err)
	}

	var out output
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	return out.toMetadata(), nil
}
