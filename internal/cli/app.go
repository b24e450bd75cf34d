package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/openmusicplayer/videoinfo/internal/api"
	"github.com/openmusicplayer/videoinfo/internal/auth"
	"github.com/openmusicplayer/videoinfo/internal/cache"
	"github.com/openmusicplayer/videoinfo/internal/config"
	"github.com/openmusicplayer/videoinfo/internal/health"
	"github.com/openmusicplayer/videoinfo/internal/logger"
	"github.com/openmusicplayer/videoinfo/internal/metrics"
	"github.com/openmusicplayer/videoinfo/internal/validators"
	"github.com/openmusicplayer/videoinfo/internal/videoinfo"
	"github.com/openmusicplayer/videoinfo/internal/ytdlp"
)

// app holds everything built from one Config.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	ytdlp    *ytdlp.Service
	registry *validators.Registry
	cache    *cache.Cache
	auth     *auth.Service
	metrics  *metrics.Metrics
	service  *videoinfo.Service
}

// newApp loads nothing itself; cfg comes from config.Load. A Redis that
// cannot be reached at startup disables the cache instead of failing.
func newApp(ctx context.Context, cfg *config.Config, logOutput io.Writer) (*app, error) {
	log := logger.New(&logger.Config{
		Output: logOutput,
		Level:  logger.ParseLevel(cfg.LogLevel),
	})
	logger.SetDefault(log)

	yt, err := ytdlp.New(&ytdlp.Config{
		Path:    cfg.YtdlpPath,
		Retries: cfg.ExtractRetries,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (looked for %q)", err, cfg.YtdlpPath)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		ytdlp:    yt,
		registry: validators.DefaultRegistry(validators.WithLegacySubstringMatch(cfg.LegacyPlatformMatch)),
		metrics:  metrics.Default(),
	}

	if cfg.AuthEnabled() {
		if a.auth, err = auth.NewService(cfg.JWTSecret); err != nil {
			return nil, err
		}
	}

	svcCfg := videoinfo.Config{
		Extractor:      yt,
		Registry:       a.registry,
		ExtractTimeout: cfg.ExtractTimeout,
		MaxFormats:     cfg.MaxFormats,
		CacheTTL:       cfg.CacheTTL,
		Logger:         log,
		Metrics:        a.metrics,
	}

	if cfg.CacheEnabled() {
		c, err := cache.New(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn(ctx, "redis unavailable, result cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			a.cache = c
			svcCfg.Cache = c
		}
	}

	if a.service, err = videoinfo.New(svcCfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) router() *api.Router {
	checkerCfg := &health.CheckerConfig{
		YtdlpCheck: func(ctx context.Context) error {
			_, err := a.ytdlp.Version(ctx)
			return err
		},
		Version: a.cfg.Version,
	}
	if a.cache != nil {
		checkerCfg.Redis = a.cache.Client()
	}

	return api.NewRouter(api.Config{
		VideoInfo:      a.service,
		Platforms:      validators.NewHandlers(a.registry),
		Health:         health.NewHandler(health.NewChecker(checkerCfg)),
		Metrics:        a.metrics,
		Auth:           a.auth,
		Logger:         a.log,
		AllowedOrigins: a.cfg.AllowedOrigins,
		Version:        a.cfg.Version,
	})
}

func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}
