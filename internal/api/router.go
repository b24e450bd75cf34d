// Package api wires the HTTP surface: routes, per-route auth and the
// global middleware chain.
package api

import (
	"net/http"

	"github.com/openmusicplayer/videoinfo/internal/auth"
	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
	"github.com/openmusicplayer/videoinfo/internal/health"
	"github.com/openmusicplayer/videoinfo/internal/logger"
	"github.com/openmusicplayer/videoinfo/internal/metrics"
	"github.com/openmusicplayer/videoinfo/internal/middleware"
	"github.com/openmusicplayer/videoinfo/internal/validators"
)

// Config holds the router's dependencies. Auth is optional; a nil service
// leaves the lookup endpoint open.
type Config struct {
	VideoInfo      VideoInfoService
	Platforms      *validators.Handlers
	Health         *health.Handler
	Metrics        *metrics.Metrics
	Auth           *auth.Service
	Logger         *logger.Logger
	AllowedOrigins []string
	Version        string
}

type Router struct {
	mux       *http.ServeMux
	handler   http.Handler
	cfg       Config
	videoInfo *VideoInfoHandlers
}

func NewRouter(cfg Config) *Router {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Default()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	r := &Router{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		videoInfo: NewVideoInfoHandlers(cfg.VideoInfo),
	}
	r.setupRoutes()

	var corsHeaders []string
	if cfg.Auth != nil {
		corsHeaders = append(corsHeaders, "Authorization")
	}

	r.handler = middleware.Chain(r.mux,
		apperrors.RequestIDMiddleware,
		logger.RecoveryMiddleware(cfg.Logger),
		logger.LoggingMiddleware(cfg.Logger),
		metrics.MetricsMiddleware(cfg.Metrics),
		middleware.CORS(cfg.AllowedOrigins, corsHeaders...),
		middleware.Gzip,
		middleware.Timing(cfg.Logger.WithComponent("timing"), middleware.DefaultSlowThreshold),
	)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("GET /{$}", r.index)

	if r.cfg.Health != nil {
		r.mux.HandleFunc("GET /health", r.cfg.Health.HealthHandler)
		r.mux.HandleFunc("GET /health/ready", r.cfg.Health.ReadinessHandler)
	}
	r.mux.HandleFunc("GET /metrics", r.cfg.Metrics.Handler())

	if r.cfg.Platforms != nil {
		r.mux.HandleFunc("GET /api/platforms", r.cfg.Platforms.GetPlatforms)
	}

	// Lookup (auth required when configured)
	r.mux.HandleFunc("POST /api/get_video_info", r.withAuth(apperrors.HandleFunc(r.videoInfo.GetVideoInfo)))
}

func (r *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	if r.cfg.Auth == nil {
		return next
	}
	mw := auth.Middleware(r.cfg.Auth)
	return func(w http.ResponseWriter, req *http.Request) {
		mw(next).ServeHTTP(w, req)
	}
}

// IndexResponse describes the service at GET /.
type IndexResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (r *Router) index(w http.ResponseWriter, req *http.Request) {
	apperrors.WriteJSON(w, apperrors.GetRequestID(req.Context()), http.StatusOK, IndexResponse{
		Service: "videoinfo",
		Version: r.cfg.Version,
		Endpoints: map[string]string{
			"POST /api/get_video_info": "List downloadable formats for a YouTube or Facebook URL",
			"GET /api/platforms":       "Supported platforms",
			"GET /health":              "Liveness",
			"GET /health/ready":        "Readiness",
			"GET /metrics":             "Prometheus metrics",
		},
	})
}
