package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. VIDEOINFO_SERVER_ADDR.
const EnvPrefix = "VIDEOINFO"

// Keys
const (
	KeyServerAddr            = "server.addr"
	KeyServerReadTimeout     = "server.read_timeout"
	KeyServerWriteTimeout    = "server.write_timeout"
	KeyServerShutdownTimeout = "server.shutdown_timeout"
	KeyLogLevel              = "log.level"
	KeyYtdlpPath             = "ytdlp.path"
	KeyYtdlpTimeout          = "ytdlp.timeout"
	KeyYtdlpRetries          = "ytdlp.retries"
	KeyFormatsMax            = "formats.max"
	KeyLegacyPlatformMatch   = "platforms.legacy_substring_match"
	KeyCORSAllowedOrigins    = "cors.allowed_origins"
	KeyCacheRedisURL         = "cache.redis_url"
	KeyCacheTTL              = "cache.ttl"
	KeyAuthJWTSecret         = "auth.jwt_secret"
	KeyVersion               = "version"
)

var defaults = map[string]any{
	KeyServerAddr:            ":5001",
	KeyServerReadTimeout:     "15s",
	KeyServerWriteTimeout:    "90s",
	KeyServerShutdownTimeout: "10s",
	KeyLogLevel:              "info",
	KeyYtdlpPath:             "yt-dlp",
	KeyYtdlpTimeout:          "60s",
	KeyYtdlpRetries:          1,
	KeyFormatsMax:            10,
	KeyLegacyPlatformMatch:   false,
	KeyCORSAllowedOrigins:    "*",
	KeyCacheRedisURL:         "",
	KeyCacheTTL:              "10m",
	KeyAuthJWTSecret:         "",
	KeyVersion:               "1.0.0",
}

// Config is read once at startup and never mutated afterwards.
type Config struct {
	ServerAddr      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	LogLevel string

	YtdlpPath      string
	ExtractTimeout time.Duration
	ExtractRetries int

	MaxFormats          int
	LegacyPlatformMatch bool

	AllowedOrigins []string

	// Redis result cache; empty URL disables it
	RedisURL string
	CacheTTL time.Duration

	// Bearer-token auth; empty secret disables it
	JWTSecret string

	Version string
}

// CacheEnabled reports whether a Redis URL was configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

// AuthEnabled reports whether a JWT secret was configured.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads configuration from the environment and, if present, a
// videoinfo.{yaml,toml,json} file in the working directory or the path in
// $VIDEOINFO_CONFIG.
func Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("videoinfo")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerAddr:          v.GetString(KeyServerAddr),
		ReadTimeout:         v.GetDuration(KeyServerReadTimeout),
		WriteTimeout:        v.GetDuration(KeyServerWriteTimeout),
		ShutdownTimeout:     v.GetDuration(KeyServerShutdownTimeout),
		LogLevel:            v.GetString(KeyLogLevel),
		YtdlpPath:           v.GetString(KeyYtdlpPath),
		ExtractTimeout:      v.GetDuration(KeyYtdlpTimeout),
		ExtractRetries:      v.GetInt(KeyYtdlpRetries),
		MaxFormats:          v.GetInt(KeyFormatsMax),
		LegacyPlatformMatch: v.GetBool(KeyLegacyPlatformMatch),
		AllowedOrigins:      splitList(v.GetString(KeyCORSAllowedOrigins)),
		RedisURL:            v.GetString(KeyCacheRedisURL),
		CacheTTL:            v.GetDuration(KeyCacheTTL),
		JWTSecret:           v.GetString(KeyAuthJWTSecret),
		Version:             v.GetString(KeyVersion),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerAddr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.YtdlpPath == "" {
		return errors.New("ytdlp.path must not be empty")
	}
	if c.ExtractTimeout <= 0 {
		return fmt.Errorf("ytdlp.timeout must be positive, got %s", c.ExtractTimeout)
	}
	if c.MaxFormats <= 0 {
		return fmt.Errorf("formats.max must be positive, got %d", c.MaxFormats)
	}
	if c.ExtractRetries < 0 {
		c.ExtractRetries = 0
	}
	if c.CacheEnabled() && c.CacheTTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when cache is enabled, got %s", c.CacheTTL)
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
