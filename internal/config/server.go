package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/cronexpr"
	"github.com/sethvargo/go-envconfig"
)

type ServerConfig struct {
	Addr           string `env:"HTTP_ADDR, default=:8080"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL, default=/download?filename="`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES, default=67108864"`
	FFmpegPath     string `env:"FFMPEG_PATH, default=ffmpeg"`

	RetentionCron   string        `env:"RETENTION_CRON, default=0 * * * *"`
	RetentionMaxAge time.Duration `env:"RETENTION_MAX_AGE, default=24h"`

	LogLevel slog.Level `env:"LOG_LEVEL, default=INFO"`
}

func NewServerConfigFromEnv() (*ServerConfig, error) {
	return newServerConfig(envconfig.OsLookuper())
}

func newServerConfig(lookuper envconfig.Lookuper) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.RetentionMaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive, got %s", cfg.RetentionMaxAge)
	}
	if _, err := cronexpr.Parse(cfg.RetentionCron); err != nil {
		return nil, fmt.Errorf("invalid RETENTION_CRON %q: %w", cfg.RetentionCron, err)
	}

	return &cfg, nil
}
