// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/hitoshi/workplanner/internal/database"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	MigrateOnStart bool   `envconfig:"MIGRATE_ON_START" default:"true"`

	// Server
	ServerPort      string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	// CORS
	CORSAllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:3000"`

	// Rate Limit（1クライアントあたりの req/min）
	RateLimitGeneral int `envconfig:"RATE_LIMIT_GENERAL" default:"120"`
	RateLimitWrite   int `envconfig:"RATE_LIMIT_WRITE" default:"60"`

	// Logging
	LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"info"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数の未設定、型変換の失敗、サポート外のドライバはエラーとする。
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	// 空文字で設定されている場合もrequiredの検査を通過するため明示的に確認する
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variable is not set: DATABASE_URL")
	}
	if !database.SupportedDriver(cfg.DatabaseDriver) {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q: use %q or %q",
			cfg.DatabaseDriver, database.DriverPostgres, database.DriverSQLite)
	}
	if cfg.RateLimitGeneral <= 0 || cfg.RateLimitWrite <= 0 {
		return nil, fmt.Errorf("rate limits must be positive: general=%d write=%d",
			cfg.RateLimitGeneral, cfg.RateLimitWrite)
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive: %v", cfg.ShutdownTimeout)
	}

	return &cfg, nil
}
