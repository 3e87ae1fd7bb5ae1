package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across the service.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-service"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Gemini   Gemini
	Pipeline Pipeline
}

// Postgres captures connection info for the persistent question store.
// An empty Host means the store tier is unconfigured and skipped.
type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Configured reports whether the store tier should be wired at all.
func (p Postgres) Configured() bool { return p.Host != "" }

// ConnString renders the pgx pool connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds batch cache configuration. An empty Addr disables it.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"20"`
	BatchTTL time.Duration `env:"REDIS_BATCH_TTL" envDefault:"5m"`
}

func (r Redis) Configured() bool { return r.Addr != "" }

// Gemini configures the generative provider. An empty APIKey disables the
// generative tier.
type Gemini struct {
	APIKey     string        `env:"GEMINI_API_KEY"`
	Model      string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	BaseURL    string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout    time.Duration `env:"GEMINI_HTTP_TIMEOUT" envDefault:"12s"`
	AnchorYear int           `env:"GEMINI_ANCHOR_YEAR" envDefault:"2024"`
	EpochYear  int           `env:"GEMINI_EPOCH_YEAR" envDefault:"2009"`
}

func (g Gemini) Configured() bool { return g.APIKey != "" }

// Pipeline groups sourcing policy knobs.
type Pipeline struct {
	CacheFirst    bool          `env:"PIPELINE_CACHE_FIRST" envDefault:"false"`
	Watermark     int           `env:"PIPELINE_WATERMARK" envDefault:"20"`
	MaxBatch      int           `env:"PIPELINE_MAX_BATCH" envDefault:"30"`
	WorkerTimeout time.Duration `env:"PIPELINE_WORKER_TIMEOUT" envDefault:"10s"`
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
