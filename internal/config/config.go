package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from .env.local / .env.
type Config struct {
	Port           string        `env:"PORT" env-default:"8080"`
	Env            string        `env:"APP_ENV" env-default:"development"`
	DatabaseURL    string        `env:"DATABASE_URL" env-required:"true"`
	RedisURL       string        `env:"REDIS_URL" env-required:"true"`
	ClientURL      string        `env:"CLIENT_URL" env-default:"http://localhost:5173"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"15s"`
	DeadlineCron   string        `env:"DEADLINE_CRON" env-default:"0 0 * * *"`

	JWT     JWTConfig
	Log     LogConfig
	Storage StorageConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET" env-required:"true"`
	TTL    time.Duration `env:"JWT_TTL" env-default:"24h"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// StorageConfig points at an S3-compatible bucket used for chat images.
type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Bucket    string `env:"STORAGE_BUCKET" env-default:"teamdesk"`
	UseSSL    bool   `env:"STORAGE_USE_SSL" env-default:"true"`
	PublicURL string `env:"STORAGE_PUBLIC_URL"`
}

// Enabled reports whether object storage has been configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env files (if any) and then the environment.
func Load() (*Config, error) {
	// .env.local wins over .env; both are optional
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &cfg, nil
}
