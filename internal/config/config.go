package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name           string `envconfig:"APP_NAME" default:"Spendly"`
		Port           int    `envconfig:"PORT" default:"8080"`
		LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
		LogFormat      string `envconfig:"LOG_FORMAT" default:"text"`
		CurrencySymbol string `envconfig:"CURRENCY_SYMBOL" default:"Rs."`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"spendly"`
		Migrate  bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
		AllowedOrigins  []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Auth struct {
		Secret   string        `envconfig:"AUTH_SECRET"`
		Issuer   string        `envconfig:"AUTH_ISSUER" default:"spendly"`
		TokenTTL time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	}

	Retention struct {
		SweepOnStream bool `envconfig:"RETENTION_SWEEP_ON_STREAM" default:"true"`
	}

	TUI struct {
		UserID      string `envconfig:"TUI_USER_ID"`
		DisplayName string `envconfig:"TUI_DISPLAY_NAME" default:"me"`
		LogFile     string `envconfig:"TUI_LOG_FILE"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
