package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Cortineros"`
		Port     int    `envconfig:"PORT" default:"8080"`
		Env      string `envconfig:"APP_ENV" default:"production"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"cortineros"`
		SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	// An empty Addr disables the projection cache.
	Redis struct {
		Addr     string        `envconfig:"REDIS_ADDR"`
		Password string        `envconfig:"REDIS_PASSWORD"`
		DB       int           `envconfig:"REDIS_DB" default:"0"`
		TTL      time.Duration `envconfig:"LEDGER_CACHE_TTL" default:"10m"`
	}

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET" required:"true"`
		Issuer   string        `envconfig:"JWT_ISSUER" default:"cortineros"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"12h"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Ledger struct {
		Window      int `envconfig:"LEDGER_WINDOW" default:"200"`
		RecentLimit int `envconfig:"RECENT_LIMIT" default:"50"`
	}

	TUI struct {
		// Operator is recorded as created_by on movements entered from the terminal.
		Operator string `envconfig:"TUI_OPERATOR" default:"oficina"`
	}
}

func (c *Config) ConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     fmt.Sprintf("%s:%d", c.DB.Host, c.DB.Port),
		Path:     c.DB.Name,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}

	return u.String()
}

func (c *Config) Development() bool {
	return c.App.Env == "development"
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}

	if cfg.Ledger.Window <= 0 {
		return nil, fmt.Errorf("LEDGER_WINDOW must be positive, got %d", cfg.Ledger.Window)
	}

	return &cfg, nil
}
