package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		SentryDSN string `env:"SENTRY_DSN"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Telegram struct {
		User    int64  `env:"TELEGRAM_USER"`
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
	Weverse struct {
		// Static fallback used when no usable token pair is stored.
		AccessToken  string `env:"WEVERSE_ACCESS_TOKEN"`
		RefreshToken string `env:"WEVERSE_REFRESH_TOKEN"`
		Embeds       bool   `env:"WEVERSE_EMBEDS" env-default:"true"`
		Videos       bool   `env:"WEVERSE_VIDEOS" env-default:"true"`
	}
	Resolver struct {
		URLs []string `env:"RESOLVER_URLS" env-separator:","`
		// 0 disables watch mode.
		WatchMinutes int `env:"RESOLVER_WATCH_MINUTES" env-default:"0"`
	}
}

// GetDSN returns the postgres connection string in keyword form.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("dbname=%s user=%s password=%s host=%s port=%d sslmode=%s",
		c.Postgres.Name, c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.SslMode,
	)
}

func New() (*Config, error) {
	cfg := &Config{}
	err := cleanenv.ReadConfig(".env", cfg)
	if errors.Is(err, fs.ErrNotExist) {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
