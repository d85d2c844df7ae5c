package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitlog/internal/constants"
	"github.com/julianstephens/habitlog/internal/utils"
)

// Config is the process configuration read from HABITLOG_* variables
type Config struct {
	HTTPAddr      string        `env:"HABITLOG_HTTP_ADDR"       envDefault:"localhost:8080"`
	Database      string        `env:"HABITLOG_DATABASE"        envDefault:"~/.config/habitlog/habitlog.db"`
	LogDir        string        `env:"HABITLOG_LOG_DIR"`
	Debug         bool          `env:"HABITLOG_DEBUG"`
	Timezone      string        `env:"HABITLOG_TIMEZONE"        envDefault:"Local"`
	SessionTTL    time.Duration `env:"HABITLOG_SESSION_TTL"     envDefault:"168h"`
	SecureCookies bool          `env:"HABITLOG_SECURE_COOKIES"`
	RedisURL      string        `env:"HABITLOG_REDIS_URL"`
	RateLimit     float64       `env:"HABITLOG_RATE_LIMIT"      envDefault:"5"`
	RateBurst     int           `env:"HABITLOG_RATE_BURST"      envDefault:"10"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the given dotenv files, when present, and then the environment.
// Variables already set in the environment win over dotenv values.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HABITLOG_HTTP_ADDR must not be empty")
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("HABITLOG_SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return fmt.Errorf("rate limit and burst must be positive, got %v/%d", c.RateLimit, c.RateBurst)
	}
	return nil
}

// LogDirectory returns LogDir, defaulting to the user config directory
func (c Config) LogDirectory() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), constants.AppName, "logs")
	}
	return filepath.Join(dir, constants.AppName, "logs")
}

// Location resolves the configured timezone
func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}
