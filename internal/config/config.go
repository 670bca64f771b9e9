package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port     string         `yaml:"port"`
	LogEnv   string         `yaml:"log-env"`
	CORS     []string       `yaml:"cors-origins"`
	Shutdown time.Duration  `yaml:"shutdown-grace-period"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	Driver      string `yaml:"driver"`
	MaxOpen     int    `yaml:"max-open"`
	MaxIdle     int    `yaml:"max-idle"`
	MaxLifetime int    `yaml:"max-lifetime-seconds"`
}

type AuthConfig struct {
	Secret     string `yaml:"jwt-secret"`
	ExpiryDays int    `yaml:"jwt-expiry-days"`
	BcryptCost int    `yaml:"bcrypt-cost"`
}

// TokenTTL converts the configured day count into a duration.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.ExpiryDays) * 24 * time.Hour
}

func defaults() Config {
	return Config{
		Port:     "4000",
		LogEnv:   "dev",
		CORS:     []string{"http://localhost:5173"},
		Shutdown: 5 * time.Second,
		Database: DatabaseConfig{
			MaxOpen:     25,
			MaxIdle:     25,
			MaxLifetime: 300,
		},
		Auth: AuthConfig{
			ExpiryDays: 1,
			BcryptCost: 10,
		},
	}
}

// Load reads .env (if present), then the YAML file named by CONFIG_FILE (if
// set), then applies environment overrides and validates the result.
func Load() (Config, error) {
	cfg, err := Read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for tools that supply some settings
// from their own flags.
func Read() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "parsing yaml")
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var env envReader

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.LogEnv = getenv("LOG_ENV", cfg.LogEnv)
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORS = splitList(v)
	}
	cfg.Shutdown = env.duration("SHUTDOWN_GRACE_PERIOD", cfg.Shutdown)

	cfg.Database.URL = getenv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Driver = getenv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.MaxOpen = env.int("DB_MAX_OPEN", cfg.Database.MaxOpen)
	cfg.Database.MaxIdle = env.int("DB_MAX_IDLE", cfg.Database.MaxIdle)
	cfg.Database.MaxLifetime = env.int("DB_MAX_LIFETIME", cfg.Database.MaxLifetime)

	cfg.Auth.Secret = getenv("JWT_SECRET", cfg.Auth.Secret)
	cfg.Auth.ExpiryDays = env.int("JWT_EXPIRY", cfg.Auth.ExpiryDays)
	cfg.Auth.BcryptCost = env.int("BCRYPT_COST", cfg.Auth.BcryptCost)

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = InferDriver(cfg.Database.URL)
	}
	return env.err
}

func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return errors.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.ExpiryDays <= 0 {
		return errors.New("JWT_EXPIRY must be a positive number of days")
	}
	return nil
}

// InferDriver picks postgres for postgres:// URLs and sqlite otherwise.
func InferDriver(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// envReader parses numeric variables and keeps the first malformed one.
type envReader struct {
	err error
}

func (e *envReader) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(errors.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

// duration accepts "10s"-style durations or a bare number of seconds.
func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	e.fail(errors.Errorf("%s: %q is not a duration", key, v))
	return def
}

func (e *envReader) fail(err error) {
	if e.err == nil {
		e.err = err
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			out = append(out, o)
		}
	}
	return out
}
