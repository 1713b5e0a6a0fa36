// Package config loads settings from defaults, an optional TOML file and the
// environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage backends for the local task service.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config holds every runtime setting.
type Config struct {
	Port            int           `toml:"port"`
	DBPath          string        `toml:"db_path"`
	LogLevel        string        `toml:"log_level"`
	LogFormat       string        `toml:"log_format"`
	UseLocal        bool          `toml:"use_local"`
	APIURL          string        `toml:"api_url"`
	Storage         string        `toml:"storage"`
	StorageDir      string        `toml:"storage_dir"`
	StorageKey      string        `toml:"storage_key"`
	RedisURL        string        `toml:"redis_url"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:            8080,
		DBPath:          "./data/todolist.db",
		LogLevel:        "info",
		LogFormat:       "text",
		UseLocal:        false,
		APIURL:          "http://localhost:8080/api",
		Storage:         StorageFile,
		StorageDir:      "./data",
		StorageKey:      "todolist_tasks",
		RedisURL:        "redis://localhost:6379/0",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds the configuration. An empty path falls back to TODO_CONFIG and
// then to the user config file, both of which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("TODO_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the per-user config file location, or "" when the
// home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "todolist", "config.toml")
}

func loadFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown key %q", path, undecoded[0].String())
	}
	return nil
}

func loadFromEnv(cfg *Config) error {
	if v := getEnv("PORT", ""); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if v := getEnv("TODO_USE_LOCAL", ""); v != "" {
		useLocal, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TODO_USE_LOCAL: %w", err)
		}
		cfg.UseLocal = useLocal
	}
	cfg.APIURL = getEnv("TODO_API_URL", cfg.APIURL)
	cfg.Storage = getEnv("TODO_STORAGE", cfg.Storage)
	cfg.StorageDir = getEnv("TODO_STORAGE_DIR", cfg.StorageDir)
	cfg.StorageKey = getEnv("TODO_STORAGE_KEY", cfg.StorageKey)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	if v := getEnv("SHUTDOWN_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	switch c.Storage {
	case StorageFile:
		if c.StorageDir == "" {
			return errors.New("storage_dir is required for file storage")
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New("redis_url is required for redis storage")
		}
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", StorageFile, StorageRedis, c.Storage)
	}
	if c.StorageKey == "" {
		return errors.New("storage_key cannot be empty")
	}
	if !c.UseLocal && strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url is required when not using local storage")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
