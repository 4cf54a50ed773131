// Package config loads gitlanes settings from a TOML file.
//
// Configuration is optional. Load reads ~/.config/gitlanes/config.toml
// (honoring XDG_CONFIG_HOME) and falls back to defaults when the file does
// not exist. Environment variables prefixed GITLANES_ override file values,
// so `GITLANES_PALETTE=light gitlanes graph` works without editing the file.
//
// Example config.toml:
//
//	backend = "gogit"
//	palette = "dark"
//	limit = 500
//
//	[log]
//	level = "info"
//
//	[cache]
//	backend = "file"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[server]
//	addr = "127.0.0.1:7420"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// Sentinel errors for configuration loading.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrInvalidConfig  = errors.New("invalid config")
)

const appName = "gitlanes"

// Cache backend names accepted in [cache].
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults applied when the config file or a key is absent.
const (
	DefaultLogLevel   = "info"
	DefaultServerAddr = "127.0.0.1:7420"
	DefaultRedisAddr  = "localhost:6379"
)

// Config is the top-level gitlanes configuration.
type Config struct {
	// Backend selects the repository reader ("gogit", "gitexec", or empty
	// for auto-detection).
	Backend string `toml:"backend"`
	// Palette selects the lane color palette.
	Palette string `toml:"palette"`
	// Limit caps how many commits a snapshot captures.
	Limit int `toml:"limit"`

	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `toml:"level"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures the local web server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Palette: pipeline.DefaultPalette,
		Limit:   pipeline.DefaultLimit,
		Log:     LogConfig{Level: DefaultLogLevel},
		Cache:   CacheConfig{Backend: CacheFile, Redis: RedisConfig{Addr: DefaultRedisAddr}},
		Server:  ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads the default config file, applies GITLANES_* environment
// overrides, and validates the result. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadFrom(path)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads a config file at an explicit path. Unlike Load, a missing
// file is an error, and no environment overrides are applied.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	}
	return cfg, nil
}

// Validate checks that enumerated fields hold known values.
func (c *Config) Validate() error {
	if c.Palette != "" {
		if err := pipeline.ValidatePalette(c.Palette); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	switch c.Cache.Backend {
	case "", CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("%w: cache backend %q, must be one of: file, redis, none", ErrInvalidConfig, c.Cache.Backend)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q, must be one of: debug, info, warn, error", ErrInvalidConfig, c.Log.Level)
	}
	if c.Limit < 0 {
		return fmt.Errorf("%w: limit must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// =============================================================================
// Environment overrides
// =============================================================================

// applyEnv overrides file values from GITLANES_* variables.
func applyEnv(c *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString("GITLANES_BACKEND", &c.Backend)
	setString("GITLANES_PALETTE", &c.Palette)
	setString("GITLANES_LOG_LEVEL", &c.Log.Level)
	setString("GITLANES_CACHE_BACKEND", &c.Cache.Backend)
	setString("GITLANES_CACHE_DIR", &c.Cache.Dir)
	setString("GITLANES_REDIS_ADDR", &c.Cache.Redis.Addr)
	setString("GITLANES_SERVER_ADDR", &c.Server.Addr)

	if v := os.Getenv("GITLANES_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Limit = n
		}
	}
}

// =============================================================================
// Paths
// =============================================================================

// Dir returns the config directory using XDG standard (~/.config/gitlanes/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// expandHome resolves a leading ~ in a path.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
