package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/WhiteBite/diaflow/pkg/cache"
)

// =============================================================================
// Config - TOML Configuration File
// =============================================================================

// Config holds the settings read from the diaflow config file. Every field
// has a working default, so a missing file is not an error. Command-line
// flags override config values.
//
// Example ~/.config/diaflow/config.toml:
//
//	[convert]
//	to = "drawio"
//
//	[layout]
//	algorithm = "layered"
//	direction = "LR"
//
//	[cache]
//	backend = "redis"
//
//	[cache.redis]
//	addr = "localhost:6379"
type Config struct {
	Convert ConvertConfig `toml:"convert"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
	Server  ServerConfig  `toml:"server"`
}

// ConvertConfig sets defaults for the convert command.
type ConvertConfig struct {
	// To is the default target format when --to is omitted and the output
	// path has no recognized extension.
	To string `toml:"to"`
}

// LayoutConfig sets default layout options for convert and layout.
type LayoutConfig struct {
	Algorithm   string  `toml:"algorithm"` // layered, grid, none
	Direction   string  `toml:"direction"` // TB, BT, LR, RL
	NodeSpacing float64 `toml:"node_spacing"`
	RankSpacing float64 `toml:"rank_spacing"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", "mongo", or "none".
	// Empty means "file".
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory (default: XDG cache dir).
	Dir string `toml:"dir"`

	Redis RedisConfig `toml:"redis"`
	Mongo MongoConfig `toml:"mongo"`
}

// RedisConfig holds connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds connection settings for the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() *Config {
	return &Config{
		Cache:  CacheConfig{Backend: "file"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// loadConfig reads the config file from the standard location.
// A missing file yields the defaults without error.
func loadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return defaultConfig(), nil
	}
	return loadConfigFrom(path)
}

// loadConfigFrom reads a TOML config file from path, layered over the
// defaults so partial files work.
func loadConfigFrom(path string) (*Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// configPath returns the config file location using the XDG standard
// (~/.config/diaflow/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Cache Backend Selection
// =============================================================================

// newCacheBackend builds the cache selected by the config. The context is
// used to establish connections for the network backends. A file backend
// that cannot determine its directory degrades to a null cache rather than
// failing the command.
func newCacheBackend(ctx context.Context, cfg CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "mongo":
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be file, redis, mongo, or none)", cfg.Backend)
	}
}
