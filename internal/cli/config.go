package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Backend names accepted in the config file.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendMongo = "mongo"
	backendNone  = "none"
)

// Config is the user configuration read from config.toml. Every field is
// optional:
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	namespace = "team:"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8420"
type Config struct {
	Cache   CacheConfig   `toml:"cache"`
	Plugins PluginsConfig `toml:"plugins"`
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
}

// CacheConfig selects where generated notebooks and diagrams are cached.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file (default), redis or none
	Dir       string `toml:"dir"`
	RedisURL  string `toml:"redis_url"`
	RedisAddr string `toml:"redis_addr"`
	// Namespace prefixes cache keys, so several users can share one Redis.
	Namespace string `toml:"namespace"`
}

// PluginsConfig locates the plugin state file.
type PluginsConfig struct {
	File string `toml:"file"`
}

// ServerConfig configures dial serve.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects the project store.
type StoreConfig struct {
	Backend    string `toml:"backend"` // file (default) or mongo
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// loadConfig reads the config at path. A missing file yields the defaults.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if c.Cache.Backend == "" {
		c.Cache.Backend = backendFile
	}
	if c.Store.Backend == "" {
		c.Store.Backend = backendFile
	}
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return Config{}, fmt.Errorf("config: unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case backendFile, backendMongo:
	default:
		return Config{}, fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Plugins.File == "" {
		dir, err := configDir()
		if err != nil {
			return Config{}, err
		}
		c.Plugins.File = filepath.Join(dir, "plugins.toml")
	}
	if c.Cache.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return Config{}, err
		}
		c.Cache.Dir = dir
	}
	return c, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using the XDG standard
// (~/.config/dial/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// cacheDir returns the cache directory using the XDG standard
// (~/.cache/dial/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultConfigPath returns ~/.config/dial/config.toml.
func defaultConfigPath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}
