// Package cli implements the dial command-line interface.
//
// # Commands
//
//   - export: turn a project (.toml, .json or .zy script) into a notebook
//   - graph: draw a project as DOT, SVG or PNG
//   - nodes, datasets: list what projects can use
//   - plugins: install, enable and disable node plugins
//   - store: push and pull projects to a shared store
//   - serve: run the HTTP export service
//   - cache: inspect and clear the notebook cache
//
// # Configuration
//
// Settings are read from ~/.config/dial/config.toml (see [Config]); --config
// points elsewhere. Flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/davafons/dial/pkg/cache"
	"github.com/davafons/dial/pkg/pipeline"
	"github.com/davafons/dial/pkg/plugin"
	"github.com/davafons/dial/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "dial"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		configPath: defaultConfigPath(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Factories
// =============================================================================

// newPlugins returns a plugin manager with the configured plugins loaded.
// The basic node library is installed on first use.
func (c *CLI) newPlugins() (*plugin.Manager, error) {
	m := plugin.NewDefaultManager(nil, c.Logger)
	if err := m.LoadConfig(c.config.Plugins.File); err != nil {
		return nil, err
	}
	if err := m.EnsureInstalled(plugin.BuiltinName); err != nil {
		return nil, err
	}
	if err := m.LoadActive(); err != nil {
		c.Logger.Warn("some plugins failed to load", "err", err)
	}
	return m, nil
}

// newCache opens the configured cache. An unreachable Redis disables
// caching instead of failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	cfg := c.config.Cache
	if noCache || cfg.Backend == backendNone {
		return cache.NewNullCache()
	}
	if cfg.Backend == backendRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, Addr: cfg.RedisAddr})
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}
	fc, err := cache.NewFileCache(cfg.Dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// newRunner creates a pipeline runner generating with the transformers of
// host.
func (c *CLI) newRunner(ctx context.Context, host *plugin.Host, noCache bool) *pipeline.Runner {
	var keyer cache.Keyer
	if ns := c.config.Cache.Namespace; ns != "" {
		keyer = cache.NewScopedKeyer(nil, ns)
	}
	return pipeline.NewRunner(c.newCache(ctx, noCache), keyer, host.Transformers, c.Logger)
}

// newStore opens the configured project store.
func (c *CLI) newStore(ctx context.Context, host *plugin.Host) (store.Store, error) {
	cfg := c.config.Store
	if cfg.Backend == backendMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.Database,
			Collection: cfg.Collection,
		}, host.Nodes)
	}
	return store.NewFileStore(cfg.Dir, host.Nodes)
}
