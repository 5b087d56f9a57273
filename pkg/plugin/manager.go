package plugin

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/davafons/dial/pkg/buildinfo"
)

type provided struct {
	module  Module
	version string
	summary string
}

// Manager installs, loads and unloads plugins. Its methods are safe for
// concurrent use, but loading or unloading while a notebook is being
// generated from the same host changes the registry under that generation.
type Manager struct {
	mu        sync.Mutex
	host      *Host
	logger    *log.Logger
	available map[string]provided
	installed map[string]*Plugin
}

// NewManager creates a manager extending host. A nil logger discards
// output.
func NewManager(host *Host, logger *log.Logger) *Manager {
	if host == nil {
		host = NewHost()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		host:      host,
		logger:    logger,
		available: make(map[string]provided),
		installed: make(map[string]*Plugin),
	}
}

// NewDefaultManager creates a manager offering the [Builtin] module.
func NewDefaultManager(host *Host, logger *log.Logger) *Manager {
	m := NewManager(host, logger)
	m.Provide(BuiltinName, buildinfo.Version, "Dataset, layer, model and training nodes", Builtin{})
	return m
}

// Host returns the host plugins are loaded into.
func (m *Manager) Host() *Host { return m.host }

// Provide makes mod installable under name.
func (m *Manager) Provide(name, version, summary string, mod Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available[name] = provided{module: mod, version: version, summary: summary}
}

// Available returns the names of the provided modules, sorted.
func (m *Manager) Available() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.available))
	for n := range m.available {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Install registers name as installed with the given state. Installing a
// plugin again replaces its recorded state; a loaded plugin stays loaded.
// It does not run the load hook; see [Manager.Load] and
// [Manager.LoadActive].
func (m *Manager) Install(name string, spec Spec) (*Plugin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	av, ok := m.available[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAvailable, name)
	}
	p := &Plugin{
		Name:    name,
		Version: spec.Version,
		Summary: spec.Summary,
		Active:  spec.Active,
		Path:    spec.Path,
		module:  av.module,
	}
	if prev, ok := m.installed[name]; ok {
		p.loaded = prev.loaded
	}
	m.installed[name] = p
	m.logger.Debug("installed plugin", "plugin", name, "active", spec.Active)
	return p, nil
}

// Load runs the plugin's load hook and marks it active. The version and
// summary are refreshed from the provided module, except for development
// plugins (those with a path).
func (m *Manager) Load(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(name)
}

func (m *Manager) load(name string) error {
	p, ok := m.installed[name]
	if !ok {
		m.logger.Warn("cannot load unknown plugin", "plugin", name)
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	if p.loaded {
		p.Active = true
		return nil
	}
	version := p.Version
	if av, ok := m.available[name]; ok && p.Path == "" {
		version = av.version
	}
	m.host.Transformers.SetOrigin(name + "@" + version)
	err := p.module.LoadPlugin(m.host)
	m.host.Transformers.SetOrigin("")
	if err != nil {
		return fmt.Errorf("load plugin %s: %w", name, err)
	}
	if p.Path == "" {
		if av, ok := m.available[name]; ok {
			p.Version, p.Summary = av.version, av.summary
		}
	}
	p.loaded = true
	p.Active = true
	m.logger.Info("loaded plugin", "plugin", name, "version", p.Version)
	return nil
}

// Unload runs the plugin's unload hook and marks it inactive.
func (m *Manager) Unload(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unload(name)
}

func (m *Manager) unload(name string) error {
	p, ok := m.installed[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	if p.loaded {
		if err := p.module.UnloadPlugin(m.host); err != nil {
			return fmt.Errorf("unload plugin %s: %w", name, err)
		}
	}
	p.loaded = false
	p.Active = false
	m.logger.Info("unloaded plugin", "plugin", name)
	return nil
}

// SetActive loads or unloads the plugin.
func (m *Manager) SetActive(name string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if active {
		return m.load(name)
	}
	return m.unload(name)
}

// Installed returns a snapshot of the installed plugins sorted by name.
func (m *Manager) Installed() []Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Plugin, 0, len(m.installed))
	for _, p := range m.installed {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b Plugin) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LoadActive loads every installed plugin marked active. All plugins are
// attempted; the errors are joined.
func (m *Manager) LoadActive() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.installed))
	for n, p := range m.installed {
		if p.Active && !p.loaded {
			names = append(names, n)
		}
	}
	slices.Sort(names)

	var errs []error
	for _, n := range names {
		if err := m.load(n); err != nil {
			m.installed[n].Active = false
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadConfig installs the plugins listed in the TOML file at path. A
// missing file is not an error. Entries naming modules that were not
// provided are skipped with a warning.
func (m *Manager) LoadConfig(path string) error {
	var specs map[string]Spec
	if _, err := toml.DecodeFile(path, &specs); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read plugin config %s: %w", path, err)
	}

	names := make([]string, 0, len(specs))
	for n := range specs {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		if _, err := m.Install(n, specs[n]); err != nil {
			m.logger.Warn("skipping plugin", "plugin", n, "err", err)
		}
	}
	return nil
}

// SaveConfig writes the installed plugins to path as TOML. The file is
// replaced in one rename, so a failed save leaves the previous config.
func (m *Manager) SaveConfig(path string) error {
	specs := make(map[string]Spec)
	for _, p := range m.Installed() {
		specs[p.Name] = p.ToSpec()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("write plugin config: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".plugins-*")
	if err != nil {
		return fmt.Errorf("write plugin config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := toml.NewEncoder(tmp).Encode(specs); err != nil {
		tmp.Close()
		return fmt.Errorf("write plugin config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write plugin config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write plugin config: %w", err)
	}
	return nil
}

// EnsureInstalled installs name as active, with the provided metadata,
// unless it is already installed.
func (m *Manager) EnsureInstalled(name string) error {
	m.mu.Lock()
	_, installed := m.installed[name]
	av, ok := m.available[name]
	m.mu.Unlock()
	if installed {
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAvailable, name)
	}
	_, err := m.Install(name, Spec{Version: av.version, Summary: av.summary, Active: true})
	return err
}
