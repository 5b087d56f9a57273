// Package plugin manages the extensions that contribute node kinds and
// transformers.
//
// Go has no runtime module import, so every [Module] is compiled into the
// binary and offered to a [Manager] with [Manager.Provide]. The manager
// then tracks which offered plugins are installed and active, persists that
// state as TOML and calls each module's load and unload hooks against a
// shared [Host].
package plugin

import (
	"errors"

	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/notebook"
)

var (
	// ErrNotAvailable is returned when installing a plugin that no module
	// was provided for.
	ErrNotAvailable = errors.New("plugin not available")

	// ErrUnknownPlugin is returned for operations on a plugin that is not
	// installed.
	ErrUnknownPlugin = errors.New("plugin not installed")
)

// Host is what plugins extend: the node catalog and the transformer
// registry used for notebook generation.
type Host struct {
	Nodes        *nodes.Catalog
	Transformers *notebook.Registry
}

// NewHost returns a host with an empty catalog and registry.
func NewHost() *Host {
	return &Host{Nodes: nodes.NewCatalog(), Transformers: notebook.NewRegistry()}
}

// Module is the code behind a plugin.
type Module interface {
	LoadPlugin(h *Host) error
	UnloadPlugin(h *Host) error
}

// Spec is the persisted state of an installed plugin.
type Spec struct {
	Version string `toml:"version" json:"version"`
	Summary string `toml:"summary" json:"summary"`
	Active  bool   `toml:"active" json:"active"`
	Path    string `toml:"path,omitempty" json:"path,omitempty"`
}

// Plugin is an installed plugin.
type Plugin struct {
	Name    string
	Version string
	Summary string
	Active  bool
	// Path points at a development checkout; empty for released plugins.
	Path string

	module Module
	loaded bool
}

// Loaded reports whether the module's load hook has run.
func (p *Plugin) Loaded() bool { return p.loaded }

// ToSpec returns the persisted form of p.
func (p *Plugin) ToSpec() Spec {
	return Spec{Version: p.Version, Summary: p.Summary, Active: p.Active, Path: p.Path}
}

// Builtin is the module registering the standard node library.
type Builtin struct{}

// BuiltinName is the plugin name of [Builtin].
const BuiltinName = "dial-basic-nodes"

// LoadPlugin installs [nodes.Builtins] into h.
func (Builtin) LoadPlugin(h *Host) error {
	nodes.Install(h.Nodes, h.Transformers, nodes.Builtins()...)
	return nil
}

// UnloadPlugin removes what LoadPlugin added.
func (Builtin) UnloadPlugin(h *Host) error {
	nodes.Uninstall(h.Nodes, h.Transformers, nodes.Builtins()...)
	return nil
}
