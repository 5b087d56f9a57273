// Package project reads and writes dial projects: a named scene of nodes
// and the connections between their ports.
//
// Projects are stored as TOML or JSON with the same layout:
//
//	name = "mnist"
//
//	[[nodes]]
//	id = "data"
//	kind = "DatasetLoader"
//	[nodes.params]
//	dataset = "MNIST"
//
//	[[connections]]
//	from = "data"
//	output = "train"
//	to = "model"
//	input = "dataset"
//
// Nodes are rebuilt through a [nodes.Catalog] and connections are replayed
// through [nodeeditor.Scene.Connect], so a file cannot bypass port rules.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/nodes"
)

// Format is a project file encoding.
type Format string

const (
	TOML Format = "toml"
	JSON Format = "json"
)

// ErrUnknownFormat is returned for file extensions other than .toml and
// .json.
var ErrUnknownFormat = errors.New("unknown project format")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
}

// Project is a named scene. It satisfies the notebook generator's project
// interface.
type Project struct {
	name  string
	path  string
	scene *nodeeditor.Scene
}

// New returns an empty project.
func New(name string) *Project {
	return &Project{name: name, scene: nodeeditor.NewScene()}
}

// Name returns the project name.
func (p *Project) Name() string { return p.name }

// SetName renames the project.
func (p *Project) SetName(name string) { p.name = name }

// Path returns the file the project was loaded from or saved to.
func (p *Project) Path() string { return p.path }

// Scene returns the project graph.
func (p *Project) Scene() *nodeeditor.Scene { return p.scene }

type fileNode struct {
	ID     string         `toml:"id" json:"id"`
	Kind   string         `toml:"kind" json:"kind"`
	Title  string         `toml:"title,omitempty" json:"title,omitempty"`
	Params map[string]any `toml:"params,omitempty" json:"params,omitempty"`
}

type fileConnection struct {
	From   string `toml:"from" json:"from"`
	Output string `toml:"output" json:"output"`
	To     string `toml:"to" json:"to"`
	Input  string `toml:"input" json:"input"`
}

type file struct {
	Name        string           `toml:"name" json:"name"`
	Nodes       []fileNode       `toml:"nodes" json:"nodes"`
	Connections []fileConnection `toml:"connections" json:"connections"`
}

func (p *Project) toFile() file {
	f := file{Name: p.name}
	for _, n := range p.scene.Nodes() {
		fn := fileNode{ID: n.ID(), Kind: n.Kind()}
		if n.Title() != n.Kind() {
			fn.Title = n.Title()
		}
		if len(n.Params()) > 0 {
			fn.Params = n.Params()
		}
		f.Nodes = append(f.Nodes, fn)
	}
	for _, e := range p.scene.Edges() {
		f.Connections = append(f.Connections, fileConnection{
			From: e.From, Output: e.FromPort, To: e.To, Input: e.ToPort,
		})
	}
	return f
}

// Encode writes p to w.
func (p *Project) Encode(w io.Writer, format Format) error {
	f := p.toFile()
	switch format {
	case TOML:
		if err := toml.NewEncoder(w).Encode(f); err != nil {
			return fmt.Errorf("encode project: %w", err)
		}
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode project: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return nil
}

// MarshalJSON returns the JSON encoding of p.
func (p *Project) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf, JSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a project from r. Nodes of kinds missing from catalog are
// kept as placeholders whose ports are inferred from the connections, so
// the rest of the graph keeps its shape. A nil catalog means the built-in
// node library.
func Decode(r io.Reader, format Format, catalog *nodes.Catalog) (*Project, error) {
	var f file
	switch format {
	case TOML:
		if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
	case JSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	return fromFile(f, catalog)
}

func fromFile(f file, catalog *nodes.Catalog) (*Project, error) {
	if catalog == nil {
		catalog = nodes.NewCatalogWithBuiltins()
	}
	p := New(f.Name)

	for _, fn := range f.Nodes {
		if fn.ID == "" {
			return nil, fmt.Errorf("decode project: node of kind %q has no id", fn.Kind)
		}
		n, err := catalog.Build(fn.Kind, fn.ID, fn.Params, nodeeditor.WithTitle(fn.Title))
		if errors.Is(err, nodes.ErrUnknownKind) {
			n, err = placeholder(fn, f.Connections)
		}
		if err != nil {
			return nil, fmt.Errorf("decode project: node %s: %w", fn.ID, err)
		}
		if err := p.scene.AddNode(n); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
	}
	for _, c := range f.Connections {
		if err := p.scene.Connect(c.From, c.Output, c.To, c.Input); err != nil {
			return nil, fmt.Errorf("decode project: connect %s.%s -> %s.%s: %w", c.From, c.Output, c.To, c.Input, err)
		}
	}
	return p, nil
}

func placeholder(fn fileNode, conns []fileConnection) (*nodeeditor.Node, error) {
	n := nodeeditor.NewNode(fn.Kind, nodeeditor.WithID(fn.ID), nodeeditor.WithTitle(fn.Title), nodeeditor.WithParams(fn.Params))
	compat := nodeeditor.WithCompatibility(nodes.Compatible)
	for _, c := range conns {
		if c.To == fn.ID {
			if _, ok := n.InputPort(c.Input); !ok {
				if _, err := n.AddInputPort(c.Input, nodes.Any, compat); err != nil {
					return nil, err
				}
			}
		}
		if c.From == fn.ID {
			if _, ok := n.OutputPort(c.Output); !ok {
				if _, err := n.AddOutputPort(c.Output, nodes.Any, compat); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

// Load reads the project at path, picking the format from the extension.
func Load(path string, catalog *nodes.Catalog) (*Project, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project: %w", err)
	}
	defer f.Close()

	p, err := Decode(f, format, catalog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.name == "" {
		p.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	p.path = path
	return p, nil
}

// Save writes the project to path, picking the format from the extension.
func (p *Project) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.Encode(&buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	p.path = path
	return nil
}
