package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/project"
)

// FileStore keeps each project as <name>.toml in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
	catalog *nodes.Catalog
}

// NewFileStore creates a store in baseDir. An empty baseDir means
// ~/.config/dial/projects. Projects are decoded through catalog; nil means
// the built-in node library.
func NewFileStore(baseDir string, catalog *nodes.Catalog) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "dial", "projects")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, catalog: catalog}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) projectPath(name string) string {
	return filepath.Join(s.baseDir, name+".toml")
}

// Put writes p under its name. The project's own path is left unchanged.
func (s *FileStore) Put(ctx context.Context, p *project.Project) error {
	if err := checkName(p.Name()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.projectPath(p.Name())
	tmp, err := os.CreateTemp(s.baseDir, ".put-*")
	if err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := p.Encode(tmp, project.TOML); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// Get loads the named project.
func (s *FileStore) Get(ctx context.Context, name string) (*project.Project, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := project.Load(s.projectPath(name), s.catalog)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return p, err
}

// List returns the stored projects sorted by name. Files that fail to
// decode are listed with zero nodes.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirents, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var out []Entry
	for _, d := range dirents {
		if d.IsDir() || filepath.Ext(d.Name()) != ".toml" || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		e := Entry{Name: strings.TrimSuffix(d.Name(), ".toml"), UpdatedAt: info.ModTime()}
		if p, err := project.Load(filepath.Join(s.baseDir, d.Name()), s.catalog); err == nil {
			e.Nodes = p.Scene().Len()
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Delete removes the named project.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.projectPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("remove project: %w", err)
	}
	return nil
}

// Close does nothing.
func (s *FileStore) Close(context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
