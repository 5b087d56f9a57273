// Package store keeps named projects outside the working directory.
//
// Two backends implement [Store]:
//   - [FileStore]: one TOML file per project under ~/.config/dial/projects
//   - [MongoStore]: one document per project, shared by a team
//
// Projects are keyed by name. Putting a project whose name already exists
// replaces it.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/davafons/dial/pkg/project"
)

var (
	// ErrNotFound is returned when no project has the requested name.
	ErrNotFound = errors.New("project not found")

	// ErrInvalidName is returned for names that cannot be used as a key.
	ErrInvalidName = errors.New("invalid project name")
)

// Entry describes a stored project.
type Entry struct {
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists projects by name.
type Store interface {
	Put(ctx context.Context, p *project.Project) error
	Get(ctx context.Context, name string) (*project.Project, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, name string) error
	Close(ctx context.Context) error
}

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

func checkName(name string) error {
	if !nameRegex.MatchString(name) || strings.Contains(name, "..") || len(name) > 128 {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
