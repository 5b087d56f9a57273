// Package pipeline turns projects into notebooks and diagrams, with
// caching. The CLI and the HTTP service both go through a [Runner] so they
// produce identical output for the same project.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, registry, logger)
//	res, err := runner.Export(ctx, p, "mnist.ipynb")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Cells, "cells, cache hit:", res.CacheHit)
//
// # Caching
//
// A notebook is cached under a key derived from the project's JSON
// encoding, the node kinds with a registered transformer and the build
// version. Loading a plugin or upgrading dial therefore changes the key.
// Failed generations, such as cyclic scenes, are never cached.
package pipeline

import (
	"slices"
	"time"

	"github.com/davafons/dial/pkg/notebook"
)

// Graph output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// ValidFormats lists the formats accepted by [Runner.Graph].
var ValidFormats = []string{FormatDOT, FormatSVG, FormatPNG}

// IsValidFormat reports whether f is a graph output format.
func IsValidFormat(f string) bool { return slices.Contains(ValidFormats, f) }

// Options tunes a run.
type Options struct {
	// Refresh skips the cache lookup. The fresh result is still stored.
	Refresh bool
}

// GraphOptions selects a diagram rendering.
type GraphOptions struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Result is a generated notebook with the facts about how it was made.
type Result struct {
	Notebook *notebook.Notebook
	// Cells is the number of notebook cells.
	Cells int
	// Skipped lists the IDs of nodes that had no transformer.
	Skipped []string
	// Hash identifies the project content.
	Hash     string
	CacheHit bool
	Stats    Stats
}

// Stats describes a run.
type Stats struct {
	Nodes    int           `json:"nodes"`
	Edges    int           `json:"edges"`
	Duration time.Duration `json:"duration"`
}
