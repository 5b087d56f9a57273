package notebook

import (
	"maps"
	"strings"
)

// CellType tags a cell as executable code or descriptive markdown.
type CellType string

const (
	Code     CellType = "code"
	Markdown CellType = "markdown"
)

// Cell is one atomic unit of a notebook. Its ordering key is its position
// in [Notebook.Cells].
type Cell struct {
	Type     CellType
	Source   string
	Metadata map[string]any
}

// CodeCell returns a code cell holding src.
func CodeCell(src string) Cell { return Cell{Type: Code, Source: src} }

// MarkdownCell returns a markdown cell holding src.
func MarkdownCell(src string) Cell { return Cell{Type: Markdown, Source: src} }

// CodeLines joins lines into a single code cell.
func CodeLines(lines ...string) Cell { return CodeCell(strings.Join(lines, "\n")) }

// WithMeta returns a copy of c with key set in its metadata.
func (c Cell) WithMeta(key string, value any) Cell {
	m := maps.Clone(c.Metadata)
	if m == nil {
		m = make(map[string]any, 1)
	}
	m[key] = value
	c.Metadata = m
	return c
}

// Lines splits the source the way nbformat stores it: every line but the
// last keeps its trailing newline.
func (c Cell) Lines() []string {
	if c.Source == "" {
		return []string{}
	}
	lines := strings.SplitAfter(c.Source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
