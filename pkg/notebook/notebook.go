package notebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

const (
	// FormatMajor and FormatMinor are the nbformat version written.
	FormatMajor = 4
	FormatMinor = 4
)

// Notebook is an ordered list of cells plus document metadata.
type Notebook struct {
	Cells    []Cell
	Metadata map[string]any
}

// New returns an empty notebook with a Python 3 kernelspec.
func New() *Notebook {
	return &Notebook{Metadata: defaultMetadata()}
}

func defaultMetadata() map[string]any {
	return map[string]any{
		"kernelspec": map[string]any{
			"display_name": "Python 3",
			"language":     "python",
			"name":         "python3",
		},
		"language_info": map[string]any{
			"name": "python",
		},
	}
}

// Len returns the number of cells.
func (nb *Notebook) Len() int { return len(nb.Cells) }

// Clone returns a deep enough copy for callers to mutate the cell list and
// metadata maps without affecting nb.
func (nb *Notebook) Clone() *Notebook {
	out := &Notebook{
		Cells:    make([]Cell, len(nb.Cells)),
		Metadata: maps.Clone(nb.Metadata),
	}
	for i, c := range nb.Cells {
		c.Metadata = maps.Clone(c.Metadata)
		out.Cells[i] = c
	}
	return out
}

// Sources returns the source text of every cell in order.
func (nb *Notebook) Sources() []string {
	out := make([]string, len(nb.Cells))
	for i, c := range nb.Cells {
		out[i] = c.Source
	}
	return out
}

// document mirrors the nbformat v4 top level. Fields are declared in key
// order so the encoding is sorted.
type document struct {
	Cells         []map[string]any `json:"cells"`
	Metadata      map[string]any   `json:"metadata"`
	NBFormat      int              `json:"nbformat"`
	NBFormatMinor int              `json:"nbformat_minor"`
}

// MarshalJSON encodes the notebook as nbformat 4 JSON: one-space indent,
// sorted keys and a trailing newline. The output is byte-identical for
// equal notebooks.
func (nb *Notebook) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := nb.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo writes the nbformat encoding of nb to w.
func (nb *Notebook) WriteTo(w io.Writer) (int64, error) {
	data, err := nb.MarshalJSON()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func (nb *Notebook) encode(w io.Writer) error {
	doc := document{
		Cells:         make([]map[string]any, len(nb.Cells)),
		Metadata:      nb.Metadata,
		NBFormat:      FormatMajor,
		NBFormatMinor: FormatMinor,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	for i, c := range nb.Cells {
		doc.Cells[i] = encodeCell(c)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode notebook: %w", err)
	}
	return nil
}

func encodeCell(c Cell) map[string]any {
	meta := c.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	typ := c.Type
	if typ == "" {
		typ = Code
	}
	out := map[string]any{
		"cell_type": string(typ),
		"metadata":  meta,
		"source":    c.Lines(),
	}
	if typ == Code {
		out["execution_count"] = nil
		out["outputs"] = []any{}
	}
	return out
}

type rawCell struct {
	CellType string          `json:"cell_type"`
	Metadata map[string]any  `json:"metadata"`
	Source   json.RawMessage `json:"source"`
}

type rawDocument struct {
	Cells         []rawCell      `json:"cells"`
	Metadata      map[string]any `json:"metadata"`
	NBFormat      int            `json:"nbformat"`
	NBFormatMinor int            `json:"nbformat_minor"`
}

// Parse decodes an nbformat 4 document. Outputs and execution counts are
// dropped. Source may be a string or a list of lines.
func Parse(data []byte) (*Notebook, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	if doc.NBFormat != FormatMajor {
		return nil, fmt.Errorf("decode notebook: unsupported nbformat %d", doc.NBFormat)
	}

	nb := &Notebook{Metadata: doc.Metadata, Cells: make([]Cell, 0, len(doc.Cells))}
	for i, rc := range doc.Cells {
		src, err := decodeSource(rc.Source)
		if err != nil {
			return nil, fmt.Errorf("decode notebook: cell %d: %w", i, err)
		}
		typ := CellType(rc.CellType)
		if !slices.Contains([]CellType{Code, Markdown}, typ) {
			typ = Markdown
		}
		meta := rc.Metadata
		if len(meta) == 0 {
			meta = nil
		}
		nb.Cells = append(nb.Cells, Cell{Type: typ, Source: src, Metadata: meta})
	}
	return nb, nil
}

func decodeSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, ""), nil
}
