// Package dot draws a scene as a Graphviz diagram: one box per node and one
// arrow per port connection, labelled with the ports it joins.
//
//	src := dot.ToDOT(p.Scene(), dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Output follows scene insertion order, so the same scene always produces
// the same DOT text.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/davafons/dial/pkg/nodeeditor"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the node kind, its parameters and the edge port names
	// to the labels. Otherwise only titles are shown.
	Detailed bool

	// Dimmed lists node IDs drawn dashed and grey, typically the nodes no
	// transformer is registered for.
	Dimmed map[string]bool
}

// ToDOT converts a scene to Graphviz DOT source.
func ToDOT(s *nodeeditor.Scene, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if opts.Dimmed[n.ID()] {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey30")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range s.Edges() {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [taillabel=%q, headlabel=%q];\n", e.From, e.To, e.FromPort, e.ToPort)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *nodeeditor.Node, detailed bool) string {
	if !detailed {
		return n.Title()
	}
	lines := []string{n.Title()}
	if n.Title() != n.Kind() {
		lines = append(lines, "("+n.Kind()+")")
	}
	params := n.Params()
	for _, k := range slices.Sorted(maps.Keys(params)) {
		lines = append(lines, fmt.Sprintf("%s: %s", k, fmtValue(params[k])))
	}
	return strings.Join(lines, "\n")
}

// fmtValue keeps long parameters, such as layer lists, to a count.
func fmtValue(v any) string {
	switch v := v.(type) {
	case []any:
		return fmt.Sprintf("[%d items]", len(v))
	case []map[string]any:
		return fmt.Sprintf("[%d items]", len(v))
	case map[string]any:
		return fmt.Sprintf("{%d keys}", len(v))
	}
	return fmt.Sprint(v)
}

// RenderSVG lays out DOT source with Graphviz and returns SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out DOT source with Graphviz and returns a PNG image.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the picture scales with
// its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
