// Package export renders the currently visible subgraph to DOT and SVG
// for sharing outside the interactive viewer.
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/codegnosis/depspace/pkg/encode"
	"github.com/codegnosis/depspace/pkg/filter"
	"github.com/codegnosis/depspace/pkg/model"
)

// Options configures DOT export.
type Options struct {
	// Detailed includes per-node metrics in labels.
	// When false, only the node ID is shown.
	Detailed bool

	// ColorMode selects family or raw-category node colors.
	ColorMode encode.ColorMode
}

// ToDOT converts the visible subgraph to Graphviz DOT format. Node fill
// colors follow the same palette the interactive renderer uses, so an
// export matches what was on screen. The resulting DOT string can be
// rendered with [RenderSVG].
func ToDOT(g *model.Graph, v filter.View, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range v.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(g, n, label, opts.ColorMode)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range v.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *model.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	parts := []string{
		fmt.Sprintf("family: %s", n.Family),
		fmt.Sprintf("in: %d", n.Metrics.Inbound),
		fmt.Sprintf("out: %d", n.Metrics.Outbound),
		fmt.Sprintf("depth: %d", n.Metrics.ChainDepth),
	}
	if n.Category != "" {
		parts = append(parts, fmt.Sprintf("category: %s", n.Category))
	}

	return n.ID + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(g *model.Graph, n *model.Node, label string, mode encode.ColorMode) []string {
	var fill encode.Color
	if mode == encode.ColorByCategory {
		fill = encode.CategoryColor(n.Category)
	} else {
		fill = encode.FamilyColor(n.Family)
	}

	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", fill.Hex()),
	}
	if n.Unhealthy() {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if g.IsHub(n.ID) {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
