package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/roadmap/pkg/render"
	"github.com/matzehuels/roadmap/pkg/roadmap"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Direction sets the Graphviz rankdir. Defaults to top-to-bottom.
	Direction roadmap.Direction

	// Detailed includes status, category and duration in node labels.
	// When false, only the label is shown.
	Detailed bool
}

var statusFill = map[roadmap.Status]string{
	roadmap.StatusPending:    "white",
	roadmap.StatusInProgress: "lightgoldenrod1",
	roadmap.StatusCompleted:  "palegreen",
	roadmap.StatusLocked:     "lightgrey",
}

var relationshipStyle = map[roadmap.Relationship]string{
	roadmap.Prerequisite: "solid",
	roadmap.Related:      "dashed",
	roadmap.Optional:     "dotted",
}

// ToDOT converts nodes and edges to Graphviz DOT. Edges whose endpoints are
// not among nodes are skipped, so the visible projection of a store can be
// passed directly.
func ToDOT(nodes []roadmap.Node, edges []roadmap.Edge, opts Options) string {
	dir := opts.Direction
	if !dir.Valid() {
		dir = roadmap.TopToBottom
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	hiddenChildren := make(map[string]int)
	for _, e := range edges {
		if e.IsPrerequisite() && !present[e.Target] {
			hiddenChildren[e.Source]++
		}
	}

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		if n.Data.IsCollapsed && hiddenChildren[n.ID] > 0 {
			label += fmt.Sprintf(" [+%d]", hiddenChildren[n.ID])
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, label), ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		if !present[e.Source] || !present[e.Target] {
			continue
		}
		style, ok := relationshipStyle[e.Data.Relationship]
		if !ok {
			style = "solid"
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=%s];\n", e.Source, e.Target, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n roadmap.Node, detailed bool) string {
	if !detailed {
		return n.Data.Label
	}

	parts := []string{
		fmt.Sprintf("status: %s", n.Data.Status),
		fmt.Sprintf("category: %s", n.Data.Category),
	}
	if n.Data.Duration != nil {
		parts = append(parts, fmt.Sprintf("duration: %dm", *n.Data.Duration))
	}
	return n.Data.Label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n roadmap.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if fill, ok := statusFill[n.Data.Status]; ok && fill != "white" {
		attrs = append(attrs, "fillcolor="+fill)
	}
	if n.Data.Status == roadmap.StatusLocked {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey30")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
