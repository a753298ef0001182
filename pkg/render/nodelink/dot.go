package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/nestboard/pkg/observability"
	"github.com/matzehuels/nestboard/pkg/render"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the kind, child count and a content excerpt in
	// node labels. When false, only the icon and name are shown.
	Detailed bool

	// Root limits the diagram to the subtree under this node.
	// Empty means the whole board.
	Root string

	// Highlight is drawn with a bold outline.
	Highlight string
}

const excerptLen = 40

// ToDOT converts a tree to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Text nodes are filled light yellow to set them apart from containers.
func ToDOT(t *workspace.Tree, opts Options) string {
	root := opts.Root
	if root == "" {
		root = workspace.RootID
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var nodes []*workspace.Node
	_ = t.Walk(func(n *workspace.Node, _ int) error {
		if n.ID == root || t.IsAncestor(root, n.ID) {
			nodes = append(nodes, n)
		}
		return nil
	})

	for _, n := range nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label, n.ID == opts.Highlight)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range nodes {
		for _, c := range n.Children() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, c)
		}
	}
	for _, n := range nodes {
		for _, c := range n.Connections() {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed, dir=none, constraint=false, color=grey40];\n", c.From, c.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *workspace.Node, detailed bool) string {
	spec := n.Kind.Spec()
	title := spec.Icon + " " + n.Name
	if !detailed {
		return title
	}

	parts := []string{"kind: " + spec.Name}
	if spec.Expand == workspace.ExpandCanvas {
		parts = append(parts, fmt.Sprintf("children: %d", n.ChildCount()))
	} else if n.Content != "" {
		parts = append(parts, excerpt(n.Content))
	}
	return title + "\n" + strings.Join(parts, "\n")
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= excerptLen {
		return s
	}
	return string(r[:excerptLen-1]) + "…"
}

func fmtAttrs(n *workspace.Node, label string, highlight bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsRoot():
		attrs = append(attrs, "shape=folder", "fillcolor=lightgrey")
	case n.Kind == workspace.KindText:
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	if highlight {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) (out []byte, err error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, render.FormatSVG, strings.Count(dot, "label="))
	defer func() {
		observability.Render().OnRenderComplete(ctx, render.FormatSVG, time.Since(start), err)
	}()

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

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
