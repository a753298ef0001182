// Package nodelink renders a board's hierarchy as a node-link diagram.
//
// # Overview
//
// Every node becomes a box. Nesting is drawn as solid arrows from a
// container to its children, and connections between siblings as dashed
// lines without arrowheads. The diagram is an overview of the whole board,
// which the canvas renderer cannot show because it draws one layer.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PNG output:
//
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: labels include the kind, child count and a content excerpt
//   - Root: draw only the subtree under this node
//   - Highlight: node drawn with a bold outline, usually the active layer
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PNG conversion goes through headless Chrome.
package nodelink
