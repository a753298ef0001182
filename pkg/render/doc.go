// Package render turns boards into pictures.
//
// # Overview
//
// Two renderers live in subpackages:
//
//   - [canvas]: one layer as the user sees it, cards and connection curves
//     under the layer's saved view transform
//   - [nodelink]: the whole hierarchy as a Graphviz diagram, nesting as
//     solid edges and connections as dashed ones
//
// Both produce SVG. This package converts SVG to raster formats.
//
// # Format Conversion
//
// [ToPNG] and [ToJPEG] load the SVG into headless Chrome and screenshot the
// root element. Chrome or Chromium must be installed.
//
//	svg, err := canvas.RenderSVG(tree, "root")
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [canvas]: github.com/matzehuels/nestboard/pkg/render/canvas
// [nodelink]: github.com/matzehuels/nestboard/pkg/render/nodelink
package render
