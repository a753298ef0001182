// Package canvas renders one layer of a board as SVG.
//
// The output mirrors what the interactive view shows: the layer's cards
// drawn at their logical positions inside a single group carrying the view
// transform, with connection curves underneath.
//
//	svg, err := canvas.RenderSVG(tree, layerID,
//	    canvas.WithScreen(geom.Size{Width: 1280, Height: 800}),
//	    canvas.WithFit(40),
//	)
//
// Without options the layer's saved view is used, or the identity view for
// a layer that was never entered.
package canvas
