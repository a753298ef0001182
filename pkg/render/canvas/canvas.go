package canvas

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/nestboard/pkg/curve"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

const canvasCSS = `
    .background { fill: #f7f7f5; }
    .card rect { fill: #ffffff; stroke: #d0d0cc; stroke-width: 1; }
    .card-canvas rect { fill: #fdfcf7; }
    .card .title { font: 600 16px sans-serif; fill: #222; }
    .card .body { font: 12px sans-serif; fill: #555; }
    .card .badge { font: 11px sans-serif; fill: #888; }
    .connection { fill: none; stroke: #8a8a85; stroke-width: 2; }`

// DefaultScreen is the output size when none is given.
var DefaultScreen = geom.Size{Width: 1280, Height: 800}

type Option func(*renderer)

type renderer struct {
	screen  geom.Size
	view    *viewport.ViewState
	fit     bool
	padding float64
	policy  viewport.Policy
	css     bool
}

// WithScreen sets the output size in pixels.
func WithScreen(s geom.Size) Option { return func(r *renderer) { r.screen = s } }

// WithView overrides the layer's saved view.
func WithView(v viewport.ViewState) Option { return func(r *renderer) { r.view = &v } }

// WithFit frames all cards of the layer, leaving padding pixels around them.
func WithFit(padding float64) Option {
	return func(r *renderer) { r.fit, r.padding = true, padding }
}

// WithPolicy sets the zoom limits applied to the view.
func WithPolicy(p viewport.Policy) Option { return func(r *renderer) { r.policy = p } }

// WithoutStyle omits the embedded stylesheet.
func WithoutStyle() Option { return func(r *renderer) { r.css = false } }

// RenderSVG renders the children of layer and their connections.
func RenderSVG(t *workspace.Tree, layer string, opts ...Option) ([]byte, error) {
	r := renderer{screen: DefaultScreen, policy: viewport.DefaultPolicy(), css: true}
	for _, opt := range opts {
		opt(&r)
	}

	cards, err := t.Children(layer)
	if err != nil {
		return nil, err
	}
	conns, err := t.Connections(layer)
	if err != nil {
		return nil, err
	}
	view := r.resolveView(t, layer)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		num(r.screen.Width), num(r.screen.Height), r.screen.Width, r.screen.Height)
	if r.css {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", canvasCSS)
	}
	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%s" height="%s"/>`+"\n",
		num(r.screen.Width), num(r.screen.Height))
	fmt.Fprintf(&buf, `  <g class="layer" data-layer="%s" transform="%s">`+"\n", escapeXML(layer), view.SVGTransform())

	byID := make(map[string]*workspace.Node, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}
	buf.WriteString(`    <g class="connections">` + "\n")
	for _, c := range conns {
		from, to := byID[c.From], byID[c.To]
		if from == nil || to == nil {
			continue
		}
		path := curve.Between(from.Rect(), to.Rect()).Unshift().SVGPath()
		fmt.Fprintf(&buf, `      <path class="connection" data-from="%s" data-to="%s" d="%s"/>`+"\n",
			escapeXML(c.From), escapeXML(c.To), path)
	}
	buf.WriteString("    </g>\n")

	buf.WriteString(`    <g class="cards">` + "\n")
	for _, c := range cards {
		renderCard(&buf, c)
	}
	buf.WriteString("    </g>\n")
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *renderer) resolveView(t *workspace.Tree, layer string) viewport.ViewState {
	vp := viewport.New(r.policy)
	switch {
	case r.view != nil:
		vp.Restore(*r.view)
	case r.fit:
		if kids, _ := t.Children(layer); len(kids) > 0 {
			vp.Fit(t.Bounds(layer), r.screen, r.padding)
		}
	default:
		if n, ok := t.Node(layer); ok {
			if v, ok := n.View(); ok {
				vp.Restore(v)
			}
		}
	}
	return vp.State()
}

func renderCard(buf *bytes.Buffer, n *workspace.Node) {
	spec := n.Kind.Spec()
	x, y, w, h := n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height
	inner := w - 2*cardPadding

	fmt.Fprintf(buf, `      <g class="card card-%s" id="card-%s">`+"\n", spec.Name, escapeXML(n.ID))
	fmt.Fprintf(buf, `        <rect x="%s" y="%s" width="%s" height="%s" rx="8" ry="8"/>`+"\n", num(x), num(y), num(w), num(h))

	titleY := y + cardPadding + titleFontSize
	title := truncate(spec.Icon+" "+n.Name, inner, titleFontSize)
	fmt.Fprintf(buf, `        <text class="title" x="%s" y="%s">%s</text>`+"\n",
		num(x+cardPadding), num(titleY), escapeXML(title))

	switch spec.Expand {
	case workspace.ExpandDocument:
		avail := h - (titleY - y) - cardPadding
		maxLines := int(avail / (bodyFontSize * lineHeight))
		for i, line := range wrap(n.Content, inner, bodyFontSize, maxLines) {
			ly := titleY + float64(i+1)*bodyFontSize*lineHeight + 4
			fmt.Fprintf(buf, `        <text class="body" x="%s" y="%s">%s</text>`+"\n",
				num(x+cardPadding), num(ly), escapeXML(line))
		}
	default:
		fmt.Fprintf(buf, `        <text class="badge" x="%s" y="%s" text-anchor="end">%s</text>`+"\n",
			num(x+w-cardPadding), num(y+h-cardPadding), badge(n.ChildCount()))
	}
	buf.WriteString("      </g>\n")
}

func badge(n int) string {
	if n == 1 {
		return "1 item"
	}
	return strconv.Itoa(n) + " items"
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
