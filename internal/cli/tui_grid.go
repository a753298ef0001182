package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/nestboard/pkg/session"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// curveSamples is the number of segments a connection is sampled into.
const curveSamples = 64

type cell struct {
	r     rune
	style *lipgloss.Style
}

// cellGrid is a fixed-size character canvas. Writes outside it are
// dropped, so cards partly off screen are clipped.
type cellGrid struct {
	w, h  int
	cells []cell
}

func newCellGrid(w, h int) *cellGrid {
	w, h = max(w, 1), max(h, 1)
	g := &cellGrid{w: w, h: h, cells: make([]cell, w*h)}
	for i := range g.cells {
		g.cells[i].r = ' '
	}
	return g
}

func (g *cellGrid) set(col, row int, r rune, style *lipgloss.Style) {
	if col < 0 || row < 0 || col >= g.w || row >= g.h {
		return
	}
	g.cells[row*g.w+col] = cell{r: r, style: style}
}

func (g *cellGrid) text(col, row int, s string, style *lipgloss.Style) {
	for _, r := range s {
		g.set(col, row, r, style)
		col++
	}
}

// toCell maps a screen pixel to the cell containing it.
func toCell(x, y float64) (int, int) {
	return int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))
}

// drawCurve plots the sampled connection line with dots.
func (g *cellGrid) drawCurve(s *session.Session, lc session.LayerCurve) {
	style := boardCurveStyle
	for _, p := range lc.Curve.Unshift().Sample(curveSamples) {
		sp := s.WorldToScreen(p.X, p.Y)
		col, row := toCell(sp.X, sp.Y)
		g.set(col, row, '·', &style)
	}
}

// drawCard draws a rounded box with the card's title and a one-line
// preview. Cards smaller than a 3x3 box collapse to their icon.
func (g *cellGrid) drawCard(s *session.Session, n *workspace.Node, style lipgloss.Style) {
	r := n.Rect()
	tl := s.WorldToScreen(r.Min.X, r.Min.Y)
	m := r.Max()
	br := s.WorldToScreen(m.X, m.Y)
	c0, r0 := toCell(tl.X, tl.Y)
	c1, r1 := toCell(br.X, br.Y)
	c1, r1 = c1-1, r1-1

	spec := n.Kind.Spec()
	if c1-c0 < 2 || r1-r0 < 2 {
		g.text(c0, r0, spec.Icon, &style)
		return
	}

	for col := c0 + 1; col < c1; col++ {
		g.set(col, r0, '─', &style)
		g.set(col, r1, '─', &style)
	}
	for row := r0 + 1; row < r1; row++ {
		g.set(c0, row, '│', &style)
		g.set(c1, row, '│', &style)
		for col := c0 + 1; col < c1; col++ {
			g.set(col, row, ' ', nil)
		}
	}
	g.set(c0, r0, '╭', &style)
	g.set(c1, r0, '╮', &style)
	g.set(c0, r1, '╰', &style)
	g.set(c1, r1, '◢', &style)

	inner := c1 - c0 - 1
	title := spec.Icon + " " + n.Name
	g.text(c0+1, r0+1, clip(title, inner), &style)

	if r1-r0 < 4 {
		return
	}
	muted := boardMutedStyle
	var preview string
	if spec.Expand == workspace.ExpandDocument {
		preview = firstLine(n.Content)
	} else {
		preview = fmt.Sprintf("%d items", n.ChildCount())
	}
	g.text(c0+1, r0+2, clip(preview, inner), &muted)
}

// String renders the grid, one styled run per change of style.
func (g *cellGrid) String() string {
	var b strings.Builder
	for row := 0; row < g.h; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		var cur *lipgloss.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur != nil {
				b.WriteString(cur.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for col := 0; col < g.w; col++ {
			c := g.cells[row*g.w+col]
			if c.style != cur {
				flush()
				cur = c.style
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}

// clip shortens s to width runes, marking the cut with an ellipsis.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
