// Package curve computes the S-shaped connection lines drawn between cards.
//
// Curves are expressed in a shifted coordinate space: every point is moved
// by [Offset] on both axes so the connection layer can be a large SVG
// surface anchored at (-Offset, -Offset) that never produces negative
// coordinates. Renderers that draw in plain logical space call
// [Cubic.Unshift].
package curve

import (
	"strconv"
	"strings"

	"github.com/matzehuels/nestboard/pkg/geom"
)

// Offset shifts curve coordinates into the positive quadrant.
const Offset = 50000

// Cubic is a cubic Bézier segment.
type Cubic struct {
	Start, C1, C2, End geom.Point
}

// Center returns the anchor point of a card box.
func Center(r geom.Rect) geom.Point { return r.Center() }

// Between returns the curve joining the centers of a and b. Control points
// are pulled horizontally by half the horizontal span, which gives the
// familiar S shape and degenerates to a straight line for vertical pairs.
func Between(a, b geom.Rect) Cubic {
	return Join(Center(a), Center(b))
}

// Join returns the curve between two logical points.
func Join(from, to geom.Point) Cubic {
	s := geom.Point{X: from.X + Offset, Y: from.Y + Offset}
	e := geom.Point{X: to.X + Offset, Y: to.Y + Offset}
	d := abs(e.X-s.X) * 0.5
	return Cubic{
		Start: s,
		C1:    geom.Point{X: s.X + d, Y: s.Y},
		C2:    geom.Point{X: e.X - d, Y: e.Y},
		End:   e,
	}
}

// Unshift returns c moved back into logical space.
func (c Cubic) Unshift() Cubic {
	d := geom.Point{X: -Offset, Y: -Offset}
	return Cubic{Start: c.Start.Add(d), C1: c.C1.Add(d), C2: c.C2.Add(d), End: c.End.Add(d)}
}

// SVGPath returns the path data "M sx sy C c1x c1y, c2x c2y, ex ey".
func (c Cubic) SVGPath() string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, c.Start)
	b.WriteString(" C ")
	writePoint(&b, c.C1)
	b.WriteString(", ")
	writePoint(&b, c.C2)
	b.WriteString(", ")
	writePoint(&b, c.End)
	return b.String()
}

// At evaluates the curve at t in [0, 1].
func (c Cubic) At(t float64) geom.Point {
	u := 1 - t
	a, b, cc, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return geom.Point{
		X: a*c.Start.X + b*c.C1.X + cc*c.C2.X + d*c.End.X,
		Y: a*c.Start.Y + b*c.C1.Y + cc*c.C2.Y + d*c.End.Y,
	}
}

// Sample returns n+1 evenly spaced points along the curve, endpoints
// included. n < 1 is treated as 1.
func (c Cubic) Sample(n int) []geom.Point {
	if n < 1 {
		n = 1
	}
	out := make([]geom.Point, n+1)
	for i := 0; i <= n; i++ {
		out[i] = c.At(float64(i) / float64(n))
	}
	return out
}

func writePoint(b *strings.Builder, p geom.Point) {
	b.WriteString(num(p.X))
	b.WriteByte(' ')
	b.WriteString(num(p.Y))
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
