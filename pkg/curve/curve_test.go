package curve

import (
	"testing"

	"github.com/matzehuels/nestboard/pkg/geom"
)

func rect(x, y, w, h float64) geom.Rect {
	return geom.Rect{Min: geom.Point{X: x, Y: y}, Size: geom.Size{Width: w, Height: h}}
}

func TestBetween(t *testing.T) {
	a := rect(0, 0, 250, 180)    // center (125, 90)
	b := rect(400, 100, 100, 80) // center (450, 140)

	c := Between(a, b)
	want := Cubic{
		Start: geom.Point{X: 50125, Y: 50090},
		C1:    geom.Point{X: 50287.5, Y: 50090},
		C2:    geom.Point{X: 50287.5, Y: 50140},
		End:   geom.Point{X: 50450, Y: 50140},
	}
	if c != want {
		t.Errorf("Between() = %+v, want %+v", c, want)
	}
	if got, wantPath := c.SVGPath(), "M 50125 50090 C 50287.5 50090, 50287.5 50140, 50450 50140"; got != wantPath {
		t.Errorf("SVGPath() = %q, want %q", got, wantPath)
	}
}

func TestBetweenRightToLeft(t *testing.T) {
	c := Join(geom.Point{X: 100, Y: 0}, geom.Point{X: 0, Y: 0})
	// Control points still move by half the span in +x from start and -x from end.
	if c.C1.X != Offset+150 || c.C2.X != Offset-50 {
		t.Errorf("controls = %v %v", c.C1, c.C2)
	}
}

func TestVerticalPairIsStraight(t *testing.T) {
	c := Join(geom.Point{X: 10, Y: 0}, geom.Point{X: 10, Y: 300})
	for _, p := range c.Sample(8) {
		if p.X != Offset+10 {
			t.Fatalf("sample %v left the vertical line", p)
		}
	}
}

func TestEndpointsAndUnshift(t *testing.T) {
	from, to := geom.Point{X: -20, Y: 5}, geom.Point{X: 80, Y: -40}
	c := Join(from, to).Unshift()
	if c.At(0) != from || c.At(1) != to {
		t.Errorf("At(0), At(1) = %v, %v; want %v, %v", c.At(0), c.At(1), from, to)
	}
	if n := len(c.Sample(0)); n != 2 {
		t.Errorf("Sample(0) returned %d points, want 2", n)
	}
}
