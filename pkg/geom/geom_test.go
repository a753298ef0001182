package geom

import "testing"

func TestRectCenterAndContains(t *testing.T) {
	r := Rect{Min: Point{X: 10, Y: 20}, Size: Size{Width: 100, Height: 50}}

	if c := r.Center(); c != (Point{X: 60, Y: 45}) {
		t.Errorf("Center() = %v, want {60 45}", c)
	}
	if !r.Contains(Point{X: 10, Y: 20}) {
		t.Error("Contains(top-left) = false, want true")
	}
	if !r.Contains(Point{X: 110, Y: 70}) {
		t.Error("Contains(bottom-right) = false, want true")
	}
	if r.Contains(Point{X: 111, Y: 70}) {
		t.Error("Contains(outside) = true, want false")
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{Min: Point{X: 0, Y: 0}, Size: Size{Width: 10, Height: 10}}
	b := Rect{Min: Point{X: -5, Y: 20}, Size: Size{Width: 10, Height: 5}}

	got := a.Union(b)
	want := Rect{Min: Point{X: -5, Y: 0}, Size: Size{Width: 15, Height: 25}}
	if got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty.Union(b) = %v, want %v", got, b)
	}
}

func TestPointDist(t *testing.T) {
	if d := (Point{X: 0, Y: 0}).Dist(Point{X: 3, Y: 4}); d != 5 {
		t.Errorf("Dist() = %v, want 5", d)
	}
}
