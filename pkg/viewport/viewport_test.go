package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/nestboard/pkg/geom"
)

const eps = 1e-6

func near(a, b float64) bool { return math.Abs(a-b) <= eps*math.Max(1, math.Abs(b)) }

func TestZoomAtKeepsPointUnderCursor(t *testing.T) {
	states := []ViewState{
		{PanX: 0, PanY: 0, Scale: 1},
		{PanX: 123.5, PanY: -40, Scale: 0.37},
		{PanX: -900, PanY: 2500, Scale: 4.2},
		{PanX: 15, PanY: 15, Scale: DefaultMinScale},
		{PanX: 15, PanY: 15, Scale: DefaultMaxScale},
	}
	cursors := []geom.Point{{X: 0, Y: 0}, {X: 640, Y: 360}, {X: 1919, Y: 3}, {X: -20, Y: 50}}
	deltas := []float64{-1000, -120, -3, 0, 3, 120, 1000}

	for _, mode := range []ZoomMode{ZoomExponential, ZoomStep} {
		p := DefaultPolicy()
		p.Mode = mode
		for _, st := range states {
			for _, c := range cursors {
				for _, d := range deltas {
					vp := New(p)
					vp.Restore(st)
					before := vp.ScreenToWorld(c.X, c.Y)
					vp.ZoomAt(c.X, c.Y, d)
					after := vp.ScreenToWorld(c.X, c.Y)
					if !near(before.X, after.X) || !near(before.Y, after.Y) {
						t.Fatalf("%v: state %+v cursor %v delta %v: world point moved %v -> %v",
							mode, st, c, d, before, after)
					}
				}
			}
		}
	}
}

func TestZoomDirection(t *testing.T) {
	for _, mode := range []ZoomMode{ZoomExponential, ZoomStep} {
		p := DefaultPolicy()
		p.Mode = mode

		vp := New(p)
		vp.ZoomAt(0, 0, -100)
		if vp.Scale() <= 1 {
			t.Errorf("%v: negative delta should zoom in, scale = %v", mode, vp.Scale())
		}

		vp = New(p)
		vp.ZoomAt(0, 0, 100)
		if vp.Scale() >= 1 {
			t.Errorf("%v: positive delta should zoom out, scale = %v", mode, vp.Scale())
		}

		vp = New(p)
		vp.ZoomAt(0, 0, 0)
		if vp.Scale() != 1 {
			t.Errorf("%v: zero delta changed scale to %v", mode, vp.Scale())
		}
	}
}

func TestScaleStaysClamped(t *testing.T) {
	p := DefaultPolicy()
	vp := New(p)
	seq := []float64{-5000, -5000, -5000, 10000, 10000, 10000, 10000, -1, 1, -20000, 3, 7, -250, 99999}
	for i, d := range seq {
		vp.ZoomAt(float64(i*37), float64(i*11), d)
		if s := vp.Scale(); s < p.MinScale || s > p.MaxScale {
			t.Fatalf("after step %d scale %v outside [%v, %v]", i, s, p.MinScale, p.MaxScale)
		}
	}

	vp.ZoomTo(0, 0, 0)
	if vp.Scale() != p.MinScale {
		t.Errorf("ZoomTo(0) scale = %v, want %v", vp.Scale(), p.MinScale)
	}
	vp.ZoomTo(0, 0, -3)
	if vp.Scale() != p.MinScale {
		t.Errorf("ZoomTo(-3) scale = %v, want %v", vp.Scale(), p.MinScale)
	}
	vp.ZoomTo(0, 0, math.Inf(1))
	if vp.Scale() != p.MaxScale {
		t.Errorf("ZoomTo(+Inf) scale = %v, want %v", vp.Scale(), p.MaxScale)
	}
}

func TestPanIsUnscaled(t *testing.T) {
	for _, scale := range []float64{0.1, 1, 2.5, 5} {
		vp := New(DefaultPolicy())
		vp.Restore(ViewState{PanX: 10, PanY: 20, Scale: scale})
		vp.Pan(7, -3)
		st := vp.State()
		if st.PanX != 17 || st.PanY != 17 {
			t.Errorf("scale %v: pan = (%v, %v), want (17, 17)", scale, st.PanX, st.PanY)
		}
		if st.Scale != scale {
			t.Errorf("scale %v: Pan changed scale to %v", scale, st.Scale)
		}
	}
}

func TestNonFiniteInputsIgnored(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	tests := []struct {
		name string
		op   func(*Viewport)
	}{
		{"pan NaN", func(v *Viewport) { v.Pan(nan, 0) }},
		{"pan -Inf", func(v *Viewport) { v.Pan(0, -inf) }},
		{"zoom to NaN scale", func(v *Viewport) { v.ZoomTo(10, 10, nan) }},
		{"zoom to NaN anchor", func(v *Viewport) { v.ZoomTo(nan, 10, 2) }},
		{"zoom to Inf anchor", func(v *Viewport) { v.ZoomTo(10, inf, 2) }},
		{"zoom at NaN delta", func(v *Viewport) { v.ZoomAt(10, 10, nan) }},
		{"zoom at Inf delta", func(v *Viewport) { v.ZoomAt(10, 10, inf) }},
		{"zoom at NaN anchor", func(v *Viewport) { v.ZoomAt(nan, nan, -120) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := New(DefaultPolicy())
			want := ViewState{PanX: 30, PanY: -40, Scale: 1.5}
			vp.Restore(want)
			tt.op(vp)
			if got := vp.State(); got != want {
				t.Errorf("state = %+v, want %+v", got, want)
			}
		})
	}
}

func TestDragDeltaIsScaleCompensated(t *testing.T) {
	tests := []struct {
		scale  float64
		dx, dy float64
		want   geom.Point
	}{
		{1, 10, -4, geom.Point{X: 10, Y: -4}},
		{2, 10, -4, geom.Point{X: 5, Y: -2}},
		{0.5, 10, -4, geom.Point{X: 20, Y: -8}},
	}
	for _, tt := range tests {
		vp := New(DefaultPolicy())
		vp.Restore(ViewState{Scale: tt.scale})
		got := vp.DragDelta(tt.dx, tt.dy)
		if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) {
			t.Errorf("scale %v: DragDelta = %v, want %v", tt.scale, got, tt.want)
		}
	}
}

func TestRoundTripScreenWorld(t *testing.T) {
	vp := New(DefaultPolicy())
	vp.Restore(ViewState{PanX: -33, PanY: 71, Scale: 1.7})
	w := vp.ScreenToWorld(400, 300)
	s := vp.WorldToScreen(w.X, w.Y)
	if !near(s.X, 400) || !near(s.Y, 300) {
		t.Errorf("round trip = %v, want (400, 300)", s)
	}
}

func TestRestoreSanitizes(t *testing.T) {
	tests := []struct {
		name string
		in   ViewState
		want ViewState
	}{
		{"zero value", ViewState{}, ViewState{Scale: 1}},
		{"negative scale", ViewState{PanX: 3, Scale: -2}, ViewState{PanX: 3, Scale: 1}},
		{"nan scale", ViewState{Scale: math.NaN()}, ViewState{Scale: 1}},
		{"nan pan", ViewState{PanX: math.NaN(), PanY: math.Inf(-1), Scale: 2}, ViewState{Scale: 2}},
		{"too large", ViewState{Scale: 50}, ViewState{Scale: DefaultMaxScale}},
		{"too small", ViewState{Scale: 0.01}, ViewState{Scale: DefaultMinScale}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := New(DefaultPolicy())
			vp.Restore(tt.in)
			if got := vp.State(); got != tt.want {
				t.Errorf("Restore(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformIsPureFunctionOfState(t *testing.T) {
	st := ViewState{PanX: 10, PanY: -5.5, Scale: 2}
	want := "translate(10px, -5.5px) scale(2)"
	if got := st.Transform(); got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
	vp := New(DefaultPolicy())
	vp.Restore(st)
	if vp.Transform() != vp.Transform() || vp.Transform() != want {
		t.Errorf("Viewport.Transform() = %q, want %q", vp.Transform(), want)
	}
	if got := st.SVGTransform(); got != "translate(10 -5.5) scale(2)" {
		t.Errorf("SVGTransform() = %q", got)
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{"default", func(p *Policy) {}, false},
		{"zero min", func(p *Policy) { p.MinScale = 0 }, true},
		{"inverted", func(p *Policy) { p.MinScale, p.MaxScale = 3, 0.2 }, true},
		{"infinite max", func(p *Policy) { p.MaxScale = math.Inf(1) }, true},
		{"no sensitivity", func(p *Policy) { p.Sensitivity = 0 }, true},
		{"step without step", func(p *Policy) { p.Mode, p.Step = ZoomStep, 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetPolicyReclamps(t *testing.T) {
	vp := New(DefaultPolicy())
	vp.ZoomTo(0, 0, 4.5)
	p := DefaultPolicy()
	p.MaxScale = 3
	if err := vp.SetPolicy(p); err != nil {
		t.Fatalf("SetPolicy: %v", err)
	}
	if vp.Scale() != 3 {
		t.Errorf("scale after SetPolicy = %v, want 3", vp.Scale())
	}
	if err := vp.SetPolicy(Policy{}); err == nil {
		t.Error("SetPolicy(zero) should fail")
	}
}

func TestParseZoomMode(t *testing.T) {
	for _, m := range []ZoomMode{ZoomExponential, ZoomStep} {
		got, err := ParseZoomMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseZoomMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseZoomMode("linear"); err == nil {
		t.Error("ParseZoomMode(linear) should fail")
	}
}

func TestFit(t *testing.T) {
	vp := New(DefaultPolicy())
	bounds := geom.Rect{Min: geom.Point{X: 0, Y: 0}, Size: geom.Size{Width: 400, Height: 200}}
	vp.Fit(bounds, geom.Size{Width: 800, Height: 600}, 0)

	if !near(vp.Scale(), 2) {
		t.Fatalf("Fit scale = %v, want 2", vp.Scale())
	}
	c := vp.WorldToScreen(200, 100)
	if !near(c.X, 400) || !near(c.Y, 300) {
		t.Errorf("bounds center maps to %v, want screen center", c)
	}
}
