package viewport

import (
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/nestboard/pkg/geom"
)

// Scale bounds and zoom curve defaults.
const (
	DefaultMinScale        = 0.1
	DefaultMaxScale        = 5.0
	DefaultZoomSensitivity = 0.0015
	DefaultZoomStep        = 0.1
)

// ZoomMode selects the curve that turns a raw wheel delta into a new scale.
type ZoomMode int

const (
	// ZoomExponential multiplies the scale by exp(-delta*Sensitivity).
	ZoomExponential ZoomMode = iota
	// ZoomStep adds or subtracts Step depending on the sign of delta.
	ZoomStep
)

// String returns the configuration name of the mode.
func (m ZoomMode) String() string {
	switch m {
	case ZoomExponential:
		return "exponential"
	case ZoomStep:
		return "step"
	}
	return "unknown"
}

// ParseZoomMode parses a configuration name produced by ZoomMode.String.
func ParseZoomMode(s string) (ZoomMode, error) {
	switch s {
	case "", "exponential":
		return ZoomExponential, nil
	case "step":
		return ZoomStep, nil
	}
	return 0, fmt.Errorf("unknown zoom mode %q", s)
}

// Policy bounds the scale and defines the zoom curve.
type Policy struct {
	MinScale    float64
	MaxScale    float64
	Mode        ZoomMode
	Sensitivity float64 // exponent per wheel unit, ZoomExponential only
	Step        float64 // scale increment per wheel notch, ZoomStep only
}

// DefaultPolicy returns the [0.1, 5] exponential policy.
func DefaultPolicy() Policy {
	return Policy{
		MinScale:    DefaultMinScale,
		MaxScale:    DefaultMaxScale,
		Mode:        ZoomExponential,
		Sensitivity: DefaultZoomSensitivity,
		Step:        DefaultZoomStep,
	}
}

// Validate reports whether the policy can be used for clamping.
func (p Policy) Validate() error {
	switch {
	case !(p.MinScale > 0):
		return fmt.Errorf("min scale must be positive, got %v", p.MinScale)
	case !(p.MaxScale >= p.MinScale):
		return fmt.Errorf("max scale %v must not be below min scale %v", p.MaxScale, p.MinScale)
	case math.IsInf(p.MaxScale, 0):
		return fmt.Errorf("max scale must be finite")
	case p.Mode == ZoomExponential && !(p.Sensitivity > 0):
		return fmt.Errorf("zoom sensitivity must be positive, got %v", p.Sensitivity)
	case p.Mode == ZoomStep && !(p.Step > 0):
		return fmt.Errorf("zoom step must be positive, got %v", p.Step)
	}
	return nil
}

// Clamp bounds s to [MinScale, MaxScale]. NaN collapses to the clamped
// identity scale.
func (p Policy) Clamp(s float64) float64 {
	if math.IsNaN(s) {
		s = 1
	}
	return math.Max(p.MinScale, math.Min(p.MaxScale, s))
}

// Next returns the clamped scale after applying a raw wheel delta to scale.
// Negative deltas (wheel up) zoom in.
func (p Policy) Next(scale, delta float64) float64 {
	switch p.Mode {
	case ZoomStep:
		switch {
		case delta < 0:
			scale += p.Step
		case delta > 0:
			scale -= p.Step
		}
	default:
		scale *= math.Exp(-delta * p.Sensitivity)
	}
	return p.Clamp(scale)
}

// ViewState is the pan offset and scale of one coordinate space.
type ViewState struct {
	PanX  float64 `json:"pan_x" yaml:"pan_x" bson:"pan_x"`
	PanY  float64 `json:"pan_y" yaml:"pan_y" bson:"pan_y"`
	Scale float64 `json:"scale" yaml:"scale" bson:"scale"`
}

// Default returns the identity view (0, 0, 1).
func Default() ViewState { return ViewState{Scale: 1} }

// ScreenToWorld maps a screen point into the logical plane.
// The state must carry a positive scale; a Viewport guarantees this.
func (s ViewState) ScreenToWorld(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - s.PanX) / s.Scale, Y: (p.Y - s.PanY) / s.Scale}
}

// WorldToScreen maps a logical point onto the screen.
func (s ViewState) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*s.Scale + s.PanX, Y: p.Y*s.Scale + s.PanY}
}

// Transform renders the state as a CSS transform.
func (s ViewState) Transform() string {
	return "translate(" + ftoa(s.PanX) + "px, " + ftoa(s.PanY) + "px) scale(" + ftoa(s.Scale) + ")"
}

// SVGTransform renders the state as an SVG transform attribute value.
func (s ViewState) SVGTransform() string {
	return "translate(" + ftoa(s.PanX) + " " + ftoa(s.PanY) + ") scale(" + ftoa(s.Scale) + ")"
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// sanitize replaces non-finite pan components and clamps the scale.
func (s ViewState) sanitize(p Policy) ViewState {
	if math.IsNaN(s.PanX) || math.IsInf(s.PanX, 0) {
		s.PanX = 0
	}
	if math.IsNaN(s.PanY) || math.IsInf(s.PanY, 0) {
		s.PanY = 0
	}
	if !(s.Scale > 0) {
		s.Scale = 1
	}
	s.Scale = p.Clamp(s.Scale)
	return s
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Viewport is the live, policy-bounded view of the active coordinate space.
// The zero value is not usable; use New.
type Viewport struct {
	state  ViewState
	policy Policy
}

// New returns a viewport at the identity view. An invalid policy is replaced
// by DefaultPolicy.
func New(p Policy) *Viewport {
	if p.Validate() != nil {
		p = DefaultPolicy()
	}
	return &Viewport{state: Default().sanitize(p), policy: p}
}

// Policy returns the active policy.
func (v *Viewport) Policy() Policy { return v.policy }

// SetPolicy swaps the policy and re-clamps the current scale. Invalid
// policies are rejected.
func (v *Viewport) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	v.policy = p
	v.state = v.state.sanitize(p)
	return nil
}

// State returns a copy of the live view.
func (v *Viewport) State() ViewState { return v.state }

// Restore replaces the live view. Missing or degenerate fields are replaced
// by defaults and the scale is clamped.
func (v *Viewport) Restore(s ViewState) { v.state = s.sanitize(v.policy) }

// Reset returns to the identity view.
func (v *Viewport) Reset() { v.Restore(Default()) }

// Scale returns the live scale.
func (v *Viewport) Scale() float64 { return v.state.Scale }

// Pan translates the plane by a raw screen delta. Non-finite deltas are
// ignored.
func (v *Viewport) Pan(dx, dy float64) {
	if !finite(dx, dy) {
		return
	}
	v.state.PanX += dx
	v.state.PanY += dy
}

// ZoomAt applies a raw wheel delta anchored at the screen point (sx, sy).
// The logical point under (sx, sy) is unchanged by the call.
func (v *Viewport) ZoomAt(sx, sy, delta float64) {
	if !finite(delta) {
		return
	}
	v.ZoomTo(sx, sy, v.policy.Next(v.state.Scale, delta))
}

// ZoomTo sets an absolute scale anchored at the screen point (sx, sy).
// A non-finite anchor or a NaN scale leaves the view unchanged.
func (v *Viewport) ZoomTo(sx, sy, scale float64) {
	if !finite(sx, sy) || math.IsNaN(scale) {
		return
	}
	world := v.state.ScreenToWorld(geom.Point{X: sx, Y: sy})
	s := v.policy.Clamp(scale)
	v.state.Scale = s
	v.state.PanX = sx - world.X*s
	v.state.PanY = sy - world.Y*s
}

// ScreenToWorld maps a screen point into the active logical plane.
func (v *Viewport) ScreenToWorld(sx, sy float64) geom.Point {
	return v.state.ScreenToWorld(geom.Point{X: sx, Y: sy})
}

// WorldToScreen maps a logical point onto the screen.
func (v *Viewport) WorldToScreen(x, y float64) geom.Point {
	return v.state.WorldToScreen(geom.Point{X: x, Y: y})
}

// DragDelta converts a screen-space pointer delta into the logical
// displacement of an element being dragged.
func (v *Viewport) DragDelta(dx, dy float64) geom.Point {
	return geom.Point{X: dx / v.state.Scale, Y: dy / v.state.Scale}
}

// Transform renders the live view as a CSS transform.
func (v *Viewport) Transform() string { return v.state.Transform() }

// Fit centers bounds inside a screen of the given size, leaving padding
// pixels on each side. The resulting scale is clamped, so very large or
// very small bounds may not fill the screen exactly.
func (v *Viewport) Fit(bounds geom.Rect, screen geom.Size, padding float64) {
	if bounds.Size.Width <= 0 || bounds.Size.Height <= 0 {
		c := bounds.Center()
		v.state = ViewState{PanX: screen.Width/2 - c.X, PanY: screen.Height/2 - c.Y, Scale: 1}.sanitize(v.policy)
		return
	}
	availW := math.Max(1, screen.Width-2*padding)
	availH := math.Max(1, screen.Height-2*padding)
	s := v.policy.Clamp(math.Min(availW/bounds.Size.Width, availH/bounds.Size.Height))
	c := bounds.Center()
	v.state = ViewState{
		PanX:  screen.Width/2 - c.X*s,
		PanY:  screen.Height/2 - c.Y*s,
		Scale: s,
	}
}
