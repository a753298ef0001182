package session

import (
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/viewport"
)

// SetScreen records the size of the visible area in pixels. Non-positive
// sizes are ignored.
func (s *Session) SetScreen(size geom.Size) {
	if size.Width > 0 && size.Height > 0 {
		s.screen = size
	}
}

// Screen returns the size of the visible area.
func (s *Session) Screen() geom.Size { return s.screen }

// View returns the live view of the active layer.
func (s *Session) View() viewport.ViewState { return s.vp.State() }

// Policy returns the zoom policy.
func (s *Session) Policy() viewport.Policy { return s.vp.Policy() }

// SetPolicy replaces the zoom policy and re-clamps the live view.
func (s *Session) SetPolicy(p viewport.Policy) error {
	if err := s.vp.SetPolicy(p); err != nil {
		return err
	}
	s.emit(Event{Kind: EventView})
	return nil
}

// Transform returns the CSS transform of the active layer.
func (s *Session) Transform() string { return s.vp.Transform() }

// Pan moves the view by a raw screen delta.
func (s *Session) Pan(dx, dy float64) {
	s.vp.Pan(dx, dy)
	s.emit(Event{Kind: EventView})
}

// ZoomAt zooms by a raw wheel delta keeping the point under (sx, sy)
// fixed.
func (s *Session) ZoomAt(sx, sy, delta float64) {
	s.vp.ZoomAt(sx, sy, delta)
	s.emit(Event{Kind: EventView})
}

// ZoomTo sets an absolute scale anchored at (sx, sy).
func (s *Session) ZoomTo(sx, sy, scale float64) {
	s.vp.ZoomTo(sx, sy, scale)
	s.emit(Event{Kind: EventView})
}

// ZoomCenter zooms by a raw delta anchored at the screen center.
func (s *Session) ZoomCenter(delta float64) {
	s.ZoomAt(s.screen.Width/2, s.screen.Height/2, delta)
}

// ResetView returns the active layer to (0, 0, 1).
func (s *Session) ResetView() {
	s.vp.Reset()
	s.emit(Event{Kind: EventView})
}

// FitLayer frames all cards of the active layer. An empty layer resets the
// view.
func (s *Session) FitLayer(padding float64) {
	b := s.tree.Bounds(s.active)
	if b == (geom.Rect{}) {
		s.ResetView()
		return
	}
	s.vp.Fit(b, s.screen, padding)
	s.emit(Event{Kind: EventView})
}

// ScreenToWorld maps a screen point into the active layer.
func (s *Session) ScreenToWorld(sx, sy float64) geom.Point { return s.vp.ScreenToWorld(sx, sy) }

// WorldToScreen maps a point of the active layer onto the screen.
func (s *Session) WorldToScreen(x, y float64) geom.Point { return s.vp.WorldToScreen(x, y) }

// SpawnPoint returns where a new card is placed: the logical point under
// the screen center, minus the spawn offset.
func (s *Session) SpawnPoint() geom.Point {
	c := s.vp.ScreenToWorld(s.screen.Width/2, s.screen.Height/2)
	return c.Sub(s.spawnOffset)
}
