package session

import (
	"time"

	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/gesture"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// ResizeGrip is the side of the square resize grip in the bottom-right
// corner of every card, in screen pixels.
const ResizeGrip = 12.0

// HitTest classifies the screen point (sx, sy) for the gesture machine.
func (s *Session) HitTest(sx, sy float64) gesture.Target {
	p := s.vp.ScreenToWorld(sx, sy)
	n, ok := s.tree.ChildAt(s.active, p)
	if !ok {
		return gesture.Background()
	}
	grip := ResizeGrip / s.vp.Scale()
	br := n.Rect().Max()
	if p.X >= br.X-grip && p.Y >= br.Y-grip {
		return gesture.ResizeHandle(n.ID)
	}
	return gesture.Node(n.ID)
}

// Gesture returns the state of the pointer machine.
func (s *Session) Gesture() *gesture.Machine { return s.gestures }

// Press feeds a button press at a screen point, hit-testing the target.
func (s *Session) Press(b gesture.Button, sx, sy float64, at time.Time) error {
	return s.HandlePointer(gesture.Down{Button: b, Target: s.HitTest(sx, sy), X: sx, Y: sy, At: at})
}

// Motion feeds a pointer move.
func (s *Session) Motion(sx, sy float64, at time.Time) error {
	return s.HandlePointer(gesture.Move{X: sx, Y: sy, At: at})
}

// Release feeds a button release.
func (s *Session) Release(sx, sy float64, at time.Time) error {
	return s.HandlePointer(gesture.Up{X: sx, Y: sy, At: at})
}

// HandlePointer runs ev through the gesture machine and applies the
// resulting actions: pans move the view, drags move the card by the delta
// divided by the scale, resizes grow the card the same way, and a
// double-click on a card enters it.
func (s *Session) HandlePointer(ev gesture.Event) error {
	for _, a := range s.gestures.Handle(ev) {
		if err := s.apply(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) apply(a gesture.Action) error {
	switch a.Kind {
	case gesture.ActionPanBy:
		s.Pan(a.DX, a.DY)
	case gesture.ActionDragBy:
		d := s.vp.DragDelta(a.DX, a.DY)
		if err := s.tree.MoveBy(a.Target.ID, d); err != nil {
			s.gestures.Cancel()
			return err
		}
		s.emit(Event{Kind: EventLayer, Op: "move", NodeID: a.Target.ID})
	case gesture.ActionResizeBy:
		n, ok := s.tree.Node(a.Target.ID)
		if !ok {
			s.gestures.Cancel()
			return nil
		}
		d := s.vp.DragDelta(a.DX, a.DY)
		size := geom.Size{Width: n.Size.Width + d.X, Height: n.Size.Height + d.Y}
		if err := s.tree.Resize(n.ID, size); err != nil {
			return err
		}
		s.emit(Event{Kind: EventLayer, Op: "resize", NodeID: n.ID})
	case gesture.ActionClick:
		s.selected = a.Target.ID
	case gesture.ActionDoubleClick:
		if a.Target.Kind == gesture.TargetNode {
			return s.Enter(a.Target.ID)
		}
	case gesture.ActionEnd:
		s.logger.Debug("gesture end", "mode", a.Mode, "target", a.Target)
	}
	return nil
}

// NodeAt returns the card under the screen point, if any.
func (s *Session) NodeAt(sx, sy float64) (*workspace.Node, bool) {
	return s.tree.ChildAt(s.active, s.vp.ScreenToWorld(sx, sy))
}
