package session

import (
	"slices"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/observability"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Enter makes a child of the active node the new active node. The live
// view is saved into the current node and the child's saved view is
// restored, or initialized to (0, 0, 1) on first entry. Entering the
// active node is a no-op.
func (s *Session) Enter(id string) error {
	if id == s.active {
		return nil
	}
	n, ok := s.tree.Node(id)
	if !ok {
		return errs.New(errs.ErrCodeNodeNotFound, "node %q does not exist", id)
	}
	if n.Parent() != s.active {
		return errs.New(errs.ErrCodeNotAChild, "node %q is not a child of %q", id, s.active)
	}
	stack := append(slices.Clip(s.stack), s.crumb(s.Active()))
	return s.navigate(n, stack)
}

// GoToAncestor jumps back to a node on the breadcrumb trail, dropping every
// crumb after it.
func (s *Session) GoToAncestor(id string) error {
	if id == s.active {
		return nil
	}
	i := slices.IndexFunc(s.stack, func(c Crumb) bool { return c.ID == id })
	if i < 0 {
		if _, ok := s.tree.Node(id); !ok {
			return errs.New(errs.ErrCodeNodeNotFound, "node %q does not exist", id)
		}
		return errs.New(errs.ErrCodeNotAnAncestor, "node %q is not an ancestor of %q", id, s.active)
	}
	n, _ := s.tree.Node(id)
	return s.navigate(n, slices.Clone(s.stack[:i]))
}

// Up goes to the parent of the active node. It is a no-op at the root.
func (s *Session) Up() error {
	if len(s.stack) == 0 {
		return nil
	}
	return s.GoToAncestor(s.stack[len(s.stack)-1].ID)
}

// Open jumps to any node, rebuilding the trail from parent references.
func (s *Session) Open(id string) error {
	if id == s.active {
		return nil
	}
	path, err := s.tree.Path(id)
	if err != nil {
		return err
	}
	stack := make([]Crumb, 0, len(path)-1)
	for _, n := range path[:len(path)-1] {
		stack = append(stack, s.crumb(n))
	}
	return s.navigate(path[len(path)-1], stack)
}

// Breadcrumbs returns the trail from the root to the active node
// inclusive. Titles reflect the current node names.
func (s *Session) Breadcrumbs() []Crumb {
	out := make([]Crumb, 0, len(s.stack)+1)
	for _, c := range s.stack {
		if n, ok := s.tree.Node(c.ID); ok {
			c.Title = n.Name
		}
		out = append(out, c)
	}
	return append(out, s.crumb(s.Active()))
}

// Depth returns the number of levels between the root and the active node.
func (s *Session) Depth() int { return len(s.stack) }

func (s *Session) crumb(n *workspace.Node) Crumb {
	return Crumb{ID: n.ID, Title: n.Name}
}

// navigate switches the active node. It is the only place that changes
// s.active.
func (s *Session) navigate(to *workspace.Node, stack []Crumb) error {
	if s.navigating {
		return errs.New(errs.ErrCodeReentrant, "navigation to %q while another navigation is running", to.ID)
	}
	s.navigating = true
	defer func() { s.navigating = false }()

	s.gestures.Cancel()
	from := s.active
	_ = s.tree.SaveView(from, s.vp.State())

	s.stack = stack
	s.active = to.ID
	s.selected = ""
	s.restoreView(to)

	s.logger.Debug("navigate", "from", from, "to", to.ID, "depth", len(stack))
	observability.Session().OnNavigate(from, to.ID, len(stack))
	s.emit(Event{Kind: EventNavigate, NodeID: to.ID})
	return nil
}

func (s *Session) restoreView(n *workspace.Node) {
	if v, ok := n.View(); ok {
		s.vp.Restore(v)
		return
	}
	s.vp.Reset()
	_ = s.tree.SaveView(n.ID, s.vp.State())
}
