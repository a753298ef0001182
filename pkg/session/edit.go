package session

import (
	"slices"

	"github.com/matzehuels/nestboard/pkg/curve"
	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/observability"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// NodeOptions overrides the kind defaults of a new card. Zero fields keep
// the defaults; a nil Position places the card at SpawnPoint.
type NodeOptions struct {
	Name     string
	Content  string
	Position *geom.Point
	Size     geom.Size
}

// CreateNode appends a card of the given kind to the active layer.
// Existing siblings are never moved or renamed.
func (s *Session) CreateNode(kind workspace.Kind, opts NodeOptions) (*workspace.Node, error) {
	pos := s.SpawnPoint()
	if opts.Position != nil {
		pos = *opts.Position
	}
	n, err := s.tree.Create(s.active, kind, pos)
	if err == nil {
		if opts.Name != "" {
			n.Name = opts.Name
		}
		if opts.Content != "" {
			n.Content = opts.Content
		}
		if opts.Size != (geom.Size{}) {
			err = s.tree.Resize(n.ID, opts.Size)
		}
	}
	id := ""
	if n != nil {
		id = n.ID
	}
	s.mutated("create", id, err)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// CreateAtViewportCenter spawns a card of the given kind at the center of
// the view with markup as its content, and returns a handle to it.
func (s *Session) CreateAtViewportCenter(kind workspace.Kind, markup string) (*Handle, error) {
	n, err := s.CreateNode(kind, NodeOptions{Content: markup})
	if err != nil {
		return nil, err
	}
	return &Handle{s: s, id: n.ID}, nil
}

// Delete removes a card with its subtree and every connection touching it.
// Nodes on the active path (the active node and its ancestors) cannot be
// deleted. It returns the IDs of all removed nodes.
func (s *Session) Delete(id string) ([]string, error) {
	var removed []string
	err := s.checkNotOnPath(id)
	if err == nil {
		removed, err = s.tree.Delete(id)
	}
	if err == nil {
		if t := s.gestures.Target(); t.ID != "" && slices.Contains(removed, t.ID) {
			s.gestures.Cancel()
		}
		if slices.Contains(removed, s.selected) {
			s.selected = ""
		}
	}
	s.mutated("delete", id, err)
	return removed, err
}

func (s *Session) checkNotOnPath(id string) error {
	if id == workspace.RootID {
		return errs.New(errs.ErrCodeRootImmutable, "the root node cannot be deleted")
	}
	if id == s.active || s.tree.IsAncestor(id, s.active) {
		return errs.New(errs.ErrCodeActivePath, "node %q is on the active path", id)
	}
	return nil
}

// Connect joins two cards of the same layer.
func (s *Session) Connect(from, to string) (workspace.Connection, error) {
	c, err := s.tree.Connect(from, to)
	s.mutated("connect", from, err)
	return c, err
}

// Disconnect removes the connection from→to.
func (s *Session) Disconnect(from, to string) error {
	err := s.tree.Disconnect(from, to)
	s.mutated("disconnect", from, err)
	return err
}

// Rename changes the display name of a node.
func (s *Session) Rename(id, name string) error {
	err := s.tree.Rename(id, name)
	s.mutated("rename", id, err)
	return err
}

// SetContent replaces the body of a card.
func (s *Session) SetContent(id, content string) error {
	err := s.tree.SetContent(id, content)
	s.mutated("content", id, err)
	return err
}

// Move places a card at a logical position.
func (s *Session) Move(id string, pos geom.Point) error {
	err := s.tree.Move(id, pos)
	s.mutated("move", id, err)
	return err
}

// Resize sets the size of a card, never below workspace.MinSize.
func (s *Session) Resize(id string, size geom.Size) error {
	err := s.tree.Resize(id, size)
	s.mutated("resize", id, err)
	return err
}

// LayerCurve is a connection of the active layer with its geometry.
type LayerCurve struct {
	Connection workspace.Connection
	Curve      curve.Cubic
}

// Curve computes the line of one connection. It fails with
// ErrCodeMissingEndpoint when either card no longer exists.
func (s *Session) Curve(c workspace.Connection) (curve.Cubic, error) {
	a, ok := s.tree.Node(c.From)
	if !ok {
		return curve.Cubic{}, errs.New(errs.ErrCodeMissingEndpoint, "connection endpoint %q does not exist", c.From)
	}
	b, ok := s.tree.Node(c.To)
	if !ok {
		return curve.Cubic{}, errs.New(errs.ErrCodeMissingEndpoint, "connection endpoint %q does not exist", c.To)
	}
	return curve.Between(a.Rect(), b.Rect()), nil
}

// Curves recomputes every connection line of the active layer.
func (s *Session) Curves() []LayerCurve {
	conns, _ := s.tree.Connections(s.active)
	out := make([]LayerCurve, 0, len(conns))
	for _, c := range conns {
		cu, err := s.Curve(c)
		if err != nil {
			s.logger.Warn("skipping connection", "from", c.From, "to", c.To, "err", err)
			continue
		}
		out = append(out, LayerCurve{Connection: c, Curve: cu})
	}
	return out
}

func (s *Session) mutated(op, id string, err error) {
	observability.Session().OnMutation(op, id, err)
	if err != nil {
		s.logger.Debug("edit rejected", "op", op, "node", id, "err", err)
		return
	}
	s.logger.Debug("edit", "op", op, "node", id)
	s.emit(Event{Kind: EventLayer, Op: op, NodeID: id})
}

// Handle is a reference to a card created through CreateAtViewportCenter.
// Its methods fail with ErrCodeNodeNotFound once the card is deleted.
type Handle struct {
	s  *Session
	id string
}

// ID returns the card ID.
func (h *Handle) ID() string { return h.id }

// Node returns the card, or nil once it is deleted.
func (h *Handle) Node() *workspace.Node {
	n, _ := h.s.tree.Node(h.id)
	return n
}

// Rename changes the card name.
func (h *Handle) Rename(name string) error { return h.s.Rename(h.id, name) }

// SetContent replaces the card body.
func (h *Handle) SetContent(markup string) error { return h.s.SetContent(h.id, markup) }

// Resize sets the card size.
func (h *Handle) Resize(size geom.Size) error { return h.s.Resize(h.id, size) }

// Move places the card at a logical position.
func (h *Handle) Move(pos geom.Point) error { return h.s.Move(h.id, pos) }

// Delete removes the card and its subtree.
func (h *Handle) Delete() error {
	_, err := h.s.Delete(h.id)
	return err
}
