package workspace

import (
	"math"
	"slices"

	"github.com/google/uuid"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/viewport"
)

// RootID is the permanent ID of the tree origin.
const RootID = "root"

// IDGenerator returns a fresh, unique node ID on every call.
type IDGenerator func() string

// NewID returns a time-ordered UUIDv7, so IDs sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Option configures a Tree.
type Option func(*Tree)

// WithIDGenerator replaces the default UUIDv7 generator.
func WithIDGenerator(g IDGenerator) Option { return func(t *Tree) { t.newID = g } }

// WithDefaultSize sets the size given to newly created nodes.
func WithDefaultSize(s geom.Size) Option { return func(t *Tree) { t.defaultSize = s } }

// Tree is the node hierarchy. The zero value is not usable; use New.
type Tree struct {
	nodes       map[string]*Node
	newID       IDGenerator
	defaultSize geom.Size
}

// New returns a tree containing only the root node.
func New(opts ...Option) *Tree {
	t := &Tree{
		nodes:       make(map[string]*Node),
		newID:       NewID,
		defaultSize: DefaultSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.defaultSize = clampSize(t.defaultSize)
	t.nodes[RootID] = &Node{ID: RootID, Kind: KindRoot, Name: KindRoot.Spec().DefaultName}
	return t
}

// Root returns the tree origin.
func (t *Tree) Root() *Node { return t.nodes[RootID] }

// Node returns the node with the given ID.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// DefaultSize returns the size given to newly created nodes.
func (t *Tree) DefaultSize() geom.Size { return t.defaultSize }

func (t *Tree) mustNode(id string) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeNodeNotFound, "node %q does not exist", id)
	}
	return n, nil
}

// Create allocates a fresh ID and appends a node of the given kind to the
// parent's children. Name, content and size come from the kind's defaults.
// Siblings are never renamed or moved.
func (t *Tree) Create(parentID string, kind Kind, pos geom.Point) (*Node, error) {
	spec, err := creatableSpec(kind)
	if err != nil {
		return nil, err
	}
	return t.Add(parentID, Node{
		ID:       t.newID(),
		Kind:     kind,
		Name:     spec.DefaultName,
		Content:  spec.DefaultContent,
		Position: pos,
		Size:     t.defaultSize,
	})
}

func creatableSpec(kind Kind) (Spec, error) {
	if !kind.Valid() || kind == KindRoot {
		return Spec{}, errs.New(errs.ErrCodeInvalidKind, "cannot create node of kind %v", kind)
	}
	return kind.Spec(), nil
}

// Add inserts n as the last child of parentID, keeping n.ID. It is the
// low-level counterpart of Create used when restoring snapshots.
// A zero size is replaced by the tree's default size.
func (t *Tree) Add(parentID string, n Node) (*Node, error) {
	if n.ID == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "node ID must not be empty")
	}
	if _, exists := t.nodes[n.ID]; exists {
		return nil, errs.New(errs.ErrCodeInvalidInput, "duplicate node ID %q", n.ID)
	}
	if _, err := creatableSpec(n.Kind); err != nil {
		return nil, err
	}
	parent, err := t.mustNode(parentID)
	if err != nil {
		return nil, err
	}
	if parent.Kind.Spec().Expand != ExpandCanvas {
		return nil, errs.New(errs.ErrCodeUnsupported, "%s node %q cannot hold children", parent.Kind, parentID)
	}
	if n.Size == (geom.Size{}) {
		n.Size = t.defaultSize
	}
	node := &Node{
		ID:       n.ID,
		Kind:     n.Kind,
		Name:     n.Name,
		Content:  n.Content,
		Position: sanePoint(n.Position),
		Size:     clampSize(n.Size),
		parent:   parentID,
	}
	t.nodes[node.ID] = node
	parent.children = append(parent.children, node.ID)
	return node, nil
}

// Delete removes the node, its whole subtree, its entry in the parent's
// child list and every connection that references it. It returns the IDs of
// all removed nodes, the target first. The root cannot be deleted.
func (t *Tree) Delete(id string) ([]string, error) {
	if id == RootID {
		return nil, errs.New(errs.ErrCodeRootImmutable, "the root node cannot be deleted")
	}
	n, err := t.mustNode(id)
	if err != nil {
		return nil, err
	}
	parent := t.nodes[n.parent]

	removed := t.subtree(id)
	parent.children = slices.DeleteFunc(parent.children, func(c string) bool { return c == id })
	parent.connections = slices.DeleteFunc(parent.connections, func(c Connection) bool { return c.Touches(id) })
	for _, rid := range removed {
		delete(t.nodes, rid)
	}
	return removed, nil
}

// subtree returns id followed by all its descendants in pre-order.
func (t *Tree) subtree(id string) []string {
	var out []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		kids := t.nodes[cur].children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Move sets a node's position in its parent's logical space.
func (t *Tree) Move(id string, pos geom.Point) error {
	n, err := t.mustChild(id)
	if err != nil {
		return err
	}
	n.Position = sanePoint(pos)
	return nil
}

// MoveBy displaces a node by a logical delta.
func (t *Tree) MoveBy(id string, delta geom.Point) error {
	n, err := t.mustChild(id)
	if err != nil {
		return err
	}
	n.Position = sanePoint(n.Position.Add(delta))
	return nil
}

// Resize sets a node's size, enforcing MinSize.
func (t *Tree) Resize(id string, size geom.Size) error {
	n, err := t.mustChild(id)
	if err != nil {
		return err
	}
	n.Size = clampSize(size)
	return nil
}

// Rename changes a node's display name.
func (t *Tree) Rename(id, name string) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	n.Name = name
	return nil
}

// SetContent replaces the body text of a node.
func (t *Tree) SetContent(id, content string) error {
	n, err := t.mustChild(id)
	if err != nil {
		return err
	}
	n.Content = content
	return nil
}

func (t *Tree) mustChild(id string) (*Node, error) {
	if id == RootID {
		return nil, errs.New(errs.ErrCodeRootImmutable, "the root node has no geometry")
	}
	return t.mustNode(id)
}

// Connect joins two children of the same parent.
func (t *Tree) Connect(from, to string) (Connection, error) {
	if from == to {
		return Connection{}, errs.New(errs.ErrCodeSelfConnection, "node %q cannot connect to itself", from)
	}
	a, err := t.mustChild(from)
	if err != nil {
		return Connection{}, err
	}
	b, err := t.mustChild(to)
	if err != nil {
		return Connection{}, err
	}
	if a.parent != b.parent {
		return Connection{}, errs.New(errs.ErrCodeCrossLayerConnection,
			"nodes %q and %q live in different layers", from, to)
	}
	parent := t.nodes[a.parent]
	c := Connection{From: from, To: to}
	if slices.Contains(parent.connections, c) {
		return Connection{}, errs.New(errs.ErrCodeDuplicateConnection, "connection %s -> %s already exists", from, to)
	}
	parent.connections = append(parent.connections, c)
	return c, nil
}

// Disconnect removes the connection from→to. The reverse direction is not
// touched.
func (t *Tree) Disconnect(from, to string) error {
	a, err := t.mustChild(from)
	if err != nil {
		return err
	}
	parent := t.nodes[a.parent]
	i := slices.Index(parent.connections, Connection{From: from, To: to})
	if i < 0 {
		return errs.New(errs.ErrCodeNotFound, "connection %s -> %s does not exist", from, to)
	}
	parent.connections = slices.Delete(parent.connections, i, i+1)
	return nil
}

// Connections returns the connections among the children of parentID.
func (t *Tree) Connections(parentID string) ([]Connection, error) {
	n, err := t.mustNode(parentID)
	if err != nil {
		return nil, err
	}
	return n.Connections(), nil
}

// ConnectionsOf returns the connections in id's layer that touch id.
func (t *Tree) ConnectionsOf(id string) []Connection {
	n, ok := t.nodes[id]
	if !ok || n.parent == "" {
		return nil
	}
	var out []Connection
	for _, c := range t.nodes[n.parent].connections {
		if c.Touches(id) {
			out = append(out, c)
		}
	}
	return out
}

// SaveView stores the view of a node's inner space.
func (t *Tree) SaveView(id string, v viewport.ViewState) error {
	n, err := t.mustNode(id)
	if err != nil {
		return err
	}
	n.view = &v
	return nil
}

// Path returns the nodes from the root to id inclusive, following parent
// references.
func (t *Tree) Path(id string) ([]*Node, error) {
	n, err := t.mustNode(id)
	if err != nil {
		return nil, err
	}
	var path []*Node
	for cur := n; ; cur = t.nodes[cur.parent] {
		path = append(path, cur)
		if cur.parent == "" {
			break
		}
	}
	slices.Reverse(path)
	return path, nil
}

// Depth returns the number of edges between the root and id.
func (t *Tree) Depth(id string) (int, error) {
	p, err := t.Path(id)
	if err != nil {
		return 0, err
	}
	return len(p) - 1, nil
}

// IsAncestor reports whether anc is a strict ancestor of id.
func (t *Tree) IsAncestor(anc, id string) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	for p := n.parent; p != ""; p = t.nodes[p].parent {
		if p == anc {
			return true
		}
	}
	return false
}

// Children returns the child nodes of parentID in drawing order.
func (t *Tree) Children(parentID string) ([]*Node, error) {
	n, err := t.mustNode(parentID)
	if err != nil {
		return nil, err
	}
	out := make([]*Node, len(n.children))
	for i, c := range n.children {
		out[i] = t.nodes[c]
	}
	return out, nil
}

// ChildAt returns the topmost child of parentID whose box contains the
// logical point p. Later children are drawn on top.
func (t *Tree) ChildAt(parentID string, p geom.Point) (*Node, bool) {
	n, ok := t.nodes[parentID]
	if !ok {
		return nil, false
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		c := t.nodes[n.children[i]]
		if c.Rect().Contains(p) {
			return c, true
		}
	}
	return nil, false
}

// Bounds returns the union of the children's boxes of parentID.
func (t *Tree) Bounds(parentID string) geom.Rect {
	var r geom.Rect
	if n, ok := t.nodes[parentID]; ok {
		for _, c := range n.children {
			r = r.Union(t.nodes[c].Rect())
		}
	}
	return r
}

// Walk visits every node in pre-order, children in drawing order.
// Returning a non-nil error from fn stops the walk.
func (t *Tree) Walk(fn func(n *Node, depth int) error) error {
	type item struct {
		id    string
		depth int
	}
	stack := []item{{RootID, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := t.nodes[it.id]
		if err := fn(n, it.depth); err != nil {
			return err
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, item{n.children[i], it.depth + 1})
		}
	}
	return nil
}

// Validate checks the structural invariants: every non-root node is listed
// exactly once in its parent's children, every child points back at its
// parent, every node is reachable from the root, and every connection joins
// two distinct existing children of the node that stores it.
func (t *Tree) Validate() error {
	root, ok := t.nodes[RootID]
	if !ok || root.Kind != KindRoot || root.parent != "" {
		return errs.New(errs.ErrCodeInvalidSnapshot, "missing or malformed root")
	}
	seen := make(map[string]bool, len(t.nodes))
	err := t.Walk(func(n *Node, _ int) error {
		if seen[n.ID] {
			return errs.New(errs.ErrCodeInvalidSnapshot, "node %q is reachable twice", n.ID)
		}
		seen[n.ID] = true
		for _, c := range n.children {
			child, ok := t.nodes[c]
			if !ok {
				return errs.New(errs.ErrCodeNodeNotFound, "child %q of %q does not exist", c, n.ID)
			}
			if child.parent != n.ID {
				return errs.New(errs.ErrCodeInvalidSnapshot, "child %q does not point back at %q", c, n.ID)
			}
		}
		for _, c := range n.connections {
			if c.From == c.To {
				return errs.New(errs.ErrCodeSelfConnection, "self connection on %q", c.From)
			}
			for _, end := range []string{c.From, c.To} {
				e, ok := t.nodes[end]
				if !ok {
					return errs.New(errs.ErrCodeMissingEndpoint, "connection endpoint %q does not exist", end)
				}
				if e.parent != n.ID {
					return errs.New(errs.ErrCodeCrossLayerConnection, "connection endpoint %q is not a child of %q", end, n.ID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(seen) != len(t.nodes) {
		return errs.New(errs.ErrCodeInvalidSnapshot, "%d nodes are unreachable from the root", len(t.nodes)-len(seen))
	}
	return nil
}

func clampSize(s geom.Size) geom.Size {
	if math.IsNaN(s.Width) || s.Width < MinSize.Width {
		s.Width = MinSize.Width
	}
	if math.IsNaN(s.Height) || s.Height < MinSize.Height {
		s.Height = MinSize.Height
	}
	return s
}

func sanePoint(p geom.Point) geom.Point {
	if math.IsNaN(p.X) || math.IsInf(p.X, 0) {
		p.X = 0
	}
	if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		p.Y = 0
	}
	return p
}
