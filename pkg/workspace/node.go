package workspace

import (
	"slices"

	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/viewport"
)

// Default card geometry.
var (
	DefaultSize = geom.Size{Width: 250, Height: 180}
	MinSize     = geom.Size{Width: 40, Height: 30}
)

// Connection joins two children of the same parent.
type Connection struct {
	From string `json:"from" yaml:"from" bson:"from"`
	To   string `json:"to" yaml:"to" bson:"to"`
}

// Touches reports whether id is either endpoint of c.
func (c Connection) Touches(id string) bool { return c.From == id || c.To == id }

// Node is a card, folder or the root of the hierarchy.
//
// Exported fields are plain data and may be read freely. Structural fields
// (parent, children, view, connections) are only changed through [Tree].
type Node struct {
	ID       string
	Kind     Kind
	Name     string
	Content  string
	Position geom.Point // top-left, in the parent's logical space
	Size     geom.Size

	parent      string
	children    []string
	view        *viewport.ViewState
	connections []Connection
}

// Parent returns the ID of the owning node, or "" for the root.
func (n *Node) Parent() string { return n.parent }

// Children returns a copy of the ordered child IDs.
func (n *Node) Children() []string { return slices.Clone(n.children) }

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.children) }

// View returns the saved view of the node's inner space and whether the
// node has ever been entered.
func (n *Node) View() (viewport.ViewState, bool) {
	if n.view == nil {
		return viewport.ViewState{}, false
	}
	return *n.view, true
}

// Connections returns a copy of the connections among the node's children.
func (n *Node) Connections() []Connection { return slices.Clone(n.connections) }

// Rect returns the node's bounding box in its parent's logical space.
func (n *Node) Rect() geom.Rect { return geom.Rect{Min: n.Position, Size: n.Size} }

// IsRoot reports whether n is the tree origin.
func (n *Node) IsRoot() bool { return n.Kind == KindRoot }
