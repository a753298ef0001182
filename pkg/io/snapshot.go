package io

import (
	"slices"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/geom"
	"github.com/matzehuels/nestboard/pkg/viewport"
	"github.com/matzehuels/nestboard/pkg/workspace"
)

// Version is the snapshot format version written by this package.
const Version = 1

// Snapshot is a serializable copy of a workspace tree.
type Snapshot struct {
	Version int          `json:"version" yaml:"version" bson:"version"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Active  string       `json:"active,omitempty" yaml:"active,omitempty" bson:"active,omitempty"`
	Nodes   []NodeRecord `json:"nodes" yaml:"nodes" bson:"nodes"`
}

// NodeRecord is one node of a snapshot.
type NodeRecord struct {
	ID          string                 `json:"id" yaml:"id" bson:"id"`
	Kind        string                 `json:"kind" yaml:"kind" bson:"kind"`
	Parent      string                 `json:"parent,omitempty" yaml:"parent,omitempty" bson:"parent,omitempty"`
	Name        string                 `json:"name" yaml:"name" bson:"name"`
	Content     string                 `json:"content,omitempty" yaml:"content,omitempty" bson:"content,omitempty"`
	Position    geom.Point             `json:"position" yaml:"position" bson:"position"`
	Size        geom.Size              `json:"size" yaml:"size" bson:"size"`
	Children    []string               `json:"children,omitempty" yaml:"children,omitempty" bson:"children,omitempty"`
	View        *viewport.ViewState    `json:"view,omitempty" yaml:"view,omitempty" bson:"view,omitempty"`
	Connections []workspace.Connection `json:"connections,omitempty" yaml:"connections,omitempty" bson:"connections,omitempty"`
}

// FromTree captures t. active is recorded as the node to reopen; callers
// holding a live session should flush its view into the tree first.
func FromTree(t *workspace.Tree, active string) Snapshot {
	s := Snapshot{Version: Version, Active: active, Nodes: make([]NodeRecord, 0, t.Len())}
	_ = t.Walk(func(n *workspace.Node, _ int) error {
		rec := NodeRecord{
			ID:          n.ID,
			Kind:        n.Kind.String(),
			Parent:      n.Parent(),
			Name:        n.Name,
			Content:     n.Content,
			Children:    n.Children(),
			Connections: n.Connections(),
		}
		if !n.IsRoot() {
			rec.Position = n.Position
			rec.Size = n.Size
		}
		if v, ok := n.View(); ok {
			rec.View = &v
		}
		s.Nodes = append(s.Nodes, rec)
		return nil
	})
	return s
}

// Tree rebuilds the workspace described by s and returns it with the ID of
// the node to reopen. An empty Active reopens the root.
func (s Snapshot) Tree(opts ...workspace.Option) (*workspace.Tree, string, error) {
	if s.Version < 0 || s.Version > Version {
		return nil, "", invalid("unsupported snapshot version %d", s.Version)
	}

	recs := make(map[string]*NodeRecord, len(s.Nodes))
	var root *NodeRecord
	for i := range s.Nodes {
		r := &s.Nodes[i]
		if r.ID == "" {
			return nil, "", invalid("node %d has no id", i)
		}
		if _, dup := recs[r.ID]; dup {
			return nil, "", invalid("duplicate node id %q", r.ID)
		}
		recs[r.ID] = r
		kind, err := workspace.ParseKind(r.Kind)
		if err != nil {
			return nil, "", errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "node %q", r.ID)
		}
		if kind == workspace.KindRoot {
			if root != nil {
				return nil, "", invalid("more than one root: %q and %q", root.ID, r.ID)
			}
			root = r
		}
	}
	if root == nil {
		return nil, "", invalid("snapshot has no root")
	}
	if root.ID != workspace.RootID || root.Parent != "" {
		return nil, "", invalid("root must have id %q and no parent", workspace.RootID)
	}

	t := workspace.New(opts...)
	if err := t.Rename(workspace.RootID, root.Name); err != nil {
		return nil, "", err
	}

	// Breadth-first from the root along children lists, so that every node
	// is added after its parent and unreachable or cyclic records are left
	// over.
	queue := []*NodeRecord{root}
	added := 1
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, cid := range p.Children {
			c, ok := recs[cid]
			if !ok {
				return nil, "", invalid("child %q of %q does not exist", cid, p.ID)
			}
			if c.Parent != p.ID {
				return nil, "", invalid("node %q is listed under %q but names %q as parent", cid, p.ID, c.Parent)
			}
			kind, _ := workspace.ParseKind(c.Kind)
			_, err := t.Add(p.ID, workspace.Node{
				ID:       c.ID,
				Kind:     kind,
				Name:     c.Name,
				Content:  c.Content,
				Position: c.Position,
				Size:     c.Size,
			})
			if err != nil {
				return nil, "", errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "node %q", c.ID)
			}
			added++
			queue = append(queue, c)
		}
	}
	if added != len(s.Nodes) {
		var orphans []string
		for id := range recs {
			if _, ok := t.Node(id); !ok {
				orphans = append(orphans, id)
			}
		}
		slices.Sort(orphans)
		return nil, "", invalid("nodes not reachable from the root: %v", orphans)
	}

	for _, r := range s.Nodes {
		for _, c := range r.Connections {
			if _, ok := t.Node(c.From); !ok {
				return nil, "", errs.New(errs.ErrCodeInvalidSnapshot, "connection endpoint %q does not exist", c.From)
			}
			if _, ok := t.Node(c.To); !ok {
				return nil, "", errs.New(errs.ErrCodeInvalidSnapshot, "connection endpoint %q does not exist", c.To)
			}
			if n, _ := t.Node(c.From); n.Parent() != r.ID {
				return nil, "", invalid("connection %s -> %s is stored on %q, not its layer", c.From, c.To, r.ID)
			}
			if _, err := t.Connect(c.From, c.To); err != nil {
				return nil, "", errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "connection %s -> %s", c.From, c.To)
			}
		}
		if r.View != nil {
			_ = t.SaveView(r.ID, *r.View)
		}
	}

	if err := t.Validate(); err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "snapshot")
	}

	active := s.Active
	if active == "" {
		active = workspace.RootID
	}
	if _, ok := t.Node(active); !ok {
		return nil, "", invalid("active node %q does not exist", active)
	}
	return t, active, nil
}

func invalid(format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidSnapshot, format, args...)
}
