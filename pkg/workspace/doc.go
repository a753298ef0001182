// Package workspace provides the node hierarchy of a nested canvas.
//
// # Overview
//
// A [Tree] is rooted at a permanent node with ID [RootID]. Every other node
// is owned by exactly one parent, which keeps an ordered child list. Each
// node also stores an explicit back-reference to its parent so that ancestor
// walks ([Tree.Path], [Tree.IsAncestor]) are O(depth) and never scan child
// lists.
//
// A node's own [viewport.ViewState] describes the space its children are
// drawn in, not the node's own position. It is nil until the node is first
// entered; see [Tree.SaveView].
//
// # Connections
//
// Connections join two children of the same parent and are stored on that
// parent. They never cross hierarchy levels. [Tree.Connect] rejects
// self-connections, cross-layer pairs and exact duplicates. The reversed
// pair (To, From) is a distinct connection.
//
// # Deletion
//
// [Tree.Delete] removes a node, its entire subtree, its entry in the
// parent's child list and every connection that references it in one step.
// There is no observable state in which a connection points at a missing
// node.
//
// # Kinds
//
// The element kinds form a closed set ([KindRoot], [KindCanvas],
// [KindText]). [Kind.Spec] returns the fixed defaults and the expansion
// behaviour of each kind, and [Preview] renders the compact on-canvas markup
// as a pure function of node data.
//
// # Concurrency
//
// Tree is not safe for concurrent use without external synchronization.
package workspace
