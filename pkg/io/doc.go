// Package io provides snapshot import and export for workspace trees.
//
// # Overview
//
// A [Snapshot] is a flat, self-describing copy of a [workspace.Tree]: one
// record per node in pre-order, the root first, plus the ID of the node that
// was active when the snapshot was taken. Snapshots are what stores persist
// and what `nestboard export` writes.
//
// # Formats
//
// JSON and YAML are supported for files. The store backends additionally
// keep snapshots as BSON (MongoDB) or JSON (file, Redis). The file format is
// chosen from the extension:
//
//	board.json        JSON
//	board.yaml, .yml  YAML
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "active": "root",
//	  "nodes": [
//	    {"id": "root", "kind": "root", "name": "Workspace",
//	     "children": ["0190..."], "view": {"pan_x": 0, "pan_y": 0, "scale": 1}},
//	    {"id": "0190...", "kind": "text", "parent": "root", "name": "Notes",
//	     "content": "Start typing...", "position": {"x": 300, "y": 225},
//	     "size": {"width": 250, "height": 180}}
//	  ]
//	}
//
// Connections are stored on the node whose children they join.
//
// # Validation
//
// [Snapshot.Tree] rebuilds a tree and rejects snapshots that do not
// describe one: a missing or duplicated root, parent and children lists that
// disagree, nodes that are unreachable or form cycles, and connections
// whose endpoints are missing or live in different layers. All such errors
// carry the code [errors.ErrCodeInvalidSnapshot].
package io
