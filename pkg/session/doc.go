// Package session implements an interactive editing session over a
// workspace tree.
//
// A [Session] owns everything that changes while a user works on a board:
// the [workspace.Tree], the live [viewport.Viewport] of the active layer,
// the navigation stack and the pointer [gesture.Machine]. There are no
// package-level globals; a process may run any number of sessions.
//
// # Navigation
//
// The active node is the node whose children are currently shown. Every
// node remembers the view (pan and zoom) of its inner space:
//
//	s := session.New(tree)
//	s.Pan(100, 0)
//	s.Enter(folderID)        // root's view is saved, folder starts at (0,0,1)
//	s.ZoomAt(400, 300, -120)
//	s.GoToAncestor("root")   // folder's view is saved, root's is restored
//
// [Session.Enter] descends into a child of the active node,
// [Session.GoToAncestor] jumps back along the breadcrumb trail,
// [Session.Up] goes one level up and [Session.Open] jumps anywhere by
// rebuilding the trail from parent references.
//
// # Concurrency
//
// A Session is single-writer and not safe for concurrent use. Servers wrap
// it in a mutex; the terminal UI drives it from one update loop.
//
// Navigation methods are not re-entrant. Calling one from a listener that
// is itself running inside a navigation returns an error with code
// [errors.ErrCodeReentrant].
package session
