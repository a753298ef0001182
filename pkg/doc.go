// Package pkg provides the libraries behind nestboard, an infinite canvas
// of cards that nest inside each other.
//
// # Overview
//
// A board is a tree of cards. Canvas cards hold child cards and can be
// entered, turning their children into the visible layer; text cards hold
// a document instead. Each layer keeps its own pan and zoom, and cards of
// the same layer can be linked by curved connections.
//
// The pkg directory is organized into four areas:
//
//  1. Model: [geom], [viewport], [curve], [workspace]
//  2. Interaction: [gesture], [session]
//  3. Persistence: [io], [store], [cache], [config]
//  4. Output: [render], [render/canvas], [render/nodelink], [pipeline], [server]
//
// # Architecture
//
// The typical flow through nestboard:
//
//	pointer and wheel input
//	         ↓
//	    [gesture] (classify clicks, drags and double-clicks)
//	         ↓
//	    [session] (active layer, selection, live view)
//	         ↓
//	    [workspace] (tree mutations, per-layer connections)
//	         ↓
//	    [io] + [store] (snapshots on disk, Redis or MongoDB)
//
// Rendering reads the same tree through [pipeline]:
//
//	    [workspace] → [render/canvas] or [render/nodelink] → SVG, DOT, PNG, JPEG
//
// # Quick Start
//
//	tree := workspace.New()
//	sess := session.New(tree)
//
//	folder, _ := sess.CreateNode(workspace.KindCanvas, session.NodeOptions{Name: "Inbox"})
//	_ = sess.Enter(folder.ID)
//	sess.ZoomAt(640, 400, -120)
//	_ = sess.Up()
//
//	snap := io.FromTree(sess.Tree(), sess.ActiveID())
//	_ = io.ExportFile("inbox.yaml", snap)
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
//
// The Redis and MongoDB store tests are skipped unless
// NESTBOARD_TEST_REDIS_URL or NESTBOARD_TEST_MONGO_URI is set.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/geom
// [viewport]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/viewport
// [curve]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/curve
// [workspace]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/workspace
// [gesture]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/gesture
// [session]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/session
// [io]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/io
// [store]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/config
// [render]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/render
// [render/canvas]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/render/canvas
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/nestboard/pkg/server
package pkg
