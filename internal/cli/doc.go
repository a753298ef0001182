// Package cli implements the nestboard command-line interface.
//
// Boards are stored under a name in the backend selected by the config
// file (files, Redis or MongoDB). Commands load a board, run a session on
// it, and write it back.
//
// # Commands
//
//   - new, ls, rm: manage stored boards
//   - open: edit a board in the terminal with mouse and keyboard
//   - serve: expose a board as a JSON API with a websocket event stream
//   - tree: print the nesting hierarchy
//   - render: draw a layer to SVG, DOT, PNG or JPEG, cached by content
//   - export, import: move boards through JSON or YAML files
//   - cache: inspect and clear the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes session, store and render hooks to the logger. Loggers are passed
// through context.Context.
package cli
