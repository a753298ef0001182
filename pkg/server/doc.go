// Package server exposes an editing session over HTTP.
//
// # Overview
//
// A [Server] owns one [session.Session] and serializes every request
// through a mutex, so the session keeps its single-writer model while
// several browser tabs or scripts talk to it. Routes are plain JSON:
//
//	GET    /api/view                 live view (pan_x, pan_y, scale)
//	POST   /api/view/pan             {"dx": .., "dy": ..}
//	POST   /api/view/zoom            {"x": .., "y": .., "delta": ..} or {"scale": ..}
//	POST   /api/view/reset
//	POST   /api/view/fit             {"padding": ..}
//	PUT    /api/screen               {"width": .., "height": ..}
//	GET    /api/layer                cards and curves of the active node
//	GET    /api/layer.svg            the active layer drawn as SVG
//	GET    /api/tree.svg             node-link diagram of the whole board
//	GET    /api/render               ?style=&format=&layer=&fit=&detailed=&width=&height=&scale=
//	POST   /api/nodes                create a card in the active layer
//	GET    /api/nodes/{id}
//	PATCH  /api/nodes/{id}           rename, edit, move or resize
//	DELETE /api/nodes/{id}
//	POST   /api/nodes/{id}/enter
//	POST   /api/navigate/{id}        jump to a breadcrumb
//	POST   /api/open/{id}            jump to any node
//	POST   /api/up
//	GET    /api/breadcrumbs
//	POST   /api/connections          {"from": .., "to": ..}
//	DELETE /api/connections?from=..&to=..
//	POST   /api/save                 persist through the configured store
//	GET    /api/events               WebSocket stream of session events
//
// # Errors
//
// Failures are reported as {"error": {"code": .., "message": ..}} with the
// code taken from [errors.Error]. See [StatusFor] for the HTTP mapping.
//
// # Events
//
// View changes arrive at pointer rate. The event stream coalesces them to
// at most one per frame (16 ms by default); structural events are sent
// immediately, preceded by any pending view event so order is kept.
//
// [errors.Error]: github.com/matzehuels/nestboard/pkg/errors.Error
package server
