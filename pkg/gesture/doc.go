// Package gesture turns raw pointer events into canvas gestures.
//
// A [Machine] follows the life of a single pointer interaction:
//
//	Idle ─Down─▶ PointerDown ─Move beyond dead zone─▶ Dragging ─Up─▶ Idle
//	                  │
//	                  └─Up─▶ Click or DoubleClick ─▶ Idle
//
// What a drag does depends on where it started and which button was
// pressed:
//
//	background + left/middle   pan the view
//	node + left                move the node
//	node + middle              pan the view
//	resize handle + left       resize the node
//	right button               ignored
//	interactive content        ignored (text selection, editing)
//
// The machine emits [Action] values with raw screen deltas. Converting
// them to logical units (dividing by the view scale) is the caller's job,
// which keeps this package free of any viewport state.
//
// Only one gesture is active at a time. [Machine.Cancel] drops the current
// gesture, which callers use before navigating away from a layer.
package gesture
