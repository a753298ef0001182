// Package viewport maps between screen pixels and the logical plane of an
// infinite canvas.
//
// # Overview
//
// A [ViewState] is a pan offset plus a scale factor. The mapping is the 2D
// affine transform "translate then scale":
//
//	screen = world*Scale + Pan
//	world  = (screen - Pan) / Scale
//
// A [Viewport] owns one live ViewState together with the [Policy] that
// bounds it. Every mutation goes through the policy clamp, so Scale can
// never reach zero or go negative and the inverse mapping is always defined.
//
// # Panning vs. dragging
//
// [Viewport.Pan] adds raw screen deltas to the pan offset: dragging the
// background by one pixel moves the plane by one pixel at any zoom level.
// [Viewport.DragDelta] is for elements that live in logical space; a screen
// delta is divided by the scale before it is applied to an element.
//
// # Zooming at the cursor
//
// [Viewport.ZoomAt] keeps the logical point under the cursor fixed:
//
//	vp := viewport.New(viewport.DefaultPolicy())
//	before := vp.ScreenToWorld(sx, sy)
//	vp.ZoomAt(sx, sy, wheelDeltaY)
//	after := vp.ScreenToWorld(sx, sy) // equals before within float tolerance
//
// Two zoom curves are supported: [ZoomExponential] scales by
// exp(-delta*Sensitivity) and [ZoomStep] adds or subtracts a fixed Step
// depending on the wheel direction. Both are monotonic in the wheel
// direction and both respect the clamp.
//
// # Concurrency
//
// Viewport is not safe for concurrent use. It is owned by exactly one
// editing session.
package viewport
