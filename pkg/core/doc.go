// Package core provides the widget and element framework interfaces and lifecycle.
//
// Widgets are immutable descriptions of part of a page. Elements instantiate
// widgets at a location in the tree and keep their identity across rebuilds.
// Leaves of the tree are [MarkupWidget]s, which produce HTML nodes; the
// element tree is turned into a document with [RenderMarkup].
//
// # Stateful Widgets
//
// For widgets that need mutable state, embed StateBase in your state struct:
//
//	type layoutState struct {
//	    core.StateBase
//	    breakpoint *core.Managed[string]
//	}
//
//	func (s *layoutState) InitState() {
//	    s.breakpoint = core.NewManaged(s, "default")
//	}
//
// # Lifecycle
//
// InitState runs once on mount, DidUpdateWidget whenever the parent supplies
// a new configuration, and Dispose on unmount. Resources acquired in
// InitState should be released through OnDispose or UseSubscription so
// release happens even when acquisition stopped halfway.
//
// # Threading
//
// Build, SetState and the lifecycle methods run on the UI thread, which is
// whichever goroutine drives the [BuildOwner]. Background work uses
// [StartTask]; its effect is dispatched back to the UI thread and skipped if
// the owning state was disposed or the task cancelled in the meantime.
package core
