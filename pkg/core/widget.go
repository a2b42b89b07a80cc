package core

import (
	"reflect"

	"golang.org/x/net/html"
)

// Widget is an immutable description of part of the page.
type Widget interface {
	CreateElement() Element
	Key() any
}

// StatelessWidget builds its child from configuration alone.
type StatelessWidget interface {
	Widget
	Build(ctx BuildContext) Widget
}

// StatefulWidget owns a State that survives rebuilds.
type StatefulWidget interface {
	Widget
	CreateState() State
}

// InheritedWidget publishes a value to its whole subtree.
type InheritedWidget interface {
	Widget
	ChildWidget() Widget
	// UpdateShouldNotify reports whether dependents must rebuild when the
	// widget is replaced.
	UpdateShouldNotify(oldWidget InheritedWidget) bool
}

// MarkupWidget produces an HTML node and lays its children out inside it.
//
// CreateNode returns a detached node without children. A nil node makes the
// widget transparent: its children are appended to the enclosing node.
type MarkupWidget interface {
	Widget
	CreateNode() *html.Node
	ChildWidgets() []Widget
}

// State is the mutable half of a StatefulWidget.
type State interface {
	InitState()
	Build(ctx BuildContext) Widget
	SetState(fn func())
	Dispose()
	DidChangeDependencies()
	DidUpdateWidget(oldWidget StatefulWidget)
}

// BuildContext locates a widget in the tree.
type BuildContext interface {
	Widget() Widget
	FindAncestor(predicate func(Element) bool) Element
	// DependOnInherited returns the nearest ancestor InheritedWidget of the
	// given type and registers the caller for rebuilds when it changes.
	DependOnInherited(inheritedType reflect.Type) any
}

// Element is the instantiation of a Widget at a location in the tree.
type Element interface {
	BuildContext
	Mount(parent Element, slot any)
	Update(newWidget Widget)
	Unmount()
	RebuildIfNeeded()
	MarkNeedsBuild()
	Depth() int
	VisitChildren(visitor func(Element) bool)
}
