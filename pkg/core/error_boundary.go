package core

import (
	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/errors"
)

// ErrorBoundaryCapture is implemented by error boundary elements to capture
// build errors from descendant widgets.
type ErrorBoundaryCapture interface {
	// CaptureError captures a build error from a descendant widget.
	// Returns true if the error was captured and handled.
	CaptureError(err *errors.BuildError) bool
}

// ErrorBoundary renders Child until a descendant build panics, then renders
// Fallback for the captured error. The captured error sticks for the
// lifetime of the boundary's element.
type ErrorBoundary struct {
	Child    Widget
	Fallback func(err *errors.BuildError) Widget
}

func (b ErrorBoundary) CreateElement() Element {
	element := &errorBoundaryElement{}
	element.setSelf(element)
	return element
}

func (b ErrorBoundary) Key() any { return nil }

type errorBoundaryElement struct {
	elementBase
	child    Element
	captured *errors.BuildError
}

func (e *errorBoundaryElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.RebuildIfNeeded()
}

func (e *errorBoundaryElement) Update(newWidget Widget) {
	e.widget = newWidget
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *errorBoundaryElement) Unmount() {
	e.mounted = false
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
}

func (e *errorBoundaryElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	boundary := e.widget.(ErrorBoundary)
	next := boundary.Child
	if e.captured != nil {
		next = nil
		if boundary.Fallback != nil {
			next = boundary.Fallback(e.captured)
		}
	}
	e.child = updateChild(e.child, next, e, e.buildOwner)
}

func (e *errorBoundaryElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

func (e *errorBoundaryElement) appendMarkup(parent *html.Node) {
	appendChildMarkup(e.child, parent)
}

// CaptureError records err and schedules the fallback.
func (e *errorBoundaryElement) CaptureError(err *errors.BuildError) bool {
	if e.captured != nil {
		return true
	}
	e.captured = err
	e.MarkNeedsBuild()
	return true
}
