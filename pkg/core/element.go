package core

import (
	"fmt"
	"reflect"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/errors"
)

// markupWriter is implemented by every element that contributes markup.
type markupWriter interface {
	appendMarkup(parent *html.Node)
}

type elementBase struct {
	widget     Widget
	parent     Element
	depth      int
	slot       any
	buildOwner *BuildOwner
	dirty      bool
	self       Element
	mounted    bool
}

func (e *elementBase) Widget() Widget {
	return e.widget
}

func (e *elementBase) Depth() int {
	return e.depth
}

// NeedsBuild reports whether the element is scheduled for rebuild.
func (e *elementBase) NeedsBuild() bool {
	return e.dirty
}

func (e *elementBase) MarkNeedsBuild() {
	if e.dirty {
		return
	}
	e.dirty = true
	if e.buildOwner != nil && e.self != nil {
		e.buildOwner.ScheduleBuild(e.self)
	}
}

func (e *elementBase) parentElement() Element {
	return e.parent
}

func (e *elementBase) setWidget(widget Widget) {
	e.widget = widget
}

func (e *elementBase) setSelf(self Element) {
	e.self = self
}

func (e *elementBase) setBuildOwner(owner *BuildOwner) {
	e.buildOwner = owner
}

func (e *elementBase) isMounted() bool {
	return e.mounted
}

// attach records the element's position; shared by every Mount.
func (e *elementBase) attach(parent Element, slot any) {
	e.parent = parent
	e.slot = slot
	if parent != nil {
		e.depth = parent.Depth() + 1
	}
	e.mounted = true
	e.dirty = true
}

func (e *elementBase) FindAncestor(predicate func(Element) bool) Element {
	current := e.parent
	for current != nil {
		if predicate(current) {
			return current
		}
		base, ok := current.(interface{ parentElement() Element })
		if !ok {
			break
		}
		current = base.parentElement()
	}
	return nil
}

func (e *elementBase) DependOnInherited(inheritedType reflect.Type) any {
	found := e.FindAncestor(func(candidate Element) bool {
		inherited, ok := candidate.(*InheritedElement)
		if !ok {
			return false
		}
		widgetType := reflect.TypeOf(inherited.widget)
		return widgetType == inheritedType ||
			(widgetType.Kind() == reflect.Pointer && widgetType.Elem() == inheritedType)
	})
	if found == nil {
		return nil
	}
	inherited := found.(*InheritedElement)
	inherited.AddDependent(e.self)
	return inherited.widget
}

// safeBuild executes a build function with panic recovery.
// A panicking build is reported, handed to the nearest ErrorBoundary, and
// replaced by nil so the subtree renders nothing.
func (e *elementBase) safeBuild(buildFn func() Widget) Widget {
	var built Widget
	var buildErr *errors.BuildError

	func() {
		defer func() {
			if r := recover(); r != nil {
				buildErr = &errors.BuildError{
					Widget:     fmt.Sprintf("%T", e.widget),
					Element:    fmt.Sprintf("%T", e.self),
					Recovered:  r,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				}
			}
		}()
		built = buildFn()
	}()

	if buildErr == nil {
		return built
	}
	errors.ReportBuildError(buildErr)
	if boundary := e.findErrorBoundary(); boundary != nil {
		boundary.CaptureError(buildErr)
	}
	return nil
}

func (e *elementBase) findErrorBoundary() ErrorBoundaryCapture {
	found := e.FindAncestor(func(candidate Element) bool {
		_, ok := candidate.(ErrorBoundaryCapture)
		return ok
	})
	if found == nil {
		return nil
	}
	return found.(ErrorBoundaryCapture)
}

// StatelessElement hosts a StatelessWidget.
type StatelessElement struct {
	elementBase
	child Element
}

// NewStatelessElement creates a StatelessElement.
// The widget and build owner are set by the framework during inflation.
func NewStatelessElement() *StatelessElement {
	element := &StatelessElement{}
	element.setSelf(element)
	return element
}

func (e *StatelessElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.RebuildIfNeeded()
}

func (e *StatelessElement) Update(newWidget Widget) {
	e.widget = newWidget
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *StatelessElement) Unmount() {
	e.mounted = false
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
}

func (e *StatelessElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	widget := e.widget.(StatelessWidget)
	built := e.safeBuild(func() Widget {
		return widget.Build(e)
	})
	e.child = updateChild(e.child, built, e, e.buildOwner)
}

func (e *StatelessElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

func (e *StatelessElement) appendMarkup(parent *html.Node) {
	appendChildMarkup(e.child, parent)
}

// StatefulElement hosts a StatefulWidget and its State.
type StatefulElement struct {
	elementBase
	child Element
	state State
}

// NewStatefulElement creates a StatefulElement.
// The widget and build owner are set by the framework during inflation.
func NewStatefulElement() *StatefulElement {
	element := &StatefulElement{}
	element.setSelf(element)
	return element
}

func (e *StatefulElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	widget := e.widget.(StatefulWidget)
	e.state = widget.CreateState()
	if setter, ok := e.state.(interface{ setElement(*StatefulElement) }); ok {
		setter.setElement(e)
	}
	e.state.InitState()
	e.RebuildIfNeeded()
}

func (e *StatefulElement) Update(newWidget Widget) {
	oldWidget := e.widget.(StatefulWidget)
	e.widget = newWidget
	e.state.DidUpdateWidget(oldWidget)
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *StatefulElement) Unmount() {
	e.mounted = false
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
	if e.state != nil {
		e.state.Dispose()
	}
}

func (e *StatefulElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	built := e.safeBuild(func() Widget {
		return e.state.Build(e)
	})
	e.child = updateChild(e.child, built, e, e.buildOwner)
}

// State returns the element's State, nil before Mount.
func (e *StatefulElement) State() State {
	return e.state
}

func (e *StatefulElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

func (e *StatefulElement) appendMarkup(parent *html.Node) {
	appendChildMarkup(e.child, parent)
}

func appendChildMarkup(child Element, parent *html.Node) {
	if writer, ok := child.(markupWriter); ok {
		writer.appendMarkup(parent)
	}
}

func updateChild(existing Element, widget Widget, parent Element, owner *BuildOwner) Element {
	if widget == nil {
		if existing != nil {
			existing.Unmount()
		}
		return nil
	}
	if existing != nil && canUpdateWidget(existing.Widget(), widget) {
		existing.Update(widget)
		return existing
	}
	if existing != nil {
		existing.Unmount()
	}
	element := inflateWidget(widget, owner)
	element.Mount(parent, nil)
	return element
}

func canUpdateWidget(existing Widget, next Widget) bool {
	if existing == nil || next == nil {
		return false
	}
	if reflect.TypeOf(existing) != reflect.TypeOf(next) {
		return false
	}
	return reflect.DeepEqual(existing.Key(), next.Key())
}

func inflateWidget(widget Widget, owner *BuildOwner) Element {
	element := widget.CreateElement()
	if setter, ok := element.(interface{ setWidget(Widget) }); ok {
		setter.setWidget(widget)
	}
	if setter, ok := element.(interface{ setBuildOwner(*BuildOwner) }); ok {
		setter.setBuildOwner(owner)
	}
	if setter, ok := element.(interface{ setSelf(Element) }); ok {
		setter.setSelf(element)
	}
	return element
}

// MountRoot inflates widget as the root of a new tree owned by owner.
func MountRoot(widget Widget, owner *BuildOwner) Element {
	element := inflateWidget(widget, owner)
	element.Mount(nil, nil)
	return element
}

// RenderMarkup renders the subtree rooted at root into a detached document
// fragment. The returned node is freshly built on every call.
func RenderMarkup(root Element) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	appendChildMarkup(root, doc)
	return doc
}
