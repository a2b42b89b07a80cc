package core

import "golang.org/x/net/html"

// InheritedElement hosts an [InheritedWidget] and tracks the descendants
// that read it.
//
// When a descendant calls [BuildContext.DependOnInherited], it registers as a
// dependent of this element. When the widget is replaced and
// [InheritedWidget.UpdateShouldNotify] returns true, every registered dependent
// is notified and scheduled for rebuild.
type InheritedElement struct {
	elementBase
	child      Element
	dependents map[Element]struct{}
}

// NewInheritedElement creates an InheritedElement.
// The widget and build owner are set by the framework during inflation.
func NewInheritedElement() *InheritedElement {
	element := &InheritedElement{
		dependents: make(map[Element]struct{}),
	}
	element.setSelf(element)
	return element
}

func (e *InheritedElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.RebuildIfNeeded()
}

func (e *InheritedElement) Update(newWidget Widget) {
	oldWidget := e.widget.(InheritedWidget)
	e.widget = newWidget
	if newWidget.(InheritedWidget).UpdateShouldNotify(oldWidget) {
		for dependent := range e.dependents {
			notifyDependent(dependent)
		}
	}
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *InheritedElement) Unmount() {
	e.mounted = false
	if e.child != nil {
		e.child.Unmount()
		e.child = nil
	}
	e.dependents = nil
}

func (e *InheritedElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	inherited := e.widget.(InheritedWidget)
	e.child = updateChild(e.child, inherited.ChildWidget(), e, e.buildOwner)
}

func (e *InheritedElement) VisitChildren(visitor func(Element) bool) {
	if e.child != nil {
		visitor(e.child)
	}
}

func (e *InheritedElement) appendMarkup(parent *html.Node) {
	appendChildMarkup(e.child, parent)
}

// AddDependent registers an element as depending on this inherited widget.
func (e *InheritedElement) AddDependent(dependent Element) {
	if dependent == nil {
		return
	}
	if e.dependents == nil {
		e.dependents = make(map[Element]struct{})
	}
	e.dependents[dependent] = struct{}{}
}

// RemoveDependent unregisters an element as depending on this inherited widget.
func (e *InheritedElement) RemoveDependent(dependent Element) {
	delete(e.dependents, dependent)
}

// DependentCount returns the number of registered dependents.
func (e *InheritedElement) DependentCount() int {
	return len(e.dependents)
}

// notifyDependent triggers DidChangeDependencies on stateful dependents and
// schedules every dependent for rebuild.
func notifyDependent(element Element) {
	if stateful, ok := element.(*StatefulElement); ok {
		if !stateful.mounted {
			return
		}
		if stateful.state != nil {
			stateful.state.DidChangeDependencies()
		}
	}
	element.MarkNeedsBuild()
}
