package core

import "golang.org/x/net/html"

// MarkupElement hosts a [MarkupWidget] and its children.
//
// Children are reconciled by position: a child at index i is updated in place
// when the new widget at i has the same type and key, and replaced otherwise.
type MarkupElement struct {
	elementBase
	children []Element
}

// NewMarkupElement creates a MarkupElement.
// The widget and build owner are set by the framework during inflation.
func NewMarkupElement() *MarkupElement {
	element := &MarkupElement{}
	element.setSelf(element)
	return element
}

func (e *MarkupElement) Mount(parent Element, slot any) {
	e.attach(parent, slot)
	e.RebuildIfNeeded()
}

func (e *MarkupElement) Update(newWidget Widget) {
	e.widget = newWidget
	e.dirty = true
	e.RebuildIfNeeded()
}

func (e *MarkupElement) Unmount() {
	e.mounted = false
	for _, child := range e.children {
		child.Unmount()
	}
	e.children = nil
}

func (e *MarkupElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false

	widgets := e.widget.(MarkupWidget).ChildWidgets()
	previous := e.children
	updated := make([]Element, 0, len(widgets))
	// Nil children are skipped, so positions count only present widgets.
	for _, childWidget := range widgets {
		if childWidget == nil {
			continue
		}
		var existing Element
		if index := len(updated); index < len(previous) {
			existing = previous[index]
		}
		updated = append(updated, updateChild(existing, childWidget, e, e.buildOwner))
	}
	for i := len(updated); i < len(previous); i++ {
		previous[i].Unmount()
	}
	e.children = updated
}

func (e *MarkupElement) VisitChildren(visitor func(Element) bool) {
	for _, child := range e.children {
		if !visitor(child) {
			return
		}
	}
}

func (e *MarkupElement) appendMarkup(parent *html.Node) {
	node := e.widget.(MarkupWidget).CreateNode()
	if node == nil {
		node = parent
	} else {
		parent.AppendChild(node)
	}
	for _, child := range e.children {
		appendChildMarkup(child, node)
	}
}
