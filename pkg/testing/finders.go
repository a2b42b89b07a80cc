package testing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/markup"
)

// Finder locates elements in the element tree.
type Finder interface {
	// Evaluate returns matching elements under root in document order.
	Evaluate(root core.Element) []core.Element
	Description() string
}

// FinderResult holds the elements a finder matched.
type FinderResult struct {
	elements []core.Element
	finder   Finder
}

func (r FinderResult) describe() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// First returns the first match. Panics if there is none.
func (r FinderResult) First() core.Element {
	return r.At(0)
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) core.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("%s: no match at %d (found %d)", r.describe(), index, len(r.elements)))
	}
	return r.elements[index]
}

// All returns every match.
func (r FinderResult) All() []core.Element { return r.elements }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.elements) }

// Exists reports whether anything matched.
func (r FinderResult) Exists() bool { return len(r.elements) > 0 }

// Widget returns the widget of the first match. Panics if there is none.
func (r FinderResult) Widget() core.Widget {
	return r.First().Widget()
}

// Widgets returns the widgets of every match.
func (r FinderResult) Widgets() []core.Widget {
	out := make([]core.Widget, len(r.elements))
	for i, e := range r.elements {
		out[i] = e.Widget()
	}
	return out
}

// match is a Finder over a single-element predicate.
type match struct {
	desc string
	ok   func(core.Element) bool
}

func (m match) Evaluate(root core.Element) []core.Element {
	var found []core.Element
	walk(root, func(e core.Element) bool {
		if m.ok(e) {
			found = append(found, e)
		}
		return true
	})
	return found
}

func (m match) Description() string { return m.desc }

// ByType matches elements whose widget has type T.
func ByType[T core.Widget]() Finder {
	t := reflect.TypeFor[T]()
	return match{
		desc: "ByType(" + t.String() + ")",
		ok:   func(e core.Element) bool { return reflect.TypeOf(e.Widget()) == t },
	}
}

// ByKey matches elements whose widget key equals key.
func ByKey(key any) Finder {
	return match{
		desc: fmt.Sprintf("ByKey(%v)", key),
		ok:   func(e core.Element) bool { return reflect.DeepEqual(e.Widget().Key(), key) },
	}
}

// ByText matches [markup.Text] with exactly text.
func ByText(text string) Finder {
	return textMatch(fmt.Sprintf("ByText(%q)", text), func(s string) bool { return s == text })
}

// ByTextContaining matches [markup.Text] containing substring.
func ByTextContaining(substring string) Finder {
	return textMatch(fmt.Sprintf("ByTextContaining(%q)", substring), func(s string) bool {
		return strings.Contains(s, substring)
	})
}

func textMatch(desc string, ok func(string) bool) Finder {
	return match{desc: desc, ok: func(e core.Element) bool {
		t, isText := e.Widget().(markup.Text)
		return isText && ok(string(t))
	}}
}

// ByClass matches widgets whose ClassName contains class as a whole token.
func ByClass(class string) Finder {
	return match{
		desc: fmt.Sprintf("ByClass(%q)", class),
		ok: func(e core.Element) bool {
			named, ok := e.Widget().(interface{ ClassName() string })
			return ok && markup.HasClass(named.ClassName(), class)
		},
	}
}

// ByPredicate matches elements satisfying fn.
func ByPredicate(fn func(core.Element) bool) Finder {
	return match{desc: "ByPredicate(...)", ok: fn}
}

// Descendant matches elements satisfying matching below an element
// satisfying of.
func Descendant(of, matching Finder) Finder {
	return relation{of: of, matching: matching, name: "Descendant", related: func(candidate, anchor core.Element) bool {
		return candidate != anchor && contains(anchor, candidate)
	}}
}

// Ancestor matches elements satisfying matching above an element
// satisfying of.
func Ancestor(of, matching Finder) Finder {
	return relation{of: of, matching: matching, name: "Ancestor", related: func(candidate, anchor core.Element) bool {
		return candidate != anchor && contains(candidate, anchor)
	}}
}

// relation keeps candidates from matching that are related to at least one
// element found by of.
type relation struct {
	of, matching Finder
	name         string
	related      func(candidate, anchor core.Element) bool
}

func (r relation) Evaluate(root core.Element) []core.Element {
	anchors := r.of.Evaluate(root)
	if len(anchors) == 0 {
		return nil
	}
	var found []core.Element
	for _, candidate := range r.matching.Evaluate(root) {
		for _, anchor := range anchors {
			if r.related(candidate, anchor) {
				found = append(found, candidate)
				break
			}
		}
	}
	return found
}

func (r relation) Description() string {
	return fmt.Sprintf("%s(of: %s, matching: %s)", r.name, r.of.Description(), r.matching.Description())
}

// contains reports whether e is in the subtree rooted at root.
func contains(root, e core.Element) bool {
	found := false
	walk(root, func(x core.Element) bool {
		found = x == e
		return !found
	})
	return found
}

// walk visits root and its descendants in pre-order until visit returns
// false.
func walk(root core.Element, visit func(core.Element) bool) bool {
	if !visit(root) {
		return false
	}
	keepGoing := true
	root.VisitChildren(func(child core.Element) bool {
		keepGoing = walk(child, visit)
		return keepGoing
	})
	return keepGoing
}
