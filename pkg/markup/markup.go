package markup

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/pagelayout/pkg/core"
)

// Attr is a single HTML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is an HTML element with an optional class list, attributes and
// children. Attributes in Attrs are emitted in name order after class.
type Element struct {
	Tag      string
	Class    string
	Attrs    map[string]string
	Children []core.Widget
	// WidgetKey distinguishes siblings during reconciliation.
	WidgetKey any
}

func (e Element) CreateElement() core.Element { return core.NewMarkupElement() }

func (e Element) Key() any { return e.WidgetKey }

// ClassName returns the element's class attribute.
func (e Element) ClassName() string { return e.Class }

func (e Element) CreateNode() *html.Node {
	return NewNode(e.Tag, e.Class, e.Attrs)
}

func (e Element) ChildWidgets() []core.Widget { return e.Children }

// NewNode builds a detached element node.
func NewNode(tag, class string, attrs map[string]string) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	if class != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "class", Val: class})
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		if name == "class" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		node.Attr = append(node.Attr, html.Attribute{Key: name, Val: attrs[name]})
	}
	return node
}

// Div returns a div with the given children.
func Div(children ...core.Widget) Element {
	return Element{Tag: "div", Children: children}
}

// Text is a plain text node. It carries no props and never receives any.
type Text string

func (t Text) CreateElement() core.Element { return core.NewMarkupElement() }

func (t Text) Key() any { return nil }

func (t Text) CreateNode() *html.Node {
	return &html.Node{Type: html.TextNode, Data: string(t)}
}

func (t Text) ChildWidgets() []core.Widget { return nil }

// Fragment groups children without producing a node of its own.
type Fragment struct {
	Children []core.Widget
}

func (f Fragment) CreateElement() core.Element { return core.NewMarkupElement() }

func (f Fragment) Key() any { return nil }

func (f Fragment) CreateNode() *html.Node { return nil }

func (f Fragment) ChildWidgets() []core.Widget { return f.Children }

// HasClass reports whether the space-separated class list contains token.
func HasClass(classList, token string) bool {
	for _, field := range strings.Fields(classList) {
		if field == token {
			return true
		}
	}
	return false
}

// Attribute returns the value of the named attribute on n.
func Attribute(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

// TextContent returns the concatenated text below n.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n != nil {
		walk(n)
	}
	return sb.String()
}
