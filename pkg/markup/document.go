package markup

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/core"
)

// Document is a queryable view of rendered markup.
type Document interface {
	// QueryAll returns the nodes matching a CSS selector group, in document order.
	QueryAll(selector string) ([]*html.Node, error)
}

// NodeDocument queries a fixed node tree.
type NodeDocument struct {
	Root *html.Node
}

func (d NodeDocument) QueryAll(selector string) ([]*html.Node, error) {
	return queryAll(d.Root, selector)
}

// ElementDocument renders an element subtree on every query, so results
// reflect the tree as of the call. It must be used on the UI thread.
type ElementDocument struct {
	Root core.Element
}

func (d ElementDocument) QueryAll(selector string) ([]*html.Node, error) {
	if d.Root == nil {
		return nil, nil
	}
	return queryAll(core.RenderMarkup(d.Root), selector)
}

func queryAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("markup: invalid selector %q: %w", selector, err)
	}
	if root == nil {
		return nil, nil
	}
	return sel.MatchAll(root), nil
}

// Render writes the markup of n.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderString renders the markup of an element subtree.
func RenderString(root core.Element) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, core.RenderMarkup(root)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
