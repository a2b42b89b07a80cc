// Package grid provides the o-grid container, row and column widgets.
package grid

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/errors"
	"github.com/go-drift/pagelayout/pkg/markup"
)

const (
	// ContainerClass marks an element that manages its own grid container.
	ContainerClass = "o-grid-container"
	// RowClass marks a grid row.
	RowClass = "o-grid-row"
	// ColspanAttr carries a column's colspan spec.
	ColspanAttr = "data-o-grid-colspan"
	// DefaultColspan is the single-column article width.
	DefaultColspan = "12 S11 Scenter M9 L8 XL7"
)

// Container is the outermost grid element.
type Container struct {
	core.MarkupBase
	// Class is appended to the container class.
	Class    string
	Children []core.Widget
}

// ClassName returns the full class attribute of the container.
func (c Container) ClassName() string {
	if c.Class == "" {
		return ContainerClass
	}
	return ContainerClass + " " + c.Class
}

func (c Container) CreateNode() *html.Node {
	return markup.NewNode("div", c.ClassName(), nil)
}

func (c Container) ChildWidgets() []core.Widget { return c.Children }

// Row is a grid row.
type Row struct {
	core.MarkupBase
	Children []core.Widget
}

func (r Row) ClassName() string { return RowClass }

func (r Row) CreateNode() *html.Node {
	return markup.NewNode("div", RowClass, nil)
}

func (r Row) ChildWidgets() []core.Widget { return r.Children }

// Child is a grid column. An empty Colspan renders a full-width column.
// An invalid spec is reported and still rendered verbatim.
type Child struct {
	core.StatelessBase
	Colspan  string
	Children []core.Widget
}

func (c Child) Build(ctx core.BuildContext) core.Widget {
	var attrs map[string]string
	if spec := strings.TrimSpace(c.Colspan); spec != "" {
		if _, err := ParseColspan(spec); err != nil {
			errors.Report(&errors.PageError{
				Op:   "grid.Child",
				Kind: errors.KindLayout,
				Err:  err,
			})
		}
		attrs = map[string]string{ColspanAttr: spec}
	}
	return markup.Element{Tag: "div", Attrs: attrs, Children: c.Children}
}
