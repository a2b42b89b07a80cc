// Package content turns configured content blocks into page widgets.
package content

import (
	"strings"

	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/config"
	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
	"github.com/go-drift/pagelayout/pkg/sections"
)

// Paragraph is a body paragraph. It accepts injected props and records the
// breakpoint it was built for.
type Paragraph struct {
	core.StatelessBase
	Text       string
	Class      string
	Props      props.Props
	Breakpoint string
}

func (p Paragraph) WithProps(pp props.Props, breakpoint string) core.Widget {
	p.Props = pp
	p.Breakpoint = breakpoint
	return p
}

func (p Paragraph) Build(ctx core.BuildContext) core.Widget {
	attrs := map[string]string{}
	if p.Breakpoint != "" {
		attrs[sections.BreakpointAttr] = p.Breakpoint
	}
	if id := p.Props.String("id"); id != "" {
		attrs["data-content-id"] = id
	}
	return markup.Element{
		Tag:      "p",
		Class:    p.Class,
		Attrs:    attrs,
		Children: []core.Widget{markup.Text(p.Text)},
	}
}

// Slot renders an ad slot named Name.
func Slot(name, class string) markup.Element {
	return markup.Element{
		Tag:   "div",
		Class: strings.TrimSpace("o-ads " + class),
		Attrs: map[string]string{ads.NameAttr: name},
	}
}

// Widgets converts blocks into widgets. Blocks are assumed valid; see
// config.Config.Validate.
func Widgets(blocks []config.Block) []core.Widget {
	out := make([]core.Widget, 0, len(blocks))
	for _, b := range blocks {
		if w := widget(b); w != nil {
			out = append(out, w)
		}
	}
	return out
}

func widget(b config.Block) core.Widget {
	switch b.Type {
	case "paragraph":
		return Paragraph{Text: b.Text, Class: b.Class}
	case "heading":
		return markup.Element{Tag: "h2", Class: b.Class, Children: []core.Widget{markup.Text(b.Text)}}
	case "text":
		return markup.Text(b.Text)
	case "slot":
		return Slot(b.Name, b.Class)
	case "container":
		return grid.Container{
			Class: b.Class,
			Children: []core.Widget{
				grid.Row{Children: []core.Widget{
					grid.Child{Colspan: grid.DefaultColspan, Children: Widgets(b.Content)},
				}},
			},
		}
	}
	return nil
}
