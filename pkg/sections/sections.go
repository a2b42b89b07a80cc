package sections

import (
	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
)

// BreakpointAttr exposes the breakpoint a section was built for.
const BreakpointAttr = "data-breakpoint"

// Analytics renders the analytics beacon configuration.
type Analytics struct {
	core.StatelessBase
	Bundle props.Bundle
}

func (a Analytics) Build(ctx core.BuildContext) core.Widget {
	attrs := map[string]string{
		"data-o-component": "o-tracking",
		BreakpointAttr:     a.Bundle.Breakpoint,
	}
	if id := a.Bundle.Props.String("id"); id != "" {
		attrs["data-content-id"] = id
	}
	if shared, ok := props.SharedMaybeOf(ctx); ok && shared.Ads.GPTSite != "" {
		attrs["data-ads-site"] = shared.Ads.GPTSite
	}
	return markup.Element{Tag: "div", Class: "o-tracking", Attrs: attrs}
}

// TopAd renders the leaderboard ad slot.
type TopAd struct {
	core.StatelessBase
}

func (TopAd) Build(ctx core.BuildContext) core.Widget {
	return markup.Element{
		Tag:   "div",
		Class: "o-ads top-ad",
		Attrs: map[string]string{
			"data-o-ads-name":            "top",
			"data-o-ads-formats-default": "false",
			"data-o-ads-formats-medium":  "SuperLeaderboard,Leaderboard",
			"aria-hidden":                "true",
		},
	}
}

// Header renders the site header inside a grid column of Colspan.
type Header struct {
	core.StatelessBase
	Bundle  props.Bundle
	Colspan string
}

func (h Header) Build(ctx core.BuildContext) core.Widget {
	colspan := h.Colspan
	if colspan == "" {
		colspan = grid.DefaultColspan
	}
	title := h.Bundle.Props.String("siteTitle")
	if title == "" {
		title = "Financial Times"
	}
	return markup.Element{
		Tag:   "header",
		Class: "o-header",
		Attrs: map[string]string{"data-o-component": "o-header", BreakpointAttr: h.Bundle.Breakpoint},
		Children: []core.Widget{
			grid.Container{Children: []core.Widget{
				grid.Row{Children: []core.Widget{
					grid.Child{Colspan: colspan, Children: []core.Widget{
						markup.Element{
							Tag:      "a",
							Class:    "o-header__top-logo",
							Attrs:    map[string]string{"href": "https://www.ft.com"},
							Children: []core.Widget{markup.Text(title)},
						},
					}},
				}},
			}},
		},
	}
}

// OnwardJourney renders the related-content placeholder.
type OnwardJourney struct {
	core.StatelessBase
	Bundle props.Bundle
}

func (o OnwardJourney) Build(ctx core.BuildContext) core.Widget {
	return markup.Element{
		Tag:   "aside",
		Class: "o-onward-journey",
		Attrs: map[string]string{"data-o-component": "o-onward-journey", BreakpointAttr: o.Bundle.Breakpoint},
	}
}

// Comments renders the comments stream for the article id.
type Comments struct {
	core.StatelessBase
	Bundle props.Bundle
}

func (c Comments) Build(ctx core.BuildContext) core.Widget {
	return markup.Element{
		Tag:   "div",
		Class: "o-comments",
		Attrs: map[string]string{
			"data-o-component":          "o-comments",
			"data-o-comments-articleid": c.Bundle.Props.String("id"),
			BreakpointAttr:              c.Bundle.Breakpoint,
		},
	}
}

// Footer renders the site footer.
type Footer struct {
	core.StatelessBase
	Bundle props.Bundle
}

func (f Footer) Build(ctx core.BuildContext) core.Widget {
	return markup.Element{
		Tag:   "footer",
		Class: "o-footer",
		Attrs: map[string]string{"data-o-component": "o-footer", BreakpointAttr: f.Bundle.Breakpoint},
		Children: []core.Widget{
			grid.Container{Children: []core.Widget{
				grid.Row{Children: []core.Widget{
					grid.Child{Children: []core.Widget{
						markup.Element{Tag: "p", Class: "o-footer__copyright", Children: []core.Widget{
							markup.Text("Markets data delayed by at least 15 minutes."),
						}},
					}},
				}},
			}},
		},
	}
}
