package page

import (
	"slices"
	"strings"

	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
	"github.com/go-drift/pagelayout/pkg/sections"
)

// HasOwnContainer reports whether child provides its own grid container:
// it is a grid.Container, or its ClassName contains grid.ContainerClass.
//
// The class check is a substring match, so "o-grid-container--bleed"
// counts as well.
func HasOwnContainer(child core.Widget) bool {
	switch child.(type) {
	case grid.Container, *grid.Container:
		return true
	}
	if named, ok := child.(interface{ ClassName() string }); ok {
		return strings.Contains(named.ClassName(), grid.ContainerClass)
	}
	return false
}

// Compose returns the article body for children. Receivers get p and
// breakpoint injected. The result is wrapped in one grid container, row and
// column of colspan unless defaultContainer is false or a child has its own
// container.
func Compose(children []core.Widget, defaultContainer bool, colspan string, p props.Props, breakpoint string) []core.Widget {
	injected := props.Inject(children, p, breakpoint)
	if !defaultContainer || slices.ContainsFunc(children, HasOwnContainer) {
		return injected
	}
	return []core.Widget{
		grid.Container{Children: []core.Widget{
			grid.Row{Children: []core.Widget{
				grid.Child{Colspan: colspan, Children: []core.Widget{
					markup.Div(injected...),
				}},
			}},
		}},
	}
}

func composePage(l Layout, shared props.Shared) []core.Widget {
	flags := l.Flags
	bundle := shared.Bundle()
	var page []core.Widget

	if flags.Enabled(props.FlagAnalytics) {
		page = append(page, sections.Analytics{Bundle: bundle})
	}
	if flags.Enabled(props.FlagAds) {
		page = append(page, sections.TopAd{})
	}
	if flags.Enabled(props.FlagHeader) {
		page = append(page, sections.Header{Bundle: bundle, Colspan: l.headerColspan()})
	}

	page = append(page, markup.Element{
		Tag:   "main",
		Attrs: map[string]string{"role": "main"},
		Children: []core.Widget{
			markup.Element{
				Tag:   "article",
				Class: "article",
				Attrs: map[string]string{"itemscope": "", "itemtype": "http://schema.org/Article"},
				Children: []core.Widget{
					articleHead(l, bundle),
					markup.Element{
						Tag:      "div",
						Class:    "article-body o-typography-wrapper",
						Attrs:    map[string]string{"itemprop": "articleBody"},
						Children: Compose(l.Children, shared.DefaultContainer, l.bodyColspan(), shared.Props, shared.Breakpoint),
					},
					articleFooter(l),
				},
			},
		},
	})

	if flags.Enabled(props.FlagOnwardJourney) {
		page = append(page, sections.OnwardJourney{Bundle: props.Bundle{Props: bundle.Props, Breakpoint: bundle.Breakpoint}})
	}
	if flags.Enabled(props.FlagComments) {
		page = append(page, sections.Comments{Bundle: bundle})
	}
	if flags.Enabled(props.FlagFooter) {
		page = append(page, sections.Footer{Bundle: bundle})
	}
	return page
}

func articleHead(l Layout, bundle props.Bundle) core.Widget {
	head := l.CustomArticleHead
	if head == nil {
		head = sections.ArticleHead{Bundle: props.Bundle{Props: bundle.Props, Flags: bundle.Flags}}
	}
	return grid.Container{Class: "article-head", Children: []core.Widget{
		grid.Row{Children: []core.Widget{
			grid.Child{Colspan: grid.DefaultColspan, Children: []core.Widget{head}},
		}},
	}}
}

func articleFooter(l Layout) core.Widget {
	return markup.Element{
		Tag:   "footer",
		Class: "o-typography-footer",
		Attrs: map[string]string{
			"itemprop":  "publisher",
			"itemscope": "",
			"itemtype":  "https://schema.org/Organization",
		},
		Children: []core.Widget{
			grid.Container{Children: []core.Widget{
				grid.Row{Children: []core.Widget{
					grid.Child{Colspan: grid.DefaultColspan, Children: []core.Widget{
						sections.Copyright{Now: l.Now},
					}},
				}},
			}},
		},
	}
}
