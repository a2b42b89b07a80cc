package content

import (
	"github.com/go-drift/pagelayout/cmd/pagelayout/internal/config"
	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/page"
	"github.com/go-drift/pagelayout/pkg/props"
)

// Layout builds the page layout described by cfg.
func Layout(cfg config.PageConfig, source page.Source, service ads.Service) page.Layout {
	layout := page.Layout{
		Flags:         cfg.Flags,
		Ads:           cfg.Ads,
		Children:      Widgets(cfg.Content),
		BodyColspan:   cfg.BodyColspan,
		HeaderColspan: cfg.HeaderColspan,
		ID:            cfg.ID,
		Props:         props.Props(cfg.Props),
		Breakpoints:   source,
		AdService:     service,
	}
	if cfg.DefaultContainer != nil {
		layout.DisableDefaultContainer = !*cfg.DefaultContainer
	}
	return layout
}
