package page

import (
	"time"

	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/breakpoint"
	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
)

// Source delivers layout changes. *breakpoint.Service implements it.
type Source interface {
	Subscribe(fn breakpoint.Listener) (unsubscribe func())
	Register() (breakpoint.Handle, error)
	Unregister(h breakpoint.Handle) bool
}

// Layout is the article page shell.
type Layout struct {
	core.StatefulBase

	// Flags gates the optional sections and ad initialization.
	Flags props.Flags
	// Ads configures the ad unit. Nil uses props.DefaultAdsConfig.
	Ads *props.AdsConfig
	// Children is the article body content.
	Children []core.Widget
	// DisableDefaultContainer renders children without the default grid wrapper.
	DisableDefaultContainer bool
	// CustomArticleHead replaces the default article head.
	CustomArticleHead core.Widget
	// BodyColspan is the colspan of the default wrapper column.
	BodyColspan string
	// HeaderColspan is forwarded to the header section.
	HeaderColspan string
	// ID is passed through to sections and content as the "id" prop.
	ID string
	// Props are passed through to sections and content.
	Props props.Props

	// Breakpoints is the layout-change source. Nil disables breakpoint
	// tracking; the breakpoint stays breakpoint.Default.
	Breakpoints Source
	// AdService is used when the ads flag is on. Nil uses ads.Default.
	AdService ads.Service
	// Document is searched for ad slots. Nil searches the layout's own markup.
	Document markup.Document
	// Now is the copyright clock. Nil uses time.Now.
	Now func() time.Time
}

func (l Layout) CreateState() core.State {
	return &layoutState{}
}

// AdsConfig returns the effective ads configuration.
func (l Layout) AdsConfig() props.AdsConfig {
	if l.Ads == nil {
		return props.DefaultAdsConfig()
	}
	return *l.Ads
}

// Passthrough returns the props forwarded to sections and content: Props
// plus the "id" prop.
func (l Layout) Passthrough() props.Props {
	return l.Props.With("id", l.ID)
}

func (l Layout) bodyColspan() string {
	if l.BodyColspan == "" {
		return grid.DefaultColspan
	}
	return l.BodyColspan
}

func (l Layout) headerColspan() string {
	if l.HeaderColspan == "" {
		return grid.DefaultColspan
	}
	return l.HeaderColspan
}

// adsKey holds the inputs whose change re-runs acquisition.
type adsKey struct {
	site      string
	zone      ads.StringOrBool
	targeting ads.StringOrBool
	enabled   bool
}

func (l Layout) adsKey() adsKey {
	cfg := l.AdsConfig()
	return adsKey{
		site:      cfg.GPTSite,
		zone:      cfg.GPTZone,
		targeting: cfg.DFPTargeting,
		enabled:   l.Flags.Enabled(props.FlagAds),
	}
}
