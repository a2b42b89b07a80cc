// Package props defines the inputs a page layout hands to its sections and
// content, and the shared value it publishes to the subtree.
package props

import (
	"maps"

	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/core"
)

// Feature flag names.
const (
	FlagAds           = "ads"
	FlagAnalytics     = "analytics"
	FlagHeader        = "header"
	FlagFooter        = "footer"
	FlagComments      = "comments"
	FlagOnwardJourney = "onwardjourney"
)

// FlagNames lists the known flags.
var FlagNames = []string{FlagAds, FlagAnalytics, FlagHeader, FlagFooter, FlagComments, FlagOnwardJourney}

// Flags maps a feature name to whether it is on. Missing features are off.
type Flags map[string]bool

// Enabled reports whether name is on.
func (f Flags) Enabled(name string) bool { return f[name] }

// DefaultSite is the ad unit site used when no ads config is supplied.
const DefaultSite = "test.5887.origami"

// AdsConfig is the caller's ad unit configuration.
type AdsConfig struct {
	GPTSite      string           `yaml:"gptSite"`
	GPTZone      ads.StringOrBool `yaml:"gptZone"`
	DFPTargeting ads.StringOrBool `yaml:"dfpTargeting"`
}

// DefaultAdsConfig returns the config used when the caller supplies none.
func DefaultAdsConfig() AdsConfig {
	return AdsConfig{GPTSite: DefaultSite, GPTZone: ads.Bool(false), DFPTargeting: ads.Bool(false)}
}

// ServiceConfig returns the config passed to the ad service, with the
// network id set and fallbacks applied to an empty site or zone. The zone
// is a string on the wire, so a GPTZone of true also falls back to
// ads.FallbackZone; DFPTargeting keeps its bool or string as given.
func (c AdsConfig) ServiceConfig() ads.Config {
	site := c.GPTSite
	if site == "" {
		site = ads.FallbackSite
	}
	return ads.Config{
		GPT: ads.GPT{
			Network: ads.Network,
			Site:    site,
			Zone:    c.GPTZone.Or(ads.FallbackZone),
		},
		DFPTargeting: c.DFPTargeting,
	}
}

// Props are passthrough values forwarded verbatim to sections and content.
type Props map[string]any

// Clone returns a shallow copy of p. The clone of nil is an empty map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	maps.Copy(out, p)
	return out
}

// With returns a copy of p with key set to value.
func (p Props) With(key string, value any) Props {
	out := p.Clone()
	out[key] = value
	return out
}

// String returns the string stored under key, or "".
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Receiver is implemented by content that accepts injected props.
// WithProps returns a copy of the widget carrying p and breakpoint; the
// receiver itself is not modified.
type Receiver interface {
	core.Widget
	WithProps(p Props, breakpoint string) core.Widget
}

// Inject returns children with props and breakpoint given to every
// Receiver. Other children, text included, are returned as they are.
func Inject(children []core.Widget, p Props, breakpoint string) []core.Widget {
	out := make([]core.Widget, len(children))
	for i, child := range children {
		if receiver, ok := child.(Receiver); ok {
			out[i] = receiver.WithProps(p.Clone(), breakpoint)
			continue
		}
		out[i] = child
	}
	return out
}

// Bundle is what a page section receives explicitly.
type Bundle struct {
	Props      Props
	Flags      Flags
	Breakpoint string
}
