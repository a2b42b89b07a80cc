// Package ads initializes the ad service and the ad slots of a rendered page.
package ads

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/markup"
)

const (
	// Network is the ad server network id.
	Network = 5887
	// FallbackSite is used when no site is configured.
	FallbackSite = "ft.com"
	// FallbackZone is used when no zone is configured.
	FallbackZone = "unclassified"
	// SlotSelector matches ad slot placeholders.
	SlotSelector = ".o-ads, [data-o-ads-name]"
	// NameAttr names a slot.
	NameAttr = "data-o-ads-name"
)

var (
	// ErrInvalidConfig is returned by Init for a config that fails Validate.
	ErrInvalidConfig = errors.New("ads: invalid config")
	// ErrUnnamedSlot is returned for a slot with neither a name nor an id.
	ErrUnnamedSlot = errors.New("ads: slot has no name")
	// ErrDuplicateSlot is returned when a slot name is initialized twice.
	ErrDuplicateSlot = errors.New("ads: duplicate slot")
	// ErrNotInitialized is returned by slot calls made before Init.
	ErrNotInitialized = errors.New("ads: not initialized")
)

// GPT identifies the ad unit.
type GPT struct {
	Network int
	Site    string
	Zone    string
}

// Config is passed to Service.Init.
type Config struct {
	GPT          GPT
	DFPTargeting StringOrBool
}

// Validate checks that the ad unit is fully specified.
func (c Config) Validate() error {
	switch {
	case c.GPT.Network <= 0:
		return fmt.Errorf("%w: network %d", ErrInvalidConfig, c.GPT.Network)
	case c.GPT.Site == "":
		return fmt.Errorf("%w: empty site", ErrInvalidConfig)
	case c.GPT.Zone == "":
		return fmt.Errorf("%w: empty zone", ErrInvalidConfig)
	}
	return nil
}

// Service initializes the ad library.
type Service interface {
	Init(ctx context.Context, cfg Config) (Slots, error)
}

// Slots initializes individual slots after Init.
type Slots interface {
	InitSlot(ctx context.Context, node *html.Node) error
}

// SlotName returns the name of a slot node: its data-o-ads-name attribute,
// else its id.
func SlotName(node *html.Node) (string, error) {
	if name, ok := markup.Attribute(node, NameAttr); ok && name != "" {
		return name, nil
	}
	if id, ok := markup.Attribute(node, "id"); ok && id != "" {
		return id, nil
	}
	return "", ErrUnnamedSlot
}

// InitSlots finds every slot in doc and initializes each in document order.
// It stops at the first error and returns the number of slots initialized.
func InitSlots(ctx context.Context, slots Slots, doc markup.Document) (int, error) {
	nodes, err := doc.QueryAll(SlotSelector)
	if err != nil {
		return 0, err
	}
	for i, node := range nodes {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := slots.InitSlot(ctx, node); err != nil {
			return i, err
		}
	}
	return len(nodes), nil
}
