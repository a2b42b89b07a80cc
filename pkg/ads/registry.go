package ads

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/metrics"
)

var tracer trace.Tracer = otel.Tracer("github.com/go-drift/pagelayout/pkg/ads")

// Default is the process-wide ad service.
var Default = NewRegistry()

// Slot is an initialized slot.
type Slot struct {
	Name   string
	Attrs  map[string]string
	Config Config
}

// Registry is an in-process ad service. Global configuration is shared:
// the last Init wins and starts a new slot generation.
type Registry struct {
	mu          sync.Mutex
	config      Config
	initialized bool
	generation  int
	slots       map[string]Slot
	order       []string
	inits       int
}

// NewRegistry creates an uninitialized registry.
func NewRegistry() *Registry {
	return &Registry{slots: make(map[string]Slot)}
}

// Init validates cfg, makes it the global configuration and clears the
// slots of the previous generation.
func (r *Registry) Init(ctx context.Context, cfg Config) (Slots, error) {
	_, span := tracer.Start(ctx, "ads.Init", trace.WithAttributes(
		attribute.Int("ads.network", cfg.GPT.Network),
		attribute.String("ads.site", cfg.GPT.Site),
		attribute.String("ads.zone", cfg.GPT.Zone),
		attribute.String("ads.dfp_targeting", cfg.DFPTargeting.String()),
	))
	defer span.End()

	err := cfg.Validate()
	if err == nil {
		err = ctx.Err()
	}
	metrics.AdInits.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = cfg
	r.initialized = true
	r.generation++
	r.inits++
	clear(r.slots)
	r.order = nil
	return &generationSlots{registry: r, generation: r.generation}, nil
}

// Config returns the global configuration and whether Init has succeeded.
func (r *Registry) Config() (Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config, r.initialized
}

// Inits returns the number of successful Init calls.
func (r *Registry) Inits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inits
}

// Slots returns the slots of the current generation in initialization order.
func (r *Registry) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Slot, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.slots[name])
	}
	return out
}

// Reset returns the registry to its uninitialized state.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.config = Config{}
	r.initialized = false
	r.generation++
	r.inits = 0
	clear(r.slots)
	r.order = nil
}

func (r *Registry) initSlot(ctx context.Context, generation int, node *html.Node) error {
	name, err := SlotName(node)
	_, span := tracer.Start(ctx, "ads.InitSlot", trace.WithAttributes(attribute.String("ads.slot", name)))
	defer span.End()
	defer func() {
		metrics.AdSlots.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		err = ErrNotInitialized
		return err
	}
	if generation != r.generation {
		// A newer Init owns the slots now.
		return nil
	}
	if _, ok := r.slots[name]; ok {
		err = fmt.Errorf("%w: %q", ErrDuplicateSlot, name)
		return err
	}
	r.slots[name] = Slot{Name: name, Attrs: nodeAttrs(node), Config: r.config}
	r.order = append(r.order, name)
	return nil
}

func nodeAttrs(node *html.Node) map[string]string {
	attrs := make(map[string]string, len(node.Attr))
	for _, attr := range node.Attr {
		attrs[attr.Key] = attr.Val
	}
	return attrs
}

// generationSlots is the Slots handle returned by one Init call.
type generationSlots struct {
	registry   *Registry
	generation int
}

func (g *generationSlots) InitSlot(ctx context.Context, node *html.Node) error {
	return g.registry.initSlot(ctx, g.generation, node)
}

// SlotNames returns the sorted names of the current slots.
func (r *Registry) SlotNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.slots))
}
