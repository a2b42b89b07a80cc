// Package metrics holds the Prometheus collectors shared by the layout
// services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagelayout"

// Registry is the registry every collector in this package is registered on.
var Registry = prometheus.NewRegistry()

var (
	// BreakpointChanges counts emitted layout changes by layout name.
	BreakpointChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "breakpoint",
		Name:      "changes_total",
		Help:      "Layout changes emitted to subscribers.",
	}, []string{"layout"})

	// LayoutRegistrations is the number of live layout-change registrations.
	LayoutRegistrations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "layout_registrations",
		Help:      "Live layout-change registrations.",
	})

	// AdInits counts ad service initializations by result.
	AdInits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ads",
		Name:      "inits_total",
		Help:      "Ad service initializations.",
	}, []string{"result"})

	// AdSlots counts slot initializations by result.
	AdSlots = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ads",
		Name:      "slots_total",
		Help:      "Ad slot initializations.",
	}, []string{"result"})

	// Renders counts full page renders by the host.
	Renders = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Page renders produced by host sessions.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		BreakpointChanges,
		LayoutRegistrations,
		AdInits,
		AdSlots,
		Renders,
	)
}

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
