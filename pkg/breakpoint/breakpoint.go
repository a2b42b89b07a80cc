// Package breakpoint tracks the active responsive layout and notifies
// subscribers when it changes.
//
// A Service replaces the browser's window-scoped layout-change event with an
// explicit object. Consumers subscribe for notifications and register for the
// lifetime of their interest; layout changes are only emitted while at least
// one registration is live.
package breakpoint

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/pagelayout/pkg/metrics"
)

// Default is the layout name used below the smallest breakpoint.
const Default = "default"

// EventName is the browser event carrying layout changes.
const EventName = "o-grid.layoutChange"

// ErrClosed is returned by Register after Close.
var ErrClosed = errors.New("breakpoint: service closed")

// Layout is a named minimum viewport width.
type Layout struct {
	Name     string
	MinWidth int
}

// Layouts are the o-grid layouts, smallest first.
var Layouts = []Layout{
	{Name: "S", MinWidth: 490},
	{Name: "M", MinWidth: 740},
	{Name: "L", MinWidth: 980},
	{Name: "XL", MinWidth: 1220},
}

// ForWidth returns the name of the widest layout whose minimum width fits
// px, or Default.
func ForWidth(layouts []Layout, px int) string {
	name := Default
	for _, layout := range layouts {
		if px >= layout.MinWidth {
			name = layout.Name
		}
	}
	return name
}

// Handle identifies a registration.
type Handle struct {
	id uuid.UUID
}

// IsZero reports whether h was never returned by Register.
func (h Handle) IsZero() bool { return h.id == uuid.Nil }

func (h Handle) String() string { return h.id.String() }

// Listener receives layout names.
type Listener func(layout string)

// Option configures a Service.
type Option func(*Service)

// WithLayouts replaces the layout table used by SetViewportWidth.
func WithLayouts(layouts []Layout) Option {
	return func(s *Service) {
		sorted := slices.Clone(layouts)
		slices.SortFunc(sorted, func(a, b Layout) int { return a.MinWidth - b.MinWidth })
		s.layouts = sorted
	}
}

// Service is safe for concurrent use. Listeners are called without the lock
// held, on the goroutine that caused the change.
type Service struct {
	mu            sync.Mutex
	layouts       []Layout
	current       string
	listeners     map[uint64]Listener
	order         []uint64
	nextID        uint64
	registrations map[Handle]struct{}
	closed        bool
}

// NewService creates a service starting at the Default layout.
func NewService(opts ...Option) *Service {
	s := &Service{
		layouts:       Layouts,
		current:       Default,
		listeners:     make(map[uint64]Listener),
		registrations: make(map[Handle]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe adds fn to the listeners. The returned function removes it and
// is safe to call more than once.
func (s *Service) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			s.order = slices.DeleteFunc(s.order, func(v uint64) bool { return v == id })
		})
	}
}

// Register starts a registration. Changes are emitted while at least one
// registration is live.
func (s *Service) Register() (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Handle{}, ErrClosed
	}
	h := Handle{id: uuid.New()}
	s.registrations[h] = struct{}{}
	metrics.LayoutRegistrations.Inc()
	return h, nil
}

// Unregister ends a registration. It reports whether h was live; zero,
// unknown and already released handles are no-ops.
func (s *Service) Unregister(h Handle) bool {
	if h.IsZero() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.registrations[h]; !ok {
		return false
	}
	delete(s.registrations, h)
	metrics.LayoutRegistrations.Dec()
	return true
}

// SetViewportWidth maps px to a layout and emits it if the layout changed.
func (s *Service) SetViewportWidth(px int) {
	s.mu.Lock()
	name := ForWidth(s.layouts, px)
	s.mu.Unlock()
	s.emit(name, false)
}

// Publish emits name verbatim, even if it equals the current layout.
func (s *Service) Publish(name string) {
	s.emit(name, true)
}

func (s *Service) emit(name string, force bool) {
	s.mu.Lock()
	if s.closed || len(s.registrations) == 0 || (!force && name == s.current) {
		s.mu.Unlock()
		return
	}
	s.current = name
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	metrics.BreakpointChanges.WithLabelValues(name).Inc()
	for _, fn := range listeners {
		fn(name)
	}
}

// Current returns the last emitted layout.
func (s *Service) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Registrations returns the number of live registrations.
func (s *Service) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}

// Subscribers returns the number of listeners.
func (s *Service) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Close drops every listener and registration. Later calls to Register
// fail with ErrClosed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	metrics.LayoutRegistrations.Sub(float64(len(s.registrations)))
	clear(s.registrations)
	clear(s.listeners)
	s.order = nil
}
