package testing

import (
	"context"
	"sync"

	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/breakpoint"
	"github.com/go-drift/pagelayout/pkg/markup"
)

// RecordingAds is an ads.Service that records every call. Safe for
// concurrent use.
type RecordingAds struct {
	// Gate, if set, blocks Init until it is closed or the context is done.
	Gate chan struct{}
	// InitErr is returned by Init.
	InitErr error
	// SlotErr is returned by InitSlot for the slot with this name.
	SlotErr     error
	SlotErrName string

	mu      sync.Mutex
	configs []ads.Config
	slots   []string
	started chan struct{}
	once    sync.Once
}

func (r *RecordingAds) startedChan() chan struct{} {
	r.once.Do(func() { r.started = make(chan struct{}) })
	return r.started
}

// Started is closed when the first Init call begins.
func (r *RecordingAds) Started() <-chan struct{} {
	return r.startedChan()
}

func (r *RecordingAds) Init(ctx context.Context, cfg ads.Config) (ads.Slots, error) {
	r.mu.Lock()
	r.configs = append(r.configs, cfg)
	r.mu.Unlock()

	started := r.startedChan()
	select {
	case <-started:
	default:
		close(started)
	}

	if r.Gate != nil {
		select {
		case <-r.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.InitErr != nil {
		return nil, r.InitErr
	}
	return recordingSlots{r}, nil
}

// Configs returns the configs passed to Init, in call order.
func (r *RecordingAds) Configs() []ads.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ads.Config(nil), r.configs...)
}

// InitCount returns the number of Init calls.
func (r *RecordingAds) InitCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs)
}

// Slots returns the names of initialized slots, in call order.
func (r *RecordingAds) Slots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.slots...)
}

type recordingSlots struct {
	r *RecordingAds
}

func (s recordingSlots) InitSlot(ctx context.Context, node *html.Node) error {
	name, err := ads.SlotName(node)
	if err != nil {
		name = markup.TextContent(node)
	}
	if s.r.SlotErr != nil && name == s.r.SlotErrName {
		return s.r.SlotErr
	}
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.slots = append(s.r.slots, name)
	return nil
}

// RecordingSource wraps a breakpoint.Service and counts calls.
type RecordingSource struct {
	*breakpoint.Service

	// RegisterErr, if set, is returned by Register.
	RegisterErr error

	mu           sync.Mutex
	subscribes   int
	registers    int
	unregisters  int
	unregistered map[breakpoint.Handle]int
}

// NewRecordingSource creates a source backed by a new breakpoint.Service.
func NewRecordingSource() *RecordingSource {
	return &RecordingSource{
		Service:      breakpoint.NewService(),
		unregistered: make(map[breakpoint.Handle]int),
	}
}

func (s *RecordingSource) Subscribe(fn breakpoint.Listener) func() {
	s.mu.Lock()
	s.subscribes++
	s.mu.Unlock()
	return s.Service.Subscribe(fn)
}

func (s *RecordingSource) Register() (breakpoint.Handle, error) {
	if s.RegisterErr != nil {
		return breakpoint.Handle{}, s.RegisterErr
	}
	h, err := s.Service.Register()
	if err == nil {
		s.mu.Lock()
		s.registers++
		s.mu.Unlock()
	}
	return h, err
}

func (s *RecordingSource) Unregister(h breakpoint.Handle) bool {
	s.mu.Lock()
	s.unregisters++
	s.unregistered[h]++
	s.mu.Unlock()
	return s.Service.Unregister(h)
}

// Counts returns the number of Subscribe, successful Register and
// Unregister calls.
func (s *RecordingSource) Counts() (subscribes, registers, unregisters int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes, s.registers, s.unregisters
}

// MaxUnregisters returns the most times any single handle was unregistered.
func (s *RecordingSource) MaxUnregisters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	most := 0
	for _, n := range s.unregistered {
		most = max(most, n)
	}
	return most
}
