// Package app hosts a widget tree: it owns the build owner, drives frames and
// renders the tree to HTML.
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/go-drift/pagelayout/pkg/core"
	pageerrors "github.com/go-drift/pagelayout/pkg/errors"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/metrics"
)

// ErrClosed is returned by Session methods after Close.
var ErrClosed = errors.New("app: session closed")

// maxSettleFrames bounds Settle against trees that never stop scheduling work.
const maxSettleFrames = 100

// Session runs a single widget tree. Its methods other than Wake must be
// called from one goroutine, the session's UI thread.
type Session struct {
	owner  *core.BuildOwner
	root   core.Element
	wake   chan struct{}
	closed bool
	mu     sync.Mutex
}

// NewSession creates an empty session.
func NewSession() *Session {
	s := &Session{
		owner: core.NewBuildOwner(),
		wake:  make(chan struct{}, 1),
	}
	s.owner.OnNeedsFrame = func() {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	return s
}

// Owner returns the session's build owner.
func (s *Session) Owner() *core.BuildOwner { return s.owner }

// Root returns the root element, or nil before Mount.
func (s *Session) Root() core.Element { return s.root }

// Wake receives a value whenever the tree needs a frame. It may be
// received from any goroutine; the frame itself runs with Pump.
func (s *Session) Wake() <-chan struct{} { return s.wake }

// Mount makes widget the root. A second Mount updates the existing root in
// place when the widget type and key match, and replaces it otherwise.
func (s *Session) Mount(widget core.Widget) (err error) {
	if s.isClosed() {
		return ErrClosed
	}
	defer pageerrors.RecoverWithCallback("app.Mount", func(r any) {
		err = fmt.Errorf("app: mount panicked: %v", r)
	})
	if s.root != nil && sameKind(s.root.Widget(), widget) {
		s.root.Update(widget)
		return nil
	}
	if s.root != nil {
		s.root.Unmount()
	}
	s.root = core.MountRoot(widget, s.owner)
	return nil
}

func sameKind(a, b core.Widget) bool {
	return a != nil && b != nil &&
		reflect.TypeOf(a) == reflect.TypeOf(b) &&
		reflect.DeepEqual(a.Key(), b.Key())
}

// Pump runs one frame. Each queued dispatch is followed by a rebuild of the
// elements it dirtied.
func (s *Session) Pump() {
	if s.isClosed() {
		return
	}
	s.owner.FlushFrame()
}

// Settle waits for in-flight tasks and pumps until no work remains.
func (s *Session) Settle(ctx context.Context) error {
	for range maxSettleFrames {
		if err := s.owner.WaitTasks(ctx); err != nil {
			return err
		}
		s.Pump()
		if !s.owner.NeedsWork() && s.owner.InFlight() == 0 {
			return nil
		}
	}
	return errors.New("app: tree did not settle")
}

// Document returns a queryable view of the current tree.
func (s *Session) Document() markup.Document {
	return markup.ElementDocument{Root: s.root}
}

// Render writes the current tree as HTML.
func (s *Session) Render(w io.Writer) error {
	if s.root == nil {
		return nil
	}
	metrics.Renders.Inc()
	return markup.Render(w, core.RenderMarkup(s.root))
}

// HTML returns the current tree as an HTML string.
func (s *Session) HTML() (string, error) {
	var buf bytes.Buffer
	err := s.Render(&buf)
	return buf.String(), err
}

// Close unmounts the tree, releasing every resource held by its states, and
// flushes pending dispatches. Dispatches of disposed states do nothing.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	if s.root != nil {
		s.root.Unmount()
		s.root = nil
	}
	s.owner.FlushDispatches()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
