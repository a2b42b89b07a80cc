package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/go-drift/pagelayout/pkg/app"
	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/markup"
)

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("Settle timed out: tasks or frames still pending")

// WidgetTester mounts widgets in an isolated session and drives frames by
// hand. It is not safe for concurrent use; background tasks hand their
// effects back through the session's dispatch queue.
type WidgetTester struct {
	session *app.Session
	clock   *FakeClock
}

// NewWidgetTester creates a tester. Call Cleanup when done, or use
// NewWidgetTesterWithT instead.
func NewWidgetTester() *WidgetTester {
	return &WidgetTester{
		session: app.NewSession(),
		clock:   NewFakeClock(),
	}
}

// NewWidgetTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree, disposing every state.
func (t *WidgetTester) Cleanup() {
	t.session.Close()
}

// Clock returns the fake clock. Pass Clock().Now to widgets taking a clock.
func (t *WidgetTester) Clock() *FakeClock {
	return t.clock
}

// Session returns the underlying session.
func (t *WidgetTester) Session() *app.Session {
	return t.session
}

// PumpWidget mounts widget, or updates the mounted root in place when it has
// the same type and key, and runs one frame.
func (t *WidgetTester) PumpWidget(widget core.Widget) error {
	if err := t.session.Mount(widget); err != nil {
		return err
	}
	t.Pump()
	return nil
}

// Pump runs a single frame: each queued dispatch, followed by the rebuilds
// it caused.
func (t *WidgetTester) Pump() {
	t.session.Pump()
}

// Settle waits for background tasks and pumps until idle. Returns
// ErrSettleTimeout if that takes longer than timeout.
func (t *WidgetTester) Settle(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := t.session.Settle(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrSettleTimeout
		}
		return err
	}
	return nil
}

// Unmount tears the tree down. The tester cannot pump widgets afterwards.
func (t *WidgetTester) Unmount() {
	t.session.Close()
}

// RootElement returns the root element of the mounted tree.
func (t *WidgetTester) RootElement() core.Element {
	return t.session.Root()
}

// Markup returns the current tree as a document node.
func (t *WidgetTester) Markup() *html.Node {
	root := t.session.Root()
	if root == nil {
		return &html.Node{Type: html.DocumentNode}
	}
	return core.RenderMarkup(root)
}

// HTML returns the current tree as an HTML string.
func (t *WidgetTester) HTML() string {
	out, _ := t.session.HTML()
	return out
}

// Query returns the rendered nodes matching a CSS selector group.
func (t *WidgetTester) Query(selector string) ([]*html.Node, error) {
	return markup.NodeDocument{Root: t.Markup()}.QueryAll(selector)
}

// Find evaluates a finder against the current element tree.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	root := t.session.Root()
	if root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(root),
		finder:   finder,
	}
}
