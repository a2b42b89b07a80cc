package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/markup"
)

type counter struct {
	core.StatefulBase
	label string
}

func (c counter) CreateState() core.State { return &counterState{} }

type counterState struct {
	core.StateBase
	count *core.Managed[int]
}

func (s *counterState) InitState() {
	s.count = core.NewManaged(s, 0)
}

func (s *counterState) Build(ctx core.BuildContext) core.Widget {
	w := s.Element().Widget().(counter)
	return markup.Element{Tag: "p", Children: []core.Widget{
		markup.Text(w.label),
		markup.Text(string(rune('0' + s.count.Value()))),
	}}
}

func TestSession_MountRender(t *testing.T) {
	s := NewSession()
	defer s.Close()

	require.NoError(t, s.Mount(counter{label: "n="}))
	out, err := s.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<p>n=0</p>", out)

	require.NoError(t, s.Mount(counter{label: "count="}))
	out, _ = s.HTML()
	assert.Equal(t, "<p>count=0</p>", out, "same widget type updates in place")
}

func TestSession_DispatchWakesAndPumps(t *testing.T) {
	s := NewSession()
	defer s.Close()
	require.NoError(t, s.Mount(counter{label: "n="}))

	state := s.Root().(*core.StatefulElement).State().(*counterState)
	select {
	case <-s.Wake():
	default:
	}
	go state.Dispatch(func() { state.count.Set(3) })

	select {
	case <-s.Wake():
	case <-time.After(time.Second):
		t.Fatal("no wake signal")
	}
	s.Pump()
	out, _ := s.HTML()
	assert.Equal(t, "<p>n=3</p>", out)
}

func TestSession_SettleWaitsForTasks(t *testing.T) {
	s := NewSession()
	defer s.Close()
	require.NoError(t, s.Mount(counter{label: "n="}))

	state := s.Root().(*core.StatefulElement).State().(*counterState)
	release := make(chan struct{})
	core.StartTask(state, func(ctx context.Context) func() {
		<-release
		return func() { state.count.Set(7) }
	})
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Settle(ctx))
	out, _ := s.HTML()
	assert.Equal(t, "<p>n=7</p>", out)
}

func TestSession_CloseDisposesTree(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Mount(counter{}))
	state := s.Root().(*core.StatefulElement).State().(*counterState)

	s.Close()
	s.Close()
	assert.True(t, state.IsDisposed())
	assert.ErrorIs(t, s.Mount(counter{}), ErrClosed)
	assert.Nil(t, s.Root())
}

type panicky struct{ core.StatefulBase }

func (panicky) CreateState() core.State { panic("boom") }

func TestSession_MountRecoversPanic(t *testing.T) {
	s := NewSession()
	defer s.Close()
	assert.Error(t, s.Mount(panicky{}))
}

func TestSession_Tree(t *testing.T) {
	s := NewSession()
	defer s.Close()
	assert.Nil(t, s.Tree())

	require.NoError(t, s.Mount(counter{label: "n"}))
	tree := s.Tree()
	require.NotNil(t, tree)
	assert.Equal(t, "app.counter", tree.WidgetType)
	assert.True(t, tree.HasState)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "markup.Element", tree.Children[0].WidgetType)
	assert.Len(t, tree.Children[0].Children, 2)
	assert.False(t, tree.NeedsBuild)
}

func TestSafeKey(t *testing.T) {
	assert.Nil(t, safeKey(nil))
	assert.Equal(t, 3, safeKey(3))
	assert.Equal(t, "{a}", safeKey(struct{ s string }{"a"}))
}
