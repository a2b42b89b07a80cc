package page

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/breakpoint"
	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/errors"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
)

type layoutState struct {
	core.StateBase
	breakpoint *core.Managed[string]
	release    func()
}

func (s *layoutState) layout() Layout {
	return s.Element().Widget().(Layout)
}

func (s *layoutState) InitState() {
	s.breakpoint = core.NewManaged(s, breakpoint.Default)
	s.acquire()
}

func (s *layoutState) DidUpdateWidget(oldWidget core.StatefulWidget) {
	if oldWidget.(Layout).adsKey() == s.layout().adsKey() {
		return
	}
	s.release()
	s.acquire()
}

// acquire subscribes to layout changes, registers for them and, with the ads
// flag on, starts ad initialization. Whatever was acquired is released in
// reverse order by s.release or on dispose, at most once.
func (s *layoutState) acquire() {
	l := s.layout()

	var (
		source      = l.Breakpoints
		unsubscribe = func() {}
		handle      breakpoint.Handle
		task        *core.Task
		once        sync.Once
	)
	if source != nil {
		unsubscribe = core.UseSubscription(s, func() func() {
			return source.Subscribe(s.onLayoutChange)
		})
	}

	release := func() {
		once.Do(func() {
			if task != nil {
				task.Cancel()
			}
			if !handle.IsZero() {
				source.Unregister(handle)
			}
			unsubscribe()
		})
	}
	unregister := s.OnDispose(release)
	s.release = func() {
		unregister()
		release()
	}

	if source != nil {
		h, err := source.Register()
		if err != nil {
			errors.Report(&errors.PageError{Op: "page.Layout.register", Kind: errors.KindLayout, Err: err})
		} else {
			handle = h
		}
	}

	if l.Flags.Enabled(props.FlagAds) {
		task = s.startAds(l)
	}
}

// onLayoutChange may be called from any goroutine. Every notification is
// one state transition; the value is not validated.
func (s *layoutState) onLayoutChange(layout string) {
	s.Dispatch(func() {
		s.breakpoint.Set(layout)
	})
}

func (s *layoutState) startAds(l Layout) *core.Task {
	cfg := l.AdsConfig().ServiceConfig()
	service := l.AdService
	if service == nil {
		service = ads.Default
	}
	doc := l.Document

	return core.StartTask(s, func(ctx context.Context) func() {
		slots, err := service.Init(ctx, cfg)
		if err != nil {
			reportAds(ctx, "ads.Init", err)
			return nil
		}
		return func() {
			target := doc
			if target == nil {
				target = markup.ElementDocument{Root: s.Element()}
			}
			if _, err := ads.InitSlots(ctx, slots, target); err != nil {
				reportAds(ctx, "ads.InitSlots", err)
			}
		}
	})
}

// reportAds reports an ad failure unless it was caused by cancellation.
func reportAds(ctx context.Context, op string, err error) {
	if ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
		return
	}
	errors.Report(&errors.PageError{Op: op, Kind: errors.KindAds, Err: err})
}

func (s *layoutState) Build(ctx core.BuildContext) core.Widget {
	l := s.layout()
	current := s.breakpoint.Value()
	passthrough := l.Passthrough()
	shared := props.Shared{
		Flags:             l.Flags,
		Ads:               l.AdsConfig(),
		DefaultContainer:  !l.DisableDefaultContainer,
		CustomArticleHead: l.CustomArticleHead,
		Breakpoint:        current,
		Props:             passthrough,
	}
	return props.Scope{
		Value: shared,
		Child: markup.Fragment{Children: composePage(l, shared)},
	}
}
