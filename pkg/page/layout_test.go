package page

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/pagelayout/pkg/ads"
	"github.com/go-drift/pagelayout/pkg/core"
	"github.com/go-drift/pagelayout/pkg/errors"
	"github.com/go-drift/pagelayout/pkg/grid"
	"github.com/go-drift/pagelayout/pkg/markup"
	"github.com/go-drift/pagelayout/pkg/props"
	pagetest "github.com/go-drift/pagelayout/pkg/testing"
)

// probe is content that records the props it was given.
type probe struct {
	core.StatelessBase
	Props      props.Props
	Breakpoint string
}

func (p probe) WithProps(pp props.Props, breakpoint string) core.Widget {
	p.Props = pp
	p.Breakpoint = breakpoint
	return p
}

func (p probe) Build(ctx core.BuildContext) core.Widget {
	return markup.Element{Tag: "div", Class: "probe", Attrs: map[string]string{
		"data-breakpoint": p.Breakpoint,
		"data-id":         p.Props.String("id"),
		"data-section":    p.Props.String("section"),
	}}
}

// deepReader reads the shared value instead of injected props.
type deepReader struct {
	core.StatelessBase
}

func (deepReader) Build(ctx core.BuildContext) core.Widget {
	shared := props.SharedOf(ctx)
	attrs := map[string]string{"data-shared-breakpoint": shared.Breakpoint}
	if shared.Flags.Enabled(props.FlagAds) {
		attrs["data-ads"] = "on"
	}
	return markup.Element{Tag: "span", Class: "deep", Attrs: attrs}
}

// breakpointLog is content that records the breakpoint of every build.
type breakpointLog struct {
	core.StatelessBase
	builds     *[]string
	Breakpoint string
}

func (b breakpointLog) WithProps(_ props.Props, breakpoint string) core.Widget {
	b.Breakpoint = breakpoint
	return b
}

func (b breakpointLog) Build(ctx core.BuildContext) core.Widget {
	*b.builds = append(*b.builds, b.Breakpoint)
	return nil
}

type recordingHandler struct {
	mu   sync.Mutex
	errs []*errors.PageError
}

func (h *recordingHandler) HandleError(err *errors.PageError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}
func (h *recordingHandler) HandlePanic(*errors.PanicError)      {}
func (h *recordingHandler) HandleBuildError(*errors.BuildError) {}

func (h *recordingHandler) errors() []*errors.PageError {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*errors.PageError(nil), h.errs...)
}

func captureErrors(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	errors.SetHandler(h)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return h
}

func query(t *testing.T, tester *pagetest.WidgetTester, selector string) []string {
	t.Helper()
	nodes, err := tester.Query(selector)
	require.NoError(t, err)
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = pagetest.FormatMarkup(n)
	}
	return out
}

func attr(t *testing.T, tester *pagetest.WidgetTester, selector, name string) string {
	t.Helper()
	nodes, err := tester.Query(selector)
	require.NoError(t, err)
	require.NotEmpty(t, nodes, "no match for %s", selector)
	value, _ := markup.Attribute(nodes[0], name)
	return value
}

func TestLayout_RegistrationsBalanceAcrossCycles(t *testing.T) {
	source := pagetest.NewRecordingSource()
	service := &pagetest.RecordingAds{}
	tester := pagetest.NewWidgetTesterWithT(t)

	layout := Layout{
		Flags:       props.Flags{props.FlagAds: true},
		Breakpoints: source,
		AdService:   service,
	}
	require.NoError(t, tester.PumpWidget(layout))
	assert.Equal(t, 1, source.Registrations())
	assert.Equal(t, 1, source.Subscribers())

	// An unrelated change keeps the registration.
	layout.ID = "a1"
	require.NoError(t, tester.PumpWidget(layout))
	_, registers, unregisters := source.Counts()
	assert.Equal(t, 1, registers)
	assert.Equal(t, 0, unregisters)

	// An ads change re-runs acquisition.
	layout.Ads = &props.AdsConfig{GPTSite: "x.com"}
	require.NoError(t, tester.PumpWidget(layout))
	_, registers, unregisters = source.Counts()
	assert.Equal(t, 2, registers)
	assert.Equal(t, 1, unregisters)
	assert.Equal(t, 1, source.Registrations())
	assert.Equal(t, 1, source.Subscribers(), "the old subscription is released before resubscribing")

	tester.Unmount()
	subscribes, registers, unregisters := source.Counts()
	assert.Equal(t, 2, subscribes)
	assert.Equal(t, registers, unregisters)
	assert.Equal(t, 1, source.MaxUnregisters(), "no handle is unregistered twice")
	assert.Equal(t, 0, source.Registrations())
	assert.Equal(t, 0, source.Subscribers())
}

func TestLayout_BreakpointReachesContent(t *testing.T) {
	source := pagetest.NewRecordingSource()
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{
		Breakpoints: source,
		ID:          "a1",
		Props:       props.Props{"section": "world"},
		Children:    []core.Widget{probe{}, deepReader{}},
	}))

	assert.Equal(t, "default", attr(t, tester, ".probe", "data-breakpoint"))
	assert.Equal(t, "a1", attr(t, tester, ".probe", "data-id"))
	assert.Equal(t, "world", attr(t, tester, ".probe", "data-section"))
	assert.Equal(t, "default", attr(t, tester, ".deep", "data-shared-breakpoint"))

	source.Publish("M")
	assert.Equal(t, "default", attr(t, tester, ".probe", "data-breakpoint"), "applied on the next frame")
	tester.Pump()
	assert.Equal(t, "M", attr(t, tester, ".probe", "data-breakpoint"))
	assert.Equal(t, "M", attr(t, tester, ".deep", "data-shared-breakpoint"))

	source.SetViewportWidth(1300)
	tester.Pump()
	assert.Equal(t, "XL", attr(t, tester, ".probe", "data-breakpoint"))

	source.Publish("not-a-layout")
	tester.Pump()
	assert.Equal(t, "not-a-layout", attr(t, tester, ".probe", "data-breakpoint"), "forwarded verbatim")
}

func TestLayout_EveryBreakpointIsBuilt(t *testing.T) {
	source := pagetest.NewRecordingSource()
	tester := pagetest.NewWidgetTesterWithT(t)
	var builds []string
	require.NoError(t, tester.PumpWidget(Layout{
		Breakpoints: source,
		Children:    []core.Widget{breakpointLog{builds: &builds}},
	}))

	source.Publish("S")
	source.Publish("M")
	tester.Pump()

	assert.Equal(t, []string{"default", "S", "M"}, builds, "one build per notification")
}

func TestLayout_BreakpointFromAnotherGoroutine(t *testing.T) {
	source := pagetest.NewRecordingSource()
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{Breakpoints: source, Children: []core.Widget{probe{}}}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		source.Publish("L")
	}()
	<-done
	tester.Pump()
	assert.Equal(t, "L", attr(t, tester, ".probe", "data-breakpoint"))
}

func TestLayout_DefaultWrapper(t *testing.T) {
	tests := []struct {
		name        string
		layout      Layout
		wantWrapper bool
	}{
		{
			name:        "plain children are wrapped",
			layout:      Layout{Children: []core.Widget{probe{}, markup.Element{Tag: "p"}}},
			wantWrapper: true,
		},
		{
			name:   "grid container child",
			layout: Layout{Children: []core.Widget{grid.Container{Class: "custom"}}},
		},
		{
			name:   "class marker child",
			layout: Layout{Children: []core.Widget{markup.Element{Tag: "section", Class: "o-grid-container custom"}}},
		},
		{
			name:   "class substring still counts",
			layout: Layout{Children: []core.Widget{markup.Element{Tag: "section", Class: "o-grid-container--bleed"}}},
		},
		{
			name:   "default container disabled",
			layout: Layout{DisableDefaultContainer: true, Children: []core.Widget{probe{}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tester := pagetest.NewWidgetTesterWithT(t)
			require.NoError(t, tester.PumpWidget(tt.layout))

			wrappers := query(t, tester, ".article-body > .o-grid-container:not(.custom)")
			if tt.wantWrapper {
				require.Len(t, wrappers, 1)
				assert.Equal(t, grid.DefaultColspan, attr(t, tester, ".article-body [data-o-grid-colspan]", grid.ColspanAttr))
			} else {
				assert.Empty(t, wrappers)
			}
		})
	}
}

func TestLayout_BodyColspan(t *testing.T) {
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{BodyColspan: "12 L10", Children: []core.Widget{probe{}}}))
	assert.Equal(t, "12 L10", attr(t, tester, ".article-body [data-o-grid-colspan]", grid.ColspanAttr))
	assert.Equal(t, grid.DefaultColspan, attr(t, tester, ".article-head [data-o-grid-colspan]", grid.ColspanAttr))
}

func TestLayout_TextChildrenPassThrough(t *testing.T) {
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{Children: []core.Widget{markup.Text("Plain words"), nil}}))
	assert.Contains(t, tester.HTML(), "<div>Plain words</div>")

	tester = pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{DisableDefaultContainer: true, Children: []core.Widget{markup.Text("Bare")}}))
	assert.Contains(t, tester.HTML(), `<div class="article-body o-typography-wrapper" itemprop="articleBody">Bare</div>`)
}

func TestLayout_AdsFlagOffSkipsInit(t *testing.T) {
	service := &pagetest.RecordingAds{}
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{
		Flags:     props.Flags{props.FlagAds: false, props.FlagHeader: true},
		Ads:       &props.AdsConfig{GPTSite: "x.com", GPTZone: ads.String("world")},
		AdService: service,
	}))
	require.NoError(t, tester.Settle(time.Second))

	assert.Equal(t, 0, service.InitCount())
	assert.Empty(t, query(t, tester, ".o-ads"), "no top ad without the flag")
}

func TestLayout_AdsInitConfigAndSlots(t *testing.T) {
	service := &pagetest.RecordingAds{}
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{
		Flags: props.Flags{props.FlagAds: true},
		Ads: &props.AdsConfig{
			GPTSite:      "x.com",
			GPTZone:      ads.String("world"),
			DFPTargeting: ads.String("t1"),
		},
		AdService: service,
		Children: []core.Widget{
			markup.Element{Tag: "div", Attrs: map[string]string{"data-o-ads-name": "mpu"}},
		},
	}))
	require.NoError(t, tester.Settle(time.Second))

	require.Equal(t, 1, service.InitCount())
	cfg := service.Configs()[0]
	assert.Equal(t, 5887, cfg.GPT.Network)
	assert.Equal(t, "x.com", cfg.GPT.Site)
	assert.Equal(t, "world", cfg.GPT.Zone)
	assert.Equal(t, ads.String("t1"), cfg.DFPTargeting)
	assert.Equal(t, []string{"top", "mpu"}, service.Slots(), "slots in document order")
}

func TestLayout_AdsDefaults(t *testing.T) {
	service := &pagetest.RecordingAds{}
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{Flags: props.Flags{props.FlagAds: true}, AdService: service}))
	require.NoError(t, tester.Settle(time.Second))

	require.Equal(t, 1, service.InitCount())
	cfg := service.Configs()[0]
	assert.Equal(t, "test.5887.origami", cfg.GPT.Site)
	assert.Equal(t, ads.FallbackZone, cfg.GPT.Zone)
	assert.Equal(t, ads.Bool(false), cfg.DFPTargeting)
}

func TestLayout_AdsRerunOnConfigChange(t *testing.T) {
	service := &pagetest.RecordingAds{}
	tester := pagetest.NewWidgetTesterWithT(t)
	layout := Layout{Flags: props.Flags{props.FlagAds: true}, AdService: service}
	require.NoError(t, tester.PumpWidget(layout))
	require.NoError(t, tester.Settle(time.Second))

	layout.Ads = &props.AdsConfig{GPTSite: "test.5887.origami", GPTZone: ads.String("markets")}
	require.NoError(t, tester.PumpWidget(layout))
	require.NoError(t, tester.Settle(time.Second))

	layout.Flags = props.Flags{props.FlagAds: false}
	require.NoError(t, tester.PumpWidget(layout))
	require.NoError(t, tester.Settle(time.Second))

	require.Equal(t, 2, service.InitCount())
	assert.Equal(t, "markets", service.Configs()[1].GPT.Zone)
}

func TestLayout_UnmountBeforeInitResolves(t *testing.T) {
	source := pagetest.NewRecordingSource()
	service := &pagetest.RecordingAds{Gate: make(chan struct{})}
	handler := captureErrors(t)
	tester := pagetest.NewWidgetTesterWithT(t)

	require.NoError(t, tester.PumpWidget(Layout{
		Flags:       props.Flags{props.FlagAds: true},
		Breakpoints: source,
		AdService:   service,
	}))
	<-service.Started()

	owner := tester.Session().Owner()
	assert.NotPanics(t, tester.Unmount)
	_, registers, unregisters := source.Counts()
	assert.Equal(t, 1, registers)
	assert.Equal(t, 1, unregisters)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, owner.WaitTasks(ctx))
	owner.FlushDispatches()
	close(service.Gate)

	assert.Empty(t, service.Slots(), "slot initialization never runs")
	assert.Empty(t, handler.errors(), "cancellation is not reported")
}

func TestLayout_UnmountBeforeSlotEffect(t *testing.T) {
	service := &pagetest.RecordingAds{}
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{Flags: props.Flags{props.FlagAds: true}, AdService: service}))

	owner := tester.Session().Owner()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, owner.WaitTasks(ctx))

	// Init finished and its effect is queued; unmount before it runs.
	tester.Unmount()
	owner.FlushDispatches()
	assert.Equal(t, 1, service.InitCount())
	assert.Empty(t, service.Slots())
}

func TestLayout_AdErrorsAreReported(t *testing.T) {
	t.Run("init", func(t *testing.T) {
		handler := captureErrors(t)
		service := &pagetest.RecordingAds{InitErr: stderrors.New("gpt unavailable")}
		tester := pagetest.NewWidgetTesterWithT(t)
		require.NoError(t, tester.PumpWidget(Layout{Flags: props.Flags{props.FlagAds: true}, AdService: service}))
		require.NoError(t, tester.Settle(time.Second))

		errs := handler.errors()
		require.Len(t, errs, 1)
		assert.Equal(t, errors.KindAds, errs[0].Kind)
		assert.Equal(t, "ads.Init", errs[0].Op)
		assert.Contains(t, tester.HTML(), "article-body", "the page still renders")
	})

	t.Run("slot", func(t *testing.T) {
		handler := captureErrors(t)
		service := &pagetest.RecordingAds{SlotErr: stderrors.New("bad slot"), SlotErrName: "top"}
		tester := pagetest.NewWidgetTesterWithT(t)
		require.NoError(t, tester.PumpWidget(Layout{
			Flags:     props.Flags{props.FlagAds: true},
			AdService: service,
			Children:  []core.Widget{markup.Element{Tag: "div", Attrs: map[string]string{"data-o-ads-name": "mpu"}}},
		}))
		require.NoError(t, tester.Settle(time.Second))

		errs := handler.errors()
		require.Len(t, errs, 1)
		assert.Equal(t, errors.KindAds, errs[0].Kind)
		assert.Equal(t, "ads.InitSlots", errs[0].Op)
		assert.Empty(t, service.Slots(), "slots after the failing one are skipped")
	})
}

func TestLayout_RegisterFailureIsContained(t *testing.T) {
	handler := captureErrors(t)
	source := pagetest.NewRecordingSource()
	source.RegisterErr = stderrors.New("no registry")
	tester := pagetest.NewWidgetTesterWithT(t)

	require.NoError(t, tester.PumpWidget(Layout{Breakpoints: source}))
	tester.Unmount()

	subscribes, registers, unregisters := source.Counts()
	assert.Equal(t, 1, subscribes)
	assert.Equal(t, 0, registers)
	assert.Equal(t, 0, unregisters, "nothing to unregister")
	assert.Equal(t, 0, source.Subscribers(), "the subscription is still removed")
	require.Len(t, handler.errors(), 1)
	assert.Equal(t, errors.KindLayout, handler.errors()[0].Kind)
}

func TestLayout_UsesDocumentWhenGiven(t *testing.T) {
	service := &pagetest.RecordingAds{}
	doc := markup.NodeDocument{Root: markup.NewNode("div", "o-ads", map[string]string{"id": "external"})}
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{Flags: props.Flags{props.FlagAds: true}, AdService: service, Document: doc}))
	require.NoError(t, tester.Settle(time.Second))
	assert.Equal(t, []string{"external"}, service.Slots())
}

func TestLayout_SectionsFollowFlags(t *testing.T) {
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{
		Flags: props.Flags{
			props.FlagAnalytics:     true,
			props.FlagHeader:        true,
			props.FlagOnwardJourney: true,
			props.FlagComments:      true,
			props.FlagFooter:        true,
		},
		HeaderColspan: "12 L11",
		ID:            "a1",
	}))

	assert.Len(t, query(t, tester, ".o-tracking"), 1)
	assert.Len(t, query(t, tester, "header.o-header"), 1)
	assert.Equal(t, "12 L11", attr(t, tester, "header [data-o-grid-colspan]", grid.ColspanAttr))
	assert.Len(t, query(t, tester, "main[role=main] > article.article"), 1)
	assert.Len(t, query(t, tester, ".o-onward-journey"), 1)
	assert.Equal(t, "a1", attr(t, tester, ".o-comments", "data-o-comments-articleid"))
	assert.Len(t, query(t, tester, "footer.o-footer"), 1)

	tester = pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{}))
	for _, selector := range []string{".o-tracking", ".o-ads", "header", ".o-onward-journey", ".o-comments", ".o-footer"} {
		assert.Empty(t, query(t, tester, selector), selector)
	}
	assert.Len(t, query(t, tester, "footer.o-typography-footer"), 1, "copyright footer is always present")
}

func TestLayout_CustomArticleHead(t *testing.T) {
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{
		Props:             props.Props{"headline": "Default headline"},
		CustomArticleHead: markup.Element{Tag: "h1", Class: "custom-head", Children: []core.Widget{markup.Text("Custom")}},
	}))
	assert.Len(t, query(t, tester, ".article-head .custom-head"), 1)
	assert.False(t, tester.Find(pagetest.ByText("Default headline")).Exists())

	tester = pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{Props: props.Props{"headline": "Default headline"}}))
	assert.True(t, tester.Find(pagetest.ByText("Default headline")).Exists())
}

func TestLayout_CopyrightYear(t *testing.T) {
	tester := pagetest.NewWidgetTesterWithT(t)
	tester.Clock().Set(time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, tester.PumpWidget(Layout{Now: tester.Clock().Now}))
	assert.Contains(t, tester.HTML(), "Limited 2021.")
}

func TestLayout_SharedValue(t *testing.T) {
	var seen props.Shared
	reader := sharedSpy{onBuild: func(s props.Shared) { seen = s }}
	head := markup.Text("head")
	tester := pagetest.NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpWidget(Layout{
		Flags:             props.Flags{props.FlagComments: true},
		ID:                "a1",
		Props:             props.Props{"topic": "rates"},
		CustomArticleHead: head,
		Children:          []core.Widget{reader},
	}))

	assert.True(t, seen.Flags.Enabled(props.FlagComments))
	assert.Equal(t, props.DefaultAdsConfig(), seen.Ads)
	assert.True(t, seen.DefaultContainer)
	assert.Equal(t, head, seen.CustomArticleHead)
	assert.Equal(t, "default", seen.Breakpoint)
	assert.Equal(t, props.Props{"id": "a1", "topic": "rates"}, seen.Props)
}

type sharedSpy struct {
	core.StatelessBase
	onBuild func(props.Shared)
}

func (s sharedSpy) Build(ctx core.BuildContext) core.Widget {
	s.onBuild(props.SharedOf(ctx))
	return nil
}

func TestHasOwnContainer(t *testing.T) {
	assert.True(t, HasOwnContainer(grid.Container{}))
	assert.True(t, HasOwnContainer(&grid.Container{}))
	assert.True(t, HasOwnContainer(markup.Element{Class: "x o-grid-container"}))
	assert.False(t, HasOwnContainer(markup.Element{Class: "o-grid-row"}))
	assert.False(t, HasOwnContainer(markup.Text("o-grid-container")))
	assert.False(t, HasOwnContainer(nil))
}
