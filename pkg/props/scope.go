package props

import (
	"reflect"

	"github.com/go-drift/pagelayout/pkg/core"
)

// Shared is the value a layout publishes to its whole subtree. It is
// rebuilt on every layout build; consumers must not rely on its identity.
type Shared struct {
	Flags             Flags
	Ads               AdsConfig
	DefaultContainer  bool
	CustomArticleHead core.Widget
	Breakpoint        string
	Props             Props
}

// Bundle returns the explicit bundle matching s.
func (s Shared) Bundle() Bundle {
	return Bundle{Props: s.Props, Flags: s.Flags, Breakpoint: s.Breakpoint}
}

// Scope publishes a Shared value to its descendants.
type Scope struct {
	core.InheritedBase
	Value Shared
	Child core.Widget
}

func (s Scope) ChildWidget() core.Widget { return s.Child }

// UpdateShouldNotify always reports true; a new Shared value is built
// every time the layout builds.
func (s Scope) UpdateShouldNotify(oldWidget core.InheritedWidget) bool {
	return true
}

var scopeType = reflect.TypeOf(Scope{})

// SharedMaybeOf returns the nearest Shared value and whether one was found.
// The caller is rebuilt when it changes.
func SharedMaybeOf(ctx core.BuildContext) (Shared, bool) {
	scope, ok := ctx.DependOnInherited(scopeType).(Scope)
	if !ok {
		return Shared{}, false
	}
	return scope.Value, true
}

// SharedOf returns the nearest Shared value, or the zero value outside a Scope.
func SharedOf(ctx core.BuildContext) Shared {
	shared, _ := SharedMaybeOf(ctx)
	return shared
}
