package core

// StatelessBase provides default CreateElement and Key implementations for
// stateless widgets. Embed it in your widget struct to satisfy the Widget
// interface without boilerplate:
//
//	type Byline struct {
//	    core.StatelessBase
//	    Author string
//	}
//
//	func (b Byline) Build(ctx core.BuildContext) core.Widget {
//	    return markup.Text("By " + b.Author)
//	}
type StatelessBase struct{}

// CreateElement returns a new StatelessElement.
func (StatelessBase) CreateElement() Element { return NewStatelessElement() }

// Key returns nil (no key).
func (StatelessBase) Key() any { return nil }

// StatefulBase provides default CreateElement and Key implementations for
// stateful widgets:
//
//	type Layout struct {
//	    core.StatefulBase
//	}
//
//	func (Layout) CreateState() core.State { return &layoutState{} }
type StatefulBase struct{}

// CreateElement returns a new StatefulElement.
func (StatefulBase) CreateElement() Element { return NewStatefulElement() }

// Key returns nil (no key).
func (StatefulBase) Key() any { return nil }

// InheritedBase provides default CreateElement and Key implementations for
// inherited widgets. Embed it in your widget struct along with a Child field
// and implement [InheritedWidget.UpdateShouldNotify] and
// [InheritedWidget.ChildWidget].
type InheritedBase struct{}

// CreateElement returns a new InheritedElement.
func (InheritedBase) CreateElement() Element { return NewInheritedElement() }

// Key returns nil (no key).
func (InheritedBase) Key() any { return nil }

// MarkupBase provides default CreateElement and Key implementations for
// markup widgets.
type MarkupBase struct{}

// CreateElement returns a new MarkupElement.
func (MarkupBase) CreateElement() Element { return NewMarkupElement() }

// Key returns nil (no key).
func (MarkupBase) Key() any { return nil }
