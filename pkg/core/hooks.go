package core

// UseSubscription runs subscribe and releases the subscription when the
// state is disposed. The returned release function may be called earlier;
// the unsubscribe callback runs at most once either way.
func UseSubscription(s stateBase, subscribe func() (unsubscribe func())) (release func()) {
	base := s.state()
	unsubscribe := subscribe()
	if unsubscribe == nil {
		return func() {}
	}
	var done bool
	var unregister func()
	once := func() {
		if done {
			return
		}
		done = true
		unsubscribe()
	}
	unregister = base.OnDispose(once)
	return func() {
		unregister()
		once()
	}
}

// Managed holds a value and triggers rebuilds when it changes.
//
// Managed is NOT thread-safe. It must only be accessed from the UI thread.
// To update from a background goroutine, use StateBase.Dispatch:
//
//	go func() {
//	    result := fetch()
//	    s.Dispatch(func() {
//	        s.data.Set(result)
//	    })
//	}()
type Managed[T any] struct {
	base  *StateBase
	value T
}

// NewManaged creates a new managed state value.
// Changes to this value will automatically trigger a rebuild.
func NewManaged[T any](s stateBase, initial T) *Managed[T] {
	return &Managed[T]{
		base:  s.state(),
		value: initial,
	}
}

// Value returns the current value.
func (m *Managed[T]) Value() T {
	return m.value
}

// Set updates the value and triggers a rebuild.
func (m *Managed[T]) Set(value T) {
	m.value = value
	m.base.SetState(nil)
}
