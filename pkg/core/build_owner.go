package core

import (
	"context"
	"slices"
	"sync"
)

// BuildOwner tracks dirty elements, callbacks dispatched to the UI thread,
// and background tasks still in flight.
type BuildOwner struct {
	dirty      []Element
	dirtySet   map[Element]bool
	dispatches []func()
	tasks      int
	idle       []chan struct{}
	mu         sync.Mutex

	// OnNeedsFrame is called when an element is scheduled for rebuild or a
	// callback is dispatched, signalling the host that a frame should run.
	// It may be called from any goroutine.
	OnNeedsFrame func()
}

// NewBuildOwner creates a new BuildOwner.
func NewBuildOwner() *BuildOwner {
	return &BuildOwner{}
}

// ScheduleBuild marks an element as needing rebuild.
func (b *BuildOwner) ScheduleBuild(element Element) {
	added := func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.dirtySet[element] {
			return false
		}
		if b.dirtySet == nil {
			b.dirtySet = make(map[Element]bool)
		}
		b.dirtySet[element] = true
		b.dirty = append(b.dirty, element)
		return true
	}()

	if added && b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// Dispatch queues fn to run on the UI thread during the next FlushDispatches.
// Safe for concurrent use.
func (b *BuildOwner) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	b.dispatches = append(b.dispatches, fn)
	b.mu.Unlock()
	if b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// FlushDispatches runs every queued callback, including callbacks queued
// while flushing.
func (b *BuildOwner) FlushDispatches() {
	for {
		b.mu.Lock()
		pending := b.dispatches
		b.dispatches = nil
		b.mu.Unlock()
		if len(pending) == 0 {
			return
		}
		for _, fn := range pending {
			fn()
		}
	}
}

// RunDispatch runs the oldest queued callback. It returns false if the
// queue was empty.
func (b *BuildOwner) RunDispatch() bool {
	b.mu.Lock()
	if len(b.dispatches) == 0 {
		b.mu.Unlock()
		return false
	}
	fn := b.dispatches[0]
	b.dispatches[0] = nil
	b.dispatches = b.dispatches[1:]
	b.mu.Unlock()
	fn()
	return true
}

// FlushFrame runs queued callbacks one at a time, rebuilding dirty elements
// after each, so every state change dispatched to the UI thread is built
// before the next one is applied.
func (b *BuildOwner) FlushFrame() {
	b.FlushBuild()
	for b.RunDispatch() {
		b.FlushBuild()
	}
}

// NeedsWork returns true if there are dirty elements or queued dispatches.
func (b *BuildOwner) NeedsWork() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.dirty) > 0 || len(b.dispatches) > 0
}

// FlushBuild rebuilds all dirty elements in depth order.
func (b *BuildOwner) FlushBuild() {
	for {
		b.mu.Lock()
		if len(b.dirty) == 0 {
			b.mu.Unlock()
			return
		}

		slices.SortFunc(b.dirty, func(a, b Element) int {
			return a.Depth() - b.Depth()
		})

		dirty := b.dirty
		b.dirty = nil
		clear(b.dirtySet)
		b.mu.Unlock()

		for _, element := range dirty {
			if mountable, ok := element.(interface{ isMounted() bool }); ok && !mountable.isMounted() {
				continue
			}
			element.RebuildIfNeeded()
		}
	}
}

// InFlight returns the number of background tasks that have not finished.
func (b *BuildOwner) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks
}

// WaitTasks blocks until no background task is in flight or ctx is done.
// Effects of finished tasks are already queued when WaitTasks returns and
// run on the next FlushDispatches.
func (b *BuildOwner) WaitTasks(ctx context.Context) error {
	b.mu.Lock()
	if b.tasks == 0 {
		b.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	b.idle = append(b.idle, ch)
	b.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *BuildOwner) beginTask() {
	b.mu.Lock()
	b.tasks++
	b.mu.Unlock()
}

func (b *BuildOwner) endTask() {
	b.mu.Lock()
	b.tasks--
	var idle []chan struct{}
	if b.tasks == 0 {
		idle = b.idle
		b.idle = nil
	}
	b.mu.Unlock()
	for _, ch := range idle {
		close(ch)
	}
}
