package core

import (
	"context"
	"sync"
)

// Task is background work bound to the lifetime of a State.
//
// The work function runs on its own goroutine with a context that is
// cancelled by [Task.Cancel] or when the state is disposed. If work returns a
// non-nil effect, the effect is dispatched to the UI thread and runs only if
// the context is still live at that point.
type Task struct {
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	finishOnce sync.Once
	unregister func()
	once       sync.Once

	mu       sync.Mutex
	returned bool
}

// StartTask starts work for s. The build owner, if any, counts the task as
// in flight until the work returns; its effect is then a queued dispatch.
func StartTask(s stateBase, work func(ctx context.Context) (effect func())) *Task {
	base := s.state()
	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	task.unregister = base.OnDispose(task.stop)

	owner := base.Owner()
	if owner != nil {
		owner.beginTask()
	}

	go func() {
		effect := work(ctx)

		task.mu.Lock()
		task.returned = true
		task.mu.Unlock()

		if effect == nil || ctx.Err() != nil {
			task.finish()
			if owner != nil {
				owner.endTask()
			}
			return
		}
		apply := func() {
			defer task.finish()
			if ctx.Err() != nil {
				return
			}
			effect()
		}
		if owner == nil {
			apply()
			return
		}
		owner.Dispatch(apply)
		owner.endTask()
	}()
	return task
}

// Context returns the task's context.
func (t *Task) Context() context.Context {
	return t.ctx
}

// Cancel cancels the task's context. A pending effect will not run.
// Cancel is safe to call more than once.
func (t *Task) Cancel() {
	t.once.Do(func() {
		t.stop()
		t.unregister()
	})
}

// stop cancels the context. Once the work has returned, the only thing left
// is a dispatched effect that will be skipped, and it may never be flushed,
// so the task is finished here.
func (t *Task) stop() {
	t.cancel()
	t.mu.Lock()
	returned := t.returned
	t.mu.Unlock()
	if returned {
		t.finish()
	}
}

func (t *Task) finish() {
	t.finishOnce.Do(func() { close(t.done) })
}

// Done is closed once the work has returned and its effect has run, been
// skipped, or been abandoned by cancellation.
func (t *Task) Done() <-chan struct{} {
	return t.done
}
