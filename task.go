package timetrigger

import (
	"context"
	"runtime/debug"
	"sync"
	"time"
)

// WorkFn is the unit of work a Task fires.
// ctx carries TaskInfo and is cancelled when the context passed to Start is.
type WorkFn = func(ctx context.Context, scheduled time.Time) error

// Plain adapts a zero-argument callable into WorkFn.
func Plain(fn func()) WorkFn {
	return func(context.Context, time.Time) error {
		fn()
		return nil
	}
}

// Task is a set of id, scheduled time, work and state.
//
// work is called at most once, only after the scheduled time has been reached.
// A Task can be cancelled only while it is still pending.
type Task struct {
	id            string
	label         string
	scheduledTime time.Time
	work          WorkFn

	now      func() time.Time
	state    taskState
	cancelCh chan struct{}

	// mu guards the terminal transitions and the fields below,
	// so Outcome never sees a terminal state without its times and error.
	mu      sync.Mutex
	firedAt time.Time
	doneAt  time.Time
	err     error
}

func newTask(id, label string, scheduledTime time.Time, work WorkFn) *Task {
	return &Task{
		id:            id,
		label:         label,
		scheduledTime: scheduledTime,
		work:          work,
		now:           time.Now,
		cancelCh:      make(chan struct{}),
	}
}

func (t *Task) info() TaskInfo {
	return TaskInfo{Id: t.id, Label: t.label, ScheduledAt: t.scheduledTime}
}

// fire invokes work if, and only if, t is still pending.
// It reports whether work was invoked.
func (t *Task) fire(ctx context.Context, work WorkFn, now func() time.Time) (fired bool) {
	if !t.state.transition(Pending, Firing) {
		return false
	}

	t.mu.Lock()
	t.firedAt = now()
	t.mu.Unlock()

	err := callWork(ctx, work, t.scheduledTime)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.doneAt = now()
	if err != nil {
		t.err = &TaskExecutionError{
			Id:          t.id,
			Label:       t.label,
			ScheduledAt: t.scheduledTime,
			Err:         err,
		}
		t.state.transition(Firing, Failed)
	} else {
		t.state.transition(Firing, Completed)
	}
	return true
}

func callWork(ctx context.Context, work WorkFn, scheduled time.Time) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return work(ctx, scheduled)
}

func (t *Task) Id() string {
	return t.id
}

func (t *Task) Label() string {
	return t.label
}

func (t *Task) ScheduledTime() time.Time {
	return t.scheduledTime
}

func (t *Task) State() TaskState {
	return t.state.load()
}

func (t *Task) Cancel() (cancelled bool) {
	return t.CancelWithReason(nil)
}

// CancelWithReason cancels t if it is still pending.
// A nil reason is reported as ErrCancelled.
func (t *Task) CancelWithReason(reason error) (cancelled bool) {
	if reason == nil {
		reason = ErrCancelled
	}

	t.mu.Lock()
	if !t.state.transition(Pending, Cancelled) {
		t.mu.Unlock()
		return false
	}
	t.err = reason
	t.doneAt = t.now()
	t.mu.Unlock()

	close(t.cancelCh)
	return true
}

func (t *Task) IsCancelled() bool {
	return t.state.load() == Cancelled
}

func (t *Task) IsDone() bool {
	s := t.state.load()
	return s == Completed || s == Failed
}

// Outcome snapshots t.
func (t *Task) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	state := t.state.load()
	return Outcome{
		Id:          t.id,
		Label:       t.label,
		State:       state,
		ScheduledAt: t.scheduledTime,
		FiredAt:     t.firedAt,
		DoneAt:      t.doneAt,
		Err:         t.err,
	}
}

// TaskController is a small wrapper around Task.
// It hides fire from callers of Schedule.
type TaskController struct {
	t *Task
}

func NewTaskController(t *Task) *TaskController {
	return &TaskController{t: t}
}

func (c *TaskController) Id() string {
	return c.t.Id()
}

func (c *TaskController) Label() string {
	return c.t.Label()
}

func (c *TaskController) ScheduledTime() time.Time {
	return c.t.ScheduledTime()
}

func (c *TaskController) State() TaskState {
	return c.t.State()
}

func (c *TaskController) Cancel() (cancelled bool) {
	return c.t.Cancel()
}

func (c *TaskController) CancelWithReason(err error) (cancelled bool) {
	return c.t.CancelWithReason(err)
}

func (c *TaskController) IsCancelled() bool {
	return c.t.IsCancelled()
}

func (c *TaskController) IsDone() bool {
	return c.t.IsDone()
}

func (c *TaskController) Outcome() Outcome {
	return c.t.Outcome()
}
