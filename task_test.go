package timetrigger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTask(t *testing.T) {
	scheduled := time.Date(2000, time.April, 21, 12, 9, 54, 1, time.UTC)

	t.Run("fire calls work only once", func(t *testing.T) {
		var count int32
		task := newTask("id", "label", scheduled, Plain(func() { atomic.AddInt32(&count, 1) }))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				task.fire(context.Background(), task.work, fixedNow(scheduled))
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), atomic.LoadInt32(&count))
		require.Equal(t, Completed, task.State())
		require.True(t, task.IsDone())
		require.False(t, task.Cancel(), "done task must not be cancellable")
	})

	t.Run("cancel", func(t *testing.T) {
		var count int32
		task := newTask("id", "", scheduled, Plain(func() { atomic.AddInt32(&count, 1) }))

		require.False(t, task.IsCancelled())
		require.True(t, task.Cancel())
		for i := 0; i < 10; i++ {
			require.False(t, task.fire(context.Background(), task.work, fixedNow(scheduled)))
			require.True(t, task.IsCancelled())
			require.False(t, task.Cancel())
		}
		require.Equal(t, int32(0), atomic.LoadInt32(&count))

		select {
		case <-task.cancelCh:
		default:
			t.Fatalf("cancelCh must be closed")
		}

		outcome := task.Outcome()
		require.Equal(t, Cancelled, outcome.State)
		require.ErrorIs(t, outcome.Err, ErrCancelled)
	})

	t.Run("cancel uses the task clock", func(t *testing.T) {
		task := newTask("id", "", scheduled, Plain(func() {}))
		task.now = fixedNow(scheduled.Add(time.Minute))

		require.True(t, task.Cancel())
		outcome := task.Outcome()
		require.Equal(t, Cancelled, outcome.State)
		require.Equal(t, scheduled.Add(time.Minute), outcome.DoneAt)
		require.ErrorIs(t, outcome.Err, ErrCancelled)
	})

	t.Run("panic with an error value unwraps to it", func(t *testing.T) {
		sampleErr := errors.New("sample")
		task := newTask("id", "", scheduled, func(context.Context, time.Time) error { panic(sampleErr) })
		task.fire(context.Background(), task.work, fixedNow(scheduled))

		outcome := task.Outcome()
		require.Equal(t, Failed, outcome.State)
		require.True(t, IsPanic(outcome.Err))
		require.ErrorIs(t, outcome.Err, sampleErr)
	})

	t.Run("error and panic are captured", func(t *testing.T) {
		sampleErr := errors.New("sample")
		erroring := newTask("e", "erroring", scheduled, func(context.Context, time.Time) error { return sampleErr })
		erroring.fire(context.Background(), erroring.work, fixedNow(scheduled.Add(time.Second)))

		outcome := erroring.Outcome()
		assert.Equal(t, Failed, outcome.State)
		assert.ErrorIs(t, outcome.Err, sampleErr)
		var execErr *TaskExecutionError
		require.ErrorAs(t, outcome.Err, &execErr)
		assert.Equal(t, "e", execErr.Id)
		assert.Equal(t, "erroring", execErr.Label)
		assert.Equal(t, scheduled, execErr.ScheduledAt)
		assert.Equal(t, time.Second, outcome.Latency())

		panicking := newTask("p", "", scheduled, func(context.Context, time.Time) error { panic("boom") })
		require.NotPanics(t, func() {
			panicking.fire(context.Background(), panicking.work, fixedNow(scheduled))
		})
		outcome = panicking.Outcome()
		assert.Equal(t, Failed, outcome.State)
		var panicErr *PanicError
		require.ErrorAs(t, outcome.Err, &panicErr)
		assert.Equal(t, "boom", panicErr.Value)
		assert.NotEmpty(t, panicErr.Stack)
	})

	t.Run("scheduled time is passed to work", func(t *testing.T) {
		var received time.Time
		task := newTask("id", "", scheduled, func(_ context.Context, s time.Time) error {
			received = s
			return nil
		})
		ctrl := NewTaskController(task)
		task.fire(context.Background(), task.work, fixedNow(scheduled))

		assert.Equal(t, scheduled, received)
		assert.Equal(t, scheduled, ctrl.ScheduledTime())
		assert.Equal(t, "id", ctrl.Id())
		assert.Equal(t, Completed, ctrl.Outcome().State)
	})
}
