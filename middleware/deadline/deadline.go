package deadline

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/ngicks/timetrigger/common"
)

// DeadlineExceededError is returned in place of running a work
// that was fired later than the allowed lateness.
type DeadlineExceededError struct {
	scheduled time.Time
	executed  time.Time
	lateness  time.Duration
}

func (e DeadlineExceededError) Error() string {
	return fmt.Sprintf(
		"deadline exceeded: scheduled at=%s, but executed at=%s, allowed lateness=%s",
		e.scheduled.Format(time.RFC3339Nano),
		e.executed.Format(time.RFC3339Nano),
		e.lateness,
	)
}

func (e DeadlineExceededError) ScheduledTime() time.Time {
	return e.scheduled
}

func (e DeadlineExceededError) ExecutedTime() time.Time {
	return e.executed
}

type DeadlineMiddleware struct {
	lateness   time.Duration
	getNow     common.GetNow
	shouldSkip func(info timetrigger.TaskInfo) bool
}

// New returns a middleware that refuses to run a work
// whose firing time is more than lateness past its scheduled time.
// Tasks for which shouldSkip returns true are always run. shouldSkip may be nil.
func New(lateness time.Duration, shouldSkip func(info timetrigger.TaskInfo) bool) *DeadlineMiddleware {
	if shouldSkip == nil {
		shouldSkip = func(timetrigger.TaskInfo) bool { return false }
	}
	return &DeadlineMiddleware{
		lateness:   lateness,
		getNow:     common.GetNowImpl{},
		shouldSkip: shouldSkip,
	}
}

// WithGetNow replaces the clock. Mainly for testing.
func (mw *DeadlineMiddleware) WithGetNow(getNow common.GetNow) *DeadlineMiddleware {
	mw.getNow = getNow
	return mw
}

func (mw *DeadlineMiddleware) Middleware(next timetrigger.WorkFn) timetrigger.WorkFn {
	return func(ctx context.Context, scheduled time.Time) error {
		info, _ := timetrigger.GetTaskInfo(ctx)
		if mw.shouldSkip(info) {
			return next(ctx, scheduled)
		}
		now := mw.getNow.GetNow()
		if now.Sub(scheduled) > mw.lateness {
			return DeadlineExceededError{scheduled: scheduled, executed: now, lateness: mw.lateness}
		}
		return next(ctx, scheduled)
	}
}
