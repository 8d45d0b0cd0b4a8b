package observe

import (
	"context"
	"time"

	"github.com/ngicks/timetrigger"
)

// ObserveMiddleware calls before just before a work runs and after once it returns.
// Both receive the TaskInfo of the firing; it is zero if ctx carries none.
type ObserveMiddleware struct {
	before func(info timetrigger.TaskInfo)
	after  func(info timetrigger.TaskInfo, err error)
}

func New(before func(info timetrigger.TaskInfo), after func(info timetrigger.TaskInfo, err error)) *ObserveMiddleware {
	if before == nil {
		before = func(timetrigger.TaskInfo) {}
	}
	if after == nil {
		after = func(timetrigger.TaskInfo, error) {}
	}

	return &ObserveMiddleware{
		before: before,
		after:  after,
	}
}

func (mw *ObserveMiddleware) Middleware(next timetrigger.WorkFn) timetrigger.WorkFn {
	return func(ctx context.Context, scheduled time.Time) (err error) {
		info, _ := timetrigger.GetTaskInfo(ctx)
		mw.before(info)
		err = next(ctx, scheduled)
		mw.after(info, err)
		return
	}
}
