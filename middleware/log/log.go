package log

import (
	"context"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/ngicks/timetrigger/common"
	"github.com/rs/zerolog"
)

// LogMiddleware logs every firing: "before_work" at debug, "after_work" at info or error.
type LogMiddleware struct {
	logger     zerolog.Logger
	timeFormat string
	getNow     common.GetNow
	fields     map[string]any
}

type Option = func(mw *LogMiddleware) *LogMiddleware

// SetTimeFormat sets the layout used for scheduled_at. Default is time.RFC3339Nano.
func SetTimeFormat(timeFormat string) Option {
	return func(mw *LogMiddleware) *LogMiddleware {
		mw.timeFormat = timeFormat
		return mw
	}
}

// LogFields adds fixed fields to every line.
func LogFields(fields map[string]any) Option {
	return func(mw *LogMiddleware) *LogMiddleware {
		for k, v := range fields {
			mw.fields[k] = v
		}
		return mw
	}
}

func WithGetNow(getNow common.GetNow) Option {
	return func(mw *LogMiddleware) *LogMiddleware {
		mw.getNow = getNow
		return mw
	}
}

func New(logger zerolog.Logger, options ...Option) *LogMiddleware {
	mw := &LogMiddleware{
		logger:     logger,
		timeFormat: time.RFC3339Nano,
		getNow:     common.GetNowImpl{},
		fields:     map[string]any{},
	}
	for _, opt := range options {
		mw = opt(mw)
	}
	return mw
}

func (mw *LogMiddleware) Middleware(next timetrigger.WorkFn) timetrigger.WorkFn {
	return func(ctx context.Context, scheduled time.Time) error {
		logger := mw.taskLogger(ctx, scheduled)

		firedAt := mw.getNow.GetNow()
		logger.Debug().
			Str("timing", "before_work").
			Dur("latency", firedAt.Sub(scheduled)).
			Msg("firing task")

		err := next(ctx, scheduled)

		elapsed := mw.getNow.GetNow().Sub(firedAt)
		if err != nil {
			logger.Error().
				Str("timing", "after_work").
				Dur("elapsed", elapsed).
				Err(err).
				Msg("task failed")
		} else {
			logger.Info().
				Str("timing", "after_work").
				Dur("elapsed", elapsed).
				Msg("task completed")
		}
		return err
	}
}

func (mw *LogMiddleware) taskLogger(ctx context.Context, scheduled time.Time) zerolog.Logger {
	logCtx := mw.logger.With().
		Str("scheduled_at", scheduled.Format(mw.timeFormat))

	if info, err := timetrigger.GetTaskInfo(ctx); err == nil {
		logCtx = logCtx.Str("task_id", info.Id)
		if info.Label != "" {
			logCtx = logCtx.Str("label", info.Label)
		}
	}
	if len(mw.fields) > 0 {
		logCtx = logCtx.Fields(mw.fields)
	}
	return logCtx.Logger()
}
