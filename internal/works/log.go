package works

import (
	"context"
	"fmt"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/rs/zerolog"
)

// Log returns a factory of works writing param "message" to logger.
// param "level" defaults to info.
func Log(logger zerolog.Logger) timetrigger.WorkFactory {
	return func(param map[string]string) (timetrigger.WorkFn, error) {
		level := zerolog.InfoLevel
		if raw := param["level"]; raw != "" {
			var err error
			level, err = zerolog.ParseLevel(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: level: %w", timetrigger.ErrInvalidArg, err)
			}
		}
		message := param["message"]

		return func(ctx context.Context, scheduled time.Time) error {
			l := logger
			if info, err := timetrigger.GetTaskInfo(ctx); err == nil {
				l = taskLogger(l, info)
			}
			l.WithLevel(level).
				Time("scheduled_at", scheduled).
				Msg(message)
			return nil
		}, nil
	}
}
