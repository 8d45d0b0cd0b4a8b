// Package works holds the work kinds a job file can refer to.
package works

import (
	"github.com/ngicks/timetrigger"
	"github.com/rs/zerolog"
)

const (
	KindExec = "exec"
	KindWol  = "wol"
	KindLog  = "log"
)

// Register stores every built-in kind into registry.
func Register(registry *timetrigger.WorkRegistry, logger zerolog.Logger, options ...ExecOption) {
	registry.Store(KindExec, NewExec(logger, options...).Build)
	registry.Store(KindWol, WakeOnLAN)
	registry.Store(KindLog, Log(logger))
}

func taskLogger(logger zerolog.Logger, info timetrigger.TaskInfo) zerolog.Logger {
	ctx := logger.With().Str("task_id", info.Id)
	if info.Label != "" {
		ctx = ctx.Str("label", info.Label)
	}
	return ctx.Logger()
}
