package works

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/ngicks/type-param-common/set"
	"github.com/rs/zerolog"
)

var ErrCommandNotAllowed = errors.New("command not allowed")

// Exec builds works that run an external command.
// param "command" names the executable, "args" is split on white spaces, "dir" sets the working directory.
//
// If an allow list is set only commands in it are built.
// Commands in the deny list are never built.
type Exec struct {
	mu     sync.Mutex
	allow  *set.Set[string]
	deny   *set.Set[string]
	logger zerolog.Logger
}

type ExecOption func(e *Exec) *Exec

func ExecAllowList(commands []string) ExecOption {
	return func(e *Exec) *Exec {
		for _, c := range commands {
			e.allow.Add(c)
		}
		return e
	}
}

func ExecDenyList(commands []string) ExecOption {
	return func(e *Exec) *Exec {
		for _, c := range commands {
			e.deny.Add(c)
		}
		return e
	}
}

func NewExec(logger zerolog.Logger, options ...ExecOption) *Exec {
	e := &Exec{
		allow:  set.New[string](),
		deny:   set.New[string](),
		logger: logger,
	}
	for _, opt := range options {
		e = opt(e)
	}
	return e
}

func (e *Exec) isAllowed(command string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deny.Has(command) {
		return false
	}
	if e.allow.Len() != 0 {
		return e.allow.Has(command)
	}
	return true
}

func (e *Exec) Build(param map[string]string) (timetrigger.WorkFn, error) {
	command := strings.TrimSpace(param["command"])
	if command == "" {
		return nil, fmt.Errorf("%w: param command is required", timetrigger.ErrInvalidArg)
	}
	if !e.isAllowed(command) {
		return nil, fmt.Errorf("%w: %s", ErrCommandNotAllowed, command)
	}
	args := strings.Fields(param["args"])
	dir := param["dir"]

	return func(ctx context.Context, scheduled time.Time) error {
		cmd := exec.CommandContext(ctx, command, args...)
		cmd.Dir = dir
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()

		logger := e.logger
		if info, infoErr := timetrigger.GetTaskInfo(ctx); infoErr == nil {
			logger = taskLogger(logger, info)
		}
		logger.Debug().
			Str("command", command).
			Strs("args", args).
			Str("stdout", stdout.String()).
			Str("stderr", stderr.String()).
			Msg("command exited")

		if err != nil {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("exec %s: %w: %s", command, err, msg)
			}
			return fmt.Errorf("exec %s: %w", command, err)
		}
		return nil
	}, nil
}
