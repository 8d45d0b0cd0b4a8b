package timetrigger

import (
	"time"

	"github.com/google/uuid"
	"github.com/ngicks/timetrigger/common"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how long a pending task sleeps between clock checks.
const DefaultPollInterval = time.Second

type Option func(s *Scheduler) *Scheduler

// WithPollInterval sets the polling interval.
// Non-positive values leave DefaultPollInterval in place.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) *Scheduler {
		if d > 0 {
			s.pollInterval = d
		}
		return s
	}
}

// WithGetNow replaces the clock. nil is ignored.
func WithGetNow(getNow common.GetNow) Option {
	return func(s *Scheduler) *Scheduler {
		if getNow != nil {
			s.getNow = getNow
		}
		return s
	}
}

// WithTimerFactory replaces the poll timer constructor. nil is ignored.
func WithTimerFactory(factory common.TimerFactory) Option {
	return func(s *Scheduler) *Scheduler {
		if factory != nil {
			s.newTimer = factory
		}
		return s
	}
}

// WithMaxConcurrent bounds how many works may execute at once.
// Zero or negative means unbounded.
// Waiting for the scheduled time is never bounded.
func WithMaxConcurrent(n int) Option {
	return func(s *Scheduler) *Scheduler {
		if n > 0 {
			s.maxConcurrent = int64(n)
		} else {
			s.maxConcurrent = 0
		}
		return s
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) *Scheduler {
		s.logger = logger
		return s
	}
}

type taskOption struct {
	id    string
	label string
}

type TaskOption func(o *taskOption)

// WithTaskId overrides the generated task id.
func WithTaskId(id string) TaskOption {
	return func(o *taskOption) {
		if id != "" {
			o.id = id
		}
	}
}

// WithLabel attaches a human readable label, reported in Outcome and errors.
func WithLabel(label string) TaskOption {
	return func(o *taskOption) {
		o.label = label
	}
}

func buildTaskOption(options []TaskOption) taskOption {
	o := taskOption{}
	for _, opt := range options {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	return o
}
