package timetrigger

import (
	"errors"
	"time"
)

// Outcome is the terminal accounting of a single task.
//
// FiredAt is zero for a task that never fired.
// Err is a *TaskExecutionError for Failed, the cancellation reason for Cancelled, and nil otherwise.
type Outcome struct {
	Id          string
	Label       string
	State       TaskState
	ScheduledAt time.Time
	FiredAt     time.Time
	DoneAt      time.Time
	Err         error
}

// Latency is how late the task fired relative to its scheduled time.
func (o Outcome) Latency() time.Duration {
	if o.FiredAt.IsZero() {
		return 0
	}
	return o.FiredAt.Sub(o.ScheduledAt)
}

// Report is the result of a Start. Outcomes are in registration order.
type Report struct {
	Outcomes []Outcome
}

func newReport(tasks []*Task) Report {
	outcomes := make([]Outcome, len(tasks))
	for i, t := range tasks {
		outcomes[i] = t.Outcome()
	}
	return Report{Outcomes: outcomes}
}

func (r Report) Len() int {
	return len(r.Outcomes)
}

func (r Report) Completed() []Outcome {
	return r.filter(Completed)
}

func (r Report) Failed() []Outcome {
	return r.filter(Failed)
}

func (r Report) Cancelled() []Outcome {
	return r.filter(Cancelled)
}

func (r Report) filter(state TaskState) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.State == state {
			out = append(out, o)
		}
	}
	return out
}

// Err joins the errors of every failed task. It returns nil if no task failed.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}
