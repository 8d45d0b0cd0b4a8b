package timetrigger

import "sync/atomic"

type TaskState uint32

const (
	Pending TaskState = iota
	Firing
	Completed
	Failed
	Cancelled
)

var stateNames = [...]string{
	Pending:   "pending",
	Firing:    "firing",
	Completed: "completed",
	Failed:    "failed",
	Cancelled: "cancelled",
}

func (s TaskState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// IsTerminal reports whether s is one of Completed, Failed or Cancelled.
func (s TaskState) IsTerminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// taskState only moves through transition, a single compare-and-swap.
type taskState struct {
	v uint32
}

func (s *taskState) load() TaskState {
	return TaskState(atomic.LoadUint32(&s.v))
}

func (s *taskState) transition(from, to TaskState) (swapped bool) {
	return atomic.CompareAndSwapUint32(&s.v, uint32(from), uint32(to))
}

// startedState is a one-way transition to started state.
type startedState struct {
	started uint32
}

func (s *startedState) setStarted() (swapped bool) {
	return atomic.CompareAndSwapUint32(&s.started, 0, 1)
}

func (s *startedState) IsStarted() bool {
	return atomic.LoadUint32(&s.started) == 1
}
