package timetrigger

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAlreadyStarted   = errors.New("already started")
	ErrInvalidArg       = errors.New("invalid argument")
	ErrValueNotFound    = errors.New("value not found")
	ErrCancelled        = errors.New("task cancelled")
	ErrWorkKindNotFound = errors.New("work kind not found")
)

// RegistrationError is returned from Schedule when a task could not be registered.
// Its Unwrap returns the cause, either ErrAlreadyStarted or ErrInvalidArg.
type RegistrationError struct {
	ScheduledAt time.Time
	Reason      error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf(
		"registration error: scheduled_at = %s, reason = %s",
		e.ScheduledAt.Format(time.RFC3339Nano),
		e.Reason,
	)
}

func (e *RegistrationError) Unwrap() error {
	return e.Reason
}

// TaskExecutionError wraps an error a work returned, or a recovered panic,
// with the identity of the task that produced it.
type TaskExecutionError struct {
	Id          string
	Label       string
	ScheduledAt time.Time
	Err         error
}

func (e *TaskExecutionError) Error() string {
	label := ""
	if e.Label != "" {
		label = ", label = " + e.Label
	}
	return fmt.Sprintf(
		"task execution error: id = %s%s, scheduled_at = %s, err = %v",
		e.Id,
		label,
		e.ScheduledAt.Format(time.RFC3339Nano),
		e.Err,
	)
}

func (e *TaskExecutionError) Unwrap() error {
	return e.Err
}

// PanicError is a panic recovered from a work.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panicked: %v", e.Value)
}

// Unwrap returns Value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func IsRegistrationErr(err error) bool {
	var regErr *RegistrationError
	return errors.As(err, &regErr)
}

func IsTaskExecutionErr(err error) bool {
	var execErr *TaskExecutionError
	return errors.As(err, &execErr)
}

func IsPanic(err error) bool {
	var panicErr *PanicError
	return errors.As(err, &panicErr)
}

// TaskExecutionErrors collects every *TaskExecutionError in err's chain,
// including ones joined by errors.Join.
func TaskExecutionErrors(err error) []*TaskExecutionError {
	if err == nil {
		return nil
	}
	var out []*TaskExecutionError
	for {
		execErr, ok := err.(*TaskExecutionError)
		if ok {
			return append(out, execErr)
		}
		switch x := err.(type) {
		case interface{ Unwrap() error }:
			err = x.Unwrap()
			if err == nil {
				return out
			}
		case interface{ Unwrap() []error }:
			for _, err := range x.Unwrap() {
				out = append(out, TaskExecutionErrors(err)...)
			}
			return out
		default:
			return out
		}
	}
}
