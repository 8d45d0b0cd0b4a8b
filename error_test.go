package timetrigger_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ngicks/timetrigger"
	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	assert := assert.New(t)

	errSample := errors.New("sample")
	scheduled := time.Date(2000, time.April, 21, 12, 9, 54, 1, time.UTC)

	regErr := &timetrigger.RegistrationError{ScheduledAt: scheduled, Reason: timetrigger.ErrAlreadyStarted}
	assert.True(timetrigger.IsRegistrationErr(regErr))
	assert.True(timetrigger.IsRegistrationErr(fmt.Errorf("%w", regErr)))
	assert.ErrorIs(regErr, timetrigger.ErrAlreadyStarted)
	assert.False(timetrigger.IsRegistrationErr(errSample))
	assert.False(timetrigger.IsRegistrationErr(nil))
	assert.Contains(regErr.Error(), "already started")

	execErr := &timetrigger.TaskExecutionError{Id: "foo", Label: "bar", ScheduledAt: scheduled, Err: errSample}
	assert.True(timetrigger.IsTaskExecutionErr(execErr))
	assert.ErrorIs(execErr, errSample)
	assert.Contains(execErr.Error(), "id = foo, label = bar")
	assert.False(timetrigger.IsPanic(execErr))

	panicked := &timetrigger.TaskExecutionError{Id: "baz", Err: &timetrigger.PanicError{Value: "boom"}}
	assert.True(timetrigger.IsPanic(panicked))
	assert.NotContains(panicked.Error(), "label")

	joined := errors.Join(execErr, fmt.Errorf("wrapped: %w", panicked), errSample)
	found := timetrigger.TaskExecutionErrors(joined)
	assert.Equal([]*timetrigger.TaskExecutionError{execErr, panicked}, found)

	wrapped := fmt.Errorf("%w", execErr)
	for i := 0; i < 10; i++ {
		assert.Equal([]*timetrigger.TaskExecutionError{execErr}, timetrigger.TaskExecutionErrors(wrapped))
		wrapped = fmt.Errorf("%w", wrapped)
	}

	panicValue := errors.New("panic value")
	panickedWithErr := &timetrigger.TaskExecutionError{Id: "qux", Err: &timetrigger.PanicError{Value: panicValue}}
	assert.ErrorIs(errors.Join(execErr, panickedWithErr), panicValue)
	assert.Nil((&timetrigger.PanicError{Value: "boom"}).Unwrap())

	assert.Nil(timetrigger.TaskExecutionErrors(nil))
	assert.Nil(timetrigger.TaskExecutionErrors(errSample))
}
