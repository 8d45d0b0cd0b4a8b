package timetrigger

import (
	"context"
	"fmt"
	"time"
)

type taskInfoKeyTy string

func (s taskInfoKeyTy) String() string {
	return "taskInfoKeyTy"
}

var taskInfoKey *taskInfoKeyTy = new(taskInfoKeyTy)

// TaskInfo identifies the task a work is firing for.
type TaskInfo struct {
	Id          string
	Label       string
	ScheduledAt time.Time
}

// WithTaskInfo returns a copy of parent carrying info.
// The scheduler does this for every firing; it is exported for middleware tests.
func WithTaskInfo(parent context.Context, info TaskInfo) context.Context {
	return context.WithValue(parent, taskInfoKey, info)
}

// GetTaskInfo retrieves TaskInfo stored by WithTaskInfo.
func GetTaskInfo(ctx context.Context) (TaskInfo, error) {
	info, ok := ctx.Value(taskInfoKey).(TaskInfo)
	if !ok {
		return TaskInfo{}, fmt.Errorf("%w: key=%s", ErrValueNotFound, taskInfoKey)
	}
	return info, nil
}
