package timetrigger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ngicks/timetrigger/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Scheduler fires a batch of works, each at its own absolute time.
//
// Tasks are registered by Schedule and then run once by Start.
// Every pending task waits in its own goroutine, checking the clock every poll interval,
// so a task never fires before its scheduled time and fires at most one interval late.
// Start blocks until every task has completed, failed or been cancelled.
type Scheduler struct {
	startedState
	*MiddlewareApplicator

	mu    sync.Mutex
	tasks []*Task

	getNow        common.GetNow
	newTimer      common.TimerFactory
	pollInterval  time.Duration
	maxConcurrent int64
	logger        zerolog.Logger
	hooks         *hookWrapper
}

func New(options ...Option) *Scheduler {
	s := &Scheduler{
		MiddlewareApplicator: NewMiddlewareApplicator(),
		tasks:                make([]*Task, 0),
		getNow:               common.GetNowImpl{},
		newTimer:             common.NewTimerImpl,
		pollInterval:         DefaultPollInterval,
		logger:               zerolog.Nop(),
		hooks:                newHookWrapper(),
	}
	for _, opt := range options {
		s = opt(s)
	}
	return s
}

// Schedule registers work to be fired at target.
// target may be in the past; such a task fires on the first poll.
// Scheduling the same work twice yields two independent tasks.
//
// Once Start has been called Schedule fails with a *RegistrationError wrapping ErrAlreadyStarted.
func (s *Scheduler) Schedule(target time.Time, work WorkFn, options ...TaskOption) (*TaskController, error) {
	if work == nil {
		return nil, &RegistrationError{ScheduledAt: target, Reason: ErrInvalidArg}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.IsStarted() {
		return nil, &RegistrationError{ScheduledAt: target, Reason: ErrAlreadyStarted}
	}

	opt := buildTaskOption(options)
	t := newTask(opt.id, opt.label, target, work)
	t.now = s.getNow.GetNow
	s.tasks = append(s.tasks, t)
	return NewTaskController(t), nil
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) AddOnTaskDone(fn *OnTaskDone) {
	s.hooks.addOnTaskDone(fn)
}

func (s *Scheduler) RemoveOnTaskDone(fn *OnTaskDone) {
	s.hooks.removeOnTaskDone(fn)
}

// Start runs every registered task and blocks until all of them are in a terminal state.
// Start can be called only once; later calls return ErrAlreadyStarted.
//
// A failing task does not affect others. Failures are collected into the returned Report,
// and the returned error is Report.Err, joined with ctx.Err if cancelling ctx withdrew any pending task.
func (s *Scheduler) Start(ctx context.Context) (Report, error) {
	s.mu.Lock()
	if !s.setStarted() {
		s.mu.Unlock()
		return Report{}, ErrAlreadyStarted
	}
	tasks := s.tasks
	s.mu.Unlock()

	s.logger.Debug().
		Int("count_tasks", len(tasks)).
		Dur("poll_interval", s.pollInterval).
		Int64("max_concurrent", s.maxConcurrent).
		Msg("starting time triggered scheduler")

	var sem *semaphore.Weighted
	if s.maxConcurrent > 0 {
		sem = semaphore.NewWeighted(s.maxConcurrent)
	}

	var g errgroup.Group
	for _, t := range tasks {
		t := t
		work := s.Apply(t.work)
		g.Go(func() error {
			s.run(ctx, t, work, sem)
			for _, p := range s.hooks.OnTaskDone(t.Outcome()) {
				s.logger.Error().
					Str("task_id", t.id).
					Err(p).
					Bytes("stack", p.Stack).
					Msg("on task done hook panicked")
			}
			return nil
		})
	}
	_ = g.Wait()

	report := newReport(tasks)

	s.logger.Debug().
		Int("completed", len(report.Completed())).
		Int("failed", len(report.Failed())).
		Int("cancelled", len(report.Cancelled())).
		Msg("time triggered scheduler finished")

	err := report.Err()
	if ctxErr := ctx.Err(); ctxErr != nil {
		for _, o := range report.Cancelled() {
			if errors.Is(o.Err, ctxErr) {
				err = errors.Join(err, ctxErr)
				break
			}
		}
	}
	return report, err
}

// run waits for t's scheduled time, then fires it.
func (s *Scheduler) run(ctx context.Context, t *Task, work WorkFn, sem *semaphore.Weighted) {
	timer := s.newTimer()
	defer timer.Stop()

	for !common.IsDue(s.getNow, t.scheduledTime) {
		timer.Reset(s.pollInterval)
		select {
		case <-ctx.Done():
			t.CancelWithReason(ctx.Err())
			return
		case <-t.cancelCh:
			return
		case <-timer.GetChan():
		}
	}

	if t.State() != Pending {
		return
	}

	if sem != nil {
		if err := s.acquire(ctx, t, sem); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				t.CancelWithReason(ctxErr)
			}
			return
		}
		defer sem.Release(1)
	}

	if err := ctx.Err(); err != nil {
		t.CancelWithReason(err)
		return
	}

	taskCtx := WithTaskInfo(ctx, t.info())
	if t.fire(taskCtx, work, s.getNow.GetNow) {
		if outcome := t.Outcome(); outcome.State == Failed {
			s.logger.Debug().
				Str("task_id", outcome.Id).
				Err(outcome.Err).
				Msg("task failed")
		}
	}
}

// acquire waits for an execution slot, giving up when ctx is done or t is cancelled.
func (s *Scheduler) acquire(ctx context.Context, t *Task, sem *semaphore.Weighted) error {
	acquireCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-t.cancelCh:
			cancel()
		case <-acquireCtx.Done():
		}
	}()

	return sem.Acquire(acquireCtx, 1)
}
