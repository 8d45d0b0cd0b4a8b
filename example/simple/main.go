package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ngicks/timetrigger"
)

func main() {
	if err := _main(); err != nil {
		panic(err)
	}
}

func printNowWithDelay(id int, delay time.Duration) timetrigger.WorkFn {
	return func(ctx context.Context, scheduled time.Time) error {
		now := time.Now()
		var isCtxCancelled bool
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
			}
		}
		select {
		case <-ctx.Done():
			isCtxCancelled = true
		default:
		}

		fmt.Printf(
			"id: %d, scheduled: %s, diff to now: %s, isCtxCancelled: %t\n",
			id,
			scheduled.Format(time.RFC3339Nano),
			now.Sub(scheduled).String(),
			isCtxCancelled,
		)
		return nil
	}
}

func _main() error {
	sched := timetrigger.New(
		timetrigger.WithPollInterval(100*time.Millisecond),
		timetrigger.WithMaxConcurrent(5),
	)

	now := time.Now()
	printNow := func(id int) timetrigger.WorkFn {
		return printNowWithDelay(id, 0)
	}

	_, _ = sched.Schedule(now, printNow(0))
	_, _ = sched.Schedule(now.Add(time.Second), printNow(1))
	_, _ = sched.Schedule(now.Add(time.Second+500*time.Millisecond), printNow(2))
	_, _ = sched.Schedule(now.Add(2*time.Second+500*time.Millisecond), printNow(3))
	_, _ = sched.Schedule(now.Add(-time.Second), printNow(4))
	t, _ := sched.Schedule(now.Add(4*time.Second+600*time.Millisecond), printNow(5))
	go func() {
		time.Sleep(4*time.Second + 550*time.Millisecond)
		t.Cancel()
	}()
	for i := 0; i < 7; i++ {
		// 2 of them are delayed because at most 5 works execute at once.
		_, _ = sched.Schedule(now.Add(5*time.Second), printNowWithDelay(6+i, time.Second))
	}
	_, _ = sched.Schedule(now.Add(8*time.Second), printNowWithDelay(13, time.Second))

	ctx, cancel := context.WithDeadline(context.Background(), now.Add(8*time.Second))
	defer func() {
		fmt.Println("calling cancel")
		cancel()
	}()
	report, err := sched.Start(ctx)
	fmt.Printf(
		"Start returned. completed: %d, failed: %d, cancelled: %d\n",
		len(report.Completed()), len(report.Failed()), len(report.Cancelled()),
	)
	if errors.Is(err, context.DeadlineExceeded) && len(report.Failed()) == 0 {
		return nil
	}
	return err
}
