package common

import "time"

// ITimer is a re-armable one-shot timer.
// Reset arms it to fire d from now. Stop disarms it and drains a pending emission.
type ITimer interface {
	GetChan() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

// TimerFactory creates a new, stopped ITimer.
type TimerFactory = func() ITimer

type TimerImpl struct {
	*time.Timer
}

// NewTimerImpl returns a stopped timer.
func NewTimerImpl() ITimer {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	return &TimerImpl{timer}
}

func (t *TimerImpl) GetChan() <-chan time.Time {
	return t.C
}

func (t *TimerImpl) Stop() {
	if !t.Timer.Stop() {
		// non-blocking; the value may have been consumed already.
		select {
		case <-t.C:
		default:
		}
	}
}

func (t *TimerImpl) Reset(d time.Duration) {
	t.Stop()
	if d < 0 {
		d = 0
	}
	t.Timer.Reset(d)
}
