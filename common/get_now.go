package common

//go:generate mockgen -source get_now.go -destination __mock/get_now.go

import "time"

// GetNow is the wall clock a scheduler consults on every poll.
type GetNow interface {
	GetNow() time.Time
}

type GetNowImpl struct{}

func (g GetNowImpl) GetNow() time.Time {
	return time.Now()
}

// GetNowFunc adapts a plain function to GetNow.
type GetNowFunc func() time.Time

func (f GetNowFunc) GetNow() time.Time {
	return f()
}

// IsDue reports whether target has been reached or passed at the time getNow returns.
// A task is never due early.
func IsDue(getNow GetNow, target time.Time) bool {
	return !getNow.GetNow().Before(target)
}
