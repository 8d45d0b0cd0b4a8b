package timetrigger

import (
	"sync"
)

type MiddlewareFunc = func(next WorkFn) WorkFn

// MiddlewareApplicator holds middlewares and wraps works with them.
type MiddlewareApplicator struct {
	mwMu sync.Mutex
	mw   []MiddlewareFunc
}

func NewMiddlewareApplicator() *MiddlewareApplicator {
	return &MiddlewareApplicator{
		mw: make([]MiddlewareFunc, 0),
	}
}

// Use registers MiddlewareFunc.
// First registered one will be invoked first.
func (ma *MiddlewareApplicator) Use(mw ...MiddlewareFunc) {
	ma.mwMu.Lock()
	defer ma.mwMu.Unlock()

	ma.mw = append(ma.mw, mw...)
}

// Apply wraps work with registered middlewares.
// nil middlewares are skipped.
func (ma *MiddlewareApplicator) Apply(work WorkFn) WorkFn {
	ma.mwMu.Lock()
	defer ma.mwMu.Unlock()

	wrapped := work
	for i := len(ma.mw) - 1; i >= 0; i-- {
		mw := ma.mw[i]
		if mw != nil {
			wrapped = mw(wrapped)
		}
	}
	return wrapped
}
