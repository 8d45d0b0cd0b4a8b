package timetrigger

import (
	"runtime/debug"
	"sync"

	"github.com/ngicks/type-param-common/set"
)

// OnTaskDone is called once per task with its terminal Outcome.
type OnTaskDone = func(outcome Outcome)

type hookWrapper struct {
	sync.RWMutex
	onTaskDone *set.OrderedSet[*OnTaskDone]
}

func newHookWrapper() *hookWrapper {
	return &hookWrapper{
		onTaskDone: set.NewOrdered[*OnTaskDone](),
	}
}

func (h *hookWrapper) addOnTaskDone(fn *OnTaskDone) {
	if fn == nil || *fn == nil {
		return
	}

	h.Lock()
	h.onTaskDone.Add(fn)
	h.Unlock()
}

func (h *hookWrapper) removeOnTaskDone(fn *OnTaskDone) {
	if fn == nil || *fn == nil {
		return
	}

	h.Lock()
	h.onTaskDone.Delete(fn)
	h.Unlock()
}

// OnTaskDone calls every hook with outcome, in registration order.
// Hooks run outside the lock, so a hook may add or remove hooks.
// A panicking hook does not prevent later ones; recovered panics are returned.
func (h *hookWrapper) OnTaskDone(outcome Outcome) []*PanicError {
	h.RLock()
	var hooks []*OnTaskDone
	h.onTaskDone.ForEach(func(fn *OnTaskDone, _ int) {
		hooks = append(hooks, fn)
	})
	h.RUnlock()

	var panics []*PanicError
	for _, fn := range hooks {
		if p := callHook(*fn, outcome); p != nil {
			panics = append(panics, p)
		}
	}
	return panics
}

func callHook(fn OnTaskDone, outcome Outcome) (p *PanicError) {
	defer func() {
		if rec := recover(); rec != nil {
			p = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	fn(outcome)
	return nil
}
