// Package exec provides the host execution environment: it schedules
// entry-function invocation off the request-handling goroutine and
// supplies the readiness combinator the dispatcher completes on.
package exec

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tessera-run/tessera/internal/object"
)

func errResultCount(got, want int) error {
	return fmt.Errorf("invocation produced %d results, expected %d", got, want)
}

// Env schedules program invocations. Invoke never blocks the caller; the
// kernel runs on its own goroutine once every argument settles.
type Env struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// Invocable is the slice of program.Function that Invoke needs; taking
// the interface keeps the environment independent of the program format.
type Invocable interface {
	Call(args []any) ([]any, error)
}

// NewEnv creates an execution environment.
func NewEnv(logger *slog.Logger) *Env {
	return &Env{logger: logger}
}

// Invoke schedules fn and returns immediately with one unresolved result
// cell per declared result (numResults). The kernel runs after the last
// argument cell settles; a failed argument or kernel error fails every
// result cell instead.
func (e *Env) Invoke(fn Invocable, args []*object.Pending, numResults int) []*object.Pending {
	results := make([]*object.Pending, numResults)
	for i := range results {
		results[i] = object.NewPending()
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ready := make(chan struct{})
		OnAllReady(args, func() { close(ready) })
		<-ready

		vals := make([]any, len(args))
		for i, a := range args {
			v, err := a.Value()
			if err != nil {
				e.failAll(results, err)
				return
			}
			vals[i] = v
		}

		out, err := fn.Call(vals)
		if err != nil {
			e.failAll(results, err)
			return
		}
		if len(out) != len(results) {
			e.failAll(results, errResultCount(len(out), len(results)))
			return
		}
		for i := range results {
			results[i].Resolve(out[i])
		}
	}()

	return results
}

func (e *Env) failAll(results []*object.Pending, err error) {
	e.logger.Error("invocation failed", "error", err)
	for _, r := range results {
		r.Fail(err)
	}
}

// Wait blocks until every in-flight invocation has settled its results.
// Used at shutdown.
func (e *Env) Wait() {
	e.wg.Wait()
}

// OnAllReady registers fn to run exactly once after every cell in cells
// has settled. With no cells fn runs immediately. fn may run on the
// calling goroutine (when everything is already settled) or on whichever
// goroutine settles the last cell; it must not block either.
func OnAllReady(cells []*object.Pending, fn func()) {
	if len(cells) == 0 {
		fn()
		return
	}

	var remaining atomic.Int64
	remaining.Store(int64(len(cells)))
	for _, c := range cells {
		c.OnReady(func() {
			if remaining.Add(-1) == 0 {
				fn()
			}
		})
	}
}
