package object

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestPendingResolve(t *testing.T) {
	p := NewPending()
	if p.Settled() {
		t.Error("new cell reports settled")
	}
	if _, err := p.Value(); !errors.Is(err, ErrNotReady) {
		t.Errorf("Value on unsettled cell = %v, want ErrNotReady", err)
	}

	p.Resolve(42)
	if !p.Settled() {
		t.Error("cell not settled after Resolve")
	}
	v, err := p.Value()
	if err != nil || v != 42 {
		t.Errorf("Value() = %v, %v, want 42, nil", v, err)
	}
}

func TestPendingFail(t *testing.T) {
	p := NewPending()
	boom := errors.New("boom")
	p.Fail(boom)

	_, err := p.Value()
	if !errors.Is(err, boom) {
		t.Errorf("Value() err = %v, want boom", err)
	}
}

func TestPendingFirstSettleWins(t *testing.T) {
	p := NewPending()
	p.Resolve(1)
	p.Resolve(2)
	p.Fail(errors.New("late"))

	v, err := p.Value()
	if err != nil || v != 1 {
		t.Errorf("Value() = %v, %v, want first settle 1", v, err)
	}
}

func TestPendingContinuationFiresOnce(t *testing.T) {
	p := NewPending()
	var fired atomic.Int32
	p.OnReady(func() { fired.Add(1) })

	p.Resolve("x")
	p.Resolve("y")

	if n := fired.Load(); n != 1 {
		t.Errorf("continuation fired %d times, want 1", n)
	}
}

func TestPendingContinuationAfterSettle(t *testing.T) {
	p := Ready("done")
	var fired bool
	p.OnReady(func() { fired = true })
	if !fired {
		t.Error("continuation did not run immediately on settled cell")
	}
}

func TestPendingConcurrentWaiters(t *testing.T) {
	p := NewPending()
	const n = 50

	var fired atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.OnReady(func() { fired.Add(1) })
		}()
	}
	wg.Wait()

	p.Resolve(nil)
	if got := fired.Load(); got != n {
		t.Errorf("%d continuations fired, want %d", got, n)
	}
}
