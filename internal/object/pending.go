// Package object implements the per-context remote object store and the
// pending value cells it hands out: asynchronously populated values that
// producers settle once and consumers wait on with one-shot continuations.
package object

import (
	"errors"
	"sync"
)

// ErrNotReady is returned by Value while the cell is still unsettled.
var ErrNotReady = errors.New("value not ready")

// Pending is a value cell that becomes populated asynchronously. It is
// created unresolved and transitions exactly once to either a concrete
// value or an error; continuations registered with OnReady run exactly
// once, after that transition. A cell is shared freely across producers
// and consumers; the last holder dropping it releases it.
type Pending struct {
	mu      sync.Mutex
	settled bool
	value   any
	err     error
	waiters []func()
}

// NewPending creates an unresolved cell.
func NewPending() *Pending {
	return &Pending{}
}

// Ready creates a cell already settled with the given value.
func Ready(v any) *Pending {
	return &Pending{settled: true, value: v}
}

// Resolve settles the cell with a concrete value and runs registered
// continuations. The first settle wins; later Resolve or Fail calls are
// ignored.
func (p *Pending) Resolve(v any) {
	p.settle(v, nil)
}

// Fail settles the cell with an error and runs registered continuations.
func (p *Pending) Fail(err error) {
	p.settle(nil, err)
}

func (p *Pending) settle(v any, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.value = v
	p.err = err
	waiters := p.waiters
	p.waiters = nil
	p.mu.Unlock()

	// Continuations run outside the lock, on the settling goroutine.
	for _, w := range waiters {
		w()
	}
}

// OnReady registers f to run exactly once after the cell settles. If the
// cell is already settled, f runs immediately on the calling goroutine.
func (p *Pending) OnReady(f func()) {
	p.mu.Lock()
	if !p.settled {
		p.waiters = append(p.waiters, f)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	f()
}

// Settled reports whether the cell holds a value or error yet.
func (p *Pending) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Value returns the settled value or error, or ErrNotReady while the
// cell is still pending.
func (p *Pending) Value() (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.settled {
		return nil, ErrNotReady
	}
	return p.value, p.err
}
