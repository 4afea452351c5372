// Package poller implements a recurring fetch primitive with a start/stop
// lifecycle. A poller repeatedly invokes a fetch function, hands results to a
// callback, and halts on its own once a continuation predicate fails.
package poller

import (
	"context"
	"sync"
	"time"
)

// State of a poller instance.
type State int

const (
	// Idle: created, not yet started.
	Idle State = iota
	// Scheduled: waiting for the next interval to elapse.
	Scheduled
	// Fetching: a fetch is in flight. There is never more than one.
	Fetching
	// Stopped: terminal. A stopped poller cannot be restarted.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scheduled:
		return "scheduled"
	case Fetching:
		return "fetching"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Poller periodically invokes fetch until the continuation predicate returns
// false, the context is cancelled, or Stop is called. Invariants:
//
//   - At most one fetch is in flight at a time. The next interval starts only
//     after the previous fetch has settled, so a fetch slower than the
//     interval never causes overlap.
//   - Polling ceases immediately once shouldContinue rejects a result, with
//     no extra tick.
//   - After Stop returns, no callback fires. A response that arrives during
//     teardown is discarded.
//   - Fetch errors are reported once per failure streak and do not stop the
//     loop; only success-path inspection stops it.
type Poller[T any] struct {
	interval       time.Duration
	fetch          func(context.Context) (T, error)
	shouldContinue func(T) bool

	onResult func(T)
	onError  func(error)

	mu      sync.Mutex
	state   State
	cancel  context.CancelFunc
	done    chan struct{}
	failing bool
}

// New creates an idle poller. shouldContinue may be nil, in which case the
// poller runs until stopped.
func New[T any](interval time.Duration, fetch func(context.Context) (T, error), shouldContinue func(T) bool) *Poller[T] {
	return &Poller[T]{
		interval:       interval,
		fetch:          fetch,
		shouldContinue: shouldContinue,
		state:          Idle,
	}
}

// OnResult registers the success callback. Must be called before Start.
func (p *Poller[T]) OnResult(fn func(T)) *Poller[T] {
	p.onResult = fn
	return p
}

// OnError registers the error callback. It fires once per failure streak,
// not on every failed tick. Must be called before Start.
func (p *Poller[T]) OnError(fn func(error)) *Poller[T] {
	p.onError = fn
	return p
}

// State returns the poller's current lifecycle state.
func (p *Poller[T]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller[T]) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Start begins polling with an immediate first fetch. It is a no-op unless
// the poller is Idle. Cancelling ctx tears the poller down.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	p.state = Scheduled
	p.mu.Unlock()

	go p.run(ctx)
}

func (p *Poller[T]) run(ctx context.Context) {
	defer close(p.done)
	defer p.setState(Stopped)

	for {
		p.setState(Fetching)
		result, err := p.fetch(ctx)

		// Teardown guard: a response arriving after cancellation must not
		// reach the owner.
		if ctx.Err() != nil {
			return
		}

		if err != nil {
			if !p.failing && p.onError != nil {
				p.onError(err)
			}
			p.failing = true
		} else {
			p.failing = false
			if p.onResult != nil {
				p.onResult(result)
			}
			if p.shouldContinue != nil && !p.shouldContinue(result) {
				return
			}
		}

		p.setState(Scheduled)
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Stop tears the poller down and waits for the loop to exit, so no callback
// fires after it returns. Safe to call multiple times and before Start.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.state = Stopped
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()
	<-done
}
