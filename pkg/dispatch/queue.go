package dispatch

import (
	"context"
	"sync"

	"github.com/landokit/landokit/pkg/core"
)

// Queue is the rendezvous between background operations and the single
// consumer. It is unbounded: Push never blocks, so stream pumps and exit
// watchers always make progress no matter how slowly the consumer drains.
type Queue struct {
	mu    sync.Mutex
	items []core.Outcome
	wake  chan struct{}
}

// NewQueue creates an empty outcome queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Push appends an outcome. Safe for any number of concurrent producers.
func (q *Queue) Push(o core.Outcome) {
	q.mu.Lock()
	q.items = append(q.items, o)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// TryPop removes and returns the oldest outcome without blocking.
func (q *Queue) TryPop() (core.Outcome, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	o := q.items[0]
	q.items = q.items[1:]
	return o, true
}

// Len returns the number of queued outcomes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Wake returns a channel that signals when the queue may have become
// non-empty. The signal is coalesced: one token can cover many pushes, so a
// sleeping consumer must TryPop in a loop after waking.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Next blocks until an outcome is available or ctx is done. The TUI drains
// via TryPop once per frame instead; Next serves the CLI paths.
func (q *Queue) Next(ctx context.Context) (core.Outcome, error) {
	for {
		if o, ok := q.TryPop(); ok {
			return o, nil
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
