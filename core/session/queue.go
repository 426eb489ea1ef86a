package session

import (
	"context"
	"sync"

	"github.com/leofalp/recall/providers/memory"
)

// ingestQueue is an unbounded FIFO drained by a single worker, so turns are
// written in the order they were pushed and producers never block.
type ingestQueue struct {
	mu      sync.Mutex
	pending []memory.Turn
	closed  bool
	notify  chan struct{}
	done    chan struct{}
}

func newIngestQueue() *ingestQueue {
	return &ingestQueue{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// push enqueues turns, reporting false once the queue is closed.
func (q *ingestQueue) push(turns ...memory.Turn) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, turns...)
	q.mu.Unlock()

	q.wake()
	return true
}

func (q *ingestQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// run hands every queued turn to write until the queue is closed and empty.
func (q *ingestQueue) run(write func(memory.Turn)) {
	defer close(q.done)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			<-q.notify
			continue
		}
		turn := q.pending[0]
		q.pending[0] = memory.Turn{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		write(turn)
	}
}

// close stops accepting turns and waits for the backlog to drain or ctx.
func (q *ingestQueue) close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
