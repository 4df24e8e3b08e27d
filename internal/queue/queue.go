// Package queue implements the bounded single-producer/single-consumer
// queue between a producer loop and the transport task draining it.
//
// Send blocks while the queue is full, which throttles the producer to the
// drain rate. Once the receiving side is closed, every subsequent Send
// fails with ErrReceiverGone.
package queue

import (
	"context"
	"errors"
	"sync"
)

// DefaultCapacity is the per-subscription queue length.
const DefaultCapacity = 1024

// ErrReceiverGone is returned by Send after the Receiver was closed.
var ErrReceiverGone = errors.New("queue: receiver closed")

type shared[T any] struct {
	ch   chan T
	gone chan struct{}
	once sync.Once
}

// Sender is the producing half of a queue.
type Sender[T any] struct{ q *shared[T] }

// Receiver is the draining half of a queue.
type Receiver[T any] struct{ q *shared[T] }

// New returns the two halves of a queue holding at most capacity items.
// A non-positive capacity selects DefaultCapacity.
func New[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &shared[T]{ch: make(chan T, capacity), gone: make(chan struct{})}
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Send enqueues v, blocking while the queue is full.
func (s *Sender[T]) Send(v T) error {
	// A closed receiver must win over free buffer space.
	select {
	case <-s.q.gone:
		return ErrReceiverGone
	default:
	}
	select {
	case s.q.ch <- v:
		return nil
	case <-s.q.gone:
		return ErrReceiverGone
	}
}

// Len reports the number of queued items.
func (s *Sender[T]) Len() int { return len(s.q.ch) }

// Cap reports the queue capacity.
func (s *Sender[T]) Cap() int { return cap(s.q.ch) }

// Recv returns the next item, blocking until one is available or ctx ends.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v := <-r.q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-r.q.gone:
		var zero T
		return zero, ErrReceiverGone
	}
}

// Close drops the receiver. Items still queued are discarded and pending
// or future Sends fail. Close is idempotent.
func (r *Receiver[T]) Close() {
	r.q.once.Do(func() { close(r.q.gone) })
}

// Len reports the number of queued items.
func (r *Receiver[T]) Len() int { return len(r.q.ch) }

// Cap reports the queue capacity.
func (r *Receiver[T]) Cap() int { return cap(r.q.ch) }
