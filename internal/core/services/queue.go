package services

import "sync"

// Queue is an unbounded FIFO. Push never blocks; items are delivered in
// order on the channel returned by Out, which is closed once the queue
// has been closed and drained.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	signal chan struct{}
	out    chan T
}

// NewQueue creates a queue and starts its delivery goroutine.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{
		signal: make(chan struct{}, 1),
		out:    make(chan T),
	}
	go q.pump()
	return q
}

// Push appends v. Returns false if the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.wake()
	return true
}

// Close stops accepting items. Items already pushed are still delivered.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wake()
}

// Out returns the receive side of the queue.
func (q *Queue[T]) Out() <-chan T {
	return q.out
}

// Len returns the number of items not yet handed to a receiver.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue[T]) wake() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) pump() {
	defer close(q.out)

	var zero T
	for {
		q.mu.Lock()
		for len(q.items) == 0 {
			if q.closed {
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
			<-q.signal
			q.mu.Lock()
		}
		item := q.items[0]
		q.items[0] = zero
		q.items = q.items[1:]
		q.mu.Unlock()

		q.out <- item
	}
}
