// Package session provides per-connection outbound queues and live
// connection tracking for the game server.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned by Push after Close, and by Next once a closed
// outbox has been drained.
var ErrClosed = errors.New("outbox closed")

// Outbox is an unbounded FIFO of encoded frames bound for one connection.
// Any goroutine may Push; a single writer goroutine drains it with Next.
// Push never blocks, so a slow client cannot stall a broadcaster that holds
// the room registry lock.
type Outbox struct {
	id     string
	mu     sync.Mutex
	queue  [][]byte
	notify chan struct{}
	closed bool
	done   chan struct{}
}

// NewOutbox creates an open Outbox with a fresh connection ID.
//
// Postcondition: Returns an Outbox whose ID is a random UUID.
func NewOutbox() *Outbox {
	return &Outbox{
		id:     uuid.NewString(),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (o *Outbox) ID() string {
	return o.id
}

// Push enqueues data.
//
// Precondition: data must be non-nil.
// Postcondition: data is queued after every earlier Push, or ErrClosed is returned.
func (o *Outbox) Push(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	o.queue = append(o.queue, data)
	select {
	case o.notify <- struct{}{}:
	default:
	}
	return nil
}

// Next blocks until a frame is available and returns it. Frames queued before
// Close are still delivered.
//
// Postcondition: Returns a frame, ErrClosed once closed and empty, or ctx.Err().
func (o *Outbox) Next(ctx context.Context) ([]byte, error) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			data := o.queue[0]
			o.queue[0] = nil
			o.queue = o.queue[1:]
			o.mu.Unlock()
			return data, nil
		}
		closed := o.closed
		o.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}

		select {
		case <-o.notify:
		case <-o.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued frames.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Close stops accepting frames and wakes the writer.
//
// Postcondition: Further Push calls return ErrClosed. Safe to call more than once.
func (o *Outbox) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.done)
	}
	return nil
}
