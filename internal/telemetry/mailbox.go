package telemetry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrMailboxClosed is returned by Receive once the mailbox has been closed
// and no value is pending.
var ErrMailboxClosed = errors.New("mailbox closed")

// Mailbox hands values from one producer goroutine to one consumer with
// replace-don't-queue semantics. It holds at most one undelivered value: a
// publish while a value is pending discards the pending one. Publishing never
// blocks, so a slow consumer cannot throttle the producer.
type Mailbox[T any] struct {
	slot      chan T
	done      chan struct{}
	closeOnce sync.Once

	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewMailbox creates an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		slot: make(chan T, 1),
		done: make(chan struct{}),
	}
}

// Publish delivers v, replacing any value the consumer has not taken yet.
// It returns false, without error, if the mailbox is closed.
func (m *Mailbox[T]) Publish(v T) bool {
	select {
	case <-m.done:
		return false
	default:
	}

	for {
		select {
		case m.slot <- v:
			m.published.Add(1)
			return true
		default:
		}
		// Slot is full: evict the stale value and retry. Only the consumer
		// can race us here, and it only ever empties the slot.
		select {
		case <-m.slot:
			m.dropped.Add(1)
		default:
		}
	}
}

// TryReceive returns the pending value, if any, without blocking.
func (m *Mailbox[T]) TryReceive() (T, bool) {
	select {
	case v := <-m.slot:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Receive blocks until a value is available, ctx is done, or the mailbox is closed.
func (m *Mailbox[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	select {
	case v := <-m.slot:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-m.done:
		// A value published just before Close is still delivered.
		if v, ok := m.TryReceive(); ok {
			return v, nil
		}
		return zero, ErrMailboxClosed
	}
}

// Close marks the consumer side as gone. Later publishes are dropped silently.
func (m *Mailbox[T]) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// Published returns how many values were accepted.
func (m *Mailbox[T]) Published() uint64 {
	return m.published.Load()
}

// Dropped returns how many accepted values were replaced before delivery.
func (m *Mailbox[T]) Dropped() uint64 {
	return m.dropped.Load()
}
