package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailboxMostRecentWins(t *testing.T) {
	mb := NewMailbox[int]()

	assert.True(t, mb.Publish(1))
	assert.True(t, mb.Publish(2))
	assert.True(t, mb.Publish(3))

	v, ok := mb.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = mb.TryReceive()
	assert.False(t, ok, "older values are not queued")

	assert.Equal(t, uint64(3), mb.Published())
	assert.Equal(t, uint64(2), mb.Dropped())
}

func TestMailboxTryReceiveEmpty(t *testing.T) {
	mb := NewMailbox[*CPUSnapshot]()

	done := make(chan struct{})
	go func() {
		defer close(done)
		v, ok := mb.TryReceive()
		assert.False(t, ok)
		assert.Nil(t, v)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TryReceive blocked on an empty mailbox")
	}
}

func TestMailboxReceive(t *testing.T) {
	mb := NewMailbox[string]()

	go func() {
		time.Sleep(10 * time.Millisecond)
		mb.Publish("tick")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := mb.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tick", v)
}

func TestMailboxReceiveContextCancel(t *testing.T) {
	mb := NewMailbox[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mb.Receive(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMailboxClose(t *testing.T) {
	mb := NewMailbox[int]()
	mb.Close()
	mb.Close() // idempotent

	assert.False(t, mb.Publish(1), "publish after close is dropped")
	assert.Equal(t, uint64(0), mb.Published())

	_, err := mb.Receive(context.Background())
	assert.ErrorIs(t, err, ErrMailboxClosed)
}

func TestMailboxCloseDeliversPending(t *testing.T) {
	mb := NewMailbox[int]()
	mb.Publish(7)
	mb.Close()

	v, err := mb.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestMailboxOrderingAndNoBlocking(t *testing.T) {
	mb := NewMailbox[int]()
	const total = 10000

	var received []int
	var wg sync.WaitGroup
	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer wg.Done()
		for {
			v, err := mb.Receive(ctx)
			if err != nil {
				return
			}
			received = append(received, v)
			if v == total {
				return
			}
		}
	}()

	start := time.Now()
	for i := 1; i <= total; i++ {
		mb.Publish(i)
	}
	publishTime := time.Since(start)

	wg.Wait()

	// Values arrive in publish order with gaps where replacement happened,
	// and the final value is always delivered.
	require.NotEmpty(t, received)
	for i := 1; i < len(received); i++ {
		assert.Greater(t, received[i], received[i-1])
	}
	assert.Equal(t, total, received[len(received)-1])
	assert.Equal(t, uint64(total), mb.Published())
	assert.Less(t, publishTime, 5*time.Second)
}
