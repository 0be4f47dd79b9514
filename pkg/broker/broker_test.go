package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestBroker_FanOut(t *testing.T) {
	b := New[int](4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := b.Subscribe(ctx)
	c := b.Subscribe(ctx)
	require.Equal(t, 2, b.Len())

	b.Publish(1)
	b.Publish(2)

	assert.Equal(t, 1, recv(t, a))
	assert.Equal(t, 2, recv(t, a))
	assert.Equal(t, 1, recv(t, c))
	assert.Equal(t, 2, recv(t, c))
}

func TestBroker_SubscribeFromSeedsFirstValue(t *testing.T) {
	b := New[string](2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.SubscribeFrom(ctx, "current")
	b.Publish("next")

	assert.Equal(t, "current", recv(t, ch))
	assert.Equal(t, "next", recv(t, ch))
}

func TestBroker_SlowSubscriberKeepsNewest(t *testing.T) {
	b := New[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 50; i++ {
			b.Publish(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	assert.Equal(t, 50, recv(t, ch))
}

func TestBroker_CancelUnsubscribes(t *testing.T) {
	b := New[int](1)
	ctx, cancel := context.WithCancel(context.Background())

	ch := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)

	// Publishing after removal must not panic.
	b.Publish(1)
}

func TestBroker_Close(t *testing.T) {
	b := New[int](1)
	ch := b.Subscribe(context.Background())

	b.Close()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)

	late := b.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok)
}

func TestBroker_ConcurrentPublishAndCancel(t *testing.T) {
	b := New[int](2)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		ch := b.Subscribe(ctx)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range ch {
			}
		}()
		go func() {
			defer wg.Done()
			b.Publish(1)
			cancel()
		}()
	}

	wg.Wait()
	assert.Equal(t, 0, b.Len())
}
