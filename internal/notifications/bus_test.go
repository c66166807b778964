package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *Bus {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBus(client)
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 4)
	require.NoError(t, bus.Subscribe(ctx, []string{TableLikes, TablePosts}, func(e Event) {
		received <- e
	}))

	// Subscription setup races with the first publish; give the pattern
	// subscriber a moment to attach.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, bus.Publish(ctx, Event{Table: TableLikes, Action: ActionInsert}))

	select {
	case got := <-received:
		assert.Equal(t, TableLikes, got.Table)
		assert.Equal(t, ActionInsert, got.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestBus_SubscribeFiltersTables(t *testing.T) {
	bus := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 4)
	require.NoError(t, bus.Subscribe(ctx, []string{TablePosts}, func(e Event) {
		received <- e
	}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, bus.Publish(ctx, Event{Table: TableComments, Action: ActionInsert}))
	require.NoError(t, bus.Publish(ctx, Event{Table: TablePosts, Action: ActionDelete}))

	select {
	case got := <-received:
		// The comments event must have been filtered out.
		assert.Equal(t, TablePosts, got.Table)
		assert.Equal(t, ActionDelete, got.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	select {
	case extra := <-received:
		t.Fatalf("unexpected extra event: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil)
	ctx := context.Background()

	assert.NoError(t, bus.Publish(ctx, Event{Table: TableLikes, Action: ActionInsert}))
	assert.NoError(t, bus.Subscribe(ctx, []string{TableLikes}, func(Event) {
		t.Fatal("no events expected from a nil bus")
	}))
}
