package events

import (
	"context"
	"testing"
	"time"

	"github.com/npkumar/social-coder/internal/featureflags"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil, featureflags.NewManager("post_events=on"))
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Publish(context.Background(), Event{Type: PostCreated}))
}

func TestNotifier_DisabledFlagIsNoop(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb, featureflags.NewManager("post_events=off"))
	assert.False(t, n.Enabled())

	received := make(chan Event, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewNotifier(rdb, nil).Subscribe(ctx, func(e Event) { received <- e }))

	require.NoError(t, n.Publish(context.Background(), Event{Type: PostCreated, PostID: "p1"}))
	assert.Never(t, func() bool { return len(received) > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb, featureflags.NewManager("post_events=on"))
	require.True(t, n.Enabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 2)
	require.NoError(t, n.Subscribe(ctx, func(e Event) { received <- e }))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, n.Publish(context.Background(), Event{
		Type: CommentAdded, PostID: "p1", UserID: "u1", CommentID: "c1", At: at,
	}))

	select {
	case evt := <-received:
		assert.Equal(t, CommentAdded, evt.Type)
		assert.Equal(t, "p1", evt.PostID)
		assert.Equal(t, "u1", evt.UserID)
		assert.Equal(t, "c1", evt.CommentID)
		assert.True(t, at.Equal(evt.At))
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNotifier_SubscribeStopsOnCancel(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb, featureflags.NewManager("post_events=on"))

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan Event, 4)
	require.NoError(t, n.Subscribe(ctx, func(e Event) { received <- e }))

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, n.Publish(context.Background(), Event{Type: PostDeleted, PostID: "p1"}))
	assert.Never(t, func() bool { return len(received) > 0 }, 200*time.Millisecond, 10*time.Millisecond)
}
