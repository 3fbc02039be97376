// Package events publishes post mutations onto a Redis channel.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/npkumar/social-coder/internal/featureflags"
	"github.com/npkumar/social-coder/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Channel carries every post event.
const Channel = "posts:events"

// Event types.
const (
	PostCreated    = "post.created"
	PostDeleted    = "post.deleted"
	PostLiked      = "post.liked"
	PostUnliked    = "post.unliked"
	CommentAdded   = "post.comment_added"
	CommentDeleted = "post.comment_deleted"
)

// Event is the JSON payload published for a post mutation.
type Event struct {
	Type      string    `json:"type"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CommentID string    `json:"comment_id,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher is implemented by Notifier.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Notifier publishes post events into Redis. A nil client or a disabled
// post_events flag turns it into a no-op.
type Notifier struct {
	rdb   *redis.Client
	flags *featureflags.Manager
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client, flags *featureflags.Manager) *Notifier {
	return &Notifier{rdb: rdb, flags: flags}
}

// Enabled reports whether Publish will reach Redis.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil && n.flags.EnabledGlobally(featureflags.PostEvents)
}

// Publish sends evt to Channel.
func (n *Notifier) Publish(ctx context.Context, evt Event) (err error) {
	if !n.Enabled() {
		return nil
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "publish")
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		observability.EventsPublished.WithLabelValues(evt.Type, outcome).Inc()
		observability.EndSpan(span, err)
	}()

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err = n.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// Subscribe listens on Channel and calls onEvent for each decodable message
// until ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context, onEvent func(Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					observability.GlobalLogger.Warn("dropping malformed post event", "error", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("panic in post event subscriber", "panic", r, "stack", string(debug.Stack()))
						}
					}()
					onEvent(evt)
				}()
			}
		}
	}()

	return nil
}
