// Package notifications provides real-time feed event delivery over Redis
// pub/sub and websockets.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// FeedChannel is the Redis pub/sub channel carrying feed mutation events.
const FeedChannel = "feed:events"

// FeedEvent is the wire form of a feed mutation announcement. It names the
// mutated post but carries no post data; consumers re-read the snapshot.
type FeedEvent struct {
	Kind   string `json:"kind"`
	PostID string `json:"post_id"`
}

// Notifier publishes and subscribes feed events through Redis. A nil Redis
// client turns every method into a no-op so single-process deployments still
// work (the in-process watcher resync covers them).
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishFeedEvent announces a feed mutation. Failures are logged, never
// surfaced: the periodic watcher resync repairs missed events.
func (n *Notifier) PublishFeedEvent(ctx context.Context, kind, postID string) {
	if n.rdb == nil {
		return
	}
	payload, err := json.Marshal(FeedEvent{Kind: kind, PostID: postID})
	if err != nil {
		log.Printf("marshal feed event: %v", err)
		return
	}
	if err := n.rdb.Publish(ctx, FeedChannel, payload).Err(); err != nil {
		log.Printf("publish feed event: %v", err)
	}
}

// StartFeedSubscriber subscribes to the feed channel and calls onEvent for
// each incoming event until ctx is cancelled.
func (n *Notifier) StartFeedSubscriber(ctx context.Context, onEvent func(FeedEvent)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, FeedChannel)
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
				var event FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("invalid feed event payload: %v", err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in FeedSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(event)
				}()
			}
		}
	}()

	return nil
}
