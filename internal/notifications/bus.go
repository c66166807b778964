// Package notifications carries change notifications between the data layer
// and feed consumers over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"runtime/debug"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Tables with change channels.
const (
	TablePosts    = "posts"
	TableLikes    = "likes"
	TableRetweets = "retweets"
	TableComments = "comments"
	TablePolls    = "polls"
	TableProfiles = "user_profiles"
)

// Action describes what kind of row change an event announces.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is a change notification. It deliberately does not carry the changed
// row; consumers treat it as a pure trigger and refetch.
type Event struct {
	Table  string `json:"table"`
	Action Action `json:"action"`
}

// AllTables lists every table with a change channel.
func AllTables() []string {
	return []string{TablePosts, TableLikes, TableRetweets, TableComments, TablePolls, TableProfiles}
}

// ChannelFor derives the Redis channel name for a table's change feed.
func ChannelFor(table string) string {
	return "changes:" + table
}

// Bus publishes and subscribes to table change events.
// A Bus with a nil Redis client is a no-op publisher and a no-op subscriber,
// so the app degrades to poll-only when Redis is unavailable.
type Bus struct {
	rdb *redis.Client
}

// NewBus creates a Bus on the given Redis client.
func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

// Publish announces a row change on the table's channel.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if b.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, ChannelFor(event.Table), payload).Err()
}

// Subscribe delivers every event on the given tables to onEvent until ctx is
// cancelled. Malformed payloads are dropped; the channel name is authoritative
// for the table so a bad payload still triggers as an unknown-action event.
func (b *Bus) Subscribe(ctx context.Context, tables []string, onEvent func(Event)) error {
	if b.rdb == nil {
		return nil
	}

	wanted := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		wanted[t] = struct{}{}
	}

	sub := b.rdb.PSubscribe(ctx, "changes:*")
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
				table := strings.TrimPrefix(msg.Channel, "changes:")
				if _, interested := wanted[table]; !interested {
					continue
				}
				event := Event{Table: table}
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					event = Event{Table: table}
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in change subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(event)
				}()
			}
		}
	}()

	return nil
}
