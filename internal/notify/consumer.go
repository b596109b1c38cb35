package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one change event read from the stream.
type Message struct {
	ID    string // Redis message ID (e.g., "1702000000000-0")
	Event ChangeEvent
}

// Consumer reads change events from the entity stream on behalf of a
// consumer group, so multiple sync-layer processes can share the work.
type Consumer interface {
	// EnsureGroup creates the consumer group if it doesn't exist. Call at
	// listener startup.
	EnsureGroup(ctx context.Context, stream, group string) error

	// Read reads up to count new messages for this consumer, blocking for
	// at most block (0 = forever).
	Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error)

	// Ack acknowledges processed messages, removing them from the pending list.
	Ack(ctx context.Context, stream, group string, messageIDs ...string) error
}

// RedisConsumer implements Consumer using Redis Streams.
type RedisConsumer struct {
	client *redis.Client
}

func NewConsumer(client *redis.Client) Consumer {
	return &RedisConsumer{client: client}
}

// EnsureGroup creates the consumer group with XGROUP CREATE MKSTREAM.
// "$" starts at the stream tail: a freshly started listener only cares about
// changes from now on; anything earlier is covered by the initial fetch.
func (c *RedisConsumer) EnsureGroup(ctx context.Context, stream, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		// "BUSYGROUP" means the group already exists - that's fine
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			return nil
		}
		return fmt.Errorf("create consumer group: %w", err)
	}

	log.Printf("[Notify] EnsureGroup OK: stream=%s group=%s", stream, group)
	return nil
}

// Read reads new messages with XREADGROUP. ">" delivers only messages not
// yet handed to any consumer in the group.
func (c *RedisConsumer) Read(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err == redis.Nil {
		return nil, nil // block timeout, nothing new
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}

	var messages []Message
	for _, s := range streams {
		for _, m := range s.Messages {
			event, err := ParseChangeEvent(m.Values)
			if err != nil {
				log.Printf("[Notify] skipping malformed message id=%s err=%v", m.ID, err)
				// Ack it anyway so it doesn't wedge the pending list
				c.Ack(ctx, stream, group, m.ID)
				continue
			}
			messages = append(messages, Message{ID: m.ID, Event: event})
		}
	}

	return messages, nil
}

// Ack acknowledges messages with XACK.
func (c *RedisConsumer) Ack(ctx context.Context, stream, group string, messageIDs ...string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, stream, group, messageIDs...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}
