package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// Publisher defines the interface for publishing change events.
// A nil Publisher is valid everywhere and means notifications are disabled.
type Publisher interface {
	// Publish adds an event to the entity-change stream and returns the
	// message ID assigned by Redis.
	Publish(ctx context.Context, event ChangeEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewPublisher creates a Publisher backed by Redis Streams.
func NewPublisher(client *redis.Client) Publisher {
	return &RedisPublisher{client: client}
}

// Publish adds an event with XADD. "*" lets Redis assign the message ID.
func (p *RedisPublisher) Publish(ctx context.Context, event ChangeEvent) (string, error) {
	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamEntity,
		Values: values,
	}).Result()
	if err != nil {
		log.Printf("[Notify] Publish FAILED: type=%s err=%v", event.Type, err)
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	log.Printf("[Notify] Publish OK: type=%s msgID=%s", event.Type, messageID)
	return messageID, nil
}
