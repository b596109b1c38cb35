package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	stdsync "sync"
	"time"

	"writehub/internal/notify"
)

const (
	// DefaultBatchSize is the number of messages to read per batch
	DefaultBatchSize = 10

	// DefaultBlockTimeout is how long to block waiting for new messages
	DefaultBlockTimeout = 5 * time.Second
)

// Listener consumes the entity-change stream and invalidates store caches
// as events arrive, cutting convergence latency below the poll interval.
// It is optional: without a listener the store converges via polling alone.
type Listener struct {
	consumer  notify.Consumer
	store     *Store
	batchSize int64
	blockTime time.Duration

	wg     stdsync.WaitGroup
	cancel context.CancelFunc
}

// ListenerConfig holds configuration for the stream listener.
type ListenerConfig struct {
	BatchSize    int64         // Messages per read
	BlockTimeout time.Duration // Block time for XREADGROUP
}

// NewListener creates a listener that feeds events into the store.
func NewListener(consumer notify.Consumer, store *Store, cfg ListenerConfig) *Listener {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}

	return &Listener{
		consumer:  consumer,
		store:     store,
		batchSize: cfg.BatchSize,
		blockTime: cfg.BlockTimeout,
	}
}

// Start begins consuming in a background goroutine.
// Call Stop() to gracefully shut down.
func (l *Listener) Start(ctx context.Context) error {
	ctx, l.cancel = context.WithCancel(ctx)

	if err := l.consumer.EnsureGroup(ctx, notify.StreamEntity, notify.ConsumerGroupEntity); err != nil {
		return err
	}

	consumerName := fmt.Sprintf("listener-%d", os.Getpid())
	log.Printf("[Listener] Starting: stream=%s group=%s consumer=%s",
		notify.StreamEntity, notify.ConsumerGroupEntity, consumerName)

	l.wg.Add(1)
	go l.run(ctx, consumerName)
	return nil
}

// Stop gracefully shuts down the listener.
// Blocks until the consume loop has finished.
func (l *Listener) Stop() {
	log.Printf("[Listener] Stopping...")
	l.cancel()
	l.wg.Wait()
	log.Printf("[Listener] Stopped")
}

// run is the main consume loop.
func (l *Listener) run(ctx context.Context, consumerName string) {
	defer l.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			l.consumeBatch(ctx, consumerName)
		}
	}
}

// consumeBatch reads one batch, applies it to the store, and acks.
func (l *Listener) consumeBatch(ctx context.Context, consumerName string) {
	messages, err := l.consumer.Read(
		ctx,
		notify.StreamEntity,
		notify.ConsumerGroupEntity,
		consumerName,
		l.batchSize,
		l.blockTime,
	)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("[Listener] Read error: %v", err)
		time.Sleep(time.Second) // Back off on error
		return
	}

	if len(messages) == 0 {
		return // Timeout, no messages
	}

	for _, msg := range messages {
		l.store.ApplyEvent(msg.Event)

		if err := l.consumer.Ack(ctx, notify.StreamEntity, notify.ConsumerGroupEntity, msg.ID); err != nil {
			log.Printf("[Listener] ACK error msgID=%s: %v", msg.ID, err)
		}
	}
}
