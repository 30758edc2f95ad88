package distributed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"playhud/internal/core/domain"
	"playhud/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventType represents the type of event
type EventType string

const (
	EventSnapshotPublished EventType = "snapshot.published"
)

// Event is one frame on the cross-instance bus.
type Event struct {
	Type       EventType          `json:"type"`
	InstanceID string             `json:"instance_id"`
	Timestamp  time.Time          `json:"timestamp"`
	SessionID  domain.SessionID   `json:"session_id,omitempty"`
	Snapshot   *domain.VideoStats `json:"snapshot,omitempty"`
}

// SnapshotBus fans snapshots out over Redis pub/sub so overlay push
// servers on other instances see sessions whose samplers run here. It
// implements ports.SnapshotObserver, so it can be attached to the
// session service like any local observer.
type SnapshotBus struct {
	client     *redis.Client
	instanceID string
	logger     *zap.SugaredLogger
	pubsub     *redis.PubSub
	channels   []string
}

// NewSnapshotBus creates a new snapshot bus
func NewSnapshotBus(
	client *redis.Client,
	instanceID string,
	logger *zap.SugaredLogger,
) *SnapshotBus {
	return &SnapshotBus{
		client:     client,
		instanceID: instanceID,
		logger:     logger,
		channels:   []string{"playhud:events"},
	}
}

var _ ports.SnapshotObserver = (*SnapshotBus)(nil)

// ObserveSnapshot publishes a locally sampled snapshot to the bus.
// Publish failures are logged and dropped; the next tick republishes.
func (b *SnapshotBus) ObserveSnapshot(stats domain.VideoStats) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := b.Publish(ctx, &Event{
		Type:      EventSnapshotPublished,
		SessionID: stats.SessionID,
		Snapshot:  &stats,
	}); err != nil {
		b.logger.Warnw("failed to publish snapshot event",
			"session_id", stats.SessionID,
			"error", err,
		)
	}
}

// Publish publishes an event to the bus
func (b *SnapshotBus) Publish(ctx context.Context, event *Event) error {
	event.InstanceID = b.instanceID
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := b.channels[0]
	if err := b.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("published event",
		"type", event.Type,
		"session_id", event.SessionID,
	)

	return nil
}

// Subscribe subscribes to events and calls handler for each event until
// the context is cancelled. Frames published by this instance are skipped.
func (b *SnapshotBus) Subscribe(ctx context.Context, handler func(*Event) error) error {
	if b.pubsub != nil {
		return fmt.Errorf("already subscribed")
	}

	b.pubsub = b.client.Subscribe(ctx, b.channels...)
	defer b.pubsub.Close()

	ch := b.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			b.dispatch([]byte(msg.Payload), handler)
		}
	}
}

// dispatch decodes one bus frame and hands it to the handler. Malformed
// frames and frames from this instance are dropped.
func (b *SnapshotBus) dispatch(payload []byte, handler func(*Event) error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.Warnw("failed to unmarshal event",
			"error", err,
			"payload", string(payload),
		)
		return
	}

	if event.InstanceID == b.instanceID {
		return
	}

	if err := handler(&event); err != nil {
		b.logger.Warnw("error handling event",
			"type", event.Type,
			"error", err,
		)
	}
}

// Close closes the bus subscription
func (b *SnapshotBus) Close() error {
	if b.pubsub != nil {
		return b.pubsub.Close()
	}
	return nil
}
