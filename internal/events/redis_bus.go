package events

import (
	"context"
	"encoding/json"
	"fmt"

	"chatgraph/internal/metrics"
	"chatgraph/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBus implements Bus using Redis Pub/Sub so that every API instance sees
// the changes made through the others.
type RedisBus struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisBus(client *redis.Client, l *logger.Logger) *RedisBus {
	return &RedisBus{client: client, logger: l}
}

func (b *RedisBus) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, ChannelPrefix+env.Topic, data).Err(); err != nil {
		metrics.EventsPublished.WithLabelValues(env.Topic, "error").Inc()
		return fmt.Errorf("failed to publish to %s: %w", env.Topic, err)
	}
	metrics.EventsPublished.WithLabelValues(env.Topic, "ok").Inc()
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (<-chan Envelope, error) {
	sub := b.client.Subscribe(ctx, ChannelPrefix+topic)
	// wait for the subscription confirmation so no publish is missed afterwards
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	out := make(chan Envelope, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					if b.logger != nil {
						b.logger.Warnf("dropping malformed event on %s: %v", msg.Channel, err)
					}
					continue
				}
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
