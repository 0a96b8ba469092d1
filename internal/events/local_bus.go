package events

import (
	"context"
	"sync"

	"chatgraph/internal/metrics"
)

// LocalBus is an in-process Bus for single instance deployments without
// Redis. Slow subscribers lose envelopes instead of blocking publishers.
type LocalBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Envelope
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string]map[int]chan Envelope)}
}

func (b *LocalBus) Publish(_ context.Context, env Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[env.Topic] {
		select {
		case ch <- env:
		default:
			// Channel full, envelope dropped
		}
	}
	metrics.EventsPublished.WithLabelValues(env.Topic, "ok").Inc()
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, topic string) (<-chan Envelope, error) {
	ch := make(chan Envelope, 16)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Envelope)
	}
	b.subs[topic][id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs[topic], id)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}
