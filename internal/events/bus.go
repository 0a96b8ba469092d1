package events

import "context"

type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Subscriber streams the envelopes of a topic until ctx is done, then closes
// the returned channel.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan Envelope, error)
}

type Bus interface {
	Publisher
	Subscriber
}
