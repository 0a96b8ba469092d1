package gql

import (
	"context"

	"chatgraph/internal/events"
	"chatgraph/internal/services"
	chat_errors "chatgraph/pkg/errors"
)

func (r *Resolver) ChatAdded(ctx context.Context) (<-chan *ChatResolver, error) {
	return r.subscribe(ctx, events.TopicChatAdded)
}

func (r *Resolver) ChatUpdated(ctx context.Context) (<-chan *ChatResolver, error) {
	return r.subscribe(ctx, events.TopicChatUpdated)
}

// subscribe forwards the envelopes of topic that concern the subscribing user
// until ctx is done.
func (r *Resolver) subscribe(ctx context.Context, topic string) (<-chan *ChatResolver, error) {
	if _, ok := services.UserIDFromContext(ctx); !ok {
		return nil, chat_errors.ErrUnauthorized
	}

	envelopes, err := r.events.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan *ChatResolver)
	go func() {
		defer close(out)
		for env := range envelopes {
			if !r.chats.FilterChatAddedOrUpdated(ctx, env.Chat, env.ActorID) {
				continue
			}
			select {
			case out <- r.chatResolver(env.Chat):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
