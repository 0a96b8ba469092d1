package events

import (
	"time"

	"chatgraph/internal/domain/chat"

	"github.com/google/uuid"
)

// Envelope carries a chat change together with the user that caused it.
type Envelope struct {
	Topic      string    `json:"topic"`
	ActorID    uuid.UUID `json:"actor_id"`
	Chat       chat.Chat `json:"chat"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewEnvelope(topic string, actorID uuid.UUID, c chat.Chat) Envelope {
	return Envelope{
		Topic:      topic,
		ActorID:    actorID,
		Chat:       c,
		OccurredAt: time.Now().UTC(),
	}
}
