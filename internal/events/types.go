package events

// Topics published by the chat service. Subscribers receive every envelope of
// a topic and decide per user whether to deliver it.
const (
	TopicChatAdded   = "chatAdded"
	TopicChatUpdated = "chatUpdated"
)

// ChannelPrefix namespaces topics on the Redis server.
const ChannelPrefix = "graphql:"
