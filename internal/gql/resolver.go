package gql

import (
	"context"
	"fmt"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/domain/user"
	"chatgraph/internal/events"
	"chatgraph/internal/services"
	chat_errors "chatgraph/pkg/errors"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Resolver is the root resolver for queries, mutations and subscriptions.
type Resolver struct {
	chats  *services.ChatService
	users  *services.UserService
	events events.Subscriber
}

func NewResolver(chats *services.ChatService, users *services.UserService, subscriber events.Subscriber) *Resolver {
	return &Resolver{chats: chats, users: users, events: subscriber}
}

func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	u, err := r.users.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: u}, nil
}

func (r *Resolver) Users(ctx context.Context) ([]*UserResolver, error) {
	list, err := r.users.ListOthers(ctx)
	if err != nil {
		return nil, err
	}
	return toUserResolvers(list), nil
}

func (r *Resolver) Chats(ctx context.Context) ([]*ChatResolver, error) {
	list, err := r.chats.GetChats(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(list, func(c chat.Chat, _ int) *ChatResolver { return r.chatResolver(c) }), nil
}

func (r *Resolver) Chat(ctx context.Context, args struct{ ChatID graphql.ID }) (*ChatResolver, error) {
	id, err := parseID(args.ChatID)
	if err != nil {
		return nil, err
	}
	c, err := r.chats.GetChat(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return r.chatResolver(*c), nil
}

func (r *Resolver) AddChat(ctx context.Context, args struct{ UserID graphql.ID }) (*ChatResolver, error) {
	userID, err := parseID(args.UserID)
	if err != nil {
		return nil, err
	}
	c, err := r.chats.AddChat(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.chatResolver(c), nil
}

type addGroupArgs struct {
	UserIDs      []graphql.ID
	GroupName    string
	GroupPicture *string
}

func (r *Resolver) AddGroup(ctx context.Context, args addGroupArgs) (*ChatResolver, error) {
	userIDs := make([]uuid.UUID, 0, len(args.UserIDs))
	for _, raw := range args.UserIDs {
		id, err := parseID(raw)
		if err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}

	c, err := r.chats.AddGroup(ctx, userIDs, services.GroupInput{
		Name:    args.GroupName,
		Picture: chat_errors.StringPtr(lo.FromPtr(args.GroupPicture)),
	})
	if err != nil {
		return nil, err
	}
	return r.chatResolver(c), nil
}

type updateChatArgs struct {
	ChatID  graphql.ID
	Name    *string
	Picture *string
}

func (r *Resolver) UpdateChat(ctx context.Context, args updateChatArgs) (*ChatResolver, error) {
	id, err := parseID(args.ChatID)
	if err != nil {
		return nil, err
	}
	c, err := r.chats.UpdateChat(ctx, id, services.ChatInput{Name: args.Name, Picture: args.Picture})
	if err != nil || c == nil {
		return nil, err
	}
	return r.chatResolver(*c), nil
}

func (r *Resolver) RemoveChat(ctx context.Context, args struct{ ChatID graphql.ID }) (graphql.ID, error) {
	id, err := parseID(args.ChatID)
	if err != nil {
		return "", err
	}
	removed, err := r.chats.RemoveChat(ctx, id)
	if err != nil {
		return "", err
	}
	return graphql.ID(removed.String()), nil
}

type updateUserArgs struct {
	Name    *string
	Picture *string
}

func (r *Resolver) UpdateUser(ctx context.Context, args updateUserArgs) (*UserResolver, error) {
	u, err := r.chats.UpdateUser(ctx, user.Profile{Name: args.Name, Picture: args.Picture})
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: u}, nil
}

func (r *Resolver) chatResolver(c chat.Chat) *ChatResolver {
	return &ChatResolver{chat: c, users: r.users}
}

func parseID(id graphql.ID) (uuid.UUID, error) {
	parsed, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", chat_errors.ErrInvalidInput, string(id))
	}
	return parsed, nil
}
