package gql

import (
	"context"
	"errors"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/services"
	chat_errors "chatgraph/pkg/errors"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/google/uuid"
)

type ChatResolver struct {
	chat  chat.Chat
	users *services.UserService
}

func (r *ChatResolver) ID() graphql.ID {
	return graphql.ID(r.chat.ID.String())
}

func (r *ChatResolver) Name() *string {
	return r.chat.Name
}

func (r *ChatResolver) Picture() *string {
	return r.chat.Picture
}

func (r *ChatResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: r.chat.CreatedAt}
}

func (r *ChatResolver) IsGroup() bool {
	return r.chat.IsGroup()
}

// Owner is null for direct chats and read-only groups.
func (r *ChatResolver) Owner(ctx context.Context) (*UserResolver, error) {
	if r.chat.OwnerID == nil {
		return nil, nil
	}
	u, err := r.users.GetByID(ctx, *r.chat.OwnerID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &UserResolver{user: u}, nil
}

func (r *ChatResolver) Admins(ctx context.Context) ([]*UserResolver, error) {
	return r.members(ctx, r.chat.AdminIDs)
}

func (r *ChatResolver) AllTimeMembers(ctx context.Context) ([]*UserResolver, error) {
	return r.members(ctx, r.chat.AllTimeMemberIDs)
}

func (r *ChatResolver) ListingMembers(ctx context.Context) ([]*UserResolver, error) {
	return r.members(ctx, r.chat.ListingMemberIDs)
}

func (r *ChatResolver) ActualGroupMembers(ctx context.Context) ([]*UserResolver, error) {
	return r.members(ctx, r.chat.ActualGroupMemberIDs)
}

func (r *ChatResolver) members(ctx context.Context, ids []uuid.UUID) ([]*UserResolver, error) {
	list, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toUserResolvers(list), nil
}
