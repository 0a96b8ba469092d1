//go:generate go run go.uber.org/mock/mockgen -source=interfaces.go -destination=../mocks/mock_repository.go -package=mocks
package repository

import (
	"context"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	ListExcept(ctx context.Context, id uuid.UUID) ([]user.User, error)
	UpdateProfile(ctx context.Context, u user.User) error
}

type ChatRepository interface {
	Create(ctx context.Context, c *chat.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error)
	Update(ctx context.Context, c chat.Chat) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByListingMember returns the chats listed for userID, newest first.
	ListByListingMember(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
	// FindDirect returns the direct chat whose all-time members include both users.
	FindDirect(ctx context.Context, userID1, userID2 uuid.UUID) (chat.Chat, error)
	// ListDirectListedByOthers returns the direct chats userID ever belonged to
	// that are currently listed by at least one other user.
	ListDirectListedByOthers(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error)
}
