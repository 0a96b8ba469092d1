package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/domain/user"
	"chatgraph/internal/events"
	"chatgraph/internal/repository"
	chat_errors "chatgraph/pkg/errors"
	"chatgraph/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ChatService struct {
	repo      repository.ChatRepository
	users     *UserService
	publisher events.Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewChatService(repo repository.ChatRepository, users *UserService, publisher events.Publisher, l *logger.Logger) *ChatService {
	if l == nil {
		l = logger.NewNop()
	}
	return &ChatService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    l,
		now:       time.Now,
	}
}

type GroupInput struct {
	Name    string  `validate:"required,max=100"`
	Picture *string `validate:"omitempty,url"`
}

type ChatInput struct {
	Name    *string `validate:"omitempty,max=100"`
	Picture *string `validate:"omitempty,url"`
}

// GetChats returns the chats listed for the current user, newest first.
func (s *ChatService) GetChats(ctx context.Context) ([]chat.Chat, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByListingMember(ctx, me)
}

// GetChat returns nil when no chat has the given id.
func (s *ChatService) GetChat(ctx context.Context, chatID uuid.UUID) (*chat.Chat, error) {
	if _, err := currentUserID(ctx); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// AddChat opens the direct chat between the current user and userID. An
// existing chat is reused and listed again for the current user.
func (s *ChatService) AddChat(ctx context.Context, userID uuid.UUID) (chat.Chat, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return chat.Chat{}, err
	}
	if userID == me {
		return chat.Chat{}, fmt.Errorf("%w: cannot open a chat with yourself", chat_errors.ErrInvalidInput)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return chat.Chat{}, userNotFound(userID)
		}
		return chat.Chat{}, err
	}

	existing, err := s.repo.FindDirect(ctx, me, userID)
	switch {
	case err == nil:
		if !existing.List(me) {
			return existing, nil
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return chat.Chat{}, err
		}
		return existing, nil
	case errors.Is(err, chat_errors.ErrNotFound):
	default:
		return chat.Chat{}, err
	}

	// Listed for the other user only once somebody writes to it.
	created := chat.NewDirect(me, userID, s.now())
	if err := s.repo.Create(ctx, &created); err != nil {
		return chat.Chat{}, err
	}
	return created, nil
}

func (s *ChatService) AddGroup(ctx context.Context, userIDs []uuid.UUID, in GroupInput) (chat.Chat, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return chat.Chat{}, err
	}
	if err := validateInput(in); err != nil {
		return chat.Chat{}, err
	}

	members := lo.Without(lo.Uniq(userIDs), me)
	missing, err := s.users.MissingIDs(ctx, members)
	if err != nil {
		return chat.Chat{}, err
	}
	if len(missing) > 0 {
		return chat.Chat{}, userNotFound(missing[0])
	}

	group := chat.NewGroup(me, members, in.Name, in.Picture, s.now())
	if err := s.repo.Create(ctx, &group); err != nil {
		return chat.Chat{}, err
	}

	s.publish(ctx, events.TopicChatAdded, me, group)
	return group, nil
}

// UpdateChat renames or re-pictures a group. Direct chats are returned
// unchanged whatever the input.
func (s *ChatService) UpdateChat(ctx context.Context, chatID uuid.UUID, in ChatInput) (*chat.Chat, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !c.IsGroup() {
		return &c, nil
	}
	if !c.IsActualMember(me) {
		return nil, fmt.Errorf("%w: user is not a member of group %s", chat_errors.ErrForbidden, chatID)
	}
	in.Name = blankToNil(in.Name)
	in.Picture = blankToNil(in.Picture)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if in.Name != nil {
		c.Name = in.Name
	}
	if in.Picture != nil {
		c.Picture = in.Picture
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicChatUpdated, me, c)
	return &c, nil
}

// RemoveChat drops the chat from the current user's list and returns its id.
// The chat is deleted once nobody has it listed; leaving a group also gives
// up membership and admin rights.
func (s *ChatService) RemoveChat(ctx context.Context, chatID uuid.UUID) (uuid.UUID, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return uuid.Nil, chatNotFound(chatID)
		}
		return uuid.Nil, err
	}

	if !c.IsGroup() && !c.IsListedFor(me) {
		return uuid.Nil, fmt.Errorf("%w: user is not a listing member of chat %s", chat_errors.ErrForbidden, chatID)
	}

	if !c.Unlist(me) {
		if err := s.repo.Delete(ctx, c.ID); err != nil {
			return uuid.Nil, err
		}
		return chatID, nil
	}

	if c.IsGroup() {
		c.LeaveGroup(me)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return uuid.Nil, err
	}
	return chatID, nil
}

// FilterChatAddedOrUpdated decides whether a chatAdded or chatUpdated event
// caused by actorID is delivered to the current user.
func (s *ChatService) FilterChatAddedOrUpdated(ctx context.Context, c chat.Chat, actorID uuid.UUID) bool {
	me, err := currentUserID(ctx)
	if err != nil {
		return false
	}
	return actorID != me && c.IsListedFor(me)
}

// UpdateUser updates the current user's profile and notifies everyone who
// has a direct chat with them listed.
func (s *ChatService) UpdateUser(ctx context.Context, profile user.Profile) (user.User, error) {
	me, err := currentUserID(ctx)
	if err != nil {
		return user.User{}, err
	}

	updated, err := s.users.UpdateProfile(ctx, profile)
	if err != nil {
		return user.User{}, err
	}

	affected, err := s.repo.ListDirectListedByOthers(ctx, me)
	if err != nil {
		return user.User{}, err
	}
	for _, c := range affected {
		s.publish(ctx, events.TopicChatUpdated, me, c)
	}
	return updated, nil
}

// publish notifies subscribers. The change is already stored, so a failure
// is logged and does not fail the mutation.
func (s *ChatService) publish(ctx context.Context, topic string, actorID uuid.UUID, c chat.Chat) {
	if err := s.publisher.Publish(ctx, events.NewEnvelope(topic, actorID, c)); err != nil {
		s.logger.WithContext(ctx).Warn("chat event not published",
			zap.String("topic", topic),
			zap.String("chat_id", c.ID.String()),
			zap.Error(err),
		)
	}
}

func userNotFound(id uuid.UUID) error {
	return fmt.Errorf("%w: user %s doesn't exist", chat_errors.ErrNotFound, id)
}

func chatNotFound(id uuid.UUID) error {
	return fmt.Errorf("%w: chat %s doesn't exist", chat_errors.ErrNotFound, id)
}
