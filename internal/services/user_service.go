package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatgraph/internal/domain/user"
	"chatgraph/internal/repository"
	chat_errors "chatgraph/pkg/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// UserCache is an optional read-through cache for user rows.
type UserCache interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	SetUser(ctx context.Context, u user.User) error
	InvalidateUser(ctx context.Context, id uuid.UUID) error
}

type UserService struct {
	repo  repository.UserRepository
	cache UserCache
}

// NewUserService builds the service; cache may be nil.
func NewUserService(repo repository.UserRepository, cache UserCache) *UserService {
	return &UserService{repo: repo, cache: cache}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetUser(ctx, id); err == nil && cached != nil {
			return *cached, nil
		}
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if s.cache != nil {
		_ = s.cache.SetUser(ctx, u)
	}
	return u, nil
}

// GetByIDs returns the users in the order of ids. Unknown ids are skipped.
func (s *UserService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}

	found, err := s.repo.GetByIDs(ctx, lo.Uniq(ids))
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(found, func(u user.User) uuid.UUID { return u.ID })
	ordered := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			ordered = append(ordered, u)
		}
	}
	return ordered, nil
}

// MissingIDs reports which of ids have no user row.
func (s *UserService) MissingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	found, err := s.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	foundIDs := lo.Map(found, func(u user.User, _ int) uuid.UUID { return u.ID })
	return lo.Without(lo.Uniq(ids), foundIDs...), nil
}

func (s *UserService) CurrentUser(ctx context.Context) (user.User, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return user.User{}, err
	}
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, chat_errors.ErrNotFound) {
			return user.User{}, chat_errors.ErrUnauthorized
		}
		return user.User{}, err
	}
	return u, nil
}

// ListOthers returns every user except the current one, ordered by name.
func (s *UserService) ListOthers(ctx context.Context) ([]user.User, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListExcept(ctx, userID)
}

// UpdateProfile applies the non-empty fields of profile to the current user.
func (s *UserService) UpdateProfile(ctx context.Context, profile user.Profile) (user.User, error) {
	profile.Name = blankToNil(profile.Name)
	profile.Picture = blankToNil(profile.Picture)
	if err := validateInput(profile); err != nil {
		return user.User{}, err
	}

	u, err := s.CurrentUser(ctx)
	if err != nil {
		return user.User{}, err
	}

	if profile.Name != nil {
		u.Name = *profile.Name
	}
	if profile.Picture != nil {
		u.Picture = profile.Picture
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("update user %s: %w", u.ID, err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, u.ID)
	}
	return u, nil
}
