package services

import (
	"context"
	"testing"

	"chatgraph/config"
	"chatgraph/internal/domain/user"
	"chatgraph/internal/mocks"
	chat_errors "chatgraph/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newAuthService(t *testing.T) (*AuthService, *mocks.MockUserRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 15}
	return NewAuthService(repo, cfg), repo
}

func TestAuthService_Register(t *testing.T) {
	t.Run("should store a bcrypt hash and issue a token for the new user", func(t *testing.T) {
		req := require.New(t)
		svc, repo := newAuthService(t)

		var stored *user.User
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *user.User) error {
			stored = u
			return nil
		})

		resp, err := svc.Register(context.Background(), RegisterInput{Username: " Alice ", Name: "Alice", Password: "s3cret-pass"})
		req.NoError(err)
		req.Equal("alice", stored.Username)
		req.NotEqual("s3cret-pass", stored.PasswordHash)
		req.Equal(int64(15*60), resp.ExpiresIn)

		userID, err := svc.Authenticate(resp.AccessToken)
		req.NoError(err)
		req.Equal(stored.ID, userID)
	})

	t.Run("should reject a short password", func(t *testing.T) {
		svc, _ := newAuthService(t)

		_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Name: "Alice", Password: "short"})
		require.ErrorIs(t, err, chat_errors.ErrInvalidInput)
	})

	t.Run("should surface a taken username", func(t *testing.T) {
		svc, repo := newAuthService(t)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(chat_errors.ErrAlreadyExists)

		_, err := svc.Register(context.Background(), RegisterInput{Username: "alice", Name: "Alice", Password: "s3cret-pass"})
		require.ErrorIs(t, err, chat_errors.ErrAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	alice := user.User{ID: uuid.New(), Username: "alice", Name: "Alice", PasswordHash: hash}

	t.Run("should log in with the right password", func(t *testing.T) {
		req := require.New(t)
		svc, repo := newAuthService(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)

		resp, err := svc.Login(context.Background(), LoginInput{Username: "Alice", Password: "s3cret-pass"})
		req.NoError(err)
		req.Equal(alice.ID.String(), resp.User.ID)
	})

	t.Run("should reject a wrong password", func(t *testing.T) {
		svc, repo := newAuthService(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "alice").Return(alice, nil)

		_, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong-pass"})
		require.ErrorIs(t, err, chat_errors.ErrUnauthorized)
	})

	t.Run("should not reveal unknown usernames", func(t *testing.T) {
		svc, repo := newAuthService(t)
		repo.EXPECT().GetByUsername(gomock.Any(), "bob").Return(user.User{}, chat_errors.ErrNotFound)

		_, err := svc.Login(context.Background(), LoginInput{Username: "bob", Password: "whatever1"})
		require.ErrorIs(t, err, chat_errors.ErrUnauthorized)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _ := newAuthService(t)

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := svc.Authenticate("not-a-token")
		require.ErrorIs(t, err, chat_errors.ErrUnauthorized)
	})

	t.Run("should reject tokens signed with another secret", func(t *testing.T) {
		other := NewAuthService(nil, &config.Config{JWTSecret: "other-secret", JWTExpiryMin: 15})
		token, _, err := other.newAccessToken(user.User{ID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.Authenticate(token)
		require.ErrorIs(t, err, chat_errors.ErrUnauthorized)
	})
}
