package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chatgraph/internal/domain/chat"
	"chatgraph/internal/domain/user"
	"chatgraph/internal/repository"
	chat_errors "chatgraph/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DevPassword is the password of every seeded development user.
const DevPassword = "password123"

type SeedResult struct {
	Users []user.User
	Chats []chat.Chat
}

var devUsers = []struct {
	username string
	name     string
}{
	{"uri", "Uri Goldshtein"},
	{"ethan", "Ethan Gonzalez"},
	{"bryan", "Bryan Wallace"},
	{"avery", "Avery Stewart"},
	{"katie", "Katie Peterson"},
}

// SeedDevelopment inserts the demo users with one direct chat and one group.
// Users that already exist are reused, so running it twice is harmless.
func SeedDevelopment(ctx context.Context, db *sql.DB) (SeedResult, error) {
	users := repository.NewUserRepository(db)
	chats := repository.NewChatRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(DevPassword), bcrypt.DefaultCost)
	if err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	now := time.Now()
	for _, du := range devUsers {
		u := user.User{
			ID:           uuid.New(),
			Username:     du.username,
			Name:         du.name,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, &u); err != nil {
			if !errors.Is(err, chat_errors.ErrAlreadyExists) {
				return SeedResult{}, fmt.Errorf("seed user %s: %w", du.username, err)
			}
			if u, err = users.GetByUsername(ctx, du.username); err != nil {
				return SeedResult{}, err
			}
		}
		result.Users = append(result.Users, u)
	}

	owner := result.Users[0]
	if _, err := chats.FindDirect(ctx, owner.ID, result.Users[1].ID); err == nil {
		return result, nil
	}

	direct := chat.NewDirect(owner.ID, result.Users[1].ID, now)
	direct.List(result.Users[1].ID)
	group := chat.NewGroup(owner.ID, []uuid.UUID{result.Users[2].ID, result.Users[3].ID}, "Friends", nil, now.Add(time.Second))

	for _, c := range []*chat.Chat{&direct, &group} {
		if err := chats.Create(ctx, c); err != nil {
			return SeedResult{}, fmt.Errorf("seed chat: %w", err)
		}
		result.Chats = append(result.Chats, *c)
	}
	return result, nil
}
