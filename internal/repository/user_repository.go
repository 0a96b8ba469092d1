package repository

import (
	"context"
	"database/sql"
	"errors"

	"chatgraph/internal/domain/user"
	chat_errors "chatgraph/pkg/errors"

	"github.com/google/uuid"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, name, picture, password_hash, created_at, updated_at`

func scanUser(row rowScanner) (user.User, error) {
	var (
		u       user.User
		picture sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Name, &picture, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	u.Picture = stringPtr(picture)
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (id, username, name, picture, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, u.ID, u.Username, u.Name, nullString(u.Picture), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return chat_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.getMany(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = ANY($1::uuid[])
    `, uuidStrings(ids))
}

func (r *userRepository) ListExcept(ctx context.Context, id uuid.UUID) ([]user.User, error) {
	return r.getMany(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id <> $1
        ORDER BY name ASC
    `, id)
}

func (r *userRepository) UpdateProfile(ctx context.Context, u user.User) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE users
        SET name = $1, picture = $2, updated_at = $3
        WHERE id = $4
    `, u.Name, nullString(u.Picture), u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, chat_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
