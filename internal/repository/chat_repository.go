package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chatgraph/internal/domain/chat"
	chat_errors "chatgraph/pkg/errors"

	"github.com/google/uuid"
)

type chatRepository struct {
	db DBTX
}

func NewChatRepository(db DBTX) ChatRepository {
	return &chatRepository{db: db}
}

const chatColumns = `c.id, c.name, c.picture, c.owner_id, c.created_at`

func scanChat(row rowScanner) (chat.Chat, error) {
	var (
		c       chat.Chat
		name    sql.NullString
		picture sql.NullString
		owner   uuid.NullUUID
	)
	if err := row.Scan(&c.ID, &name, &picture, &owner, &c.CreatedAt); err != nil {
		return chat.Chat{}, err
	}
	c.Name = stringPtr(name)
	c.Picture = stringPtr(picture)
	if owner.Valid {
		id := owner.UUID
		c.OwnerID = &id
	}
	return c, nil
}

func (r *chatRepository) Create(ctx context.Context, c *chat.Chat) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO chats (id, name, picture, owner_id, created_at)
            VALUES ($1, $2, $3, $4, $5)
        `, c.ID, nullString(c.Name), nullString(c.Picture), nullUUID(c.OwnerID), c.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return chat_errors.ErrAlreadyExists
			}
			return err
		}
		return insertMembers(ctx, tx, *c)
	})
}

func (r *chatRepository) GetByID(ctx context.Context, id uuid.UUID) (chat.Chat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chatColumns+` FROM chats c WHERE c.id = $1`, id)
	c, err := scanChat(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chat.Chat{}, chat_errors.ErrNotFound
		}
		return chat.Chat{}, err
	}

	chats := []chat.Chat{c}
	if err := loadMembers(ctx, r.db, chats); err != nil {
		return chat.Chat{}, err
	}
	return chats[0], nil
}

// Update persists name, picture, owner and the membership sets. All-time
// membership rows are only ever added.
func (r *chatRepository) Update(ctx context.Context, c chat.Chat) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, `
            UPDATE chats
            SET name = $1, picture = $2, owner_id = $3
            WHERE id = $4
        `, nullString(c.Name), nullString(c.Picture), nullUUID(c.OwnerID), c.ID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return chat_errors.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `
            DELETE FROM chat_members
            WHERE chat_id = $1 AND kind <> $2
        `, c.ID, chat.KindAllTime); err != nil {
			return err
		}
		return insertMembers(ctx, tx, c)
	})
}

func (r *chatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *chatRepository) ListByListingMember(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	return r.queryChats(ctx, `
        SELECT `+chatColumns+`
        FROM chats c
        JOIN chat_members m ON m.chat_id = c.id AND m.kind = $2
        WHERE m.user_id = $1
        ORDER BY c.created_at DESC
    `, userID, chat.KindListing)
}

func (r *chatRepository) FindDirect(ctx context.Context, userID1, userID2 uuid.UUID) (chat.Chat, error) {
	chats, err := r.queryChats(ctx, `
        SELECT `+chatColumns+`
        FROM chats c
        WHERE c.name IS NULL
          AND EXISTS (SELECT 1 FROM chat_members a
                      WHERE a.chat_id = c.id AND a.kind = $3 AND a.user_id = $1)
          AND EXISTS (SELECT 1 FROM chat_members b
                      WHERE b.chat_id = c.id AND b.kind = $3 AND b.user_id = $2)
        ORDER BY c.created_at ASC
        LIMIT 1
    `, userID1, userID2, chat.KindAllTime)
	if err != nil {
		return chat.Chat{}, err
	}
	if len(chats) == 0 {
		return chat.Chat{}, chat_errors.ErrNotFound
	}
	return chats[0], nil
}

func (r *chatRepository) ListDirectListedByOthers(ctx context.Context, userID uuid.UUID) ([]chat.Chat, error) {
	return r.queryChats(ctx, `
        SELECT `+chatColumns+`
        FROM chats c
        WHERE c.name IS NULL
          AND EXISTS (SELECT 1 FROM chat_members a
                      WHERE a.chat_id = c.id AND a.kind = $2 AND a.user_id = $1)
          AND EXISTS (SELECT 1 FROM chat_members l
                      WHERE l.chat_id = c.id AND l.kind = $3 AND l.user_id <> $1)
        ORDER BY c.created_at DESC
    `, userID, chat.KindAllTime, chat.KindListing)
}

func (r *chatRepository) queryChats(ctx context.Context, query string, args ...interface{}) ([]chat.Chat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []chat.Chat
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadMembers(ctx, r.db, chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// loadMembers fills the membership sets of chats in insertion order.
func loadMembers(ctx context.Context, db DBTX, chats []chat.Chat) error {
	if len(chats) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(chats))
	ids := make([]uuid.UUID, len(chats))
	for i, c := range chats {
		index[c.ID] = i
		ids[i] = c.ID
	}

	rows, err := db.QueryContext(ctx, `
        SELECT chat_id, user_id, kind
        FROM chat_members
        WHERE chat_id = ANY($1::uuid[])
        ORDER BY seq ASC
    `, uuidStrings(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			chatID, userID uuid.UUID
			kind           string
		)
		if err := rows.Scan(&chatID, &userID, &kind); err != nil {
			return err
		}
		c := &chats[index[chatID]]
		switch kind {
		case chat.KindAllTime:
			c.AllTimeMemberIDs = append(c.AllTimeMemberIDs, userID)
		case chat.KindListing:
			c.ListingMemberIDs = append(c.ListingMemberIDs, userID)
		case chat.KindActual:
			c.ActualGroupMemberIDs = append(c.ActualGroupMemberIDs, userID)
		case chat.KindAdmin:
			c.AdminIDs = append(c.AdminIDs, userID)
		}
	}
	return rows.Err()
}

func insertMembers(ctx context.Context, tx DBTX, c chat.Chat) error {
	sets := []struct {
		kind string
		ids  []uuid.UUID
	}{
		{chat.KindAllTime, c.AllTimeMemberIDs},
		{chat.KindListing, c.ListingMemberIDs},
		{chat.KindActual, c.ActualGroupMemberIDs},
		{chat.KindAdmin, c.AdminIDs},
	}

	for _, set := range sets {
		for _, userID := range set.ids {
			_, err := tx.ExecContext(ctx, `
                INSERT INTO chat_members (chat_id, user_id, kind)
                VALUES ($1, $2, $3)
                ON CONFLICT (chat_id, user_id, kind) DO NOTHING
            `, c.ID, userID, set.kind)
			if err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("%w: user %s doesn't exist", chat_errors.ErrNotFound, userID)
				}
				return err
			}
		}
	}
	return nil
}
