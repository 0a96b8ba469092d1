package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"chatgraph/internal/domain/chat"
	chat_errors "chatgraph/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// arrayConverter lets the uuid[] arguments of loadMembers through, which
// the default converter rejects and pgx encodes natively.
type arrayConverter struct{}

func (arrayConverter) ConvertValue(v interface{}) (driver.Value, error) {
	if ids, ok := v.([]string); ok {
		return ids, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockRepository(t *testing.T) (ChatRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(arrayConverter{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewChatRepository(db), mock
}

const insertMemberSQL = `INSERT INTO chat_members \(chat_id, user_id, kind\) VALUES \(\$1, \$2, \$3\) ON CONFLICT \(chat_id, user_id, kind\) DO NOTHING`

var chatRowColumns = []string{"id", "name", "picture", "owner_id", "created_at"}

func TestChatRepository_Update(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	t.Run("should rewrite every membership set except all-time", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		c := chat.Chat{
			ID:               uuid.New(),
			AllTimeMemberIDs: []uuid.UUID{me, other},
			ListingMemberIDs: []uuid.UUID{other},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE chats SET name = \$1, picture = \$2, owner_id = \$3 WHERE id = \$4`).
			WithArgs(nil, nil, nil, c.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM chat_members WHERE chat_id = \$1 AND kind <> \$2`).
			WithArgs(c.ID, chat.KindAllTime).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(insertMemberSQL).WithArgs(c.ID, me, chat.KindAllTime).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(insertMemberSQL).WithArgs(c.ID, other, chat.KindAllTime).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(insertMemberSQL).WithArgs(c.ID, other, chat.KindListing).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Update(context.Background(), c))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should roll back and report an unknown chat", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		c := chat.NewDirect(me, other, time.Now())

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE chats`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Update(context.Background(), c)
		require.ErrorIs(t, err, chat_errors.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChatRepository_FindDirect(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	t.Run("should look only at unnamed chats sharing all-time members", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectQuery(`FROM chats c WHERE c\.name IS NULL AND EXISTS .* a\.kind = \$3 AND a\.user_id = \$1 .* b\.kind = \$3 AND b\.user_id = \$2`).
			WithArgs(me, other, chat.KindAllTime).
			WillReturnRows(sqlmock.NewRows(chatRowColumns))

		_, err := repo.FindDirect(context.Background(), me, other)
		require.ErrorIs(t, err, chat_errors.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChatRepository_ListDirectListedByOthers(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	t.Run("should return direct chats listed by someone else with their members", func(t *testing.T) {
		req := require.New(t)
		repo, mock := newMockRepository(t)
		chatID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`FROM chats c WHERE c\.name IS NULL AND EXISTS .* a\.kind = \$2 AND a\.user_id = \$1 .* l\.kind = \$3 AND l\.user_id <> \$1`).
			WithArgs(me, chat.KindAllTime, chat.KindListing).
			WillReturnRows(sqlmock.NewRows(chatRowColumns).AddRow(chatID.String(), nil, nil, nil, now))
		mock.ExpectQuery(`SELECT chat_id, user_id, kind FROM chat_members WHERE chat_id = ANY\(\$1::uuid\[\]\) ORDER BY seq ASC`).
			WithArgs([]string{chatID.String()}).
			WillReturnRows(sqlmock.NewRows([]string{"chat_id", "user_id", "kind"}).
				AddRow(chatID.String(), me.String(), chat.KindAllTime).
				AddRow(chatID.String(), other.String(), chat.KindAllTime).
				AddRow(chatID.String(), other.String(), chat.KindListing))

		chats, err := repo.ListDirectListedByOthers(context.Background(), me)
		req.NoError(err)
		req.Len(chats, 1)
		req.Equal(chatID, chats[0].ID)
		req.Nil(chats[0].Name)
		req.Equal([]uuid.UUID{me, other}, chats[0].AllTimeMemberIDs)
		req.Equal([]uuid.UUID{other}, chats[0].ListingMemberIDs)
		req.NoError(mock.ExpectationsWereMet())
	})
}
